// Package backtest runs the month-stepping portfolio simulator and stores
// its results.
package backtest

import (
	"sort"

	"github.com/hadoku/trader/internal/domain"
)

// lotArena holds a run's open lots in an index-addressed slice with a free
// list, plus a ticker index. Removal is O(1) and never shifts other lots.
type lotArena struct {
	lots     []domain.Position
	occupied []bool
	free     []int
	byTicker map[string][]int
}

func newLotArena() *lotArena {
	return &lotArena{byTicker: make(map[string][]int)}
}

// add stores a lot and returns its slot index.
func (a *lotArena) add(pos domain.Position) int {
	var idx int
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
		a.lots[idx] = pos
		a.occupied[idx] = true
	} else {
		idx = len(a.lots)
		a.lots = append(a.lots, pos)
		a.occupied = append(a.occupied, true)
	}
	a.byTicker[pos.Ticker] = append(a.byTicker[pos.Ticker], idx)
	return idx
}

// oldest returns the index of the ticker's lot with the earliest entry
// date, or false when the ticker has no open lot.
func (a *lotArena) oldest(ticker string) (int, bool) {
	indexes := a.byTicker[ticker]
	best := -1
	for _, idx := range indexes {
		if !a.occupied[idx] {
			continue
		}
		if best < 0 || a.lots[idx].EntryDate.Before(a.lots[best].EntryDate) {
			best = idx
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// at returns the lot at a slot index.
func (a *lotArena) at(idx int) domain.Position {
	return a.lots[idx]
}

// remove frees a slot and drops it from the ticker index.
func (a *lotArena) remove(idx int) {
	if !a.occupied[idx] {
		return
	}
	ticker := a.lots[idx].Ticker
	a.occupied[idx] = false
	a.free = append(a.free, idx)

	indexes := a.byTicker[ticker]
	for i, stored := range indexes {
		if stored == idx {
			a.byTicker[ticker] = append(indexes[:i], indexes[i+1:]...)
			break
		}
	}
	if len(a.byTicker[ticker]) == 0 {
		delete(a.byTicker, ticker)
	}
}

// openCount returns the number of open lots.
func (a *lotArena) openCount() int {
	return len(a.lots) - len(a.free)
}

// openCountFor returns the number of open lots for one ticker.
func (a *lotArena) openCountFor(ticker string) int {
	count := 0
	for _, idx := range a.byTicker[ticker] {
		if a.occupied[idx] {
			count++
		}
	}
	return count
}

// deployed sums the cost bases of all open lots.
func (a *lotArena) deployed() float64 {
	var sum float64
	for idx, pos := range a.lots {
		if a.occupied[idx] {
			sum += pos.CostBasis
		}
	}
	return sum
}

// open returns all open lots ordered by entry date, then ticker.
func (a *lotArena) open() []domain.Position {
	out := make([]domain.Position, 0, a.openCount())
	for idx, pos := range a.lots {
		if a.occupied[idx] {
			out = append(out, pos)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EntryDate.Equal(out[j].EntryDate) {
			return out[i].EntryDate.Before(out[j].EntryDate)
		}
		return out[i].Ticker < out[j].Ticker
	})
	return out
}
