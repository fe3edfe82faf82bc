package backtest

import "time"

const (
	washSaleWindowDays = 30
	// Events older than twice the wash-sale window can never match again
	// and are pruned to bound per-ticker memory on long runs.
	washSaleRetainDays = 60

	longTermHoldingDays = 365
)

// washSaleTracker keeps the trailing per-ticker buy dates and loss-sale
// dates a simulation needs for wash-sale classification. Two rules apply:
// a loss-sale with a same-ticker buy in the prior window is flagged
// disallowed, and a buy within the window after a loss-sale is blocked
// outright. Both views of the rule are kept even though they can observe
// the same economic event twice.
type washSaleTracker struct {
	buys   map[string][]time.Time
	losses map[string][]time.Time
}

func newWashSaleTracker() *washSaleTracker {
	return &washSaleTracker{
		buys:   make(map[string][]time.Time),
		losses: make(map[string][]time.Time),
	}
}

// RecordBuy notes an executed buy.
func (w *washSaleTracker) RecordBuy(ticker string, date time.Time) {
	w.buys[ticker] = appendPruned(w.buys[ticker], date)
}

// RecordLoss notes a realized loss-sale.
func (w *washSaleTracker) RecordLoss(ticker string, date time.Time) {
	w.losses[ticker] = appendPruned(w.losses[ticker], date)
}

// LossDisallowed reports whether a loss realized on saleDate had a
// same-ticker buy within the prior wash-sale window.
func (w *washSaleTracker) LossDisallowed(ticker string, saleDate time.Time) bool {
	return anyWithinWindow(w.buys[ticker], saleDate)
}

// BuyBlocked reports whether a buy on date falls within the wash-sale
// window after a loss-sale of the same ticker.
func (w *washSaleTracker) BuyBlocked(ticker string, date time.Time) bool {
	return anyWithinWindow(w.losses[ticker], date)
}

func anyWithinWindow(events []time.Time, at time.Time) bool {
	for _, event := range events {
		days := daysApart(event, at)
		if days >= 0 && days <= washSaleWindowDays {
			return true
		}
	}
	return false
}

// appendPruned appends an event and drops events outside the retention
// window relative to it. Events arrive chronologically, so the newest
// event is the reference point.
func appendPruned(events []time.Time, date time.Time) []time.Time {
	events = append(events, date)
	cutoff := 0
	for cutoff < len(events)-1 && daysApart(events[cutoff], date) > washSaleRetainDays {
		cutoff++
	}
	return events[cutoff:]
}

// daysApart returns whole UTC calendar days from a to b.
func daysApart(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}
