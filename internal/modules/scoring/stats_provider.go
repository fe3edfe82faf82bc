// Package scoring evaluates enriched signals against an agent's weighted
// component configuration and applies the hard filter gate.
package scoring

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/hadoku/trader/internal/domain"
	"github.com/hadoku/trader/internal/modules/signals"
)

// StatsProvider supplies the external statistics some scoring components
// need. The engine is written against this capability so the production
// path (store lookups) and the backtest path (preloaded maps) run the same
// algorithm and must produce identical results for identical statistics.
type StatsProvider interface {
	// PoliticianStats returns the trade count and win rate for a
	// politician; ok is false when the politician is unknown.
	PoliticianStats(name string) (totalTrades int, winRate float64, ok bool)

	// ConfirmationCount returns the number of distinct sources reporting
	// the same ticker+action+trade-date triple, at least 1.
	ConfirmationCount(ticker string, action domain.Action, tradeDate time.Time) int
}

// SnapshotStatsProvider serves statistics from preloaded maps. Backtests
// use it so a multi-year run performs no per-signal store queries.
type SnapshotStatsProvider struct {
	Politicians   map[string]domain.PoliticianStats
	Confirmations map[string]int // keyed by signals.ConfirmationKey; absent = 1
}

// PoliticianStats implements StatsProvider.
func (p *SnapshotStatsProvider) PoliticianStats(name string) (int, float64, bool) {
	stats, ok := p.Politicians[name]
	if !ok {
		return 0, 0, false
	}
	return stats.TotalTrades, stats.WinRate, true
}

// ConfirmationCount implements StatsProvider.
func (p *SnapshotStatsProvider) ConfirmationCount(ticker string, action domain.Action, tradeDate time.Time) int {
	key := signals.ConfirmationKey(ticker, action, tradeDate.UTC().Format("2006-01-02"))
	if n, ok := p.Confirmations[key]; ok && n > 0 {
		return n
	}
	return 1
}

// StoreStatsProvider serves statistics straight from the repositories.
// This is the production scoring path; lookups hit signals.db per call.
type StoreStatsProvider struct {
	politicians PoliticianStatsSource
	confirms    ConfirmationSource
	log         zerolog.Logger
}

// PoliticianStatsSource is the slice of the politicians repository the
// provider needs.
type PoliticianStatsSource interface {
	Get(name string) (*domain.PoliticianStats, error)
}

// ConfirmationSource is the slice of the signals repository the provider needs.
type ConfirmationSource interface {
	ConfirmationCount(ticker string, action domain.Action, tradeDate time.Time) (int, error)
}

// NewStoreStatsProvider creates a store-backed provider.
func NewStoreStatsProvider(politicians PoliticianStatsSource, confirms ConfirmationSource, log zerolog.Logger) *StoreStatsProvider {
	return &StoreStatsProvider{
		politicians: politicians,
		confirms:    confirms,
		log:         log.With().Str("component", "stats_provider").Logger(),
	}
}

// PoliticianStats implements StatsProvider. Lookup errors degrade to
// "unknown politician" so a store hiccup cannot abort a scoring pass.
func (p *StoreStatsProvider) PoliticianStats(name string) (int, float64, bool) {
	stats, err := p.politicians.Get(name)
	if err != nil {
		p.log.Warn().Err(err).Str("politician", name).Msg("Politician stats lookup failed")
		return 0, 0, false
	}
	if stats == nil {
		return 0, 0, false
	}
	return stats.TotalTrades, stats.WinRate, true
}

// ConfirmationCount implements StatsProvider.
func (p *StoreStatsProvider) ConfirmationCount(ticker string, action domain.Action, tradeDate time.Time) int {
	n, err := p.confirms.ConfirmationCount(ticker, action, tradeDate)
	if err != nil {
		p.log.Warn().Err(err).Str("ticker", ticker).Msg("Confirmation count lookup failed")
		return 1
	}
	return n
}
