// Package politicians provides politician skill statistics derived from
// stored signals.
package politicians

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hadoku/trader/internal/domain"
)

// Repository handles politician statistics in signals.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new politician stats repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "politicians").Logger(),
	}
}

// Get returns the stats for one politician, or nil when unknown.
func (r *Repository) Get(name string) (*domain.PoliticianStats, error) {
	var stats domain.PoliticianStats
	err := r.db.QueryRow(
		`SELECT politician, total_trades, wins, win_rate
		 FROM politician_stats WHERE politician = ?`, name,
	).Scan(&stats.Politician, &stats.TotalTrades, &stats.Wins, &stats.WinRate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query politician stats: %w", err)
	}
	return &stats, nil
}

// All returns every stored politician's stats keyed by name. Backtests
// preload this map so the scoring path never queries per signal.
func (r *Repository) All() (map[string]domain.PoliticianStats, error) {
	rows, err := r.db.Query(`SELECT politician, total_trades, wins, win_rate FROM politician_stats`)
	if err != nil {
		return nil, fmt.Errorf("failed to query politician stats: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.PoliticianStats)
	for rows.Next() {
		var stats domain.PoliticianStats
		if err := rows.Scan(&stats.Politician, &stats.TotalTrades, &stats.Wins, &stats.WinRate); err != nil {
			return nil, fmt.Errorf("failed to scan politician stats: %w", err)
		}
		out[stats.Politician] = stats
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating politician stats: %w", err)
	}
	return out, nil
}

// Upsert writes one politician's stats.
func (r *Repository) Upsert(stats domain.PoliticianStats) error {
	_, err := r.db.Exec(
		`INSERT INTO politician_stats (politician, total_trades, wins, win_rate, updated_at)
		 VALUES (?, ?, ?, ?, datetime('now'))
		 ON CONFLICT(politician) DO UPDATE SET
		   total_trades = excluded.total_trades,
		   wins = excluded.wins,
		   win_rate = excluded.win_rate,
		   updated_at = excluded.updated_at`,
		stats.Politician, stats.TotalTrades, stats.Wins, stats.WinRate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert politician stats: %w", err)
	}
	return nil
}

// RecomputeStats rebuilds every politician's trade count and win rate from
// the stored signals. A sell counts as a win when it exits above the
// politician's most recent prior buy of the same ticker; sells without a
// matching buy are ignored for the win rate but still count as trades.
func (r *Repository) RecomputeStats() error {
	rows, err := r.db.Query(
		`SELECT politician, ticker, action, trade_price, trade_date
		 FROM signals ORDER BY politician, trade_date ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("failed to query signals for stats: %w", err)
	}
	defer rows.Close()

	type key struct{ politician, ticker string }
	lastBuyPrice := make(map[key]float64)
	totals := make(map[string]int)
	wins := make(map[string]int)
	matched := make(map[string]int)

	for rows.Next() {
		var politician, ticker, action string
		var price float64
		var tradeDate string
		if err := rows.Scan(&politician, &ticker, &action, &price, &tradeDate); err != nil {
			return fmt.Errorf("failed to scan signal for stats: %w", err)
		}

		totals[politician]++
		k := key{politician, ticker}
		switch domain.Action(action) {
		case domain.ActionBuy:
			lastBuyPrice[k] = price
		case domain.ActionSell:
			if buyPrice, ok := lastBuyPrice[k]; ok && buyPrice > 0 {
				matched[politician]++
				if price > buyPrice {
					wins[politician]++
				}
				delete(lastBuyPrice, k)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating signals for stats: %w", err)
	}

	for politician, total := range totals {
		winRate := 0.0
		if matched[politician] > 0 {
			winRate = float64(wins[politician]) / float64(matched[politician])
		}
		stats := domain.PoliticianStats{
			Politician:  politician,
			TotalTrades: total,
			Wins:        wins[politician],
			WinRate:     winRate,
		}
		if err := r.Upsert(stats); err != nil {
			return err
		}
	}

	r.log.Info().Int("politicians", len(totals)).Msg("Recomputed politician stats")
	return nil
}
