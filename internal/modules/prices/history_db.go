// Package prices provides historical close prices for enrichment and
// simulation, with a per-run memoizing cache.
package prices

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

// HistoryDB provides access to historical price data in history.db.
type HistoryDB struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryDB creates a new history database accessor
func NewHistoryDB(db *sql.DB, log zerolog.Logger) *HistoryDB {
	return &HistoryDB{
		db:  db,
		log: log.With().Str("component", "history_db").Logger(),
	}
}

// CloseOn returns the close price for a ticker on a date. When the exact
// date has no row (weekend, holiday, gap) the most recent prior close is
// returned instead. ok is false when the ticker has no data at or before
// the date at all.
func (h *HistoryDB) CloseOn(ticker string, date time.Time) (float64, bool, error) {
	var close float64
	err := h.db.QueryRow(
		`SELECT close FROM daily_prices
		 WHERE ticker = ? AND date <= ?
		 ORDER BY date DESC LIMIT 1`,
		normalizeTicker(ticker),
		date.UTC().Format(dateLayout),
	).Scan(&close)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query close price: %w", err)
	}
	return close, true, nil
}

// Upsert stores one daily close.
func (h *HistoryDB) Upsert(ticker string, date time.Time, close float64) error {
	_, err := h.db.Exec(
		`INSERT INTO daily_prices (ticker, date, close) VALUES (?, ?, ?)
		 ON CONFLICT(ticker, date) DO UPDATE SET close = excluded.close`,
		normalizeTicker(ticker),
		date.UTC().Format(dateLayout),
		close,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily price: %w", err)
	}
	return nil
}

// Coverage returns the first and last stored dates for a ticker; ok is
// false when the ticker has no rows.
func (h *HistoryDB) Coverage(ticker string) (first, last time.Time, ok bool, err error) {
	var firstStr, lastStr sql.NullString
	err = h.db.QueryRow(
		`SELECT MIN(date), MAX(date) FROM daily_prices WHERE ticker = ?`,
		normalizeTicker(ticker),
	).Scan(&firstStr, &lastStr)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("failed to query price coverage: %w", err)
	}
	if !firstStr.Valid || !lastStr.Valid {
		return time.Time{}, time.Time{}, false, nil
	}
	if first, err = time.ParseInLocation(dateLayout, firstStr.String, time.UTC); err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("bad coverage date %q: %w", firstStr.String, err)
	}
	if last, err = time.ParseInLocation(dateLayout, lastStr.String, time.UTC); err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("bad coverage date %q: %w", lastStr.String, err)
	}
	return first, last, true, nil
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
