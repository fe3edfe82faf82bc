package signals

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hadoku/trader/internal/domain"
)

const dateLayout = "2006-01-02"

// Repository handles signal database operations against signals.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new signal repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "signals").Logger(),
	}
}

// Insert stores a raw signal. Duplicate (ticker, action, trade_date,
// politician, source) rows are ignored so re-ingestion is idempotent.
func (r *Repository) Insert(sig domain.RawSignal) error {
	query := `INSERT OR IGNORE INTO signals
		(ticker, action, asset_type, trade_price, disclosure_price, size_min,
		 politician, source, trade_date, disclosure_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		strings.ToUpper(strings.TrimSpace(sig.Ticker)),
		string(sig.Action),
		string(sig.AssetType),
		sig.TradePrice,
		nullableFloat(sig.DisclosurePrice),
		sig.SizeMin,
		strings.TrimSpace(sig.Politician),
		sig.Source,
		sig.TradeDate.UTC().Format(dateLayout),
		sig.DisclosureDate.UTC().Format(dateLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert signal: %w", err)
	}
	return nil
}

// ListFilter narrows List results; zero values disable a criterion.
type ListFilter struct {
	Ticker     string
	Politician string
	From       time.Time
	To         time.Time
	Limit      int
}

// List returns stored signals ordered by disclosure date ascending.
func (r *Repository) List(f ListFilter) ([]domain.RawSignal, error) {
	query := `SELECT id, ticker, action, asset_type, trade_price, disclosure_price,
		size_min, politician, source, trade_date, disclosure_date
		FROM signals WHERE 1=1`
	args := []interface{}{}

	if f.Ticker != "" {
		query += " AND ticker = ?"
		args = append(args, strings.ToUpper(strings.TrimSpace(f.Ticker)))
	}
	if f.Politician != "" {
		query += " AND politician = ?"
		args = append(args, f.Politician)
	}
	if !f.From.IsZero() {
		query += " AND disclosure_date >= ?"
		args = append(args, f.From.UTC().Format(dateLayout))
	}
	if !f.To.IsZero() {
		query += " AND disclosure_date <= ?"
		args = append(args, f.To.UTC().Format(dateLayout))
	}

	query += " ORDER BY disclosure_date ASC, id ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	var out []domain.RawSignal
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		out = append(out, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signals: %w", err)
	}
	return out, nil
}

// ConfirmationCount returns the number of distinct sources that reported the
// same ticker+action+trade-date triple. Always at least 1 for a stored signal.
func (r *Repository) ConfirmationCount(ticker string, action domain.Action, tradeDate time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(DISTINCT source) FROM signals
		 WHERE ticker = ? AND action = ? AND trade_date = ?`,
		strings.ToUpper(strings.TrimSpace(ticker)),
		string(action),
		tradeDate.UTC().Format(dateLayout),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count confirmations: %w", err)
	}
	if count < 1 {
		count = 1
	}
	return count, nil
}

// AllConfirmationCounts returns every triple with more than one confirming
// source, keyed by "TICKER|action|YYYY-MM-DD". Triples not present in the map
// have exactly one source; backtests preload this map to avoid per-signal
// queries.
func (r *Repository) AllConfirmationCounts() (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT ticker, action, trade_date, COUNT(DISTINCT source) AS n
		 FROM signals
		 GROUP BY ticker, action, trade_date
		 HAVING n > 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to query confirmation counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var ticker, action, tradeDate string
		var n int
		if err := rows.Scan(&ticker, &action, &tradeDate, &n); err != nil {
			return nil, fmt.Errorf("failed to scan confirmation count: %w", err)
		}
		counts[ConfirmationKey(ticker, domain.Action(action), tradeDate)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating confirmation counts: %w", err)
	}
	return counts, nil
}

// ConfirmationKey builds the lookup key used by the preloaded confirmation map.
func ConfirmationKey(ticker string, action domain.Action, tradeDate string) string {
	return strings.ToUpper(strings.TrimSpace(ticker)) + "|" + string(action) + "|" + tradeDate
}

func scanSignal(rows *sql.Rows) (domain.RawSignal, error) {
	var sig domain.RawSignal
	var action, assetType, tradeDate, disclosureDate string
	var disclosurePrice sql.NullFloat64

	err := rows.Scan(&sig.ID, &sig.Ticker, &action, &assetType, &sig.TradePrice,
		&disclosurePrice, &sig.SizeMin, &sig.Politician, &sig.Source,
		&tradeDate, &disclosureDate)
	if err != nil {
		return sig, err
	}

	sig.Action = domain.Action(action)
	sig.AssetType = domain.AssetType(assetType)
	if disclosurePrice.Valid {
		sig.DisclosurePrice = disclosurePrice.Float64
	}
	if sig.TradeDate, err = time.ParseInLocation(dateLayout, tradeDate, time.UTC); err != nil {
		return sig, fmt.Errorf("bad trade_date %q: %w", tradeDate, err)
	}
	if sig.DisclosureDate, err = time.ParseInLocation(dateLayout, disclosureDate, time.UTC); err != nil {
		return sig, fmt.Errorf("bad disclosure_date %q: %w", disclosureDate, err)
	}
	return sig, nil
}

func nullableFloat(v float64) interface{} {
	if v <= 0 {
		return nil
	}
	return v
}
