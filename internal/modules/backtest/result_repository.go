package backtest

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/hadoku/trader/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

// RunSummary is the listing row for a stored run, without the payload.
type RunSummary struct {
	RunID     string    `json:"run_id"`
	Agent     string    `json:"agent"`
	CreatedAt time.Time `json:"created_at"`
}

// ResultRepository stores simulation results as msgpack blobs in cache.db.
// Results are ephemeral; Prune drops old runs.
type ResultRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewResultRepository creates a new simulation result repository
func NewResultRepository(db *sql.DB, log zerolog.Logger) *ResultRepository {
	return &ResultRepository{
		db:  db,
		log: log.With().Str("repo", "backtest_results").Logger(),
	}
}

// Save stores one result under its run ID.
func (r *ResultRepository) Save(result *domain.SimulationResult) error {
	blob, err := msgpack.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode simulation result: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO simulation_runs (run_id, agent, created_at, result) VALUES (?, ?, ?, ?)`,
		result.RunID, result.Agent, result.CreatedAt.UTC().Format(timestampLayout), blob,
	)
	if err != nil {
		return fmt.Errorf("failed to store simulation result: %w", err)
	}
	return nil
}

// Get returns one stored result, or nil when the run ID is unknown.
func (r *ResultRepository) Get(runID string) (*domain.SimulationResult, error) {
	var blob []byte
	err := r.db.QueryRow(
		`SELECT result FROM simulation_runs WHERE run_id = ?`, runID,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query simulation result: %w", err)
	}

	var result domain.SimulationResult
	if err := msgpack.Unmarshal(blob, &result); err != nil {
		return nil, fmt.Errorf("failed to decode simulation result %s: %w", runID, err)
	}
	return &result, nil
}

// List returns stored run summaries, newest first. An empty agent lists
// every agent's runs; limit <= 0 means no limit.
func (r *ResultRepository) List(agent string, limit int) ([]RunSummary, error) {
	query := `SELECT run_id, agent, created_at FROM simulation_runs`
	args := []interface{}{}
	if agent != "" {
		query += ` WHERE agent = ?`
		args = append(args, agent)
	}
	query += ` ORDER BY created_at DESC, run_id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query simulation runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var summary RunSummary
		var createdAt string
		if err := rows.Scan(&summary.RunID, &summary.Agent, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan simulation run: %w", err)
		}
		if summary.CreatedAt, err = time.ParseInLocation(timestampLayout, createdAt, time.UTC); err != nil {
			return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
		}
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating simulation runs: %w", err)
	}
	return out, nil
}

// Prune deletes runs created before the cutoff and returns how many were
// removed.
func (r *ResultRepository) Prune(before time.Time) (int64, error) {
	res, err := r.db.Exec(
		`DELETE FROM simulation_runs WHERE created_at < ?`,
		before.UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune simulation runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned runs: %w", err)
	}
	return n, nil
}
