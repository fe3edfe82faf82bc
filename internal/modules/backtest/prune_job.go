package backtest

import (
	"time"

	"github.com/rs/zerolog"
)

// PruneJob periodically deletes old simulation results from cache.db.
type PruneJob struct {
	results *ResultRepository
	maxAge  time.Duration
	log     zerolog.Logger
}

// NewPruneJob creates the prune job. Runs older than maxAge are deleted.
func NewPruneJob(results *ResultRepository, maxAge time.Duration, log zerolog.Logger) *PruneJob {
	return &PruneJob{
		results: results,
		maxAge:  maxAge,
		log:     log.With().Str("job", "cache-prune").Logger(),
	}
}

// Name returns the job identifier.
func (j *PruneJob) Name() string { return "cache-prune" }

// Run deletes expired simulation runs.
func (j *PruneJob) Run() error {
	pruned, err := j.results.Prune(time.Now().Add(-j.maxAge))
	if err != nil {
		return err
	}
	if pruned > 0 {
		j.log.Info().Int64("runs", pruned).Msg("Pruned old simulation runs")
	}
	return nil
}
