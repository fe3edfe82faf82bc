package politicians

import "github.com/rs/zerolog"

// StatsRefreshJob periodically rebuilds politician statistics from stored
// signals so the production scoring path reads fresh win rates.
type StatsRefreshJob struct {
	repo *Repository
	log  zerolog.Logger
}

// NewStatsRefreshJob creates the refresh job.
func NewStatsRefreshJob(repo *Repository, log zerolog.Logger) *StatsRefreshJob {
	return &StatsRefreshJob{
		repo: repo,
		log:  log.With().Str("job", "politician-stats-refresh").Logger(),
	}
}

// Name returns the job identifier.
func (j *StatsRefreshJob) Name() string { return "politician-stats-refresh" }

// Run recomputes all politician statistics.
func (j *StatsRefreshJob) Run() error {
	return j.repo.RecomputeStats()
}
