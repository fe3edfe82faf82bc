package backtest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hadoku/trader/internal/domain"
	"github.com/hadoku/trader/internal/modules/politicians"
	"github.com/hadoku/trader/internal/modules/prices"
	"github.com/hadoku/trader/internal/modules/scoring"
	"github.com/hadoku/trader/internal/modules/signals"
	"github.com/hadoku/trader/internal/modules/sizing"
)

// Service assembles and persists simulation runs: it loads the signal set,
// snapshots the scoring statistics, and hands everything to a fresh
// Simulator so runs never share state.
type Service struct {
	signals     *signals.Repository
	politicians *politicians.Repository
	prices      prices.Source
	results     *ResultRepository
	log         zerolog.Logger
}

// NewService creates a backtest service.
func NewService(
	signalRepo *signals.Repository,
	politicianRepo *politicians.Repository,
	priceSource prices.Source,
	results *ResultRepository,
	log zerolog.Logger,
) *Service {
	return &Service{
		signals:     signalRepo,
		politicians: politicianRepo,
		prices:      priceSource,
		results:     results,
		log:         log.With().Str("component", "backtest").Logger(),
	}
}

// RunOptions narrows the signal set for one run; zero values disable a
// criterion.
type RunOptions struct {
	Politician string
	From       time.Time
	To         time.Time
}

// Run executes one simulation for an agent configuration and persists the
// result. Statistics are snapshotted up front so the run performs no
// per-signal store queries.
func (s *Service) Run(cfg domain.AgentConfig, opts RunOptions) (*domain.SimulationResult, error) {
	sigs, err := s.signals.List(signals.ListFilter{
		Politician: opts.Politician,
		From:       opts.From,
		To:         opts.To,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load signals: %w", err)
	}

	provider, err := s.snapshotStats()
	if err != nil {
		return nil, err
	}

	engine := scoring.NewEngine(provider, s.log)
	sizer := sizing.NewSizer(s.log)
	cache := prices.NewCache(s.prices, s.log)
	simulator := NewSimulator(engine, sizer, cache, s.log)

	started := time.Now()
	result, err := simulator.Run(cfg, sigs)
	if err != nil {
		return nil, err
	}

	result.RunID = uuid.New().String()
	result.CreatedAt = time.Now().UTC()
	if err := s.results.Save(result); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("run_id", result.RunID).
		Str("agent", cfg.Name).
		Int("signals", len(sigs)).
		Int("months", len(result.Snapshots)).
		Dur("elapsed", time.Since(started)).
		Msg("Simulation completed")
	return result, nil
}

// Result returns a stored run, or nil when unknown.
func (s *Service) Result(runID string) (*domain.SimulationResult, error) {
	return s.results.Get(runID)
}

// Runs lists stored run summaries, newest first.
func (s *Service) Runs(agent string, limit int) ([]RunSummary, error) {
	return s.results.List(agent, limit)
}

// snapshotStats preloads politician and confirmation statistics into an
// in-memory provider for the run.
func (s *Service) snapshotStats() (*scoring.SnapshotStatsProvider, error) {
	politicianStats, err := s.politicians.All()
	if err != nil {
		return nil, fmt.Errorf("failed to load politician stats: %w", err)
	}
	confirmations, err := s.signals.AllConfirmationCounts()
	if err != nil {
		return nil, fmt.Errorf("failed to load confirmation counts: %w", err)
	}
	return &scoring.SnapshotStatsProvider{
		Politicians:   politicianStats,
		Confirmations: confirmations,
	}, nil
}
