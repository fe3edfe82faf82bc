package sizing

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/hadoku/trader/internal/domain"
)

// SizeInput carries the per-signal state the sizer needs beyond the agent
// configuration.
type SizeInput struct {
	// Score is the signal's final score; ScoreKnown is false when the
	// caller never ran the scoring engine (a configuration bug for the
	// score-driven modes).
	Score      float64
	ScoreKnown bool

	// DisclosedSize selects the bucket for smart_budget.
	DisclosedSize float64

	// AcceptedCount is the number of buys already accepted this period.
	// equal_split divides the budget by AcceptedCount+1 so the decision
	// stays causal within the month.
	AcceptedCount int

	// HalfSize halves the mode amount before any clamp is applied.
	HalfSize bool

	// AvailableBudget is the cash the amount may not exceed.
	AvailableBudget float64

	// Stats is required by smart_budget and ignored by the other modes.
	Stats *domain.BucketStats
}

// Sizer maps a scored signal to a dollar amount under the agent's mode.
type Sizer struct {
	log zerolog.Logger
}

// NewSizer creates a position sizer.
func NewSizer(log zerolog.Logger) *Sizer {
	return &Sizer{log: log.With().Str("component", "sizing").Logger()}
}

// Size computes the dollar amount for one signal. Configuration errors
// (unknown mode, a score-driven mode without a score, smart_budget without
// statistics) are returned as errors; a result of 0 with a nil error means
// the amount fell below the configured minimum and the signal should be
// skipped, not that sizing failed.
func (s *Sizer) Size(cfg domain.AgentConfig, in SizeInput) (float64, error) {
	amount, err := s.modeAmount(cfg, in)
	if err != nil {
		return 0, err
	}

	if in.HalfSize {
		amount /= 2
	}

	sz := cfg.Sizing
	if sz.MaxPositionAmount > 0 {
		amount = math.Min(amount, sz.MaxPositionAmount)
	}
	if sz.MaxPositionPct > 0 {
		amount = math.Min(amount, sz.MaxPositionPct*cfg.MonthlyBudget)
	}
	amount = math.Min(amount, in.AvailableBudget)

	if amount <= 0 || amount < sz.MinPositionAmount {
		return 0, nil
	}
	return FloorCents(amount), nil
}

func (s *Sizer) modeAmount(cfg domain.AgentConfig, in SizeInput) (float64, error) {
	sz := cfg.Sizing
	switch sz.Mode {
	case domain.SizingScoreSquared:
		if !in.ScoreKnown {
			return 0, fmt.Errorf("sizing mode %s requires a score", sz.Mode)
		}
		return in.Score * in.Score * sz.BaseMultiplier * cfg.MonthlyBudget, nil

	case domain.SizingScoreLinear:
		if !in.ScoreKnown {
			return 0, fmt.Errorf("sizing mode %s requires a score", sz.Mode)
		}
		return sz.BaseAmount * in.Score, nil

	case domain.SizingEqualSplit:
		n := in.AcceptedCount + 1
		if n < 1 {
			n = 1
		}
		return cfg.MonthlyBudget / float64(n), nil

	case domain.SizingSmartBudget:
		return s.smartBudgetAmount(cfg, in)

	default:
		return 0, fmt.Errorf("unknown sizing mode %q", sz.Mode)
	}
}

// smartBudgetAmount allocates the available budget across buckets in
// proportion to their historical exposure, then spreads each bucket's share
// over its expected monthly count.
func (s *Sizer) smartBudgetAmount(cfg domain.AgentConfig, in SizeInput) (float64, error) {
	stats := in.Stats
	if cfg.Sizing.BucketOverrides != nil {
		stats = cfg.Sizing.BucketOverrides
	}
	if stats == nil {
		return 0, fmt.Errorf("sizing mode %s requires bucket statistics", domain.SizingSmartBudget)
	}

	total := stats.TotalExposure()
	if total <= 0 {
		s.log.Warn().Msg("Bucket exposure is zero, using fallback statistics")
		fallback := FallbackBucketStats()
		stats = &fallback
		total = stats.TotalExposure()
	}

	bucket := domain.BucketFor(in.DisclosedSize, cfg.Sizing.BucketSmallMax, cfg.Sizing.BucketMediumMax)
	stat := stats.For(bucket)
	if stat.ExpectedMonthly <= 0 {
		return 0, nil
	}

	bucketBudget := in.AvailableBudget * (stat.Exposure / total)
	return bucketBudget / stat.ExpectedMonthly, nil
}

// FloorCents truncates an amount to whole cents. The simulator relies on
// truncation, never rounding up, so spend cannot exceed available cash.
func FloorCents(amount float64) float64 {
	return math.Floor(amount*100) / 100
}
