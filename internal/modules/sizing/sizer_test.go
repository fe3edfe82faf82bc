package sizing

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadoku/trader/internal/domain"
)

func agentWith(sz domain.SizingConfig, budget float64) domain.AgentConfig {
	return domain.AgentConfig{Name: "test", MonthlyBudget: budget, Sizing: sz}
}

func TestSize_ScoreSquared(t *testing.T) {
	sizer := NewSizer(zerolog.Nop())
	cfg := agentWith(domain.SizingConfig{
		Mode:           domain.SizingScoreSquared,
		BaseMultiplier: 0.15,
	}, 1000)

	amount, err := sizer.Size(cfg, SizeInput{
		Score:           0.8,
		ScoreKnown:      true,
		AvailableBudget: 1000,
	})
	require.NoError(t, err)
	assert.InDelta(t, 96, amount, 0.01)
}

func TestSize_ScoreLinear(t *testing.T) {
	sizer := NewSizer(zerolog.Nop())
	cfg := agentWith(domain.SizingConfig{
		Mode:       domain.SizingScoreLinear,
		BaseAmount: 15,
	}, 1000)

	amount, err := sizer.Size(cfg, SizeInput{
		Score:           0.8,
		ScoreKnown:      true,
		AvailableBudget: 1000,
	})
	require.NoError(t, err)
	assert.InDelta(t, 12, amount, 0.01)
}

func TestSize_EqualSplit(t *testing.T) {
	sizer := NewSizer(zerolog.Nop())
	cfg := agentWith(domain.SizingConfig{Mode: domain.SizingEqualSplit}, 900)

	// First accepted buy of the month splits over 1, third over 3.
	amount, err := sizer.Size(cfg, SizeInput{AcceptedCount: 0, AvailableBudget: 900})
	require.NoError(t, err)
	assert.InDelta(t, 900, amount, 0.01)

	amount, err = sizer.Size(cfg, SizeInput{AcceptedCount: 2, AvailableBudget: 900})
	require.NoError(t, err)
	assert.InDelta(t, 300, amount, 0.01)
}

func TestSize_ScoreModesRequireScore(t *testing.T) {
	sizer := NewSizer(zerolog.Nop())
	for _, mode := range []domain.SizingMode{domain.SizingScoreSquared, domain.SizingScoreLinear} {
		cfg := agentWith(domain.SizingConfig{Mode: mode, BaseMultiplier: 0.1, BaseAmount: 10}, 1000)
		_, err := sizer.Size(cfg, SizeInput{ScoreKnown: false, AvailableBudget: 1000})
		assert.Error(t, err, "mode %s", mode)
	}
}

func TestSize_UnknownModeFails(t *testing.T) {
	sizer := NewSizer(zerolog.Nop())
	cfg := agentWith(domain.SizingConfig{Mode: "martingale"}, 1000)
	_, err := sizer.Size(cfg, SizeInput{ScoreKnown: true, AvailableBudget: 1000})
	assert.ErrorContains(t, err, "unknown sizing mode")
}

func TestSize_HalfSizeIsExactlyHalfBeforeMinClamp(t *testing.T) {
	sizer := NewSizer(zerolog.Nop())
	cfg := agentWith(domain.SizingConfig{
		Mode:           domain.SizingScoreSquared,
		BaseMultiplier: 0.15,
	}, 1000)

	full, err := sizer.Size(cfg, SizeInput{Score: 0.8, ScoreKnown: true, AvailableBudget: 1000})
	require.NoError(t, err)
	half, err := sizer.Size(cfg, SizeInput{Score: 0.8, ScoreKnown: true, AvailableBudget: 1000, HalfSize: true})
	require.NoError(t, err)
	assert.InDelta(t, full/2, half, 0.01)
}

func TestSize_HalfSizeBelowMinimumReturnsZero(t *testing.T) {
	sizer := NewSizer(zerolog.Nop())
	cfg := agentWith(domain.SizingConfig{
		Mode:              domain.SizingScoreSquared,
		BaseMultiplier:    0.15,
		MinPositionAmount: 50,
	}, 1000)

	half, err := sizer.Size(cfg, SizeInput{Score: 0.8, ScoreKnown: true, AvailableBudget: 1000, HalfSize: true})
	require.NoError(t, err)
	assert.Zero(t, half, "48 is below the 50 minimum")
}

func TestSize_Clamps(t *testing.T) {
	sizer := NewSizer(zerolog.Nop())

	base := domain.SizingConfig{Mode: domain.SizingScoreSquared, BaseMultiplier: 1.0}

	t.Run("absolute max", func(t *testing.T) {
		sz := base
		sz.MaxPositionAmount = 100
		amount, err := sizer.Size(agentWith(sz, 1000), SizeInput{Score: 1, ScoreKnown: true, AvailableBudget: 1000})
		require.NoError(t, err)
		assert.InDelta(t, 100, amount, 0.01)
	})

	t.Run("percent of budget", func(t *testing.T) {
		sz := base
		sz.MaxPositionPct = 0.25
		amount, err := sizer.Size(agentWith(sz, 1000), SizeInput{Score: 1, ScoreKnown: true, AvailableBudget: 1000})
		require.NoError(t, err)
		assert.InDelta(t, 250, amount, 0.01)
	})

	t.Run("available budget", func(t *testing.T) {
		amount, err := sizer.Size(agentWith(base, 1000), SizeInput{Score: 1, ScoreKnown: true, AvailableBudget: 80})
		require.NoError(t, err)
		assert.InDelta(t, 80, amount, 0.01)
	})
}

func TestSize_FloorsToCents(t *testing.T) {
	sizer := NewSizer(zerolog.Nop())
	cfg := agentWith(domain.SizingConfig{
		Mode:       domain.SizingScoreLinear,
		BaseAmount: 100,
	}, 1000)

	// 100 * (1/3) = 33.333... floors to 33.33.
	amount, err := sizer.Size(cfg, SizeInput{Score: 1.0 / 3.0, ScoreKnown: true, AvailableBudget: 1000})
	require.NoError(t, err)
	assert.Equal(t, 33.33, amount)
}

func TestSize_SmartBudgetAllocation(t *testing.T) {
	sizer := NewSizer(zerolog.Nop())
	stats := &domain.BucketStats{
		Small:        domain.BucketStat{ExpectedMonthly: 10, AvgSize: 5000, Exposure: 50000},
		Medium:       domain.BucketStat{ExpectedMonthly: 4, AvgSize: 25000, Exposure: 100000},
		Large:        domain.BucketStat{ExpectedMonthly: 1, AvgSize: 100000, Exposure: 100000},
		SampleMonths: 12,
	}
	cfg := agentWith(domain.SizingConfig{Mode: domain.SizingSmartBudget}, 1000)
	budget := 1000.0

	sizeFor := func(disclosed float64) float64 {
		amount, err := sizer.Size(cfg, SizeInput{
			ScoreKnown:      true,
			DisclosedSize:   disclosed,
			AvailableBudget: budget,
			Stats:           stats,
		})
		require.NoError(t, err)
		return amount
	}

	small := sizeFor(1000)   // small bucket
	medium := sizeFor(20000) // medium bucket
	large := sizeFor(100000) // large bucket

	// Exposure ratios 0.2 / 0.4 / 0.4 over a 1000 budget.
	assert.InDelta(t, 20, small, 0.01)   // 200 / 10
	assert.InDelta(t, 100, medium, 0.01) // 400 / 4
	assert.InDelta(t, 400, large, 0.01)  // 400 / 1

	// Per-trade sizes weighted by expected counts reconstruct the budget.
	total := small*stats.Small.ExpectedMonthly +
		medium*stats.Medium.ExpectedMonthly +
		large*stats.Large.ExpectedMonthly
	assert.InDelta(t, budget, total, 0.05)
}

func TestSize_SmartBudgetRequiresStats(t *testing.T) {
	sizer := NewSizer(zerolog.Nop())
	cfg := agentWith(domain.SizingConfig{Mode: domain.SizingSmartBudget}, 1000)
	_, err := sizer.Size(cfg, SizeInput{AvailableBudget: 1000})
	assert.ErrorContains(t, err, "bucket statistics")
}

func TestSize_SmartBudgetOverridesWin(t *testing.T) {
	sizer := NewSizer(zerolog.Nop())
	overrides := &domain.BucketStats{
		Small:        domain.BucketStat{ExpectedMonthly: 1, AvgSize: 100, Exposure: 100},
		Medium:       domain.BucketStat{ExpectedMonthly: 1, AvgSize: 100, Exposure: 100},
		Large:        domain.BucketStat{ExpectedMonthly: 1, AvgSize: 100, Exposure: 100},
		SampleMonths: 1,
	}
	cfg := agentWith(domain.SizingConfig{
		Mode:            domain.SizingSmartBudget,
		BucketOverrides: overrides,
	}, 1000)

	// Equal exposures: every bucket gets a third of the budget.
	amount, err := sizer.Size(cfg, SizeInput{DisclosedSize: 1000, AvailableBudget: 900, Stats: fallbackStatsPtr()})
	require.NoError(t, err)
	assert.InDelta(t, 300, amount, 0.01)
}

func TestSize_SmartBudgetZeroExposureFallsBack(t *testing.T) {
	sizer := NewSizer(zerolog.Nop())
	cfg := agentWith(domain.SizingConfig{Mode: domain.SizingSmartBudget}, 1000)
	amount, err := sizer.Size(cfg, SizeInput{
		DisclosedSize:   1000,
		AvailableBudget: 1000,
		Stats:           &domain.BucketStats{},
	})
	require.NoError(t, err)
	assert.Greater(t, amount, 0.0)
}

func fallbackStatsPtr() *domain.BucketStats {
	stats := FallbackBucketStats()
	return &stats
}
