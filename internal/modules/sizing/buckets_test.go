package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hadoku/trader/internal/domain"
)

func sigOfSize(size float64) domain.EnrichedSignal {
	return domain.EnrichedSignal{RawSignal: domain.RawSignal{
		Ticker:  "AAPL",
		Action:  domain.ActionBuy,
		SizeMin: size,
	}}
}

func TestCalcBucketStats(t *testing.T) {
	sigs := []domain.EnrichedSignal{
		sigOfSize(1000), sigOfSize(5000), sigOfSize(9000), sigOfSize(13000), // small
		sigOfSize(20000), sigOfSize(40000), // medium
		sigOfSize(100000), // large
	}

	stats := CalcBucketStats(sigs, 0, 0, 2)

	assert.Equal(t, 2, stats.SampleMonths)

	assert.InDelta(t, 2.0, stats.Small.ExpectedMonthly, 1e-9)
	assert.InDelta(t, 7000, stats.Small.AvgSize, 1e-9)
	assert.InDelta(t, 14000, stats.Small.Exposure, 1e-9)

	assert.InDelta(t, 1.0, stats.Medium.ExpectedMonthly, 1e-9)
	assert.InDelta(t, 30000, stats.Medium.AvgSize, 1e-9)
	assert.InDelta(t, 30000, stats.Medium.Exposure, 1e-9)

	assert.InDelta(t, 0.5, stats.Large.ExpectedMonthly, 1e-9)
	assert.InDelta(t, 100000, stats.Large.AvgSize, 1e-9)
	assert.InDelta(t, 50000, stats.Large.Exposure, 1e-9)
}

func TestCalcBucketStats_BoundaryClassification(t *testing.T) {
	// 15000 is small, 15001 is medium, 50000 is medium, 50001 is large.
	stats := CalcBucketStats([]domain.EnrichedSignal{
		sigOfSize(15000), sigOfSize(15001), sigOfSize(50000), sigOfSize(50001),
	}, 0, 0, 1)

	assert.InDelta(t, 1, stats.Small.ExpectedMonthly, 1e-9)
	assert.InDelta(t, 2, stats.Medium.ExpectedMonthly, 1e-9)
	assert.InDelta(t, 1, stats.Large.ExpectedMonthly, 1e-9)
}

func TestCalcBucketStats_EmptySampleFallsBack(t *testing.T) {
	stats := CalcBucketStats(nil, 0, 0, 12)

	assert.Equal(t, 1, stats.SampleMonths)
	for _, b := range []domain.Bucket{domain.BucketSmall, domain.BucketMedium, domain.BucketLarge} {
		stat := stats.For(b)
		assert.InDelta(t, 1, stat.ExpectedMonthly, 1e-9, "bucket %s", b)
		assert.Greater(t, stat.AvgSize, 0.0, "bucket %s", b)
		assert.Greater(t, stat.Exposure, 0.0, "bucket %s", b)
	}
	assert.Greater(t, stats.TotalExposure(), 0.0)
}

func TestCalcBucketStats_EmptyBucketGetsZeroExposure(t *testing.T) {
	// Only small signals: medium and large carry no exposure so they draw
	// no budget, but keep a fallback average for display.
	stats := CalcBucketStats([]domain.EnrichedSignal{sigOfSize(1000)}, 0, 0, 1)

	assert.Zero(t, stats.Medium.Exposure)
	assert.Zero(t, stats.Medium.ExpectedMonthly)
	assert.Greater(t, stats.Medium.AvgSize, 0.0)
	assert.Zero(t, stats.Large.Exposure)
	assert.InDelta(t, stats.TotalExposure(), stats.Small.Exposure, 1e-9)
}

func TestCalcBucketStats_MonthsFloor(t *testing.T) {
	stats := CalcBucketStats([]domain.EnrichedSignal{sigOfSize(1000)}, 0, 0, 0)
	assert.Equal(t, 1, stats.SampleMonths)
	assert.InDelta(t, 1, stats.Small.ExpectedMonthly, 1e-9)
}
