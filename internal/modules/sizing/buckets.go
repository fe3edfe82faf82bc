// Package sizing turns scores and bucket statistics into dollar amounts.
package sizing

import "github.com/hadoku/trader/internal/domain"

// Fallback averages used when the historical sample is empty, one per bucket.
const (
	fallbackAvgSmall  = 8000.0
	fallbackAvgMedium = 30000.0
	fallbackAvgLarge  = 75000.0
)

// CalcBucketStats derives bucket statistics from signals that already
// survived filtering and scoring. months is the span of the historical
// sample; values below 1 are treated as 1. An empty sample returns a safe
// fallback (rate 1 per bucket, default average sizes) so downstream budget
// allocation never divides by zero.
func CalcBucketStats(sigs []domain.EnrichedSignal, smallMax, mediumMax float64, months int) domain.BucketStats {
	if months < 1 {
		months = 1
	}
	if len(sigs) == 0 {
		return FallbackBucketStats()
	}

	counts := map[domain.Bucket]int{}
	sums := map[domain.Bucket]float64{}
	for _, sig := range sigs {
		b := domain.BucketFor(sig.SizeMin, smallMax, mediumMax)
		counts[b]++
		sums[b] += sig.SizeMin
	}

	stat := func(b domain.Bucket, fallbackAvg float64) domain.BucketStat {
		n := counts[b]
		if n == 0 {
			return domain.BucketStat{AvgSize: fallbackAvg}
		}
		rate := float64(n) / float64(months)
		avg := sums[b] / float64(n)
		return domain.BucketStat{
			ExpectedMonthly: rate,
			AvgSize:         avg,
			Exposure:        rate * avg,
		}
	}

	return domain.BucketStats{
		Small:        stat(domain.BucketSmall, fallbackAvgSmall),
		Medium:       stat(domain.BucketMedium, fallbackAvgMedium),
		Large:        stat(domain.BucketLarge, fallbackAvgLarge),
		SampleMonths: months,
	}
}

// FallbackBucketStats is the degenerate-sample answer: one expected trade
// per bucket per month at the default average sizes.
func FallbackBucketStats() domain.BucketStats {
	mk := func(avg float64) domain.BucketStat {
		return domain.BucketStat{ExpectedMonthly: 1, AvgSize: avg, Exposure: avg}
	}
	return domain.BucketStats{
		Small:        mk(fallbackAvgSmall),
		Medium:       mk(fallbackAvgMedium),
		Large:        mk(fallbackAvgLarge),
		SampleMonths: 1,
	}
}
