package domain

// Bucket is one of the three conviction tiers keyed by disclosed size.
type Bucket string

const (
	BucketSmall  Bucket = "small"
	BucketMedium Bucket = "medium"
	BucketLarge  Bucket = "large"
)

// Default bucket boundaries over the disclosed size (dollar lower bound):
// small < 15,001; medium 15,001..50,000; large >= 50,001.
const (
	DefaultBucketSmallMax  = 15001.0
	DefaultBucketMediumMax = 50000.0
)

// BucketStat holds the historical statistics of one bucket.
// Exposure = ExpectedMonthly * AvgSize and is the weight used for
// proportional budget allocation.
type BucketStat struct {
	ExpectedMonthly float64 `json:"expected_monthly" yaml:"expected_monthly"`
	AvgSize         float64 `json:"avg_size" yaml:"avg_size"`
	Exposure        float64 `json:"exposure" yaml:"exposure"`
}

// BucketStats holds the statistics of all three buckets plus the number of
// months the historical sample spans.
type BucketStats struct {
	Small        BucketStat `json:"small" yaml:"small"`
	Medium       BucketStat `json:"medium" yaml:"medium"`
	Large        BucketStat `json:"large" yaml:"large"`
	SampleMonths int        `json:"sample_months" yaml:"sample_months"`
}

// For returns the statistics of one bucket.
func (s BucketStats) For(b Bucket) BucketStat {
	switch b {
	case BucketSmall:
		return s.Small
	case BucketLarge:
		return s.Large
	default:
		return s.Medium
	}
}

// TotalExposure sums the three bucket exposures.
func (s BucketStats) TotalExposure() float64 {
	return s.Small.Exposure + s.Medium.Exposure + s.Large.Exposure
}

// BucketFor classifies a disclosed size given the two boundaries. Zero
// boundaries fall back to the defaults.
func BucketFor(sizeMin, smallMax, mediumMax float64) Bucket {
	if smallMax <= 0 {
		smallMax = DefaultBucketSmallMax
	}
	if mediumMax <= 0 {
		mediumMax = DefaultBucketMediumMax
	}
	switch {
	case sizeMin < smallMax:
		return BucketSmall
	case sizeMin <= mediumMax:
		return BucketMedium
	default:
		return BucketLarge
	}
}
