package domain

// SizingMode selects how a score (or bucket) becomes a dollar amount.
type SizingMode string

const (
	SizingScoreSquared SizingMode = "score_squared"
	SizingScoreLinear  SizingMode = "score_linear"
	SizingEqualSplit   SizingMode = "equal_split"
	SizingSmartBudget  SizingMode = "smart_budget"
)

// SizingConfig holds the sizing mode and its tunables plus the clamps
// applied after the mode-specific amount is computed.
type SizingConfig struct {
	Mode SizingMode `json:"mode"`

	// score_squared
	BaseMultiplier float64 `json:"base_multiplier,omitempty"`
	// score_linear
	BaseAmount float64 `json:"base_amount,omitempty"`

	// smart_budget bucket boundaries: sizes strictly below SmallMax are
	// small, sizes up to MediumMax are medium, larger are large.
	// Zero values fall back to the defaults (15001 / 50000).
	BucketSmallMax  float64 `json:"bucket_small_max,omitempty"`
	BucketMediumMax float64 `json:"bucket_medium_max,omitempty"`
	// Manual bucket statistics override; when set, smart_budget uses these
	// instead of historically derived stats.
	BucketOverrides *BucketStats `json:"bucket_overrides,omitempty"`

	MaxPositionAmount float64 `json:"max_position_amount,omitempty"` // absolute dollar cap, 0 = off
	MaxPositionPct    float64 `json:"max_position_pct,omitempty"`    // fraction of monthly budget, 0 = off
	MinPositionAmount float64 `json:"min_position_amount,omitempty"` // below this the sizer returns 0
	MaxPerTicker      int     `json:"max_per_ticker,omitempty"`      // open-lot cap per ticker, 0 = off
}

// AgentConfig is one strategy: its hard filters, execution thresholds,
// sizing selection and optional scoring configuration. A nil whitelist
// means the corresponding filter is disabled; an empty one rejects all.
type AgentConfig struct {
	Name          string  `json:"name"`
	MonthlyBudget float64 `json:"monthly_budget"`

	// Hard filter thresholds
	MaxSignalAgeDays    int         `json:"max_signal_age_days"`
	MaxPriceMovePct     float64     `json:"max_price_move_pct"`
	PoliticianWhitelist []string    `json:"politician_whitelist,omitempty"`
	TickerWhitelist     []string    `json:"ticker_whitelist,omitempty"`
	AllowedAssetTypes   []AssetType `json:"allowed_asset_types,omitempty"`

	// Execution thresholds. Scores below ExecuteThreshold are skipped;
	// scores in [ExecuteThreshold, HalfSizeThreshold) execute at half
	// size when HalfSizeThreshold is set (> 0).
	ExecuteThreshold  float64 `json:"execute_threshold"`
	HalfSizeThreshold float64 `json:"half_size_threshold,omitempty"`

	Sizing  SizingConfig   `json:"sizing"`
	Scoring *ScoringConfig `json:"scoring,omitempty"`
}
