package domain

// ScoreComponent is one enabled scoring component with its tunables.
// A ScoringConfig carries only the components that are present; the engine
// iterates them and never sees absent components. This replaces the
// "struct full of nullable fields" shape with a tagged set of variants.
type ScoreComponent interface {
	// ComponentName is the stable identifier used in score breakdowns.
	ComponentName() string
	// ComponentWeight is the weight of this component in the final average.
	ComponentWeight() float64
}

// ScoringConfig is the set of enabled components for one agent.
type ScoringConfig struct {
	Components []ScoreComponent `json:"components" yaml:"components"`
}

// ScoreResult is the final normalized score plus the per-component raw
// sub-scores. Sub-scores are not clamped; only Score is guaranteed in [0,1].
type ScoreResult struct {
	Score     float64            `json:"score" yaml:"score"`
	Breakdown map[string]float64 `json:"breakdown" yaml:"breakdown"`
}

// Component names as they appear in configs and breakdowns.
const (
	ComponentTimeDecay         = "time_decay"
	ComponentPriceMovement     = "price_movement"
	ComponentPositionSize      = "position_size"
	ComponentPoliticianSkill   = "politician_skill"
	ComponentSourceQuality     = "source_quality"
	ComponentFilingSpeed       = "filing_speed"
	ComponentCrossConfirmation = "cross_confirmation"
)

// TimeDecayConfig scores freshness as 0.5^(days/half-life). When
// FilingHalfLifeDays is set, the same decay is computed on the filing clock
// and the less favorable of the two values wins.
type TimeDecayConfig struct {
	Weight             float64 `json:"weight" yaml:"weight"`
	HalfLifeDays       float64 `json:"half_life_days" yaml:"half_life_days"`
	FilingHalfLifeDays float64 `json:"filing_half_life_days,omitempty" yaml:"filing_half_life_days,omitempty"` // 0 = disabled
}

func (c TimeDecayConfig) ComponentName() string    { return ComponentTimeDecay }
func (c TimeDecayConfig) ComponentWeight() float64 { return c.Weight }

// PriceMovementConfig scores absolute price drift by piecewise-linear
// interpolation over anchors at 0/5/15/25 percent; zero beyond 25 percent.
// Buys whose price dropped since the disclosed trade get the dip bonus
// multiplier, capped at the same value.
type PriceMovementConfig struct {
	Weight float64 `json:"weight" yaml:"weight"`
	// AnchorScores are the scores at the 0%, 5%, 15% and 25% drift anchors.
	AnchorScores [4]float64 `json:"anchor_scores" yaml:"anchor_scores"`
	DipBonus     float64    `json:"dip_bonus,omitempty" yaml:"dip_bonus,omitempty"` // 0 = default 1.2
}

func (c PriceMovementConfig) ComponentName() string    { return ComponentPriceMovement }
func (c PriceMovementConfig) ComponentWeight() float64 { return c.Weight }

// PositionSizeConfig is a threshold ladder over the disclosed size. Scores
// must be one element longer than Thresholds; the sub-score is
// Scores[number of thresholds met].
type PositionSizeConfig struct {
	Weight     float64   `json:"weight" yaml:"weight"`
	Thresholds []float64 `json:"thresholds" yaml:"thresholds"` // ascending dollar thresholds
	Scores     []float64 `json:"scores" yaml:"scores"`              // len(Thresholds)+1
}

func (c PositionSizeConfig) ComponentName() string    { return ComponentPositionSize }
func (c PositionSizeConfig) ComponentWeight() float64 { return c.Weight }

// PoliticianSkillConfig scores the discloser's historical win rate, clamped
// to [0.4, 0.7] to bound the influence of noisy small samples. Politicians
// with fewer than MinTrades recorded trades score Default.
type PoliticianSkillConfig struct {
	Weight    float64 `json:"weight" yaml:"weight"`
	Default   float64 `json:"default" yaml:"default"`
	MinTrades int     `json:"min_trades" yaml:"min_trades"`
}

func (c PoliticianSkillConfig) ComponentName() string    { return ComponentPoliticianSkill }
func (c PoliticianSkillConfig) ComponentWeight() float64 { return c.Weight }

// SourceQualityConfig scores the reporting source: a per-source base score
// (with a "default" fallback) plus a bonus proportional to the number of
// additional confirming sources, capped at MaxBonus.
type SourceQualityConfig struct {
	Weight            float64            `json:"weight" yaml:"weight"`
	Scores            map[string]float64 `json:"scores" yaml:"scores"` // keyed by source id, "default" fallback
	ConfirmationBonus float64            `json:"confirmation_bonus" yaml:"confirmation_bonus"`
	MaxBonus          float64            `json:"max_bonus" yaml:"max_bonus"`
}

func (c SourceQualityConfig) ComponentName() string    { return ComponentSourceQuality }
func (c SourceQualityConfig) ComponentWeight() float64 { return c.Weight }

// FilingSpeedConfig rewards fast filings (within 7 days) and penalizes slow
// ones (30 days or more); anything in between is neutral 1.0.
type FilingSpeedConfig struct {
	Weight    float64 `json:"weight" yaml:"weight"`
	FastScore float64 `json:"fast_score" yaml:"fast_score"` // days_since_filing difference <= 7
	SlowScore float64 `json:"slow_score" yaml:"slow_score"` // >= 30
}

func (c FilingSpeedConfig) ComponentName() string    { return ComponentFilingSpeed }
func (c FilingSpeedConfig) ComponentWeight() float64 { return c.Weight }

// CrossConfirmationConfig scores 1 + min((confirmations-1)*BonusPerSource, MaxBonus).
type CrossConfirmationConfig struct {
	Weight         float64 `json:"weight" yaml:"weight"`
	BonusPerSource float64 `json:"bonus_per_source" yaml:"bonus_per_source"`
	MaxBonus       float64 `json:"max_bonus" yaml:"max_bonus"`
}

func (c CrossConfirmationConfig) ComponentName() string    { return ComponentCrossConfirmation }
func (c CrossConfirmationConfig) ComponentWeight() float64 { return c.Weight }
