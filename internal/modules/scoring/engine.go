package scoring

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/hadoku/trader/internal/domain"
)

// Engine computes normalized signal scores from an agent's component set.
type Engine struct {
	stats StatsProvider
	log   zerolog.Logger
}

// NewEngine creates a scoring engine backed by the given statistics provider.
func NewEngine(stats StatsProvider, log zerolog.Logger) *Engine {
	return &Engine{
		stats: stats,
		log:   log.With().Str("component", "scoring").Logger(),
	}
}

// Score evaluates one enriched signal against a scoring configuration.
// Each present component contributes its raw sub-score times its weight;
// the result is the weighted mean over the components actually present,
// clamped to [0,1]. An empty configuration scores 0. Sub-scores in the
// breakdown are intentionally left unclamped.
func (e *Engine) Score(cfg domain.ScoringConfig, sig domain.EnrichedSignal) domain.ScoreResult {
	result := domain.ScoreResult{
		Breakdown: make(map[string]float64, len(cfg.Components)),
	}

	var weightedSum, totalWeight float64
	for _, component := range cfg.Components {
		raw := e.scoreComponent(component, sig)
		result.Breakdown[component.ComponentName()] = raw
		weightedSum += raw * component.ComponentWeight()
		totalWeight += component.ComponentWeight()
	}

	if totalWeight <= 0 {
		return result
	}

	result.Score = clamp(weightedSum/totalWeight, 0, 1)
	return result
}

func (e *Engine) scoreComponent(component domain.ScoreComponent, sig domain.EnrichedSignal) float64 {
	switch c := component.(type) {
	case domain.TimeDecayConfig:
		return scoreTimeDecay(c, sig)
	case domain.PriceMovementConfig:
		return scorePriceMovement(c, sig)
	case domain.PositionSizeConfig:
		return scorePositionSize(c, sig)
	case domain.PoliticianSkillConfig:
		return e.scorePoliticianSkill(c, sig)
	case domain.SourceQualityConfig:
		return e.scoreSourceQuality(c, sig)
	case domain.FilingSpeedConfig:
		return scoreFilingSpeed(c, sig)
	case domain.CrossConfirmationConfig:
		return e.scoreCrossConfirmation(c, sig)
	default:
		e.log.Warn().Str("component", component.ComponentName()).Msg("Unknown scoring component, scoring 0")
		return 0
	}
}

// scoreTimeDecay decays by halving every HalfLifeDays. When a filing-clock
// half-life is configured the staler of the two clocks wins (minimum decay).
func scoreTimeDecay(c domain.TimeDecayConfig, sig domain.EnrichedSignal) float64 {
	if c.HalfLifeDays <= 0 {
		return 0
	}
	score := math.Pow(0.5, float64(sig.DaysSinceTrade)/c.HalfLifeDays)
	if c.FilingHalfLifeDays > 0 {
		filingScore := math.Pow(0.5, float64(sig.DaysSinceFiling)/c.FilingHalfLifeDays)
		score = math.Min(score, filingScore)
	}
	return score
}

// Drift anchors for the price movement interpolation, in percent.
var priceMoveAnchors = [4]float64{0, 5, 15, 25}

// scorePriceMovement interpolates linearly between the anchor scores by
// absolute drift; drift beyond the last anchor scores 0. A buy whose price
// dropped since the disclosed trade ("buying the dip") is boosted by the
// dip bonus, capped at the bonus itself. The boosted value may exceed 1;
// only the final weighted score is clamped.
func scorePriceMovement(c domain.PriceMovementConfig, sig domain.EnrichedSignal) float64 {
	drift := math.Abs(sig.PriceChangePct)

	var score float64
	switch {
	case drift > priceMoveAnchors[3]:
		score = 0
	default:
		for i := 1; i < len(priceMoveAnchors); i++ {
			if drift <= priceMoveAnchors[i] {
				span := priceMoveAnchors[i] - priceMoveAnchors[i-1]
				frac := (drift - priceMoveAnchors[i-1]) / span
				score = c.AnchorScores[i-1] + frac*(c.AnchorScores[i]-c.AnchorScores[i-1])
				break
			}
		}
	}

	if sig.Action == domain.ActionBuy && sig.PriceChangePct < 0 {
		bonus := c.DipBonus
		if bonus <= 0 {
			bonus = 1.2
		}
		score = math.Min(score*bonus, bonus)
	}

	return score
}

// scorePositionSize walks the threshold ladder: the sub-score is the entry
// at the number of thresholds the disclosed size meets or exceeds.
func scorePositionSize(c domain.PositionSizeConfig, sig domain.EnrichedSignal) float64 {
	if len(c.Scores) != len(c.Thresholds)+1 || len(c.Scores) == 0 {
		return 0
	}
	met := 0
	for _, threshold := range c.Thresholds {
		if sig.SizeMin >= threshold {
			met++
		}
	}
	return c.Scores[met]
}

func (e *Engine) scorePoliticianSkill(c domain.PoliticianSkillConfig, sig domain.EnrichedSignal) float64 {
	minTrades := c.MinTrades
	if minTrades <= 0 {
		minTrades = 5
	}
	total, winRate, ok := e.stats.PoliticianStats(sig.Politician)
	if !ok || total < minTrades {
		return c.Default
	}
	// Bound the influence of noisy win rates.
	return clamp(winRate, 0.4, 0.7)
}

func (e *Engine) scoreSourceQuality(c domain.SourceQualityConfig, sig domain.EnrichedSignal) float64 {
	base, ok := c.Scores[sig.Source]
	if !ok {
		base = c.Scores["default"]
	}

	confirmations := e.stats.ConfirmationCount(sig.Ticker, sig.Action, sig.TradeDate)
	if confirmations > 1 && c.ConfirmationBonus > 0 {
		bonus := math.Min(float64(confirmations-1)*c.ConfirmationBonus, c.MaxBonus)
		base += bonus
	}
	return base
}

func scoreFilingSpeed(c domain.FilingSpeedConfig, sig domain.EnrichedSignal) float64 {
	filingLag := sig.DaysSinceTrade - sig.DaysSinceFiling
	switch {
	case filingLag <= 7:
		return c.FastScore
	case filingLag >= 30:
		return c.SlowScore
	default:
		return 1.0
	}
}

func (e *Engine) scoreCrossConfirmation(c domain.CrossConfirmationConfig, sig domain.EnrichedSignal) float64 {
	confirmations := e.stats.ConfirmationCount(sig.Ticker, sig.Action, sig.TradeDate)
	bonus := math.Min(float64(confirmations-1)*c.BonusPerSource, c.MaxBonus)
	if bonus < 0 {
		bonus = 0
	}
	return 1.0 + bonus
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
