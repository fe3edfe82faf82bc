package scoring

import "github.com/hadoku/trader/internal/domain"

// DefaultConfig returns the scoring configuration used when an agent does
// not carry one of its own.
func DefaultConfig() domain.ScoringConfig {
	return domain.ScoringConfig{
		Components: []domain.ScoreComponent{
			domain.TimeDecayConfig{
				Weight:       1.5,
				HalfLifeDays: 10,
			},
			domain.PriceMovementConfig{
				Weight:       1.0,
				AnchorScores: [4]float64{1.0, 0.8, 0.4, 0.1},
			},
			domain.PositionSizeConfig{
				Weight:     1.0,
				Thresholds: []float64{15001, 50001, 100001, 250001},
				Scores:     []float64{0.3, 0.5, 0.7, 0.85, 1.0},
			},
			domain.PoliticianSkillConfig{
				Weight:    1.2,
				Default:   0.5,
				MinTrades: 5,
			},
			domain.SourceQualityConfig{
				Weight: 0.8,
				Scores: map[string]float64{
					"quiver_quant":   1.0,
					"capitol_trades": 0.9,
					"senate_stock":   0.85,
					"house_clerk":    0.8,
					"default":        0.6,
				},
				ConfirmationBonus: 0.1,
				MaxBonus:          0.3,
			},
		},
	}
}
