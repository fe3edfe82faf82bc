package agents

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/hadoku/trader/internal/domain"
)

// agentsFile is the YAML shape of the agents file. The scoring section uses
// one optional block per component; a present block enables the component.
type agentsFile struct {
	Agents []agentEntry `yaml:"agents"`
}

type agentEntry struct {
	Name    string `yaml:"name"`
	Enabled *bool  `yaml:"enabled"` // nil defaults to true

	MonthlyBudget       float64  `yaml:"monthly_budget"`
	MaxSignalAgeDays    int      `yaml:"max_signal_age_days"`
	MaxPriceMovePct     float64  `yaml:"max_price_move_pct"`
	PoliticianWhitelist []string `yaml:"politician_whitelist"`
	TickerWhitelist     []string `yaml:"ticker_whitelist"`
	AllowedAssetTypes   []string `yaml:"allowed_asset_types"`

	ExecuteThreshold  float64 `yaml:"execute_threshold"`
	HalfSizeThreshold float64 `yaml:"half_size_threshold"`

	Sizing  sizingEntry   `yaml:"sizing"`
	Scoring *scoringEntry `yaml:"scoring"`
}

type sizingEntry struct {
	Mode            string              `yaml:"mode"`
	BaseMultiplier  float64             `yaml:"base_multiplier"`
	BaseAmount      float64             `yaml:"base_amount"`
	BucketSmallMax  float64             `yaml:"bucket_small_max"`
	BucketMediumMax float64             `yaml:"bucket_medium_max"`
	BucketOverrides *domain.BucketStats `yaml:"bucket_overrides"`

	MaxPositionAmount float64 `yaml:"max_position_amount"`
	MaxPositionPct    float64 `yaml:"max_position_pct"`
	MinPositionAmount float64 `yaml:"min_position_amount"`
	MaxPerTicker      int     `yaml:"max_per_ticker"`
}

type scoringEntry struct {
	TimeDecay         *domain.TimeDecayConfig         `yaml:"time_decay"`
	PriceMovement     *domain.PriceMovementConfig     `yaml:"price_movement"`
	PositionSize      *domain.PositionSizeConfig      `yaml:"position_size"`
	PoliticianSkill   *domain.PoliticianSkillConfig   `yaml:"politician_skill"`
	SourceQuality     *domain.SourceQualityConfig     `yaml:"source_quality"`
	FilingSpeed       *domain.FilingSpeedConfig       `yaml:"filing_speed"`
	CrossConfirmation *domain.CrossConfirmationConfig `yaml:"cross_confirmation"`
}

// LoadFile parses a YAML agents file into configurations plus their
// enablement flags, keyed off the entry order in the file.
func LoadFile(path string) ([]Agent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agents file: %w", err)
	}

	var file agentsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse agents file: %w", err)
	}

	out := make([]Agent, 0, len(file.Agents))
	for i, entry := range file.Agents {
		if entry.Name == "" {
			return nil, fmt.Errorf("agents file entry %d has no name", i)
		}
		cfg, err := entry.toConfig()
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", entry.Name, err)
		}

		enabled := true
		if entry.Enabled != nil {
			enabled = *entry.Enabled
		}
		out = append(out, Agent{Config: cfg, Enabled: enabled})
	}
	return out, nil
}

// SyncFile loads a YAML agents file and upserts every entry into the
// repository. Agents present only in the database are left alone.
func SyncFile(path string, repo *Repository, log zerolog.Logger) error {
	loaded, err := LoadFile(path)
	if err != nil {
		return err
	}

	for _, agent := range loaded {
		if err := repo.Upsert(agent.Config, agent.Enabled); err != nil {
			return err
		}
	}

	log.Info().Int("agents", len(loaded)).Str("file", path).Msg("Synced agents file")
	return nil
}

func (e agentEntry) toConfig() (domain.AgentConfig, error) {
	cfg := domain.AgentConfig{
		Name:                e.Name,
		MonthlyBudget:       e.MonthlyBudget,
		MaxSignalAgeDays:    e.MaxSignalAgeDays,
		MaxPriceMovePct:     e.MaxPriceMovePct,
		PoliticianWhitelist: e.PoliticianWhitelist,
		TickerWhitelist:     e.TickerWhitelist,
		ExecuteThreshold:    e.ExecuteThreshold,
		HalfSizeThreshold:   e.HalfSizeThreshold,
		Sizing: domain.SizingConfig{
			Mode:              domain.SizingMode(e.Sizing.Mode),
			BaseMultiplier:    e.Sizing.BaseMultiplier,
			BaseAmount:        e.Sizing.BaseAmount,
			BucketSmallMax:    e.Sizing.BucketSmallMax,
			BucketMediumMax:   e.Sizing.BucketMediumMax,
			BucketOverrides:   e.Sizing.BucketOverrides,
			MaxPositionAmount: e.Sizing.MaxPositionAmount,
			MaxPositionPct:    e.Sizing.MaxPositionPct,
			MinPositionAmount: e.Sizing.MinPositionAmount,
			MaxPerTicker:      e.Sizing.MaxPerTicker,
		},
	}

	switch cfg.Sizing.Mode {
	case domain.SizingScoreSquared, domain.SizingScoreLinear,
		domain.SizingEqualSplit, domain.SizingSmartBudget:
	default:
		return cfg, fmt.Errorf("unknown sizing mode %q", e.Sizing.Mode)
	}

	for _, assetType := range e.AllowedAssetTypes {
		cfg.AllowedAssetTypes = append(cfg.AllowedAssetTypes, domain.AssetType(assetType))
	}

	if e.Scoring != nil {
		cfg.Scoring = &domain.ScoringConfig{Components: e.Scoring.components()}
	}
	return cfg, nil
}

// components collects the present blocks in a stable order.
func (s scoringEntry) components() []domain.ScoreComponent {
	var out []domain.ScoreComponent
	if s.TimeDecay != nil {
		out = append(out, *s.TimeDecay)
	}
	if s.PriceMovement != nil {
		out = append(out, *s.PriceMovement)
	}
	if s.PositionSize != nil {
		out = append(out, *s.PositionSize)
	}
	if s.PoliticianSkill != nil {
		out = append(out, *s.PoliticianSkill)
	}
	if s.SourceQuality != nil {
		out = append(out, *s.SourceQuality)
	}
	if s.FilingSpeed != nil {
		out = append(out, *s.FilingSpeed)
	}
	if s.CrossConfirmation != nil {
		out = append(out, *s.CrossConfirmation)
	}
	return out
}
