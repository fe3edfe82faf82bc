package domain

import (
	"encoding/json"
	"fmt"
)

// JSON for ScoringConfig uses a tagged component array:
//
//	{"components": [{"type": "time_decay", "weight": 1.5, ...}, ...]}
//
// The tag selects the concrete variant on the way back in.

// MarshalJSON implements json.Marshaler.
func (c ScoringConfig) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(c.Components))
	for _, component := range c.Components {
		fields, err := json.Marshal(component)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal component %s: %w", component.ComponentName(), err)
		}

		var m map[string]json.RawMessage
		if err := json.Unmarshal(fields, &m); err != nil {
			return nil, fmt.Errorf("failed to re-read component %s: %w", component.ComponentName(), err)
		}
		m["type"] = json.RawMessage(fmt.Sprintf("%q", component.ComponentName()))

		tagged, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tagged component %s: %w", component.ComponentName(), err)
		}
		out = append(out, tagged)
	}

	return json.Marshal(struct {
		Components []json.RawMessage `json:"components"`
	}{Components: out})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *ScoringConfig) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Components []json.RawMessage `json:"components"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal scoring config: %w", err)
	}

	c.Components = c.Components[:0]
	for _, raw := range envelope.Components {
		var tag struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &tag); err != nil {
			return fmt.Errorf("failed to read component type: %w", err)
		}

		component, err := unmarshalComponent(tag.Type, raw)
		if err != nil {
			return err
		}
		c.Components = append(c.Components, component)
	}
	return nil
}

func unmarshalComponent(componentType string, raw json.RawMessage) (ScoreComponent, error) {
	switch componentType {
	case ComponentTimeDecay:
		return decodeComponent[TimeDecayConfig](componentType, raw)
	case ComponentPriceMovement:
		return decodeComponent[PriceMovementConfig](componentType, raw)
	case ComponentPositionSize:
		return decodeComponent[PositionSizeConfig](componentType, raw)
	case ComponentPoliticianSkill:
		return decodeComponent[PoliticianSkillConfig](componentType, raw)
	case ComponentSourceQuality:
		return decodeComponent[SourceQualityConfig](componentType, raw)
	case ComponentFilingSpeed:
		return decodeComponent[FilingSpeedConfig](componentType, raw)
	case ComponentCrossConfirmation:
		return decodeComponent[CrossConfirmationConfig](componentType, raw)
	default:
		return nil, fmt.Errorf("unknown scoring component type %q", componentType)
	}
}

func decodeComponent[T ScoreComponent](componentType string, raw json.RawMessage) (ScoreComponent, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s component: %w", componentType, err)
	}
	return v, nil
}
