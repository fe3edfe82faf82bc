// Package handlers provides HTTP handlers for scoring individual signals.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hadoku/trader/internal/domain"
	"github.com/hadoku/trader/internal/modules/agents"
	"github.com/hadoku/trader/internal/modules/scoring"
	"github.com/hadoku/trader/internal/modules/signals"
)

const dateLayout = "2006-01-02"

// Handler handles scoring HTTP requests
type Handler struct {
	engine *scoring.Engine
	agents *agents.Repository
	log    zerolog.Logger
}

// NewHandler creates a new scoring handler
func NewHandler(engine *scoring.Engine, agentRepo *agents.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		agents: agentRepo,
		log:    log.With().Str("handler", "scoring").Logger(),
	}
}

type signalPayload struct {
	Ticker          string  `json:"ticker"`
	Action          string  `json:"action"`
	AssetType       string  `json:"asset_type"`
	TradeDate       string  `json:"trade_date"`
	DisclosureDate  string  `json:"disclosure_date"`
	TradePrice      float64 `json:"trade_price"`
	DisclosurePrice float64 `json:"disclosure_price"`
	SizeMin         float64 `json:"size_min"`
	Politician      string  `json:"politician"`
	Source          string  `json:"source"`
}

func (p signalPayload) toRaw() (domain.RawSignal, error) {
	tradeDate, err := time.Parse(dateLayout, p.TradeDate)
	if err != nil {
		return domain.RawSignal{}, &validationError{"Invalid trade_date: " + err.Error()}
	}
	disclosureDate, err := time.Parse(dateLayout, p.DisclosureDate)
	if err != nil {
		return domain.RawSignal{}, &validationError{"Invalid disclosure_date: " + err.Error()}
	}
	return domain.RawSignal{
		Ticker:          p.Ticker,
		Action:          domain.Action(p.Action),
		AssetType:       domain.AssetType(p.AssetType),
		TradeDate:       tradeDate,
		DisclosureDate:  disclosureDate,
		TradePrice:      p.TradePrice,
		DisclosurePrice: p.DisclosurePrice,
		SizeMin:         p.SizeMin,
		Politician:      p.Politician,
		Source:          p.Source,
	}, nil
}

type validationError struct{ message string }

func (e *validationError) Error() string { return e.message }

type scoreRequest struct {
	Signal       signalPayload         `json:"signal"`
	CurrentPrice float64               `json:"current_price"`
	EvalDate     string                `json:"eval_date"`
	Agent        string                `json:"agent"`
	Config       *domain.ScoringConfig `json:"config"`
}

type scoreResponse struct {
	Passed     bool                  `json:"passed"`
	SkipReason string                `json:"skip_reason,omitempty"`
	Score      float64               `json:"score"`
	Breakdown  map[string]float64    `json:"breakdown"`
	Signal     domain.EnrichedSignal `json:"signal"`
}

// HandleScore handles POST /api/scoring/score
func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	var request scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if request.Signal.Ticker == "" {
		h.writeError(w, http.StatusBadRequest, "Signal ticker is required")
		return
	}
	if request.CurrentPrice <= 0 {
		h.writeError(w, http.StatusBadRequest, "Current price must be positive")
		return
	}

	raw, err := request.Signal.toRaw()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	evalDate := time.Now().UTC()
	if request.EvalDate != "" {
		evalDate, err = time.Parse(dateLayout, request.EvalDate)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid eval_date: "+err.Error())
			return
		}
	}

	agentCfg, scoringCfg, err := h.resolveConfigs(request)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	enriched := signals.Enrich(raw, request.CurrentPrice, evalDate)

	response := scoreResponse{Passed: true, Signal: enriched}
	if agentCfg != nil {
		if passed, reason := scoring.CheckFilters(*agentCfg, enriched); !passed {
			response.Passed = false
			response.SkipReason = reason
			h.writeJSON(w, http.StatusOK, response)
			return
		}
	}

	result := h.engine.Score(scoringCfg, enriched)
	response.Score = result.Score
	response.Breakdown = result.Breakdown

	h.writeJSON(w, http.StatusOK, response)
}

// resolveConfigs picks the scoring config in precedence order: inline config,
// named agent, built-in default. The agent config also carries the filter
// gates when an agent was named.
func (h *Handler) resolveConfigs(request scoreRequest) (*domain.AgentConfig, domain.ScoringConfig, error) {
	var agentCfg *domain.AgentConfig
	if request.Agent != "" {
		agent, err := h.agents.Get(request.Agent)
		if err != nil {
			return nil, domain.ScoringConfig{}, err
		}
		if agent == nil {
			return nil, domain.ScoringConfig{}, &validationError{"Agent not found: " + request.Agent}
		}
		agentCfg = &agent.Config
	}

	switch {
	case request.Config != nil:
		return agentCfg, *request.Config, nil
	case agentCfg != nil && agentCfg.Scoring != nil:
		return agentCfg, *agentCfg.Scoring, nil
	default:
		return agentCfg, scoring.DefaultConfig(), nil
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
