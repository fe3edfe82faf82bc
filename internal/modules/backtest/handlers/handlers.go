// Package handlers provides HTTP handlers for running and inspecting
// simulations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hadoku/trader/internal/domain"
	"github.com/hadoku/trader/internal/modules/agents"
	"github.com/hadoku/trader/internal/modules/backtest"
)

const dateLayout = "2006-01-02"

// Handler handles backtest HTTP requests
type Handler struct {
	service *backtest.Service
	agents  *agents.Repository
	log     zerolog.Logger
}

// NewHandler creates a new backtest handler
func NewHandler(service *backtest.Service, agentRepo *agents.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		agents:  agentRepo,
		log:     log.With().Str("handler", "backtest").Logger(),
	}
}

type runRequest struct {
	Agent      string              `json:"agent"`
	Config     *domain.AgentConfig `json:"config"`
	Politician string              `json:"politician"`
	From       string              `json:"from"`
	To         string              `json:"to"`
}

// HandleRun handles POST /api/backtest/run
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var request runRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cfg, err := h.resolveConfig(request)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if cfg == nil {
		h.writeError(w, http.StatusNotFound, "Agent not found: "+request.Agent)
		return
	}

	opts := backtest.RunOptions{Politician: request.Politician}
	if request.From != "" {
		opts.From, err = time.Parse(dateLayout, request.From)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid from date: "+err.Error())
			return
		}
	}
	if request.To != "" {
		opts.To, err = time.Parse(dateLayout, request.To)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid to date: "+err.Error())
			return
		}
	}

	result, err := h.service.Run(*cfg, opts)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Simulation failed: "+err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// resolveConfig picks the inline config when present, otherwise loads the
// named agent. Returns (nil, nil) when the named agent does not exist.
func (h *Handler) resolveConfig(request runRequest) (*domain.AgentConfig, error) {
	if request.Config != nil {
		return request.Config, nil
	}
	if request.Agent == "" {
		return nil, &requestError{"Either agent or config is required"}
	}
	agent, err := h.agents.Get(request.Agent)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, nil
	}
	return &agent.Config, nil
}

type requestError struct{ message string }

func (e *requestError) Error() string { return e.message }

// HandleListRuns handles GET /api/backtest/runs
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	agent := r.URL.Query().Get("agent")
	limit := queryInt(r, "limit", 20)

	runs, err := h.service.Runs(agent, limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list runs: "+err.Error())
		return
	}
	if runs == nil {
		runs = []backtest.RunSummary{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// HandleGetRun handles GET /api/backtest/runs/{runID}
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	result, err := h.service.Result(runID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load run: "+err.Error())
		return
	}
	if result == nil {
		h.writeError(w, http.StatusNotFound, "Run not found: "+runID)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
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
