// Package handlers provides HTTP handlers for agent configuration management.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hadoku/trader/internal/domain"
	"github.com/hadoku/trader/internal/modules/agents"
)

// Handler handles agent HTTP requests
type Handler struct {
	repo *agents.Repository
	log  zerolog.Logger
}

// NewHandler creates a new agents handler
func NewHandler(repo *agents.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "agents").Logger(),
	}
}

// HandleList handles GET /api/agents
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list agents: "+err.Error())
		return
	}
	if list == nil {
		list = []agents.Agent{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"agents": list})
}

// HandleGet handles GET /api/agents/{name}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	agent, err := h.repo.Get(name)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load agent: "+err.Error())
		return
	}
	if agent == nil {
		h.writeError(w, http.StatusNotFound, "Agent not found: "+name)
		return
	}

	h.writeJSON(w, http.StatusOK, agent)
}

type upsertRequest struct {
	Config  domain.AgentConfig `json:"config"`
	Enabled *bool              `json:"enabled"`
}

// HandleUpsert handles PUT /api/agents/{name}
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var request upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	// The URL is authoritative for the agent name.
	request.Config.Name = name
	enabled := true
	if request.Enabled != nil {
		enabled = *request.Enabled
	}

	if err := h.repo.Upsert(request.Config, enabled); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save agent: "+err.Error())
		return
	}

	h.log.Info().Str("agent", name).Bool("enabled", enabled).Msg("Agent saved")
	h.writeJSON(w, http.StatusOK, agents.Agent{Config: request.Config, Enabled: enabled})
}

// HandleDelete handles DELETE /api/agents/{name}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.repo.Delete(name); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to delete agent: "+err.Error())
		return
	}

	h.log.Info().Str("agent", name).Msg("Agent deleted")
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
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
