package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadoku/trader/internal/database"
	"github.com/hadoku/trader/internal/domain"
	"github.com/hadoku/trader/internal/modules/agents"
)

func setupRouter(t *testing.T) (*chi.Mux, *agents.Repository) {
	t.Helper()
	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "agents.db"),
		Profile: database.ProfileStandard,
		Name:    "agents",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	repo := agents.NewRepository(db.Conn(), zerolog.Nop())
	handler := NewHandler(repo, zerolog.Nop())

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})
	return router, repo
}

func sampleConfig() domain.AgentConfig {
	return domain.AgentConfig{
		MonthlyBudget:    1000,
		MaxSignalAgeDays: 45,
		MaxPriceMovePct:  20,
		ExecuteThreshold: 0.6,
		Sizing: domain.SizingConfig{
			Mode:              domain.SizingEqualSplit,
			MinPositionAmount: 10,
		},
	}
}

func TestHandleUpsertAndGet(t *testing.T) {
	router, _ := setupRouter(t)

	body, err := json.Marshal(map[string]interface{}{
		"config":  sampleConfig(),
		"enabled": false,
	})
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", "/api/agents/conservative", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/api/agents/conservative", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var agent agents.Agent
	require.NoError(t, json.NewDecoder(w.Body).Decode(&agent))
	assert.Equal(t, "conservative", agent.Config.Name, "name comes from the URL")
	assert.False(t, agent.Enabled)
	assert.Equal(t, domain.SizingEqualSplit, agent.Config.Sizing.Mode)
}

func TestHandleGetUnknownAgent(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest("GET", "/api/agents/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleList(t *testing.T) {
	router, repo := setupRouter(t)

	for _, name := range []string{"b", "a"} {
		cfg := sampleConfig()
		cfg.Name = name
		require.NoError(t, repo.Upsert(cfg, true))
	}

	req := httptest.NewRequest("GET", "/api/agents/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Agents []agents.Agent `json:"agents"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Len(t, response.Agents, 2)
	assert.Equal(t, "a", response.Agents[0].Config.Name, "ordered by name")
}

func TestHandleDelete(t *testing.T) {
	router, repo := setupRouter(t)

	cfg := sampleConfig()
	cfg.Name = "gone"
	require.NoError(t, repo.Upsert(cfg, true))

	req := httptest.NewRequest("DELETE", "/api/agents/gone", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := repo.Get("gone")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestHandleUpsertInvalidBody(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest("PUT", "/api/agents/bad", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
