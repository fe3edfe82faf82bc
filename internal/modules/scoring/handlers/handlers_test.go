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
	"github.com/hadoku/trader/internal/modules/scoring"
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

	log := zerolog.Nop()
	agentRepo := agents.NewRepository(db.Conn(), log)
	engine := scoring.NewEngine(&scoring.SnapshotStatsProvider{
		Politicians: map[string]domain.PoliticianStats{
			"Jane Doe": {Politician: "Jane Doe", TotalTrades: 50, WinRate: 0.7},
		},
	}, log)
	handler := NewHandler(engine, agentRepo, log)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})
	return router, agentRepo
}

func scorePayload(overrides map[string]interface{}) map[string]interface{} {
	body := map[string]interface{}{
		"signal": map[string]interface{}{
			"ticker":          "AAPL",
			"action":          "buy",
			"asset_type":      "stock",
			"trade_date":      "2024-01-05",
			"disclosure_date": "2024-01-10",
			"trade_price":     100.0,
			"size_min":        15000.0,
			"politician":      "Jane Doe",
			"source":          "quiver_quant",
		},
		"current_price": 102.0,
		"eval_date":     "2024-01-12",
	}
	for k, v := range overrides {
		body[k] = v
	}
	return body
}

func post(t *testing.T, router *chi.Mux, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/scoring/score", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleScoreDefaultConfig(t *testing.T) {
	router, _ := setupRouter(t)

	w := post(t, router, scorePayload(nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response scoreResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.True(t, response.Passed)
	assert.Greater(t, response.Score, 0.0)
	assert.LessOrEqual(t, response.Score, 1.0)
	assert.NotEmpty(t, response.Breakdown)
	assert.Equal(t, 7, response.Signal.DaysSinceTrade)
	assert.Equal(t, 2, response.Signal.DaysSinceFiling)
}

func TestHandleScoreInlineConfig(t *testing.T) {
	router, _ := setupRouter(t)

	w := post(t, router, scorePayload(map[string]interface{}{
		"config": domain.ScoringConfig{Components: []domain.ScoreComponent{
			domain.PoliticianSkillConfig{Weight: 1, Default: 0.5, MinTrades: 5},
		}},
	}))
	require.Equal(t, http.StatusOK, w.Code)

	var response scoreResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	// Jane Doe has 50 trades at 0.7 win rate, clamped skill band [0.4, 0.7].
	assert.InDelta(t, 0.7, response.Score, 1e-9)
}

func TestHandleScoreAgentFilters(t *testing.T) {
	router, agentRepo := setupRouter(t)
	require.NoError(t, agentRepo.Upsert(domain.AgentConfig{
		Name:                "picky",
		MonthlyBudget:       1000,
		MaxSignalAgeDays:    45,
		MaxPriceMovePct:     25,
		ExecuteThreshold:    0.6,
		PoliticianWhitelist: []string{"Someone Else"},
		Sizing:              domain.SizingConfig{Mode: domain.SizingEqualSplit},
	}, true))

	w := post(t, router, scorePayload(map[string]interface{}{"agent": "picky"}))
	require.Equal(t, http.StatusOK, w.Code)

	var response scoreResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.False(t, response.Passed)
	assert.Equal(t, scoring.SkipPolitician, response.SkipReason)
	assert.Zero(t, response.Score)
}

func TestHandleScoreValidation(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"no ticker", scorePayload(map[string]interface{}{"signal": map[string]interface{}{"ticker": ""}})},
		{"no price", scorePayload(map[string]interface{}{"current_price": 0.0})},
		{"bad eval date", scorePayload(map[string]interface{}{"eval_date": "soon"})},
		{"unknown agent", scorePayload(map[string]interface{}{"agent": "ghost"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, router, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
