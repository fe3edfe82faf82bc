package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadoku/trader/internal/database"
	"github.com/hadoku/trader/internal/domain"
	"github.com/hadoku/trader/internal/modules/agents"
	"github.com/hadoku/trader/internal/modules/backtest"
	"github.com/hadoku/trader/internal/modules/politicians"
	"github.com/hadoku/trader/internal/modules/prices"
	"github.com/hadoku/trader/internal/modules/signals"
)

type fixture struct {
	router *chi.Mux
	agents *agents.Repository
}

func setup(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	log := zerolog.Nop()

	signalsDB, err := database.New(database.Config{
		Path:    filepath.Join(dir, "signals.db"),
		Profile: database.ProfileLedger,
		Name:    "signals",
	})
	require.NoError(t, err)
	t.Cleanup(func() { signalsDB.Close() })
	require.NoError(t, signalsDB.Migrate())

	agentsDB, err := database.New(database.Config{
		Path:    filepath.Join(dir, "agents.db"),
		Profile: database.ProfileStandard,
		Name:    "agents",
	})
	require.NoError(t, err)
	t.Cleanup(func() { agentsDB.Close() })
	require.NoError(t, agentsDB.Migrate())

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(dir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	t.Cleanup(func() { cacheDB.Close() })
	require.NoError(t, cacheDB.Migrate())

	signalRepo := signals.NewRepository(signalsDB.Conn(), log)
	politicianRepo := politicians.NewRepository(signalsDB.Conn(), log)
	agentRepo := agents.NewRepository(agentsDB.Conn(), log)
	resultRepo := backtest.NewResultRepository(cacheDB.Conn(), log)

	disclosure := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, signalRepo.Insert(domain.RawSignal{
		Ticker:         "AAPL",
		Action:         domain.ActionBuy,
		AssetType:      domain.AssetTypeStock,
		TradeDate:      disclosure.AddDate(0, 0, -5),
		DisclosureDate: disclosure,
		TradePrice:     100,
		SizeMin:        15000,
		Politician:     "Jane Doe",
		Source:         "quiver_quant",
	}))

	src := prices.StaticSource{prices.Key("AAPL", disclosure): 100}
	service := backtest.NewService(signalRepo, politicianRepo, src, resultRepo, log)
	handler := NewHandler(service, agentRepo, log)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})
	return fixture{router: router, agents: agentRepo}
}

func testConfig() domain.AgentConfig {
	return domain.AgentConfig{
		Name:             "test",
		MonthlyBudget:    1000,
		MaxSignalAgeDays: 3650,
		MaxPriceMovePct:  1000,
		ExecuteThreshold: 0.5,
		Sizing: domain.SizingConfig{
			Mode:              domain.SizingEqualSplit,
			MinPositionAmount: 10,
		},
		Scoring: &domain.ScoringConfig{
			Components: []domain.ScoreComponent{
				domain.PoliticianSkillConfig{Weight: 1, Default: 0.9, MinTrades: 5},
			},
		},
	}
}

func (f fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHandleRunWithNamedAgent(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.agents.Upsert(testConfig(), true))

	w := f.do(t, "POST", "/api/backtest/run", map[string]interface{}{"agent": "test"})
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.SimulationResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.Totals.Buys)

	// The run is retrievable afterwards.
	w = f.do(t, "GET", "/api/backtest/runs/"+result.RunID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, "GET", "/api/backtest/runs?agent=test", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Runs []backtest.RunSummary `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list.Runs, 1)
	assert.Equal(t, result.RunID, list.Runs[0].RunID)
}

func TestHandleRunWithInlineConfig(t *testing.T) {
	f := setup(t)

	w := f.do(t, "POST", "/api/backtest/run", map[string]interface{}{"config": testConfig()})
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.SimulationResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, 1, result.Totals.Buys)
}

func TestHandleRunValidation(t *testing.T) {
	f := setup(t)

	w := f.do(t, "POST", "/api/backtest/run", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "agent or config required")

	w = f.do(t, "POST", "/api/backtest/run", map[string]interface{}{"agent": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, "POST", "/api/backtest/run", map[string]interface{}{"agent": "x", "from": "yesterday"})
	assert.Equal(t, http.StatusNotFound, w.Code, "unknown agent reported before date parsing")
}

func TestHandleGetUnknownRun(t *testing.T) {
	f := setup(t)

	w := f.do(t, "GET", "/api/backtest/runs/deadbeef", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
