package backtest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadoku/trader/internal/database"
	"github.com/hadoku/trader/internal/domain"
)

func newResultRepo(t *testing.T) *ResultRepository {
	t.Helper()
	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return NewResultRepository(db.Conn(), zerolog.Nop())
}

func sampleResult(agent string, createdAt time.Time) *domain.SimulationResult {
	return &domain.SimulationResult{
		RunID:     uuid.New().String(),
		Agent:     agent,
		CreatedAt: createdAt,
		Snapshots: []domain.MonthlySnapshot{{
			Month:          "2024-01",
			Buys:           2,
			Cash:           100,
			PortfolioValue: 1100,
			TotalDeposits:  1000,
			GrowthPct:      10,
		}},
		ClosedTrades: []domain.ClosedTrade{{
			EntryDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			ExitDate:  time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
			Ticker:    "AAPL",
			Shares:    10,
			Profit:    50,
			WashSale:  true,
		}},
		Totals: domain.SimulationTotals{Buys: 2, FinalValue: 1100},
	}
}

func TestResultRepository_SaveAndGet(t *testing.T) {
	repo := newResultRepo(t)
	result := sampleResult("conservative", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, repo.Save(result))

	got, err := repo.Get(result.RunID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, result.RunID, got.RunID)
	assert.Equal(t, result.Agent, got.Agent)
	assert.Equal(t, result.Snapshots, got.Snapshots)
	assert.Equal(t, result.Totals, got.Totals)
	require.Len(t, got.ClosedTrades, 1)
	assert.True(t, got.ClosedTrades[0].WashSale)
	assert.True(t, got.ClosedTrades[0].EntryDate.Equal(result.ClosedTrades[0].EntryDate))

	missing, err := repo.Get("not-a-run")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestResultRepository_List(t *testing.T) {
	repo := newResultRepo(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	older := sampleResult("a", base)
	newer := sampleResult("a", base.Add(time.Hour))
	other := sampleResult("b", base.Add(2*time.Hour))
	for _, r := range []*domain.SimulationResult{older, newer, other} {
		require.NoError(t, repo.Save(r))
	}

	all, err := repo.List("", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, other.RunID, all[0].RunID, "newest first")

	onlyA, err := repo.List("a", 0)
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.Equal(t, newer.RunID, onlyA[0].RunID)

	limited, err := repo.List("", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestResultRepository_Prune(t *testing.T) {
	repo := newResultRepo(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	old := sampleResult("a", base)
	fresh := sampleResult("a", base.AddDate(0, 0, 10))
	require.NoError(t, repo.Save(old))
	require.NoError(t, repo.Save(fresh))

	pruned, err := repo.Prune(base.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned)

	gone, err := repo.Get(old.RunID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := repo.Get(fresh.RunID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}
