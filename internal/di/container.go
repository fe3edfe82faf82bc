// Package di provides dependency injection wiring and initialization.
package di

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog"

	"github.com/hadoku/trader/internal/config"
	"github.com/hadoku/trader/internal/database"
	"github.com/hadoku/trader/internal/modules/agents"
	"github.com/hadoku/trader/internal/modules/backtest"
	"github.com/hadoku/trader/internal/modules/politicians"
	"github.com/hadoku/trader/internal/modules/prices"
	"github.com/hadoku/trader/internal/modules/scoring"
	"github.com/hadoku/trader/internal/modules/signals"
)

// resultRetention is how long cached simulation results are kept before the
// prune job removes them.
const resultRetention = 30 * 24 * time.Hour

// Container holds all dependencies for the application.
// It is the single source of truth for service instances and is passed to
// the server for handler wiring.
type Container struct {
	// Databases
	SignalsDB *database.DB
	AgentsDB  *database.DB
	HistoryDB *database.DB
	CacheDB   *database.DB

	// priceConn is a second connection to history.db used by the read-heavy
	// price lookups.
	priceConn *sql.DB

	// Repositories
	SignalRepo     *signals.Repository
	PoliticianRepo *politicians.Repository
	AgentRepo      *agents.Repository
	ResultRepo     *backtest.ResultRepository
	PriceHistory   *prices.HistoryDB

	// Services
	StatsProvider   *scoring.StoreStatsProvider
	Engine          *scoring.Engine
	BacktestService *backtest.Service

	// Jobs
	StatsRefreshJob *politicians.StatsRefreshJob
	PruneJob        *backtest.PruneJob
}

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Open and migrate databases
// 2. Build repositories
// 3. Build services
// 4. Build jobs
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	c := &Container{}

	if err := c.openDatabases(cfg); err != nil {
		c.Close()
		return nil, err
	}

	c.SignalRepo = signals.NewRepository(c.SignalsDB.Conn(), log)
	c.PoliticianRepo = politicians.NewRepository(c.SignalsDB.Conn(), log)
	c.AgentRepo = agents.NewRepository(c.AgentsDB.Conn(), log)
	c.ResultRepo = backtest.NewResultRepository(c.CacheDB.Conn(), log)
	c.PriceHistory = prices.NewHistoryDB(c.priceConn, log)

	c.StatsProvider = scoring.NewStoreStatsProvider(c.PoliticianRepo, c.SignalRepo, log)
	c.Engine = scoring.NewEngine(c.StatsProvider, log)
	c.BacktestService = backtest.NewService(c.SignalRepo, c.PoliticianRepo, c.PriceHistory, c.ResultRepo, log)

	c.StatsRefreshJob = politicians.NewStatsRefreshJob(c.PoliticianRepo, log)
	c.PruneJob = backtest.NewPruneJob(c.ResultRepo, resultRetention, log)

	log.Info().Msg("Dependency injection wiring completed successfully")
	return c, nil
}

// openDatabases opens and migrates the 4 databases.
func (c *Container) openDatabases(cfg *config.Config) error {
	// 1. signals.db - Ingested signals and politician stats
	signalsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "signals.db"),
		Profile: database.ProfileLedger, // Maximum safety for the ingestion trail
		Name:    "signals",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize signals database: %w", err)
	}
	c.SignalsDB = signalsDB

	// 2. agents.db - Agent strategy configurations
	agentsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "agents.db"),
		Profile: database.ProfileStandard,
		Name:    "agents",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize agents database: %w", err)
	}
	c.AgentsDB = agentsDB

	// 3. history.db - Historical close prices
	historyDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "history.db"),
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize history database: %w", err)
	}
	c.HistoryDB = historyDB

	// 4. cache.db - Simulation result cache (rebuildable)
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize cache database: %w", err)
	}
	c.CacheDB = cacheDB

	for _, db := range []*database.DB{signalsDB, agentsDB, historyDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("failed to migrate %s database: %w", db.Name(), err)
		}
	}

	priceConn, err := sql.Open("sqlite3", filepath.Join(cfg.DataDir, "history.db"))
	if err != nil {
		return fmt.Errorf("failed to open price connection: %w", err)
	}
	if err := priceConn.Ping(); err != nil {
		priceConn.Close()
		return fmt.Errorf("failed to ping price connection: %w", err)
	}
	c.priceConn = priceConn

	return nil
}

// Close releases all database connections. Safe to call on a partially
// wired container.
func (c *Container) Close() {
	if c.priceConn != nil {
		c.priceConn.Close()
	}
	for _, db := range []*database.DB{c.CacheDB, c.HistoryDB, c.AgentsDB, c.SignalsDB} {
		if db != nil {
			db.Close()
		}
	}
}
