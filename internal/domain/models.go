// Package domain provides core domain models and types.
package domain

import "time"

// Action represents the side of a disclosed trade
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// AssetType represents the type of the disclosed instrument
type AssetType string

const (
	AssetTypeStock  AssetType = "stock"
	AssetTypeETF    AssetType = "etf"
	AssetTypeOption AssetType = "option"
	AssetTypeCrypto AssetType = "crypto"
)

// RawSignal is a disclosed trade by a public official, as ingested.
// SizeMin is the dollar lower bound of the disclosed bracket and is used
// as the magnitude proxy throughout.
type RawSignal struct {
	TradeDate       time.Time `json:"trade_date"`
	DisclosureDate  time.Time `json:"disclosure_date"`
	Ticker          string    `json:"ticker"`
	Politician      string    `json:"politician"`
	Source          string    `json:"source"`
	Action          Action    `json:"action"`
	AssetType       AssetType `json:"asset_type"`
	ID              int64     `json:"id"`
	TradePrice      float64   `json:"trade_price"`
	DisclosurePrice float64   `json:"disclosure_price"`
	SizeMin         float64   `json:"size_min"`
}

// EnrichedSignal is a RawSignal plus fields derived against an observed
// market price at an explicit evaluation date. It is an immutable value;
// enrichment never mutates the underlying signal.
type EnrichedSignal struct {
	RawSignal

	CurrentPrice float64 `json:"current_price"`

	// Derived fields. Day counts are clamped to be non-negative.
	DaysSinceTrade  int     `json:"days_since_trade"`
	DaysSinceFiling int     `json:"days_since_filing"`
	PriceChangePct  float64 `json:"price_change_pct"` // trade -> current drift

	// DisclosureDriftPct tracks disclosure -> current drift for observability
	// only; it is zero when the disclosure price is missing.
	DisclosureDriftPct float64 `json:"disclosure_drift_pct"`
}

// PoliticianStats holds the externally supplied skill statistics for one
// politician.
type PoliticianStats struct {
	Politician  string  `json:"politician"`
	TotalTrades int     `json:"total_trades"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"win_rate"`
}

// Position is one open lot in a simulation ledger: a purchased block of
// shares tracked with its own entry price/date/cost basis. Created on buy,
// consumed by the matching (FIFO) sell.
type Position struct {
	EntryDate  time.Time `json:"entry_date" msgpack:"entry_date"`
	Ticker     string    `json:"ticker" msgpack:"ticker"`
	Shares     float64   `json:"shares" msgpack:"shares"`
	CostBasis  float64   `json:"cost_basis" msgpack:"cost_basis"`
	EntryPrice float64   `json:"entry_price" msgpack:"entry_price"`
}

// ClosedTrade is a completed round trip produced by FIFO sell matching.
type ClosedTrade struct {
	EntryDate      time.Time `json:"entry_date" msgpack:"entry_date"`
	ExitDate       time.Time `json:"exit_date" msgpack:"exit_date"`
	Ticker         string    `json:"ticker" msgpack:"ticker"`
	Shares         float64   `json:"shares" msgpack:"shares"`
	EntryPrice     float64   `json:"entry_price" msgpack:"entry_price"`
	ExitPrice      float64   `json:"exit_price" msgpack:"exit_price"`
	Profit         float64   `json:"profit" msgpack:"profit"`
	ReturnPct      float64   `json:"return_pct" msgpack:"return_pct"`
	HoldingDays    int       `json:"holding_days" msgpack:"holding_days"`
	LongTerm       bool      `json:"long_term" msgpack:"long_term"`
	WashSale       bool      `json:"wash_sale" msgpack:"wash_sale"`
	DisallowedLoss float64   `json:"disallowed_loss" msgpack:"disallowed_loss"`
}

// MonthlySnapshot records the ledger state at the end of one simulated month.
// Invariant: PortfolioValue == Cash + sum of open lot cost bases.
type MonthlySnapshot struct {
	Month           string         `json:"month" msgpack:"month"` // YYYY-MM
	Buys            int            `json:"buys" msgpack:"buys"`
	Sells           int            `json:"sells" msgpack:"sells"`
	Skips           int            `json:"skips" msgpack:"skips"`
	SkipReasons     map[string]int `json:"skip_reasons,omitempty" msgpack:"skip_reasons"`
	Cash            float64        `json:"cash" msgpack:"cash"`
	OpenPositions   int            `json:"open_positions" msgpack:"open_positions"`
	DeployedCapital float64        `json:"deployed_capital" msgpack:"deployed_capital"`
	RealizedPnL     float64        `json:"realized_pnl" msgpack:"realized_pnl"`
	PortfolioValue  float64        `json:"portfolio_value" msgpack:"portfolio_value"`
	TotalDeposits   float64        `json:"total_deposits" msgpack:"total_deposits"`
	GrowthPct       float64        `json:"growth_pct" msgpack:"growth_pct"`
}

// SimulationTotals aggregates a full run.
type SimulationTotals struct {
	Buys          int     `json:"buys" msgpack:"buys"`
	Sells         int     `json:"sells" msgpack:"sells"`
	Skips         int     `json:"skips" msgpack:"skips"`
	RealizedPnL   float64 `json:"realized_pnl" msgpack:"realized_pnl"`
	TotalDeposits float64 `json:"total_deposits" msgpack:"total_deposits"`
	FinalValue    float64 `json:"final_value" msgpack:"final_value"`
	GrowthPct     float64 `json:"growth_pct" msgpack:"growth_pct"`
}

// SummaryStats are descriptive statistics over the monthly growth series.
type SummaryStats struct {
	MeanMonthlyGrowth   float64 `json:"mean_monthly_growth" msgpack:"mean_monthly_growth"`
	StdDevMonthlyGrowth float64 `json:"stddev_monthly_growth" msgpack:"stddev_monthly_growth"`
	AnnualizedSharpe    float64 `json:"annualized_sharpe" msgpack:"annualized_sharpe"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct" msgpack:"max_drawdown_pct"`
}

// SimulationResult is the complete outcome of one backtest run. Results are
// owned by the run that produced them; nothing is shared across runs.
type SimulationResult struct {
	RunID         string            `json:"run_id" msgpack:"run_id"`
	Agent         string            `json:"agent" msgpack:"agent"`
	CreatedAt     time.Time         `json:"created_at" msgpack:"created_at"`
	Snapshots     []MonthlySnapshot `json:"snapshots" msgpack:"snapshots"`
	ClosedTrades  []ClosedTrade     `json:"closed_trades" msgpack:"closed_trades"`
	OpenPositions []Position        `json:"open_positions" msgpack:"open_positions"`
	Totals        SimulationTotals  `json:"totals" msgpack:"totals"`
	Summary       SummaryStats      `json:"summary" msgpack:"summary"`
}
