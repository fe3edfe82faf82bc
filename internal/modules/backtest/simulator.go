package backtest

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/hadoku/trader/internal/domain"
	"github.com/hadoku/trader/internal/modules/prices"
	"github.com/hadoku/trader/internal/modules/scoring"
	"github.com/hadoku/trader/internal/modules/signals"
	"github.com/hadoku/trader/internal/modules/sizing"
)

// Skip reasons recorded by the simulator on top of the filter gate's.
const (
	SkipNoPosition = "no position"
	SkipNoPrice    = "no price data"
	SkipBadPrice   = "invalid trade price"
	SkipLowScore   = "score below threshold"
	SkipTooSmall   = "position too small"
	SkipWashSale   = "wash sale protection"
	SkipMaxTicker  = "max positions for ticker"
)

const monthLayout = "2006-01"

// Simulator replays a signal set month by month against one agent,
// maintaining a lot-level ledger. Each Run owns its entire state; nothing
// is shared across runs and signals are processed strictly in order.
type Simulator struct {
	engine *scoring.Engine
	sizer  *sizing.Sizer
	prices prices.Source
	log    zerolog.Logger
}

// NewSimulator creates a simulator over a price source. The engine must be
// backed by preloaded statistics so a multi-year run performs no
// per-signal store queries.
func NewSimulator(engine *scoring.Engine, sizer *sizing.Sizer, priceSource prices.Source, log zerolog.Logger) *Simulator {
	return &Simulator{
		engine: engine,
		sizer:  sizer,
		prices: priceSource,
		log:    log.With().Str("component", "simulator").Logger(),
	}
}

// runState is the mutable ledger of one run.
type runState struct {
	cash          float64
	totalDeposits float64
	realizedPnL   float64

	arena   *lotArena
	tracker *washSaleTracker

	closedTrades []domain.ClosedTrade
	snapshots    []domain.MonthlySnapshot

	// per-month counters, reset at each month start
	buys     int
	sells    int
	skips    int
	skipWhy  map[string]int
	accepted int
}

func (st *runState) skip(reason string) {
	st.skips++
	st.skipWhy[reason]++
}

// Run executes one simulation. Signals are replayed at their disclosure
// dates; the run starts from zero cash and deposits the monthly budget at
// each month boundary. Configuration errors from the sizer abort the run;
// data-quality gaps only skip the affected signal.
func (s *Simulator) Run(cfg domain.AgentConfig, sigs []domain.RawSignal) (*domain.SimulationResult, error) {
	result := &domain.SimulationResult{Agent: cfg.Name}
	if len(sigs) == 0 {
		return result, nil
	}

	ordered := make([]domain.RawSignal, len(sigs))
	copy(ordered, sigs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].DisclosureDate.Equal(ordered[j].DisclosureDate) {
			return ordered[i].DisclosureDate.Before(ordered[j].DisclosureDate)
		}
		return ordered[i].ID < ordered[j].ID
	})

	scoringCfg := scoring.DefaultConfig()
	if cfg.Scoring != nil {
		scoringCfg = *cfg.Scoring
	}

	first := monthStart(ordered[0].DisclosureDate)
	last := monthStart(ordered[len(ordered)-1].DisclosureDate)
	months := monthsBetween(first, last)

	stats := s.calcBucketStats(cfg, scoringCfg, ordered, months)

	byMonth := make(map[string][]domain.RawSignal)
	for _, sig := range ordered {
		key := sig.DisclosureDate.UTC().Format(monthLayout)
		byMonth[key] = append(byMonth[key], sig)
	}

	st := &runState{arena: newLotArena(), tracker: newWashSaleTracker()}

	for month := first; !month.After(last); month = month.AddDate(0, 1, 0) {
		st.cash += cfg.MonthlyBudget
		st.totalDeposits += cfg.MonthlyBudget
		st.buys, st.sells, st.skips = 0, 0, 0
		st.skipWhy = make(map[string]int)
		st.accepted = 0

		key := month.UTC().Format(monthLayout)
		for _, sig := range byMonth[key] {
			var err error
			switch sig.Action {
			case domain.ActionSell:
				s.processSell(st, sig)
			case domain.ActionBuy:
				err = s.processBuy(st, cfg, scoringCfg, &stats, sig)
			}
			if err != nil {
				return nil, fmt.Errorf("simulation aborted at signal %d: %w", sig.ID, err)
			}
		}

		st.snapshots = append(st.snapshots, s.snapshot(st, key))
	}

	result.Snapshots = st.snapshots
	result.ClosedTrades = st.closedTrades
	result.OpenPositions = st.arena.open()
	result.Totals = totalsOf(st)
	result.Summary = Summarize(st.snapshots)
	return result, nil
}

// calcBucketStats runs the filter+score pipeline as a pre-pass over the
// whole signal set and derives bucket statistics from the signals that
// would execute.
func (s *Simulator) calcBucketStats(cfg domain.AgentConfig, scoringCfg domain.ScoringConfig, ordered []domain.RawSignal, months int) domain.BucketStats {
	var executable []domain.EnrichedSignal
	for _, sig := range ordered {
		if sig.Action != domain.ActionBuy || sig.TradePrice <= 0 {
			continue
		}
		price, ok, _ := s.prices.CloseOn(sig.Ticker, sig.DisclosureDate)
		if !ok {
			continue
		}
		enriched := signals.Enrich(sig, price, sig.DisclosureDate)
		if ok, _ := scoring.CheckFilters(cfg, enriched); !ok {
			continue
		}
		if s.engine.Score(scoringCfg, enriched).Score < cfg.ExecuteThreshold {
			continue
		}
		executable = append(executable, enriched)
	}
	return sizing.CalcBucketStats(executable, cfg.Sizing.BucketSmallMax, cfg.Sizing.BucketMediumMax, months)
}

func (s *Simulator) processSell(st *runState, sig domain.RawSignal) {
	idx, ok := st.arena.oldest(sig.Ticker)
	if !ok {
		st.skip(SkipNoPosition)
		return
	}

	price, ok, _ := s.prices.CloseOn(sig.Ticker, sig.DisclosureDate)
	if !ok || price <= 0 {
		st.skip(SkipNoPrice)
		return
	}

	lot := st.arena.at(idx)
	proceeds := sizing.FloorCents(lot.Shares * price)
	profit := proceeds - lot.CostBasis
	holdingDays := daysApart(lot.EntryDate, sig.DisclosureDate)

	trade := domain.ClosedTrade{
		EntryDate:   lot.EntryDate,
		ExitDate:    sig.DisclosureDate,
		Ticker:      lot.Ticker,
		Shares:      lot.Shares,
		EntryPrice:  lot.EntryPrice,
		ExitPrice:   price,
		Profit:      profit,
		HoldingDays: holdingDays,
		LongTerm:    holdingDays >= longTermHoldingDays,
	}
	if lot.CostBasis > 0 {
		trade.ReturnPct = profit / lot.CostBasis * 100
	}
	if profit < 0 {
		if st.tracker.LossDisallowed(lot.Ticker, sig.DisclosureDate) {
			trade.WashSale = true
			trade.DisallowedLoss = -profit
		}
		st.tracker.RecordLoss(lot.Ticker, sig.DisclosureDate)
	}

	st.arena.remove(idx)
	st.cash += proceeds
	st.realizedPnL += profit
	st.closedTrades = append(st.closedTrades, trade)
	st.sells++
}

func (s *Simulator) processBuy(st *runState, cfg domain.AgentConfig, scoringCfg domain.ScoringConfig, stats *domain.BucketStats, sig domain.RawSignal) error {
	if sig.TradePrice <= 0 {
		st.skip(SkipBadPrice)
		return nil
	}

	price, ok, _ := s.prices.CloseOn(sig.Ticker, sig.DisclosureDate)
	if !ok || price <= 0 {
		st.skip(SkipNoPrice)
		return nil
	}

	enriched := signals.Enrich(sig, price, sig.DisclosureDate)
	if ok, reason := scoring.CheckFilters(cfg, enriched); !ok {
		st.skip(reason)
		return nil
	}

	score := s.engine.Score(scoringCfg, enriched)
	if score.Score < cfg.ExecuteThreshold {
		st.skip(SkipLowScore)
		return nil
	}
	halfSize := cfg.HalfSizeThreshold > 0 && score.Score < cfg.HalfSizeThreshold

	if st.tracker.BuyBlocked(sig.Ticker, sig.DisclosureDate) {
		st.skip(SkipWashSale)
		return nil
	}
	if limit := cfg.Sizing.MaxPerTicker; limit > 0 && st.arena.openCountFor(sig.Ticker) >= limit {
		st.skip(SkipMaxTicker)
		return nil
	}

	amount, err := s.sizer.Size(cfg, sizing.SizeInput{
		Score:           score.Score,
		ScoreKnown:      true,
		DisclosedSize:   sig.SizeMin,
		AcceptedCount:   st.accepted,
		HalfSize:        halfSize,
		AvailableBudget: st.cash,
		Stats:           stats,
	})
	if err != nil {
		return err
	}
	if amount <= 0 {
		st.skip(SkipTooSmall)
		return nil
	}

	// Deploy more capital later in the month to smooth early-month cash
	// starvation, then re-clamp since the ramp can only scale up.
	ramp := 1 + float64(sig.DisclosureDate.Day()-1)/30
	amount *= ramp
	if cfg.Sizing.MaxPositionPct > 0 {
		amount = math.Min(amount, cfg.Sizing.MaxPositionPct*cfg.MonthlyBudget)
	}
	amount = sizing.FloorCents(math.Min(amount, st.cash))
	if amount <= 0 || amount < cfg.Sizing.MinPositionAmount {
		st.skip(SkipTooSmall)
		return nil
	}

	st.arena.add(domain.Position{
		EntryDate:  sig.DisclosureDate,
		Ticker:     sig.Ticker,
		Shares:     amount / price,
		CostBasis:  amount,
		EntryPrice: price,
	})
	st.tracker.RecordBuy(sig.Ticker, sig.DisclosureDate)
	st.cash -= amount
	st.buys++
	st.accepted++
	return nil
}

func (s *Simulator) snapshot(st *runState, month string) domain.MonthlySnapshot {
	deployed := st.arena.deployed()
	snap := domain.MonthlySnapshot{
		Month:           month,
		Buys:            st.buys,
		Sells:           st.sells,
		Skips:           st.skips,
		SkipReasons:     st.skipWhy,
		Cash:            st.cash,
		OpenPositions:   st.arena.openCount(),
		DeployedCapital: deployed,
		RealizedPnL:     st.realizedPnL,
		PortfolioValue:  st.cash + deployed,
		TotalDeposits:   st.totalDeposits,
	}
	if st.totalDeposits > 0 {
		snap.GrowthPct = (snap.PortfolioValue - st.totalDeposits) / st.totalDeposits * 100
	}
	return snap
}

func totalsOf(st *runState) domain.SimulationTotals {
	totals := domain.SimulationTotals{
		RealizedPnL:   st.realizedPnL,
		TotalDeposits: st.totalDeposits,
	}
	for _, snap := range st.snapshots {
		totals.Buys += snap.Buys
		totals.Sells += snap.Sells
		totals.Skips += snap.Skips
	}
	if n := len(st.snapshots); n > 0 {
		totals.FinalValue = st.snapshots[n-1].PortfolioValue
		totals.GrowthPct = st.snapshots[n-1].GrowthPct
	}
	return totals
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
}

// monthsBetween counts calendar months from first to last inclusive; both
// must be month starts.
func monthsBetween(first, last time.Time) int {
	months := 0
	for month := first; !month.After(last); month = month.AddDate(0, 1, 0) {
		months++
	}
	return months
}
