package backtest

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/hadoku/trader/internal/domain"
)

// Summarize computes descriptive statistics over a run's monthly
// snapshots. The monthly return series is deposit-adjusted: the month's
// deposit is not counted as growth.
func Summarize(snapshots []domain.MonthlySnapshot) domain.SummaryStats {
	returns := monthlyReturns(snapshots)
	if len(returns) == 0 {
		return domain.SummaryStats{MaxDrawdownPct: maxDrawdown(snapshots)}
	}

	mean := stat.Mean(returns, nil)
	stddev := 0.0
	if len(returns) > 1 {
		stddev = stat.StdDev(returns, nil)
	}

	summary := domain.SummaryStats{
		MeanMonthlyGrowth:   mean * 100,
		StdDevMonthlyGrowth: stddev * 100,
		MaxDrawdownPct:      maxDrawdown(snapshots),
	}
	if stddev > 0 {
		summary.AnnualizedSharpe = mean / stddev * math.Sqrt(12)
	}
	return summary
}

// monthlyReturns derives per-month fractional returns from consecutive
// snapshots, subtracting the month's deposit so contributions do not count
// as performance.
func monthlyReturns(snapshots []domain.MonthlySnapshot) []float64 {
	var out []float64
	for i := 1; i < len(snapshots); i++ {
		prev, cur := snapshots[i-1], snapshots[i]
		if prev.PortfolioValue <= 0 {
			continue
		}
		deposit := cur.TotalDeposits - prev.TotalDeposits
		out = append(out, (cur.PortfolioValue-prev.PortfolioValue-deposit)/prev.PortfolioValue)
	}
	return out
}

// maxDrawdown is the largest peak-to-trough decline of the deposit-adjusted
// growth curve, in percent (a positive number for a decline, 0 otherwise).
func maxDrawdown(snapshots []domain.MonthlySnapshot) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, snap := range snapshots {
		growth := snap.GrowthPct
		if growth > peak {
			peak = growth
		}
		if dd := peak - growth; dd > worst {
			worst = dd
		}
	}
	return worst
}
