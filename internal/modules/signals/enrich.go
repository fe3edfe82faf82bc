// Package signals provides disclosed-trade signal storage and enrichment.
package signals

import (
	"time"

	"github.com/hadoku/trader/internal/domain"
)

// Enrich derives the evaluation-time fields of a raw signal against an
// observed market price. The evaluation date is explicit so backtests can
// evaluate at the disclosure date while production evaluates at "now";
// both paths share this one function.
func Enrich(raw domain.RawSignal, currentPrice float64, evalDate time.Time) domain.EnrichedSignal {
	sig := domain.EnrichedSignal{
		RawSignal:    raw,
		CurrentPrice: currentPrice,
	}

	sig.DaysSinceTrade = daysBetween(raw.TradeDate, evalDate)
	sig.DaysSinceFiling = daysBetween(raw.DisclosureDate, evalDate)

	if raw.TradePrice > 0 {
		sig.PriceChangePct = (currentPrice - raw.TradePrice) / raw.TradePrice * 100
	}
	if raw.DisclosurePrice > 0 {
		sig.DisclosureDriftPct = (currentPrice - raw.DisclosurePrice) / raw.DisclosurePrice * 100
	}

	return sig
}

// daysBetween returns whole calendar days from a to b in UTC, clamped to 0.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(bu.Sub(au).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
