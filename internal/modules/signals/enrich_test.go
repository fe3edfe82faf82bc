package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hadoku/trader/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEnrich_DerivedFields(t *testing.T) {
	raw := domain.RawSignal{
		Ticker:          "AAPL",
		Action:          domain.ActionBuy,
		TradePrice:      140.0,
		DisclosurePrice: 141.0,
		TradeDate:       date(2024, 3, 1),
		DisclosureDate:  date(2024, 3, 10),
	}

	sig := Enrich(raw, 142.8, date(2024, 3, 15))

	assert.Equal(t, 14, sig.DaysSinceTrade)
	assert.Equal(t, 5, sig.DaysSinceFiling)
	assert.InDelta(t, 2.0, sig.PriceChangePct, 1e-9)
	assert.InDelta(t, (142.8-141.0)/141.0*100, sig.DisclosureDriftPct, 1e-9)
}

func TestEnrich_NegativeDaysClampToZero(t *testing.T) {
	raw := domain.RawSignal{
		TradePrice:     100,
		TradeDate:      date(2024, 6, 20),
		DisclosureDate: date(2024, 6, 25),
	}

	// Evaluation before the trade date (bad upstream data) must not go negative.
	sig := Enrich(raw, 100, date(2024, 6, 10))

	assert.Equal(t, 0, sig.DaysSinceTrade)
	assert.Equal(t, 0, sig.DaysSinceFiling)
}

func TestEnrich_MissingPricesAreSafe(t *testing.T) {
	raw := domain.RawSignal{
		TradePrice:      0, // data-quality gap
		DisclosurePrice: 0,
		TradeDate:       date(2024, 1, 1),
		DisclosureDate:  date(2024, 1, 2),
	}

	sig := Enrich(raw, 50, date(2024, 1, 10))

	assert.Zero(t, sig.PriceChangePct)
	assert.Zero(t, sig.DisclosureDriftPct)
}

func TestEnrich_IgnoresTimeOfDay(t *testing.T) {
	raw := domain.RawSignal{
		TradePrice:     100,
		TradeDate:      time.Date(2024, 2, 1, 23, 30, 0, 0, time.UTC),
		DisclosureDate: time.Date(2024, 2, 3, 1, 15, 0, 0, time.UTC),
	}

	sig := Enrich(raw, 100, time.Date(2024, 2, 4, 0, 5, 0, 0, time.UTC))

	assert.Equal(t, 3, sig.DaysSinceTrade)
	assert.Equal(t, 1, sig.DaysSinceFiling)
}
