package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hadoku/trader/internal/domain"
)

func filterSignal() domain.EnrichedSignal {
	return domain.EnrichedSignal{
		RawSignal: domain.RawSignal{
			Ticker:     "AAPL",
			Action:     domain.ActionBuy,
			AssetType:  domain.AssetTypeStock,
			Politician: "Jane Doe",
			Source:     "quiver_quant",
		},
	}
}

func TestCheckFilters_AllPassByDefault(t *testing.T) {
	ok, reason := CheckFilters(domain.AgentConfig{}, filterSignal())
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestCheckFilters_PoliticianWhitelist(t *testing.T) {
	cfg := domain.AgentConfig{PoliticianWhitelist: []string{"Jane Doe"}}

	ok, _ := CheckFilters(cfg, filterSignal())
	assert.True(t, ok)

	sig := filterSignal()
	sig.Politician = "John Roe"
	ok, reason := CheckFilters(cfg, sig)
	assert.False(t, ok)
	assert.Equal(t, SkipPolitician, reason)

	// Matching ignores case and surrounding whitespace.
	sig.Politician = "  jane doe "
	ok, _ = CheckFilters(cfg, sig)
	assert.True(t, ok)
}

func TestCheckFilters_EmptyWhitelistRejectsEverything(t *testing.T) {
	// A non-nil empty whitelist is an active filter with no members.
	cfg := domain.AgentConfig{PoliticianWhitelist: []string{}}
	ok, reason := CheckFilters(cfg, filterSignal())
	assert.False(t, ok)
	assert.Equal(t, SkipPolitician, reason)
}

func TestCheckFilters_TickerWhitelist(t *testing.T) {
	cfg := domain.AgentConfig{TickerWhitelist: []string{"aapl", "MSFT"}}

	ok, _ := CheckFilters(cfg, filterSignal())
	assert.True(t, ok)

	sig := filterSignal()
	sig.Ticker = "TSLA"
	ok, reason := CheckFilters(cfg, sig)
	assert.False(t, ok)
	assert.Equal(t, SkipTicker, reason)
}

func TestCheckFilters_AssetTypes(t *testing.T) {
	cfg := domain.AgentConfig{AllowedAssetTypes: []domain.AssetType{domain.AssetTypeStock, domain.AssetTypeETF}}

	ok, _ := CheckFilters(cfg, filterSignal())
	assert.True(t, ok)

	sig := filterSignal()
	sig.AssetType = domain.AssetTypeOption
	ok, reason := CheckFilters(cfg, sig)
	assert.False(t, ok)
	assert.Equal(t, SkipAssetType, reason)
}

func TestCheckFilters_MaxSignalAge(t *testing.T) {
	cfg := domain.AgentConfig{MaxSignalAgeDays: 45}

	sig := filterSignal()
	sig.DaysSinceTrade = 45
	ok, _ := CheckFilters(cfg, sig)
	assert.True(t, ok, "age equal to the limit passes")

	sig.DaysSinceTrade = 46
	ok, reason := CheckFilters(cfg, sig)
	assert.False(t, ok)
	assert.Equal(t, SkipTooOld, reason)
}

func TestCheckFilters_MaxPriceMove(t *testing.T) {
	cfg := domain.AgentConfig{MaxPriceMovePct: 20}

	sig := filterSignal()
	sig.PriceChangePct = -20
	ok, _ := CheckFilters(cfg, sig)
	assert.True(t, ok, "absolute drift equal to the limit passes")

	sig.PriceChangePct = -20.5
	ok, reason := CheckFilters(cfg, sig)
	assert.False(t, ok)
	assert.Equal(t, SkipPriceMove, reason)

	sig.PriceChangePct = 25
	ok, reason = CheckFilters(cfg, sig)
	assert.False(t, ok)
	assert.Equal(t, SkipPriceMove, reason)
}

func TestCheckFilters_FirstFailureReported(t *testing.T) {
	cfg := domain.AgentConfig{
		PoliticianWhitelist: []string{"Somebody Else"},
		MaxSignalAgeDays:    1,
	}

	sig := filterSignal()
	sig.DaysSinceTrade = 99
	ok, reason := CheckFilters(cfg, sig)
	assert.False(t, ok)
	assert.Equal(t, SkipPolitician, reason)
}
