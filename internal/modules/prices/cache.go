package prices

import (
	"time"

	"github.com/rs/zerolog"
)

// Source answers close-price lookups. HistoryDB implements it for
// production and backtests; StaticSource serves fixed maps in tests.
type Source interface {
	CloseOn(ticker string, date time.Time) (float64, bool, error)
}

// Cache memoizes lookups against a Source for the duration of one
// simulation run. A simulator revisits the same ticker+date pair many
// times (enrichment, monthly valuation), so misses are cached too.
type Cache struct {
	source Source
	known  map[string]float64
	misses map[string]struct{}
	log    zerolog.Logger
}

// NewCache creates a per-run price cache.
func NewCache(source Source, log zerolog.Logger) *Cache {
	return &Cache{
		source: source,
		known:  make(map[string]float64),
		misses: make(map[string]struct{}),
		log:    log.With().Str("component", "price_cache").Logger(),
	}
}

// CloseOn implements Source with memoization. Source errors are degraded
// to a miss so one bad lookup cannot abort a multi-year run.
func (c *Cache) CloseOn(ticker string, date time.Time) (float64, bool, error) {
	key := normalizeTicker(ticker) + "|" + date.UTC().Format(dateLayout)
	if price, ok := c.known[key]; ok {
		return price, true, nil
	}
	if _, missed := c.misses[key]; missed {
		return 0, false, nil
	}

	price, ok, err := c.source.CloseOn(ticker, date)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("Price lookup failed")
		c.misses[key] = struct{}{}
		return 0, false, nil
	}
	if !ok {
		c.misses[key] = struct{}{}
		return 0, false, nil
	}

	c.known[key] = price
	return price, true, nil
}

// StaticSource serves prices from a fixed map keyed "TICKER|YYYY-MM-DD".
// No prior-date fallback; a missing key is a miss.
type StaticSource map[string]float64

// CloseOn implements Source.
func (s StaticSource) CloseOn(ticker string, date time.Time) (float64, bool, error) {
	price, ok := s[normalizeTicker(ticker)+"|"+date.UTC().Format(dateLayout)]
	return price, ok, nil
}

// Key builds a StaticSource map key.
func Key(ticker string, date time.Time) string {
	return normalizeTicker(ticker) + "|" + date.UTC().Format(dateLayout)
}
