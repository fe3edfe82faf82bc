package scoring

import (
	"math"
	"strings"

	"github.com/hadoku/trader/internal/domain"
)

// Skip reasons surfaced by the hard filter gate. Only the first failing
// check is reported, so the evaluation order below is part of the contract
// for diagnostics (not for the pass/fail outcome).
const (
	SkipPolitician = "politician not whitelisted"
	SkipTicker     = "ticker not whitelisted"
	SkipAssetType  = "asset type not allowed"
	SkipTooOld     = "signal too old"
	SkipPriceMove  = "price moved too much"
)

// CheckFilters runs the hard pass/fail checks an agent applies before any
// score is trusted for an execution decision. It returns false plus the
// first failing reason, or true with an empty reason when all checks pass.
func CheckFilters(cfg domain.AgentConfig, sig domain.EnrichedSignal) (bool, string) {
	if cfg.PoliticianWhitelist != nil {
		if !containsNormalized(cfg.PoliticianWhitelist, sig.Politician) {
			return false, SkipPolitician
		}
	}

	if cfg.TickerWhitelist != nil {
		if !containsNormalized(cfg.TickerWhitelist, sig.Ticker) {
			return false, SkipTicker
		}
	}

	if len(cfg.AllowedAssetTypes) > 0 {
		allowed := false
		for _, assetType := range cfg.AllowedAssetTypes {
			if assetType == sig.AssetType {
				allowed = true
				break
			}
		}
		if !allowed {
			return false, SkipAssetType
		}
	}

	if cfg.MaxSignalAgeDays > 0 && sig.DaysSinceTrade > cfg.MaxSignalAgeDays {
		return false, SkipTooOld
	}

	if cfg.MaxPriceMovePct > 0 && math.Abs(sig.PriceChangePct) > cfg.MaxPriceMovePct {
		return false, SkipPriceMove
	}

	return true, ""
}

// containsNormalized matches case-insensitively, ignoring surrounding
// whitespace on both sides.
func containsNormalized(list []string, value string) bool {
	needle := strings.ToLower(strings.TrimSpace(value))
	for _, item := range list {
		if strings.ToLower(strings.TrimSpace(item)) == needle {
			return true
		}
	}
	return false
}
