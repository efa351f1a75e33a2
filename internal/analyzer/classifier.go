package analyzer

import (
	"github.com/02s02s/volatility-alerts-bot/internal/models"
	"github.com/shopspring/decimal"
)

// Thresholds hold the classification cutoffs. All values are percentages
// except MinVolume15m, which is quote-currency notional.
type Thresholds struct {
	BigMovePct     decimal.Decimal
	FastMovePct    decimal.Decimal
	VolumeSpikePct decimal.Decimal
	MinVolume15m   decimal.Decimal
}

// DefaultThresholds returns the standard cutoffs: 5% for a big move, 3% with
// a >50% volume spike for a fast move, behind a 50k notional liquidity floor.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BigMovePct:     decimal.NewFromInt(5),
		FastMovePct:    decimal.NewFromInt(3),
		VolumeSpikePct: decimal.NewFromInt(50),
		MinVolume15m:   decimal.NewFromInt(50000),
	}
}

// Classify maps an analysis to at most one alert category. Symbols below the
// liquidity floor never alert, however extreme the other metrics. BigMove is
// checked before FastMove; first match wins. Comparisons use the computed
// values as-is, with no rounding.
func Classify(result models.AnalysisResult, t Thresholds) (models.AlertCategory, bool) {
	if result.Volume15m.LessThan(t.MinVolume15m) {
		return "", false
	}
	if result.PriceChange15m.Abs().GreaterThanOrEqual(t.BigMovePct) {
		return models.CategoryBigMove, true
	}
	if result.PriceChange5m.Abs().GreaterThanOrEqual(t.FastMovePct) &&
		result.VolumeSpike.GreaterThan(t.VolumeSpikePct) {
		return models.CategoryFastMove, true
	}
	return "", false
}
