package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertCategory identifies which threshold rule an analysis tripped.
// At most one category applies per analysis; BigMove is checked first.
type AlertCategory string

const (
	CategoryBigMove  AlertCategory = "big_move"
	CategoryFastMove AlertCategory = "fast_move"
)

// Label returns the human-readable category name used in notifications.
func (c AlertCategory) Label() string {
	switch c {
	case CategoryBigMove:
		return "Big Move"
	case CategoryFastMove:
		return "Fast Move"
	default:
		return string(c)
	}
}

// Direction classifies an alert as bullish or bearish for routing.
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
)

// AnalysisResult holds the per-symbol signal metrics computed from candle
// series. Results are ephemeral and recomputed every scan; they are never
// cached across cycles.
type AnalysisResult struct {
	Symbol         string
	Price          decimal.Decimal
	Ticks5m        int64
	Volatility15m  decimal.Decimal // percent
	PriceChange5m  decimal.Decimal // percent
	PriceChange15m decimal.Decimal // percent
	Volume5m       decimal.Decimal
	Volume15m      decimal.Decimal
	VolumeSpike    decimal.Decimal // percent deviation from trailing average
}

// Direction derives the alert direction from the price-change field that
// triggered the given category: 15m for BigMove, 5m for FastMove.
func (r AnalysisResult) Direction(category AlertCategory) Direction {
	change := r.PriceChange5m
	if category == CategoryBigMove {
		change = r.PriceChange15m
	}
	if change.IsNegative() {
		return DirectionBearish
	}
	return DirectionBullish
}

// AlertRecord captures a dispatched alert for auditing.
type AlertRecord struct {
	ID            string
	Symbol        string
	Category      AlertCategory
	Direction     Direction
	Price         decimal.Decimal
	Change5m      decimal.Decimal
	Change15m     decimal.Decimal
	Volatility15m decimal.Decimal
	Volume15m     decimal.Decimal
	VolumeSpike   decimal.Decimal
	SentAt        time.Time
}
