// Package models defines the core domain entities: ticker snapshots, candles,
// analysis results, and alerts.
package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TickerSnapshot is a point-in-time view of a traded symbol from the market
// data feed. Snapshots are produced fresh each scan and discarded afterwards.
type TickerSnapshot struct {
	Symbol         string          `json:"symbol"`
	Price          decimal.Decimal `json:"price"`
	Volume24h      decimal.Decimal `json:"volume_24h"`
	PriceChange24h decimal.Decimal `json:"price_change_24h"` // percent
	High24h        decimal.Decimal `json:"high_24h"`
	Low24h         decimal.Decimal `json:"low_24h"`
}

// Validate checks ticker field constraints.
func (t *TickerSnapshot) Validate() error {
	if t.Symbol == "" {
		return errors.New("ticker symbol must not be empty")
	}
	if t.Price.IsNegative() {
		return errors.New("ticker price must not be negative")
	}
	if t.Volume24h.IsNegative() {
		return errors.New("ticker 24h volume must not be negative")
	}
	if t.High24h.LessThan(t.Low24h) {
		return errors.New("ticker 24h high must be >= 24h low")
	}
	return nil
}

// Candle is an OHLCV aggregate over a fixed time bucket. Series are ordered
// most-recent-first, matching the feed's kline response ordering.
type Candle struct {
	Start  time.Time       `json:"start"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume decimal.Decimal `json:"volume"`
}

// Validate checks candle field constraints.
func (c *Candle) Validate() error {
	if c.Start.IsZero() {
		return errors.New("candle start time must not be zero")
	}
	if c.High.LessThan(c.Low) {
		return errors.New("candle high must be >= low")
	}
	if c.Open.IsNegative() || c.Close.IsNegative() {
		return errors.New("candle prices must not be negative")
	}
	if c.Volume.IsNegative() {
		return errors.New("candle volume must not be negative")
	}
	return nil
}
