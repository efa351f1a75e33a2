package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTickerSnapshotValidate(t *testing.T) {
	valid := TickerSnapshot{
		Symbol:    "BTCUSDT",
		Price:     decimal.NewFromFloat(64250.5),
		Volume24h: decimal.NewFromInt(1_500_000),
		High24h:   decimal.NewFromInt(65000),
		Low24h:    decimal.NewFromInt(63000),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid ticker failed validation: %v", err)
	}

	empty := valid
	empty.Symbol = ""
	if err := empty.Validate(); err == nil {
		t.Error("expected error for empty symbol")
	}

	inverted := valid
	inverted.High24h = decimal.NewFromInt(100)
	inverted.Low24h = decimal.NewFromInt(200)
	if err := inverted.Validate(); err == nil {
		t.Error("expected error for high < low")
	}
}

func TestCandleValidate(t *testing.T) {
	valid := Candle{
		Start:  time.Now().Add(-5 * time.Minute),
		Open:   decimal.NewFromFloat(1.05),
		High:   decimal.NewFromFloat(1.10),
		Low:    decimal.NewFromFloat(1.01),
		Close:  decimal.NewFromFloat(1.08),
		Volume: decimal.NewFromInt(42000),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid candle failed validation: %v", err)
	}

	inverted := valid
	inverted.High, inverted.Low = inverted.Low, inverted.High
	if err := inverted.Validate(); err == nil {
		t.Error("expected error for high < low")
	}

	negVol := valid
	negVol.Volume = decimal.NewFromInt(-1)
	if err := negVol.Validate(); err == nil {
		t.Error("expected error for negative volume")
	}
}

func TestAnalysisResultDirection(t *testing.T) {
	tests := []struct {
		name      string
		change5m  float64
		change15m float64
		category  AlertCategory
		want      Direction
	}{
		{"big move up", 1.0, 6.2, CategoryBigMove, DirectionBullish},
		{"big move down", 1.0, -6.2, CategoryBigMove, DirectionBearish},
		{"fast move up", 3.5, -1.0, CategoryFastMove, DirectionBullish},
		{"fast move down", -3.5, 1.0, CategoryFastMove, DirectionBearish},
		{"flat counts as bullish", 0, 0, CategoryBigMove, DirectionBullish},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := AnalysisResult{
				PriceChange5m:  decimal.NewFromFloat(tt.change5m),
				PriceChange15m: decimal.NewFromFloat(tt.change15m),
			}
			if got := r.Direction(tt.category); got != tt.want {
				t.Errorf("Direction(%s) = %s, want %s", tt.category, got, tt.want)
			}
		})
	}
}

func TestAlertCategoryLabel(t *testing.T) {
	if CategoryBigMove.Label() != "Big Move" {
		t.Errorf("unexpected label: %s", CategoryBigMove.Label())
	}
	if CategoryFastMove.Label() != "Fast Move" {
		t.Errorf("unexpected label: %s", CategoryFastMove.Label())
	}
}
