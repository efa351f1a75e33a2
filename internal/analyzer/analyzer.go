// Package analyzer computes short-horizon volatility and momentum signals
// from candle series and classifies them into alert categories.
package analyzer

import (
	"context"
	"errors"
	"fmt"

	"github.com/02s02s/volatility-alerts-bot/internal/bybit"
	"github.com/02s02s/volatility-alerts-bot/internal/models"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ErrInsufficientHistory is returned when a symbol has too few 5-minute
// candles to analyze.
var ErrInsufficientHistory = errors.New("insufficient candle history")

// MarketData is the slice of the market data client the analyzer needs.
type MarketData interface {
	Klines(ctx context.Context, symbol string, interval bybit.Interval, limit int) ([]models.Candle, error)
}

// Config sizes the candle series fetched per symbol.
type Config struct {
	Klines5mLimit  int
	Klines15mLimit int
	MinCandles5m   int
}

// DefaultConfig returns the standard series sizes: 30 five-minute candles,
// 5 fifteen-minute candles, and a 10-candle history floor.
func DefaultConfig() Config {
	return Config{
		Klines5mLimit:  30,
		Klines15mLimit: 5,
		MinCandles5m:   10,
	}
}

// Analyzer converts raw candle series into per-symbol analysis records.
// It has no state of its own; every call recomputes from fresh data.
type Analyzer struct {
	market MarketData
	config Config
}

// New creates an analyzer backed by the given market data source.
func New(market MarketData, config Config) *Analyzer {
	return &Analyzer{market: market, config: config}
}

var hundred = decimal.NewFromInt(100)

// Analyze fetches the 5m and 15m candle series for symbol and derives the
// signal metrics. Any fetch error or a short 5m series aborts the whole
// symbol; there are no partial results.
func (a *Analyzer) Analyze(ctx context.Context, symbol string) (models.AnalysisResult, error) {
	candles5m, err := a.market.Klines(ctx, symbol, bybit.Interval5m, a.config.Klines5mLimit)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("5m klines: %w", err)
	}
	if len(candles5m) < a.config.MinCandles5m {
		return models.AnalysisResult{}, fmt.Errorf("%w: %d 5m candles", ErrInsufficientHistory, len(candles5m))
	}

	candles15m, err := a.market.Klines(ctx, symbol, bybit.Interval15m, a.config.Klines15mLimit)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("15m klines: %w", err)
	}

	// Series are most-recent-first: index 0 is the live candle.
	latest := candles5m[0]
	currentPrice := latest.Close

	// The 15m change baseline is the open of the 5m candle three positions
	// back, covering the last 15 minutes via three 5m candles. The separate
	// 15m series feeds volatility only.
	priceChange5m := percentChange(latest.Open, currentPrice)
	priceChange15m := percentChange(candles5m[3].Open, currentPrice)

	volume5m := latest.Volume
	volume15m := decimal.Sum(candles5m[0].Volume, candles5m[1].Volume, candles5m[2].Volume)

	// Trailing baseline window: the 7 candles before the last 15 minutes.
	baseline := lo.Map(candles5m[3:10], func(c models.Candle, _ int) decimal.Decimal {
		return c.Volume
	})
	avgVolume := mean(baseline)

	volumeSpike := decimal.Zero
	if !avgVolume.IsZero() {
		volumeSpike = volume5m.Sub(avgVolume).Div(avgVolume).Mul(hundred)
	}

	return models.AnalysisResult{
		Symbol:         symbol,
		Price:          currentPrice,
		Ticks5m:        volume5m.IntPart(),
		Volatility15m:  returnsVolatility(candles15m),
		PriceChange5m:  priceChange5m,
		PriceChange15m: priceChange15m,
		Volume5m:       volume5m,
		Volume15m:      volume15m,
		VolumeSpike:    volumeSpike,
	}, nil
}

// percentChange computes the % change from base to current, 0 when the base
// is 0.
func percentChange(base, current decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return current.Sub(base).Div(base).Mul(hundred)
}

// returnsVolatility is the population standard deviation of consecutive
// close-to-close percentage returns across the series, as a percentage.
func returnsVolatility(candles []models.Candle) decimal.Decimal {
	if len(candles) < 2 {
		return decimal.Zero
	}
	returns := make([]decimal.Decimal, 0, len(candles)-1)
	for i := 0; i < len(candles)-1; i++ {
		returns = append(returns, percentChange(candles[i+1].Close, candles[i].Close))
	}
	return stdDev(returns)
}

func mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(decimal.Zero, values...).Div(decimal.NewFromInt(int64(len(values))))
}

// stdDev is the population standard deviation (divide by N, not N-1).
func stdDev(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	avg := mean(values)
	var variance decimal.Decimal
	for _, v := range values {
		diff := v.Sub(avg)
		variance = variance.Add(diff.Mul(diff))
	}
	variance = variance.Div(decimal.NewFromInt(int64(len(values))))
	return variance.Pow(decimal.NewFromFloat(0.5))
}
