// Package bybit provides a read-only client for the Bybit v5 market data API.
package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/02s02s/volatility-alerts-bot/internal/models"
	"github.com/shopspring/decimal"
)

// Interval is a kline bucket size in the API's own notation.
type Interval string

const (
	Interval5m  Interval = "5"
	Interval15m Interval = "15"
)

// ClientConfig tunes retry and connection pooling behavior.
type ClientConfig struct {
	MaxRetries          int
	RetryDelayBase      time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

// Client provides access to Bybit market data endpoints. It is a pure I/O
// adapter: no signal logic lives here.
type Client struct {
	baseURL    string
	category   string
	httpClient *http.Client
	config     ClientConfig
}

// NewClient creates a market data client for the given category
// (spot, linear, or inverse).
func NewClient(baseURL, category string, timeout time.Duration, config ClientConfig) *Client {
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelayBase <= 0 {
		config.RetryDelayBase = time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
	}

	return &Client{
		baseURL:  baseURL,
		category: category,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		config: config,
	}
}

type apiResponse struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
}

type tickerList struct {
	Category string       `json:"category"`
	List     []tickerItem `json:"list"`
}

type tickerItem struct {
	Symbol       string `json:"symbol"`
	LastPrice    string `json:"lastPrice"`
	Price24hPcnt string `json:"price24hPcnt"`
	HighPrice24h string `json:"highPrice24h"`
	LowPrice24h  string `json:"lowPrice24h"`
	Turnover24h  string `json:"turnover24h"`
}

type klineList struct {
	Category string     `json:"category"`
	Symbol   string     `json:"symbol"`
	List     [][]string `json:"list"`
}

// Tickers fetches a snapshot of every symbol in the configured category.
func (c *Client) Tickers(ctx context.Context) ([]models.TickerSnapshot, error) {
	params := url.Values{}
	params.Set("category", c.category)

	var result tickerList
	if err := c.get(ctx, "/v5/market/tickers", params, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch tickers: %w", err)
	}

	snapshots := make([]models.TickerSnapshot, 0, len(result.List))
	for _, item := range result.List {
		snapshot, err := parseTicker(item)
		if err != nil {
			return nil, fmt.Errorf("malformed ticker for %s: %w", item.Symbol, err)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

// Klines fetches up to limit candles for a symbol at the given interval.
// The series is ordered most-recent-first, as returned by the API.
func (c *Client) Klines(ctx context.Context, symbol string, interval Interval, limit int) ([]models.Candle, error) {
	params := url.Values{}
	params.Set("category", c.category)
	params.Set("symbol", symbol)
	params.Set("interval", string(interval))
	params.Set("limit", strconv.Itoa(limit))

	var result klineList
	if err := c.get(ctx, "/v5/market/kline", params, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch klines for %s: %w", symbol, err)
	}

	candles := make([]models.Candle, 0, len(result.List))
	for _, row := range result.List {
		candle, err := parseKlineRow(row)
		if err != nil {
			return nil, fmt.Errorf("malformed kline for %s: %w", symbol, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func parseTicker(item tickerItem) (models.TickerSnapshot, error) {
	price, err := decimal.NewFromString(item.LastPrice)
	if err != nil {
		return models.TickerSnapshot{}, fmt.Errorf("lastPrice: %w", err)
	}
	turnover, err := decimal.NewFromString(item.Turnover24h)
	if err != nil {
		return models.TickerSnapshot{}, fmt.Errorf("turnover24h: %w", err)
	}
	// price24hPcnt is a fraction (0.05 = 5%); convert to percent.
	changeFrac, err := decimal.NewFromString(item.Price24hPcnt)
	if err != nil {
		return models.TickerSnapshot{}, fmt.Errorf("price24hPcnt: %w", err)
	}
	high, err := decimal.NewFromString(item.HighPrice24h)
	if err != nil {
		return models.TickerSnapshot{}, fmt.Errorf("highPrice24h: %w", err)
	}
	low, err := decimal.NewFromString(item.LowPrice24h)
	if err != nil {
		return models.TickerSnapshot{}, fmt.Errorf("lowPrice24h: %w", err)
	}

	return models.TickerSnapshot{
		Symbol:         item.Symbol,
		Price:          price,
		Volume24h:      turnover,
		PriceChange24h: changeFrac.Mul(decimal.NewFromInt(100)),
		High24h:        high,
		Low24h:         low,
	}, nil
}

// parseKlineRow decodes the API's positional kline tuple:
// [startMs, open, high, low, close, volume, turnover].
func parseKlineRow(row []string) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, fmt.Errorf("expected at least 6 fields, got %d", len(row))
	}

	startMs, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("start time: %w", err)
	}

	fields := make([]decimal.Decimal, 5)
	for i := 0; i < 5; i++ {
		fields[i], err = decimal.NewFromString(row[i+1])
		if err != nil {
			return models.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
	}

	return models.Candle{
		Start:  time.UnixMilli(startMs),
		Open:   fields[0],
		High:   fields[1],
		Low:    fields[2],
		Close:  fields[3],
		Volume: fields[4],
	}, nil
}

// get performs a GET request with linear-backoff retry on transport errors
// and 5xx responses, then unmarshals the API result envelope.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u = u + "?" + params.Encode()
	}

	var lastErr error
	for i := 0; i < c.config.MaxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.config.RetryDelayBase * time.Duration(i)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}

		var envelope apiResponse
		err = json.NewDecoder(resp.Body).Decode(&envelope)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		if envelope.RetCode != 0 {
			return fmt.Errorf("API error %d: %s", envelope.RetCode, envelope.RetMsg)
		}
		return json.Unmarshal(envelope.Result, out)
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
