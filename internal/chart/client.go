// Package chart renders candlestick chart images through an external
// chart-rendering service. Rendering is best-effort: callers treat any error
// as "no image" and send the textual alert anyway.
package chart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/02s02s/volatility-alerts-bot/internal/models"
	"github.com/samber/lo"
)

// Client posts chart specifications to the rendering service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a chart client. An empty baseURL disables rendering:
// Render returns an empty URL without a network call.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Enabled reports whether a rendering service is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

type candlePoint struct {
	T int64  `json:"t"`
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
}

type renderRequest struct {
	Symbol  string        `json:"symbol"`
	Candles []candlePoint `json:"candles"`
	Theme   string        `json:"theme"`
}

type renderResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Error   string `json:"error,omitempty"`
}

// Render posts the candle series and returns a URL for the rendered image.
func (c *Client) Render(ctx context.Context, symbol string, candles []models.Candle) (string, error) {
	if !c.Enabled() {
		return "", nil
	}

	payload := renderRequest{
		Symbol: symbol,
		Theme:  "dark",
		Candles: lo.Map(candles, func(candle models.Candle, _ int) candlePoint {
			return candlePoint{
				T: candle.Start.UnixMilli(),
				O: candle.Open.String(),
				H: candle.High.String(),
				L: candle.Low.String(),
				C: candle.Close.String(),
			}
		}),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chart request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chart request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chart service returned status %d", resp.StatusCode)
	}

	var result renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode chart response: %w", err)
	}
	if !result.Success {
		return "", fmt.Errorf("chart service error: %s", result.Error)
	}
	return result.URL, nil
}
