package discord

import (
	"testing"
	"time"

	"github.com/02s02s/volatility-alerts-bot/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{0.00001234, "$0.000012"},
		{0.009999, "$0.009999"},
		{0.0425, "$0.0425"},
		{0.99, "$0.9900"},
		{1.0, "$1.00"},
		{64250.5, "$64250.50"},
	}
	for _, tt := range tests {
		got := formatPrice(decimal.NewFromFloat(tt.price))
		assert.Equal(t, tt.want, got, "price %v", tt.price)
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "+5.12%", formatPercent(decimal.NewFromFloat(5.123)))
	assert.Equal(t, "-3.10%", formatPercent(decimal.NewFromFloat(-3.1)))
	assert.Equal(t, "+0.00%", formatPercent(decimal.Zero))
}

func TestFormatVolume(t *testing.T) {
	assert.Equal(t, "1,250,000", formatVolume(decimal.NewFromInt(1_250_000)))
	assert.Equal(t, "999", formatVolume(decimal.NewFromFloat(999.73)))
}

func testResult() models.AnalysisResult {
	return models.AnalysisResult{
		Symbol:         "BTCUSDT",
		Price:          decimal.NewFromFloat(64250.5),
		Volatility15m:  decimal.NewFromFloat(0.82),
		PriceChange5m:  decimal.NewFromFloat(1.2),
		PriceChange15m: decimal.NewFromFloat(-6.3),
		Volume5m:       decimal.NewFromInt(48_000),
		Volume15m:      decimal.NewFromInt(120_000),
		VolumeSpike:    decimal.NewFromFloat(35.5),
	}
}

func TestBuildEmbed(t *testing.T) {
	now := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	embed := buildEmbed(testResult(), models.CategoryBigMove, models.DirectionBearish,
		"https://charts.example/btc.png", now)

	assert.Equal(t, "📉 Big Move: BTCUSDT", embed.Title)
	assert.Equal(t, colorBearish, embed.Color)
	require.NotNil(t, embed.Image)
	assert.Equal(t, "https://charts.example/btc.png", embed.Image.URL)
	assert.Equal(t, "2025-06-03T12:00:00Z", embed.Timestamp)

	fields := map[string]string{}
	for _, f := range embed.Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "$64250.50", fields["Price"])
	assert.Equal(t, "+1.20%", fields["5m Change"])
	assert.Equal(t, "-6.30%", fields["15m Change"])
	assert.Equal(t, "120,000", fields["15m Volume"])
	assert.Equal(t, "+35.50%", fields["Volume Spike"])
}

func TestBuildEmbedWithoutChart(t *testing.T) {
	embed := buildEmbed(testResult(), models.CategoryFastMove, models.DirectionBullish, "", time.Now())
	assert.Nil(t, embed.Image)
	assert.Equal(t, colorBullish, embed.Color)
	assert.Equal(t, "📈 Fast Move: BTCUSDT", embed.Title)
}

func TestRouteForSingleMode(t *testing.T) {
	cfg := Config{
		Mode:          ModeSingle,
		ChannelID:     "chan-1",
		MentionRoleID: "role-1",
	}

	for _, direction := range []models.Direction{models.DirectionBullish, models.DirectionBearish} {
		r := cfg.routeFor(direction)
		assert.Equal(t, "chan-1", r.channelID)
		assert.Equal(t, "role-1", r.roleID)
		assert.False(t, r.interactive)
	}
}

func TestRouteForDirectionalMode(t *testing.T) {
	cfg := Config{
		Mode:             ModeDirectional,
		BullishChannelID: "chan-up",
		BullishRoleID:    "role-up",
		BearishChannelID: "chan-down",
		BearishRoleID:    "role-down",
	}

	up := cfg.routeFor(models.DirectionBullish)
	assert.Equal(t, "chan-up", up.channelID)
	assert.Equal(t, "role-up", up.roleID)
	assert.True(t, up.interactive)

	down := cfg.routeFor(models.DirectionBearish)
	assert.Equal(t, "chan-down", down.channelID)
	assert.Equal(t, "role-down", down.roleID)
	assert.True(t, down.interactive)
}

func TestRoutingUsesTriggeringField(t *testing.T) {
	cfg := Config{
		Mode:             ModeDirectional,
		BullishChannelID: "chan-up",
		BearishChannelID: "chan-down",
	}

	// 15m change is negative but 5m is positive: a FastMove routes by the
	// 5m field, a BigMove by the 15m field.
	result := testResult()
	require.True(t, result.PriceChange15m.IsNegative())
	require.False(t, result.PriceChange5m.IsNegative())

	assert.Equal(t, "chan-down", cfg.routeFor(result.Direction(models.CategoryBigMove)).channelID)
	assert.Equal(t, "chan-up", cfg.routeFor(result.Direction(models.CategoryFastMove)).channelID)
}

func TestOptInButton(t *testing.T) {
	up := optInButton(models.DirectionBullish)
	assert.Equal(t, "alert_optin:bullish", up.CustomID)

	down := optInButton(models.DirectionBearish)
	assert.Equal(t, "alert_optin:bearish", down.CustomID)
	assert.NotEqual(t, up.Style, down.Style)
}

func TestRoleForDirection(t *testing.T) {
	cfg := Config{BullishRoleID: "role-up", BearishRoleID: "role-down"}
	assert.Equal(t, "role-up", cfg.roleForDirection(models.DirectionBullish))
	assert.Equal(t, "role-down", cfg.roleForDirection(models.DirectionBearish))
}
