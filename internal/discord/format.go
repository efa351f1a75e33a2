package discord

import (
	"fmt"
	"time"

	"github.com/02s02s/volatility-alerts-bot/internal/models"
	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	colorBullish = 0x2ECC71
	colorBearish = 0xE74C3C
)

var (
	oneCent   = decimal.NewFromFloat(0.01)
	oneDollar = decimal.NewFromInt(1)
)

// formatPrice renders a price with precision scaled to its magnitude:
// 6 decimals below $0.01, 4 below $1, otherwise 2.
func formatPrice(price decimal.Decimal) string {
	switch {
	case price.LessThan(oneCent):
		return "$" + price.StringFixed(6)
	case price.LessThan(oneDollar):
		return "$" + price.StringFixed(4)
	default:
		return "$" + price.StringFixed(2)
	}
}

// formatPercent renders a percentage with an explicit sign.
func formatPercent(pct decimal.Decimal) string {
	if pct.IsNegative() {
		return pct.StringFixed(2) + "%"
	}
	return "+" + pct.StringFixed(2) + "%"
}

// formatVolume renders a volume as a grouped integer.
func formatVolume(volume decimal.Decimal) string {
	return humanize.Comma(volume.IntPart())
}

func directionEmoji(direction models.Direction) string {
	if direction == models.DirectionBearish {
		return "📉"
	}
	return "📈"
}

// buildEmbed composes the alert embed for a classified analysis.
func buildEmbed(result models.AnalysisResult, category models.AlertCategory,
	direction models.Direction, chartURL string, now time.Time) *discordgo.MessageEmbed {
	color := colorBullish
	if direction == models.DirectionBearish {
		color = colorBearish
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s %s: %s", directionEmoji(direction), category.Label(), result.Symbol),
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Price", Value: formatPrice(result.Price), Inline: true},
			{Name: "5m Change", Value: formatPercent(result.PriceChange5m), Inline: true},
			{Name: "15m Change", Value: formatPercent(result.PriceChange15m), Inline: true},
			{Name: "15m Volatility", Value: result.Volatility15m.StringFixed(2) + "%", Inline: true},
			{Name: "5m Volume", Value: formatVolume(result.Volume5m), Inline: true},
			{Name: "15m Volume", Value: formatVolume(result.Volume15m), Inline: true},
			{Name: "Volume Spike", Value: formatPercent(result.VolumeSpike), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "volatility-alerts-bot",
		},
		Timestamp: now.UTC().Format(time.RFC3339),
	}

	if chartURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: chartURL}
	}
	return embed
}
