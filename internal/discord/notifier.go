// Package discord formats classified alerts into Discord embeds and routes
// them to the configured destination channels.
package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/02s02s/volatility-alerts-bot/internal/bybit"
	"github.com/02s02s/volatility-alerts-bot/internal/logger"
	"github.com/02s02s/volatility-alerts-bot/internal/models"
	"github.com/bwmarrin/discordgo"
)

const optInPrefix = "alert_optin:"

// Routing modes.
const (
	ModeSingle      = "single"
	ModeDirectional = "directional"
)

// Config holds the transport destinations. In single mode every alert goes to
// ChannelID; in directional mode alerts route by direction, each destination
// with its own notification role and opt-in button.
type Config struct {
	Mode          string
	ChannelID     string
	MentionRoleID string

	BullishChannelID string
	BullishRoleID    string
	BearishChannelID string
	BearishRoleID    string
}

// CandleSource supplies the candle series attached to alert charts.
type CandleSource interface {
	Klines(ctx context.Context, symbol string, interval bybit.Interval, limit int) ([]models.Candle, error)
}

// ChartRenderer turns a candle series into an image URL, best-effort.
type ChartRenderer interface {
	Enabled() bool
	Render(ctx context.Context, symbol string, candles []models.Candle) (string, error)
}

// Notifier delivers alerts over a Discord session. Only a confirmed
// successful delivery should advance the caller's cooldown state.
type Notifier struct {
	session *discordgo.Session
	config  Config
	candles CandleSource
	charts  ChartRenderer
	clock   func() time.Time
}

type route struct {
	channelID   string
	roleID      string
	interactive bool
	direction   models.Direction
}

// New connects a Discord session and resolves the configured channels.
// An unresolvable destination channel is a hard error: the process has no
// purpose without somewhere to deliver alerts.
func New(token string, config Config, candles CandleSource, charts ChartRenderer) (*Notifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	n := &Notifier{
		session: session,
		config:  config,
		candles: candles,
		charts:  charts,
		clock:   time.Now,
	}
	session.AddHandler(n.handleInteraction)

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("failed to open Discord session: %w", err)
	}

	for _, channelID := range n.destinationChannels() {
		if _, err := session.Channel(channelID); err != nil {
			session.Close()
			return nil, fmt.Errorf("failed to resolve channel %s: %w", channelID, err)
		}
	}
	return n, nil
}

// Close shuts down the Discord session.
func (n *Notifier) Close() error {
	return n.session.Close()
}

func (n *Notifier) destinationChannels() []string {
	if n.config.Mode == ModeDirectional {
		return []string{n.config.BullishChannelID, n.config.BearishChannelID}
	}
	return []string{n.config.ChannelID}
}

// opsChannelID is where cycle error/recovery notices go: the single channel,
// or the bullish channel in directional mode.
func (n *Notifier) opsChannelID() string {
	if n.config.Mode == ModeDirectional {
		return n.config.BullishChannelID
	}
	return n.config.ChannelID
}

// routeFor selects the destination for an alert direction.
func (c Config) routeFor(direction models.Direction) route {
	if c.Mode == ModeDirectional {
		if direction == models.DirectionBearish {
			return route{
				channelID:   c.BearishChannelID,
				roleID:      c.BearishRoleID,
				interactive: true,
				direction:   direction,
			}
		}
		return route{
			channelID:   c.BullishChannelID,
			roleID:      c.BullishRoleID,
			interactive: true,
			direction:   direction,
		}
	}
	return route{
		channelID: c.ChannelID,
		roleID:    c.MentionRoleID,
		direction: direction,
	}
}

// Send formats and delivers one alert. The chart image is best-effort:
// rendering failures degrade to a text-only alert, never block delivery.
func (n *Notifier) Send(ctx context.Context, result models.AnalysisResult, category models.AlertCategory) error {
	direction := result.Direction(category)
	r := n.config.routeFor(direction)

	chartURL := n.renderChart(ctx, result.Symbol)

	message := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			buildEmbed(result, category, direction, chartURL, n.clock()),
		},
	}
	if r.roleID != "" {
		message.Content = fmt.Sprintf("<@&%s>", r.roleID)
		message.AllowedMentions = &discordgo.MessageAllowedMentions{
			Roles: []string{r.roleID},
		}
	}
	if r.interactive && r.roleID != "" {
		message.Components = []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{optInButton(r.direction)},
			},
		}
	}

	if _, err := n.session.ChannelMessageSendComplex(r.channelID, message); err != nil {
		return fmt.Errorf("failed to send alert for %s: %w", result.Symbol, err)
	}
	return nil
}

func (n *Notifier) renderChart(ctx context.Context, symbol string) string {
	if n.charts == nil || !n.charts.Enabled() {
		return ""
	}
	candles, err := n.candles.Klines(ctx, symbol, bybit.Interval5m, 30)
	if err != nil {
		logger.Warn("Failed to fetch candles for %s chart: %v", symbol, err)
		return ""
	}
	url, err := n.charts.Render(ctx, symbol, candles)
	if err != nil {
		logger.Warn("Failed to render chart for %s: %v", symbol, err)
		return ""
	}
	return url
}

// SendCycleError posts a scan failure notice. Call only on the first error of
// a consecutive failure sequence.
func (n *Notifier) SendCycleError(cycleErr error) error {
	_, err := n.session.ChannelMessageSend(n.opsChannelID(),
		fmt.Sprintf("⚠️ Scan error: `%s`", cycleErr))
	return err
}

// SendRecovery posts a recovery notice after consecutive scan failures.
func (n *Notifier) SendRecovery(failureCount int) error {
	_, err := n.session.ChannelMessageSend(n.opsChannelID(),
		fmt.Sprintf("✅ Scanning recovered after %d consecutive failure(s)", failureCount))
	return err
}

func optInButton(direction models.Direction) discordgo.Button {
	label := "Notify me: bullish moves"
	style := discordgo.SuccessButton
	if direction == models.DirectionBearish {
		label = "Notify me: bearish moves"
		style = discordgo.DangerButton
	}
	return discordgo.Button{
		Label:    label,
		Style:    style,
		CustomID: optInPrefix + string(direction),
	}
}

// roleForDirection maps an opt-in button press back to the role it toggles.
func (c Config) roleForDirection(direction models.Direction) string {
	if direction == models.DirectionBearish {
		return c.BearishRoleID
	}
	return c.BullishRoleID
}

// handleInteraction toggles the invoking member's membership in a direction's
// notification role and reports the resulting state to that user only.
func (n *Notifier) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, optInPrefix) {
		return
	}
	if i.Member == nil || i.Member.User == nil {
		return
	}

	direction := models.Direction(strings.TrimPrefix(customID, optInPrefix))
	roleID := n.config.roleForDirection(direction)
	if roleID == "" {
		return
	}

	userID := i.Member.User.ID
	hasRole := false
	for _, r := range i.Member.Roles {
		if r == roleID {
			hasRole = true
			break
		}
	}

	var err error
	var reply string
	if hasRole {
		err = s.GuildMemberRoleRemove(i.GuildID, userID, roleID)
		reply = fmt.Sprintf("You will no longer be pinged for %s moves.", direction)
	} else {
		err = s.GuildMemberRoleAdd(i.GuildID, userID, roleID)
		reply = fmt.Sprintf("You will now be pinged for %s moves.", direction)
	}
	if err != nil {
		logger.Error("Failed to toggle %s role for user %s: %v", direction, userID, err)
		reply = "Sorry, something went wrong updating your notification role."
	}

	respondErr := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: reply,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if respondErr != nil {
		logger.Error("Failed to respond to opt-in interaction: %v", respondErr)
	}
}
