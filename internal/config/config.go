// Package config loads and validates the application configuration from a
// YAML file with environment variable overrides.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Bybit   BybitConfig   `mapstructure:"bybit"`
	Scan    ScanConfig    `mapstructure:"scan"`
	Signal  SignalConfig  `mapstructure:"signal"`
	Discord DiscordConfig `mapstructure:"discord"`
	Chart   ChartConfig   `mapstructure:"chart"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// BybitConfig holds market data API configuration.
type BybitConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Category       string        `mapstructure:"category"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// ScanConfig holds scan cycle pacing and sizing configuration.
type ScanConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	BatchSize      int           `mapstructure:"batch_size"`
	BatchPause     time.Duration `mapstructure:"batch_pause"`
	DispatchPause  time.Duration `mapstructure:"dispatch_pause"`
	Klines5mLimit  int           `mapstructure:"klines_5m_limit"`
	Klines15mLimit int           `mapstructure:"klines_15m_limit"`
	MinCandles5m   int           `mapstructure:"min_candles_5m"`
}

// SignalConfig holds alert thresholds and the cooldown period.
type SignalConfig struct {
	BigMovePct     float64       `mapstructure:"big_move_pct"`
	FastMovePct    float64       `mapstructure:"fast_move_pct"`
	VolumeSpikePct float64       `mapstructure:"volume_spike_pct"`
	MinVolume15m   float64       `mapstructure:"min_volume_15m"`
	Cooldown       time.Duration `mapstructure:"cooldown"`
}

// DiscordConfig holds notification transport configuration. Mode "single"
// sends every alert to ChannelID; mode "directional" routes by alert
// direction to the bullish/bearish channels.
type DiscordConfig struct {
	BotToken         string `mapstructure:"bot_token"`
	Mode             string `mapstructure:"mode"`
	ChannelID        string `mapstructure:"channel_id"`
	MentionRoleID    string `mapstructure:"mention_role_id"`
	BullishChannelID string `mapstructure:"bullish_channel_id"`
	BullishRoleID    string `mapstructure:"bullish_role_id"`
	BearishChannelID string `mapstructure:"bearish_channel_id"`
	BearishRoleID    string `mapstructure:"bearish_role_id"`
}

// ChartConfig holds the chart rendering service configuration. An empty
// BaseURL disables chart rendering.
type ChartConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig holds the alert audit log configuration.
type StorageConfig struct {
	DBPath     string `mapstructure:"db_path"`
	MaxRecords int    `mapstructure:"max_records"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given file with VOLALERT_* environment
// variable overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvPrefix("VOLALERT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bybit.base_url", "https://api.bybit.com")
	v.SetDefault("bybit.category", "linear")
	v.SetDefault("bybit.timeout", "15s")
	v.SetDefault("bybit.max_retries", 3)
	v.SetDefault("bybit.retry_delay_base", "1s")

	v.SetDefault("scan.interval", "60s")
	v.SetDefault("scan.batch_size", 20)
	v.SetDefault("scan.batch_pause", "100ms")
	v.SetDefault("scan.dispatch_pause", "2s")
	v.SetDefault("scan.klines_5m_limit", 30)
	v.SetDefault("scan.klines_15m_limit", 5)
	v.SetDefault("scan.min_candles_5m", 10)

	v.SetDefault("signal.big_move_pct", 5.0)
	v.SetDefault("signal.fast_move_pct", 3.0)
	v.SetDefault("signal.volume_spike_pct", 50.0)
	v.SetDefault("signal.min_volume_15m", 50000.0)
	v.SetDefault("signal.cooldown", "60m")

	v.SetDefault("discord.mode", "single")

	v.SetDefault("chart.timeout", "10s")

	v.SetDefault("storage.db_path", "./data/alerts.db")
	v.SetDefault("storage.max_records", 5000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	if c.Bybit.BaseURL == "" {
		return fmt.Errorf("bybit.base_url is required")
	}
	validCategories := map[string]bool{"spot": true, "linear": true, "inverse": true}
	if !validCategories[c.Bybit.Category] {
		return fmt.Errorf("bybit.category must be one of: spot, linear, inverse")
	}
	if c.Bybit.MaxRetries < 1 {
		return fmt.Errorf("bybit.max_retries must be at least 1")
	}

	if c.Scan.Interval < 10*time.Second {
		return fmt.Errorf("scan.interval must be at least 10 seconds")
	}
	if c.Scan.BatchSize < 1 {
		return fmt.Errorf("scan.batch_size must be at least 1")
	}
	if c.Scan.Klines5mLimit < c.Scan.MinCandles5m {
		return fmt.Errorf("scan.klines_5m_limit must be >= scan.min_candles_5m")
	}
	if c.Scan.MinCandles5m < 10 {
		return fmt.Errorf("scan.min_candles_5m must be at least 10")
	}
	if c.Scan.Klines15mLimit < 2 {
		return fmt.Errorf("scan.klines_15m_limit must be at least 2")
	}

	if c.Signal.BigMovePct <= 0 {
		return fmt.Errorf("signal.big_move_pct must be positive")
	}
	if c.Signal.FastMovePct <= 0 {
		return fmt.Errorf("signal.fast_move_pct must be positive")
	}
	if c.Signal.MinVolume15m < 0 {
		return fmt.Errorf("signal.min_volume_15m must not be negative")
	}
	if c.Signal.Cooldown < time.Minute {
		return fmt.Errorf("signal.cooldown must be at least 1 minute")
	}

	if c.Discord.BotToken == "" {
		return fmt.Errorf("discord.bot_token is required")
	}
	switch c.Discord.Mode {
	case "single":
		if c.Discord.ChannelID == "" {
			return fmt.Errorf("discord.channel_id is required in single mode")
		}
	case "directional":
		if c.Discord.BullishChannelID == "" || c.Discord.BearishChannelID == "" {
			return fmt.Errorf("discord.bullish_channel_id and discord.bearish_channel_id are required in directional mode")
		}
	default:
		return fmt.Errorf("discord.mode must be one of: single, directional")
	}

	if c.Storage.MaxRecords < 1 {
		return fmt.Errorf("storage.max_records must be at least 1")
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
