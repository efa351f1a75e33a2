package config

import (
	"os"
	"testing"
	"time"
)

const validConfig = `
bybit:
  base_url: "https://api.bybit.com"
  category: "linear"
  timeout: 15s

scan:
  interval: 60s
  batch_size: 20

signal:
  big_move_pct: 5.0
  fast_move_pct: 3.0
  volume_spike_pct: 50.0
  min_volume_15m: 50000
  cooldown: 60m

discord:
  bot_token: "test_token"
  mode: "single"
  channel_id: "123456789"

storage:
  db_path: "./data/test.db"
  max_records: 1000

logging:
  level: "info"
  format: "json"
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Remove(tmpfile.Name()) })
	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpfile.Name()
}

func TestLoadAndValidate(t *testing.T) {
	path := writeTempConfig(t, validConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if cfg.Bybit.Category != "linear" {
		t.Errorf("bybit.category = %q, want linear", cfg.Bybit.Category)
	}
	if cfg.Scan.Interval != 60*time.Second {
		t.Errorf("scan.interval = %v, want 60s", cfg.Scan.Interval)
	}
	if cfg.Signal.Cooldown != time.Hour {
		t.Errorf("signal.cooldown = %v, want 1h", cfg.Signal.Cooldown)
	}
}

func TestLoadDefaults(t *testing.T) {
	// Minimal file: everything not provided should come from defaults.
	path := writeTempConfig(t, `
discord:
  bot_token: "t"
  channel_id: "1"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed with defaults: %v", err)
	}

	if cfg.Scan.BatchSize != 20 {
		t.Errorf("default scan.batch_size = %d, want 20", cfg.Scan.BatchSize)
	}
	if cfg.Scan.DispatchPause != 2*time.Second {
		t.Errorf("default scan.dispatch_pause = %v, want 2s", cfg.Scan.DispatchPause)
	}
	if cfg.Scan.BatchPause != 100*time.Millisecond {
		t.Errorf("default scan.batch_pause = %v, want 100ms", cfg.Scan.BatchPause)
	}
	if cfg.Signal.MinVolume15m != 50000 {
		t.Errorf("default signal.min_volume_15m = %v, want 50000", cfg.Signal.MinVolume15m)
	}
	if cfg.Signal.BigMovePct != 5.0 {
		t.Errorf("default signal.big_move_pct = %v, want 5.0", cfg.Signal.BigMovePct)
	}
	if cfg.Discord.Mode != "single" {
		t.Errorf("default discord.mode = %q, want single", cfg.Discord.Mode)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing bot token", func(c *Config) { c.Discord.BotToken = "" }},
		{"bad category", func(c *Config) { c.Bybit.Category = "margin" }},
		{"bad mode", func(c *Config) { c.Discord.Mode = "broadcast" }},
		{"single mode without channel", func(c *Config) { c.Discord.ChannelID = "" }},
		{"directional mode without channels", func(c *Config) {
			c.Discord.Mode = "directional"
			c.Discord.BullishChannelID = ""
		}},
		{"interval too short", func(c *Config) { c.Scan.Interval = time.Second }},
		{"cooldown too short", func(c *Config) { c.Signal.Cooldown = time.Second }},
		{"kline limit below history floor", func(c *Config) { c.Scan.Klines5mLimit = 5 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeTempConfig(t, validConfig))
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
