package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/02s02s/volatility-alerts-bot/internal/analyzer"
	"github.com/02s02s/volatility-alerts-bot/internal/bybit"
	"github.com/02s02s/volatility-alerts-bot/internal/chart"
	"github.com/02s02s/volatility-alerts-bot/internal/config"
	"github.com/02s02s/volatility-alerts-bot/internal/discord"
	"github.com/02s02s/volatility-alerts-bot/internal/logger"
	"github.com/02s02s/volatility-alerts-bot/internal/scanner"
	"github.com/02s02s/volatility-alerts-bot/internal/storage"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	// Local overrides for development; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	store, err := storage.New(cfg.Storage.MaxRecords, cfg.Storage.DBPath)
	if err != nil {
		logger.Fatal("Failed to initialize alert audit storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	market := bybit.NewClient(cfg.Bybit.BaseURL, cfg.Bybit.Category, cfg.Bybit.Timeout,
		bybit.ClientConfig{
			MaxRetries:     cfg.Bybit.MaxRetries,
			RetryDelayBase: cfg.Bybit.RetryDelayBase,
		})

	charts := chart.NewClient(cfg.Chart.BaseURL, cfg.Chart.Timeout)
	if charts.Enabled() {
		logger.Info("Chart rendering enabled via %s", cfg.Chart.BaseURL)
	} else {
		logger.Debug("Chart rendering disabled")
	}

	notifier, err := discord.New(cfg.Discord.BotToken, discord.Config{
		Mode:             cfg.Discord.Mode,
		ChannelID:        cfg.Discord.ChannelID,
		MentionRoleID:    cfg.Discord.MentionRoleID,
		BullishChannelID: cfg.Discord.BullishChannelID,
		BullishRoleID:    cfg.Discord.BullishRoleID,
		BearishChannelID: cfg.Discord.BearishChannelID,
		BearishRoleID:    cfg.Discord.BearishRoleID,
	}, market, charts)
	if err != nil {
		// No resolvable destination means the process has no purpose.
		logger.Fatal("Failed to initialize Discord notifier: %v", err)
	}
	defer func() {
		if err := notifier.Close(); err != nil {
			logger.Error("Failed to close Discord session: %v", err)
		}
	}()
	logger.Info("Discord notifier initialized in %s mode", cfg.Discord.Mode)

	signalAnalyzer := analyzer.New(market, analyzer.Config{
		Klines5mLimit:  cfg.Scan.Klines5mLimit,
		Klines15mLimit: cfg.Scan.Klines15mLimit,
		MinCandles5m:   cfg.Scan.MinCandles5m,
	})

	thresholds := analyzer.Thresholds{
		BigMovePct:     decimal.NewFromFloat(cfg.Signal.BigMovePct),
		FastMovePct:    decimal.NewFromFloat(cfg.Signal.FastMovePct),
		VolumeSpikePct: decimal.NewFromFloat(cfg.Signal.VolumeSpikePct),
		MinVolume15m:   decimal.NewFromFloat(cfg.Signal.MinVolume15m),
	}

	cooldown := scanner.NewCooldown(cfg.Signal.Cooldown, nil)
	scan := scanner.New(market, signalAnalyzer, notifier, store, cooldown, thresholds,
		scanner.Config{
			Interval:      cfg.Scan.Interval,
			BatchSize:     cfg.Scan.BatchSize,
			BatchPause:    cfg.Scan.BatchPause,
			DispatchPause: cfg.Scan.DispatchPause,
		}, nil).WithOpsNotifier(notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, draining current cycle...")
		cancel()
	}()

	logger.Info("Starting scan loop (interval: %v, batch_size: %d, cooldown: %v, category: %s)",
		cfg.Scan.Interval, cfg.Scan.BatchSize, cfg.Signal.Cooldown, cfg.Bybit.Category)
	scan.Run(ctx)
}
