// Package scanner drives the repeating scan cycle over all symbols: cooldown
// gating, signal analysis, classification, warmup suppression, and alert
// dispatch.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/02s02s/volatility-alerts-bot/internal/analyzer"
	"github.com/02s02s/volatility-alerts-bot/internal/logger"
	"github.com/02s02s/volatility-alerts-bot/internal/models"
	"github.com/samber/lo"
)

// State is the scheduler's lifecycle state. Warmup lasts exactly one full
// scan pass; Live is terminal for the process lifetime.
type State int

const (
	StateWarmup State = iota
	StateLive
)

// TickerSource fetches the full ticker snapshot set.
type TickerSource interface {
	Tickers(ctx context.Context) ([]models.TickerSnapshot, error)
}

// SignalAnalyzer computes an analysis record for one symbol.
type SignalAnalyzer interface {
	Analyze(ctx context.Context, symbol string) (models.AnalysisResult, error)
}

// Dispatcher delivers a classified alert to the notification transport.
type Dispatcher interface {
	Send(ctx context.Context, result models.AnalysisResult, category models.AlertCategory) error
}

// AuditLog records dispatched alerts. Failures are logged, never fatal.
type AuditLog interface {
	RecordAlert(record models.AlertRecord) error
}

// OpsNotifier receives cycle failure and recovery notices.
type OpsNotifier interface {
	SendCycleError(cycleErr error) error
	SendRecovery(failureCount int) error
}

// Config holds scan cycle pacing and sizing.
type Config struct {
	Interval      time.Duration
	BatchSize     int
	BatchPause    time.Duration
	DispatchPause time.Duration
}

// Scanner owns the warmup flag and cooldown state for the engine's lifetime.
// All state is touched from a single control flow: cycles are strictly
// sequential and never overlap.
type Scanner struct {
	tickers    TickerSource
	analyzer   SignalAnalyzer
	dispatcher Dispatcher
	audit      AuditLog
	cooldown   *Cooldown
	thresholds analyzer.Thresholds
	config     Config
	clock      func() time.Time

	// ops is optional; when set, the run loop reports the first error of a
	// failure streak and the recovery after it.
	ops OpsNotifier

	state State
}

// WithOpsNotifier enables cycle error/recovery notices.
func (s *Scanner) WithOpsNotifier(ops OpsNotifier) *Scanner {
	s.ops = ops
	return s
}

// New creates a scanner in the Warmup state. audit may be nil to disable the
// audit log; a nil clock defaults to time.Now.
func New(tickers TickerSource, sa SignalAnalyzer, dispatcher Dispatcher, audit AuditLog,
	cooldown *Cooldown, thresholds analyzer.Thresholds, config Config, clock func() time.Time) *Scanner {
	if clock == nil {
		clock = time.Now
	}
	if config.BatchSize < 1 {
		config.BatchSize = 20
	}
	return &Scanner{
		tickers:    tickers,
		analyzer:   sa,
		dispatcher: dispatcher,
		audit:      audit,
		cooldown:   cooldown,
		thresholds: thresholds,
		config:     config,
		clock:      clock,
		state:      StateWarmup,
	}
}

// State returns the current lifecycle state.
func (s *Scanner) State() State {
	return s.state
}

// Run executes scan cycles until ctx is cancelled. Cycle errors are logged
// and the next cycle is still scheduled; the scanner is self-healing across
// cycles.
func (s *Scanner) Run(ctx context.Context) {
	consecutiveFailures := 0
	for {
		if err := s.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				logger.Info("Scanner stopped")
				return
			}
			consecutiveFailures++
			logger.Error("Scan cycle failed: %v", err)
			if consecutiveFailures == 1 && s.ops != nil {
				if sendErr := s.ops.SendCycleError(err); sendErr != nil {
					logger.Warn("Failed to send cycle error notice: %v", sendErr)
				}
			}
		} else {
			if consecutiveFailures > 0 && s.ops != nil {
				if sendErr := s.ops.SendRecovery(consecutiveFailures); sendErr != nil {
					logger.Warn("Failed to send recovery notice: %v", sendErr)
				}
			}
			consecutiveFailures = 0
		}
		if err := sleep(ctx, s.config.Interval); err != nil {
			logger.Info("Scanner stopped")
			return
		}
	}
}

// RunCycle executes one full scan pass over all symbols. A panic inside the
// cycle is recovered and returned as an error so the run loop survives it.
func (s *Scanner) RunCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan cycle panicked: %v", r)
		}
	}()

	start := s.clock()

	snapshots, err := s.tickers.Tickers(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch tickers: %w", err)
	}
	logger.Debug("Fetched %d ticker snapshots", len(snapshots))

	var sent, suppressed int
	for i, batch := range lo.Chunk(snapshots, s.config.BatchSize) {
		if i > 0 {
			if err := sleep(ctx, s.config.BatchPause); err != nil {
				return err
			}
		}
		batchSent, batchSuppressed, err := s.scanBatch(ctx, batch)
		if err != nil {
			return err
		}
		sent += batchSent
		suppressed += batchSuppressed
	}

	if s.state == StateWarmup {
		s.state = StateLive
		logger.Info("Warmup pass complete: suppressed %d pre-existing alert(s), now live", suppressed)
		return nil
	}

	logger.Info("Scan cycle complete: %d alert(s) sent, %d symbols in %v",
		sent, len(snapshots), s.clock().Sub(start))
	return nil
}

func (s *Scanner) scanBatch(ctx context.Context, batch []models.TickerSnapshot) (sent, suppressed int, err error) {
	for _, snapshot := range batch {
		if ctx.Err() != nil {
			return sent, suppressed, ctx.Err()
		}

		// Gate before analysis to avoid wasted fetches for symbols still in
		// cooldown.
		if !s.cooldown.CanAlert(snapshot.Symbol) {
			continue
		}

		result, analyzeErr := s.analyzer.Analyze(ctx, snapshot.Symbol)
		if analyzeErr != nil {
			if errors.Is(analyzeErr, context.Canceled) || errors.Is(analyzeErr, context.DeadlineExceeded) {
				return sent, suppressed, analyzeErr
			}
			if errors.Is(analyzeErr, analyzer.ErrInsufficientHistory) {
				logger.Debug("Skipping %s: %v", snapshot.Symbol, analyzeErr)
			} else {
				logger.Warn("Failed to analyze %s: %v", snapshot.Symbol, analyzeErr)
			}
			continue
		}

		category, matched := analyzer.Classify(result, s.thresholds)
		if !matched {
			continue
		}

		if s.state == StateWarmup {
			suppressed++
			logger.Debug("Warmup: suppressing %s alert for %s", category, snapshot.Symbol)
			continue
		}

		if sendErr := s.dispatcher.Send(ctx, result, category); sendErr != nil {
			// The cooldown is not recorded, so the next cycle can retry the
			// same condition.
			logger.Error("Failed to dispatch %s alert for %s: %v", category, snapshot.Symbol, sendErr)
			continue
		}

		s.cooldown.Record(snapshot.Symbol)
		s.recordAudit(result, category)
		sent++

		logger.Info("Dispatched %s alert for %s (5m %s%%, 15m %s%%, spike %s%%)",
			category.Label(), result.Symbol,
			result.PriceChange5m.StringFixed(2), result.PriceChange15m.StringFixed(2),
			result.VolumeSpike.StringFixed(2))

		// Pacing delay for downstream rate limits.
		if err := sleep(ctx, s.config.DispatchPause); err != nil {
			return sent, suppressed, err
		}
	}
	return sent, suppressed, nil
}

func (s *Scanner) recordAudit(result models.AnalysisResult, category models.AlertCategory) {
	if s.audit == nil {
		return
	}
	record := models.AlertRecord{
		Symbol:        result.Symbol,
		Category:      category,
		Direction:     result.Direction(category),
		Price:         result.Price,
		Change5m:      result.PriceChange5m,
		Change15m:     result.PriceChange15m,
		Volatility15m: result.Volatility15m,
		Volume15m:     result.Volume15m,
		VolumeSpike:   result.VolumeSpike,
		SentAt:        s.clock(),
	}
	if err := s.audit.RecordAlert(record); err != nil {
		logger.Warn("Failed to record alert audit entry for %s: %v", result.Symbol, err)
	}
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
