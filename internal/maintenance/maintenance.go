// Package maintenance runs periodic background tasks as Go tickers:
// purging read notifications past retention and, when enabled, an
// in-process sweep for deployments without an external scheduler.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/albapepper/nudge/internal/notifications"
)

// Purger deletes read notifications created before a cutoff.
type Purger interface {
	PurgeRead(ctx context.Context, before time.Time) (int64, error)
}

// Sweeper runs a batch sweep. *notifications.Runner satisfies it.
type Sweeper interface {
	RunAll(ctx context.Context, now time.Time) (notifications.BatchResult, error)
}

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	CleanupInterval time.Duration
	Retention       time.Duration // read notifications older than this are purged
	SweepInterval   time.Duration

	// OnSweep is called after every successful ticker sweep.
	OnSweep func(notifications.BatchResult)
}

// DefaultConfig returns sensible production defaults. The sweep is off;
// production relies on the external cron calling the API.
func DefaultConfig() Config {
	return Config{
		CleanupInterval: 6 * time.Hour,
		Retention:       30 * 24 * time.Hour,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, purger Purger, sweeper Sweeper, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"cleanup", cfg.CleanupInterval,
		"retention", cfg.Retention,
		"sweep", cfg.SweepInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if cfg.CleanupInterval > 0 && cfg.Retention > 0 {
		t := time.NewTicker(cfg.CleanupInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() {
			_, _ = Cleanup(ctx, purger, cfg.Retention, time.Now(), logger)
		})
	}

	if cfg.SweepInterval > 0 && sweeper != nil {
		t := time.NewTicker(cfg.SweepInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { sweep(ctx, sweeper, cfg.OnSweep, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

// Cleanup removes read notifications older than retention. Unread ones are
// kept regardless of age; they still count toward deduplication.
func Cleanup(ctx context.Context, purger Purger, retention time.Duration, now time.Time, logger *slog.Logger) (int64, error) {
	n, err := purger.PurgeRead(ctx, now.Add(-retention))
	if err != nil {
		logger.Warn("Cleanup: failed to purge read notifications", "error", err)
		return 0, err
	}
	if n > 0 {
		logger.Info("Cleanup: purged read notifications", "count", n)
	}
	return n, nil
}

func sweep(ctx context.Context, sweeper Sweeper, onSweep func(notifications.BatchResult), logger *slog.Logger) {
	res, err := sweeper.RunAll(ctx, time.Now())
	if err != nil {
		logger.Warn("Scheduled sweep failed", "error", err)
		return
	}
	if onSweep != nil {
		onSweep(res)
	}
}
