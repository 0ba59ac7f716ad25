package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// RunnerConfig bounds a batch sweep.
type RunnerConfig struct {
	Workers      int           // concurrent users
	UserTimeout  time.Duration // per-user deadline
	BatchTimeout time.Duration // whole-run deadline; zero means none
}

// DefaultRunnerConfig returns the production defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Workers:      4,
		UserTimeout:  5 * time.Second,
		BatchTimeout: 50 * time.Second,
	}
}

// Runner sweeps every profile through the Engine.
type Runner struct {
	engine *Engine
	store  Store
	cfg    RunnerConfig
	logger *slog.Logger
}

// NewRunner creates a batch runner over the engine's store.
func NewRunner(engine *Engine, cfg RunnerConfig, logger *slog.Logger) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Runner{engine: engine, store: engine.store, cfg: cfg, logger: logger}
}

// BatchResult aggregates one sweep.
type BatchResult struct {
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"durationNs"`
	Profiles  int           `json:"profiles"`
	Processed int           `json:"processed"`
	Sent      int           `json:"notificationsSent"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Errors    []string      `json:"-"` // per-user detail, logs only
}

// Summary is a one-line description for logs.
func (r BatchResult) Summary() string {
	return fmt.Sprintf("%d/%d users processed, %d sent, %d skipped, %d failed in %s",
		r.Processed, r.Profiles, r.Sent, r.Skipped, r.Failed, r.Duration.Round(time.Millisecond))
}

// RunAll evaluates every profile at now. Individual user failures are logged
// and counted; only failing to list profiles or a cancelled ctx aborts the
// sweep as a whole.
func (r *Runner) RunAll(ctx context.Context, now time.Time) (BatchResult, error) {
	start := time.Now()
	result := BatchResult{StartedAt: now.UTC()}

	if r.cfg.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.BatchTimeout)
		defer cancel()
	}

	profiles, err := r.store.ListProfiles(ctx)
	if err != nil {
		result.Duration = time.Since(start)
		return result, fmt.Errorf("list profiles: %w", err)
	}
	result.Profiles = len(profiles)

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)

	for _, p := range profiles {
		if ctx.Err() != nil {
			break
		}
		p := p
		g.Go(func() error {
			res, err := r.processOne(ctx, p, now)

			mu.Lock()
			defer mu.Unlock()
			result.Processed++
			result.Sent += res.Sent
			result.Skipped += res.Skipped
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, err.Error())
				r.logger.Warn("User evaluation failed",
					"user_id", p.UserID, "sent", res.Sent, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Duration = time.Since(start)
	r.logger.Info("Notification sweep complete", "summary", result.Summary())

	if err := ctx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return result, err
	}
	return result, nil
}

func (r *Runner) processOne(ctx context.Context, p Profile, now time.Time) (Result, error) {
	if r.cfg.UserTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.UserTimeout)
		defer cancel()
	}
	return r.engine.ProcessUser(ctx, p, now)
}
