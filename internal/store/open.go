package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/albapepper/nudge/internal/config"
	"github.com/albapepper/nudge/internal/db"
	"github.com/albapepper/nudge/internal/notifications"
)

// Backend is a notifications.Store with the operational hooks the API and
// CLI need.
type Backend interface {
	notifications.Store
	HealthCheck(ctx context.Context) error
	PurgeRead(ctx context.Context, before time.Time) (int64, error)
	Close() error
}

// Open connects to the backend selected by cfg.StoreDriver. For Postgres,
// migrations run first when cfg.AutoMigrate is set.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		logger.Info("SQLite store opened", "path", cfg.SQLitePath)
		return s, nil

	case config.DriverPostgres:
		if cfg.AutoMigrate {
			n, err := db.Migrate(ctx, cfg.DatabaseURL, logger)
			if err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("Migrations complete", "applied", n)
		}
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
		return NewPostgres(pool), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// Close releases the pool.
func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
