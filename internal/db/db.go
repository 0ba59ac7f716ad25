// Package db provides a pgxpool-based connection pool with prepared statement
// registration, schema migrations and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/nudge/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// Statement names shared with the store layer.
const (
	StmtListProfiles   = "list_profiles"
	StmtGetProfile     = "get_profile"
	StmtDailyWater     = "daily_water"
	StmtCompletedMeals = "completed_meals"
	StmtWorkoutExists  = "workout_exists"
	StmtDietCalories   = "diet_calories"
	StmtClaimLock      = "claim_lock"
	StmtClaimInsert    = "claim_insert"
	StmtPurgeRead      = "purge_read_notifications"
)

// registerPreparedStatements registers all statements the engine uses.
// Profiles are read as whole-row JSON so either column naming scheme works.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Profiles
		StmtListProfiles: "SELECT to_jsonb(p) FROM profiles p WHERE p.id IS NOT NULL ORDER BY p.id",
		StmtGetProfile:   "SELECT to_jsonb(p) FROM profiles p WHERE p.id = $1::uuid",

		// Daily logs
		StmtDailyWater:     "SELECT COALESCE(consumed_ml, 0)::int, COALESCE(daily_goal_ml, 0)::int FROM daily_water WHERE user_id = $1::uuid AND log_date = $2::date",
		StmtCompletedMeals: "SELECT meal_time::text FROM completed_meals WHERE user_id = $1::uuid AND log_date = $2::date",
		StmtWorkoutExists:  "SELECT EXISTS (SELECT 1 FROM workout_history WHERE user_id = $1::uuid AND workout_date = $2::date)",
		StmtDietCalories:   "SELECT COALESCE(SUM(calorias), 0)::float8 FROM diet_journal WHERE user_id = $1::uuid AND log_date = $2::date",

		// Notifications: serialise claims per idempotency key, then insert
		// only when no equal record exists inside the cooldown window.
		StmtClaimLock: "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))",
		StmtClaimInsert: `INSERT INTO notifications (id, user_id, title, message, category, ref, is_read, created_at)
			SELECT $1::uuid, $2::uuid, $3, $4, $5, $6, false, $7
			WHERE NOT EXISTS (
				SELECT 1 FROM notifications
				WHERE user_id = $2::uuid AND category = $5 AND ref = $6 AND created_at >= $8
			)`,
		StmtPurgeRead: "DELETE FROM notifications WHERE is_read AND created_at < $1",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
