// Package store provides the notifications.Store implementations: Postgres
// for production and an embedded SQLite database for local runs and tests.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/nudge/internal/db"
	"github.com/albapepper/nudge/internal/notifications"
)

// Postgres SQLSTATE codes the store treats as data outcomes.
const (
	pgUniqueViolation = "23505"
	pgInvalidText     = "22P02" // malformed uuid in a lookup
)

// Postgres implements notifications.Store on the shared pool's prepared
// statements.
type Postgres struct {
	pool *db.Pool
}

// NewPostgres wraps an open pool.
func NewPostgres(pool *db.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// HealthCheck satisfies the API's health probe.
func (s *Postgres) HealthCheck(ctx context.Context) error {
	return s.pool.HealthCheck(ctx)
}

// --------------------------------------------------------------------------
// Profiles
// --------------------------------------------------------------------------

func (s *Postgres) ListProfiles(ctx context.Context) ([]notifications.Profile, error) {
	rows, err := s.pool.Query(ctx, db.StmtListProfiles)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []notifications.Profile
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		p, err := decodeProfile(raw)
		if err != nil {
			return nil, err
		}
		if p.UserID == "" {
			continue
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (s *Postgres) GetProfile(ctx context.Context, userID string) (notifications.Profile, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, db.StmtGetProfile, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == pgInvalidText {
		return notifications.Profile{}, notifications.ErrProfileNotFound
	}
	if err != nil {
		return notifications.Profile{}, fmt.Errorf("get profile %s: %w", userID, err)
	}
	return decodeProfile(raw)
}

// decodeProfile keeps numbers as json.Number so integer columns survive
// the round trip through to_jsonb unchanged.
func decodeProfile(raw []byte) (notifications.Profile, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var row map[string]any
	if err := dec.Decode(&row); err != nil {
		return notifications.Profile{}, fmt.Errorf("decode profile row: %w", err)
	}
	return notifications.NormalizeProfile(row), nil
}

// --------------------------------------------------------------------------
// Daily logs
// --------------------------------------------------------------------------

func (s *Postgres) HydrationLog(ctx context.Context, userID, date string) (notifications.HydrationLog, error) {
	var log notifications.HydrationLog
	err := s.pool.QueryRow(ctx, db.StmtDailyWater, userID, date).Scan(&log.ConsumedMl, &log.DailyGoalMl)
	if errors.Is(err, pgx.ErrNoRows) {
		return notifications.HydrationLog{}, nil
	}
	if err != nil {
		return notifications.HydrationLog{}, fmt.Errorf("daily water: %w", err)
	}
	return log, nil
}

func (s *Postgres) CompletedMeals(ctx context.Context, userID, date string) ([]string, error) {
	rows, err := s.pool.Query(ctx, db.StmtCompletedMeals, userID, date)
	if err != nil {
		return nil, fmt.Errorf("completed meals: %w", err)
	}
	meals, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("completed meals: %w", err)
	}
	return meals, nil
}

func (s *Postgres) WorkoutLogged(ctx context.Context, userID, date string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, db.StmtWorkoutExists, userID, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("workout history: %w", err)
	}
	return exists, nil
}

func (s *Postgres) CaloriesConsumed(ctx context.Context, userID, date string) (float64, error) {
	var total float64
	if err := s.pool.QueryRow(ctx, db.StmtDietCalories, userID, date).Scan(&total); err != nil {
		return 0, fmt.Errorf("diet journal: %w", err)
	}
	return total, nil
}

// --------------------------------------------------------------------------
// Notifications
// --------------------------------------------------------------------------

// Claim takes a transaction-scoped advisory lock on the idempotency key so
// concurrent claims for the same key serialise, then inserts only when no
// equal record exists since the cutoff.
func (s *Postgres) Claim(ctx context.Context, rec notifications.Record, since time.Time) (bool, error) {
	key := rec.UserID + "|" + string(rec.Category) + "|" + rec.Ref

	var inserted bool
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, db.StmtClaimLock, key); err != nil {
			return fmt.Errorf("lock: %w", err)
		}
		tag, err := tx.Exec(ctx, db.StmtClaimInsert,
			rec.ID, rec.UserID, rec.Title, rec.Message,
			string(rec.Category), rec.Ref, rec.CreatedAt, since,
		)
		if err != nil {
			return err
		}
		inserted = tag.RowsAffected() == 1
		return nil
	})
	if pgCode(err) == pgUniqueViolation {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("claim notification: %w", err)
	}
	return inserted, nil
}

// PurgeRead deletes read notifications created before the cutoff.
func (s *Postgres) PurgeRead(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, db.StmtPurgeRead, before)
	if err != nil {
		return 0, fmt.Errorf("purge read notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
