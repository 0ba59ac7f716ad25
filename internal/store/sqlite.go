package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/albapepper/nudge/internal/notifications"
)

//go:embed migrations/*.sql
var sqliteMigrations embed.FS

// SQLite implements notifications.Store on an embedded database file.
type SQLite struct{ db *sql.DB }

// OpenSQLite opens (or creates) the database at path, applies PRAGMAs and
// runs the embedded migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single writer: every claim runs on the one connection, so the
	// conditional insert is atomic per key.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := runSQLiteMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return &SQLite{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// runSQLiteMigrations executes every file in name order, one transaction
// each. The files are idempotent.
func runSQLiteMigrations(ctx context.Context, db *sql.DB) error {
	entries, err := fs.ReadDir(sqliteMigrations, "migrations")
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		sqlBytes, err := fs.ReadFile(sqliteMigrations, "migrations/"+e.Name())
		if err != nil {
			return err
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// HealthCheck pings the database.
func (s *SQLite) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --------------------------------------------------------------------------
// Profiles
// --------------------------------------------------------------------------

func (s *SQLite) ListProfiles(ctx context.Context) ([]notifications.Profile, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM profiles WHERE id IS NOT NULL ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	raws, err := scanMaps(rows)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	profiles := make([]notifications.Profile, 0, len(raws))
	for _, raw := range raws {
		p := notifications.NormalizeProfile(raw)
		if p.UserID == "" {
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (s *SQLite) GetProfile(ctx context.Context, userID string) (notifications.Profile, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM profiles WHERE id = ?", userID)
	if err != nil {
		return notifications.Profile{}, fmt.Errorf("get profile %s: %w", userID, err)
	}
	defer rows.Close()

	raws, err := scanMaps(rows)
	if err != nil {
		return notifications.Profile{}, fmt.Errorf("get profile %s: %w", userID, err)
	}
	if len(raws) == 0 {
		return notifications.Profile{}, notifications.ErrProfileNotFound
	}
	return notifications.NormalizeProfile(raws[0]), nil
}

// scanMaps reads every row as column name → value.
func scanMaps(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// --------------------------------------------------------------------------
// Daily logs
// --------------------------------------------------------------------------

func (s *SQLite) HydrationLog(ctx context.Context, userID, date string) (notifications.HydrationLog, error) {
	var log notifications.HydrationLog
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(consumed_ml, 0), COALESCE(daily_goal_ml, 0)
		FROM daily_water
		WHERE user_id = ? AND log_date = ?`,
		userID, date,
	).Scan(&log.ConsumedMl, &log.DailyGoalMl)
	if errors.Is(err, sql.ErrNoRows) {
		return notifications.HydrationLog{}, nil
	}
	if err != nil {
		return notifications.HydrationLog{}, fmt.Errorf("daily water: %w", err)
	}
	return log, nil
}

func (s *SQLite) CompletedMeals(ctx context.Context, userID, date string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT meal_time FROM completed_meals WHERE user_id = ? AND log_date = ?",
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("completed meals: %w", err)
	}
	defer rows.Close()

	var meals []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("completed meals: %w", err)
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

func (s *SQLite) WorkoutLogged(ctx context.Context, userID, date string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM workout_history WHERE user_id = ? AND workout_date = ?)",
		userID, date,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("workout history: %w", err)
	}
	return n == 1, nil
}

func (s *SQLite) CaloriesConsumed(ctx context.Context, userID, date string) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		"SELECT CAST(COALESCE(SUM(calorias), 0) AS REAL) FROM diet_journal WHERE user_id = ? AND log_date = ?",
		userID, date,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("diet journal: %w", err)
	}
	return total, nil
}

// --------------------------------------------------------------------------
// Notifications
// --------------------------------------------------------------------------

func (s *SQLite) Claim(ctx context.Context, rec notifications.Record, since time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, message, category, ref, is_read, created_at)
		SELECT ?, ?, ?, ?, ?, ?, 0, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = ? AND category = ? AND ref = ? AND created_at >= ?
		)`,
		rec.ID, rec.UserID, rec.Title, rec.Message, string(rec.Category), rec.Ref, rec.CreatedAt.UTC().UnixMilli(),
		rec.UserID, string(rec.Category), rec.Ref, since.UTC().UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("claim notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// PurgeRead deletes read notifications created before the cutoff.
func (s *SQLite) PurgeRead(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE is_read = 1 AND created_at < ?",
		before.UTC().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("purge read notifications: %w", err)
	}
	return res.RowsAffected()
}

// Notifications returns a user's records, newest first.
func (s *SQLite) Notifications(ctx context.Context, userID string) ([]notifications.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, message, category, ref, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []notifications.Record
	for rows.Next() {
		var (
			rec      notifications.Record
			category string
			isRead   int
			created  int64
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Message, &category, &rec.Ref, &isRead, &created); err != nil {
			return nil, err
		}
		rec.Category = notifications.Category(category)
		rec.IsRead = isRead == 1
		rec.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}
