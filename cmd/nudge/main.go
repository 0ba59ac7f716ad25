// Command nudge is the operator CLI for the notification engine.
//
// Usage:
//
//	nudge run
//	nudge run --at 2024-05-01T21:00:00Z
//	nudge check --user 7b0c2c1e-4f0e-4d8a-9a59-6c1f3c1f0a11
//	nudge evaluate --wake 07:00 --sleep 23:00 --weight 80 --now 21:00
//	nudge migrate
//	nudge cleanup --retention-days 14
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/nudge/internal/config"
	"github.com/albapepper/nudge/internal/db"
	"github.com/albapepper/nudge/internal/maintenance"
	"github.com/albapepper/nudge/internal/notifications"
	"github.com/albapepper/nudge/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "nudge",
		Short:        "Nudge notification engine CLI",
		SilenceUsage: true,
	}

	root.AddCommand(runCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(evaluateCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(cleanupCmd())
	return root
}

// --------------------------------------------------------------------------
// run / check
// --------------------------------------------------------------------------

func runCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sweep every profile once (same as POST /notifications/run)",
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseAt(at)
			if err != nil {
				return err
			}
			return withStore(func(ctx context.Context, cfg *config.Config, backend store.Backend) error {
				engine := notifications.NewEngine(backend, cfg.Location(), logger)
				runner := notifications.NewRunner(engine, notifications.RunnerConfig{
					Workers:      cfg.BatchWorkers,
					UserTimeout:  cfg.UserTimeout,
					BatchTimeout: cfg.BatchTimeout,
				}, logger)

				res, err := runner.RunAll(ctx, now)
				if err != nil {
					return err
				}
				for _, e := range res.Errors {
					logger.Error("user error", "error", e)
				}
				return printJSON(cmd, res)
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Evaluate at this RFC3339 instant instead of now")
	return cmd
}

func checkCmd() *cobra.Command {
	var userID, at string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a single user (same as POST /notifications/check)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			now, err := parseAt(at)
			if err != nil {
				return err
			}
			return withStore(func(ctx context.Context, cfg *config.Config, backend store.Backend) error {
				engine := notifications.NewEngine(backend, cfg.Location(), logger)
				res, err := engine.CheckUser(ctx, userID, now)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]any{
					"userId":            res.UserID,
					"drafts":            res.Drafts,
					"notificationsSent": res.Sent,
					"skipped":           res.Skipped,
				})
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id")
	cmd.Flags().StringVar(&at, "at", "", "Evaluate at this RFC3339 instant instead of now")
	return cmd
}

// --------------------------------------------------------------------------
// migrate / cleanup
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if cfg.StoreDriver == config.DriverSQLite {
				s, err := store.OpenSQLite(ctx, cfg.SQLitePath)
				if err != nil {
					return err
				}
				logger.Info("SQLite schema up to date", "path", cfg.SQLitePath)
				return s.Close()
			}

			n, err := db.Migrate(ctx, cfg.DatabaseURL, logger)
			if err != nil {
				return err
			}
			logger.Info("Migrations complete", "applied", n)
			return nil
		},
	}
}

func cleanupCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Purge read notifications older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, cfg *config.Config, backend store.Backend) error {
				if !cmd.Flags().Changed("retention-days") {
					days = cfg.RetentionDays
				}
				if days <= 0 {
					return fmt.Errorf("retention must be positive, got %d days", days)
				}
				n, err := maintenance.Cleanup(ctx, backend, time.Duration(days)*24*time.Hour, time.Now(), logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "purged %d read notifications older than %d days\n", n, days)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "retention-days", 30, "Retention window in days (default from NOTIFICATION_RETENTION_DAYS)")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// withStore handles config loading, store connection, and context cancellation.
func withStore(fn func(ctx context.Context, cfg *config.Config, backend store.Backend) error) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = cfg.NewLogger(os.Stderr)

	backend, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	return fn(ctx, cfg, backend)
}

func parseAt(at string) (time.Time, error) {
	if at == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at: %w", err)
	}
	return t, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
