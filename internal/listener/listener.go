// Package listener provides a Postgres LISTEN/NOTIFY consumer that runs the
// single-user check as soon as a user's profile or daily logs change. It
// holds a dedicated pgx connection (not from the pool) listening on the
// `user_activity` channel, which migration 002 wires to table triggers.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/nudge/internal/notifications"
)

const (
	channel          = "user_activity"
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// ActivityEvent is the JSON payload from pg_notify('user_activity', ...).
type ActivityEvent struct {
	UserID string `json:"user_id"`
	Source string `json:"source"` // table that changed
}

// Checker evaluates one user. *notifications.Engine satisfies it.
type Checker interface {
	CheckUser(ctx context.Context, userID string, now time.Time) (notifications.Result, error)
}

// Start opens a dedicated connection and listens on the user_activity
// channel. It reconnects automatically on connection loss. Blocks until ctx
// is cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, d *Dispatcher, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, d, logger)
		if ctx.Err() != nil {
			logger.Info("Activity listener stopped (context cancelled)")
			return
		}

		logger.Error("Activity listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, d *Dispatcher, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		return fmt.Errorf("LISTEN %s: %w", channel, err)
	}
	logger.Info("Activity listener connected", "channel", channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		event, err := ParseEvent(n.Payload)
		if err != nil {
			logger.Warn("Failed to parse activity event", "payload", n.Payload, "error", err)
			continue
		}

		// Process asynchronously to avoid blocking the listener
		go d.Handle(ctx, event)
	}
}

// ParseEvent accepts the JSON payload or a bare user id.
func ParseEvent(payload string) (ActivityEvent, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return ActivityEvent{}, fmt.Errorf("empty payload")
	}
	if !strings.HasPrefix(payload, "{") {
		return ActivityEvent{UserID: payload}, nil
	}
	var ev ActivityEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ActivityEvent{}, err
	}
	if ev.UserID == "" {
		return ActivityEvent{}, fmt.Errorf("payload has no user_id")
	}
	return ev, nil
}

// --------------------------------------------------------------------------
// Dispatcher
// --------------------------------------------------------------------------

// Dispatcher runs checks for activity events. Bursts for the same user
// collapse into the check already in flight.
type Dispatcher struct {
	checker Checker
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	inflight map[string]bool
}

// NewDispatcher creates a dispatcher with a per-check timeout.
func NewDispatcher(checker Checker, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		checker:  checker,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
		inflight: make(map[string]bool),
	}
}

// Handle checks ev.UserID unless a check for that user is already running.
// It reports whether a check ran.
func (d *Dispatcher) Handle(ctx context.Context, ev ActivityEvent) bool {
	d.mu.Lock()
	if d.inflight[ev.UserID] {
		d.mu.Unlock()
		return false
	}
	d.inflight[ev.UserID] = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.inflight, ev.UserID)
		d.mu.Unlock()
	}()

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	res, err := d.checker.CheckUser(ctx, ev.UserID, d.now())
	if err != nil {
		d.logger.Warn("Activity check failed",
			"user_id", ev.UserID, "source", ev.Source, "error", err)
		return true
	}
	if res.Sent > 0 {
		d.logger.Info("Activity check recorded notifications",
			"user_id", ev.UserID, "source", ev.Source, "sent", res.Sent)
	}
	return true
}
