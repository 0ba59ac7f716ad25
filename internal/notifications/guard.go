package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Guard makes emission idempotent per (user, category, ref) within the
// cooldown window. The reference keys are date scoped, so one record per
// key per day is the steady state.
type Guard struct {
	store    Store
	cooldown time.Duration
}

// NewGuard returns a guard with the standard 25h cooldown.
func NewGuard(store Store) *Guard {
	return &Guard{store: store, cooldown: CooldownWindow}
}

// ShouldEmit records d for userID and returns true, or returns false when an
// equal record already exists inside the cooldown window.
func (g *Guard) ShouldEmit(ctx context.Context, userID string, d Draft, now time.Time) (bool, error) {
	rec := Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     d.Title,
		Message:   d.Message,
		Category:  d.Category,
		Ref:       d.Ref,
		CreatedAt: now.UTC(),
	}
	inserted, err := g.store.Claim(ctx, rec, now.Add(-g.cooldown).UTC())
	if err != nil {
		return false, fmt.Errorf("claim %s/%s: %w", d.Category, d.Ref, err)
	}
	return inserted, nil
}
