package notifications

import (
	"context"
	"time"
)

// Store is the persistence boundary of the engine. Implementations only read
// profiles and logs; the sole write is Claim.
type Store interface {
	// ListProfiles returns every profile with a non-null id.
	ListProfiles(ctx context.Context) ([]Profile, error)
	// GetProfile returns ErrProfileNotFound when the user has no profile row.
	GetProfile(ctx context.Context, userID string) (Profile, error)

	// HydrationLog returns a zero log when the user has no row for date.
	HydrationLog(ctx context.Context, userID, date string) (HydrationLog, error)
	CompletedMeals(ctx context.Context, userID, date string) ([]string, error)
	WorkoutLogged(ctx context.Context, userID, date string) (bool, error)
	CaloriesConsumed(ctx context.Context, userID, date string) (float64, error)

	// Claim inserts rec unless a record with the same user, category and ref
	// was created at or after since. It reports whether rec was inserted and
	// must be atomic against concurrent claims for the same key.
	Claim(ctx context.Context, rec Record, since time.Time) (bool, error)
}
