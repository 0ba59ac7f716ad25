// Package notifications decides which proactive reminders a user should get
// right now and records each one exactly once.
//
// Pipeline: load snapshot → evaluate triggers → claim through the dedup
// guard → count emissions. The same Engine serves the cron batch sweep and
// the on-demand single-user check.
package notifications

import (
	"time"

	"github.com/albapepper/nudge/internal/routine"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// CooldownWindow is how far back the guard looks for an equal record.
	CooldownWindow = 25 * time.Hour

	hydrationSlackMl     = 500 // two glasses
	mealUpcomingLead     = 15  // minutes before a meal
	mealPendingMinDelay  = 30  // minutes after a meal
	mealPendingMaxDelay  = 120 // exclusive
	workoutCheckHour     = 20
	summaryLeadMinutes   = 30 // summary is centred this long before sleep
	summaryHalfWidthMins = 30
)

// Category groups records for deduplication and client-side filtering.
type Category string

const (
	CategoryWater   Category = "water"
	CategoryMeal    Category = "meal"
	CategoryWorkout Category = "workout"
	CategorySummary Category = "summary"
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Profile is the canonical routine profile the triggers read. Store
// adapters build it with NormalizeProfile.
type Profile struct {
	UserID             string
	DisplayName        string
	WeightKg           *float64
	TargetCalories     float64
	DaysPerWeek        int
	WorkoutDurationMin int
	WakeTime           string
	SleepTime          string
	MealsPerDay        int
	Timezone           string
}

// HydrationLog is one day's water row.
type HydrationLog struct {
	ConsumedMl  int
	DailyGoalMl int
}

// Snapshot is everything the triggers see for one user on one day.
type Snapshot struct {
	Profile          Profile
	Water            HydrationLog
	CompletedMeals   map[string]bool
	WorkoutLogged    bool
	CaloriesConsumed float64
}

// Clock is the injected notion of "now" in the user's local zone.
type Clock struct {
	Now    time.Time
	Date   string // YYYY-MM-DD
	Minute int    // minute of day
}

// ClockAt builds a Clock for t as seen in loc.
func ClockAt(t time.Time, loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return Clock{
		Now:    local,
		Date:   local.Format(routine.DateFormat),
		Minute: routine.MinuteOfDay(local),
	}
}

// Draft is a notification a trigger wants to send.
type Draft struct {
	Category Category `json:"category"`
	Ref      string   `json:"ref"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
}

// Record is a persisted notification row.
type Record struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Category  Category
	Ref       string
	CreatedAt time.Time
	IsRead    bool
}
