package notifications

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/nudge/internal/routine"
)

func ptr[T any](v T) *T { return &v }

func testProfile() Profile {
	return Profile{
		UserID:             "u1",
		DisplayName:        "Sam",
		WeightKg:           ptr(80.0),
		TargetCalories:     2400,
		DaysPerWeek:        5,
		WorkoutDurationMin: 60,
		WakeTime:           "07:00",
		SleepTime:          "23:00",
		MealsPerDay:        4,
	}
}

// clockAt builds a UTC clock on 2024-05-01 at HH:mm.
func clockAt(t *testing.T, hhmm string) Clock {
	t.Helper()
	m := routine.ParseTimeToMinutes(hhmm)
	ts := time.Date(2024, time.May, 1, m/60, m%60, 0, 0, time.UTC)
	return ClockAt(ts, time.UTC)
}

func TestClockAt_UsesLocalDate(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:30 UTC on May 2 is still May 1 in New York.
	c := ClockAt(time.Date(2024, time.May, 2, 2, 30, 0, 0, time.UTC), loc)
	assert.Equal(t, "2024-05-01", c.Date)
	assert.Equal(t, 22*60+30, c.Minute)
}

func TestHydrationLag_Example(t *testing.T) {
	s := Snapshot{Profile: testProfile(), Water: HydrationLog{ConsumedMl: 400}}

	drafts := HydrationLag(s, clockAt(t, "12:00"))
	require.Len(t, drafts, 1)
	assert.Equal(t, CategoryWater, drafts[0].Category)
	assert.Equal(t, "water_2024-05-01", drafts[0].Ref)
	assert.Contains(t, drafts[0].Message, "616 ml")
}

func TestHydrationLag_WithinSlack(t *testing.T) {
	// ideal 1016 at noon: 516 ml is exactly at the edge and does not fire.
	s := Snapshot{Profile: testProfile(), Water: HydrationLog{ConsumedMl: 516}}
	assert.Empty(t, HydrationLag(s, clockAt(t, "12:00")))

	s.Water.ConsumedMl = 515
	assert.Len(t, HydrationLag(s, clockAt(t, "12:00")), 1)
}

func TestHydrationLag_BeforeWake(t *testing.T) {
	s := Snapshot{Profile: testProfile()}
	assert.Empty(t, HydrationLag(s, clockAt(t, "06:00")))
}

func TestHydrationLag_UsesLoggedGoal(t *testing.T) {
	s := Snapshot{Profile: testProfile(), Water: HydrationLog{ConsumedMl: 400, DailyGoalMl: 1600}}
	// ideal = 1600 * 300/960 = 500, so 400 ml is only 100 behind.
	assert.Empty(t, HydrationLag(s, clockAt(t, "12:00")))
}

func TestHydrationLag_NoWeightUsesDefault(t *testing.T) {
	p := testProfile()
	p.WeightKg = nil
	s := Snapshot{Profile: p}
	// ideal = 2000 * 300/960 = 625
	drafts := HydrationLag(s, clockAt(t, "12:00"))
	require.Len(t, drafts, 1)
	assert.Contains(t, drafts[0].Message, "625 ml")
}

func TestMealUpcoming(t *testing.T) {
	s := Snapshot{Profile: testProfile()} // meals at 09:00 13:00 17:00 21:00

	assert.Empty(t, MealUpcoming(s, clockAt(t, "08:44")))
	assert.Empty(t, MealUpcoming(s, clockAt(t, "09:00")), "meal time itself is not upcoming")

	drafts := MealUpcoming(s, clockAt(t, "08:45"))
	require.Len(t, drafts, 1)
	assert.Equal(t, "meal_reminder_09:00_2024-05-01", drafts[0].Ref)
	assert.Equal(t, CategoryMeal, drafts[0].Category)

	require.Len(t, MealUpcoming(s, clockAt(t, "12:59")), 1)
}

func TestMealTriggers_NoRoutine(t *testing.T) {
	p := testProfile()
	p.WakeTime, p.SleepTime = "", ""
	s := Snapshot{Profile: p, CompletedMeals: map[string]bool{}}

	for _, hhmm := range []string{"00:00", "00:45", "01:30", "23:50"} {
		assert.Empty(t, MealUpcoming(s, clockAt(t, hhmm)), hhmm)
		assert.Empty(t, MealPending(s, clockAt(t, hhmm)), hhmm)
	}
}

func TestMealPending(t *testing.T) {
	s := Snapshot{Profile: testProfile(), CompletedMeals: map[string]bool{}}

	assert.Empty(t, MealPending(s, clockAt(t, "13:29")))

	drafts := MealPending(s, clockAt(t, "13:30"))
	require.Len(t, drafts, 1)
	assert.Equal(t, "meal_pending_13:00_2024-05-01", drafts[0].Ref)

	assert.Len(t, MealPending(s, clockAt(t, "14:59")), 1)
	assert.Empty(t, MealPending(s, clockAt(t, "15:00")))
}

func TestMealPending_CompletedMealSuppressed(t *testing.T) {
	s := Snapshot{Profile: testProfile(), CompletedMeals: map[string]bool{"13:00": true}}
	assert.Empty(t, MealPending(s, clockAt(t, "14:00")))
}

func TestMealTriggers_MutuallyExclusive(t *testing.T) {
	for _, meals := range []int{1, 3, 6} {
		p := testProfile()
		p.MealsPerDay = meals
		s := Snapshot{Profile: p, CompletedMeals: map[string]bool{}}

		for m := 0; m < routine.MinutesPerDay; m++ {
			c := clockAt(t, routine.FormatMinutes(m))
			upcoming := map[string]bool{}
			for _, d := range MealUpcoming(s, c) {
				upcoming[d.Ref[len("meal_reminder_"):len("meal_reminder_")+5]] = true
			}
			for _, d := range MealPending(s, c) {
				mt := d.Ref[len("meal_pending_") : len("meal_pending_")+5]
				require.False(t, upcoming[mt], "meal %s both upcoming and pending at %s", mt, routine.FormatMinutes(m))
			}
		}
	}
}

func TestWorkoutMissed(t *testing.T) {
	s := Snapshot{Profile: testProfile()}

	assert.Empty(t, WorkoutMissed(s, clockAt(t, "19:59")))

	drafts := WorkoutMissed(s, clockAt(t, "21:00"))
	require.Len(t, drafts, 1)
	assert.Equal(t, "workout_2024-05-01", drafts[0].Ref)
	assert.Equal(t, CategoryWorkout, drafts[0].Category)

	s.WorkoutLogged = true
	assert.Empty(t, WorkoutMissed(s, clockAt(t, "21:00")))
}

func TestDailySummary_Window(t *testing.T) {
	s := Snapshot{Profile: testProfile()} // sleep 23:00, centre 22:30

	assert.Empty(t, DailySummary(s, clockAt(t, "22:00")))
	assert.Len(t, DailySummary(s, clockAt(t, "22:01")), 1)
	assert.Len(t, DailySummary(s, clockAt(t, "22:30")), 1)
	assert.Len(t, DailySummary(s, clockAt(t, "22:59")), 1)
	assert.Empty(t, DailySummary(s, clockAt(t, "23:00")))
}

func TestDailySummary_WindowAcrossMidnight(t *testing.T) {
	p := testProfile()
	p.SleepTime = "00:10" // centre 23:40
	s := Snapshot{Profile: p}

	assert.Len(t, DailySummary(s, clockAt(t, "00:05")), 1)
	assert.Len(t, DailySummary(s, clockAt(t, "23:15")), 1)
	assert.Empty(t, DailySummary(s, clockAt(t, "00:10")))
}

func TestDailySummary_Tips(t *testing.T) {
	tests := []struct {
		name     string
		consumed int
		calories float64
		want     string
	}{
		{name: "low water", consumed: 2000, calories: 2400, want: "keep a bottle close"},
		{name: "low calories", consumed: 3000, calories: 1000, want: "hit your calorie target"},
		{name: "both high", consumed: 3250, calories: 2300, want: "nailed both goals"},
		{name: "in between", consumed: 2700, calories: 1800, want: "Solid day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Snapshot{
				Profile:          testProfile(),
				Water:            HydrationLog{ConsumedMl: tt.consumed},
				CaloriesConsumed: tt.calories,
			}
			drafts := DailySummary(s, clockAt(t, "22:30"))
			require.Len(t, drafts, 1)
			assert.Equal(t, "daily_summary_2024-05-01", drafts[0].Ref)
			assert.Contains(t, drafts[0].Message, tt.want)
		})
	}
}

func TestDailySummary_ZeroTargets(t *testing.T) {
	p := testProfile()
	p.TargetCalories = 0
	s := Snapshot{Profile: p, Water: HydrationLog{ConsumedMl: 3250}, CaloriesConsumed: 900}

	drafts := DailySummary(s, clockAt(t, "22:30"))
	require.Len(t, drafts, 1)
	assert.Contains(t, drafts[0].Message, "Calories: 0% of target")
}

func TestEvaluate_RunsAllTriggers(t *testing.T) {
	p := testProfile()
	p.SleepTime = "22:00" // summary centre 21:30
	s := Snapshot{Profile: p, CompletedMeals: map[string]bool{}}

	// 21:10 with meals at 08:53, 12:38, 16:23, 20:08 (07:00-22:00, 4 meals).
	drafts := Evaluate(s, clockAt(t, "21:10"))

	var refs []string
	for _, d := range drafts {
		refs = append(refs, d.Ref)
	}
	assert.ElementsMatch(t, []string{
		"water_2024-05-01",
		"meal_pending_20:08_2024-05-01",
		"workout_2024-05-01",
		"daily_summary_2024-05-01",
	}, refs)
}
