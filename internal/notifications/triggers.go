package notifications

import (
	"fmt"
	"math"

	"github.com/albapepper/nudge/internal/routine"
)

// source identifies one of the per-day log reads a trigger depends on.
type source uint8

const (
	sourceWater source = 1 << iota
	sourceMeals
	sourceWorkout
	sourceDiet
)

var sourceNames = map[source]string{
	sourceWater:   "daily_water",
	sourceMeals:   "completed_meals",
	sourceWorkout: "workout_history",
	sourceDiet:    "diet_journal",
}

// Trigger is a pure decision: snapshot + clock in, zero or more drafts out.
type Trigger struct {
	Name  string
	needs source
	Eval  func(s Snapshot, c Clock) []Draft
}

// Triggers returns every trigger in evaluation order.
func Triggers() []Trigger {
	return []Trigger{
		{Name: "hydration_lag", needs: sourceWater, Eval: HydrationLag},
		{Name: "meal_upcoming", Eval: MealUpcoming},
		{Name: "meal_pending", needs: sourceMeals, Eval: MealPending},
		{Name: "workout_missed", needs: sourceWorkout, Eval: WorkoutMissed},
		{Name: "daily_summary", needs: sourceWater | sourceDiet, Eval: DailySummary},
	}
}

// Evaluate runs every trigger against a fully loaded snapshot.
func Evaluate(s Snapshot, c Clock) []Draft {
	var drafts []Draft
	for _, t := range Triggers() {
		drafts = append(drafts, t.Eval(s, c)...)
	}
	return drafts
}

// HydrationLag fires when the user is more than two glasses behind the even
// pace for their awake window.
func HydrationLag(s Snapshot, c Clock) []Draft {
	p := s.Profile
	goal := p.HydrationGoalMl(s.Water)
	ideal := routine.IdealHydrationSoFarMl(goal, p.WakeMinute(), p.SleepMinute(), c.Minute)
	if ideal <= 0 || s.Water.ConsumedMl >= ideal-hydrationSlackMl {
		return nil
	}

	deficit := ideal - s.Water.ConsumedMl
	return []Draft{{
		Category: CategoryWater,
		Ref:      "water_" + c.Date,
		Title:    "Time to hydrate",
		Message: fmt.Sprintf("%syou're %d ml behind your water pace. By now you should be around %d ml of %d ml.",
			greeting(p), deficit, ideal, goal),
	}}
}

// MealUpcoming fires for each derived meal time starting within the next
// 15 minutes.
func MealUpcoming(s Snapshot, c Clock) []Draft {
	var drafts []Draft
	for _, mt := range mealTimes(s.Profile) {
		lead := routine.ParseTimeToMinutes(mt) - c.Minute
		if lead <= 0 || lead > mealUpcomingLead {
			continue
		}
		drafts = append(drafts, Draft{
			Category: CategoryMeal,
			Ref:      fmt.Sprintf("meal_reminder_%s_%s", mt, c.Date),
			Title:    "Meal coming up",
			Message:  fmt.Sprintf("%syour %s meal is in %d minutes. Get it ready so you stay on plan.", greeting(s.Profile), mt, lead),
		})
	}
	return drafts
}

// MealPending fires for each derived meal time that passed 30 to 120
// minutes ago and has not been marked complete.
func MealPending(s Snapshot, c Clock) []Draft {
	var drafts []Draft
	for _, mt := range mealTimes(s.Profile) {
		late := c.Minute - routine.ParseTimeToMinutes(mt)
		if late < mealPendingMinDelay || late >= mealPendingMaxDelay {
			continue
		}
		if s.CompletedMeals[mt] {
			continue
		}
		drafts = append(drafts, Draft{
			Category: CategoryMeal,
			Ref:      fmt.Sprintf("meal_pending_%s_%s", mt, c.Date),
			Title:    "Meal not logged",
			Message:  fmt.Sprintf("%sdid you have your %s meal? Mark it as done to keep your diet log accurate.", greeting(s.Profile), mt),
		})
	}
	return drafts
}

// WorkoutMissed fires from 20:00 local time when no workout was logged today.
func WorkoutMissed(s Snapshot, c Clock) []Draft {
	if c.Now.Hour() < workoutCheckHour || s.WorkoutLogged {
		return nil
	}
	return []Draft{{
		Category: CategoryWorkout,
		Ref:      "workout_" + c.Date,
		Title:    "No workout logged today",
		Message:  fmt.Sprintf("%sthere is still time for a session today. Even a short one keeps the streak alive.", greeting(s.Profile)),
	}}
}

// DailySummary fires within 30 minutes either side of the point 30 minutes
// before the user's sleep time.
func DailySummary(s Snapshot, c Clock) []Draft {
	p := s.Profile
	target := routine.Wrap(p.SleepMinute() - summaryLeadMinutes)
	if routine.CircularDistance(c.Minute, target) >= summaryHalfWidthMins {
		return nil
	}

	waterPct := percent(float64(s.Water.ConsumedMl), float64(p.HydrationGoalMl(s.Water)))
	dietPct := percent(s.CaloriesConsumed, p.TargetCalories)

	return []Draft{{
		Category: CategorySummary,
		Ref:      "daily_summary_" + c.Date,
		Title:    "Your day in review",
		Message: fmt.Sprintf("Water: %d%% of goal. Calories: %d%% of target. %s",
			int(math.Round(waterPct)), int(math.Round(dietPct)), summaryTip(waterPct, dietPct)),
	}}
}

func summaryTip(waterPct, dietPct float64) string {
	switch {
	case waterPct < 80:
		return "Tomorrow, keep a bottle close and sip through the day."
	case dietPct < 70:
		return "Tomorrow, plan your meals ahead to hit your calorie target."
	case waterPct >= 90 && dietPct >= 90:
		return "Great work, you nailed both goals today!"
	default:
		return "Solid day. Rest well and keep it going tomorrow."
	}
}

func mealTimes(p Profile) []string {
	return routine.DeriveMealTimes(p.WakeMinute(), p.SleepMinute(), p.MealsPerDay)
}

func percent(value, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return value / total * 100
}

func greeting(p Profile) string {
	if p.DisplayName == "" {
		return "Heads up: "
	}
	return p.DisplayName + ", "
}
