package routine

import (
	"math"
	"slices"
	"sort"
)

const (
	// DefaultHydrationGoalMl is used when the user's weight is unknown.
	DefaultHydrationGoalMl = 2000

	mlPerKg        = 35
	goalStepMl     = 250
	minMealsPerDay = 1
	maxMealsPerDay = 6
)

// HydrationGoalMl derives a daily water target from body weight and training
// load, rounded to the nearest 250 ml and never below 250 ml.
func HydrationGoalMl(weightKg float64, daysPerWeek, workoutDurationMin int) int {
	goal := weightKg * mlPerKg

	switch {
	case daysPerWeek >= 5 || (daysPerWeek >= 4 && workoutDurationMin >= 45):
		goal *= 1.2
	case daysPerWeek >= 3 || workoutDurationMin >= 30:
		goal *= 1.1
	}

	rounded := int(math.Round(goal/goalStepMl)) * goalStepMl
	if rounded < goalStepMl {
		return goalStepMl
	}
	return rounded
}

// IdealHydrationSoFarMl is the share of goalMl the user should have drunk by
// now if intake were spread evenly across the awake window.
func IdealHydrationSoFarMl(goalMl, wake, sleep, now int) int {
	window := AwakeWindowMinutes(wake, sleep)
	if window <= 0 || goalMl <= 0 {
		return 0
	}
	elapsed := MinutesSinceWake(wake, sleep, now)
	ideal := int(math.Round(float64(goalMl) * float64(elapsed) / float64(window)))
	return clamp(ideal, 0, goalMl)
}

// DeriveMealTimes spreads mealsPerDay meals evenly across the awake window,
// each centred in its slot, and returns them as HH:mm sorted by clock time.
// mealsPerDay is clamped to [1, 6]. An empty window yields no meals, and a
// window too short to separate the slots drops the repeated minutes.
func DeriveMealTimes(wake, sleep, mealsPerDay int) []string {
	window := AwakeWindowMinutes(wake, sleep)
	if window <= 0 {
		return nil
	}
	n := clamp(mealsPerDay, minMealsPerDay, maxMealsPerDay)
	interval := float64(window) / float64(n)

	mins := make([]int, n)
	for i := 0; i < n; i++ {
		offset := int(math.Round(interval * (float64(i) + 0.5)))
		mins[i] = Wrap(wake + offset)
	}
	sort.Ints(mins)
	mins = slices.Compact(mins)

	times := make([]string, len(mins))
	for i, m := range mins {
		times[i] = FormatMinutes(m)
	}
	return times
}
