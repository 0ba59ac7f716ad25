package notifications

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/albapepper/nudge/internal/routine"
)

// Column aliases per canonical field. Both naming schemes have been written
// to the profiles table over time; the first non-empty value wins.
var profileColumns = map[string][]string{
	"id":       {"id", "user_id", "userId"},
	"name":     {"display_name", "displayName", "full_name", "fullName", "name"},
	"weight":   {"weight", "weight_kg", "weightKg"},
	"calories": {"calories", "target_calories", "targetCalories", "daily_calories", "dailyCalories"},
	"days":     {"days_per_week", "daysPerWeek"},
	"duration": {"workout_duration", "workoutDuration", "workout_duration_minutes", "workoutDurationMinutes"},
	"wake":     {"wake_time", "wakeTime"},
	"sleep":    {"sleep_time", "sleepTime"},
	"meals":    {"meals_per_day", "mealsPerDay"},
	"timezone": {"timezone", "time_zone", "timeZone", "tz"},
}

const defaultMealsPerDay = 3

// NormalizeProfile maps a raw profiles row (column name → value) onto the
// canonical Profile. Missing or malformed values fall back to defaults
// instead of failing.
func NormalizeProfile(raw map[string]any) Profile {
	p := Profile{
		UserID:             lookupString(raw, "id"),
		DisplayName:        lookupString(raw, "name"),
		DaysPerWeek:        lookupInt(raw, "days"),
		WorkoutDurationMin: lookupInt(raw, "duration"),
		WakeTime:           lookupString(raw, "wake"),
		SleepTime:          lookupString(raw, "sleep"),
		MealsPerDay:        lookupInt(raw, "meals"),
		Timezone:           lookupString(raw, "timezone"),
	}
	if w, ok := lookupNumber(raw, "weight"); ok {
		p.WeightKg = &w
	}
	if c, ok := lookupNumber(raw, "calories"); ok {
		p.TargetCalories = c
	}
	if p.MealsPerDay <= 0 {
		p.MealsPerDay = defaultMealsPerDay
	}
	return p
}

// WakeMinute is the wake time as minute-of-day (0 when malformed).
func (p Profile) WakeMinute() int { return routine.ParseTimeToMinutes(p.WakeTime) }

// SleepMinute is the sleep time as minute-of-day (0 when malformed).
func (p Profile) SleepMinute() int { return routine.ParseTimeToMinutes(p.SleepTime) }

// HydrationGoalMl prefers the goal stored on the day's log and otherwise
// derives one from the profile.
func (p Profile) HydrationGoalMl(log HydrationLog) int {
	if log.DailyGoalMl > 0 {
		return log.DailyGoalMl
	}
	if p.WeightKg == nil {
		return routine.DefaultHydrationGoalMl
	}
	return routine.HydrationGoalMl(*p.WeightKg, p.DaysPerWeek, p.WorkoutDurationMin)
}

// Location resolves the profile's timezone, falling back to def and then UTC.
func (p Profile) Location(def *time.Location) *time.Location {
	if p.Timezone != "" {
		if loc, err := time.LoadLocation(p.Timezone); err == nil {
			return loc
		}
	}
	if def != nil {
		return def
	}
	return time.UTC
}

// --------------------------------------------------------------------------
// Raw value coercion
// --------------------------------------------------------------------------

func lookup(raw map[string]any, field string) (any, bool) {
	for _, col := range profileColumns[field] {
		v, ok := raw[col]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func lookupString(raw map[string]any, field string) string {
	v, ok := lookup(raw, field)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	case [16]byte: // uuid columns scanned by pgx
		return fmt.Sprintf("%x-%x-%x-%x-%x", t[0:4], t[4:6], t[6:8], t[8:10], t[10:16])
	case time.Time: // time-of-day columns some drivers surface as timestamps
		return t.Format("15:04")
	default:
		return fmt.Sprint(t)
	}
}

func lookupNumber(raw map[string]any, field string) (float64, bool) {
	v, ok := lookup(raw, field)
	if !ok {
		return 0, false
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = n
	case []byte:
		n, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func lookupInt(raw map[string]any, field string) int {
	f, ok := lookupNumber(raw, field)
	if !ok {
		return 0
	}
	return int(math.Round(f))
}
