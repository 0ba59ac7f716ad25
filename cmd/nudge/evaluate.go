package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/albapepper/nudge/internal/notifications"
	"github.com/albapepper/nudge/internal/routine"
)

// evalOptions describe a hypothetical user and day for a dry run.
type evalOptions struct {
	Name       string
	Weight     float64
	Calories   float64
	Days       int
	Duration   int
	Wake       string
	Sleep      string
	Meals      int
	ConsumedMl int
	GoalMl     int
	Eaten      []string
	Workout    bool
	KcalEaten  float64
	Date       string
	Now        string
}

// evalReport is the dry-run output.
type evalReport struct {
	Date            string                `json:"date"`
	Now             string                `json:"now"`
	HydrationGoalMl int                   `json:"hydrationGoalMl"`
	IdealSoFarMl    int                   `json:"idealSoFarMl"`
	MealTimes       []string              `json:"mealTimes"`
	Drafts          []notifications.Draft `json:"drafts"`
}

// evaluate runs every trigger against opts without touching a store.
func evaluate(opts evalOptions) (evalReport, error) {
	day, err := time.Parse(routine.DateFormat, opts.Date)
	if err != nil {
		return evalReport{}, fmt.Errorf("--date: %w", err)
	}
	if strings.TrimSpace(opts.Now) == "" {
		return evalReport{}, fmt.Errorf("--now is required")
	}
	minute := routine.ParseTimeToMinutes(opts.Now)
	now := day.Add(time.Duration(minute) * time.Minute)

	p := notifications.Profile{
		UserID:             "dry-run",
		DisplayName:        opts.Name,
		TargetCalories:     opts.Calories,
		DaysPerWeek:        opts.Days,
		WorkoutDurationMin: opts.Duration,
		WakeTime:           opts.Wake,
		SleepTime:          opts.Sleep,
		MealsPerDay:        opts.Meals,
	}
	if opts.Weight > 0 {
		w := opts.Weight
		p.WeightKg = &w
	}
	if p.MealsPerDay <= 0 {
		p.MealsPerDay = 3
	}

	snap := notifications.Snapshot{
		Profile:          p,
		Water:            notifications.HydrationLog{ConsumedMl: opts.ConsumedMl, DailyGoalMl: opts.GoalMl},
		CompletedMeals:   map[string]bool{},
		WorkoutLogged:    opts.Workout,
		CaloriesConsumed: opts.KcalEaten,
	}
	for _, m := range opts.Eaten {
		snap.CompletedMeals[routine.FormatMinutes(routine.ParseTimeToMinutes(m))] = true
	}

	clock := notifications.ClockAt(now, time.UTC)
	goal := p.HydrationGoalMl(snap.Water)
	drafts := notifications.Evaluate(snap, clock)
	if drafts == nil {
		drafts = []notifications.Draft{}
	}

	return evalReport{
		Date:            clock.Date,
		Now:             routine.FormatMinutes(clock.Minute),
		HydrationGoalMl: goal,
		IdealSoFarMl:    routine.IdealHydrationSoFarMl(goal, p.WakeMinute(), p.SleepMinute(), clock.Minute),
		MealTimes:       routine.DeriveMealTimes(p.WakeMinute(), p.SleepMinute(), p.MealsPerDay),
		Drafts:          drafts,
	}, nil
}

func evaluateCmd() *cobra.Command {
	opts := evalOptions{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Dry-run the triggers for a hypothetical profile (no store access)",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := evaluate(opts)
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Name, "name", "", "Display name")
	f.Float64Var(&opts.Weight, "weight", 0, "Weight in kg (0 = unknown)")
	f.Float64Var(&opts.Calories, "calories", 2000, "Daily calorie target")
	f.IntVar(&opts.Days, "days", 3, "Workout days per week")
	f.IntVar(&opts.Duration, "duration", 45, "Workout duration in minutes")
	f.StringVar(&opts.Wake, "wake", "07:00", "Wake time HH:MM")
	f.StringVar(&opts.Sleep, "sleep", "23:00", "Sleep time HH:MM")
	f.IntVar(&opts.Meals, "meals", 3, "Meals per day")
	f.IntVar(&opts.ConsumedMl, "water", 0, "Water consumed so far (ml)")
	f.IntVar(&opts.GoalMl, "water-goal", 0, "Goal stored on the day's log (0 = derive)")
	f.StringSliceVar(&opts.Eaten, "eaten", nil, "Meal times already completed, e.g. 09:00,13:00")
	f.BoolVar(&opts.Workout, "workout", false, "A workout is logged today")
	f.Float64Var(&opts.KcalEaten, "kcal", 0, "Calories logged today")
	f.StringVar(&opts.Date, "date", time.Now().UTC().Format(routine.DateFormat), "Local date YYYY-MM-DD")
	f.StringVar(&opts.Now, "now", "", "Local time HH:MM")
	return cmd
}
