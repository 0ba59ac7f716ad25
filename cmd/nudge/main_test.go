package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseOptions() evalOptions {
	return evalOptions{
		Name:     "Sam",
		Weight:   80,
		Calories: 2400,
		Days:     5,
		Duration: 60,
		Wake:     "07:00",
		Sleep:    "23:00",
		Meals:    4,
		Date:     "2024-05-01",
		Now:      "21:00",
	}
}

func refs(r evalReport) []string {
	out := make([]string, 0, len(r.Drafts))
	for _, d := range r.Drafts {
		out = append(out, d.Ref)
	}
	return out
}

func TestEvaluate_EveningWithNothingLogged(t *testing.T) {
	report, err := evaluate(baseOptions())
	require.NoError(t, err)

	assert.Equal(t, 3250, report.HydrationGoalMl)
	assert.Equal(t, []string{"09:00", "13:00", "17:00", "21:00"}, report.MealTimes)
	assert.Equal(t, []string{"water_2024-05-01", "workout_2024-05-01"}, refs(report))
}

func TestEvaluate_OnTrackDay(t *testing.T) {
	opts := baseOptions()
	opts.ConsumedMl = 3000
	opts.Workout = true

	report, err := evaluate(opts)
	require.NoError(t, err)
	assert.Empty(t, report.Drafts)
}

func TestEvaluate_PendingMealUnlessEaten(t *testing.T) {
	opts := baseOptions()
	opts.Now = "13:45"
	opts.ConsumedMl = 3000

	report, err := evaluate(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"meal_pending_13:00_2024-05-01"}, refs(report))

	opts.Eaten = []string{"13:00:00"}
	report, err = evaluate(opts)
	require.NoError(t, err)
	assert.Empty(t, report.Drafts)
}

func TestEvaluate_InvalidInput(t *testing.T) {
	opts := baseOptions()
	opts.Date = "May 1"
	_, err := evaluate(opts)
	assert.Error(t, err)

	opts = baseOptions()
	opts.Now = ""
	_, err = evaluate(opts)
	assert.Error(t, err)
}

func TestEvaluateCmd_PrintsJSON(t *testing.T) {
	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"evaluate", "--weight", "80", "--days", "5", "--duration", "60",
		"--meals", "4", "--date", "2024-05-01", "--now", "21:00", "--workout"})

	require.NoError(t, root.Execute())

	var report evalReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, []string{"water_2024-05-01"}, refs(report))
	assert.Equal(t, "21:00", report.Now)
}
