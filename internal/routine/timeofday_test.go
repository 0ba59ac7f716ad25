package routine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeToMinutes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{name: "plain", in: "07:30", want: 450},
		{name: "midnight", in: "00:00", want: 0},
		{name: "last minute", in: "23:59", want: 1439},
		{name: "space separator", in: "22 15", want: 1335},
		{name: "seconds ignored", in: "06:45:00", want: 405},
		{name: "surrounding whitespace", in: "  08:05 ", want: 485},
		{name: "hour only", in: "9", want: 540},
		{name: "hour clamped", in: "25:00", want: 1380},
		{name: "minute clamped", in: "10:75", want: 659},
		{name: "empty", in: "", want: 0},
		{name: "garbage", in: "noon", want: 0},
		{name: "bad minute", in: "10:xx", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTimeToMinutes(tt.in))
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "00:00", FormatMinutes(0))
	assert.Equal(t, "07:05", FormatMinutes(425))
	assert.Equal(t, "23:59", FormatMinutes(1439))
	assert.Equal(t, "00:10", FormatMinutes(1450))
	assert.Equal(t, "23:50", FormatMinutes(-10))
}

func TestMinuteOfDay(t *testing.T) {
	ts := time.Date(2024, time.May, 1, 13, 42, 59, 0, time.UTC)
	assert.Equal(t, 13*60+42, MinuteOfDay(ts))
}

func TestAwakeWindowMinutes_SameDay(t *testing.T) {
	for wake := 0; wake < MinutesPerDay; wake += 37 {
		for sleep := wake; sleep < MinutesPerDay; sleep += 53 {
			assert.Equal(t, sleep-wake, AwakeWindowMinutes(wake, sleep), "wake=%d sleep=%d", wake, sleep)
		}
	}
}

func TestAwakeWindowMinutes_Wraparound(t *testing.T) {
	for wake := 1; wake < MinutesPerDay; wake += 41 {
		for sleep := 0; sleep < wake; sleep += 29 {
			assert.Equal(t, MinutesPerDay-wake+sleep, AwakeWindowMinutes(wake, sleep), "wake=%d sleep=%d", wake, sleep)
		}
	}
}

func TestAwakeWindowMinutes_Degenerate(t *testing.T) {
	assert.Equal(t, 0, AwakeWindowMinutes(420, 420))
	assert.Equal(t, 0, AwakeWindowMinutes(0, 0))
}

func TestMinutesSinceWake(t *testing.T) {
	wake := ParseTimeToMinutes("07:00")
	sleep := ParseTimeToMinutes("23:00")

	assert.Equal(t, 0, MinutesSinceWake(wake, sleep, ParseTimeToMinutes("05:00")), "not yet awake")
	assert.Equal(t, 0, MinutesSinceWake(wake, sleep, wake))
	assert.Equal(t, 300, MinutesSinceWake(wake, sleep, ParseTimeToMinutes("12:00")))
	assert.Equal(t, 960, MinutesSinceWake(wake, sleep, sleep))
	assert.Equal(t, 960, MinutesSinceWake(wake, sleep, ParseTimeToMinutes("23:45")), "past sleep counts the whole window")
}

func TestMinutesSinceWake_WraparoundSchedule(t *testing.T) {
	wake := ParseTimeToMinutes("22:00")
	sleep := ParseTimeToMinutes("02:00")
	window := AwakeWindowMinutes(wake, sleep)
	require.Equal(t, 240, window)

	// Only a same-day window is counted minute by minute. Once sleep wraps
	// past midnight every now from wake onwards owes the whole window, and
	// post-midnight awake time is earlier than wake so it reads as
	// "not yet awake". Pinned until product decides otherwise.
	assert.Equal(t, window, MinutesSinceWake(wake, sleep, wake))
	assert.Equal(t, window, MinutesSinceWake(wake, sleep, ParseTimeToMinutes("23:00")))
	assert.Equal(t, window, MinutesSinceWake(wake, sleep, ParseTimeToMinutes("23:59")))
	assert.Equal(t, 0, MinutesSinceWake(wake, sleep, ParseTimeToMinutes("00:30")))
	assert.Equal(t, 0, MinutesSinceWake(wake, sleep, ParseTimeToMinutes("12:00")))

	assert.Equal(t, 2000, IdealHydrationSoFarMl(2000, wake, sleep, ParseTimeToMinutes("23:00")))
}

func TestCircularDistance(t *testing.T) {
	assert.Equal(t, 0, CircularDistance(600, 600))
	assert.Equal(t, 30, CircularDistance(600, 630))
	assert.Equal(t, 20, CircularDistance(1430, 10))
	assert.Equal(t, 20, CircularDistance(10, 1430))
	assert.Equal(t, 720, CircularDistance(0, 720))
}
