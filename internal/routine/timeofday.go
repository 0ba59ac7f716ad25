// Package routine holds the clock arithmetic and pace models behind the
// notification triggers. Everything here works on minute-of-day integers in
// [0, MinutesPerDay) and never reads the system clock.
package routine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the length of the 24h clock in minutes.
const MinutesPerDay = 24 * 60

// DateFormat is the layout used for log dates and reference keys (YYYY-MM-DD).
const DateFormat = "2006-01-02"

// ParseTimeToMinutes converts "HH:mm" into minutes since midnight.
// A space is accepted in place of the colon and trailing segments such as
// seconds are ignored. Missing or malformed input yields 0.
func ParseTimeToMinutes(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == ' ' })
	if len(parts) == 0 {
		return 0
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	m := 0
	if len(parts) > 1 {
		m, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0
		}
	}

	h = clamp(h, 0, 23)
	m = clamp(m, 0, 59)
	return (h*60 + m) % MinutesPerDay
}

// FormatMinutes renders a minute-of-day as HH:mm, wrapping values outside
// the 24h clock.
func FormatMinutes(mins int) string {
	mins = Wrap(mins)
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// Wrap folds any minute count onto the 24h clock.
func Wrap(mins int) int {
	mins %= MinutesPerDay
	if mins < 0 {
		mins += MinutesPerDay
	}
	return mins
}

// MinuteOfDay returns the wall-clock minute of t in t's own location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// AwakeWindowMinutes is the length of the awake period between wake and
// sleep. A sleep time earlier than the wake time means the user goes to bed
// after midnight. Equal times collapse to 0, meaning no usable pace.
func AwakeWindowMinutes(wake, sleep int) int {
	var window int
	if wake <= sleep {
		window = sleep - wake
	} else {
		window = MinutesPerDay - wake + sleep
	}
	if window <= 0 {
		return 0
	}
	return window
}

// MinutesSinceWake reports how much of the awake window has elapsed at now.
//
// Only a same-day window [wake, sleep] is counted minute by minute. Before
// wake it is 0, and anything else reports the whole window. On a schedule
// whose sleep time is after midnight that means any now at or after wake
// owes the full day's quota, while a post-midnight now is earlier than wake
// and reports 0.
func MinutesSinceWake(wake, sleep, now int) int {
	if now < wake {
		return 0
	}
	if wake <= sleep && now <= sleep {
		return now - wake
	}
	return AwakeWindowMinutes(wake, sleep)
}

// CircularDistance is the shortest distance between two minutes-of-day on
// the 24h clock.
func CircularDistance(a, b int) int {
	d := Wrap(a) - Wrap(b)
	if d < 0 {
		d = -d
	}
	return min(d, MinutesPerDay-d)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
