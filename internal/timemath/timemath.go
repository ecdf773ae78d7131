// Package timemath provides pure time math over HH:MM wall-clock strings.
//
// All functions operate at minute resolution within a single calendar day.
// Inputs are expected to be validated at itinerary load time; malformed
// strings degrade to zero values rather than panicking, matching the
// permissive rendering policy of the timeline view.
package timemath

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseClock parses an "HH:MM" 24-hour string into minutes since midnight.
func ParseClock(s string) (int, error) {
	h, m, ok := splitClock(s)
	if !ok {
		return 0, fmt.Errorf("timemath: invalid clock value %q (want HH:MM)", s)
	}
	return h*60 + m, nil
}

func splitClock(s string) (h, m int, ok bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// minutes is the permissive form of ParseClock used by the derived-value
// helpers: malformed input counts as midnight.
func minutes(s string) int {
	n, err := ParseClock(s)
	if err != nil {
		return 0
	}
	return n
}

// MinuteOfDay returns minutes elapsed since local midnight for t.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// FormatMinutes renders a non-negative minute count as "Xh Ym", or "Ym"
// when under an hour.
func FormatMinutes(n int) string {
	if n < 60 {
		return fmt.Sprintf("%dm", n)
	}
	return fmt.Sprintf("%dh %dm", n/60, n%60)
}

// Duration returns the human-readable span between start and end.
// Inputs must satisfy start < end; anything else is a caller error and
// renders as "0m".
func Duration(start, end string) string {
	d := minutes(end) - minutes(start)
	if d < 0 {
		d = 0
	}
	return FormatMinutes(d)
}

// Gap returns the idle minutes between the end of one activity and the
// start of the next, clamped to zero. Overlapping or mis-ordered entries
// deliberately render as "no gap" instead of failing.
func Gap(prevEnd, nextStart string) int {
	d := minutes(nextStart) - minutes(prevEnd)
	if d < 0 {
		return 0
	}
	return d
}

// Progress returns the elapsed percentage of the [start, end) interval at
// now, clamped to [0, 100]: 0 before start, 100 at or after end, linear
// interpolation between.
func Progress(start, end string, now time.Time) int {
	s := minutes(start)
	e := minutes(end)
	n := MinuteOfDay(now)

	if e <= s || n <= s {
		return 0
	}
	if n >= e {
		return 100
	}
	p := (n - s) * 100 / (e - s)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
