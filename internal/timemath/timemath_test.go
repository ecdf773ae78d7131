package timemath

import (
	"testing"
	"time"
)

func at(hh, mm int) time.Time {
	return time.Date(2026, 4, 15, hh, mm, 0, 0, time.Local)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:45", 585, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9h30", 0, true},
		{"", 0, true},
		{"ab:cd", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0m"},
		{25, "25m"},
		{59, "59m"},
		{60, "1h 0m"},
		{90, "1h 30m"},
		{765, "12h 45m"},
	}
	for _, tt := range tests {
		if got := FormatMinutes(tt.in); got != tt.want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDuration(t *testing.T) {
	if got := Duration("09:00", "10:30"); got != "1h 30m" {
		t.Errorf("Duration = %q, want 1h 30m", got)
	}
	if got := Duration("12:00", "12:45"); got != "45m" {
		t.Errorf("Duration = %q, want 45m", got)
	}
	// Mis-ordered input is a caller error but must not blow up.
	if got := Duration("14:00", "13:00"); got != "0m" {
		t.Errorf("Duration mis-ordered = %q, want 0m", got)
	}
}

func TestGap(t *testing.T) {
	if got := Gap("12:00", "12:25"); got != 25 {
		t.Errorf("Gap = %d, want 25", got)
	}
	if got := Gap("12:00", "12:00"); got != 0 {
		t.Errorf("Gap adjacent = %d, want 0", got)
	}
	// Overlapping entries clamp to zero, never negative.
	if got := Gap("12:30", "12:00"); got != 0 {
		t.Errorf("Gap overlapping = %d, want 0", got)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before start", at(8, 0), 0},
		{"at start", at(9, 0), 0},
		{"midpoint", at(9, 45), 50},
		{"one third", at(9, 30), 33},
		{"at end", at(10, 30), 100},
		{"after end", at(11, 0), 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Progress("09:00", "10:30", tt.now); got != tt.want {
				t.Errorf("Progress at %s = %d, want %d", tt.now.Format("15:04"), got, tt.want)
			}
		})
	}
}

func TestProgress_MonotonicAndClamped(t *testing.T) {
	prev := -1
	for min := 0; min < 24*60; min++ {
		now := at(min/60, min%60)
		p := Progress("09:00", "10:30", now)
		if p < 0 || p > 100 {
			t.Fatalf("Progress at minute %d = %d, outside [0,100]", min, p)
		}
		if p < prev {
			t.Fatalf("Progress decreased at minute %d: %d -> %d", min, prev, p)
		}
		prev = p
	}
}

func TestProgress_DegenerateInterval(t *testing.T) {
	if got := Progress("10:00", "10:00", at(10, 0)); got != 0 {
		t.Errorf("zero-length interval = %d, want 0", got)
	}
	if got := Progress("bogus", "also bogus", at(12, 0)); got < 0 || got > 100 {
		t.Errorf("malformed input = %d, outside [0,100]", got)
	}
}
