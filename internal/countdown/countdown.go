// Package countdown tracks the remaining time to a fixed daily deadline,
// e.g. the last safe departure back to the ship.
package countdown

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fiorelli/daytrip/internal/timemath"
)

// State of the countdown machine.
type State string

const (
	StateCounting        State = "counting"
	StateDeadlineReached State = "deadline_reached"
)

// DefaultReachedDisplay is shown once the deadline has passed.
const DefaultReachedDisplay = "ALL ABOARD"

// Status is one sample of the countdown.
type Status struct {
	State       State  `json:"state"`
	Display     string `json:"display"`
	RemainingMS int64  `json:"remaining_ms"`
}

// Service computes the time left to a fixed HH:MM target within the
// current calendar day. Once the target passes, the service latches into
// DeadlineReached and stays there; it never reverts within the same day,
// even if the clock is adjusted backwards.
type Service struct {
	target         string
	reachedDisplay string
	now            func() time.Time

	mu      sync.Mutex
	reached bool
}

// New creates a countdown service for the given HH:MM target. An empty
// reachedDisplay uses the default sentinel; a nil clock uses the wall clock.
func New(target, reachedDisplay string, now func() time.Time) *Service {
	if reachedDisplay == "" {
		reachedDisplay = DefaultReachedDisplay
	}
	if now == nil {
		now = time.Now
	}
	return &Service{target: target, reachedDisplay: reachedDisplay, now: now}
}

// Snapshot samples the clock and returns the current countdown status,
// transitioning to DeadlineReached when the difference is no longer positive.
func (s *Service) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reached {
		return Status{State: StateDeadlineReached, Display: s.reachedDisplay}
	}

	now := s.now()
	mins, err := timemath.ParseClock(s.target)
	if err != nil {
		// Target shape is validated at config load; treat a broken target
		// as already reached rather than counting to a phantom time.
		s.reached = true
		return Status{State: StateDeadlineReached, Display: s.reachedDisplay}
	}

	target := time.Date(now.Year(), now.Month(), now.Day(), mins/60, mins%60, 0, 0, now.Location())
	diff := target.Sub(now)
	if diff <= 0 {
		s.reached = true
		return Status{State: StateDeadlineReached, Display: s.reachedDisplay}
	}

	return Status{
		State:       StateCounting,
		Display:     formatRemaining(diff),
		RemainingMS: diff.Milliseconds(),
	}
}

// Run samples the countdown on the given period and hands each status to
// publish until ctx is cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration, publish func(Status)) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			publish(s.Snapshot())
		}
	}
}

func formatRemaining(d time.Duration) string {
	total := int(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	sec := total % 60
	return fmt.Sprintf("%02dh %02dm %02ds", h, m, sec)
}
