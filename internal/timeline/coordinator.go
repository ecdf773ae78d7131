// Package timeline derives the render-ready view of the day: per-activity
// progress and status, inter-activity gaps with their own progress, and the
// aggregate trip summary.
package timeline

import (
	"context"
	"time"

	"github.com/fiorelli/daytrip/internal/itinerary"
	"github.com/fiorelli/daytrip/internal/models"
	"github.com/fiorelli/daytrip/internal/timemath"
)

// Gap kinds, split on the 30-minute mark: anything longer is free time
// rather than a plain transfer walk.
const (
	GapKindWalk   = "walk"
	GapKindStroll = "stroll"
)

// GapView describes the idle interval before an activity.
type GapView struct {
	Minutes  int    `json:"minutes"`
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	Progress int    `json:"progress"`
}

// ActivityView is one activity enriched with derived display values.
type ActivityView struct {
	models.Activity
	Status    models.Status `json:"status"`
	Duration  string        `json:"duration"`
	Progress  int           `json:"progress"`
	GapBefore *GapView      `json:"gap_before,omitempty"`
}

// View is the full derived timeline at a given time sample.
type View struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Activities  []ActivityView `json:"activities"`
}

// Summary aggregates the day at a glance: how long the window is, how much
// of it is scheduled versus idle, and how far the anchor chain walks.
type Summary struct {
	TotalWindow    string  `json:"total_window"`
	ActiveTime     string  `json:"active_time"`
	IdleTime       string  `json:"idle_time"`
	WalkingKm      float64 `json:"walking_km"`
	Stops          int     `json:"stops"`
	CriticalStops  int     `json:"critical_stops"`
	CompletedStops int     `json:"completed_stops"`
}

// BuildView derives the render model for acts at now. Pure: the same
// inputs always produce the same view.
func BuildView(acts []models.Activity, now time.Time) View {
	views := make([]ActivityView, len(acts))
	for i, act := range acts {
		av := ActivityView{
			Activity: act,
			Status:   act.Status(),
			Duration: timemath.Duration(act.StartTime, act.EndTime),
			Progress: timemath.Progress(act.StartTime, act.EndTime, now),
		}
		if i > 0 {
			prev := acts[i-1]
			if gap := timemath.Gap(prev.EndTime, act.StartTime); gap > 0 {
				kind := GapKindWalk
				if gap > 30 {
					kind = GapKindStroll
				}
				av.GapBefore = &GapView{
					Minutes:  gap,
					Label:    timemath.FormatMinutes(gap),
					Kind:     kind,
					Progress: timemath.Progress(prev.EndTime, act.StartTime, now),
				}
			}
		}
		views[i] = av
	}
	return View{GeneratedAt: now, Activities: views}
}

// BuildSummary aggregates the static shape of the day. It only depends on
// the itinerary, not on the clock.
func BuildSummary(acts []models.Activity) Summary {
	s := Summary{Stops: len(acts)}
	if len(acts) == 0 {
		s.TotalWindow = timemath.FormatMinutes(0)
		s.ActiveTime = timemath.FormatMinutes(0)
		s.IdleTime = timemath.FormatMinutes(0)
		return s
	}

	active := 0
	idle := 0
	var meters float64
	var prevAnchor *models.Coordinates

	for i, act := range acts {
		active += timemath.Gap(act.StartTime, act.EndTime)
		if i > 0 {
			idle += timemath.Gap(acts[i-1].EndTime, act.StartTime)
		}
		if act.Critical() {
			s.CriticalStops++
		}
		if act.Completed {
			s.CompletedStops++
		}

		// The walking chain passes through every anchor, including the
		// end anchor of two-place activities such as transfers.
		if prevAnchor != nil {
			meters += prevAnchor.DistanceMeters(act.Coords)
		}
		anchor := act.Coords
		if act.EndCoords != nil {
			meters += act.Coords.DistanceMeters(*act.EndCoords)
			anchor = *act.EndCoords
		}
		prevAnchor = &anchor
	}

	window := timemath.Gap(acts[0].StartTime, acts[len(acts)-1].EndTime)
	s.TotalWindow = timemath.FormatMinutes(window)
	s.ActiveTime = timemath.FormatMinutes(active)
	s.IdleTime = timemath.FormatMinutes(idle)
	s.WalkingKm = float64(int(meters/100)) / 10 // one decimal
	return s
}

// Coordinator ties the derived view to a periodic recompute tick. The view
// is also rebuilt lazily on every read, so the tick only drives push
// freshness for subscribed clients; nothing goes stale on the read path.
type Coordinator struct {
	store    *itinerary.Store
	interval time.Duration
	now      func() time.Time
}

// NewCoordinator creates a coordinator over the shared store. A nil clock
// uses the wall clock.
func NewCoordinator(store *itinerary.Store, interval time.Duration, now func() time.Time) *Coordinator {
	if interval <= 0 {
		interval = time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &Coordinator{store: store, interval: interval, now: now}
}

// View returns the current derived timeline.
func (c *Coordinator) View() View {
	return BuildView(c.store.Activities(), c.now())
}

// Summary returns the aggregate trip summary.
func (c *Coordinator) Summary() Summary {
	return BuildSummary(c.store.Activities())
}

// Run recomputes the view on the fixed period and hands it to publish
// until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context, publish func(View)) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			publish(c.View())
		}
	}
}
