// Package geo tracks the live user position and answers proximity queries
// against the itinerary's activity anchors.
package geo

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fiorelli/daytrip/internal/models"
)

// Source is a long-lived external position stream, e.g. a device bridge.
// The returned channel delivers samples until ctx is cancelled.
type Source interface {
	Watch(ctx context.Context) (<-chan models.Coordinates, error)
}

// Tracker keeps the single most recent position sample. Latest writer
// wins; no history is kept. Position being unavailable is a normal state,
// never an error.
type Tracker struct {
	mu  sync.RWMutex
	pos models.Coordinates
	ok  bool
}

// NewTracker creates a tracker with no known position.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Update overwrites the current position sample.
func (t *Tracker) Update(c models.Coordinates) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pos = c
	t.ok = true
}

// Clear forgets the current position, e.g. when the stream reports the
// device lost its fix.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pos = models.Coordinates{}
	t.ok = false
}

// Current returns the latest sample and whether one is known.
func (t *Tracker) Current() (models.Coordinates, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pos, t.ok
}

// Follow consumes the source stream until ctx is cancelled, overwriting
// the tracked position with each sample. A source failure degrades to
// "no location" with a warning; it is never fatal.
func (t *Tracker) Follow(ctx context.Context, src Source, logger *slog.Logger) {
	ch, err := src.Watch(ctx)
	if err != nil {
		logger.Warn("geolocation unavailable", slog.String("error", err.Error()))
		return
	}
	for {
		select {
		case <-ctx.Done():
			t.Clear()
			return
		case c, ok := <-ch:
			if !ok {
				t.Clear()
				logger.Info("geolocation stream ended")
				return
			}
			t.Update(c)
		}
	}
}

// Nearest returns the activity whose start anchor is closest to pos,
// along with the distance in meters. The bool is false for an empty list.
func Nearest(acts []models.Activity, pos models.Coordinates) (models.Activity, float64, bool) {
	if len(acts) == 0 {
		return models.Activity{}, 0, false
	}
	best := acts[0]
	bestDist := pos.DistanceMeters(best.Coords)
	for _, act := range acts[1:] {
		if d := pos.DistanceMeters(act.Coords); d < bestDist {
			best = act
			bestDist = d
		}
	}
	return best, bestDist, true
}

// ChanSource is a channel-backed Source fed by an in-process producer,
// e.g. the HTTP position endpoint bridging samples from the client device.
type ChanSource struct {
	ch chan models.Coordinates
}

// NewChanSource creates a source with a small buffer.
func NewChanSource() *ChanSource {
	return &ChanSource{ch: make(chan models.Coordinates, 8)}
}

// Watch returns the sample channel.
func (s *ChanSource) Watch(_ context.Context) (<-chan models.Coordinates, error) {
	return s.ch, nil
}

// Push delivers a sample without blocking: when the consumer lags, the
// oldest buffered sample is dropped, since only the latest matters.
func (s *ChanSource) Push(c models.Coordinates) {
	for {
		select {
		case s.ch <- c:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}
