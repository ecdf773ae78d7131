// Package narration coordinates a single audio-guide session over an
// external text-to-speech engine. At most one narration is in flight
// system-wide: opening another activity, pronouncing a phrase, or stopping
// all cancel whatever is currently speaking before anything new starts.
package narration

import (
	"log/slog"
	"sync"

	"github.com/fiorelli/daytrip/internal/apperr"
	"github.com/fiorelli/daytrip/internal/models"
)

// State of the audio-guide session.
type State string

const (
	StateClosed  State = "closed"
	StateStopped State = "stopped"
	StatePlaying State = "playing"
)

// Engine is the external speech collaborator. Speak returns immediately;
// the returned channel is closed when narration finishes naturally.
// Cancel aborts any in-flight narration. Engines must close the done
// channel on cancellation too, or the completion watcher leaks.
type Engine interface {
	Speak(text, lang string, rate float64) (<-chan struct{}, error)
	Cancel()
}

// Status is a read-only snapshot of the session.
type Status struct {
	State         State  `json:"state"`
	ActivityID    string `json:"activity_id,omitempty"`
	ActivityTitle string `json:"activity_title,omitempty"`
}

// Session is the Closed/Stopped/Playing state machine. A generation
// counter tags every speak request so that a stale completion signal
// racing with a user stop can never flip the state a second time: the
// last writer of the Playing transition wins.
type Session struct {
	engine Engine
	lang   string
	rate   float64

	mu       sync.Mutex
	state    State
	activity *models.Activity
	gen      uint64
}

// NewSession creates a closed session. A nil engine is the degraded
// "no speech available" mode: transitions still work, but nothing plays.
func NewSession(engine Engine, lang string, rate float64) *Session {
	return &Session{engine: engine, lang: lang, rate: rate, state: StateClosed}
}

// Status returns the current session snapshot.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{State: s.state}
	if s.activity != nil {
		st.ActivityID = s.activity.ID
		st.ActivityTitle = s.activity.Title
	}
	return st
}

// Open loads an activity's narration, cancelling anything in flight.
// Only activities that carry narration text can be opened.
func (s *Session) Open(act models.Activity) error {
	if act.AudioGuideText == "" {
		return apperr.ErrNoNarration
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	a := act
	s.activity = &a
	s.state = StateStopped
	return nil
}

// Play starts narrating the loaded activity. Valid only from Stopped.
func (s *Session) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateClosed:
		return apperr.ErrSessionClosed
	case StatePlaying:
		return nil // already narrating this activity
	}

	if s.engine == nil {
		slog.Warn("narration engine unavailable, staying stopped",
			slog.String("activity", s.activity.ID))
		return nil
	}

	s.gen++
	gen := s.gen
	done, err := s.engine.Speak(s.activity.AudioGuideText, s.lang, s.rate)
	if err != nil {
		slog.Warn("narration request failed",
			slog.String("activity", s.activity.ID),
			slog.String("error", err.Error()))
		return nil
	}

	s.state = StatePlaying
	go s.awaitCompletion(gen, done)
	return nil
}

// Stop halts narration and returns to Stopped. No-op outside Playing.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return
	}
	s.cancelLocked()
	s.state = StateStopped
}

// Close cancels any in-flight narration and returns to Closed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.activity = nil
	s.state = StateClosed
}

// Pronounce speaks a standalone word or phrase (the guide-panel
// pronunciation feature). It shares the single-narration invariant with
// the session: any in-flight activity narration is cancelled first, and
// the session drops back to Stopped.
func (s *Session) Pronounce(text, lang string, rate float64) error {
	if text == "" {
		return apperr.ErrNoNarration
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	if s.state == StatePlaying {
		s.state = StateStopped
	}

	if s.engine == nil {
		slog.Warn("narration engine unavailable, skipping pronunciation")
		return nil
	}
	if _, err := s.engine.Speak(text, lang, rate); err != nil {
		slog.Warn("pronunciation request failed", slog.String("error", err.Error()))
	}
	return nil
}

// cancelLocked invalidates any pending completion and cancels the engine.
// Callers must hold s.mu.
func (s *Session) cancelLocked() {
	s.gen++
	if s.engine != nil {
		s.engine.Cancel()
	}
}

// awaitCompletion transitions Playing back to Stopped when the engine
// signals natural completion, unless a newer request or a user stop has
// already won the transition.
func (s *Session) awaitCompletion(gen uint64, done <-chan struct{}) {
	<-done
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || s.state != StatePlaying {
		return // stale signal: a cancel or newer narration got there first
	}
	s.state = StateStopped
}
