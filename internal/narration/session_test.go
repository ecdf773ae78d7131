package narration

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fiorelli/daytrip/internal/apperr"
	"github.com/fiorelli/daytrip/internal/models"
)

// fakeEngine records speak/cancel calls and lets tests complete narration
// naturally by closing the current done channel.
type fakeEngine struct {
	mu      sync.Mutex
	spoken  []string
	cancels int
	done    chan struct{}
}

func (f *fakeEngine) Speak(text, lang string, rate float64) (<-chan struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	f.done = make(chan struct{})
	return f.done, nil
}

func (f *fakeEngine) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
	if f.done != nil {
		close(f.done)
		f.done = nil
	}
}

func (f *fakeEngine) complete() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done != nil {
		close(f.done)
		f.done = nil
	}
}

func (f *fakeEngine) spokenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.spoken)
}

func withNarration() models.Activity {
	return models.Activity{ID: "duomo", Title: "Cathedral", AudioGuideText: "Begun in 1296..."}
}

func waitForState(t *testing.T, s *Session, want State) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		if s.Status().State == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("state = %s, want %s", s.Status().State, want)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestOpen_RequiresNarrationText(t *testing.T) {
	s := NewSession(&fakeEngine{}, "es-ES", 0.95)
	err := s.Open(models.Activity{ID: "plain"})
	if !errors.Is(err, apperr.ErrNoNarration) {
		t.Fatalf("err = %v, want ErrNoNarration", err)
	}
	if s.Status().State != StateClosed {
		t.Error("failed open must leave session closed")
	}
}

func TestOpenPlayStopClose(t *testing.T) {
	eng := &fakeEngine{}
	s := NewSession(eng, "es-ES", 0.95)

	if err := s.Open(withNarration()); err != nil {
		t.Fatal(err)
	}
	if st := s.Status(); st.State != StateStopped || st.ActivityID != "duomo" {
		t.Fatalf("after open: %+v", st)
	}

	if err := s.Play(); err != nil {
		t.Fatal(err)
	}
	if s.Status().State != StatePlaying {
		t.Fatal("play did not transition to playing")
	}

	s.Stop()
	if s.Status().State != StateStopped {
		t.Fatal("stop did not transition to stopped")
	}

	s.Close()
	if st := s.Status(); st.State != StateClosed || st.ActivityID != "" {
		t.Fatalf("after close: %+v", st)
	}
}

func TestPlay_FromClosedFails(t *testing.T) {
	s := NewSession(&fakeEngine{}, "es-ES", 0.95)
	if err := s.Play(); !errors.Is(err, apperr.ErrSessionClosed) {
		t.Fatalf("err = %v, want ErrSessionClosed", err)
	}
}

func TestNaturalCompletion(t *testing.T) {
	eng := &fakeEngine{}
	s := NewSession(eng, "es-ES", 0.95)
	_ = s.Open(withNarration())
	_ = s.Play()

	eng.complete()
	waitForState(t, s, StateStopped)
}

func TestStopBeatsLateCompletion(t *testing.T) {
	eng := &fakeEngine{}
	s := NewSession(eng, "es-ES", 0.95)
	_ = s.Open(withNarration())
	_ = s.Play()

	// User stop wins; the engine's own completion arrives afterwards and
	// must be ignored as stale.
	s.Stop()
	_ = s.Play()
	if s.Status().State != StatePlaying {
		t.Fatal("replay after stop failed")
	}

	// Give any stale completion watcher a moment to fire.
	time.Sleep(20 * time.Millisecond)
	if s.Status().State != StatePlaying {
		t.Error("stale completion signal flipped a fresh narration")
	}
}

func TestOpenCancelsInFlightNarration(t *testing.T) {
	eng := &fakeEngine{}
	s := NewSession(eng, "es-ES", 0.95)
	_ = s.Open(withNarration())
	_ = s.Play()

	other := models.Activity{ID: "uffizi", Title: "Gallery", AudioGuideText: "Founded in 1581..."}
	if err := s.Open(other); err != nil {
		t.Fatal(err)
	}
	if eng.cancels == 0 {
		t.Error("opening a new activity must cancel the in-flight narration")
	}
	if st := s.Status(); st.State != StateStopped || st.ActivityID != "uffizi" {
		t.Fatalf("after re-open: %+v", st)
	}
}

func TestPronounce_SharesMutualExclusion(t *testing.T) {
	eng := &fakeEngine{}
	s := NewSession(eng, "es-ES", 0.95)
	_ = s.Open(withNarration())
	_ = s.Play()

	if err := s.Pronounce("Grazie", "it-IT", 0.85); err != nil {
		t.Fatal(err)
	}
	if got := s.Status().State; got != StateStopped {
		t.Fatalf("state after pronounce = %s, want stopped", got)
	}
	if eng.spokenCount() != 2 {
		t.Errorf("spoken = %d, want 2", eng.spokenCount())
	}
}

func TestAbsentEngine_DegradesSilently(t *testing.T) {
	s := NewSession(nil, "es-ES", 0.95)
	if err := s.Open(withNarration()); err != nil {
		t.Fatal(err)
	}
	if err := s.Play(); err != nil {
		t.Fatalf("play with absent engine must not error: %v", err)
	}
	if s.Status().State != StateStopped {
		t.Error("absent engine must leave the session stopped")
	}
	if err := s.Pronounce("Grazie", "it-IT", 0.85); err != nil {
		t.Errorf("pronounce with absent engine must not error: %v", err)
	}
}
