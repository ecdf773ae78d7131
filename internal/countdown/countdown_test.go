package countdown

import (
	"context"
	"testing"
	"time"
)

func clockAt(hh, mm, ss int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 4, 15, hh, mm, ss, 0, time.Local)
	}
}

func TestSnapshot_Counting(t *testing.T) {
	s := New("16:48", "", clockAt(14, 18, 30))
	st := s.Snapshot()

	if st.State != StateCounting {
		t.Fatalf("state = %s, want counting", st.State)
	}
	if st.Display != "02h 29m 30s" {
		t.Errorf("display = %q, want 02h 29m 30s", st.Display)
	}
	if want := int64((2*3600 + 29*60 + 30) * 1000); st.RemainingMS != want {
		t.Errorf("remaining = %d, want %d", st.RemainingMS, want)
	}
}

func TestSnapshot_ReachedJustAfterTarget(t *testing.T) {
	s := New("16:48", "", clockAt(16, 48, 1))
	st := s.Snapshot()

	if st.State != StateDeadlineReached {
		t.Fatalf("state = %s, want deadline_reached", st.State)
	}
	if st.Display != DefaultReachedDisplay {
		t.Errorf("display = %q, want sentinel", st.Display)
	}
	if st.RemainingMS != 0 {
		t.Errorf("remaining = %d, want 0", st.RemainingMS)
	}
}

func TestSnapshot_ReachedExactlyAtTarget(t *testing.T) {
	s := New("16:48", "", clockAt(16, 48, 0))
	if st := s.Snapshot(); st.State != StateDeadlineReached {
		t.Errorf("state at exact target = %s, want deadline_reached", st.State)
	}
}

func TestTransition_OneWay(t *testing.T) {
	current := clockAt(16, 47, 59)
	now := func() time.Time { return current() }
	s := New("16:48", "", now)

	if st := s.Snapshot(); st.State != StateCounting {
		t.Fatalf("pre-deadline state = %s", st.State)
	}

	current = clockAt(16, 48, 1)
	if st := s.Snapshot(); st.State != StateDeadlineReached {
		t.Fatalf("post-deadline state = %s", st.State)
	}

	// Clock moving backwards must not resurrect the countdown.
	current = clockAt(12, 0, 0)
	if st := s.Snapshot(); st.State != StateDeadlineReached {
		t.Errorf("state reverted to %s after clock skew", st.State)
	}
}

func TestSnapshot_CustomSentinel(t *testing.T) {
	s := New("10:00", "GATE CLOSED", clockAt(11, 0, 0))
	if st := s.Snapshot(); st.Display != "GATE CLOSED" {
		t.Errorf("display = %q", st.Display)
	}
}

func TestRun_Publishes(t *testing.T) {
	s := New("16:48", "", clockAt(10, 0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	statuses := make(chan Status, 1)
	go s.Run(ctx, 5*time.Millisecond, func(st Status) {
		select {
		case statuses <- st:
		default:
		}
	})

	select {
	case st := <-statuses:
		if st.State != StateCounting {
			t.Errorf("published state = %s", st.State)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for countdown tick")
	}
}
