package itinerary

import (
	"sync"

	"github.com/fiorelli/daytrip/internal/models"
)

// Store is the single owned container for the day's shared mutable state.
// Every mutation goes through an explicit entry point and produces a fresh
// slice, so consumers can rely on version identity for change detection.
type Store struct {
	mu      sync.RWMutex
	acts    []models.Activity
	phrases []models.Phrase
	version uint64
}

// NewStore creates a store seeded from a validated document.
func NewStore(doc *Document) *Store {
	return &Store{
		acts:    append([]models.Activity(nil), doc.Activities...),
		phrases: append([]models.Phrase(nil), doc.Phrases...),
		version: 1,
	}
}

// Activities returns a copy of the current activity list in canonical order.
func (s *Store) Activities() []models.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Activity(nil), s.acts...)
}

// Phrases returns a copy of the guide phrasebook.
func (s *Store) Phrases() []models.Phrase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Phrase(nil), s.phrases...)
}

// Get returns the activity with the given id.
func (s *Store) Get(id string) (models.Activity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, act := range s.acts {
		if act.ID == id {
			return act, true
		}
	}
	return models.Activity{}, false
}

// Version returns a counter that increases on every mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Toggle flips the completed flag of the activity matching id and returns
// the resulting activity. The bool reports whether the id was found; an
// unknown id leaves the store untouched.
func (s *Store) Toggle(id string) (models.Activity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, act := range s.acts {
		if act.ID == id {
			found = true
			break
		}
	}
	if !found {
		return models.Activity{}, false
	}

	s.acts = ToggleCompleted(s.acts, id)
	s.version++
	for _, act := range s.acts {
		if act.ID == id {
			return act, true
		}
	}
	return models.Activity{}, false
}

// Snapshot returns the persistable completion state in canonical order.
func (s *Store) Snapshot() []models.CompletionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CompletionRecord, len(s.acts))
	for i, act := range s.acts {
		out[i] = models.CompletionRecord{ID: act.ID, Completed: act.Completed}
	}
	return out
}

// Replace swaps in a new canonical document, e.g. after a hot reload.
// The caller is responsible for re-merging persisted completion state.
func (s *Store) Replace(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acts = append([]models.Activity(nil), doc.Activities...)
	s.phrases = append([]models.Phrase(nil), doc.Phrases...)
	s.version++
}
