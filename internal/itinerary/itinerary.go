// Package itinerary loads, validates, and holds the day's canonical
// activity list and reconciles it with persisted completion state.
package itinerary

import (
	"fmt"
	"os"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/fiorelli/daytrip/internal/models"
	"github.com/fiorelli/daytrip/internal/timemath"
)

var clockRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Document is the parsed canonical itinerary file: the authored activity
// list plus the guide phrasebook.
type Document struct {
	Activities []models.Activity `yaml:"activities"`
	Phrases    []models.Phrase   `yaml:"phrases"`
}

// Load reads the canonical itinerary from a YAML file and validates it.
// The canonical definition is authoritative; a file that violates the
// itinerary invariants is a configuration error and fails loudly.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("itinerary: read %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("itinerary: parse %s: %w", path, err)
	}
	if err := Validate(doc.Activities); err != nil {
		return nil, fmt.Errorf("itinerary: %s: %w", path, err)
	}
	return &doc, nil
}

// Validate checks the canonical itinerary invariants: required fields,
// HH:MM time shape, start < end per activity, unique ids, and
// non-decreasing chronological order across the list.
func Validate(acts []models.Activity) error {
	if len(acts) == 0 {
		return fmt.Errorf("itinerary is empty")
	}

	seen := make(map[string]struct{}, len(acts))
	prevStart := -1
	for i := range acts {
		a := acts[i]
		if err := validateActivity(&a); err != nil {
			return fmt.Errorf("activity %d (%s): %w", i, a.ID, err)
		}

		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("activity %d: duplicate id %q", i, a.ID)
		}
		seen[a.ID] = struct{}{}

		start, err := timemath.ParseClock(a.StartTime)
		if err != nil {
			return fmt.Errorf("activity %d (%s): %w", i, a.ID, err)
		}
		end, err := timemath.ParseClock(a.EndTime)
		if err != nil {
			return fmt.Errorf("activity %d (%s): %w", i, a.ID, err)
		}
		if start >= end {
			return fmt.Errorf("activity %d (%s): start %s is not before end %s", i, a.ID, a.StartTime, a.EndTime)
		}
		if start < prevStart {
			return fmt.Errorf("activity %d (%s): starts at %s, before the previous activity", i, a.ID, a.StartTime)
		}
		prevStart = start
	}
	return nil
}

func validateActivity(a *models.Activity) error {
	return validation.ValidateStruct(a,
		validation.Field(&a.ID, validation.Required),
		validation.Field(&a.StartTime, validation.Required, validation.Match(clockRe)),
		validation.Field(&a.EndTime, validation.Required, validation.Match(clockRe)),
		validation.Field(&a.Title, validation.Required),
		validation.Field(&a.LocationName, validation.Required),
		validation.Field(&a.Notes, validation.In("", models.NoteCritical)),
	)
}

// MergeWithPersisted copies persisted completion flags onto fresh copies of
// the canonical activities, matched by id. Canonical order and every
// non-completion field are preserved; persisted entries whose id is absent
// from the canonical list are silently dropped, so stale saved state from
// an earlier itinerary revision can only restore check-marks, never
// resurrect activities.
func MergeWithPersisted(canonical []models.Activity, persisted []models.CompletionRecord) []models.Activity {
	byID := make(map[string]bool, len(persisted))
	for _, rec := range persisted {
		byID[rec.ID] = rec.Completed
	}

	out := make([]models.Activity, len(canonical))
	for i, act := range canonical {
		if completed, ok := byID[act.ID]; ok {
			act.Completed = completed
		}
		out[i] = act
	}
	return out
}

// ToggleCompleted returns a new list identical to the input except the
// activity matching id has its completed flag flipped. An unknown id is a
// no-op copy, never an error.
func ToggleCompleted(list []models.Activity, id string) []models.Activity {
	out := make([]models.Activity, len(list))
	for i, act := range list {
		if act.ID == id {
			act.Completed = !act.Completed
		}
		out[i] = act
	}
	return out
}
