// Package models defines the domain types for the day-trip itinerary engine.
package models

import "math"

// NoteCritical is the single recognized classification tag. It marks a
// time-sensitive activity (e.g. a fixed departure) for visual emphasis.
const NoteCritical = "CRITICAL"

// Status is the render classification of an activity.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCritical  Status = "critical"
	StatusNormal    Status = "normal"
)

// Coordinates is a lat/lng pair, used for activity anchors and for the
// live user-position sample.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

const earthRadiusKm = 6371.0

// DistanceMeters returns the great-circle distance to other in meters.
func (c Coordinates) DistanceMeters(other Coordinates) float64 {
	dLat := toRad(other.Lat - c.Lat)
	dLng := toRad(other.Lng - c.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(c.Lat))*math.Cos(toRad(other.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	h := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * h * 1000
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Activity is one scheduled, time-boxed item in the day's itinerary.
// Everything except Completed is authored once in the canonical itinerary
// file and never mutated at runtime.
type Activity struct {
	ID              string       `json:"id" yaml:"id"`
	StartTime       string       `json:"start_time" yaml:"start_time"` // HH:MM, 24-hour
	EndTime         string       `json:"end_time" yaml:"end_time"`     // HH:MM, 24-hour
	Title           string       `json:"title" yaml:"title"`
	Description     string       `json:"description" yaml:"description"`
	KeyDetails      string       `json:"key_details" yaml:"key_details"`
	LocationName    string       `json:"location_name" yaml:"location_name"`
	Coords          Coordinates  `json:"coords" yaml:"coords"`
	EndLocationName string       `json:"end_location_name,omitempty" yaml:"end_location_name"`
	EndCoords       *Coordinates `json:"end_coords,omitempty" yaml:"end_coords"`
	Notes           string       `json:"notes,omitempty" yaml:"notes"`
	ContingencyNote string       `json:"contingency_note,omitempty" yaml:"contingency_note"`
	BookingURL      string       `json:"booking_url,omitempty" yaml:"booking_url"`
	GoogleMapsURL   string       `json:"google_maps_url,omitempty" yaml:"google_maps_url"`
	AudioGuideText  string       `json:"audio_guide_text,omitempty" yaml:"audio_guide_text"`
	Completed       bool         `json:"completed" yaml:"completed"`
}

// Critical reports whether the activity carries the time-sensitive tag.
func (a Activity) Critical() bool {
	return a.Notes == NoteCritical
}

// Status classifies the activity for rendering. An explicit completed flag
// takes precedence over the critical tag, which takes precedence over normal.
func (a Activity) Status() Status {
	switch {
	case a.Completed:
		return StatusCompleted
	case a.Critical():
		return StatusCritical
	default:
		return StatusNormal
	}
}

// CompletionRecord is the persisted subset of an activity: the only field
// mutable after authoring, keyed by the stable activity id.
type CompletionRecord struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
}

// Phrase is one phrasebook entry in the guide panel. The engine only cares
// about Word, which can be narrated through the audio-guide session.
type Phrase struct {
	Word       string `json:"word" yaml:"word"`
	Simplified string `json:"simplified" yaml:"simplified"`
	Meaning    string `json:"meaning" yaml:"meaning"`
}
