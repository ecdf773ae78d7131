// Package testutil provides shared test helpers for setting up state
// databases and sample itineraries.
package testutil

import (
	"os"
	"testing"

	"github.com/fiorelli/daytrip/internal/itinerary"
	"github.com/fiorelli/daytrip/internal/models"
	"github.com/fiorelli/daytrip/internal/state"
)

// TestStateDB creates a temporary SQLite database that is automatically cleaned up.
func TestStateDB(t *testing.T) *state.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "daytrip-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := state.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SampleDocument returns a small validated three-stop day with one
// narrated critical stop and a phrasebook entry.
func SampleDocument(t *testing.T) *itinerary.Document {
	t.Helper()
	doc := &itinerary.Document{
		Activities: []models.Activity{
			{
				ID:           "train-out",
				StartTime:    "08:54",
				EndTime:      "10:18",
				Title:        "Regional train to the city",
				LocationName: "Central Station",
				Coords:       models.Coordinates{Lat: 43.659, Lng: 10.622},
				EndCoords:    &models.Coordinates{Lat: 43.776, Lng: 11.248},
				Notes:        models.NoteCritical,
			},
			{
				ID:             "cathedral",
				StartTime:      "10:45",
				EndTime:        "12:00",
				Title:          "Cathedral square",
				LocationName:   "Piazza del Duomo",
				Coords:         models.Coordinates{Lat: 43.773, Lng: 11.256},
				AudioGuideText: "The cathedral dome dominates the skyline.",
			},
			{
				ID:           "lunch",
				StartTime:    "12:30",
				EndTime:      "13:30",
				Title:        "Lunch near the market",
				LocationName: "Mercato Centrale",
				Coords:       models.Coordinates{Lat: 43.776, Lng: 11.253},
			},
		},
		Phrases: []models.Phrase{
			{Word: "Grazie", Simplified: "GRAH-tsyeh", Meaning: "Thank you"},
		},
	}
	if err := itinerary.Validate(doc.Activities); err != nil {
		t.Fatalf("sample document should validate: %v", err)
	}
	return doc
}
