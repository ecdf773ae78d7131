package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fiorelli/daytrip/internal/apperr"
	"github.com/fiorelli/daytrip/internal/countdown"
	"github.com/fiorelli/daytrip/internal/geo"
	"github.com/fiorelli/daytrip/internal/itinerary"
	"github.com/fiorelli/daytrip/internal/models"
	"github.com/fiorelli/daytrip/internal/narration"
	"github.com/fiorelli/daytrip/internal/sse"
	"github.com/fiorelli/daytrip/internal/state"
	"github.com/fiorelli/daytrip/internal/timeline"
)

// Deps bundles the collaborators the HTTP handlers need.
type Deps struct {
	Logger    *slog.Logger
	Store     *itinerary.Store
	State     *state.DB
	Timeline  *timeline.Coordinator
	Countdown *countdown.Service
	Session   *narration.Session
	Tracker   *geo.Tracker
	Positions *geo.ChanSource
	Events    *sse.Broker

	PhraseLanguage string
	PhraseRate     float64
}

// Handler serves the day-trip REST API.
type Handler struct {
	deps Deps
}

// NewHandler creates a handler over the given collaborators.
func NewHandler(deps Deps) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Handler{deps: deps}
}

// GetTimeline handles GET /itinerary: the derived timeline view.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Timeline.View())
}

// GetSummary handles GET /summary: the aggregate trip summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Timeline.Summary())
}

// GetActivity handles GET /activities/{id}.
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	act, ok := h.deps.Store.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("activity not found"))
		return
	}
	writeJSON(w, http.StatusOK, act)
}

// ToggleActivity handles POST /activities/{id}/toggle: flips the completed
// flag, persists the snapshot, and notifies SSE subscribers. A persistence
// failure is logged but never rolls back the in-memory toggle.
func (h *Handler) ToggleActivity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	act, ok := h.deps.Store.Toggle(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("activity not found"))
		return
	}

	if h.deps.State != nil {
		if err := h.deps.State.SaveCompletion(h.deps.Store.Snapshot()); err != nil {
			h.deps.Logger.Error("failed to persist completion state",
				slog.String("activity", id),
				slog.String("error", err.Error()))
		}
	}

	if h.deps.Events != nil {
		kind := "reopened"
		if act.Completed {
			kind = "completed"
		}
		h.deps.Events.PublishActivityEvent(kind, id)
	}

	writeJSON(w, http.StatusOK, act)
}

// GetCountdown handles GET /countdown.
func (h *Handler) GetCountdown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Countdown.Snapshot())
}

// GetPosition handles GET /position. 204 when no fix is known.
func (h *Handler) GetPosition(w http.ResponseWriter, r *http.Request) {
	pos, ok := h.deps.Tracker.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

// PutPosition handles PUT /position: the client device reports a sample,
// which is bridged into the position stream.
func (h *Handler) PutPosition(w http.ResponseWriter, r *http.Request) {
	var c models.Coordinates
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		writeJSON(w, http.StatusBadRequest, errorBody("coordinates out of range"))
		return
	}
	h.deps.Positions.Push(c)
	w.WriteHeader(http.StatusAccepted)
}

// DeletePosition handles DELETE /position: the device lost its fix.
func (h *Handler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	h.deps.Tracker.Clear()
	w.WriteHeader(http.StatusNoContent)
}

type nearestResponse struct {
	Activity       models.Activity `json:"activity"`
	DistanceMeters float64         `json:"distance_meters"`
}

// GetNearest handles GET /nearest: the activity closest to the current
// position. 204 when no position is known.
func (h *Handler) GetNearest(w http.ResponseWriter, r *http.Request) {
	pos, ok := h.deps.Tracker.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	act, dist, ok := geo.Nearest(h.deps.Store.Activities(), pos)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, nearestResponse{Activity: act, DistanceMeters: dist})
}

// ListPhrases handles GET /phrases: the guide phrasebook.
func (h *Handler) ListPhrases(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Store.Phrases())
}

type speakRequest struct {
	Word string `json:"word"`
}

// SpeakPhrase handles POST /phrases/speak: pronounces a phrasebook word
// in the phrase language. Only words from the phrasebook are accepted.
func (h *Handler) SpeakPhrase(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	found := false
	for _, p := range h.deps.Store.Phrases() {
		if p.Word == req.Word {
			found = true
			break
		}
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody("phrase not found"))
		return
	}

	if err := h.deps.Session.Pronounce(req.Word, h.deps.PhraseLanguage, h.deps.PhraseRate); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Session.Status())
}

// GetAudioStatus handles GET /audio.
func (h *Handler) GetAudioStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Session.Status())
}

type openAudioRequest struct {
	ActivityID string `json:"activity_id"`
}

// OpenAudio handles POST /audio/open: loads an activity's narration.
func (h *Handler) OpenAudio(w http.ResponseWriter, r *http.Request) {
	var req openAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	act, ok := h.deps.Store.Get(req.ActivityID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("activity not found"))
		return
	}
	if err := h.deps.Session.Open(act); err != nil {
		if errors.Is(err, apperr.ErrNoNarration) {
			writeJSON(w, http.StatusBadRequest, errorBody("activity has no audio guide"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Session.Status())
}

// PlayAudio handles POST /audio/play.
func (h *Handler) PlayAudio(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Session.Play(); err != nil {
		if errors.Is(err, apperr.ErrSessionClosed) {
			writeJSON(w, http.StatusConflict, errorBody("no activity is open"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Session.Status())
}

// StopAudio handles POST /audio/stop.
func (h *Handler) StopAudio(w http.ResponseWriter, r *http.Request) {
	h.deps.Session.Stop()
	writeJSON(w, http.StatusOK, h.deps.Session.Status())
}

// CloseAudio handles POST /audio/close.
func (h *Handler) CloseAudio(w http.ResponseWriter, r *http.Request) {
	h.deps.Session.Close()
	writeJSON(w, http.StatusOK, h.deps.Session.Status())
}
