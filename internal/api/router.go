package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(deps Deps, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(deps)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Timeline and summary.
	r.Get("/itinerary", h.GetTimeline)
	r.Get("/summary", h.GetSummary)

	// Activities.
	r.Get("/activities/{id}", h.GetActivity)
	r.Post("/activities/{id}/toggle", h.ToggleActivity)

	// Countdown.
	r.Get("/countdown", h.GetCountdown)

	// Position.
	r.Get("/position", h.GetPosition)
	r.Put("/position", h.PutPosition)
	r.Delete("/position", h.DeletePosition)
	r.Get("/nearest", h.GetNearest)

	// Phrasebook.
	r.Get("/phrases", h.ListPhrases)
	r.Post("/phrases/speak", h.SpeakPhrase)

	// Audio-guide session.
	r.Get("/audio", h.GetAudioStatus)
	r.Post("/audio/open", h.OpenAudio)
	r.Post("/audio/play", h.PlayAudio)
	r.Post("/audio/stop", h.StopAudio)
	r.Post("/audio/close", h.CloseAudio)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
