package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter builds the HTTP surface over the surfacing engine. Tracking
// endpoints publish events to the bus; read endpoints serve engine state
// directly. Health probes are registered by the Server.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestLogger)
	r.Use(recovery)

	r.Route("/api", func(r chi.Router) {
		r.Post("/track/search", h.TrackSearch)
		r.Post("/track/view", h.TrackView)
		r.Post("/track/click", h.TrackClick)
		r.Post("/track/time", h.TrackTime)

		r.Get("/predictions", h.Predictions)
		r.Post("/analyze", h.Analyze)

		r.Get("/behavior", h.Behavior)
		r.Delete("/user-data", h.ClearUserData)

		r.Post("/feedback/{id}", h.Feedback)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return r
}
