package gateway

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/storysearch/surfacer/pkg/bus"
	"github.com/storysearch/surfacer/pkg/recommend"
)

// Handler serves the UI consumption contract over HTTP.
type Handler struct {
	engine *recommend.Engine
	bus    *bus.EventBus
}

func NewHandler(engine *recommend.Engine, eventBus *bus.EventBus) *Handler {
	return &Handler{engine: engine, bus: eventBus}
}

type trackSearchRequest struct {
	Query string `json:"query"`
}

type trackViewRequest struct {
	ContentID string `json:"contentId"`
}

type trackClickRequest struct {
	ContentID string `json:"contentId"`
	Context   string `json:"context"`
}

type feedbackRequest struct {
	Sentiment string `json:"sentiment"`
}

type predictionsResponse struct {
	Predictions []recommend.Recommendation `json:"predictions"`
	IsAnalyzing bool                       `json:"isAnalyzing"`
}

func (h *Handler) TrackSearch(w http.ResponseWriter, r *http.Request) {
	var req trackSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// The engine records whitespace queries as-is; the gateway is the caller
	// that filters them.
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	h.bus.PublishTrack(bus.TrackEvent{
		ID:    uuid.NewString(),
		Kind:  bus.TrackSearch,
		Query: req.Query,
		At:    time.Now(),
	})
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *Handler) TrackView(w http.ResponseWriter, r *http.Request) {
	var req trackViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ContentID == "" {
		writeError(w, http.StatusBadRequest, "contentId is required")
		return
	}
	h.bus.PublishTrack(bus.TrackEvent{
		ID:        uuid.NewString(),
		Kind:      bus.TrackContentView,
		ContentID: req.ContentID,
		At:        time.Now(),
	})
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *Handler) TrackClick(w http.ResponseWriter, r *http.Request) {
	var req trackClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ContentID == "" {
		writeError(w, http.StatusBadRequest, "contentId is required")
		return
	}
	h.bus.PublishTrack(bus.TrackEvent{
		ID:        uuid.NewString(),
		Kind:      bus.TrackClick,
		ContentID: req.ContentID,
		Context:   req.Context,
		At:        time.Now(),
	})
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *Handler) TrackTime(w http.ResponseWriter, r *http.Request) {
	h.bus.PublishTrack(bus.TrackEvent{
		ID:   uuid.NewString(),
		Kind: bus.TrackTimeOnPage,
		At:   time.Now(),
	})
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *Handler) Predictions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, predictionsResponse{
		Predictions: h.engine.Predictions(),
		IsAnalyzing: h.engine.IsAnalyzing(),
	})
}

// Analyze bypasses the debounce and runs a full aggregation pass now.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	recs := h.engine.Refresh(r.Context())
	writeJSON(w, http.StatusOK, predictionsResponse{
		Predictions: recs,
		IsAnalyzing: h.engine.IsAnalyzing(),
	})
}

func (h *Handler) Behavior(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Behavior())
}

func (h *Handler) ClearUserData(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ClearUserData(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear user data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.engine.RecordFeedback(id, recommend.Sentiment(req.Sentiment)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
