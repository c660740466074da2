package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/streamsync/subsync/internal/config"
	"github.com/streamsync/subsync/internal/health"
	"github.com/streamsync/subsync/internal/models"
	"github.com/streamsync/subsync/internal/syncer"
)

// serviceName identifies the service in the root document.
const serviceName = "subsync"

// maxRequestBytes bounds the request body; subtitle documents are text and
// never legitimately reach this size.
const maxRequestBytes = 8 << 20

type handler struct {
	svc           syncer.Service
	checker       *health.Checker
	audioDuration time.Duration
}

func newHandler(svc syncer.Service, checker *health.Checker, audioDuration time.Duration) *handler {
	return &handler{svc: svc, checker: checker, audioDuration: audioDuration}
}

type syncRequestBody struct {
	StreamURL string `json:"stream_url"`
	Subtitle  string `json:"subtitle"`
	Language  string `json:"language"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Root serves a minimal service document.
func (h *handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":                serviceName,
		"status":                 "ok",
		"audio_duration_seconds": int(h.audioDuration.Seconds()),
	})
}

// Health reports availability of the external collaborators.
func (h *handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.checker.Status(r.Context()))
}

// Sync synchronizes a subtitle and returns the shifted document.
func (h *handler) Sync(w http.ResponseWriter, r *http.Request) {
	h.handleSync(w, r, true)
}

// Offset runs the same pipeline but strips the shifted subtitle from the
// response, a lighter payload for constrained clients.
func (h *handler) Offset(w http.ResponseWriter, r *http.Request) {
	h.handleSync(w, r, false)
}

func (h *handler) handleSync(w http.ResponseWriter, r *http.Request, includeSubtitle bool) {
	var body syncRequestBody
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := decoder.Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if body.StreamURL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "stream_url is required"})
		return
	}
	if body.Subtitle == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "subtitle is required"})
		return
	}

	result := h.svc.Synchronize(r.Context(), models.SyncRequest{
		StreamURL:       body.StreamURL,
		Subtitle:        body.Subtitle,
		Language:        body.Language,
		IncludeSubtitle: includeSubtitle,
	})

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger := config.GetLogger()
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}
