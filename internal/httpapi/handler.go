package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rpggio/scribe/internal/domain/transcript"
)

// Handler exposes the transcript service over HTTP.
type Handler struct {
	svc    *transcript.Service
	logger *slog.Logger
}

// New creates a transcript HTTP handler.
func New(svc *transcript.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// NewRouter wires HTTP routes to the transcript service.
func NewRouter(svc *transcript.Service, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	h := New(svc, logger)
	r.Route("/api", func(api chi.Router) {
		h.RegisterRoutes(api)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}

// RegisterRoutes registers the transcript routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/activities", h.handleLogActivity)
	r.Get("/channels/{channelID}/transcripts", h.handleListTranscripts)
	r.Get("/channels/{channelID}/conversations/{conversationID}/activities", h.handleGetActivities)
	r.Delete("/channels/{channelID}/conversations/{conversationID}", h.handleDeleteTranscript)
}

func (h *Handler) handleLogActivity(w http.ResponseWriter, r *http.Request) {
	var activity transcript.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.LogActivity(r.Context(), &activity); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"status": "logged"})
}

func (h *Handler) handleListTranscripts(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")
	token := r.URL.Query().Get("continuationToken")

	page, err := h.svc.ListTranscripts(r.Context(), channelID, token)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func (h *Handler) handleGetActivities(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")
	conversationID := chi.URLParam(r, "conversationID")

	opts := transcript.ActivityPageOptions{
		ContinuationToken: r.URL.Query().Get("continuationToken"),
	}
	if raw := r.URL.Query().Get("startDate"); raw != "" {
		startDate, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "startDate must be RFC 3339")
			return
		}
		opts.StartDate = startDate
	}

	page, err := h.svc.GetTranscriptActivities(r.Context(), channelID, conversationID, opts)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func (h *Handler) handleDeleteTranscript(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")
	conversationID := chi.URLParam(r, "conversationID")

	if err := h.svc.DeleteTranscript(r.Context(), channelID, conversationID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, transcript.ErrInvalidInput),
		errors.Is(err, transcript.ErrInvalidContinuation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, transcript.ErrDeleteUnsupported):
		respondError(w, http.StatusNotImplemented, err.Error())
	case errors.Is(err, transcript.ErrReadNotConfigured):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error("transcript request failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
