package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jknack0/streamer-poc/internal/domain"
	"github.com/jknack0/streamer-poc/internal/middleware"
	"github.com/jknack0/streamer-poc/internal/service"
	apperrors "github.com/jknack0/streamer-poc/pkg/errors"
	"github.com/jknack0/streamer-poc/pkg/logger"
)

type PollHandler struct {
	pollService *service.PollService
	log         *logger.Logger
}

func NewPollHandler(pollService *service.PollService, log *logger.Logger) *PollHandler {
	return &PollHandler{
		pollService: pollService,
		log:         log,
	}
}

// RegisterRoutes mounts the poll endpoints on the router.
func (h *PollHandler) RegisterRoutes(r chi.Router) {
	r.Post("/polls", h.CreatePoll)
	r.Get("/polls/{id}", h.GetPoll)
	r.Post("/polls/{id}/status", h.UpdateStatus)
	r.Post("/polls/{id}/votes", h.SubmitVote)
	r.Get("/polls/{id}/votes", h.ListVotes)
	r.Delete("/polls/{id}/votes", h.ClearVotes)
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePollRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondAppError(w, r, err)
		return
	}

	poll, err := h.pollService.CreatePoll(r.Context(), req.ID, req.Status)
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, poll)
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.pollService.GetPoll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, poll)
}

// UpdateStatus handles POST /polls/{id}/status
func (h *PollHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateStatusRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondAppError(w, r, err)
		return
	}

	poll, err := h.pollService.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, poll)
}

// SubmitVote handles POST /polls/{id}/votes
func (h *PollHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req domain.VoteRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondAppError(w, r, err)
		return
	}

	result, err := h.pollService.SubmitVote(r.Context(), chi.URLParam(r, "id"), req.OptionSlug, req.VoterID)
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, result)
}

// ListVotes handles GET /polls/{id}/votes
func (h *PollHandler) ListVotes(w http.ResponseWriter, r *http.Request) {
	result, err := h.pollService.ListVotes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// ClearVotes handles DELETE /polls/{id}/votes
func (h *PollHandler) ClearVotes(w http.ResponseWriter, r *http.Request) {
	if err := h.pollService.ClearVotes(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeBody decodes a JSON request body, tolerating an empty body since
// every field on the poll endpoints is optional or validated downstream.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.NewValidationError("Invalid request body", nil)
	}
	return nil
}

func (h *PollHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.WithError(err).Error("Failed to encode response")
	}
}

func (h *PollHandler) respondAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewInternalError("Internal server error", err)
	}

	requestID := middleware.GetRequestID(r.Context())

	if appErr.Type == apperrors.ErrorTypeInternal {
		h.log.WithField("request_id", requestID).WithError(appErr).Error("Request failed")
	} else {
		h.log.WithFields(map[string]interface{}{
			"request_id": requestID,
			"type":       string(appErr.Type),
			"message":    appErr.Message,
		}).Debug("Request rejected")
	}

	response := &apperrors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Message = appErr.Message
	response.Error.Details = appErr.Details
	response.Error.RequestID = requestID
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.WithError(err).Error("Failed to encode error response")
	}
}
