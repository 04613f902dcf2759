package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"nearby-activity-backend/internal/models"
	"nearby-activity-backend/internal/repository"
	"nearby-activity-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ActivityHandler handles activity-related HTTP requests
type ActivityHandler struct {
	activityService *services.ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
	}
}

// CreateActivity handles POST /api/v1/activities. The body is the
// activity document itself; server-owned fields (id, status, timestamps,
// participants) are ignored and filled by the service.
func (h *ActivityHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var act models.Activity
	if err := json.NewDecoder(r.Body).Decode(&act); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.activityService.Create(r.Context(), act)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create activity")
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info().
		Str("activity_id", created.ID).
		Str("kind", created.Kind).
		Str("creator_id", created.CreatorID).
		Msg("Activity created")
	respondJSON(w, created, http.StatusOK)
}

// GetActivity handles GET /api/v1/activities/{kind}/{id}
func (h *ActivityHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	id := chi.URLParam(r, "id")

	act, err := h.activityService.Get(r.Context(), kind, id)
	if err != nil {
		respondError(w, "Activity not found", http.StatusNotFound)
		return
	}
	respondJSON(w, act, http.StatusOK)
}

type membershipRequest struct {
	UserID string `json:"user_id"`
}

// Join handles POST /api/v1/activities/{kind}/{id}/join
func (h *ActivityHandler) Join(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.activityService.Join)
}

// Leave handles POST /api/v1/activities/{kind}/{id}/leave
func (h *ActivityHandler) Leave(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.activityService.Leave)
}

func (h *ActivityHandler) changeMembership(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, kind, id, userID string) error) {
	kind := chi.URLParam(r, "kind")
	id := chi.URLParam(r, "id")

	var req membershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	if err := op(r.Context(), kind, id, req.UserID); err != nil {
		if errors.Is(err, repository.ErrActivityUnavailable) {
			respondError(w, "Activity is full, gone, or membership unchanged", http.StatusConflict)
			return
		}
		log.Error().Err(err).Str("activity_id", id).Str("user_id", req.UserID).
			Msg("Failed to change activity membership")
		respondError(w, "Failed to update participation", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveParticipant handles DELETE /api/v1/activities/{kind}/{id}/participants/{target}
// The requesting creator id arrives in the body.
func (h *ActivityHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	id := chi.URLParam(r, "id")
	targetID := chi.URLParam(r, "target")

	var req membershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	if err := h.activityService.RemoveParticipant(r.Context(), kind, id, req.UserID, targetID); err != nil {
		if errors.Is(err, repository.ErrActivityUnavailable) {
			respondError(w, "Participant not in activity", http.StatusConflict)
			return
		}
		respondError(w, err.Error(), http.StatusForbidden)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EditActivity handles PATCH /api/v1/activities/{kind}/{id}
func (h *ActivityHandler) EditActivity(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	id := chi.URLParam(r, "id")

	var req struct {
		UserID string                `json:"user_id"`
		Edit   services.ActivityEdit `json:"edit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	if err := h.activityService.Edit(r.Context(), kind, id, req.UserID, req.Edit); err != nil {
		if errors.Is(err, repository.ErrActivityUnavailable) {
			respondError(w, "Activity not found or not owned by user", http.StatusForbidden)
			return
		}
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
