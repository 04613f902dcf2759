package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"nearby-activity-backend/internal/models"
	"nearby-activity-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// CreateUser handles POST /api/v1/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.Create(r.Context(), req.DisplayName)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create user")
		respondError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User created")
	respondJSON(w, user, http.StatusOK)
}

// UpdateLocation handles PUT /api/v1/users/{id}/location
func (h *UserHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		respondError(w, "latitude and longitude are required", http.StatusBadRequest)
		return
	}

	if err := h.userService.UpdateLocation(r.Context(), userID, *req.Latitude, *req.Longitude); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update location")
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateSchedule handles PUT /api/v1/users/{id}/schedule
func (h *UserHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var schedule models.WeeklySchedule
	if err := json.NewDecoder(r.Body).Decode(&schedule); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.UpdateSchedule(r.Context(), userID, schedule); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdatePushToken handles PUT /api/v1/users/{id}/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req struct {
		Token *string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.UpdatePushToken(r.Context(), userID, req.Token); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update push token")
		respondError(w, "Failed to update push token", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateNotificationSettings handles PUT /api/v1/users/{id}/notification-settings
func (h *UserHandler) UpdateNotificationSettings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var settings models.NotificationSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.UpdateNotificationSettings(r.Context(), userID, settings); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update notification settings")
		respondError(w, "Failed to update notification settings", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Block handles POST /api/v1/users/{id}/block/{target}
func (h *UserHandler) Block(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	targetID := chi.URLParam(r, "target")

	if err := h.userService.Block(r.Context(), userID, targetID); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unblock handles DELETE /api/v1/users/{id}/block/{target}
func (h *UserHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	targetID := chi.URLParam(r, "target")

	if err := h.userService.Unblock(r.Context(), userID, targetID); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkNotificationRead handles POST /api/v1/users/{id}/notifications/{nid}/read
func (h *UserHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	notificationID := chi.URLParam(r, "nid")

	if err := h.userService.MarkNotificationRead(r.Context(), userID, notificationID); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Notifications handles GET /api/v1/users/{id}/notifications
func (h *UserHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var before time.Time
	if raw := r.URL.Query().Get("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, "before must be RFC3339", http.StatusBadRequest)
			return
		}
		before = parsed
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, "limit must be a positive number", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	notifications, err := h.userService.Notifications(r.Context(), userID, before, limit)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list notifications")
		respondError(w, "Failed to list notifications", http.StatusInternalServerError)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	respondJSON(w, notifications, http.StatusOK)
}
