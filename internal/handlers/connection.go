package handlers

import (
	"encoding/json"
	"net/http"

	"nearby-activity-backend/internal/models"
	"nearby-activity-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ConnectionHandler handles connection-related HTTP requests
type ConnectionHandler struct {
	connectionService *services.ConnectionService
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(connectionService *services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{
		connectionService: connectionService,
	}
}

// CreateConnection handles POST /api/v1/connections
func (h *ConnectionHandler) CreateConnection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InitiatorID string `json:"initiator_id"`
		TargetID    string `json:"target_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InitiatorID == "" || req.TargetID == "" {
		respondError(w, "initiator_id and target_id are required", http.StatusBadRequest)
		return
	}

	conn, err := h.connectionService.Request(r.Context(), req.InitiatorID, req.TargetID)
	if err != nil {
		log.Error().Err(err).Str("initiator_id", req.InitiatorID).Msg("Failed to create connection")
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("initiator_id", req.InitiatorID).
		Str("target_id", req.TargetID).
		Msg("Connection requested")
	respondJSON(w, conn, http.StatusOK)
}

// AcceptConnection handles POST /api/v1/connections/{id}/accept
func (h *ConnectionHandler) AcceptConnection(w http.ResponseWriter, r *http.Request) {
	connectionID := chi.URLParam(r, "id")

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	if err := h.connectionService.Accept(r.Context(), connectionID, req.UserID); err != nil {
		respondError(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListConnections handles GET /api/v1/users/{id}/connections
func (h *ConnectionHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	conns, err := h.connectionService.ListForUser(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list connections")
		respondError(w, "Failed to list connections", http.StatusInternalServerError)
		return
	}
	if conns == nil {
		conns = []models.Connection{}
	}
	respondJSON(w, conns, http.StatusOK)
}
