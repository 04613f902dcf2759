package handlers

import (
	"encoding/json"
	"net/http"

	"nearby-activity-backend/internal/models"
	"nearby-activity-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // mobile clients connect from app origins
	},
}

// WSMessage is the websocket envelope in both directions
type WSMessage struct {
	Type      string              `json:"type"`
	Latitude  *float64            `json:"latitude,omitempty"`
	Longitude *float64            `json:"longitude,omitempty"`
	Items     []services.FeedItem `json:"items,omitempty"`
	Message   string              `json:"message,omitempty"`
}

// WebSocketHandler streams each viewer's live feed and accepts location
// updates from the client.
type WebSocketHandler struct {
	feed        *services.FeedAggregator
	userService *services.UserService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(feed *services.FeedAggregator, userService *services.UserService) *WebSocketHandler {
	return &WebSocketHandler{
		feed:        feed,
		userService: userService,
	}
}

// HandleWebSocket handles GET /ws?user_id=...
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, "user_id required", http.StatusBadRequest)
		return
	}

	viewer, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		respondError(w, "unknown user", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	session := h.feed.Open(r.Context(), userID, viewer.Location)
	defer session.Stop()

	log.Info().Str("user_id", userID).Msg("Feed stream opened")

	// Writer: push every recomputed feed to the client.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for items := range session.Updates() {
			msg := WSMessage{Type: "feed", Items: items}
			data, err := json.Marshal(msg)
			if err != nil {
				log.Error().Err(err).Str("user_id", userID).Msg("Failed to marshal feed message")
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("user_id", userID).Msg("Failed to write feed message")
				return
			}
		}
	}()

	// Reader: location updates move the feed origin and refresh the
	// stored last-known position best-effort.
	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			h.sendError(conn, "Invalid message format")
			continue
		}

		switch msg.Type {
		case "location":
			if msg.Latitude == nil || msg.Longitude == nil {
				h.sendError(conn, "latitude and longitude are required")
				continue
			}
			session.UpdateLocation(models.Coordinates{
				Latitude:  *msg.Latitude,
				Longitude: *msg.Longitude,
			})
			if err := h.userService.UpdateLocation(r.Context(), userID, *msg.Latitude, *msg.Longitude); err != nil {
				log.Error().Err(err).Str("user_id", userID).Msg("Failed to persist location update")
			}
		default:
			h.sendError(conn, "Unknown message type")
		}
	}

	session.Stop()
	<-done
	log.Info().Str("user_id", userID).Msg("Feed stream closed")
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, message string) {
	msg := WSMessage{Type: "error", Message: message}
	data, _ := json.Marshal(msg)
	conn.WriteMessage(websocket.TextMessage, data)
}
