package services

import (
	"context"
	"fmt"
	"time"

	"nearby-activity-backend/internal/models"
	"nearby-activity-backend/internal/repository"

	"github.com/google/uuid"
)

// ConnectionService handles connection-related business logic
type ConnectionService struct {
	connRepo *repository.ConnectionRepository
	userRepo *repository.UserRepository
}

// NewConnectionService creates a new connection service
func NewConnectionService(connRepo *repository.ConnectionRepository, userRepo *repository.UserRepository) *ConnectionService {
	return &ConnectionService{
		connRepo: connRepo,
		userRepo: userRepo,
	}
}

// Request creates a pending connection from initiator to target
func (s *ConnectionService) Request(ctx context.Context, initiatorID, targetID string) (*models.Connection, error) {
	if initiatorID == targetID {
		return nil, fmt.Errorf("cannot create connection with yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, fmt.Errorf("target not found: %w", err)
	}

	existing, err := s.connRepo.FindBetween(ctx, initiatorID, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing connection: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("connection already exists with status %s", existing.Status)
	}

	conn := &models.Connection{
		ID:          uuid.New().String(),
		UserAID:     initiatorID,
		UserBID:     targetID,
		Status:      models.ConnectionPending,
		InitiatorID: initiatorID,
		CreatedAt:   time.Now(),
	}

	if err := s.connRepo.Create(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}
	return conn, nil
}

// Accept activates a pending connection; only the non-initiating
// participant may accept.
func (s *ConnectionService) Accept(ctx context.Context, connectionID, userID string) error {
	return s.connRepo.Accept(ctx, connectionID, userID)
}

// ListForUser returns all connections the user participates in
func (s *ConnectionService) ListForUser(ctx context.Context, userID string) ([]models.Connection, error) {
	return s.connRepo.ListForUser(ctx, userID)
}

// ActiveSet returns the ids of users actively connected to userID
func (s *ConnectionService) ActiveSet(ctx context.Context, userID string) (map[string]bool, error) {
	return s.connRepo.ActiveSet(ctx, userID)
}
