package repository

import (
	"context"
	"fmt"

	"nearby-activity-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ConnectionRepository handles document store operations for connections
type ConnectionRepository struct {
	coll *mongo.Collection
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db *mongo.Database) *ConnectionRepository {
	return &ConnectionRepository{coll: db.Collection(collConnections)}
}

func participantFilter(userID string) bson.M {
	return bson.M{"$or": []bson.M{
		{"user_a_id": userID},
		{"user_b_id": userID},
	}}
}

// Create inserts a new connection document
func (r *ConnectionRepository) Create(ctx context.Context, conn *models.Connection) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, conn); err != nil {
		return fmt.Errorf("failed to create connection: %w", err)
	}
	return nil
}

// GetByID retrieves a connection by ID
func (r *ConnectionRepository) GetByID(ctx context.Context, id string) (*models.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var conn models.Connection
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&conn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("connection not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	return &conn, nil
}

// ListForUser returns every connection the user participates in,
// pending or active.
func (r *ConnectionRepository) ListForUser(ctx context.Context, userID string) ([]models.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, participantFilter(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer cur.Close(ctx)

	var conns []models.Connection
	if err := cur.All(ctx, &conns); err != nil {
		return nil, fmt.Errorf("failed to decode connections: %w", err)
	}
	return conns, nil
}

// FindBetween returns the connection linking the two users, if any.
// Uniqueness per unordered pair is not enforced by the store, so this
// scans both orderings and returns the first hit.
func (r *ConnectionRepository) FindBetween(ctx context.Context, userA, userB string) (*models.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"$or": []bson.M{
		{"user_a_id": userA, "user_b_id": userB},
		{"user_a_id": userB, "user_b_id": userA},
	}}
	var conn models.Connection
	err := r.coll.FindOne(ctx, filter).Decode(&conn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find connection: %w", err)
	}
	return &conn, nil
}

// Accept flips a pending connection to active. Only the non-initiating
// participant may accept.
func (r *ConnectionRepository) Accept(ctx context.Context, connectionID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"_id":          connectionID,
		"status":       models.ConnectionPending,
		"initiator_id": bson.M{"$ne": userID},
		"$or": []bson.M{
			{"user_a_id": userID},
			{"user_b_id": userID},
		},
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{"status": models.ConnectionActive},
	})
	if err != nil {
		return fmt.Errorf("failed to accept connection: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("connection is not pending for this user")
	}
	return nil
}

// ActiveSet returns the ids of users holding an active connection with
// userID, as a set for policy lookups.
func (r *ConnectionRepository) ActiveSet(ctx context.Context, userID string) (map[string]bool, error) {
	conns, err := r.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	for _, c := range conns {
		if c.Status != models.ConnectionActive {
			continue
		}
		if other := c.Other(userID); other != "" {
			set[other] = true
		}
	}
	return set, nil
}

// WatchForUser opens a live snapshot stream over the user's connections.
func (r *ConnectionRepository) WatchForUser(ctx context.Context, userID string) (*Stream[models.Connection], error) {
	return WatchLatest[models.Connection](ctx, r.coll, participantFilter(userID), nil, 0)
}
