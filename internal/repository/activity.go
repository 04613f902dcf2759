package repository

import (
	"context"
	"errors"
	"fmt"

	"nearby-activity-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrActivityUnavailable is returned when an atomic join/leave matched
// nothing: the activity is gone, full, or the membership precondition
// failed.
var ErrActivityUnavailable = errors.New("activity not available for this change")

// ActivityRepository handles document store operations for pings and
// events. The two kinds live in separate collections but share a shape.
type ActivityRepository struct {
	pings  *mongo.Collection
	events *mongo.Collection
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{
		pings:  db.Collection(collPings),
		events: db.Collection(collEvents),
	}
}

func (r *ActivityRepository) collFor(kind string) *mongo.Collection {
	if kind == models.KindEvent {
		return r.events
	}
	return r.pings
}

// Create inserts a new activity document
func (r *ActivityRepository) Create(ctx context.Context, act *models.Activity) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.collFor(act.Kind).InsertOne(ctx, act); err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// GetByID retrieves an activity of the given kind
func (r *ActivityRepository) GetByID(ctx context.Context, kind, id string) (*models.Activity, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var act models.Activity
	err := r.collFor(kind).FindOne(ctx, bson.M{"_id": id}).Decode(&act)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("activity not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &act, nil
}

// Join adds userID to the participant set in one atomic update. The
// filter carries every precondition (active status, not already a
// member, below any finite capacity) so two concurrent joins cannot
// corrupt the count.
func (r *ActivityRepository) Join(ctx context.Context, kind, activityID, userID string, maxParticipants int) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"_id":          activityID,
		"status":       models.ActivityStatusActive,
		"participants": bson.M{"$ne": userID},
	}
	if maxParticipants > 0 {
		filter["participant_count"] = bson.M{"$lt": maxParticipants}
	}
	update := bson.M{
		"$addToSet": bson.M{"participants": userID},
		"$inc":      bson.M{"participant_count": 1},
	}

	res := r.collFor(kind).FindOneAndUpdate(ctx, filter, update)
	if err := res.Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrActivityUnavailable
		}
		return fmt.Errorf("failed to join activity: %w", err)
	}
	return nil
}

// Leave removes userID from the participant set atomically. Removing a
// non-member matches nothing and reports ErrActivityUnavailable.
func (r *ActivityRepository) Leave(ctx context.Context, kind, activityID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"_id":          activityID,
		"participants": userID,
	}
	update := bson.M{
		"$pull": bson.M{"participants": userID},
		"$inc":  bson.M{"participant_count": -1},
	}

	res := r.collFor(kind).FindOneAndUpdate(ctx, filter, update)
	if err := res.Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrActivityUnavailable
		}
		return fmt.Errorf("failed to leave activity: %w", err)
	}
	return nil
}

// UpdateFields sets creator-editable fields. Authorization is the
// service's concern; the filter still pins the creator id as a guard.
func (r *ActivityRepository) UpdateFields(ctx context.Context, kind, activityID, creatorID string, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.collFor(kind).UpdateOne(ctx,
		bson.M{"_id": activityID, "creator_id": creatorID},
		bson.M{"$set": fields},
	)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrActivityUnavailable
	}
	return nil
}

// WatchPings opens a live snapshot stream over the newest pings.
func (r *ActivityRepository) WatchPings(ctx context.Context, limit int64) (*Stream[models.Activity], error) {
	return WatchLatest[models.Activity](ctx, r.pings, bson.M{}, bson.D{{Key: "created_at", Value: -1}}, limit)
}

// WatchEvents opens a live snapshot stream over the newest events.
func (r *ActivityRepository) WatchEvents(ctx context.Context, limit int64) (*Stream[models.Activity], error) {
	return WatchLatest[models.Activity](ctx, r.events, bson.M{}, bson.D{{Key: "created_at", Value: -1}}, limit)
}
