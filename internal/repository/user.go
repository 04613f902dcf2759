package repository

import (
	"context"
	"fmt"
	"time"

	"nearby-activity-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// embeddedNotificationCap bounds the per-user embedded list; older
// entries roll off and survive only in the archive.
const embeddedNotificationCap = 50

// UserRepository handles document store operations for users
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(collUsers)}
}

// Create inserts a new user document
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByIDs retrieves users by a set of ids; missing ids are skipped
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// All retrieves every user; the open/invite-only candidate pool.
func (r *UserRepository) All(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// UpdateLocation stores the last known coordinates, capture time and an
// optional human-readable label.
func (r *UserRepository) UpdateLocation(ctx context.Context, userID string, loc models.Coordinates, capturedAt time.Time, label string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	fields := bson.M{
		"location":             loc,
		"location_captured_at": capturedAt,
	}
	if label != "" {
		fields["location_label"] = label
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	return nil
}

// UpdateSchedule replaces the weekly availability schedule
func (r *UserRepository) UpdateSchedule(ctx context.Context, userID string, schedule models.WeeklySchedule) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"schedule": schedule},
	})
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"push_token": pushToken},
	})
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}

// UpdateNotificationSettings replaces the notification toggles
func (r *UserRepository) UpdateNotificationSettings(ctx context.Context, userID string, settings models.NotificationSettings) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"notification_settings": settings},
	})
	if err != nil {
		return fmt.Errorf("failed to update notification settings: %w", err)
	}
	return nil
}

// Block records a block in both directions: blockerID's blocked_users
// and targetID's blocked_by.
func (r *UserRepository) Block(ctx context.Context, blockerID, targetID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": blockerID}, bson.M{
		"$addToSet": bson.M{"blocked_users": targetID},
	}); err != nil {
		return fmt.Errorf("failed to record block: %w", err)
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": targetID}, bson.M{
		"$addToSet": bson.M{"blocked_by": blockerID},
	}); err != nil {
		return fmt.Errorf("failed to record blocked-by: %w", err)
	}
	return nil
}

// Unblock removes a block in both directions
func (r *UserRepository) Unblock(ctx context.Context, blockerID, targetID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": blockerID}, bson.M{
		"$pull": bson.M{"blocked_users": targetID},
	}); err != nil {
		return fmt.Errorf("failed to remove block: %w", err)
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": targetID}, bson.M{
		"$pull": bson.M{"blocked_by": blockerID},
	}); err != nil {
		return fmt.Errorf("failed to remove blocked-by: %w", err)
	}
	return nil
}

// AppendNotification pushes a notification onto the user's embedded
// list, keeping only the newest entries. Full history lives in the
// archive.
func (r *UserRepository) AppendNotification(ctx context.Context, userID string, n models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$push": bson.M{
			"notifications": bson.M{
				"$each":  []models.Notification{n},
				"$slice": -embeddedNotificationCap,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to append notification: %w", err)
	}
	return nil
}

// MarkNotificationRead flips the read flag on one embedded notification
func (r *UserRepository) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID, "notifications.id": notificationID},
		bson.M{"$set": bson.M{"notifications.$.read": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
