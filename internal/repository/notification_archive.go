package repository

import (
	"context"
	"fmt"
	"time"

	"nearby-activity-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationArchive persists every dispatched notification to
// Postgres. The embedded per-user list in the document store is capped;
// this table is the unbounded, paginated history.
type NotificationArchive struct {
	db *pgxpool.Pool
}

// NewNotificationArchive creates a new notification archive
func NewNotificationArchive(db *pgxpool.Pool) *NotificationArchive {
	return &NotificationArchive{db: db}
}

// EnsureSchema creates the archive table when missing
func (a *NotificationArchive) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS notifications (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			title          TEXT NOT NULL,
			body           TEXT NOT NULL,
			data_type      TEXT NOT NULL,
			activity_id    TEXT,
			creator_name   TEXT,
			category       TEXT,
			distance_miles DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at     TIMESTAMPTZ NOT NULL,
			read           BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE INDEX IF NOT EXISTS idx_notifications_user_created
			ON notifications (user_id, created_at DESC);
	`
	if _, err := a.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure notifications schema: %w", err)
	}
	return nil
}

// Archive inserts one notification row
func (a *NotificationArchive) Archive(ctx context.Context, userID string, n models.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, title, body, data_type, activity_id, creator_name, category, distance_miles, created_at, read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := a.db.Exec(ctx, query,
		n.ID, userID, n.Title, n.Body,
		n.Data.Type, n.Data.ActivityID, n.Data.CreatorName, n.Data.Category, n.Data.DistanceMiles,
		n.CreatedAt, n.Read,
	)
	if err != nil {
		return fmt.Errorf("failed to archive notification: %w", err)
	}
	return nil
}

// List returns up to limit notifications for a user older than before,
// newest first. Pass a zero before for the first page.
func (a *NotificationArchive) List(ctx context.Context, userID string, before time.Time, limit int) ([]models.Notification, error) {
	if before.IsZero() {
		before = time.Now()
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, title, body, data_type, activity_id, creator_name, category, distance_miles, created_at, read
		FROM notifications
		WHERE user_id = $1 AND created_at < $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := a.db.Query(ctx, query, userID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID, &n.Title, &n.Body,
			&n.Data.Type, &n.Data.ActivityID, &n.Data.CreatorName, &n.Data.Category, &n.Data.DistanceMiles,
			&n.CreatedAt, &n.Read,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}
	return out, nil
}
