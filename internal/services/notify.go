package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nearby-activity-backend/internal/models"
	"nearby-activity-backend/internal/push"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RecipientStore appends a notification to a user's embedded list
type RecipientStore interface {
	AppendNotification(ctx context.Context, userID string, n models.Notification) error
}

// NotificationArchiver persists a notification to the long-term archive
type NotificationArchiver interface {
	Archive(ctx context.Context, userID string, n models.Notification) error
}

// NotificationDispatcher fans a new activity out to its matched
// recipients. Delivery is best-effort and at-least-once: there is no
// idempotency key, no retry, and no rollback; a recipient failure is
// logged and the rest of the batch proceeds.
type NotificationDispatcher struct {
	gateway push.Gateway
	store   RecipientStore
	archive NotificationArchiver
	workers int
	timeout time.Duration
}

// NewNotificationDispatcher creates a dispatcher with a bounded worker
// pool. archive may be nil when no long-term store is configured.
func NewNotificationDispatcher(gateway push.Gateway, store RecipientStore, archive NotificationArchiver, workers int, timeout time.Duration) *NotificationDispatcher {
	if workers < 1 {
		workers = 1
	}
	return &NotificationDispatcher{
		gateway: gateway,
		store:   store,
		archive: archive,
		workers: workers,
		timeout: timeout,
	}
}

// Dispatch delivers a notification about act to every matched
// candidate. It blocks until the batch is done; callers wanting
// fire-and-forget run it on their own goroutine.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, act models.Activity, matched []Candidate) {
	jobs := make(chan Candidate)

	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cand := range jobs {
				d.notifyOne(ctx, act, cand)
			}
		}()
	}

	for _, cand := range matched {
		if cand.User.ID == act.CreatorID {
			continue
		}
		select {
		case jobs <- cand:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}

func (d *NotificationDispatcher) notifyOne(ctx context.Context, act models.Activity, cand Candidate) {
	user := cand.User

	// Quiet skips: no way to reach the user, or the user asked not to be.
	if user.PushToken == nil || *user.PushToken == "" {
		return
	}
	if !user.NotificationSettings.Enabled || user.NotificationSettings.MutedCategories[act.Category] {
		return
	}

	distance := cand.DistanceMiles
	if distance < 0 {
		distance = 0
	}

	n := models.Notification{
		ID:    uuid.New().String(),
		Title: act.Title,
		Body:  fmt.Sprintf("%s is up for %s nearby", act.CreatorName, act.Title),
		Data: models.NotificationData{
			Type:          act.Kind,
			ActivityID:    act.ID,
			CreatorName:   act.CreatorName,
			Category:      act.Category,
			DistanceMiles: distance,
		},
		CreatedAt: time.Now(),
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.store.AppendNotification(sendCtx, user.ID, n); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Str("activity_id", act.ID).
			Msg("Failed to store notification")
	}
	if d.archive != nil {
		if err := d.archive.Archive(sendCtx, user.ID, n); err != nil {
			log.Error().Err(err).Str("user_id", user.ID).Str("activity_id", act.ID).
				Msg("Failed to archive notification")
		}
	}

	msg := push.Message{
		To:       *user.PushToken,
		Title:    n.Title,
		Body:     n.Body,
		Sound:    "default",
		Priority: "high",
		Data: map[string]interface{}{
			"type":           n.Data.Type,
			"activity_id":    n.Data.ActivityID,
			"creator_name":   n.Data.CreatorName,
			"category":       n.Data.Category,
			"distance_miles": n.Data.DistanceMiles,
		},
	}
	if err := d.gateway.Send(sendCtx, msg); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Str("activity_id", act.ID).
			Msg("Failed to send push notification")
	}
}
