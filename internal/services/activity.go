package services

import (
	"context"
	"fmt"
	"time"

	"nearby-activity-backend/internal/models"
	"nearby-activity-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
)

// fanoutTimeout bounds the whole post-creation notification batch
const fanoutTimeout = 60 * time.Second

// ActivityService owns the activity lifecycle: creation with
// notification fan-out, atomic join/leave, and creator-only edits.
type ActivityService struct {
	activities  *repository.ActivityRepository
	users       *repository.UserRepository
	connections *repository.ConnectionRepository
	scorer      *MatchScorer
	dispatcher  *NotificationDispatcher
}

// NewActivityService creates a new activity service
func NewActivityService(
	activities *repository.ActivityRepository,
	users *repository.UserRepository,
	connections *repository.ConnectionRepository,
	scorer *MatchScorer,
	dispatcher *NotificationDispatcher,
) *ActivityService {
	return &ActivityService{
		activities:  activities,
		users:       users,
		connections: connections,
		scorer:      scorer,
		dispatcher:  dispatcher,
	}
}

// Create persists a new ping or event and kicks off best-effort
// notification fan-out. The activity is created regardless of what
// happens to the notifications.
func (s *ActivityService) Create(ctx context.Context, act models.Activity) (*models.Activity, error) {
	if act.CreatorID == "" {
		return nil, fmt.Errorf("creator id is required")
	}
	if act.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	switch act.Kind {
	case models.KindPing, models.KindEvent:
	case "":
		act.Kind = models.KindPing
	default:
		return nil, fmt.Errorf("unknown activity kind %q", act.Kind)
	}
	if act.Kind == models.KindEvent && act.StartTime == nil {
		return nil, fmt.Errorf("event requires a start time")
	}
	switch act.VisibilityType {
	case models.VisibilityOpen, models.VisibilityInviteOnly, models.VisibilityFriendsOnly:
	case "":
		act.VisibilityType = models.VisibilityOpen
	default:
		return nil, fmt.Errorf("unknown visibility type %q", act.VisibilityType)
	}

	creator, err := s.users.GetByID(ctx, act.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}
	if act.CreatorName == "" {
		act.CreatorName = creator.DisplayName
	}

	act.ID = uuid.New().String()
	act.Status = models.ActivityStatusActive
	act.CreatedAt = time.Now()
	act.Participants = []string{act.CreatorID}
	act.ParticipantCount = 1

	if err := s.activities.Create(ctx, &act); err != nil {
		return nil, err
	}

	// Fan-out runs detached from the request: a caller hanging up must
	// not cancel deliveries, and delivery failure never unwinds the
	// already-persisted activity.
	go s.notifyMatches(act, *creator)

	return &act, nil
}

func (s *ActivityService) notifyMatches(act models.Activity, creator models.User) {
	ctx, cancel := context.WithTimeout(context.Background(), fanoutTimeout)
	defer cancel()

	activeSet, err := s.connections.ActiveSet(ctx, act.CreatorID)
	if err != nil {
		log.Error().Err(err).Str("activity_id", act.ID).Msg("Failed to load creator connections for fan-out")
		activeSet = map[string]bool{}
	}

	var candidates []models.User
	if act.VisibilityType == models.VisibilityFriendsOnly {
		ids := make([]string, 0, len(activeSet))
		for id := range activeSet {
			ids = append(ids, id)
		}
		candidates, err = s.users.GetByIDs(ctx, ids)
	} else {
		candidates, err = s.users.All(ctx)
	}
	if err != nil {
		log.Error().Err(err).Str("activity_id", act.ID).Msg("Failed to load candidate pool for fan-out")
		return
	}

	matched := s.scorer.Match(act, creator, candidates, activeSet, time.Now())
	if len(matched) == 0 {
		return
	}

	log.Info().Str("activity_id", act.ID).Int("matched", len(matched)).Msg("Dispatching activity notifications")
	s.dispatcher.Dispatch(ctx, act, matched)
}

// Get loads one activity
func (s *ActivityService) Get(ctx context.Context, kind, id string) (*models.Activity, error) {
	return s.activities.GetByID(ctx, kind, id)
}

// Join adds the user to the activity. Capacity and membership checks
// ride in the same atomic update, so concurrent joins cannot overfill
// the activity or skew the count.
func (s *ActivityService) Join(ctx context.Context, kind, activityID, userID string) error {
	act, err := s.activities.GetByID(ctx, kind, activityID)
	if err != nil {
		return err
	}
	max, _ := parseMaxParticipants(act.MaxParticipants)
	return s.activities.Join(ctx, kind, activityID, userID, max)
}

// Leave removes the user from the activity
func (s *ActivityService) Leave(ctx context.Context, kind, activityID, userID string) error {
	return s.activities.Leave(ctx, kind, activityID, userID)
}

// RemoveParticipant lets the creator remove someone else
func (s *ActivityService) RemoveParticipant(ctx context.Context, kind, activityID, creatorID, targetID string) error {
	act, err := s.activities.GetByID(ctx, kind, activityID)
	if err != nil {
		return err
	}
	if act.CreatorID != creatorID {
		return fmt.Errorf("only the creator may remove participants")
	}
	if targetID == creatorID {
		return fmt.Errorf("creator cannot be removed")
	}
	return s.activities.Leave(ctx, kind, activityID, targetID)
}

// ActivityEdit carries the creator-editable fields; nil means unchanged
type ActivityEdit struct {
	Title            *string `json:"title,omitempty"`
	Description      *string `json:"description,omitempty"`
	VisibilityType   *string `json:"visibility_type,omitempty"`
	VisibilityRadius *string `json:"visibility_radius,omitempty"`
	MaxParticipants  *string `json:"max_participants,omitempty"`
}

// Edit applies a creator-only partial update
func (s *ActivityService) Edit(ctx context.Context, kind, activityID, creatorID string, edit ActivityEdit) error {
	fields := bson.M{}
	if edit.Title != nil {
		fields["title"] = *edit.Title
	}
	if edit.Description != nil {
		fields["description"] = *edit.Description
	}
	if edit.VisibilityType != nil {
		switch *edit.VisibilityType {
		case models.VisibilityOpen, models.VisibilityInviteOnly, models.VisibilityFriendsOnly:
		default:
			return fmt.Errorf("unknown visibility type %q", *edit.VisibilityType)
		}
		fields["visibility_type"] = *edit.VisibilityType
	}
	if edit.VisibilityRadius != nil {
		fields["visibility_radius"] = *edit.VisibilityRadius
	}
	if edit.MaxParticipants != nil {
		fields["max_participants"] = *edit.MaxParticipants
	}
	if len(fields) == 0 {
		return nil
	}
	return s.activities.UpdateFields(ctx, kind, activityID, creatorID, fields)
}
