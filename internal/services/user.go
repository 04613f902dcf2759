package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nearby-activity-backend/internal/geo"
	"nearby-activity-backend/internal/models"
	"nearby-activity-backend/internal/repository"
	"nearby-activity-backend/internal/schedule"

	"github.com/google/uuid"
)

var weekdayNames = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// UserService handles user-related business logic
type UserService struct {
	userRepo *repository.UserRepository
	archive  *repository.NotificationArchive
	geo      geo.Provider
}

// NewUserService creates a new user service
func NewUserService(userRepo *repository.UserRepository, archive *repository.NotificationArchive, geoProvider geo.Provider) *UserService {
	return &UserService{
		userRepo: userRepo,
		archive:  archive,
		geo:      geoProvider,
	}
}

// Create creates a new user with notifications enabled by default
func (s *UserService) Create(ctx context.Context, displayName string) (*models.User, error) {
	if strings.TrimSpace(displayName) == "" {
		return nil, fmt.Errorf("display name is required")
	}

	user := &models.User{
		ID:          uuid.New().String(),
		DisplayName: displayName,
		NotificationSettings: models.NotificationSettings{
			Enabled: true,
		},
		CreatedAt: time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Get loads one user
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateLocation stores a new last-known position. The reverse-geocoded
// label is best-effort: a failing geocoder never blocks the update.
func (s *UserService) UpdateLocation(ctx context.Context, userID string, lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("latitude or longitude out of range")
	}

	label := ""
	if s.geo != nil {
		geocodeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if addr, err := s.geo.ReverseGeocode(geocodeCtx, lat, lon); err == nil {
			label = locationLabel(addr)
		}
		cancel()
	}

	loc := models.Coordinates{Latitude: lat, Longitude: lon}
	return s.userRepo.UpdateLocation(ctx, userID, loc, time.Now(), label)
}

func locationLabel(addr geo.Address) string {
	parts := make([]string, 0, 2)
	if addr.City != "" {
		parts = append(parts, addr.City)
	}
	if addr.Region != "" {
		parts = append(parts, addr.Region)
	}
	return strings.Join(parts, ", ")
}

// UpdateSchedule validates and normalizes a weekly schedule before it
// reaches the store: day keys are lowercased and must be real weekday
// names, bounds must be parseable "HH:MM". Malformed input is rejected
// here rather than left to confuse every later evaluation.
func (s *UserService) UpdateSchedule(ctx context.Context, userID string, raw models.WeeklySchedule) error {
	normalized := make(models.WeeklySchedule, len(raw))
	for day, w := range raw {
		key := strings.ToLower(strings.TrimSpace(day))
		if !weekdayNames[key] {
			return fmt.Errorf("unknown weekday %q", day)
		}
		if w.Start != "" && !schedule.ValidClock(w.Start) {
			return fmt.Errorf("invalid start time %q for %s", w.Start, key)
		}
		if w.End != "" && !schedule.ValidClock(w.End) {
			return fmt.Errorf("invalid end time %q for %s", w.End, key)
		}
		normalized[key] = w
	}
	return s.userRepo.UpdateSchedule(ctx, userID, normalized)
}

// UpdatePushToken stores or clears the push token
func (s *UserService) UpdatePushToken(ctx context.Context, userID string, token *string) error {
	return s.userRepo.UpdatePushToken(ctx, userID, token)
}

// UpdateNotificationSettings replaces the notification toggles
func (s *UserService) UpdateNotificationSettings(ctx context.Context, userID string, settings models.NotificationSettings) error {
	return s.userRepo.UpdateNotificationSettings(ctx, userID, settings)
}

// Block hides two users from each other's feeds
func (s *UserService) Block(ctx context.Context, blockerID, targetID string) error {
	if blockerID == targetID {
		return fmt.Errorf("cannot block yourself")
	}
	return s.userRepo.Block(ctx, blockerID, targetID)
}

// Unblock reverses a block
func (s *UserService) Unblock(ctx context.Context, blockerID, targetID string) error {
	return s.userRepo.Unblock(ctx, blockerID, targetID)
}

// Notifications pages through the archived notification history,
// newest first.
func (s *UserService) Notifications(ctx context.Context, userID string, before time.Time, limit int) ([]models.Notification, error) {
	if s.archive == nil {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return user.Notifications, nil
	}
	return s.archive.List(ctx, userID, before, limit)
}

// MarkNotificationRead flips the read flag on an embedded notification
func (s *UserService) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	return s.userRepo.MarkNotificationRead(ctx, userID, notificationID)
}
