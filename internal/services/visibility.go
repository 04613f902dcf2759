package services

import (
	"strconv"
	"strings"
	"time"

	"nearby-activity-backend/internal/config"
	"nearby-activity-backend/internal/geo"
	"nearby-activity-backend/internal/models"
	"nearby-activity-backend/internal/schedule"
)

// ViewerContext is everything the policy needs to know about the viewer
// of a feed: identity, the feed origin coordinates, the set of creator
// ids the viewer holds an active connection with, and the union of both
// block directions.
type ViewerContext struct {
	UserID            string
	Origin            *models.Coordinates
	ActiveConnections map[string]bool
	Blocked           map[string]bool
}

// VisibilityPolicy decides, per (viewer, activity) pair, whether an
// activity may appear in the viewer's feed. All gates must pass; every
// unresolvable input fails closed.
type VisibilityPolicy struct {
	radiusMiles float64
	buffer      time.Duration
}

// NewVisibilityPolicy creates a policy from the engine config. The feed
// radius is the one "nearby" boundary every feed path shares.
func NewVisibilityPolicy(cfg config.EngineConfig) *VisibilityPolicy {
	return &VisibilityPolicy{
		radiusMiles: cfg.FeedRadiusMiles,
		buffer:      time.Duration(cfg.ExpiryBufferMinutes) * time.Minute,
	}
}

// Buffer returns the expiry grace period the policy applies.
func (p *VisibilityPolicy) Buffer() time.Duration {
	return p.buffer
}

// Visible evaluates all visibility gates for the viewer against one
// activity at the given instant.
func (p *VisibilityPolicy) Visible(viewer ViewerContext, act models.Activity, now time.Time) bool {
	if viewer.Blocked[act.CreatorID] {
		return false
	}

	// Activities without coordinates never appear in geofenced feeds.
	if act.Location == nil {
		return false
	}

	switch act.Kind {
	case models.KindEvent:
		if act.StartTime == nil || !act.StartTime.After(now) {
			return false
		}
	default:
		if !schedule.StillActive(act.CreatedAt, act.Duration, now, p.buffer) {
			return false
		}
	}

	privileged := viewer.UserID == act.CreatorID || act.HasParticipant(viewer.UserID)

	switch act.VisibilityType {
	case models.VisibilityOpen:
	case models.VisibilityInviteOnly:
		if !privileged {
			return false
		}
	case models.VisibilityFriendsOnly:
		// Pending connections do not qualify.
		if !privileged && !viewer.ActiveConnections[act.CreatorID] {
			return false
		}
	default:
		return false
	}

	if viewer.Origin == nil {
		return false
	}
	d := geo.DistanceMiles(viewer.Origin.Latitude, viewer.Origin.Longitude,
		act.Location.Latitude, act.Location.Longitude)
	if !(d <= p.radiusMiles) {
		return false
	}

	if !privileged {
		if max, ok := parseMaxParticipants(act.MaxParticipants); ok && act.ParticipantCount >= max {
			return false
		}
	}

	return true
}

// parseMaxParticipants extracts a finite participant cap from a
// free-form string such as "2 people". "Unlimited", empty, or anything
// without a positive number means no cap.
func parseMaxParticipants(s string) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "" || strings.Contains(lower, "unlimited") {
		return 0, false
	}
	for _, field := range strings.Fields(lower) {
		if v, err := strconv.Atoi(field); err == nil && v > 0 {
			return v, true
		}
	}
	return 0, false
}
