package services

import (
	"testing"
	"time"

	"nearby-activity-backend/internal/config"
	"nearby-activity-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

var testEngineConfig = config.EngineConfig{
	FeedRadiusMiles:     40,
	FeedLimit:           3,
	SnapshotSize:        5,
	ExpiryBufferMinutes: 30,
	FanoutWorkers:       2,
}

func coords(lat, lon float64) *models.Coordinates {
	return &models.Coordinates{Latitude: lat, Longitude: lon}
}

// origin is downtown San Francisco; latitude offsets give predictable
// mile distances (1 degree of latitude is about 69 miles).
var origin = models.Coordinates{Latitude: 37.7749, Longitude: -122.4194}

func baseViewer() ViewerContext {
	return ViewerContext{
		UserID:            "viewer",
		Origin:            &origin,
		ActiveConnections: map[string]bool{},
		Blocked:           map[string]bool{},
	}
}

func basePing(now time.Time) models.Activity {
	return models.Activity{
		ID:               "act-1",
		Kind:             models.KindPing,
		CreatorID:        "creator",
		CreatorName:      "Casey",
		Title:            "Coffee run",
		Location:         coords(origin.Latitude, origin.Longitude),
		VisibilityType:   models.VisibilityOpen,
		Duration:         "2 hours",
		Participants:     []string{"creator"},
		ParticipantCount: 1,
		Status:           models.ActivityStatusActive,
		CreatedAt:        now.Add(-10 * time.Minute),
	}
}

func TestVisibilityPolicy(t *testing.T) {
	policy := NewVisibilityPolicy(testEngineConfig)
	now := time.Date(2026, 8, 24, 14, 0, 0, 0, time.UTC)

	t.Run("open ping nearby is visible", func(t *testing.T) {
		assert.True(t, policy.Visible(baseViewer(), basePing(now), now))
	})

	t.Run("no coordinates never shows", func(t *testing.T) {
		act := basePing(now)
		act.Location = nil
		assert.False(t, policy.Visible(baseViewer(), act, now))
	})

	t.Run("expired ping is hidden", func(t *testing.T) {
		act := basePing(now)
		act.CreatedAt = now.Add(-3 * time.Hour)
		assert.False(t, policy.Visible(baseViewer(), act, now))
	})

	t.Run("unparseable duration fails closed", func(t *testing.T) {
		act := basePing(now)
		act.Duration = "forever"
		assert.False(t, policy.Visible(baseViewer(), act, now))
	})

	t.Run("event visible only before start", func(t *testing.T) {
		act := basePing(now)
		act.Kind = models.KindEvent
		act.Duration = ""
		future := now.Add(2 * time.Hour)
		act.StartTime = &future
		assert.True(t, policy.Visible(baseViewer(), act, now))

		past := now.Add(-time.Minute)
		act.StartTime = &past
		assert.False(t, policy.Visible(baseViewer(), act, now))
	})

	t.Run("friends-only connection tiers", func(t *testing.T) {
		act := basePing(now)
		act.VisibilityType = models.VisibilityFriendsOnly

		stranger := baseViewer()
		assert.False(t, policy.Visible(stranger, act, now), "no connection")

		pending := baseViewer()
		// pending connections are deliberately absent from the active set
		assert.False(t, policy.Visible(pending, act, now), "pending connection")

		friend := baseViewer()
		friend.ActiveConnections["creator"] = true
		assert.True(t, policy.Visible(friend, act, now), "active connection")
	})

	t.Run("friends-only passes for creator and participant", func(t *testing.T) {
		act := basePing(now)
		act.VisibilityType = models.VisibilityFriendsOnly
		act.Participants = []string{"creator", "member"}
		act.ParticipantCount = 2

		creator := baseViewer()
		creator.UserID = "creator"
		assert.True(t, policy.Visible(creator, act, now))

		member := baseViewer()
		member.UserID = "member"
		assert.True(t, policy.Visible(member, act, now))
	})

	t.Run("invite-only hides from strangers", func(t *testing.T) {
		act := basePing(now)
		act.VisibilityType = models.VisibilityInviteOnly
		assert.False(t, policy.Visible(baseViewer(), act, now))

		member := baseViewer()
		member.UserID = "member"
		act.Participants = []string{"creator", "member"}
		assert.True(t, policy.Visible(member, act, now))
	})

	t.Run("distance gate", func(t *testing.T) {
		act := basePing(now)
		// about 41 miles north, past the 40 mile feed radius
		act.Location = coords(origin.Latitude+0.6, origin.Longitude)
		assert.False(t, policy.Visible(baseViewer(), act, now))

		// about 21 miles north, inside
		act.Location = coords(origin.Latitude+0.3, origin.Longitude)
		assert.True(t, policy.Visible(baseViewer(), act, now))
	})

	t.Run("missing viewer origin fails closed", func(t *testing.T) {
		viewer := baseViewer()
		viewer.Origin = nil
		assert.False(t, policy.Visible(viewer, basePing(now), now))
	})

	t.Run("capacity gate", func(t *testing.T) {
		act := basePing(now)
		act.MaxParticipants = "2 people"
		act.Participants = []string{"creator", "member"}
		act.ParticipantCount = 2

		stranger := baseViewer()
		assert.False(t, policy.Visible(stranger, act, now), "full activity hidden from stranger")

		creator := baseViewer()
		creator.UserID = "creator"
		assert.True(t, policy.Visible(creator, act, now), "creator still sees it")

		member := baseViewer()
		member.UserID = "member"
		assert.True(t, policy.Visible(member, act, now), "participant still sees it")
	})

	t.Run("unlimited capacity never hides", func(t *testing.T) {
		act := basePing(now)
		act.MaxParticipants = "Unlimited"
		act.ParticipantCount = 50
		assert.True(t, policy.Visible(baseViewer(), act, now))
	})

	t.Run("blocked pairs are excluded", func(t *testing.T) {
		viewer := baseViewer()
		viewer.Blocked["creator"] = true
		assert.False(t, policy.Visible(viewer, basePing(now), now))
	})
}

func TestParseMaxParticipants(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"2 people", 2, true},
		{"10", 10, true},
		{"Unlimited", 0, false},
		{"", 0, false},
		{"a few", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseMaxParticipants(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
