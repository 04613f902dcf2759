package services

import (
	"testing"
	"time"

	"nearby-activity-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 14:00 UTC; candidate schedules below cover this window.
var matchNow = time.Date(2026, 8, 24, 14, 0, 0, 0, time.UTC)

func availableAllDayMonday() models.WeeklySchedule {
	return models.WeeklySchedule{"monday": {Start: "08:00", End: "22:00"}}
}

func candidate(id string, milesNorth float64) models.User {
	return models.User{
		ID:                id,
		DisplayName:       id,
		Location:          coords(origin.Latitude+milesNorth/69.0, origin.Longitude),
		Schedule:          availableAllDayMonday(),
		ConnectionIntents: []string{"Food & Dining"},
	}
}

func matchActivity(visibility string) models.Activity {
	return models.Activity{
		ID:                "act-1",
		Kind:              models.KindPing,
		CreatorID:         "creator",
		CreatorName:       "Casey",
		Title:             "Lunch nearby",
		Location:          coords(origin.Latitude, origin.Longitude),
		VisibilityType:    visibility,
		VisibilityRadius:  "10 miles",
		Duration:          "2 hours",
		ConnectionIntents: []string{"Food & Dining"},
		CreatedAt:         matchNow,
	}
}

func TestMatchScorerOpen(t *testing.T) {
	scorer := NewMatchScorer()
	creator := models.User{ID: "creator"}
	act := matchActivity(models.VisibilityOpen)

	t.Run("in radius with shared intent matches, out of radius does not", func(t *testing.T) {
		b := candidate("b", 5)
		c := candidate("c", 15)

		matched := scorer.Match(act, creator, []models.User{b, c}, nil, matchNow)
		require.Len(t, matched, 1)
		assert.Equal(t, "b", matched[0].User.ID)
		assert.InDelta(t, 5, matched[0].DistanceMiles, 0.2)
	})

	t.Run("unavailable candidate excluded", func(t *testing.T) {
		b := candidate("b", 5)
		b.Schedule = models.WeeklySchedule{"tuesday": {Start: "08:00", End: "22:00"}}
		assert.Empty(t, scorer.Match(act, creator, []models.User{b}, nil, matchNow))
	})

	t.Run("no shared intent excluded", func(t *testing.T) {
		b := candidate("b", 5)
		b.ConnectionIntents = []string{"Hiking"}
		assert.Empty(t, scorer.Match(act, creator, []models.User{b}, nil, matchNow))
	})

	t.Run("missing coordinates is a hard exclusion", func(t *testing.T) {
		b := candidate("b", 5)
		b.Location = nil
		assert.Empty(t, scorer.Match(act, creator, []models.User{b}, nil, matchNow))
	})

	t.Run("creator never matches itself", func(t *testing.T) {
		self := candidate("creator", 1)
		assert.Empty(t, scorer.Match(act, creator, []models.User{self}, nil, matchNow))
	})
}

func TestMatchScorerFriendsOnly(t *testing.T) {
	scorer := NewMatchScorer()
	creator := models.User{ID: "creator", EventPreferences: map[string]bool{"outdoors": true, "food": true}}
	act := matchActivity(models.VisibilityFriendsOnly)
	active := map[string]bool{"friend": true, "far-friend": true, "offline-friend": true}

	t.Run("only active connections qualify", func(t *testing.T) {
		friend := candidate("friend", 5)
		stranger := candidate("stranger", 5)

		matched := scorer.Match(act, creator, []models.User{friend, stranger}, active, matchNow)
		require.Len(t, matched, 1)
		assert.Equal(t, "friend", matched[0].User.ID)
	})

	t.Run("missing coordinates is soft here", func(t *testing.T) {
		friend := candidate("friend", 5)
		friend.Location = nil

		matched := scorer.Match(act, creator, []models.User{friend}, active, matchNow)
		require.Len(t, matched, 1)
		assert.Equal(t, float64(-1), matched[0].DistanceMiles)
	})

	t.Run("present coordinates still respect the radius", func(t *testing.T) {
		far := candidate("far-friend", 15)
		assert.Empty(t, scorer.Match(act, creator, []models.User{far}, active, matchNow))
	})

	t.Run("availability still required", func(t *testing.T) {
		friend := candidate("offline-friend", 5)
		friend.Schedule = nil
		assert.Empty(t, scorer.Match(act, creator, []models.User{friend}, active, matchNow))
	})

	t.Run("shared preferences reported but never gate", func(t *testing.T) {
		friend := candidate("friend", 5)
		friend.EventPreferences = map[string]bool{"outdoors": true, "food": false}

		matched := scorer.Match(act, creator, []models.User{friend}, active, matchNow)
		require.Len(t, matched, 1)
		assert.Equal(t, 1, matched[0].SharedPreferences)

		friend.EventPreferences = nil
		matched = scorer.Match(act, creator, []models.User{friend}, active, matchNow)
		require.Len(t, matched, 1, "zero overlap still matches")
		assert.Equal(t, 0, matched[0].SharedPreferences)
	})
}
