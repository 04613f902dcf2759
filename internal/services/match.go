package services

import (
	"time"

	"nearby-activity-backend/internal/geo"
	"nearby-activity-backend/internal/models"
	"nearby-activity-backend/internal/schedule"
)

// Candidate is one user selected for a notification about a newly
// created activity. DistanceMiles is negative when no distance could be
// computed. SharedPreferences is informational only: it never gates or
// ranks the selection.
type Candidate struct {
	User              models.User
	DistanceMiles     float64
	SharedPreferences int
}

// MatchScorer selects notification recipients at activity-creation
// time. It is distinct from VisibilityPolicy, which runs continuously
// for feed display: matching happens once and tolerates missing
// candidate coordinates for friends-only activities.
type MatchScorer struct{}

func NewMatchScorer() *MatchScorer {
	return &MatchScorer{}
}

// Match returns the subset of candidates that should be notified about
// the activity. activeConnections is the set of user ids holding an
// active connection with the creator. Order carries no meaning.
func (s *MatchScorer) Match(act models.Activity, creator models.User, candidates []models.User, activeConnections map[string]bool, now time.Time) []Candidate {
	friendsOnly := act.VisibilityType == models.VisibilityFriendsOnly
	radius, radiusOK := geo.ParseRadiusMiles(act.VisibilityRadius)

	var matched []Candidate
	for _, cand := range candidates {
		if cand.ID == act.CreatorID {
			continue
		}
		if friendsOnly && !activeConnections[cand.ID] {
			continue
		}
		if !schedule.AvailableAt(cand.Schedule, now) {
			continue
		}

		dist := candidateDistance(act, cand)

		if friendsOnly {
			// Coordinates are a soft requirement here: a candidate
			// without a fix is still notified.
			if dist >= 0 && radiusOK && dist > radius {
				continue
			}
		} else {
			if !sharesIntent(act.ConnectionIntents, cand.ConnectionIntents) {
				continue
			}
			// Hard requirement: no computable in-radius distance, no match.
			if dist < 0 || !radiusOK || dist > radius {
				continue
			}
		}

		matched = append(matched, Candidate{
			User:              cand,
			DistanceMiles:     dist,
			SharedPreferences: sharedPreferenceCount(creator.EventPreferences, cand.EventPreferences),
		})
	}
	return matched
}

// candidateDistance returns miles between the activity and the
// candidate, or -1 when either side lacks coordinates.
func candidateDistance(act models.Activity, cand models.User) float64 {
	if act.Location == nil || cand.Location == nil {
		return -1
	}
	return geo.DistanceMiles(act.Location.Latitude, act.Location.Longitude,
		cand.Location.Latitude, cand.Location.Longitude)
}

func sharesIntent(activityIntents, candidateIntents []string) bool {
	for _, a := range activityIntents {
		for _, c := range candidateIntents {
			if a == c {
				return true
			}
		}
	}
	return false
}

// sharedPreferenceCount counts flags both sides have switched on.
// Reported on the match result but never consulted for selection.
func sharedPreferenceCount(a, b map[string]bool) int {
	n := 0
	for k, v := range a {
		if v && b[k] {
			n++
		}
	}
	return n
}
