package models

import "time"

// Coordinates is a geographic point
type Coordinates struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Window is a single-day availability window, both bounds as 24-hour "HH:MM"
type Window struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// WeeklySchedule maps a lowercase weekday name ("monday"..."sunday") to its
// window. A missing day means unavailable that day.
type WeeklySchedule map[string]Window

// NotificationSettings holds the global toggle plus per-category mutes
type NotificationSettings struct {
	Enabled         bool            `bson:"enabled" json:"enabled"`
	MutedCategories map[string]bool `bson:"muted_categories,omitempty" json:"muted_categories,omitempty"`
}

// User represents a user in the system
type User struct {
	ID                   string               `bson:"_id" json:"id"`
	DisplayName          string               `bson:"display_name" json:"display_name"`
	Location             *Coordinates         `bson:"location,omitempty" json:"location,omitempty"`
	LocationCapturedAt   *time.Time           `bson:"location_captured_at,omitempty" json:"location_captured_at,omitempty"`
	LocationLabel        string               `bson:"location_label,omitempty" json:"location_label,omitempty"`
	Schedule             WeeklySchedule       `bson:"schedule,omitempty" json:"schedule,omitempty"`
	ConnectionIntents    []string             `bson:"connection_intents,omitempty" json:"connection_intents,omitempty"`
	EventPreferences     map[string]bool      `bson:"event_preferences,omitempty" json:"event_preferences,omitempty"`
	PushToken            *string              `bson:"push_token,omitempty" json:"push_token,omitempty"`
	NotificationSettings NotificationSettings `bson:"notification_settings" json:"notification_settings"`
	Notifications        []Notification       `bson:"notifications,omitempty" json:"notifications,omitempty"`
	BlockedUsers         []string             `bson:"blocked_users,omitempty" json:"blocked_users,omitempty"`
	BlockedBy            []string             `bson:"blocked_by,omitempty" json:"blocked_by,omitempty"`
	CreatedAt            time.Time            `bson:"created_at" json:"created_at"`
}

// Connection status values
const (
	ConnectionPending = "pending"
	ConnectionActive  = "active"
)

// Connection represents a relationship between exactly two users.
// At most one connection per unordered pair is meaningful; lookups scan
// both participant slots rather than assuming the store enforces uniqueness.
type Connection struct {
	ID          string    `bson:"_id" json:"id"`
	UserAID     string    `bson:"user_a_id" json:"user_a_id"`
	UserBID     string    `bson:"user_b_id" json:"user_b_id"`
	Status      string    `bson:"status" json:"status"`
	InitiatorID string    `bson:"initiator_id" json:"initiator_id"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// Other returns the participant that is not userID, or "" if userID is
// not part of the connection.
func (c Connection) Other(userID string) string {
	switch userID {
	case c.UserAID:
		return c.UserBID
	case c.UserBID:
		return c.UserAID
	}
	return ""
}

// Visibility tiers for an activity
const (
	VisibilityOpen        = "open"
	VisibilityInviteOnly  = "invite-only"
	VisibilityFriendsOnly = "friends-only"
)

// Activity kinds
const (
	KindPing  = "ping"
	KindEvent = "event"
)

// ActivityStatusActive is the only status ever written to storage; expiry
// is always computed from creation time and duration, never persisted.
const ActivityStatusActive = "active"

// Activity is a ping or a scheduled event. A ping carries a free-form
// Duration and derives its expiry from CreatedAt; an event carries an
// explicit StartTime and no duration.
type Activity struct {
	ID                string       `bson:"_id" json:"id"`
	Kind              string       `bson:"kind" json:"kind"`
	CreatorID         string       `bson:"creator_id" json:"creator_id"`
	CreatorName       string       `bson:"creator_name" json:"creator_name"`
	Title             string       `bson:"title" json:"title"`
	Description       string       `bson:"description,omitempty" json:"description,omitempty"`
	Category          string       `bson:"category,omitempty" json:"category,omitempty"`
	Location          *Coordinates `bson:"location,omitempty" json:"location,omitempty"`
	VisibilityType    string       `bson:"visibility_type" json:"visibility_type"`
	VisibilityRadius  string       `bson:"visibility_radius,omitempty" json:"visibility_radius,omitempty"`
	Duration          string       `bson:"duration,omitempty" json:"duration,omitempty"`
	StartTime         *time.Time   `bson:"start_time,omitempty" json:"start_time,omitempty"`
	MaxParticipants   string       `bson:"max_participants,omitempty" json:"max_participants,omitempty"`
	Participants      []string     `bson:"participants" json:"participants"`
	ParticipantCount  int          `bson:"participant_count" json:"participant_count"`
	ConnectionIntents []string     `bson:"connection_intents,omitempty" json:"connection_intents,omitempty"`
	Status            string       `bson:"status" json:"status"`
	CreatedAt         time.Time    `bson:"created_at" json:"created_at"`
}

// HasParticipant reports whether userID is in the participant set
func (a Activity) HasParticipant(userID string) bool {
	for _, p := range a.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// PrimaryTime is the instant the feed sorts by: an event's start time when
// set, otherwise creation time.
func (a Activity) PrimaryTime() time.Time {
	if a.Kind == KindEvent && a.StartTime != nil {
		return *a.StartTime
	}
	return a.CreatedAt
}

// NotificationData is the typed notification payload, discriminated by
// Type. The ids carried are what a client needs to navigate to the
// referenced activity.
type NotificationData struct {
	Type          string  `bson:"type" json:"type"`
	ActivityID    string  `bson:"activity_id,omitempty" json:"activity_id,omitempty"`
	CreatorName   string  `bson:"creator_name,omitempty" json:"creator_name,omitempty"`
	Category      string  `bson:"category,omitempty" json:"category,omitempty"`
	DistanceMiles float64 `bson:"distance_miles" json:"distance_miles"`
}

// Notification is a single delivered notification record
type Notification struct {
	ID        string           `bson:"id" json:"id"`
	Title     string           `bson:"title" json:"title"`
	Body      string           `bson:"body" json:"body"`
	Data      NotificationData `bson:"data" json:"data"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
	Read      bool             `bson:"read" json:"read"`
}
