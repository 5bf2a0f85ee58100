package models

import "time"

type UserStatus string

const (
	UserActive    UserStatus = "ACTIVE"
	UserSuspended UserStatus = "SUSPENDED"
	UserDeleted   UserStatus = "DELETED"
)

// User is the account record a profile belongs to
type User struct {
	ID                  string     `json:"id"`
	Status              UserStatus `json:"status"`
	OnboardingCompleted bool       `json:"onboarding_completed"`
	CreatedAt           time.Time  `json:"created_at"`
	LastActiveAt        time.Time  `json:"last_active_at"`
}

type Gender string

const (
	GenderMale      Gender = "MALE"
	GenderFemale    Gender = "FEMALE"
	GenderNonBinary Gender = "NON_BINARY"
	GenderOther     Gender = "OTHER"
)

type RelationshipIntent string

const (
	IntentLongTerm   RelationshipIntent = "LONG_TERM"
	IntentShortTerm  RelationshipIntent = "SHORT_TERM"
	IntentMarriage   RelationshipIntent = "MARRIAGE"
	IntentFriendship RelationshipIntent = "FRIENDSHIP"
	IntentUnsure     RelationshipIntent = "UNSURE"
)

// Values holds the ranked values a user picked during onboarding
type Values struct {
	Top []string `json:"top"`
}

// Lifestyle is a free-form attribute map, e.g. {"fitness": 7, "smoking": "never"}
type Lifestyle map[string]any

// Number returns the attribute as a float when it holds a numeric value.
func (l Lifestyle) Number(key string) (float64, bool) {
	switch v := l[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	default:
		return 0, false
	}
}

// Profile represents a user's dating profile together with its stored strength breakdown
type Profile struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"user_id"`
	FirstName          string             `json:"first_name"`
	DisplayName        string             `json:"display_name"`
	BirthDate          time.Time          `json:"birth_date"`
	Gender             Gender             `json:"gender"`
	GenderPreferences  []Gender           `json:"gender_preferences"`
	City               string             `json:"city,omitempty"`
	State              string             `json:"state,omitempty"`
	Country            string             `json:"country,omitempty"`
	Bio                string             `json:"bio,omitempty"`
	Height             int                `json:"height,omitempty"`
	RelationshipIntent RelationshipIntent `json:"relationship_intent,omitempty"`
	Values             Values             `json:"values"`
	Lifestyle          Lifestyle          `json:"lifestyle,omitempty"`
	Dealbreakers       []string           `json:"dealbreakers,omitempty"`
	Strength           ProfileStrength    `json:"strength"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// Accepts reports whether g is among the profile's gender preferences.
func (p *Profile) Accepts(g Gender) bool {
	for _, pref := range p.GenderPreferences {
		if pref == g {
			return true
		}
	}
	return false
}

type Photo struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	URL       string    `json:"url"`
	IsMain    bool      `json:"is_main"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// Prompt is a question/answer pair shown on a profile
type Prompt struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

type Like struct {
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Match is created on a mutual like. Compatibility is a snapshot taken at
// creation time and is never recomputed.
type Match struct {
	ID              string        `json:"id"`
	UserAID         string        `json:"user_a_id"`
	UserBID         string        `json:"user_b_id"`
	Compatibility   Compatibility `json:"compatibility"`
	ConfidenceLevel float64       `json:"confidence_level"`
	IsActive        bool          `json:"is_active"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Other returns the id of the participant that is not userID.
func (m *Match) Other(userID string) string {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

// Includes reports whether userID is one of the two participants.
func (m *Match) Includes(userID string) bool {
	return m.UserAID == userID || m.UserBID == userID
}

type MessageStatus string

const (
	MessageSent      MessageStatus = "SENT"
	MessageDelivered MessageStatus = "DELIVERED"
	MessageRead      MessageStatus = "READ"
)

// Message is a chat message inside a match with its safety analysis
type Message struct {
	ID          string        `json:"id"`
	MatchID     string        `json:"match_id"`
	SenderID    string        `json:"sender_id"`
	ReceiverID  string        `json:"receiver_id"`
	Content     string        `json:"content"`
	SafetyScore int           `json:"safety_score"`
	SafetyFlags []string      `json:"safety_flags"`
	Status      MessageStatus `json:"status"`
	ReadAt      *time.Time    `json:"read_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

type ScheduledDate struct {
	ID            string    `json:"id"`
	MatchID       string    `json:"match_id"`
	SchedulerID   string    `json:"scheduler_id"`
	PartnerID     string    `json:"partner_id"`
	DateTime      time.Time `json:"date_time"`
	Location      string    `json:"location,omitempty"`
	IsPublicPlace bool      `json:"is_public_place"`
	CreatedAt     time.Time `json:"created_at"`
}
