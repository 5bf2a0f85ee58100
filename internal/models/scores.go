package models

import "time"

// TextAnalysisResult is the output of a safety, intent or consistency analysis.
// Flags keep detection order and may repeat.
type TextAnalysisResult struct {
	Score    int      `json:"score"`
	Flags    []string `json:"flags"`
	Insights []string `json:"insights"`
}

// HasFlag reports whether flag was raised at least once.
func (r TextAnalysisResult) HasFlag(flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

type QualityFactors struct {
	Specificity  int `json:"specificity"`
	Depth        int `json:"depth"`
	Authenticity int `json:"authenticity"`
}

// AnswerQuality scores a single free-text answer
type AnswerQuality struct {
	Score   int            `json:"score"`
	Factors QualityFactors `json:"factors"`
}

// ProfileStrength is owned by a Profile and overwritten on every profile mutation
type ProfileStrength struct {
	Overall      int      `json:"overall"`
	Completeness int      `json:"completeness"`
	Specificity  int      `json:"specificity"`
	Consistency  int      `json:"consistency"`
	Stability    int      `json:"stability"`
	Tips         []string `json:"tips,omitempty"`
}

// Compatibility between two profiles. Friction is nil when nothing stands out.
type Compatibility struct {
	Overall       int      `json:"overall"`
	Values        int      `json:"values"`
	Lifestyle     int      `json:"lifestyle"`
	Intent        int      `json:"intent"`
	Communication int      `json:"communication"`
	Logistics     int      `json:"logistics"`
	Reasons       []string `json:"reasons"`
	Friction      *string  `json:"friction"`
}

// TrustScore is one per user, recomputed from the trailing behavior window
type TrustScore struct {
	UserID           string    `json:"user_id"`
	Overall          int       `json:"overall"`
	ReplyPattern     int       `json:"reply_pattern"`
	Commitment       int       `json:"commitment"`
	Respect          int       `json:"respect"`
	ToneConsistency  int       `json:"tone_consistency"`
	LastCalculatedAt time.Time `json:"last_calculated_at"`
}

type BehaviorType string

const (
	BehaviorMessageSent     BehaviorType = "MESSAGE_SENT"
	BehaviorMessageReceived BehaviorType = "MESSAGE_RECEIVED"
	BehaviorLikeSent        BehaviorType = "LIKE_SENT"
	BehaviorLikeReceived    BehaviorType = "LIKE_RECEIVED"
	BehaviorMatchCreated    BehaviorType = "MATCH_CREATED"
	BehaviorDateScheduled   BehaviorType = "DATE_SCHEDULED"
	BehaviorDateCompleted   BehaviorType = "DATE_COMPLETED"
	BehaviorDateCancelled   BehaviorType = "DATE_CANCELLED"
	BehaviorReportFiled     BehaviorType = "REPORT_FILED"
	BehaviorBlockCreated    BehaviorType = "BLOCK_CREATED"
	BehaviorProfileUpdated  BehaviorType = "PROFILE_UPDATED"
)

// BehaviorTypes lists every known behavior type.
var BehaviorTypes = []BehaviorType{
	BehaviorMessageSent,
	BehaviorMessageReceived,
	BehaviorLikeSent,
	BehaviorLikeReceived,
	BehaviorMatchCreated,
	BehaviorDateScheduled,
	BehaviorDateCompleted,
	BehaviorDateCancelled,
	BehaviorReportFiled,
	BehaviorBlockCreated,
	BehaviorProfileUpdated,
}

// Valid reports whether t is a known behavior type.
func (t BehaviorType) Valid() bool {
	for _, known := range BehaviorTypes {
		if t == known {
			return true
		}
	}
	return false
}

// BehaviorLogEntry is append-only. Score is the point value recorded for audit.
type BehaviorLogEntry struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	BehaviorType BehaviorType `json:"behavior_type"`
	Score        int          `json:"score"`
	Metadata     string       `json:"metadata,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
