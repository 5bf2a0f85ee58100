package models

import "time"

type ReportType string

const (
	ReportHarassment    ReportType = "HARASSMENT"
	ReportFakeProfile   ReportType = "FAKE_PROFILE"
	ReportInappropriate ReportType = "INAPPROPRIATE_CONTENT"
	ReportScam          ReportType = "SCAM"
	ReportUnderage      ReportType = "UNDERAGE"
	ReportOther         ReportType = "OTHER"
)

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	switch t {
	case ReportHarassment, ReportFakeProfile, ReportInappropriate, ReportScam, ReportUnderage, ReportOther:
		return true
	}
	return false
}

type Report struct {
	ID             string     `json:"id"`
	ReporterID     string     `json:"reporter_id"`
	ReportedUserID string     `json:"reported_user_id"`
	Type           ReportType `json:"type"`
	Description    string     `json:"description,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type RiskLevel string

const (
	RiskNormal       RiskLevel = "NORMAL"
	RiskMonitor      RiskLevel = "MONITOR"
	RiskRestricted   RiskLevel = "RESTRICTED"
	RiskManualReview RiskLevel = "MANUAL_REVIEW"
)

// RiskAssessment is recomputed whenever a report is filed against the user
type RiskAssessment struct {
	UserID           string    `json:"user_id"`
	RiskIndex        int       `json:"risk_index"`
	RiskLevel        RiskLevel `json:"risk_level"`
	ReportScore      int       `json:"report_score"`
	MessageRiskScore int       `json:"message_risk_score"`
	LastAssessedAt   time.Time `json:"last_assessed_at"`
}

type Block struct {
	BlockerID     string    `json:"blocker_id"`
	BlockedUserID string    `json:"blocked_user_id"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type SafetySignalType string

const (
	SignalVerifiedPhoto          SafetySignalType = "VERIFIED_PHOTO"
	SignalVerifiedEmail          SafetySignalType = "VERIFIED_EMAIL"
	SignalVerifiedPhone          SafetySignalType = "VERIFIED_PHONE"
	SignalConsistentProfile      SafetySignalType = "CONSISTENT_PROFILE"
	SignalResponsiveCommunicator SafetySignalType = "RESPONSIVE_COMMUNICATOR"
	SignalBoundariesRespected    SafetySignalType = "BOUNDARIES_RESPECTED"
	SignalLongTermUser           SafetySignalType = "LONG_TERM_USER"
)

// SafetySignalTypes lists every badge in display order.
var SafetySignalTypes = []SafetySignalType{
	SignalVerifiedPhoto, SignalVerifiedEmail, SignalVerifiedPhone, SignalConsistentProfile,
	SignalResponsiveCommunicator, SignalBoundariesRespected, SignalLongTermUser,
}

func (t SafetySignalType) Valid() bool {
	for _, known := range SafetySignalTypes {
		if t == known {
			return true
		}
	}
	return false
}

// SafetySignal is a verification badge earned by a user
type SafetySignal struct {
	UserID     string           `json:"user_id"`
	SignalType SafetySignalType `json:"type"`
	VerifiedAt time.Time        `json:"verified_at"`
	Label      string           `json:"label"`
}

type Recommendation string

const (
	RecommendLowRisk  Recommendation = "LOW_RISK"
	RecommendModerate Recommendation = "MODERATE"
	RecommendCaution  Recommendation = "CAUTION"
)

// PreDateCheck summarises a conversation before two matches meet
type PreDateCheck struct {
	SafetyScore    int            `json:"safety_score"`
	PartnerSignals []SafetySignal `json:"partner_signals"`
	Concerns       []string       `json:"concerns"`
	Suggestions    []string       `json:"suggestions"`
	Recommendation Recommendation `json:"recommendation"`
}
