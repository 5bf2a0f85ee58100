package safety

import (
	"strings"

	"github.com/xaenox/kindred/internal/analyzer"
	"github.com/xaenox/kindred/internal/models"
)

const (
	ConcernLanguage = "Some concerning language patterns detected in messages"
	ConcernPressure = "Pressure tactics detected in conversation"
)

// Suggestions are shown before every first date.
var Suggestions = []string{
	"Meet in a public place for your first date",
	"Tell a friend where you're going and when",
	"Enable location sharing with a trusted contact",
	"Arrange your own transportation",
}

// PreDateCheck analyses a conversation and the partner's verification signals.
func PreDateCheck(messages []string, partnerSignals []models.SafetySignal) models.PreDateCheck {
	analysis := analyzer.AnalyzeSafety(strings.Join(messages, "\n"))

	concerns := []string{}
	if analysis.Score < FlaggedBelow {
		concerns = append(concerns, ConcernLanguage)
	}
	if analysis.HasFlag(analyzer.FlagPressureLanguage) {
		concerns = append(concerns, ConcernPressure)
	}
	if partnerSignals == nil {
		partnerSignals = []models.SafetySignal{}
	}

	return models.PreDateCheck{
		SafetyScore:    analysis.Score,
		PartnerSignals: partnerSignals,
		Concerns:       concerns,
		Suggestions:    append([]string(nil), Suggestions...),
		Recommendation: Recommend(analysis.Score),
	}
}

func Recommend(score int) models.Recommendation {
	switch {
	case score >= 80:
		return models.RecommendLowRisk
	case score >= 60:
		return models.RecommendModerate
	default:
		return models.RecommendCaution
	}
}

var signalLabels = map[models.SafetySignalType]string{
	models.SignalVerifiedPhoto:          "Verified Photos",
	models.SignalVerifiedEmail:          "Verified Email",
	models.SignalVerifiedPhone:          "Verified Phone",
	models.SignalConsistentProfile:      "Consistent Profile",
	models.SignalResponsiveCommunicator: "Responsive Communicator",
	models.SignalBoundariesRespected:    "Respects Boundaries",
	models.SignalLongTermUser:           "Long-term Member",
}

// SignalLabel returns a display label, echoing unknown signal types.
func SignalLabel(t models.SafetySignalType) string {
	if label, ok := signalLabels[t]; ok {
		return label
	}
	return string(t)
}
