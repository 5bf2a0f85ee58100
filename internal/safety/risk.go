// Package safety turns reports and message analyses into risk levels and
// pre-date guidance.
package safety

import (
	"math"

	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/scoring"
)

// FlaggedBelow is the safety score under which a message counts as flagged.
const FlaggedBelow = 70

const (
	reportWeight  = 0.40
	messageWeight = 0.35
	// behaviorWeight has no input yet and always contributes zero.
	behaviorWeight = 0.25

	pointsPerReport = 20
)

// AssessRisk computes a risk index from the number of reports against a user
// and the safety scores of their flagged messages.
func AssessRisk(userID string, reports int, flaggedScores []int) models.RiskAssessment {
	reportScore := scoring.Clamp(reports * pointsPerReport)

	messageRisk := 0
	if len(flaggedScores) > 0 {
		sum := 0
		for _, s := range flaggedScores {
			sum += s
		}
		messageRisk = scoring.Round(100 - float64(sum)/float64(len(flaggedScores)))
	}

	index := int(math.Round(float64(reportScore)*reportWeight + float64(messageRisk)*messageWeight + 0*behaviorWeight))
	return models.RiskAssessment{
		UserID:           userID,
		RiskIndex:        index,
		RiskLevel:        Level(index),
		ReportScore:      reportScore,
		MessageRiskScore: messageRisk,
	}
}

// Level maps a risk index onto a moderation tier.
func Level(index int) models.RiskLevel {
	switch {
	case index >= 80:
		return models.RiskManualReview
	case index >= 60:
		return models.RiskRestricted
	case index >= 30:
		return models.RiskMonitor
	default:
		return models.RiskNormal
	}
}

// Escalated reports whether moving from prev to next raises the tier.
func Escalated(prev, next models.RiskLevel) bool {
	return rank(next) > rank(prev)
}

func rank(l models.RiskLevel) int {
	switch l {
	case models.RiskMonitor:
		return 1
	case models.RiskRestricted:
		return 2
	case models.RiskManualReview:
		return 3
	default:
		return 0
	}
}
