// Package trust folds a user's recent behavior log into a trust score.
package trust

import (
	"time"

	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/scoring"
)

// Window is how far back behavior counts toward the score.
const Window = 30 * 24 * time.Hour

const DefaultScore = 50

// ToneConsistencyScore is a placeholder; message tone is not analysed yet.
const ToneConsistencyScore = 50

const (
	weightReplyPattern    = 0.25
	weightCommitment      = 0.30
	weightRespect         = 0.30
	weightToneConsistency = 0.15

	noReportsRespect = 80
	reportPenalty    = 20
)

// Default is the score a user has before any behavior is logged.
func Default(userID string, now time.Time) models.TrustScore {
	return models.TrustScore{
		UserID:           userID,
		Overall:          DefaultScore,
		ReplyPattern:     DefaultScore,
		Commitment:       DefaultScore,
		Respect:          DefaultScore,
		ToneConsistency:  DefaultScore,
		LastCalculatedAt: now,
	}
}

// Recalculate rebuilds the trust score from entries within Window of now.
// Entries for other users are ignored. With nothing in the window the user
// keeps the default score.
func Recalculate(userID string, entries []models.BehaviorLogEntry, now time.Time) models.TrustScore {
	since := now.Add(-Window)

	var seen, messages, completed, cancelled, reports int
	for _, e := range entries {
		if e.UserID != userID || e.CreatedAt.Before(since) {
			continue
		}
		seen++
		switch e.BehaviorType {
		case models.BehaviorMessageSent, models.BehaviorMessageReceived:
			messages++
		case models.BehaviorDateCompleted:
			completed++
		case models.BehaviorDateCancelled:
			cancelled++
		case models.BehaviorReportFiled:
			reports++
		}
	}

	if seen == 0 {
		return Default(userID, now)
	}

	s := models.TrustScore{
		UserID:           userID,
		ReplyPattern:     DefaultScore,
		Commitment:       DefaultScore,
		Respect:          noReportsRespect,
		ToneConsistency:  ToneConsistencyScore,
		LastCalculatedAt: now,
	}
	if messages > 0 {
		s.ReplyPattern = scoring.Clamp(DefaultScore + messages)
	}
	if completed+cancelled > 0 {
		s.Commitment = scoring.Round(float64(completed) / float64(completed+cancelled) * 100)
	}
	if reports > 0 {
		s.Respect = scoring.Clamp(100 - reportPenalty*reports)
	}

	s.Overall = scoring.Weighted(
		scoring.Part{Score: float64(s.ReplyPattern), Weight: weightReplyPattern},
		scoring.Part{Score: float64(s.Commitment), Weight: weightCommitment},
		scoring.Part{Score: float64(s.Respect), Weight: weightRespect},
		scoring.Part{Score: float64(s.ToneConsistency), Weight: weightToneConsistency},
	)
	return s
}
