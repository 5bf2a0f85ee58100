// Package profile scores how complete and specific a dating profile is.
package profile

import (
	"unicode/utf8"

	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/scoring"
)

// Consistency, stability and behavior are fixed placeholders. They are not yet
// derived from edit history or behavior logs.
const (
	ConsistencyScore = 80
	StabilityScore   = 90
	BehaviorScore    = 50
)

const (
	weightCompleteness = 0.25
	weightSpecificity  = 0.25
	weightConsistency  = 0.20
	weightStability    = 0.15
	weightBehavior     = 0.15
)

const (
	MaxPhotos  = 6
	MaxPrompts = 3
	MaxTips    = 3
)

const (
	TipMorePhotos       = "Add more photos to increase your visibility"
	TipCompleteSections = "Complete all profile sections for better matches"
	TipDetailBio        = "Add more detail to your bio to stand out"
	TipLongerPrompts    = "Write longer, more thoughtful prompt answers"
	TipLookingGreat     = "Your profile is looking great!"
)

// CalculateStrength recomputes the full strength breakdown from the current
// profile, photos and prompts.
func CalculateStrength(p *models.Profile, photos []models.Photo, prompts []models.Prompt) models.ProfileStrength {
	s := models.ProfileStrength{
		Completeness: Completeness(p, len(photos), len(prompts)),
		Specificity:  Specificity(p, prompts),
		Consistency:  ConsistencyScore,
		Stability:    StabilityScore,
	}
	s.Overall = scoring.Weighted(
		scoring.Part{Score: float64(s.Completeness), Weight: weightCompleteness},
		scoring.Part{Score: float64(s.Specificity), Weight: weightSpecificity},
		scoring.Part{Score: float64(s.Consistency), Weight: weightConsistency},
		scoring.Part{Score: float64(s.Stability), Weight: weightStability},
		scoring.Part{Score: BehaviorScore, Weight: weightBehavior},
	)
	s.Tips = ImprovementTips(s)
	return s
}

// Completeness awards points for each filled section, capped at 100.
func Completeness(p *models.Profile, photos, prompts int) int {
	score := 0
	if p.FirstName != "" {
		score += 10
	}
	if bioLength(p) > 50 {
		score += 20
	}
	if photos > 0 {
		score += 20
	}
	if photos >= 3 {
		score += 10
	}
	if prompts > 0 {
		score += 15
	}
	if prompts >= 2 {
		score += 10
	}
	if p.RelationshipIntent != "" {
		score += 10
	}
	if p.City != "" {
		score += 5
	}
	return scoring.Clamp(score)
}

// Specificity rewards long bios and at least one substantial prompt answer.
func Specificity(p *models.Profile, prompts []models.Prompt) int {
	score := 50
	bio := bioLength(p)
	if bio > 100 {
		score += 20
	}
	if bio > 200 {
		score += 15
	}
	for _, pr := range prompts {
		if utf8.RuneCountInString(pr.Answer) > 50 {
			score += 15
			break
		}
	}
	return scoring.Clamp(score)
}

// ImprovementTips derives at most MaxTips suggestions from a breakdown.
func ImprovementTips(s models.ProfileStrength) []string {
	var tips []string
	if s.Completeness < 80 {
		tips = append(tips, TipMorePhotos, TipCompleteSections)
	}
	if s.Specificity < 70 {
		tips = append(tips, TipDetailBio, TipLongerPrompts)
	}
	if len(tips) == 0 {
		tips = append(tips, TipLookingGreat)
	}
	if len(tips) > MaxTips {
		tips = tips[:MaxTips]
	}
	return tips
}

func bioLength(p *models.Profile) int {
	return utf8.RuneCountInString(p.Bio)
}
