package analyzer

import (
	"regexp"
	"strings"

	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/scoring"
)

var (
	digitPattern       = regexp.MustCompile(`\d`)
	properNounPattern  = regexp.MustCompile(`\b[A-Z][a-z]+\b`)
	reasoningPattern   = regexp.MustCompile(`(?i)\bbecause\b|\bsince\b`)
	examplePattern     = regexp.MustCompile(`(?i)\bfor example\b|\blike when\b`)
	firstPersonPattern = regexp.MustCompile(`(?i)\bi\s+(feel|think|believe|value)\b`)
	personalPattern    = regexp.MustCompile(`(?i)\bpersonally\b|\bfor me\b`)
	genericPattern     = regexp.MustCompile(`(?i)\beveryone\b|\bpeople\b|\bnormal\b`)
)

const qualityBaseline = 50

type factorRule struct {
	applies bool
	delta   int
}

// ScoreAnswerQuality rates an answer on specificity, depth and authenticity.
// The composite is the rounded mean of the three factors.
func ScoreAnswerQuality(answer string) models.AnswerQuality {
	words := WordCount(answer)

	specificity := factorScore(qualityBaseline,
		factorRule{digitPattern.MatchString(answer), 15},
		factorRule{properNounPattern.MatchString(answer), 10},
		factorRule{words >= 20, 15},
		factorRule{words >= 50, 10},
	)

	depth := factorScore(qualityBaseline,
		factorRule{reasoningPattern.MatchString(answer), 15},
		factorRule{examplePattern.MatchString(answer), 15},
		factorRule{words >= 30, 10},
	)

	authenticity := factorScore(qualityBaseline,
		factorRule{firstPersonPattern.MatchString(answer), 20},
		factorRule{personalPattern.MatchString(answer), 15},
		factorRule{genericPattern.MatchString(answer), -10},
	)

	return models.AnswerQuality{
		Score: scoring.Round(float64(specificity+depth+authenticity) / 3),
		Factors: models.QualityFactors{
			Specificity:  scoring.Clamp(specificity),
			Depth:        scoring.Clamp(depth),
			Authenticity: scoring.Clamp(authenticity),
		},
	}
}

func factorScore(base int, rules ...factorRule) int {
	score := base
	for _, r := range rules {
		if r.applies {
			score += r.delta
		}
	}
	return score
}

// WordCount splits on runs of whitespace.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
