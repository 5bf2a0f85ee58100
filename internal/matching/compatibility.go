// Package matching scores how well two profiles fit each other.
package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/scoring"
)

// CommunicationScore is a placeholder until message history feeds the scorer.
const CommunicationScore = 75

const (
	weightValues        = 0.35
	weightLifestyle     = 0.25
	weightIntent        = 0.20
	weightCommunication = 0.15
	weightLogistics     = 0.05
)

const (
	valuesBonus         = 30
	defaultLifestyle    = 70
	fitnessPenalty      = 5
	sameIntentScore     = 100
	differentIntent     = 60
	sameCityScore       = 100
	sameStateScore      = 85
	distantScore        = 70
	maxReasons          = 3
	maxNamedValues      = 2
	intentFrictionBelow = 70
	lifestyleFriction   = 60
)

const (
	ReasonSameIntent       = "Looking for the same type of relationship"
	ReasonNearby           = "Located nearby"
	FrictionIntent         = "Different relationship goals"
	FrictionLifestyle      = "Different lifestyle preferences"
	FitnessAttribute       = "fitness"
	sharedValuesReasonTmpl = "Shared values: %s"
)

// Compatibility scores a against b. It is deterministic: identical inputs give
// identical output.
func Compatibility(a, b *models.Profile) models.Compatibility {
	shared := SharedValues(a.Values.Top, b.Values.Top)
	values := math.Min(100, float64(len(shared))/math.Max(float64(len(a.Values.Top)), 1)*100+valuesBonus)
	lifestyle := Lifestyle(a.Lifestyle, b.Lifestyle)
	intent := Intent(a.RelationshipIntent, b.RelationshipIntent)
	logistics := Logistics(a, b)

	c := models.Compatibility{
		Values:        scoring.Round(values),
		Lifestyle:     lifestyle,
		Intent:        intent,
		Communication: CommunicationScore,
		Logistics:     logistics,
		Reasons:       []string{},
	}
	c.Overall = scoring.Weighted(
		scoring.Part{Score: values, Weight: weightValues},
		scoring.Part{Score: float64(lifestyle), Weight: weightLifestyle},
		scoring.Part{Score: float64(intent), Weight: weightIntent},
		scoring.Part{Score: CommunicationScore, Weight: weightCommunication},
		scoring.Part{Score: float64(logistics), Weight: weightLogistics},
	)

	if len(shared) > 0 {
		named := shared
		if len(named) > maxNamedValues {
			named = named[:maxNamedValues]
		}
		c.Reasons = append(c.Reasons, fmt.Sprintf(sharedValuesReasonTmpl, strings.Join(named, ", ")))
	}
	if intent == sameIntentScore {
		c.Reasons = append(c.Reasons, ReasonSameIntent)
	}
	if logistics >= sameStateScore {
		c.Reasons = append(c.Reasons, ReasonNearby)
	}
	if len(c.Reasons) > maxReasons {
		c.Reasons = c.Reasons[:maxReasons]
	}

	switch {
	case intent < intentFrictionBelow:
		c.Friction = friction(FrictionIntent)
	case lifestyle < lifestyleFriction:
		c.Friction = friction(FrictionLifestyle)
	}
	return c
}

// SharedValues returns the values of a that also appear in b, in a's order.
func SharedValues(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, v := range b {
		in[v] = struct{}{}
	}
	shared := []string{}
	for _, v := range a {
		if _, ok := in[v]; ok {
			shared = append(shared, v)
		}
	}
	return shared
}

// Lifestyle compares the numeric fitness attribute when both sides have one.
func Lifestyle(a, b models.Lifestyle) int {
	fa, okA := a.Number(FitnessAttribute)
	fb, okB := b.Number(FitnessAttribute)
	if !okA || !okB {
		return defaultLifestyle
	}
	return scoring.Round(100 - math.Abs(fa-fb)*fitnessPenalty)
}

// Intent is 100 when both declared the same relationship intent.
func Intent(a, b models.RelationshipIntent) int {
	if a != "" && a == b {
		return sameIntentScore
	}
	return differentIntent
}

// Logistics prefers the same city, then the same state.
func Logistics(a, b *models.Profile) int {
	switch {
	case a.City != "" && strings.EqualFold(a.City, b.City):
		return sameCityScore
	case a.State != "" && strings.EqualFold(a.State, b.State):
		return sameStateScore
	default:
		return distantScore
	}
}

func friction(s string) *string {
	return &s
}
