// Package scoring holds the numeric helpers shared by the scorers.
package scoring

import "math"

const (
	Min = 0
	Max = 100
)

// Clamp bounds a score to [0, 100].
func Clamp(score int) int {
	if score < Min {
		return Min
	}
	if score > Max {
		return Max
	}
	return score
}

// Round rounds half away from zero and clamps the result.
func Round(score float64) int {
	return Clamp(int(math.Round(score)))
}

// Weighted returns the rounded, clamped weighted sum of parts.
func Weighted(parts ...Part) int {
	var sum float64
	for _, p := range parts {
		sum += p.Score * p.Weight
	}
	return Round(sum)
}

// Part is one weighted term of an aggregate score.
type Part struct {
	Score  float64
	Weight float64
}
