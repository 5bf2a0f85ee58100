// Package analyzer implements the rule-based text scoring used for messages,
// onboarding answers and profile prompts. Every function is pure: no I/O,
// no clock, no shared mutable state.
package analyzer

import (
	"regexp"
	"strings"

	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/scoring"
)

type Kind string

const (
	KindSafety      Kind = "safety"
	KindIntent      Kind = "intent"
	KindConsistency Kind = "consistency"
)

func (k Kind) Valid() bool {
	switch k {
	case KindSafety, KindIntent, KindConsistency:
		return true
	}
	return false
}

// Analyzer scores free text.
type Analyzer interface {
	Analyze(text string, kind Kind) models.TextAnalysisResult
	ScoreAnswerQuality(answer string) models.AnswerQuality
	GenerateFollowUp(answer, questionContext string) (string, bool)
}

// RuleAnalyzer evaluates the package rule tables. It is safe for concurrent use.
type RuleAnalyzer struct{}

func NewRuleAnalyzer() *RuleAnalyzer {
	return &RuleAnalyzer{}
}

func (RuleAnalyzer) Analyze(text string, kind Kind) models.TextAnalysisResult {
	return Analyze(text, kind)
}

func (RuleAnalyzer) ScoreAnswerQuality(answer string) models.AnswerQuality {
	return ScoreAnswerQuality(answer)
}

func (RuleAnalyzer) GenerateFollowUp(answer, questionContext string) (string, bool) {
	return GenerateFollowUp(answer, questionContext)
}

// Analyze dispatches on kind. Unknown kinds yield a neutral result.
func Analyze(text string, kind Kind) models.TextAnalysisResult {
	switch kind {
	case KindSafety:
		return AnalyzeSafety(text)
	case KindIntent:
		return AnalyzeIntent(text)
	case KindConsistency:
		return AnalyzeConsistency(text)
	default:
		return newResult(neutralScore)
	}
}

// AnalyzeSafety starts at 100 and subtracts for every threat, pressure and
// manipulation rule that matches.
func AnalyzeSafety(text string) models.TextAnalysisResult {
	return applyPatternRules(strings.ToLower(text), SafetyRules, safetyBaseline)
}

// AnalyzeIntent weighs casual against serious phrasing. 50 is neutral,
// 100 fully serious, 0 fully casual.
func AnalyzeIntent(text string) models.TextAnalysisResult {
	lower := strings.ToLower(text)
	result := newResult(neutralScore)

	casual := weightedScore(lower, CasualPatterns)
	serious := weightedScore(lower, SeriousPatterns)

	if casual > serious*2 {
		result.Flags = append(result.Flags, FlagCasualLeaning)
	} else if serious > casual*2 {
		result.Flags = append(result.Flags, FlagSeriousLeaning)
	}

	total := casual + serious
	if total == 0 {
		return result
	}
	score := neutralScore + float64(serious-casual)/float64(total)*neutralScore
	result.Score = scoring.Round(score)
	return result
}

// AnalyzeConsistency looks for self-contradiction, heavy hedging and
// definitive statements.
func AnalyzeConsistency(text string) models.TextAnalysisResult {
	lower := strings.ToLower(text)
	result := newResult(consistencyBaseline)
	score := consistencyBaseline

	for _, pair := range ContradictionPairs {
		if pair.A.MatchString(lower) && pair.B.MatchString(lower) {
			score -= contradictionPenalty
			result.Flags = append(result.Flags, FlagPotentialContradiction)
		}
	}

	if countMatches(lower, HedgingPatterns) >= uncertaintyThreshold {
		score -= uncertaintyPenalty
		result.Flags = append(result.Flags, FlagHighUncertainty)
	}

	for _, pattern := range DefinitivePatterns {
		if pattern.MatchString(lower) {
			result.Insights = append(result.Insights, InsightConfidentLanguage)
			score += confidenceBonus
		}
	}

	result.Score = scoring.Clamp(score)
	return result
}

func applyPatternRules(text string, rules []PatternRule, base int) models.TextAnalysisResult {
	result := newResult(base)
	score := base
	for _, rule := range rules {
		if !rule.Pattern.MatchString(text) {
			continue
		}
		score += rule.Delta
		if rule.Flag != "" {
			result.Flags = append(result.Flags, rule.Flag)
		}
		if rule.Insight != "" {
			result.Insights = append(result.Insights, rule.Insight)
		}
	}
	result.Score = scoring.Clamp(score)
	return result
}

func weightedScore(text string, patterns []WeightedPattern) int {
	score := 0
	for _, p := range patterns {
		score += len(p.Pattern.FindAllStringIndex(text, -1)) * p.Weight
	}
	return score
}

func countMatches(text string, patterns []*regexp.Regexp) int {
	n := 0
	for _, p := range patterns {
		if p.MatchString(text) {
			n++
		}
	}
	return n
}

func newResult(score int) models.TextAnalysisResult {
	return models.TextAnalysisResult{
		Score:    score,
		Flags:    []string{},
		Insights: []string{},
	}
}
