package analyzer

import "regexp"

// Flags and insights emitted by the rule tables.
const (
	FlagPotentialThreat        = "potential_threat"
	FlagPressureLanguage       = "pressure_language"
	FlagManipulation           = "manipulation"
	FlagCasualLeaning          = "casual_leaning"
	FlagSeriousLeaning         = "serious_leaning"
	FlagPotentialContradiction = "potential_contradiction"
	FlagHighUncertainty        = "high_uncertainty"

	InsightPoliteLanguage     = "polite_language"
	InsightEmpatheticLanguage = "empathetic_language"
	InsightConfidentLanguage  = "confident_language"
)

// PatternRule adjusts a running score when Pattern matches and records
// Flag and/or Insight.
type PatternRule struct {
	Pattern *regexp.Regexp
	Flag    string
	Insight string
	Delta   int
}

// WeightedPattern contributes Weight for every occurrence of Pattern.
type WeightedPattern struct {
	Pattern *regexp.Regexp
	Weight  int
}

// ContradictionPair fires when both A and B match the same text.
type ContradictionPair struct {
	A *regexp.Regexp
	B *regexp.Regexp
}

// SafetyRules are applied in order, each at most once per text.
var SafetyRules = []PatternRule{
	// threats
	{Pattern: regexp.MustCompile(`(?i)\b(kill|hurt|harm|die)\b`), Flag: FlagPotentialThreat, Delta: -30},
	{Pattern: regexp.MustCompile(`(?i)\bi('ll| will)\s+find\s+you\b`), Flag: FlagPotentialThreat, Delta: -30},
	{Pattern: regexp.MustCompile(`(?i)\byou('ll| will)\s+(regret|pay|suffer)\b`), Flag: FlagPotentialThreat, Delta: -30},
	// pressure
	{Pattern: regexp.MustCompile(`(?i)\bwhy\s+(won't|don't)\s+you\b`), Flag: FlagPressureLanguage, Delta: -10},
	{Pattern: regexp.MustCompile(`(?i)\byou\s+(have|need|must)\s+to\b`), Flag: FlagPressureLanguage, Delta: -10},
	{Pattern: regexp.MustCompile(`(?i)\bif\s+you\s+(really|truly)\s+(loved|cared)\b`), Flag: FlagPressureLanguage, Delta: -10},
	// manipulation
	{Pattern: regexp.MustCompile(`(?i)\bdon't\s+tell\s+anyone\b`), Flag: FlagManipulation, Delta: -15},
	{Pattern: regexp.MustCompile(`(?i)\bkeep\s+(this|it)\s+secret\b`), Flag: FlagManipulation, Delta: -15},
	{Pattern: regexp.MustCompile(`(?i)\bno\s+one\s+will\s+believe\b`), Flag: FlagManipulation, Delta: -15},
	// positive signals
	{Pattern: regexp.MustCompile(`(?i)\bthank\s+you\b`), Insight: InsightPoliteLanguage},
	{Pattern: regexp.MustCompile(`(?i)\bi\s+understand\b`), Insight: InsightEmpatheticLanguage},
}

// CasualPatterns are counted per occurrence against lower-cased text.
var CasualPatterns = []WeightedPattern{
	{Pattern: regexp.MustCompile(`\bhookup\b`), Weight: 3},
	{Pattern: regexp.MustCompile(`\bfwb\b`), Weight: 3},
	{Pattern: regexp.MustCompile(`\bno\s+strings\b`), Weight: 3},
	{Pattern: regexp.MustCompile(`\bjust\s+fun\b`), Weight: 2},
	{Pattern: regexp.MustCompile(`\bnothing\s+serious\b`), Weight: 3},
}

var SeriousPatterns = []WeightedPattern{
	{Pattern: regexp.MustCompile(`\brelationship\b`), Weight: 2},
	{Pattern: regexp.MustCompile(`\bcommit(ment|ted)?\b`), Weight: 3},
	{Pattern: regexp.MustCompile(`\bfuture\s+together\b`), Weight: 3},
	{Pattern: regexp.MustCompile(`\blong[\s-]?term\b`), Weight: 3},
	{Pattern: regexp.MustCompile(`\bmarriage\b`), Weight: 4},
}

var ContradictionPairs = []ContradictionPair{
	{A: regexp.MustCompile(`(?i)\bi\s+always\b`), B: regexp.MustCompile(`(?i)\bi\s+never\b`)},
	{A: regexp.MustCompile(`(?i)\bi\s+love\b`), B: regexp.MustCompile(`(?i)\bi\s+hate\b`)},
	{A: regexp.MustCompile(`(?i)\bi\s+want\b`), B: regexp.MustCompile(`(?i)\bi\s+don't\s+want\b`)},
}

var HedgingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bi\s+guess\b`),
	regexp.MustCompile(`(?i)\bmaybe\b`),
	regexp.MustCompile(`(?i)\bprobably\b`),
	regexp.MustCompile(`(?i)\bi\s+think\b`),
	regexp.MustCompile(`(?i)\bsort\s+of\b`),
	regexp.MustCompile(`(?i)\bkind\s+of\b`),
}

var DefinitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bi\s+definitely\b`),
	regexp.MustCompile(`(?i)\bi'm\s+certain\b`),
	regexp.MustCompile(`(?i)\bi\s+know\s+for\s+sure\b`),
	regexp.MustCompile(`(?i)\babsolutely\b`),
}

const (
	safetyBaseline      = 100
	consistencyBaseline = 70
	neutralScore        = 50

	contradictionPenalty = 15
	uncertaintyPenalty   = 10
	uncertaintyThreshold = 3
	confidenceBonus      = 5
)
