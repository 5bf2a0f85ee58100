package analyzer

import (
	"regexp"
	"strings"
)

const (
	FollowUpTellMore      = "Could you tell me more about that?"
	FollowUpExample       = "Can you give me a specific example of when this has come up?"
	FollowUpMixed         = "I noticed some mixed feelings there. What feels most true to you?"
	FollowUpStrongFeeling = "That sounds like a strong feeling. What experiences shaped this view?"
)

const minAnswerWords = 5

var (
	vaguePattern    = regexp.MustCompile(`\bit depends\b|\bmaybe\b|\bsometimes\b`)
	mixedPattern    = regexp.MustCompile(`\bbut\b.*\bhowever\b|\bhowever\b.*\bbut\b`)
	negativePattern = regexp.MustCompile(`\bhate\b|\bcan't stand\b|\bnever\b`)
)

// GenerateFollowUp returns a clarifying question for a short, vague, mixed or
// strongly negative answer. The first matching rule wins. The second argument
// is the question being answered; no rule reads it yet.
func GenerateFollowUp(answer, _ string) (string, bool) {
	lower := strings.ToLower(answer)

	switch {
	case WordCount(answer) < minAnswerWords:
		return FollowUpTellMore, true
	case vaguePattern.MatchString(lower):
		return FollowUpExample, true
	case mixedPattern.MatchString(lower):
		return FollowUpMixed, true
	case negativePattern.MatchString(lower):
		return FollowUpStrongFeeling, true
	default:
		return "", false
	}
}
