package bot

import (
	"fmt"
	"strings"

	"github.com/xaenox/kindred/internal/models"
)

// escapeMarkdown escapes the characters MarkdownV2 reserves.
func escapeMarkdown(text string) string {
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}

func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "…"
}

func formatFlaggedMessage(msg *models.Message) string {
	var sb strings.Builder
	sb.WriteString("*⚠️ Flagged message*\n")
	fmt.Fprintf(&sb, "*Sender:* %s\n", escapeMarkdown(msg.SenderID))
	fmt.Fprintf(&sb, "*Match:* %s\n", escapeMarkdown(msg.MatchID))
	fmt.Fprintf(&sb, "*Safety score:* %d\n", msg.SafetyScore)
	if len(msg.SafetyFlags) > 0 {
		fmt.Fprintf(&sb, "*Flags:* %s\n", escapeMarkdown(strings.Join(msg.SafetyFlags, ", ")))
	}
	fmt.Fprintf(&sb, "\n_%s_", escapeMarkdown(truncate(msg.Content, maxQuotedRunes)))
	return sb.String()
}

func formatRiskEscalation(ra *models.RiskAssessment, previous models.RiskLevel) string {
	var sb strings.Builder
	sb.WriteString("*🚨 Risk escalated*\n")
	fmt.Fprintf(&sb, "*User:* %s\n", escapeMarkdown(ra.UserID))
	fmt.Fprintf(&sb, "*Level:* %s → %s\n", escapeMarkdown(string(previous)), escapeMarkdown(string(ra.RiskLevel)))
	fmt.Fprintf(&sb, "*Risk index:* %d\n", ra.RiskIndex)
	fmt.Fprintf(&sb, "*Reports:* %d, *messages:* %d", ra.ReportScore, ra.MessageRiskScore)
	return sb.String()
}

func formatTrust(ts *models.TrustScore) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Trust score for* %s\n", escapeMarkdown(ts.UserID))
	fmt.Fprintf(&sb, "*Overall:* %d\n", ts.Overall)
	fmt.Fprintf(&sb, "Reply pattern: %d\n", ts.ReplyPattern)
	fmt.Fprintf(&sb, "Commitment: %d\n", ts.Commitment)
	fmt.Fprintf(&sb, "Respect: %d\n", ts.Respect)
	fmt.Fprintf(&sb, "Tone consistency: %d", ts.ToneConsistency)
	return sb.String()
}

func formatRisk(ra *models.RiskAssessment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Risk assessment for* %s\n", escapeMarkdown(ra.UserID))
	fmt.Fprintf(&sb, "*Level:* %s\n", escapeMarkdown(string(ra.RiskLevel)))
	fmt.Fprintf(&sb, "*Risk index:* %d\n", ra.RiskIndex)
	fmt.Fprintf(&sb, "Report score: %d\n", ra.ReportScore)
	fmt.Fprintf(&sb, "Message risk: %d", ra.MessageRiskScore)
	return sb.String()
}

func formatAnalysis(result models.TextAnalysisResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Safety score:* %d\n", result.Score)
	if len(result.Flags) > 0 {
		tags := make([]string, len(result.Flags))
		for i, f := range result.Flags {
			tags[i] = escapeMarkdown("#" + f)
		}
		fmt.Fprintf(&sb, "*Flags:* %s\n", strings.Join(tags, " "))
	} else {
		sb.WriteString("*Flags:* none\n")
	}
	if len(result.Insights) > 0 {
		fmt.Fprintf(&sb, "*Insights:* %s", escapeMarkdown(strings.Join(result.Insights, ", ")))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatVerified(sig *models.SafetySignal) string {
	return fmt.Sprintf("✅ %s *granted to* %s", escapeMarkdown(sig.Label), escapeMarkdown(sig.UserID))
}

func signalNames() []string {
	names := make([]string, len(models.SafetySignalTypes))
	for i, t := range models.SafetySignalTypes {
		names[i] = string(t)
	}
	return names
}
