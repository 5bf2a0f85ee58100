package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/safety"
)

func TestReport_EscalatesRisk(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.member(t, "ana", models.GenderFemale, models.GenderMale)
	f.member(t, "ben", models.GenderMale, models.GenderFemale)

	ra, err := f.svc.GetRiskAssessment(ctx, "ben")
	require.NoError(t, err)
	assert.Equal(t, models.RiskNormal, ra.RiskLevel)
	assert.Zero(t, ra.RiskIndex)

	// Each report adds 8 to the index; the fourth crosses into MONITOR.
	for i := 0; i < 3; i++ {
		_, err := f.svc.Report(ctx, "ana", "ben", models.ReportHarassment, "rude")
		require.NoError(t, err)
	}
	assert.Empty(t, f.alerter.risks)

	_, err = f.svc.Report(ctx, "ana", "ben", models.ReportScam, "asked for money")
	require.NoError(t, err)
	assert.Equal(t, []models.RiskLevel{models.RiskMonitor}, f.alerter.risks)

	ra, err = f.svc.GetRiskAssessment(ctx, "ben")
	require.NoError(t, err)
	assert.Equal(t, 80, ra.ReportScore)
	assert.Equal(t, 32, ra.RiskIndex)
	assert.Equal(t, models.RiskMonitor, ra.RiskLevel)

	// Staying at the same level does not alert again.
	_, err = f.svc.Report(ctx, "ana", "ben", models.ReportOther, "")
	require.NoError(t, err)
	assert.Len(t, f.alerter.risks, 1)

	ts, err := f.svc.GetTrustScore(ctx, "ben")
	require.NoError(t, err)
	assert.Zero(t, ts.Respect)
}

func TestReport_CountsFlaggedMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.matched(t, "ana", "ben")

	_, err := f.svc.SendMessage(ctx, "ben", m.ID, "I will find you, don't tell anyone")
	require.NoError(t, err)
	_, err = f.svc.Report(ctx, "ana", "ben", models.ReportHarassment, "threats")
	require.NoError(t, err)

	ra, err := f.svc.GetRiskAssessment(ctx, "ben")
	require.NoError(t, err)
	want := safety.AssessRisk("ben", 1, []int{55})
	assert.Equal(t, want.MessageRiskScore, ra.MessageRiskScore)
	assert.Equal(t, want.RiskIndex, ra.RiskIndex)
}

func TestReport_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.member(t, "ana", models.GenderFemale, models.GenderMale)

	_, err := f.svc.Report(ctx, "ana", "ana", models.ReportOther, "")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = f.svc.Report(ctx, "ana", "ghost", models.ReportOther, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Report(ctx, "ana", "ghost", models.ReportType("MEAN"), "")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestBlock_DeactivatesMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.matched(t, "ana", "ben")

	require.NoError(t, f.svc.Block(ctx, "ana", "ben", "moved on"))
	require.NoError(t, f.svc.Block(ctx, "ana", "ben", "changed reason"))

	views, err := f.svc.ListMatches(ctx, "ben")
	require.NoError(t, err)
	assert.Empty(t, views)

	stored, err := f.store.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	assert.ErrorIs(t, f.svc.Block(ctx, "ana", "ana", ""), ErrInvalid)
	assert.ErrorIs(t, f.svc.Block(ctx, "ana", "ghost", ""), ErrNotFound)
}

func TestSafetySignals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.member(t, "ana", models.GenderFemale, models.GenderMale)

	signals, err := f.svc.SafetySignals(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, signals)

	sig, err := f.svc.VerifySignal(ctx, "ana", models.SignalVerifiedPhoto)
	require.NoError(t, err)
	assert.Equal(t, "Verified Photos", sig.Label)
	_, err = f.svc.VerifySignal(ctx, "ana", models.SignalVerifiedPhoto)
	require.NoError(t, err)

	signals, err = f.svc.SafetySignals(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "Verified Photos", signals[0].Label)

	_, err = f.svc.VerifySignal(ctx, "ana", models.SafetySignalType("VERIFIED_AURA"))
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = f.svc.VerifySignal(ctx, "ghost", models.SignalVerifiedEmail)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPreDateCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.matched(t, "ana", "ben")

	_, err := f.svc.VerifySignal(ctx, "ben", models.SignalVerifiedPhone)
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, "ben", m.ID, "Thank you for suggesting the botanical garden")
	require.NoError(t, err)

	check, err := f.svc.PreDateCheck(ctx, "ana", m.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, check.SafetyScore)
	assert.Equal(t, models.RecommendLowRisk, check.Recommendation)
	assert.Empty(t, check.Concerns)
	assert.Equal(t, safety.Suggestions, check.Suggestions)
	require.Len(t, check.PartnerSignals, 1)
	assert.Equal(t, "Verified Phone", check.PartnerSignals[0].Label)

	_, err = f.svc.SendMessage(ctx, "ben", m.ID, "Why won't you answer? You need to come over")
	require.NoError(t, err)

	check, err = f.svc.PreDateCheck(ctx, "ana", m.ID)
	require.NoError(t, err)
	assert.Contains(t, check.Concerns, safety.ConcernPressure)
}

func TestPreDateCheck_OnlyParticipants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.matched(t, "ana", "ben")
	f.member(t, "eve", models.GenderFemale, models.GenderMale)

	_, err := f.svc.PreDateCheck(ctx, "eve", m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
