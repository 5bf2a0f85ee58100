package trust

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xaenox/kindred/internal/models"
)

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func entries(userID string, bt models.BehaviorType, n int, at time.Time) []models.BehaviorLogEntry {
	out := make([]models.BehaviorLogEntry, n)
	for i := range out {
		out[i] = models.BehaviorLogEntry{UserID: userID, BehaviorType: bt, Score: Points(bt), CreatedAt: at}
	}
	return out
}

func TestRecalculate_NoHistoryIsDefault(t *testing.T) {
	got := Recalculate("u1", nil, now)
	assert.Equal(t, Default("u1", now), got)
	assert.Equal(t, 50, got.Overall)
	assert.Equal(t, 50, got.ReplyPattern)
	assert.Equal(t, 50, got.Commitment)
	assert.Equal(t, 50, got.Respect)
	assert.Equal(t, 50, got.ToneConsistency)
}

func TestRecalculate_OnlyStaleHistoryIsDefault(t *testing.T) {
	old := entries("u1", models.BehaviorReportFiled, 3, now.Add(-31*24*time.Hour))
	got := Recalculate("u1", old, now)
	assert.Equal(t, Default("u1", now), got)
}

func TestRecalculate_ActiveWithoutReports(t *testing.T) {
	log := entries("u1", models.BehaviorMessageSent, 10, now.Add(-time.Hour))
	got := Recalculate("u1", log, now)

	assert.Equal(t, 60, got.ReplyPattern)
	assert.Equal(t, 50, got.Commitment)
	assert.Equal(t, 80, got.Respect)
	assert.Equal(t, ToneConsistencyScore, got.ToneConsistency)
	// 60*.25 + 50*.3 + 80*.3 + 50*.15 = 61.5
	assert.Equal(t, 62, got.Overall)
}

func TestRecalculate_ReplyPatternCaps(t *testing.T) {
	log := entries("u1", models.BehaviorMessageReceived, 80, now.Add(-time.Hour))
	got := Recalculate("u1", log, now)
	assert.Equal(t, 100, got.ReplyPattern)
}

func TestRecalculate_Commitment(t *testing.T) {
	var log []models.BehaviorLogEntry
	log = append(log, entries("u1", models.BehaviorDateCompleted, 2, now.Add(-48*time.Hour))...)
	log = append(log, entries("u1", models.BehaviorDateCancelled, 1, now.Add(-24*time.Hour))...)

	got := Recalculate("u1", log, now)
	assert.Equal(t, 67, got.Commitment)
}

func TestRecalculate_AllCancelled(t *testing.T) {
	log := entries("u1", models.BehaviorDateCancelled, 2, now.Add(-time.Hour))
	got := Recalculate("u1", log, now)
	assert.Equal(t, 0, got.Commitment)
}

func TestRecalculate_Respect(t *testing.T) {
	tests := []struct {
		reports int
		want    int
	}{
		{1, 80},
		{2, 60},
		{5, 0},
		{9, 0},
	}
	for _, tt := range tests {
		log := entries("u1", models.BehaviorReportFiled, tt.reports, now.Add(-time.Hour))
		got := Recalculate("u1", log, now)
		assert.Equal(t, tt.want, got.Respect, "reports=%d", tt.reports)
	}
}

func TestRecalculate_WindowBoundary(t *testing.T) {
	var log []models.BehaviorLogEntry
	log = append(log, entries("u1", models.BehaviorReportFiled, 1, now.Add(-Window))...)
	log = append(log, entries("u1", models.BehaviorReportFiled, 1, now.Add(-Window-time.Second))...)

	got := Recalculate("u1", log, now)
	assert.Equal(t, 80, got.Respect, "entry exactly at the window edge counts, older does not")
}

func TestRecalculate_IgnoresOtherUsers(t *testing.T) {
	log := entries("u2", models.BehaviorReportFiled, 4, now.Add(-time.Hour))
	log = append(log, entries("u1", models.BehaviorLikeSent, 1, now.Add(-time.Hour))...)

	got := Recalculate("u1", log, now)
	assert.Equal(t, 80, got.Respect)
}

func TestRecalculate_PointsDoNotAffectAggregate(t *testing.T) {
	a := entries("u1", models.BehaviorDateCompleted, 1, now.Add(-time.Hour))
	b := entries("u1", models.BehaviorDateCompleted, 1, now.Add(-time.Hour))
	b[0].Score = -999

	assert.Equal(t, Recalculate("u1", a, now), Recalculate("u1", b, now))
}

func TestPoints(t *testing.T) {
	assert.Equal(t, 10, Points(models.BehaviorDateCompleted))
	assert.Equal(t, -10, Points(models.BehaviorReportFiled))
	assert.Equal(t, -5, Points(models.BehaviorDateCancelled))
	assert.Equal(t, 5, Points(models.BehaviorMatchCreated))
	assert.Equal(t, 0, Points(models.BehaviorType("UNKNOWN")))

	for _, bt := range models.BehaviorTypes {
		assert.True(t, bt.Valid())
	}
	assert.False(t, models.BehaviorType("UNKNOWN").Valid())
}
