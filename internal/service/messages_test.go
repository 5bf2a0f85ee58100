package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/kindred/internal/analyzer"
	"github.com/xaenox/kindred/internal/models"
)

func TestSendMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.matched(t, "ana", "ben")

	msg, err := f.svc.SendMessage(ctx, "ana", m.ID, "Thank you for the coffee recommendation")
	require.NoError(t, err)
	assert.Equal(t, "ben", msg.ReceiverID)
	assert.Equal(t, 100, msg.SafetyScore)
	assert.Empty(t, msg.SafetyFlags)
	assert.Equal(t, models.MessageSent, msg.Status)
	assert.Empty(t, f.alerter.flagged)

	view, err := f.svc.GetMatch(ctx, "ben", m.ID)
	require.NoError(t, err)
	require.NotNil(t, view.LastMessage)
	assert.Equal(t, msg.ID, view.LastMessage.ID)
	assert.True(t, view.UpdatedAt.After(m.UpdatedAt))

	ts, err := f.svc.GetTrustScore(ctx, "ben")
	require.NoError(t, err)
	assert.Equal(t, 51, ts.ReplyPattern)
}

func TestSendMessage_FlagsUnsafeContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.matched(t, "ana", "ben")

	msg, err := f.svc.SendMessage(ctx, "ben", m.ID, "I will find you, don't tell anyone")
	require.NoError(t, err)
	assert.Less(t, msg.SafetyScore, 70)
	assert.Contains(t, msg.SafetyFlags, analyzer.FlagPotentialThreat)
	assert.Contains(t, msg.SafetyFlags, analyzer.FlagManipulation)

	require.Len(t, f.alerter.flagged, 1)
	assert.Equal(t, msg.ID, f.alerter.flagged[0].ID)

	flagSeries, err := testutil.GatherAndCount(f.reg, "kindred_analysis_flags_total")
	require.NoError(t, err)
	assert.Equal(t, 2, flagSeries)
}

func TestSendMessage_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.matched(t, "ana", "ben")
	f.member(t, "eve", models.GenderFemale, models.GenderMale)

	_, err := f.svc.SendMessage(ctx, "ana", m.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = f.svc.SendMessage(ctx, "eve", m.ID, "hello")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.svc.Block(ctx, "ana", "ben", ""))
	_, err = f.svc.SendMessage(ctx, "ana", m.ID, "still there?")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListMessages_Chronological(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.matched(t, "ana", "ben")

	texts := []string{"hi", "hey there", "how was your week?", "busy but good"}
	for i, text := range texts {
		sender := "ana"
		if i%2 == 1 {
			sender = "ben"
		}
		_, err := f.svc.SendMessage(ctx, sender, m.ID, text)
		require.NoError(t, err)
	}

	all, err := f.svc.ListMessages(ctx, "ben", m.ID, 0, nil)
	require.NoError(t, err)
	require.Len(t, all, len(texts))
	for i, msg := range all {
		assert.Equal(t, texts[i], msg.Content)
	}

	latest, err := f.svc.ListMessages(ctx, "ana", m.ID, 2, nil)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "how was your week?", latest[0].Content)
	assert.Equal(t, "busy but good", latest[1].Content)

	older, err := f.svc.ListMessages(ctx, "ana", m.ID, 2, &latest[0].CreatedAt)
	require.NoError(t, err)
	require.Len(t, older, 2)
	assert.Equal(t, "hi", older[0].Content)

	_, err = f.svc.ListMessages(ctx, "eve", m.ID, 0, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkReadAndUnread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.matched(t, "ana", "ben")

	for _, text := range []string{"one", "two", "three"} {
		_, err := f.svc.SendMessage(ctx, "ana", m.ID, text)
		require.NoError(t, err)
	}

	unread, err := f.svc.UnreadCount(ctx, "ben")
	require.NoError(t, err)
	assert.Equal(t, 3, unread)

	n, err := f.svc.MarkRead(ctx, "ana", m.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "sender has nothing to read")

	n, err = f.svc.MarkRead(ctx, "ben", m.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	unread, err = f.svc.UnreadCount(ctx, "ben")
	require.NoError(t, err)
	assert.Zero(t, unread)

	msgs, err := f.svc.ListMessages(ctx, "ben", m.ID, 0, nil)
	require.NoError(t, err)
	for _, msg := range msgs {
		assert.Equal(t, models.MessageRead, msg.Status)
		assert.NotNil(t, msg.ReadAt)
	}
}
