package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/kindred/internal/matching"
	"github.com/xaenox/kindred/internal/models"
)

func candidateIDs(cs []Candidate) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.Profile.UserID
	}
	return ids
}

func TestDiscover_FiltersByMutualPreference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	me := f.member(t, "ana", models.GenderFemale, models.GenderMale)
	ben := f.member(t, "ben", models.GenderMale, models.GenderFemale)
	f.member(t, "carl", models.GenderMale, models.GenderMale)
	f.member(t, "dana", models.GenderFemale, models.GenderMale)

	got, err := f.svc.Discover(ctx, "ana", 0)
	require.NoError(t, err)
	require.Equal(t, []string{"ben"}, candidateIDs(got))
	assert.Equal(t, matching.Compatibility(me, ben), got[0].Compatibility)
	assert.Nil(t, got[0].MainPhoto)
}

func TestDiscover_AttachesMainPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.member(t, "ana", models.GenderFemale, models.GenderMale)
	f.member(t, "ben", models.GenderMale, models.GenderFemale)
	photo, err := f.svc.AddPhoto(ctx, "ben", "https://img/ben.jpg", true)
	require.NoError(t, err)

	got, err := f.svc.Discover(ctx, "ana", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].MainPhoto)
	assert.Equal(t, photo.ID, got[0].MainPhoto.ID)
}

func TestDiscover_ExcludesLikedAndBlocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.member(t, "ana", models.GenderFemale, models.GenderMale)
	f.member(t, "ben", models.GenderMale, models.GenderFemale)
	f.member(t, "cole", models.GenderMale, models.GenderFemale)
	f.member(t, "dev", models.GenderMale, models.GenderFemale)

	_, err := f.svc.Like(ctx, "ana", "ben")
	require.NoError(t, err)
	require.NoError(t, f.svc.Block(ctx, "cole", "ana", "not interested"))

	got, err := f.svc.Discover(ctx, "ana", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"dev"}, candidateIDs(got))
}

func TestDiscover_RespectsLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.member(t, "ana", models.GenderFemale, models.GenderMale)
	for _, id := range []string{"b1", "b2", "b3"} {
		f.member(t, id, models.GenderMale, models.GenderFemale)
	}

	got, err := f.svc.Discover(ctx, "ana", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDiscover_RequiresProfile(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateUser(context.Background(), "ana")
	require.NoError(t, err)

	_, err = f.svc.Discover(context.Background(), "ana", 10)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLike_MutualCreatesMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ana := f.member(t, "ana", models.GenderFemale, models.GenderMale)
	ben := f.member(t, "ben", models.GenderMale, models.GenderFemale)

	first, err := f.svc.Like(ctx, "ana", "ben")
	require.NoError(t, err)
	assert.Equal(t, &LikeResult{Liked: true}, first)

	second, err := f.svc.Like(ctx, "ben", "ana")
	require.NoError(t, err)
	require.True(t, second.Matched)
	m := second.Match
	assert.Equal(t, "ben", m.UserAID)
	assert.Equal(t, "ana", m.UserBID)
	assert.Equal(t, MatchConfidence, m.ConfidenceLevel)
	assert.True(t, m.IsActive)
	assert.Equal(t, matching.Compatibility(ben, ana), m.Compatibility)

	views, err := f.svc.ListMatches(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "ben", views[0].OtherUserID)
	assert.Equal(t, ben.ID, views[0].OtherProfile.ID)
	assert.Nil(t, views[0].LastMessage)
}

func TestLike_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.member(t, "ana", models.GenderFemale, models.GenderMale)
	f.member(t, "ben", models.GenderMale, models.GenderFemale)

	_, err := f.svc.Like(ctx, "ana", "ana")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = f.svc.Like(ctx, "ana", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Like(ctx, "ana", "ben")
	require.NoError(t, err)
	_, err = f.svc.Like(ctx, "ana", "ben")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.SetUserStatus(ctx, "ben", models.UserSuspended)
	require.NoError(t, err)
	_, err = f.svc.Like(ctx, "ben", "ana")
	require.NoError(t, err)
	_, err = f.svc.CreateUser(ctx, "cy")
	require.NoError(t, err)
	_, err = f.svc.Like(ctx, "cy", "ben")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLike_WithoutProfilesUsesFallbackSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		_, err := f.svc.CreateUser(ctx, id)
		require.NoError(t, err)
	}
	_, err := f.svc.Like(ctx, "a", "b")
	require.NoError(t, err)
	res, err := f.svc.Like(ctx, "b", "a")
	require.NoError(t, err)

	require.True(t, res.Matched)
	assert.Equal(t, fallbackScore, res.Match.Compatibility.Overall)
	assert.Empty(t, res.Match.Compatibility.Reasons)
}

func TestPass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.member(t, "ana", models.GenderFemale, models.GenderMale)
	f.member(t, "ben", models.GenderMale, models.GenderFemale)

	require.NoError(t, f.svc.Pass(ctx, "ana", "ben"))
	require.NoError(t, f.svc.Pass(ctx, "ana", "ben"))
	assert.ErrorIs(t, f.svc.Pass(ctx, "ana", "ana"), ErrInvalid)

	got, err := f.svc.Discover(ctx, "ana", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetMatch_OnlyParticipants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.matched(t, "ana", "ben")
	f.member(t, "eve", models.GenderFemale, models.GenderMale)

	view, err := f.svc.GetMatch(ctx, "ben", m.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", view.OtherUserID)

	_, err = f.svc.GetMatch(ctx, "eve", m.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.GetMatch(ctx, "ana", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScheduleDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.matched(t, "ana", "ben")

	at := t0.Add(72 * time.Hour)
	date, err := f.svc.ScheduleDate(ctx, "ana", m.ID, at, "Blue Star Donuts", nil)
	require.NoError(t, err)
	assert.Equal(t, "ben", date.PartnerID)
	assert.True(t, date.IsPublicPlace)
	assert.Equal(t, at, date.DateTime)

	private := false
	date, err = f.svc.ScheduleDate(ctx, "ben", m.ID, at, "My place", &private)
	require.NoError(t, err)
	assert.False(t, date.IsPublicPlace)

	_, err = f.svc.ScheduleDate(ctx, "ana", m.ID, time.Time{}, "", nil)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestTrust(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateUser(ctx, "u1")
	require.NoError(t, err)

	ts, err := f.svc.GetTrustScore(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 50, ts.Overall)

	_, err = f.svc.LogBehavior(ctx, "u1", models.BehaviorDateCompleted, "")
	require.NoError(t, err)
	ts, err = f.svc.LogBehavior(ctx, "u1", models.BehaviorDateCancelled, "")
	require.NoError(t, err)
	assert.Equal(t, 50, ts.Commitment)
	assert.Equal(t, 80, ts.Respect)
	assert.Equal(t, 59, ts.Overall)

	stored, err := f.svc.GetTrustScore(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, ts.Overall, stored.Overall)

	_, err = f.svc.LogBehavior(ctx, "u1", models.BehaviorType("WAVED"), "")
	assert.ErrorIs(t, err, ErrInvalid)
}
