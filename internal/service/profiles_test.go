package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/profile"
)

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.CreateUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.UserActive, user.Status)
	assert.False(t, user.OnboardingCompleted)

	_, err = f.svc.CreateUser(ctx, "u1")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.CreateUser(ctx, "")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSetUserStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateUser(ctx, "u1")
	require.NoError(t, err)

	user, err := f.svc.SetUserStatus(ctx, "u1", models.UserSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.UserSuspended, user.Status)

	_, err = f.svc.SetUserStatus(ctx, "u1", models.UserDeleted)
	require.NoError(t, err)
	_, err = f.svc.SetUserStatus(ctx, "u1", models.UserActive)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = f.svc.SetUserStatus(ctx, "ghost", models.UserActive)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateProfile(ctx, "ghost", CreateProfileInput{FirstName: "Ana"})
	assert.ErrorIs(t, err, ErrNotFound)

	p := f.member(t, "u1", models.GenderFemale, models.GenderMale)
	assert.Equal(t, "Member u1", p.DisplayName)
	assert.Equal(t, profile.CalculateStrength(p, nil, nil), p.Strength)

	_, err = f.svc.CreateProfile(ctx, "u1", CreateProfileInput{FirstName: "Again"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.CreateProfile(ctx, "u1", CreateProfileInput{FirstName: "  "})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestUpdateProfile_RecomputesStrength(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.member(t, "u1", models.GenderFemale, models.GenderMale)

	bio := ""
	updated, err := f.svc.UpdateProfile(ctx, "u1", UpdateProfileInput{Bio: &bio})
	require.NoError(t, err)
	assert.Empty(t, updated.Bio)
	assert.True(t, updated.UpdatedAt.After(before.UpdatedAt))
	assert.Less(t, updated.Strength.Completeness, before.Strength.Completeness)

	stored, err := f.svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, updated.Strength.Overall, stored.Strength.Overall)
	assert.Equal(t, "Portland", stored.City)

	_, err = f.svc.UpdateProfile(ctx, "ghost", UpdateProfileInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPhotos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.member(t, "u1", models.GenderFemale, models.GenderMale)

	first, err := f.svc.AddPhoto(ctx, "u1", "https://img/1.jpg", false)
	require.NoError(t, err)
	assert.True(t, first.IsMain, "first photo becomes main")

	second, err := f.svc.AddPhoto(ctx, "u1", "https://img/2.jpg", true)
	require.NoError(t, err)
	assert.True(t, second.IsMain)
	assert.Equal(t, 1, second.Order)

	photos, err := f.svc.ListPhotos(ctx, "u1")
	require.NoError(t, err)
	mains := 0
	for _, p := range photos {
		if p.IsMain {
			mains++
			assert.Equal(t, second.ID, p.ID)
		}
	}
	assert.Equal(t, 1, mains)

	for i := len(photos); i < profile.MaxPhotos; i++ {
		_, err := f.svc.AddPhoto(ctx, "u1", "https://img/more.jpg", false)
		require.NoError(t, err)
	}
	_, err = f.svc.AddPhoto(ctx, "u1", "https://img/too-many.jpg", false)
	assert.ErrorIs(t, err, ErrInvalid)

	require.NoError(t, f.svc.DeletePhoto(ctx, "u1", first.ID))
	assert.ErrorIs(t, f.svc.DeletePhoto(ctx, "u1", first.ID), ErrNotFound)
}

func TestPrompts_RaiseStrength(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.member(t, "u1", models.GenderFemale, models.GenderMale)

	before, err := f.svc.GetStrength(ctx, "u1")
	require.NoError(t, err)

	for i := 0; i < profile.MaxPrompts; i++ {
		_, err := f.svc.AddPrompt(ctx, "u1", "My ideal Sunday", "Farmers market in Hawthorne, then pottery until dusk")
		require.NoError(t, err)
	}
	_, err = f.svc.AddPrompt(ctx, "u1", "One more", "Nope")
	assert.ErrorIs(t, err, ErrInvalid)

	after, err := f.svc.GetStrength(ctx, "u1")
	require.NoError(t, err)
	assert.Greater(t, after.Completeness, before.Completeness)
	assert.Equal(t, profile.ImprovementTips(after), after.Tips)
}

func TestProfileUpdates_LogBehavior(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.member(t, "u1", models.GenderFemale, models.GenderMale)

	_, err := f.svc.AddPrompt(ctx, "u1", "Green flag", "Remembers small details")
	require.NoError(t, err)

	entries, err := f.store.ListBehaviorSince(ctx, "u1", t0)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, models.BehaviorProfileUpdated, entries[len(entries)-1].BehaviorType)
}
