package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xaenox/kindred/internal/models"
)

var t0 = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func backends(t *testing.T) map[string]Storage {
	t.Helper()

	sqlite, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "kindred.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Storage{
		"memory": NewMemoryStorage(),
		"sqlite": sqlite,
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s Storage)) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) { fn(t, s) })
	}
}

func seedUser(t *testing.T, s Storage, id string, onboarded bool) {
	t.Helper()
	require.NoError(t, s.SaveUser(context.Background(), &models.User{
		ID:                  id,
		Status:              models.UserActive,
		OnboardingCompleted: onboarded,
		CreatedAt:           t0,
		LastActiveAt:        t0,
	}))
}

func seedProfile(t *testing.T, s Storage, id, userID string, overall int) *models.Profile {
	t.Helper()
	p := &models.Profile{
		ID:                 id,
		UserID:             userID,
		FirstName:          "Sam",
		BirthDate:          time.Date(1995, 5, 5, 0, 0, 0, 0, time.UTC),
		Gender:             models.GenderFemale,
		GenderPreferences:  []models.Gender{models.GenderMale},
		City:               "Austin",
		RelationshipIntent: models.IntentLongTerm,
		Values:             models.Values{Top: []string{"honesty", "family"}},
		Lifestyle:          models.Lifestyle{"fitness": 6},
		Strength:           models.ProfileStrength{Overall: overall},
		CreatedAt:          t0,
		UpdatedAt:          t0,
	}
	require.NoError(t, s.CreateProfile(context.Background(), p))
	return p
}

func TestUsers(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()

		_, err := s.GetUser(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)

		seedUser(t, s, "u1", false)
		seedUser(t, s, "u1", true)

		u, err := s.GetUser(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, u.OnboardingCompleted)
		assert.Equal(t, models.UserActive, u.Status)
	})
}

func TestProfiles(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		seedUser(t, s, "u1", true)
		seedProfile(t, s, "p1", "u1", 40)

		dup := &models.Profile{ID: "p2", UserID: "u1", CreatedAt: t0, UpdatedAt: t0}
		assert.ErrorIs(t, s.CreateProfile(ctx, dup), ErrDuplicate)

		got, err := s.GetProfileByUserID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "p1", got.ID)
		assert.Equal(t, []string{"honesty", "family"}, got.Values.Top)
		fitness, ok := got.Lifestyle.Number("fitness")
		assert.True(t, ok)
		assert.Equal(t, 6.0, fitness)
		assert.True(t, got.Accepts(models.GenderMale))

		got.Bio = "Updated bio"
		got.Strength = models.ProfileStrength{Overall: 99}
		require.NoError(t, s.UpdateProfile(ctx, got))

		got, err = s.GetProfile(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "Updated bio", got.Bio)
		assert.Equal(t, 40, got.Strength.Overall, "UpdateProfile leaves the strength alone")

		strength := models.ProfileStrength{Overall: 77, Completeness: 60, Tips: []string{"tip"}}
		require.NoError(t, s.SaveProfileStrength(ctx, "p1", strength))
		got, err = s.GetProfile(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, strength, got.Strength)

		assert.ErrorIs(t, s.SaveProfileStrength(ctx, "missing", strength), ErrNotFound)
		assert.ErrorIs(t, s.UpdateProfile(ctx, &models.Profile{ID: "missing"}), ErrNotFound)
	})
}

func TestListProfiles(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		seedUser(t, s, "u1", true)
		seedUser(t, s, "u2", true)
		seedUser(t, s, "u3", true)
		seedUser(t, s, "u4", false)
		seedProfile(t, s, "p1", "u1", 50)
		seedProfile(t, s, "p2", "u2", 90)
		seedProfile(t, s, "p3", "u3", 70)
		seedProfile(t, s, "p4", "u4", 100)

		got, err := s.ListProfiles(ctx, ProfileFilter{ExcludeUserIDs: []string{"u1"}})
		require.NoError(t, err)

		var ids []string
		for _, p := range got {
			ids = append(ids, p.ID)
		}
		assert.Equal(t, []string{"p2", "p3"}, ids)
	})
}

func TestPhotosAndPrompts(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()

		require.NoError(t, s.AddPhoto(ctx, &models.Photo{ID: "ph1", ProfileID: "p1", URL: "a.jpg", IsMain: true, Order: 0, CreatedAt: t0}))
		require.NoError(t, s.AddPhoto(ctx, &models.Photo{ID: "ph2", ProfileID: "p1", URL: "b.jpg", Order: 1, CreatedAt: t0}))
		require.NoError(t, s.ClearMainPhoto(ctx, "p1"))

		photos, err := s.ListPhotos(ctx, "p1")
		require.NoError(t, err)
		require.Len(t, photos, 2)
		assert.False(t, photos[0].IsMain)

		require.NoError(t, s.DeletePhoto(ctx, "p1", "ph1"))
		assert.ErrorIs(t, s.DeletePhoto(ctx, "p1", "ph1"), ErrNotFound)
		assert.ErrorIs(t, s.DeletePhoto(ctx, "other", "ph2"), ErrNotFound)

		photos, err = s.ListPhotos(ctx, "p1")
		require.NoError(t, err)
		require.Len(t, photos, 1)
		assert.Equal(t, "ph2", photos[0].ID)

		require.NoError(t, s.AddPrompt(ctx, &models.Prompt{ID: "pr1", ProfileID: "p1", Question: "Q", Answer: "A", CreatedAt: t0}))
		prompts, err := s.ListPrompts(ctx, "p1")
		require.NoError(t, err)
		require.Len(t, prompts, 1)
		assert.Equal(t, "A", prompts[0].Answer)

		empty, err := s.ListPrompts(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func TestLikesAndMatches(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()

		require.NoError(t, s.SaveLike(ctx, &models.Like{FromUserID: "a", ToUserID: "b", CreatedAt: t0}))
		assert.ErrorIs(t, s.SaveLike(ctx, &models.Like{FromUserID: "a", ToUserID: "b", CreatedAt: t0}), ErrDuplicate)

		has, err := s.HasLike(ctx, "a", "b")
		require.NoError(t, err)
		assert.True(t, has)
		has, err = s.HasLike(ctx, "b", "a")
		require.NoError(t, err)
		assert.False(t, has)

		require.NoError(t, s.SaveLike(ctx, &models.Like{FromUserID: "a", ToUserID: "c", CreatedAt: t0}))
		liked, err := s.ListLikedUserIDs(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c"}, liked)

		friction := "different goals"
		m := &models.Match{
			ID:              "m1",
			UserAID:         "a",
			UserBID:         "b",
			Compatibility:   models.Compatibility{Overall: 81, Reasons: []string{"Nearby"}, Friction: &friction},
			ConfidenceLevel: 0.7,
			IsActive:        true,
			CreatedAt:       t0,
			UpdatedAt:       t0,
		}
		require.NoError(t, s.CreateMatch(ctx, m))

		got, err := s.GetMatch(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, 81, got.Compatibility.Overall)
		require.NotNil(t, got.Compatibility.Friction)
		assert.Equal(t, friction, *got.Compatibility.Friction)

		later := t0.Add(time.Hour)
		require.NoError(t, s.TouchMatch(ctx, "m1", later))
		got, err = s.GetMatch(ctx, "m1")
		require.NoError(t, err)
		assert.True(t, later.Equal(got.UpdatedAt))
		assert.ErrorIs(t, s.TouchMatch(ctx, "missing", later), ErrNotFound)

		matches, err := s.ListMatches(ctx, "b", true)
		require.NoError(t, err)
		assert.Len(t, matches, 1)

		require.NoError(t, s.DeactivateMatches(ctx, "b", "a"))
		matches, err = s.ListMatches(ctx, "b", true)
		require.NoError(t, err)
		assert.Empty(t, matches)
		matches, err = s.ListMatches(ctx, "b", false)
		require.NoError(t, err)
		assert.Len(t, matches, 1)

		require.NoError(t, s.SaveScheduledDate(ctx, &models.ScheduledDate{
			ID: "d1", MatchID: "m1", SchedulerID: "a", PartnerID: "b", DateTime: later, CreatedAt: t0,
		}))
	})
}

func TestMessages(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()

		for i, score := range []int{100, 55, 90, 40} {
			require.NoError(t, s.SaveMessage(ctx, &models.Message{
				ID:          string(rune('a' + i)),
				MatchID:     "m1",
				SenderID:    "s",
				ReceiverID:  "r",
				Content:     "hello",
				SafetyScore: score,
				SafetyFlags: []string{},
				Status:      models.MessageSent,
				CreatedAt:   t0.Add(time.Duration(i) * time.Minute),
			}))
		}

		page, err := s.ListMessages(ctx, "m1", 2, nil)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "d", page[0].ID)
		assert.Equal(t, "c", page[1].ID)

		before := page[1].CreatedAt
		page, err = s.ListMessages(ctx, "m1", 10, &before)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "b", page[0].ID)

		unread, err := s.CountUnread(ctx, "r")
		require.NoError(t, err)
		assert.Equal(t, 4, unread)

		n, err := s.MarkRead(ctx, "m1", "r", t0.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		n, err = s.MarkRead(ctx, "m1", "r", t0.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Zero(t, n)

		page, err = s.ListMessages(ctx, "m1", 1, nil)
		require.NoError(t, err)
		require.NotNil(t, page[0].ReadAt)
		assert.Equal(t, models.MessageRead, page[0].Status)

		flagged, err := s.ListFlaggedScores(ctx, "s", 70)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{55, 40}, flagged)
	})
}

func TestBehaviorAndTrust(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()

		for i, at := range []time.Time{t0.Add(-40 * 24 * time.Hour), t0.Add(-time.Hour), t0} {
			require.NoError(t, s.AppendBehavior(ctx, &models.BehaviorLogEntry{
				ID:           string(rune('a' + i)),
				UserID:       "u1",
				BehaviorType: models.BehaviorLikeSent,
				Score:        1,
				CreatedAt:    at,
			}))
		}

		entries, err := s.ListBehaviorSince(ctx, "u1", t0.Add(-30*24*time.Hour))
		require.NoError(t, err)
		assert.Len(t, entries, 2)

		_, err = s.GetTrustScore(ctx, "u1")
		assert.ErrorIs(t, err, ErrNotFound)

		ts := &models.TrustScore{UserID: "u1", Overall: 50, ReplyPattern: 50, Commitment: 50, Respect: 50, ToneConsistency: 50, LastCalculatedAt: t0}
		require.NoError(t, s.SaveTrustScore(ctx, ts))
		ts.Overall = 61
		require.NoError(t, s.SaveTrustScore(ctx, ts))

		got, err := s.GetTrustScore(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 61, got.Overall)
	})
}

func TestSafety(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()

		for _, id := range []string{"r1", "r2"} {
			require.NoError(t, s.SaveReport(ctx, &models.Report{
				ID: id, ReporterID: "a", ReportedUserID: "b", Type: models.ReportHarassment, CreatedAt: t0,
			}))
		}
		n, err := s.CountReportsAgainst(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		_, err = s.GetRiskAssessment(ctx, "b")
		assert.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, s.SaveRiskAssessment(ctx, &models.RiskAssessment{
			UserID: "b", RiskIndex: 16, RiskLevel: models.RiskNormal, ReportScore: 40, LastAssessedAt: t0,
		}))
		ra, err := s.GetRiskAssessment(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, 16, ra.RiskIndex)

		require.NoError(t, s.SaveBlock(ctx, &models.Block{BlockerID: "a", BlockedUserID: "b", CreatedAt: t0}))
		require.NoError(t, s.SaveBlock(ctx, &models.Block{BlockerID: "a", BlockedUserID: "b", Reason: "again", CreatedAt: t0}))
		require.NoError(t, s.SaveBlock(ctx, &models.Block{BlockerID: "c", BlockedUserID: "a", CreatedAt: t0}))

		blocked, err := s.ListBlockedUserIDs(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c"}, blocked)

		require.NoError(t, s.SaveSafetySignal(ctx, &models.SafetySignal{UserID: "a", SignalType: models.SignalVerifiedPhoto, Label: "Verified Photos", VerifiedAt: t0}))
		require.NoError(t, s.SaveSafetySignal(ctx, &models.SafetySignal{UserID: "a", SignalType: models.SignalVerifiedPhoto, Label: "Verified Photos", VerifiedAt: t0.Add(time.Hour)}))
		signals, err := s.ListSafetySignals(ctx, "a")
		require.NoError(t, err)
		assert.Len(t, signals, 1)
	})
}

func TestOnboarding(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()

		questions := []*models.OnboardingQuestion{
			{ID: "q1", Category: models.CategoryValues, QuestionText: "What matters?", Order: 1, IsActive: true},
			{ID: "q2", Category: models.CategoryLifestyle, QuestionText: "Weekend?", Order: 1, IsActive: true},
			{ID: "q3", Category: models.CategoryValues, QuestionText: "Retired", Order: 2, IsActive: false},
		}
		for _, q := range questions {
			require.NoError(t, s.SaveQuestion(ctx, q))
		}

		all, err := s.ListQuestions(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		values, err := s.ListQuestions(ctx, models.CategoryValues)
		require.NoError(t, err)
		require.Len(t, values, 1)
		assert.Equal(t, "q1", values[0].ID)

		active, err := s.CountActiveQuestions(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, active)

		_, err = s.GetAnswer(ctx, "u1", "q1")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.SaveAnswer(ctx, &models.OnboardingAnswer{UserID: "u1", QuestionID: "q1", Answer: "first", CreatedAt: t0, UpdatedAt: t0}))
		require.NoError(t, s.SaveAnswer(ctx, &models.OnboardingAnswer{UserID: "u1", QuestionID: "q1", Answer: "second", FollowUpCount: 1, Confidence: 0.6, CreatedAt: t0.Add(time.Hour), UpdatedAt: t0.Add(time.Hour)}))

		a, err := s.GetAnswer(ctx, "u1", "q1")
		require.NoError(t, err)
		assert.Equal(t, "second", a.Answer)
		assert.Equal(t, 1, a.FollowUpCount)
		assert.True(t, t0.Equal(a.CreatedAt), "upsert keeps the original creation time")

		n, err := s.CountAnswers(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestRebindDollar(t *testing.T) {
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b IN ($2, $3)", rebindDollar("SELECT * FROM t WHERE a = ? AND b IN (?, ?)"))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}

func TestNewSQLiteStorage_OpenError(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(driverName, dsn string) (*sql.DB, error) {
		return nil, errors.New("disk on fire")
	}

	_, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "kindred.db"), zap.NewNop())
	assert.ErrorContains(t, err, "disk on fire")
}
