package storage

import (
	"context"
	"errors"
	"time"

	"github.com/xaenox/kindred/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type Storage interface {
	UserStorage
	ProfileStorage
	MatchStorage
	MessageStorage
	BehaviorStorage
	SafetyStorage
	OnboardingStorage
	Close() error
}

type UserStorage interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
}

// ProfileFilter narrows ListProfiles to discoverable candidates: active users
// that finished onboarding, minus ExcludeUserIDs, by strength descending.
type ProfileFilter struct {
	ExcludeUserIDs []string
}

type ProfileStorage interface {
	CreateProfile(ctx context.Context, profile *models.Profile) error
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	SaveProfileStrength(ctx context.Context, profileID string, strength models.ProfileStrength) error
	ListProfiles(ctx context.Context, filter ProfileFilter) ([]*models.Profile, error)

	ListPhotos(ctx context.Context, profileID string) ([]models.Photo, error)
	AddPhoto(ctx context.Context, photo *models.Photo) error
	ClearMainPhoto(ctx context.Context, profileID string) error
	DeletePhoto(ctx context.Context, profileID, photoID string) error

	ListPrompts(ctx context.Context, profileID string) ([]models.Prompt, error)
	AddPrompt(ctx context.Context, prompt *models.Prompt) error
}

type MatchStorage interface {
	SaveLike(ctx context.Context, like *models.Like) error
	HasLike(ctx context.Context, fromUserID, toUserID string) (bool, error)
	ListLikedUserIDs(ctx context.Context, fromUserID string) ([]string, error)

	CreateMatch(ctx context.Context, match *models.Match) error
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	ListMatches(ctx context.Context, userID string, activeOnly bool) ([]*models.Match, error)
	TouchMatch(ctx context.Context, id string, at time.Time) error
	DeactivateMatches(ctx context.Context, userA, userB string) error

	SaveScheduledDate(ctx context.Context, date *models.ScheduledDate) error
}

type MessageStorage interface {
	SaveMessage(ctx context.Context, msg *models.Message) error
	// ListMessages returns up to limit messages older than before (when set),
	// newest first.
	ListMessages(ctx context.Context, matchID string, limit int, before *time.Time) ([]*models.Message, error)
	MarkRead(ctx context.Context, matchID, receiverID string, at time.Time) (int, error)
	CountUnread(ctx context.Context, receiverID string) (int, error)
	ListFlaggedScores(ctx context.Context, senderID string, below int) ([]int, error)
}

type BehaviorStorage interface {
	AppendBehavior(ctx context.Context, entry *models.BehaviorLogEntry) error
	ListBehaviorSince(ctx context.Context, userID string, since time.Time) ([]models.BehaviorLogEntry, error)
	GetTrustScore(ctx context.Context, userID string) (*models.TrustScore, error)
	SaveTrustScore(ctx context.Context, score *models.TrustScore) error
}

type SafetyStorage interface {
	SaveReport(ctx context.Context, report *models.Report) error
	CountReportsAgainst(ctx context.Context, userID string) (int, error)
	GetRiskAssessment(ctx context.Context, userID string) (*models.RiskAssessment, error)
	SaveRiskAssessment(ctx context.Context, ra *models.RiskAssessment) error
	SaveBlock(ctx context.Context, block *models.Block) error
	// ListBlockedUserIDs returns users blocked by or blocking userID.
	ListBlockedUserIDs(ctx context.Context, userID string) ([]string, error)
	ListSafetySignals(ctx context.Context, userID string) ([]models.SafetySignal, error)
	SaveSafetySignal(ctx context.Context, signal *models.SafetySignal) error
}

type OnboardingStorage interface {
	SaveQuestion(ctx context.Context, q *models.OnboardingQuestion) error
	GetQuestion(ctx context.Context, id string) (*models.OnboardingQuestion, error)
	// ListQuestions returns active questions, all categories when category is empty.
	ListQuestions(ctx context.Context, category models.QuestionCategory) ([]*models.OnboardingQuestion, error)
	CountActiveQuestions(ctx context.Context) (int, error)
	GetAnswer(ctx context.Context, userID, questionID string) (*models.OnboardingAnswer, error)
	SaveAnswer(ctx context.Context, a *models.OnboardingAnswer) error
	CountAnswers(ctx context.Context, userID string) (int, error)
}
