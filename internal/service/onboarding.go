package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/storage"
)

const (
	// MaxFollowUps caps clarifying questions per answer.
	MaxFollowUps = 10
	// FollowUpBelow is the quality score under which a follow-up is offered.
	FollowUpBelow = 60
	// CompletionProgress is the progress percentage needed to finish onboarding.
	CompletionProgress = 50
)

// DefaultQuestions is the question set seeded into an empty store.
var DefaultQuestions = []models.OnboardingQuestion{
	{ID: "q-1", Category: models.CategoryValues, QuestionText: "What role does honesty play in your relationships?", Order: 1, IsActive: true},
	{ID: "q-2", Category: models.CategoryValues, QuestionText: "How important is it that your partner shares your core values?", Order: 2, IsActive: true},
	{ID: "q-3", Category: models.CategoryValues, QuestionText: "Which values matter most to you in a partner? (Rank top 5)", Order: 3, IsActive: true},
	{ID: "q-4", Category: models.CategoryLifestyle, QuestionText: "How do you typically spend your weekends?", Order: 1, IsActive: true},
	{ID: "q-5", Category: models.CategoryLifestyle, QuestionText: "How important is physical fitness in your life?", Order: 2, IsActive: true},
	{ID: "q-6", Category: models.CategoryLifestyle, QuestionText: "What's your ideal living situation?", Order: 3, IsActive: true},
	{ID: "q-7", Category: models.CategoryRelationshipGoals, QuestionText: "What are you looking for in a relationship right now?", Order: 1, IsActive: true},
	{ID: "q-8", Category: models.CategoryRelationshipGoals, QuestionText: "Do you want children?", Order: 2, IsActive: true},
	{ID: "q-9", Category: models.CategoryCommunication, QuestionText: "How do you prefer to communicate in a relationship?", Order: 1, IsActive: true},
	{ID: "q-10", Category: models.CategoryCommunication, QuestionText: "How do you handle conflict in relationships?", Order: 2, IsActive: true},
	{ID: "q-11", Category: models.CategoryBehaviorScenario, QuestionText: "Your partner shares something they're insecure about. What do you do?", Order: 1, IsActive: true},
	{ID: "q-12", Category: models.CategoryBehaviorScenario, QuestionText: "You realize you've made a mistake that affects your partner. How do you handle it?", Order: 2, IsActive: true},
	{ID: "q-13", Category: models.CategoryBoundaries, QuestionText: "What are your non-negotiable boundaries in a relationship?", Order: 1, IsActive: true},
	{ID: "q-14", Category: models.CategoryCommitment, QuestionText: "How long do you typically date before becoming exclusive?", Order: 1, IsActive: true},
}

type AnswerResult struct {
	Answer        *models.OnboardingAnswer `json:"answer"`
	Quality       models.AnswerQuality     `json:"quality"`
	FollowUp      *string                  `json:"follow_up"`
	FollowUpCount int                      `json:"follow_up_count"`
}

// SeedQuestions stores DefaultQuestions when no active question exists yet.
func (s *Service) SeedQuestions(ctx context.Context) error {
	n, err := s.store.CountActiveQuestions(ctx)
	if err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	if n > 0 {
		return nil
	}
	for i := range DefaultQuestions {
		q := DefaultQuestions[i]
		if err := s.store.SaveQuestion(ctx, &q); err != nil {
			return fmt.Errorf("failed to seed question %s: %w", q.ID, err)
		}
	}
	s.logger.Info("Seeded onboarding questions", zap.Int("count", len(DefaultQuestions)))
	return nil
}

func (s *Service) Questions(ctx context.Context, category models.QuestionCategory) ([]*models.OnboardingQuestion, error) {
	if category != "" && !category.Valid() {
		return nil, invalid("unknown question category")
	}
	questions, err := s.store.ListQuestions(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	if questions == nil {
		questions = []*models.OnboardingQuestion{}
	}
	return questions, nil
}

func (s *Service) Progress(ctx context.Context, userID string) (models.OnboardingProgress, error) {
	total, err := s.store.CountActiveQuestions(ctx)
	if err != nil {
		return models.OnboardingProgress{}, fmt.Errorf("failed to count questions: %w", err)
	}
	answered, err := s.store.CountAnswers(ctx, userID)
	if err != nil {
		return models.OnboardingProgress{}, fmt.Errorf("failed to count answers: %w", err)
	}

	progress := models.OnboardingProgress{TotalQuestions: total, AnsweredQuestions: answered}
	if total > 0 {
		progress.Progress = int(math.Round(float64(answered) / float64(total) * 100))
	}

	user, err := s.store.GetUser(ctx, userID)
	switch {
	case err == nil:
		progress.IsComplete = user.OnboardingCompleted
	case !errors.Is(err, storage.ErrNotFound):
		return models.OnboardingProgress{}, fmt.Errorf("failed to get user: %w", err)
	}
	return progress, nil
}

// SubmitAnswer scores an answer, decides whether to ask a follow-up and
// stores the latest answer for the question.
func (s *Service) SubmitAnswer(ctx context.Context, userID, questionID, answer string) (*AnswerResult, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, invalid("answer is required")
	}

	unlock := s.locks.Lock("answer:" + userID + ":" + questionID)
	defer unlock()

	question, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, lookup(err, "question")
	}

	now := s.now()
	existing, err := s.store.GetAnswer(ctx, userID, questionID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}

	quality := s.ScoreAnswer(answer)

	followUpCount := 0
	createdAt := now
	if existing != nil {
		followUpCount = existing.FollowUpCount
		createdAt = existing.CreatedAt
	}

	var followUp *string
	if followUpCount < MaxFollowUps && quality.Score < FollowUpBelow {
		if q, ok := s.FollowUp(answer, question.QuestionText); ok {
			followUp = &q
			followUpCount++
		}
	}

	saved := &models.OnboardingAnswer{
		UserID:        userID,
		QuestionID:    questionID,
		Answer:        answer,
		FollowUpCount: followUpCount,
		Confidence:    float64(quality.Factors.Authenticity) / 100,
		CreatedAt:     createdAt,
		UpdatedAt:     now,
	}
	if err := s.store.SaveAnswer(ctx, saved); err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	return &AnswerResult{
		Answer:        saved,
		Quality:       quality,
		FollowUp:      followUp,
		FollowUpCount: followUpCount,
	}, nil
}

// CompleteOnboarding marks the user as onboarded once enough questions are answered.
func (s *Service) CompleteOnboarding(ctx context.Context, userID string) error {
	progress, err := s.Progress(ctx, userID)
	if err != nil {
		return err
	}
	if progress.Progress < CompletionProgress {
		return invalid("please answer more questions before completing onboarding")
	}

	unlock := s.locks.Lock("user:" + userID)
	defer unlock()

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return lookup(err, "user")
	}
	user.OnboardingCompleted = true
	if err := s.store.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info("Onboarding completed", zap.String("user_id", userID))
	return nil
}
