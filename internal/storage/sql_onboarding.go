package storage

import (
	"context"
	"fmt"

	"github.com/xaenox/kindred/internal/models"
)

func (s *SQLStorage) SaveQuestion(ctx context.Context, q *models.OnboardingQuestion) error {
	query := `
		INSERT INTO onboarding_questions (id, category, question_text, position, is_active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			category = excluded.category,
			question_text = excluded.question_text,
			position = excluded.position,
			is_active = excluded.is_active`

	if _, err := s.exec(ctx, query, q.ID, q.Category, q.QuestionText, q.Order, q.IsActive); err != nil {
		return fmt.Errorf("error saving question: %w", err)
	}
	return nil
}

func (s *SQLStorage) GetQuestion(ctx context.Context, id string) (*models.OnboardingQuestion, error) {
	query := `
		SELECT id, category, question_text, position, is_active
		FROM onboarding_questions
		WHERE id = ?`

	q := &models.OnboardingQuestion{}
	if err := s.queryRow(ctx, query, id).Scan(&q.ID, &q.Category, &q.QuestionText, &q.Order, &q.IsActive); err != nil {
		return nil, notFound(err)
	}
	return q, nil
}

func (s *SQLStorage) ListQuestions(ctx context.Context, category models.QuestionCategory) ([]*models.OnboardingQuestion, error) {
	query := `
		SELECT id, category, question_text, position, is_active
		FROM onboarding_questions
		WHERE is_active = ?`
	args := []any{true}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY category, position`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying questions: %w", err)
	}
	defer rows.Close()

	var questions []*models.OnboardingQuestion
	for rows.Next() {
		q := &models.OnboardingQuestion{}
		if err := rows.Scan(&q.ID, &q.Category, &q.QuestionText, &q.Order, &q.IsActive); err != nil {
			return nil, fmt.Errorf("error scanning question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *SQLStorage) CountActiveQuestions(ctx context.Context) (int, error) {
	n, err := s.count(ctx, `SELECT COUNT(*) FROM onboarding_questions WHERE is_active = ?`, true)
	if err != nil {
		return 0, fmt.Errorf("error counting questions: %w", err)
	}
	return n, nil
}

func (s *SQLStorage) GetAnswer(ctx context.Context, userID, questionID string) (*models.OnboardingAnswer, error) {
	query := `
		SELECT user_id, question_id, answer, follow_up_count, confidence, created_at, updated_at
		FROM onboarding_answers
		WHERE user_id = ? AND question_id = ?`

	a := &models.OnboardingAnswer{}
	err := s.queryRow(ctx, query, userID, questionID).Scan(
		&a.UserID,
		&a.QuestionID,
		&a.Answer,
		&a.FollowUpCount,
		&a.Confidence,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (s *SQLStorage) SaveAnswer(ctx context.Context, a *models.OnboardingAnswer) error {
	query := `
		INSERT INTO onboarding_answers (user_id, question_id, answer, follow_up_count, confidence, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, question_id) DO UPDATE SET
			answer = excluded.answer,
			follow_up_count = excluded.follow_up_count,
			confidence = excluded.confidence,
			updated_at = excluded.updated_at`

	_, err := s.exec(ctx, query,
		a.UserID,
		a.QuestionID,
		a.Answer,
		a.FollowUpCount,
		a.Confidence,
		utc(a.CreatedAt),
		utc(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("error saving answer: %w", err)
	}
	return nil
}

func (s *SQLStorage) CountAnswers(ctx context.Context, userID string) (int, error) {
	n, err := s.count(ctx, `SELECT COUNT(*) FROM onboarding_answers WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("error counting answers: %w", err)
	}
	return n, nil
}
