package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/xaenox/kindred/internal/models"
)

func (s *SQLStorage) AppendBehavior(ctx context.Context, entry *models.BehaviorLogEntry) error {
	query := `
		INSERT INTO behavior_log (id, user_id, behavior_type, score, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	err := s.insert(ctx, query, entry.ID, entry.UserID, entry.BehaviorType, entry.Score, entry.Metadata, utc(entry.CreatedAt))
	if err != nil && err != ErrDuplicate {
		return fmt.Errorf("error appending behavior: %w", err)
	}
	return err
}

func (s *SQLStorage) ListBehaviorSince(ctx context.Context, userID string, since time.Time) ([]models.BehaviorLogEntry, error) {
	query := `
		SELECT id, user_id, behavior_type, score, metadata, created_at
		FROM behavior_log
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at`

	rows, err := s.query(ctx, query, userID, utc(since))
	if err != nil {
		return nil, fmt.Errorf("error querying behavior log: %w", err)
	}
	defer rows.Close()

	var entries []models.BehaviorLogEntry
	for rows.Next() {
		var e models.BehaviorLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.BehaviorType, &e.Score, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning behavior entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLStorage) GetTrustScore(ctx context.Context, userID string) (*models.TrustScore, error) {
	query := `
		SELECT user_id, overall, reply_pattern, commitment, respect, tone_consistency, last_calculated_at
		FROM trust_scores
		WHERE user_id = ?`

	ts := &models.TrustScore{}
	err := s.queryRow(ctx, query, userID).Scan(
		&ts.UserID,
		&ts.Overall,
		&ts.ReplyPattern,
		&ts.Commitment,
		&ts.Respect,
		&ts.ToneConsistency,
		&ts.LastCalculatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return ts, nil
}

func (s *SQLStorage) SaveTrustScore(ctx context.Context, score *models.TrustScore) error {
	query := `
		INSERT INTO trust_scores (user_id, overall, reply_pattern, commitment, respect, tone_consistency, last_calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			overall = excluded.overall,
			reply_pattern = excluded.reply_pattern,
			commitment = excluded.commitment,
			respect = excluded.respect,
			tone_consistency = excluded.tone_consistency,
			last_calculated_at = excluded.last_calculated_at`

	_, err := s.exec(ctx, query,
		score.UserID,
		score.Overall,
		score.ReplyPattern,
		score.Commitment,
		score.Respect,
		score.ToneConsistency,
		utc(score.LastCalculatedAt),
	)
	if err != nil {
		return fmt.Errorf("error saving trust score: %w", err)
	}
	return nil
}
