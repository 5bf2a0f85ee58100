package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xaenox/kindred/internal/models"
)

const messageColumns = `id, match_id, sender_id, receiver_id, content, safety_score, safety_flags, status, read_at, created_at`

func scanMessage(row scanner) (*models.Message, error) {
	m := &models.Message{}
	var flags string
	var readAt sql.NullTime
	err := row.Scan(
		&m.ID,
		&m.MatchID,
		&m.SenderID,
		&m.ReceiverID,
		&m.Content,
		&m.SafetyScore,
		&flags,
		&m.Status,
		&readAt,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if readAt.Valid {
		t := readAt.Time
		m.ReadAt = &t
	}
	if err := decodeJSON(flags, &m.SafetyFlags); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *SQLStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	flags, err := encodeJSON(msg.SafetyFlags)
	if err != nil {
		return err
	}

	var readAt any
	if msg.ReadAt != nil {
		readAt = utc(*msg.ReadAt)
	}

	query := `INSERT INTO messages (` + messageColumns + `) VALUES (` + placeholders(10) + `)`
	err = s.insert(ctx, query,
		msg.ID,
		msg.MatchID,
		msg.SenderID,
		msg.ReceiverID,
		msg.Content,
		msg.SafetyScore,
		flags,
		msg.Status,
		readAt,
		utc(msg.CreatedAt),
	)
	if err != nil && err != ErrDuplicate {
		return fmt.Errorf("error saving message: %w", err)
	}
	return err
}

func (s *SQLStorage) ListMessages(ctx context.Context, matchID string, limit int, before *time.Time) ([]*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE match_id = ?`
	args := []any{matchID}
	if before != nil {
		query += ` AND created_at < ?`
		args = append(args, utc(*before))
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *SQLStorage) MarkRead(ctx context.Context, matchID, receiverID string, at time.Time) (int, error) {
	query := `
		UPDATE messages SET read_at = ?, status = ?
		WHERE match_id = ? AND receiver_id = ? AND read_at IS NULL`

	result, err := s.exec(ctx, query, utc(at), models.MessageRead, matchID, receiverID)
	if err != nil {
		return 0, fmt.Errorf("error marking messages read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error getting rows affected: %w", err)
	}
	return int(n), nil
}

func (s *SQLStorage) CountUnread(ctx context.Context, receiverID string) (int, error) {
	n, err := s.count(ctx, `SELECT COUNT(*) FROM messages WHERE receiver_id = ? AND read_at IS NULL`, receiverID)
	if err != nil {
		return 0, fmt.Errorf("error counting unread messages: %w", err)
	}
	return n, nil
}

func (s *SQLStorage) ListFlaggedScores(ctx context.Context, senderID string, below int) ([]int, error) {
	rows, err := s.query(ctx, `SELECT safety_score FROM messages WHERE sender_id = ? AND safety_score < ?`, senderID, below)
	if err != nil {
		return nil, fmt.Errorf("error querying flagged messages: %w", err)
	}
	defer rows.Close()

	var scores []int
	for rows.Next() {
		var score int
		if err := rows.Scan(&score); err != nil {
			return nil, fmt.Errorf("error scanning safety score: %w", err)
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}
