package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/xaenox/kindred/internal/models"
)

func (s *SQLStorage) SaveLike(ctx context.Context, like *models.Like) error {
	query := `INSERT INTO likes (from_user_id, to_user_id, created_at) VALUES (?, ?, ?)`

	err := s.insert(ctx, query, like.FromUserID, like.ToUserID, utc(like.CreatedAt))
	if err != nil && err != ErrDuplicate {
		return fmt.Errorf("error saving like: %w", err)
	}
	return err
}

func (s *SQLStorage) HasLike(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	n, err := s.count(ctx, `SELECT COUNT(*) FROM likes WHERE from_user_id = ? AND to_user_id = ?`, fromUserID, toUserID)
	if err != nil {
		return false, fmt.Errorf("error checking like: %w", err)
	}
	return n > 0, nil
}

func (s *SQLStorage) ListLikedUserIDs(ctx context.Context, fromUserID string) ([]string, error) {
	ids, err := s.listStrings(ctx, `SELECT to_user_id FROM likes WHERE from_user_id = ? ORDER BY to_user_id`, fromUserID)
	if err != nil {
		return nil, fmt.Errorf("error querying likes: %w", err)
	}
	return ids, nil
}

const matchColumns = `id, user_a_id, user_b_id, compatibility, confidence_level, is_active, created_at, updated_at`

func scanMatch(row scanner) (*models.Match, error) {
	m := &models.Match{}
	var compat string
	err := row.Scan(&m.ID, &m.UserAID, &m.UserBID, &compat, &m.ConfidenceLevel, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(compat, &m.Compatibility); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *SQLStorage) CreateMatch(ctx context.Context, match *models.Match) error {
	compat, err := encodeJSON(match.Compatibility)
	if err != nil {
		return err
	}

	query := `INSERT INTO matches (` + matchColumns + `) VALUES (` + placeholders(8) + `)`

	err = s.insert(ctx, query,
		match.ID,
		match.UserAID,
		match.UserBID,
		compat,
		match.ConfidenceLevel,
		match.IsActive,
		utc(match.CreatedAt),
		utc(match.UpdatedAt),
	)
	if err != nil && err != ErrDuplicate {
		return fmt.Errorf("error creating match: %w", err)
	}
	return err
}

func (s *SQLStorage) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	m, err := scanMatch(s.queryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

func (s *SQLStorage) ListMatches(ctx context.Context, userID string, activeOnly bool) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE (user_a_id = ? OR user_b_id = ?)`
	args := []any{userID, userID}
	if activeOnly {
		query += ` AND is_active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *SQLStorage) TouchMatch(ctx context.Context, id string, at time.Time) error {
	err := s.execOne(ctx, `UPDATE matches SET updated_at = ? WHERE id = ?`, utc(at), id)
	if err != nil && err != ErrNotFound {
		return fmt.Errorf("error touching match: %w", err)
	}
	return err
}

func (s *SQLStorage) DeactivateMatches(ctx context.Context, userA, userB string) error {
	query := `
		UPDATE matches SET is_active = ?
		WHERE (user_a_id = ? AND user_b_id = ?) OR (user_a_id = ? AND user_b_id = ?)`

	if _, err := s.exec(ctx, query, false, userA, userB, userB, userA); err != nil {
		return fmt.Errorf("error deactivating matches: %w", err)
	}
	return nil
}

func (s *SQLStorage) SaveScheduledDate(ctx context.Context, date *models.ScheduledDate) error {
	query := `
		INSERT INTO scheduled_dates (id, match_id, scheduler_id, partner_id, date_time, location, is_public_place, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	err := s.insert(ctx, query,
		date.ID,
		date.MatchID,
		date.SchedulerID,
		date.PartnerID,
		utc(date.DateTime),
		date.Location,
		date.IsPublicPlace,
		utc(date.CreatedAt),
	)
	if err != nil && err != ErrDuplicate {
		return fmt.Errorf("error saving scheduled date: %w", err)
	}
	return err
}
