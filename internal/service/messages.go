package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/kindred/internal/analyzer"
	"github.com/xaenox/kindred/internal/models"
)

const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200
)

// SendMessage stores a message with its safety analysis and alerts
// moderators when the score falls under the configured threshold.
func (s *Service) SendMessage(ctx context.Context, userID, matchID, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, invalid("message content is required")
	}

	m, err := s.participantMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, notFound("match")
	}

	analysis := s.AnalyzeText(content, analyzer.KindSafety)

	now := s.now()
	msg := &models.Message{
		ID:          s.newID(),
		MatchID:     m.ID,
		SenderID:    userID,
		ReceiverID:  m.Other(userID),
		Content:     content,
		SafetyScore: analysis.Score,
		SafetyFlags: analysis.Flags,
		Status:      models.MessageSent,
		CreatedAt:   now,
	}
	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	if err := s.store.TouchMatch(ctx, m.ID, now); err != nil {
		s.logger.Error("Failed to touch match",
			zap.Error(err),
			zap.String("match_id", m.ID))
	}

	s.recordBehavior(ctx, msg.SenderID, models.BehaviorMessageSent, m.ID)
	s.recordBehavior(ctx, msg.ReceiverID, models.BehaviorMessageReceived, m.ID)

	if msg.SafetyScore < s.cfg.SafetyAlertThreshold {
		s.logger.Warn("Flagged message",
			zap.String("message_id", msg.ID),
			zap.String("sender_id", msg.SenderID),
			zap.Int("safety_score", msg.SafetyScore),
			zap.Strings("flags", msg.SafetyFlags))
		if err := s.alerter.FlaggedMessage(ctx, msg); err != nil {
			s.logger.Error("Failed to raise flagged message alert",
				zap.Error(err),
				zap.String("message_id", msg.ID))
		}
	}

	return msg, nil
}

// ListMessages returns up to limit messages older than before, oldest first.
func (s *Service) ListMessages(ctx context.Context, userID, matchID string, limit int, before *time.Time) ([]*models.Message, error) {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	if limit > MaxMessageLimit {
		limit = MaxMessageLimit
	}

	if _, err := s.participantMatch(ctx, userID, matchID); err != nil {
		return nil, err
	}

	messages, err := s.store.ListMessages(ctx, matchID, limit, before)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	return messages, nil
}

// MarkRead marks every unread message userID received in the match as read.
func (s *Service) MarkRead(ctx context.Context, userID, matchID string) (int, error) {
	if _, err := s.participantMatch(ctx, userID, matchID); err != nil {
		return 0, err
	}

	n, err := s.store.MarkRead(ctx, matchID, userID, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return n, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	n, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return n, nil
}
