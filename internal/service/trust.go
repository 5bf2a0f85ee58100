package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/storage"
	"github.com/xaenox/kindred/internal/trust"
)

// GetTrustScore returns the stored score, creating the default one on first read.
func (s *Service) GetTrustScore(ctx context.Context, userID string) (*models.TrustScore, error) {
	ts, err := s.store.GetTrustScore(ctx, userID)
	if err == nil {
		return ts, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to get trust score: %w", err)
	}

	unlock := s.locks.Lock("trust:" + userID)
	defer unlock()

	// Another caller may have created it while we waited.
	if ts, err := s.store.GetTrustScore(ctx, userID); err == nil {
		return ts, nil
	}

	def := trust.Default(userID, s.now())
	if err := s.store.SaveTrustScore(ctx, &def); err != nil {
		return nil, fmt.Errorf("failed to save trust score: %w", err)
	}
	return &def, nil
}

// LogBehavior appends a behavior entry and recomputes the user's trust score.
func (s *Service) LogBehavior(ctx context.Context, userID string, bt models.BehaviorType, metadata string) (*models.TrustScore, error) {
	if !bt.Valid() {
		return nil, invalid("unknown behavior type")
	}

	entry := &models.BehaviorLogEntry{
		ID:           s.newID(),
		UserID:       userID,
		BehaviorType: bt,
		Score:        trust.Points(bt),
		Metadata:     metadata,
		CreatedAt:    s.now(),
	}
	if err := s.store.AppendBehavior(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append behavior: %w", err)
	}

	return s.recalculateTrust(ctx, userID)
}

func (s *Service) recalculateTrust(ctx context.Context, userID string) (*models.TrustScore, error) {
	unlock := s.locks.Lock("trust:" + userID)
	defer unlock()

	now := s.now()
	entries, err := s.store.ListBehaviorSince(ctx, userID, now.Add(-trust.Window))
	if err != nil {
		return nil, fmt.Errorf("failed to list behavior: %w", err)
	}

	ts := trust.Recalculate(userID, entries, now)
	if err := s.store.SaveTrustScore(ctx, &ts); err != nil {
		return nil, fmt.Errorf("failed to save trust score: %w", err)
	}

	s.metrics.IncRecompute("trust")
	s.metrics.ObserveScore("trust", ts.Overall)
	return &ts, nil
}

// recordBehavior is LogBehavior for side paths: failures are logged and the
// calling flow carries on.
func (s *Service) recordBehavior(ctx context.Context, userID string, bt models.BehaviorType, metadata string) {
	if _, err := s.LogBehavior(ctx, userID, bt, metadata); err != nil {
		s.logger.Error("Failed to log behavior",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("behavior_type", string(bt)))
	}
}
