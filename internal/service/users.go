package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/storage"
)

// CreateUser registers an account. Authentication lives elsewhere; the id is
// whatever the identity provider issued.
func (s *Service) CreateUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, invalid("user id is required")
	}

	if _, err := s.store.GetUser(ctx, userID); err == nil {
		return nil, conflict("user already exists")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	now := s.now()
	user := &models.User{
		ID:           userID,
		Status:       models.UserActive,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info("User created", zap.String("user_id", userID))
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, lookup(err, "user")
	}
	return user, nil
}

// SetUserStatus deactivates or reactivates an account. Deleted accounts stay deleted.
func (s *Service) SetUserStatus(ctx context.Context, userID string, status models.UserStatus) (*models.User, error) {
	switch status {
	case models.UserActive, models.UserSuspended, models.UserDeleted:
	default:
		return nil, invalid("unknown user status")
	}

	unlock := s.locks.Lock("user:" + userID)
	defer unlock()

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, lookup(err, "user")
	}
	if user.Status == models.UserDeleted && status != models.UserDeleted {
		return nil, invalid("cannot reactivate a deleted account")
	}

	user.Status = status
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info("User status changed",
		zap.String("user_id", userID),
		zap.String("status", string(status)))
	return user, nil
}

// Touch records user activity. Failures are logged, not returned.
func (s *Service) Touch(ctx context.Context, userID string) {
	unlock := s.locks.Lock("user:" + userID)
	defer unlock()

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return
	}
	user.LastActiveAt = s.now()
	if err := s.store.SaveUser(ctx, user); err != nil {
		s.logger.Error("Failed to update last activity",
			zap.Error(err),
			zap.String("user_id", userID))
	}
}
