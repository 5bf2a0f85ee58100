package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/profile"
	"github.com/xaenox/kindred/internal/storage"
)

type CreateProfileInput struct {
	FirstName          string                    `json:"first_name"`
	DisplayName        string                    `json:"display_name"`
	BirthDate          time.Time                 `json:"birth_date"`
	Gender             models.Gender             `json:"gender"`
	GenderPreferences  []models.Gender           `json:"gender_preferences"`
	City               string                    `json:"city"`
	State              string                    `json:"state"`
	Country            string                    `json:"country"`
	Bio                string                    `json:"bio"`
	Height             int                       `json:"height"`
	RelationshipIntent models.RelationshipIntent `json:"relationship_intent"`
	Values             models.Values             `json:"values"`
	Lifestyle          models.Lifestyle          `json:"lifestyle"`
	Dealbreakers       []string                  `json:"dealbreakers"`
}

// UpdateProfileInput is a partial update; nil fields are left unchanged.
type UpdateProfileInput struct {
	FirstName          *string                    `json:"first_name"`
	DisplayName        *string                    `json:"display_name"`
	Bio                *string                    `json:"bio"`
	City               *string                    `json:"city"`
	State              *string                    `json:"state"`
	Country            *string                    `json:"country"`
	Height             *int                       `json:"height"`
	RelationshipIntent *models.RelationshipIntent `json:"relationship_intent"`
	Values             *models.Values             `json:"values"`
	Lifestyle          models.Lifestyle           `json:"lifestyle"`
	Dealbreakers       []string                   `json:"dealbreakers"`
	GenderPreferences  []models.Gender            `json:"gender_preferences"`
}

func (s *Service) CreateProfile(ctx context.Context, userID string, in CreateProfileInput) (*models.Profile, error) {
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, invalid("first name is required")
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, lookup(err, "user")
	}

	now := s.now()
	displayName := in.DisplayName
	if displayName == "" {
		displayName = in.FirstName
	}
	p := &models.Profile{
		ID:                 s.newID(),
		UserID:             userID,
		FirstName:          in.FirstName,
		DisplayName:        displayName,
		BirthDate:          in.BirthDate,
		Gender:             in.Gender,
		GenderPreferences:  in.GenderPreferences,
		City:               in.City,
		State:              in.State,
		Country:            in.Country,
		Bio:                in.Bio,
		Height:             in.Height,
		RelationshipIntent: in.RelationshipIntent,
		Values:             in.Values,
		Lifestyle:          in.Lifestyle,
		Dealbreakers:       in.Dealbreakers,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	p.Strength = profile.CalculateStrength(p, nil, nil)

	if err := s.store.CreateProfile(ctx, p); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, conflict("profile already exists")
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.metrics.IncRecompute("strength")
	s.metrics.ObserveScore("strength", p.Strength.Overall)
	s.logger.Info("Profile created",
		zap.String("user_id", userID),
		zap.String("profile_id", p.ID))
	return p, nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, lookup(err, "profile")
	}
	return p, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*models.Profile, error) {
	unlock := s.locks.Lock("profile:" + userID)
	defer unlock()

	p, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, lookup(err, "profile")
	}

	if in.FirstName != nil && *in.FirstName != "" {
		p.FirstName = *in.FirstName
	}
	if in.DisplayName != nil && *in.DisplayName != "" {
		p.DisplayName = *in.DisplayName
	}
	if in.Bio != nil {
		p.Bio = *in.Bio
	}
	if in.City != nil {
		p.City = *in.City
	}
	if in.State != nil {
		p.State = *in.State
	}
	if in.Country != nil {
		p.Country = *in.Country
	}
	if in.Height != nil {
		p.Height = *in.Height
	}
	if in.RelationshipIntent != nil && *in.RelationshipIntent != "" {
		p.RelationshipIntent = *in.RelationshipIntent
	}
	if in.Values != nil {
		p.Values = *in.Values
	}
	if in.Lifestyle != nil {
		p.Lifestyle = in.Lifestyle
	}
	if in.Dealbreakers != nil {
		p.Dealbreakers = in.Dealbreakers
	}
	if in.GenderPreferences != nil {
		p.GenderPreferences = in.GenderPreferences
	}
	p.UpdatedAt = s.now()

	if err := s.store.UpdateProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	strength, err := s.recomputeStrength(ctx, p)
	if err != nil {
		return nil, err
	}
	p.Strength = strength
	return p, nil
}

// GetStrength returns the stored strength breakdown with fresh tips.
func (s *Service) GetStrength(ctx context.Context, userID string) (models.ProfileStrength, error) {
	p, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		return models.ProfileStrength{}, lookup(err, "profile")
	}
	strength := p.Strength
	strength.Tips = profile.ImprovementTips(strength)
	return strength, nil
}

func (s *Service) AddPhoto(ctx context.Context, userID, url string, isMain bool) (*models.Photo, error) {
	if strings.TrimSpace(url) == "" {
		return nil, invalid("photo url is required")
	}

	unlock := s.locks.Lock("profile:" + userID)
	defer unlock()

	p, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, lookup(err, "profile")
	}
	photos, err := s.store.ListPhotos(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	if len(photos) >= profile.MaxPhotos {
		return nil, invalid(fmt.Sprintf("maximum %d photos allowed", profile.MaxPhotos))
	}

	if isMain {
		if err := s.store.ClearMainPhoto(ctx, p.ID); err != nil {
			return nil, fmt.Errorf("failed to clear main photo: %w", err)
		}
	}

	photo := &models.Photo{
		ID:        s.newID(),
		ProfileID: p.ID,
		URL:       url,
		IsMain:    isMain || len(photos) == 0,
		Order:     len(photos),
		CreatedAt: s.now(),
	}
	if err := s.store.AddPhoto(ctx, photo); err != nil {
		return nil, fmt.Errorf("failed to add photo: %w", err)
	}

	if _, err := s.recomputeStrength(ctx, p); err != nil {
		return nil, err
	}
	return photo, nil
}

func (s *Service) DeletePhoto(ctx context.Context, userID, photoID string) error {
	unlock := s.locks.Lock("profile:" + userID)
	defer unlock()

	p, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		return lookup(err, "profile")
	}
	if err := s.store.DeletePhoto(ctx, p.ID, photoID); err != nil {
		return lookup(err, "photo")
	}

	_, err = s.recomputeStrength(ctx, p)
	return err
}

func (s *Service) AddPrompt(ctx context.Context, userID, question, answer string) (*models.Prompt, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return nil, invalid("prompt question and answer are required")
	}

	unlock := s.locks.Lock("profile:" + userID)
	defer unlock()

	p, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, lookup(err, "profile")
	}
	prompts, err := s.store.ListPrompts(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	if len(prompts) >= profile.MaxPrompts {
		return nil, invalid(fmt.Sprintf("maximum %d prompts allowed", profile.MaxPrompts))
	}

	prompt := &models.Prompt{
		ID:        s.newID(),
		ProfileID: p.ID,
		Question:  question,
		Answer:    answer,
		Order:     len(prompts),
		CreatedAt: s.now(),
	}
	if err := s.store.AddPrompt(ctx, prompt); err != nil {
		return nil, fmt.Errorf("failed to add prompt: %w", err)
	}

	if _, err := s.recomputeStrength(ctx, p); err != nil {
		return nil, err
	}
	return prompt, nil
}

func (s *Service) ListPhotos(ctx context.Context, userID string) ([]models.Photo, error) {
	p, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, lookup(err, "profile")
	}
	return s.store.ListPhotos(ctx, p.ID)
}

func (s *Service) ListPrompts(ctx context.Context, userID string) ([]models.Prompt, error) {
	p, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, lookup(err, "profile")
	}
	return s.store.ListPrompts(ctx, p.ID)
}

// recomputeStrength rebuilds the strength from the current photos and prompts
// and stores it. Callers hold the profile lock.
func (s *Service) recomputeStrength(ctx context.Context, p *models.Profile) (models.ProfileStrength, error) {
	photos, err := s.store.ListPhotos(ctx, p.ID)
	if err != nil {
		return models.ProfileStrength{}, fmt.Errorf("failed to list photos: %w", err)
	}
	prompts, err := s.store.ListPrompts(ctx, p.ID)
	if err != nil {
		return models.ProfileStrength{}, fmt.Errorf("failed to list prompts: %w", err)
	}

	strength := profile.CalculateStrength(p, photos, prompts)
	if err := s.store.SaveProfileStrength(ctx, p.ID, strength); err != nil {
		return models.ProfileStrength{}, fmt.Errorf("failed to save profile strength: %w", err)
	}

	s.metrics.IncRecompute("strength")
	s.metrics.ObserveScore("strength", strength.Overall)
	s.logger.Debug("Profile strength recomputed",
		zap.String("profile_id", p.ID),
		zap.Int("overall", strength.Overall))

	s.recordBehavior(ctx, p.UserID, models.BehaviorProfileUpdated, "")
	return strength, nil
}
