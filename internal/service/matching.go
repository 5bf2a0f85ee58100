package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xaenox/kindred/internal/matching"
	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/storage"
)

// MatchConfidence is recorded on every new match.
const MatchConfidence = 0.8

// fallbackScore fills the snapshot when either profile is missing.
const fallbackScore = 70

type Candidate struct {
	Profile       *models.Profile      `json:"profile"`
	MainPhoto     *models.Photo        `json:"main_photo,omitempty"`
	Compatibility models.Compatibility `json:"compatibility"`
}

type LikeResult struct {
	Liked   bool          `json:"liked"`
	Matched bool          `json:"matched"`
	Match   *models.Match `json:"match,omitempty"`
}

type MatchView struct {
	*models.Match
	OtherUserID  string          `json:"other_user_id"`
	OtherProfile *models.Profile `json:"other_profile,omitempty"`
	LastMessage  *models.Message `json:"last_message"`
}

// Discover lists candidates for userID, strongest profiles first, each
// annotated with its compatibility against the caller.
func (s *Service) Discover(ctx context.Context, userID string, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = s.cfg.DiscoveryLimit
	}

	me, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, invalid("complete your profile first")
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	liked, err := s.store.ListLikedUserIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	blocked, err := s.store.ListBlockedUserIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}

	exclude := make([]string, 0, len(liked)+len(blocked)+1)
	exclude = append(exclude, userID)
	exclude = append(exclude, liked...)
	exclude = append(exclude, blocked...)

	profiles, err := s.store.ListProfiles(ctx, storage.ProfileFilter{ExcludeUserIDs: exclude})
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	candidates := make([]Candidate, 0, limit)
	for _, p := range profiles {
		if len(candidates) == limit {
			break
		}
		if !me.Accepts(p.Gender) || !p.Accepts(me.Gender) {
			continue
		}
		candidates = append(candidates, Candidate{Profile: p})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.DiscoveryWorkers)
	for i := range candidates {
		c := &candidates[i]
		g.Go(func() error {
			c.Compatibility = s.compatibility(me, c.Profile)

			photos, err := s.store.ListPhotos(gctx, c.Profile.ID)
			if err != nil {
				return fmt.Errorf("failed to list photos: %w", err)
			}
			for j := range photos {
				if photos[j].IsMain {
					c.MainPhoto = &photos[j]
					break
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return candidates, nil
}

// compatibility memoizes matching.Compatibility on both profiles' versions.
func (s *Service) compatibility(a, b *models.Profile) models.Compatibility {
	key := fmt.Sprintf("%s@%d|%s@%d", a.ID, a.UpdatedAt.UnixNano(), b.ID, b.UpdatedAt.UnixNano())
	if c, ok := s.compat.Get(key); ok {
		return c
	}
	c := matching.Compatibility(a, b)
	s.compat.Add(key, c)
	s.metrics.ObserveScore("compatibility", c.Overall)
	return c
}

func (s *Service) Like(ctx context.Context, fromUserID, toUserID string) (*LikeResult, error) {
	if fromUserID == toUserID {
		return nil, invalid("cannot like yourself")
	}

	target, err := s.store.GetUser(ctx, toUserID)
	if err != nil {
		return nil, lookup(err, "user")
	}
	if target.Status != models.UserActive {
		return nil, notFound("user")
	}

	now := s.now()
	if err := s.store.SaveLike(ctx, &models.Like{FromUserID: fromUserID, ToUserID: toUserID, CreatedAt: now}); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, conflict("already liked this user")
		}
		return nil, fmt.Errorf("failed to save like: %w", err)
	}
	s.recordBehavior(ctx, fromUserID, models.BehaviorLikeSent, "")
	s.recordBehavior(ctx, toUserID, models.BehaviorLikeReceived, "")

	mutual, err := s.store.HasLike(ctx, toUserID, fromUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check mutual like: %w", err)
	}
	if !mutual {
		return &LikeResult{Liked: true}, nil
	}

	match := &models.Match{
		ID:              s.newID(),
		UserAID:         fromUserID,
		UserBID:         toUserID,
		Compatibility:   s.matchSnapshot(ctx, fromUserID, toUserID),
		ConfidenceLevel: MatchConfidence,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateMatch(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	s.recordBehavior(ctx, fromUserID, models.BehaviorMatchCreated, match.ID)
	s.recordBehavior(ctx, toUserID, models.BehaviorMatchCreated, match.ID)
	s.logger.Info("Match created",
		zap.String("match_id", match.ID),
		zap.String("user_a_id", fromUserID),
		zap.String("user_b_id", toUserID),
		zap.Int("overall", match.Compatibility.Overall))

	return &LikeResult{Liked: true, Matched: true, Match: match}, nil
}

// matchSnapshot is the compatibility frozen onto a new match.
func (s *Service) matchSnapshot(ctx context.Context, userA, userB string) models.Compatibility {
	a, errA := s.store.GetProfileByUserID(ctx, userA)
	b, errB := s.store.GetProfileByUserID(ctx, userB)
	if errA != nil || errB != nil {
		return models.Compatibility{
			Overall:       fallbackScore,
			Values:        fallbackScore,
			Lifestyle:     fallbackScore,
			Intent:        fallbackScore,
			Communication: fallbackScore,
			Logistics:     fallbackScore,
			Reasons:       []string{},
		}
	}
	return matching.Compatibility(a, b)
}

// Pass hides a candidate from discovery. Passing twice is not an error.
func (s *Service) Pass(ctx context.Context, userID, targetUserID string) error {
	if userID == targetUserID {
		return invalid("cannot pass on yourself")
	}
	err := s.store.SaveLike(ctx, &models.Like{FromUserID: userID, ToUserID: targetUserID, CreatedAt: s.now()})
	if err != nil && !errors.Is(err, storage.ErrDuplicate) {
		return fmt.Errorf("failed to save pass: %w", err)
	}
	return nil
}

func (s *Service) ListMatches(ctx context.Context, userID string) ([]MatchView, error) {
	matches, err := s.store.ListMatches(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	views := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		view, err := s.matchView(ctx, userID, m)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Service) GetMatch(ctx context.Context, userID, matchID string) (*MatchView, error) {
	m, err := s.participantMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	view, err := s.matchView(ctx, userID, m)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *Service) matchView(ctx context.Context, userID string, m *models.Match) (MatchView, error) {
	view := MatchView{Match: m, OtherUserID: m.Other(userID)}

	other, err := s.store.GetProfileByUserID(ctx, view.OtherUserID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return MatchView{}, fmt.Errorf("failed to get profile: %w", err)
	}
	view.OtherProfile = other

	last, err := s.store.ListMessages(ctx, m.ID, 1, nil)
	if err != nil {
		return MatchView{}, fmt.Errorf("failed to get last message: %w", err)
	}
	if len(last) > 0 {
		view.LastMessage = last[0]
	}
	return view, nil
}

// participantMatch loads a match userID takes part in. Matches of other users
// read as not found.
func (s *Service) participantMatch(ctx context.Context, userID, matchID string) (*models.Match, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, lookup(err, "match")
	}
	if !m.Includes(userID) {
		return nil, notFound("match")
	}
	return m, nil
}

func (s *Service) ScheduleDate(ctx context.Context, userID, matchID string, at time.Time, location string, isPublicPlace *bool) (*models.ScheduledDate, error) {
	if at.IsZero() {
		return nil, invalid("date time is required")
	}
	m, err := s.participantMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}

	public := true
	if isPublicPlace != nil {
		public = *isPublicPlace
	}
	date := &models.ScheduledDate{
		ID:            s.newID(),
		MatchID:       m.ID,
		SchedulerID:   userID,
		PartnerID:     m.Other(userID),
		DateTime:      at,
		Location:      location,
		IsPublicPlace: public,
		CreatedAt:     s.now(),
	}
	if err := s.store.SaveScheduledDate(ctx, date); err != nil {
		return nil, fmt.Errorf("failed to save scheduled date: %w", err)
	}

	s.recordBehavior(ctx, userID, models.BehaviorDateScheduled, m.ID)
	return date, nil
}
