package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xaenox/kindred/internal/models"
)

type pairKey struct {
	a, b string
}

// MemoryStorage keeps everything in maps guarded by one RWMutex. Values are
// copied on the way in and out so callers never share state with the store.
type MemoryStorage struct {
	mu sync.RWMutex

	users       map[string]*models.User
	profiles    map[string]*models.Profile
	profileByUs map[string]string
	photos      map[string][]models.Photo
	prompts     map[string][]models.Prompt

	likes   map[pairKey]models.Like
	matches map[string]*models.Match
	dates   []models.ScheduledDate

	messages map[string][]*models.Message

	behavior []models.BehaviorLogEntry
	trust    map[string]models.TrustScore

	reports []models.Report
	risk    map[string]models.RiskAssessment
	blocks  map[pairKey]models.Block
	signals map[string][]models.SafetySignal

	questions map[string]*models.OnboardingQuestion
	answers   map[pairKey]models.OnboardingAnswer
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:       make(map[string]*models.User),
		profiles:    make(map[string]*models.Profile),
		profileByUs: make(map[string]string),
		photos:      make(map[string][]models.Photo),
		prompts:     make(map[string][]models.Prompt),
		likes:       make(map[pairKey]models.Like),
		matches:     make(map[string]*models.Match),
		messages:    make(map[string][]*models.Message),
		trust:       make(map[string]models.TrustScore),
		risk:        make(map[string]models.RiskAssessment),
		blocks:      make(map[pairKey]models.Block),
		signals:     make(map[string][]models.SafetySignal),
		questions:   make(map[string]*models.OnboardingQuestion),
		answers:     make(map[pairKey]models.OnboardingAnswer),
	}
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}

// User methods

func (s *MemoryStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStorage) SaveUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *user
	s.users[user.ID] = &cp
	return nil
}

// Profile methods

func (s *MemoryStorage) CreateProfile(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profileByUs[profile.UserID]; exists {
		return ErrDuplicate
	}
	cp := *profile
	s.profiles[profile.ID] = &cp
	s.profileByUs[profile.UserID] = profile.ID
	return nil
}

func (s *MemoryStorage) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStorage) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.profileByUs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.profiles[id]
	return &cp, nil
}

func (s *MemoryStorage) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.profiles[profile.ID]
	if !ok {
		return ErrNotFound
	}
	cp := *profile
	cp.Strength = current.Strength
	s.profiles[profile.ID] = &cp
	return nil
}

func (s *MemoryStorage) SaveProfileStrength(ctx context.Context, profileID string, strength models.ProfileStrength) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[profileID]
	if !ok {
		return ErrNotFound
	}
	p.Strength = strength
	return nil
}

func (s *MemoryStorage) ListProfiles(ctx context.Context, filter ProfileFilter) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	excluded := make(map[string]struct{}, len(filter.ExcludeUserIDs))
	for _, id := range filter.ExcludeUserIDs {
		excluded[id] = struct{}{}
	}

	var out []*models.Profile
	for _, p := range s.profiles {
		if _, skip := excluded[p.UserID]; skip {
			continue
		}
		u, ok := s.users[p.UserID]
		if !ok || u.Status != models.UserActive || !u.OnboardingCompleted {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Strength.Overall != out[j].Strength.Overall {
			return out[i].Strength.Overall > out[j].Strength.Overall
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStorage) ListPhotos(ctx context.Context, profileID string) ([]models.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.Photo{}, s.photos[profileID]...), nil
}

func (s *MemoryStorage) AddPhoto(ctx context.Context, photo *models.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.photos[photo.ProfileID] = append(s.photos[photo.ProfileID], *photo)
	return nil
}

func (s *MemoryStorage) ClearMainPhoto(ctx context.Context, profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.photos[profileID] {
		s.photos[profileID][i].IsMain = false
	}
	return nil
}

func (s *MemoryStorage) DeletePhoto(ctx context.Context, profileID, photoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	photos := s.photos[profileID]
	for i, ph := range photos {
		if ph.ID == photoID {
			s.photos[profileID] = append(photos[:i:i], photos[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStorage) ListPrompts(ctx context.Context, profileID string) ([]models.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.Prompt{}, s.prompts[profileID]...), nil
}

func (s *MemoryStorage) AddPrompt(ctx context.Context, prompt *models.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts[prompt.ProfileID] = append(s.prompts[prompt.ProfileID], *prompt)
	return nil
}

// Match methods

func (s *MemoryStorage) SaveLike(ctx context.Context, like *models.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{like.FromUserID, like.ToUserID}
	if _, exists := s.likes[key]; exists {
		return ErrDuplicate
	}
	s.likes[key] = *like
	return nil
}

func (s *MemoryStorage) HasLike(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.likes[pairKey{fromUserID, toUserID}]
	return ok, nil
}

func (s *MemoryStorage) ListLikedUserIDs(ctx context.Context, fromUserID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for key := range s.likes {
		if key.a == fromUserID {
			ids = append(ids, key.b)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStorage) CreateMatch(ctx context.Context, match *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.matches[match.ID]; exists {
		return ErrDuplicate
	}
	cp := *match
	s.matches[match.ID] = &cp
	return nil
}

func (s *MemoryStorage) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryStorage) ListMatches(ctx context.Context, userID string, activeOnly bool) ([]*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Match
	for _, m := range s.matches {
		if !m.Includes(userID) || (activeOnly && !m.IsActive) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *MemoryStorage) TouchMatch(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[id]
	if !ok {
		return ErrNotFound
	}
	m.UpdatedAt = at
	return nil
}

func (s *MemoryStorage) DeactivateMatches(ctx context.Context, userA, userB string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.matches {
		if m.Includes(userA) && m.Includes(userB) {
			m.IsActive = false
		}
	}
	return nil
}

func (s *MemoryStorage) SaveScheduledDate(ctx context.Context, date *models.ScheduledDate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dates = append(s.dates, *date)
	return nil
}

// Message methods

func (s *MemoryStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *msg
	s.messages[msg.MatchID] = append(s.messages[msg.MatchID], &cp)
	return nil
}

func (s *MemoryStorage) ListMessages(ctx context.Context, matchID string, limit int, before *time.Time) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.messages[matchID]
	var out []*models.Message
	for i := len(all) - 1; i >= 0; i-- {
		m := all[i]
		if before != nil && !m.CreatedAt.Before(*before) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, matchID, receiverID string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, m := range s.messages[matchID] {
		if m.ReceiverID == receiverID && m.ReadAt == nil {
			readAt := at
			m.ReadAt = &readAt
			m.Status = models.MessageRead
			n++
		}
	}
	return n, nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context, receiverID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, msgs := range s.messages {
		for _, m := range msgs {
			if m.ReceiverID == receiverID && m.ReadAt == nil {
				n++
			}
		}
	}
	return n, nil
}

func (s *MemoryStorage) ListFlaggedScores(ctx context.Context, senderID string, below int) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var scores []int
	for _, msgs := range s.messages {
		for _, m := range msgs {
			if m.SenderID == senderID && m.SafetyScore < below {
				scores = append(scores, m.SafetyScore)
			}
		}
	}
	return scores, nil
}

// Behavior and trust methods

func (s *MemoryStorage) AppendBehavior(ctx context.Context, entry *models.BehaviorLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.behavior = append(s.behavior, *entry)
	return nil
}

func (s *MemoryStorage) ListBehaviorSince(ctx context.Context, userID string, since time.Time) ([]models.BehaviorLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.BehaviorLogEntry
	for _, e := range s.behavior {
		if e.UserID == userID && !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStorage) GetTrustScore(ctx context.Context, userID string) (*models.TrustScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ts, ok := s.trust[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &ts, nil
}

func (s *MemoryStorage) SaveTrustScore(ctx context.Context, score *models.TrustScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trust[score.UserID] = *score
	return nil
}

// Safety methods

func (s *MemoryStorage) SaveReport(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, *report)
	return nil
}

func (s *MemoryStorage) CountReportsAgainst(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, r := range s.reports {
		if r.ReportedUserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStorage) GetRiskAssessment(ctx context.Context, userID string) (*models.RiskAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ra, ok := s.risk[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &ra, nil
}

func (s *MemoryStorage) SaveRiskAssessment(ctx context.Context, ra *models.RiskAssessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.risk[ra.UserID] = *ra
	return nil
}

func (s *MemoryStorage) SaveBlock(ctx context.Context, block *models.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{block.BlockerID, block.BlockedUserID}
	if existing, ok := s.blocks[key]; ok {
		existing.Reason = block.Reason
		s.blocks[key] = existing
		return nil
	}
	s.blocks[key] = *block
	return nil
}

func (s *MemoryStorage) ListBlockedUserIDs(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for key := range s.blocks {
		switch userID {
		case key.a:
			ids = append(ids, key.b)
		case key.b:
			ids = append(ids, key.a)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStorage) ListSafetySignals(ctx context.Context, userID string) ([]models.SafetySignal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.SafetySignal{}, s.signals[userID]...), nil
}

func (s *MemoryStorage) SaveSafetySignal(ctx context.Context, signal *models.SafetySignal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	signals := s.signals[signal.UserID]
	for i, existing := range signals {
		if existing.SignalType == signal.SignalType {
			signals[i] = *signal
			return nil
		}
	}
	s.signals[signal.UserID] = append(signals, *signal)
	return nil
}

// Onboarding methods

func (s *MemoryStorage) SaveQuestion(ctx context.Context, q *models.OnboardingQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *q
	s.questions[q.ID] = &cp
	return nil
}

func (s *MemoryStorage) GetQuestion(ctx context.Context, id string) (*models.OnboardingQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.questions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (s *MemoryStorage) ListQuestions(ctx context.Context, category models.QuestionCategory) ([]*models.OnboardingQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.OnboardingQuestion
	for _, q := range s.questions {
		if !q.IsActive || (category != "" && q.Category != category) {
			continue
		}
		cp := *q
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

func (s *MemoryStorage) CountActiveQuestions(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, q := range s.questions {
		if q.IsActive {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStorage) GetAnswer(ctx context.Context, userID, questionID string) (*models.OnboardingAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.answers[pairKey{userID, questionID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStorage) SaveAnswer(ctx context.Context, a *models.OnboardingAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{a.UserID, a.QuestionID}
	cp := *a
	if existing, ok := s.answers[key]; ok {
		cp.CreatedAt = existing.CreatedAt
	}
	s.answers[key] = cp
	return nil
}

func (s *MemoryStorage) CountAnswers(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for key := range s.answers {
		if key.a == userID {
			n++
		}
	}
	return n, nil
}
