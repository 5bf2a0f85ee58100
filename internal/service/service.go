// Package service runs the recompute-and-persist flows around the scoring
// packages: it loads current data from storage, calls the pure scorers and
// writes the new snapshots back.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/xaenox/kindred/internal/analyzer"
	"github.com/xaenox/kindred/internal/metrics"
	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/storage"
)

type Config struct {
	SafetyAlertThreshold int
	DiscoveryLimit       int
	CacheSize            int
	DiscoveryWorkers     int
}

func DefaultConfig() Config {
	return Config{
		SafetyAlertThreshold: 70,
		DiscoveryLimit:       10,
		CacheSize:            1024,
		DiscoveryWorkers:     4,
	}
}

// Alerter is notified about content moderators should look at.
type Alerter interface {
	FlaggedMessage(ctx context.Context, msg *models.Message) error
	RiskEscalated(ctx context.Context, ra *models.RiskAssessment, previous models.RiskLevel) error
}

type NoopAlerter struct{}

func (NoopAlerter) FlaggedMessage(context.Context, *models.Message) error { return nil }

func (NoopAlerter) RiskEscalated(context.Context, *models.RiskAssessment, models.RiskLevel) error {
	return nil
}

type Option func(*Service)

func WithAlerter(a Alerter) Option {
	return func(s *Service) { s.alerter = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAnalyzer(a analyzer.Analyzer) Option {
	return func(s *Service) { s.analyzer = a }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type Service struct {
	store    storage.Storage
	analyzer analyzer.Analyzer
	alerter  Alerter
	metrics  *metrics.Metrics
	logger   *zap.Logger
	cfg      Config
	now      func() time.Time
	locks    *keyedMutex
	compat   *lru.Cache[string, models.Compatibility]
}

func New(store storage.Storage, cfg Config, logger *zap.Logger, opts ...Option) (*Service, error) {
	defaults := DefaultConfig()
	if cfg.SafetyAlertThreshold <= 0 {
		cfg.SafetyAlertThreshold = defaults.SafetyAlertThreshold
	}
	if cfg.DiscoveryLimit <= 0 {
		cfg.DiscoveryLimit = defaults.DiscoveryLimit
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaults.CacheSize
	}
	if cfg.DiscoveryWorkers <= 0 {
		cfg.DiscoveryWorkers = defaults.DiscoveryWorkers
	}

	cache, err := lru.New[string, models.Compatibility](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create compatibility cache: %w", err)
	}

	s := &Service{
		store:    store,
		analyzer: analyzer.NewRuleAnalyzer(),
		alerter:  NoopAlerter{},
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		locks:    newKeyedMutex(),
		compat:   cache,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SetAlerter swaps the alert sink. It must be called before the service
// starts handling requests.
func (s *Service) SetAlerter(a Alerter) {
	if a == nil {
		a = NoopAlerter{}
	}
	s.alerter = a
}

func (s *Service) newID() string {
	return uuid.New().String()
}

// AnalyzeText runs a text analysis without persisting anything.
func (s *Service) AnalyzeText(text string, kind analyzer.Kind) models.TextAnalysisResult {
	result := s.analyzer.Analyze(text, kind)
	s.metrics.ObserveAnalysis(string(kind), result.Score, result.Flags)
	return result
}

func (s *Service) ScoreAnswer(answer string) models.AnswerQuality {
	quality := s.analyzer.ScoreAnswerQuality(answer)
	s.metrics.ObserveScore("answer_quality", quality.Score)
	return quality
}

func (s *Service) FollowUp(answer, questionContext string) (string, bool) {
	return s.analyzer.GenerateFollowUp(answer, questionContext)
}
