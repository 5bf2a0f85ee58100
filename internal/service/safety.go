package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/safety"
	"github.com/xaenox/kindred/internal/storage"
)

// preDateMessages is how many recent messages the pre-date check reads.
const preDateMessages = 50

func (s *Service) Report(ctx context.Context, reporterID, reportedUserID string, reportType models.ReportType, description string) (*models.Report, error) {
	if reporterID == reportedUserID {
		return nil, invalid("cannot report yourself")
	}
	if !reportType.Valid() {
		return nil, invalid("unknown report type")
	}
	if _, err := s.store.GetUser(ctx, reportedUserID); err != nil {
		return nil, lookup(err, "user")
	}

	report := &models.Report{
		ID:             s.newID(),
		ReporterID:     reporterID,
		ReportedUserID: reportedUserID,
		Type:           reportType,
		Description:    description,
		CreatedAt:      s.now(),
	}
	if err := s.store.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	s.logger.Info("Report filed",
		zap.String("report_id", report.ID),
		zap.String("reported_user_id", reportedUserID),
		zap.String("type", string(reportType)))

	s.recordBehavior(ctx, reportedUserID, models.BehaviorReportFiled, report.ID)
	if _, err := s.updateRiskAssessment(ctx, reportedUserID); err != nil {
		s.logger.Error("Failed to update risk assessment",
			zap.Error(err),
			zap.String("user_id", reportedUserID))
	}

	return report, nil
}

// GetRiskAssessment returns the stored assessment, or a fresh NORMAL one for
// users nobody has reported.
func (s *Service) GetRiskAssessment(ctx context.Context, userID string) (*models.RiskAssessment, error) {
	ra, err := s.store.GetRiskAssessment(ctx, userID)
	if err == nil {
		return ra, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to get risk assessment: %w", err)
	}
	fresh := safety.AssessRisk(userID, 0, nil)
	fresh.LastAssessedAt = s.now()
	return &fresh, nil
}

func (s *Service) updateRiskAssessment(ctx context.Context, userID string) (*models.RiskAssessment, error) {
	unlock := s.locks.Lock("risk:" + userID)
	defer unlock()

	previous := models.RiskNormal
	if prev, err := s.store.GetRiskAssessment(ctx, userID); err == nil {
		previous = prev.RiskLevel
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to get risk assessment: %w", err)
	}

	reports, err := s.store.CountReportsAgainst(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}
	flagged, err := s.store.ListFlaggedScores(ctx, userID, safety.FlaggedBelow)
	if err != nil {
		return nil, fmt.Errorf("failed to list flagged messages: %w", err)
	}

	ra := safety.AssessRisk(userID, reports, flagged)
	ra.LastAssessedAt = s.now()
	if err := s.store.SaveRiskAssessment(ctx, &ra); err != nil {
		return nil, fmt.Errorf("failed to save risk assessment: %w", err)
	}
	s.metrics.IncRecompute("risk")
	s.metrics.ObserveScore("risk", ra.RiskIndex)

	if safety.Escalated(previous, ra.RiskLevel) {
		s.logger.Warn("Risk level escalated",
			zap.String("user_id", userID),
			zap.String("from", string(previous)),
			zap.String("to", string(ra.RiskLevel)))
		if err := s.alerter.RiskEscalated(ctx, &ra, previous); err != nil {
			s.logger.Error("Failed to raise risk alert",
				zap.Error(err),
				zap.String("user_id", userID))
		}
	}
	return &ra, nil
}

// Block hides two users from each other and ends any match between them.
func (s *Service) Block(ctx context.Context, blockerID, blockedUserID, reason string) error {
	if blockerID == blockedUserID {
		return invalid("cannot block yourself")
	}
	if _, err := s.store.GetUser(ctx, blockedUserID); err != nil {
		return lookup(err, "user")
	}

	block := &models.Block{
		BlockerID:     blockerID,
		BlockedUserID: blockedUserID,
		Reason:        reason,
		CreatedAt:     s.now(),
	}
	if err := s.store.SaveBlock(ctx, block); err != nil {
		return fmt.Errorf("failed to save block: %w", err)
	}
	if err := s.store.DeactivateMatches(ctx, blockerID, blockedUserID); err != nil {
		return fmt.Errorf("failed to deactivate matches: %w", err)
	}

	s.recordBehavior(ctx, blockerID, models.BehaviorBlockCreated, blockedUserID)
	return nil
}

// SafetySignals lists a user's verification badges with display labels.
func (s *Service) SafetySignals(ctx context.Context, userID string) ([]models.SafetySignal, error) {
	signals, err := s.store.ListSafetySignals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list safety signals: %w", err)
	}
	for i := range signals {
		signals[i].Label = safety.SignalLabel(signals[i].SignalType)
	}
	return signals, nil
}

// VerifySignal grants a badge, refreshing its timestamp if already held.
func (s *Service) VerifySignal(ctx context.Context, userID string, t models.SafetySignalType) (*models.SafetySignal, error) {
	if !t.Valid() {
		return nil, invalid("unknown safety signal")
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, lookup(err, "user")
	}

	signal := &models.SafetySignal{
		UserID:     userID,
		SignalType: t,
		VerifiedAt: s.now(),
		Label:      safety.SignalLabel(t),
	}
	if err := s.store.SaveSafetySignal(ctx, signal); err != nil {
		return nil, fmt.Errorf("failed to save safety signal: %w", err)
	}
	return signal, nil
}

// PreDateCheck reviews the recent conversation of a match before a meeting.
func (s *Service) PreDateCheck(ctx context.Context, userID, matchID string) (*models.PreDateCheck, error) {
	m, err := s.participantMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}

	messages, err := s.store.ListMessages(ctx, m.ID, preDateMessages, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	contents := make([]string, len(messages))
	for i, msg := range messages {
		contents[i] = msg.Content
	}

	signals, err := s.SafetySignals(ctx, m.Other(userID))
	if err != nil {
		return nil, err
	}

	check := safety.PreDateCheck(contents, signals)
	s.metrics.ObserveScore("pre_date", check.SafetyScore)
	return &check, nil
}
