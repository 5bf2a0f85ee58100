package storage

import (
	"context"
	"fmt"

	"github.com/xaenox/kindred/internal/models"
)

func (s *SQLStorage) SaveReport(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (id, reporter_id, reported_user_id, report_type, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	err := s.insert(ctx, query,
		report.ID,
		report.ReporterID,
		report.ReportedUserID,
		report.Type,
		report.Description,
		utc(report.CreatedAt),
	)
	if err != nil && err != ErrDuplicate {
		return fmt.Errorf("error saving report: %w", err)
	}
	return err
}

func (s *SQLStorage) CountReportsAgainst(ctx context.Context, userID string) (int, error) {
	n, err := s.count(ctx, `SELECT COUNT(*) FROM reports WHERE reported_user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("error counting reports: %w", err)
	}
	return n, nil
}

func (s *SQLStorage) GetRiskAssessment(ctx context.Context, userID string) (*models.RiskAssessment, error) {
	query := `
		SELECT user_id, risk_index, risk_level, report_score, message_risk_score, last_assessed_at
		FROM risk_assessments
		WHERE user_id = ?`

	ra := &models.RiskAssessment{}
	err := s.queryRow(ctx, query, userID).Scan(
		&ra.UserID,
		&ra.RiskIndex,
		&ra.RiskLevel,
		&ra.ReportScore,
		&ra.MessageRiskScore,
		&ra.LastAssessedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return ra, nil
}

func (s *SQLStorage) SaveRiskAssessment(ctx context.Context, ra *models.RiskAssessment) error {
	query := `
		INSERT INTO risk_assessments (user_id, risk_index, risk_level, report_score, message_risk_score, last_assessed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			risk_index = excluded.risk_index,
			risk_level = excluded.risk_level,
			report_score = excluded.report_score,
			message_risk_score = excluded.message_risk_score,
			last_assessed_at = excluded.last_assessed_at`

	_, err := s.exec(ctx, query, ra.UserID, ra.RiskIndex, ra.RiskLevel, ra.ReportScore, ra.MessageRiskScore, utc(ra.LastAssessedAt))
	if err != nil {
		return fmt.Errorf("error saving risk assessment: %w", err)
	}
	return nil
}

func (s *SQLStorage) SaveBlock(ctx context.Context, block *models.Block) error {
	query := `
		INSERT INTO blocks (blocker_id, blocked_user_id, reason, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (blocker_id, blocked_user_id) DO UPDATE SET reason = excluded.reason`

	_, err := s.exec(ctx, query, block.BlockerID, block.BlockedUserID, block.Reason, utc(block.CreatedAt))
	if err != nil {
		return fmt.Errorf("error saving block: %w", err)
	}
	return nil
}

func (s *SQLStorage) ListBlockedUserIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT blocked_user_id FROM blocks WHERE blocker_id = ?
		UNION
		SELECT blocker_id FROM blocks WHERE blocked_user_id = ?
		ORDER BY 1`

	ids, err := s.listStrings(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying blocks: %w", err)
	}
	return ids, nil
}

func (s *SQLStorage) ListSafetySignals(ctx context.Context, userID string) ([]models.SafetySignal, error) {
	query := `
		SELECT user_id, signal_type, label, verified_at
		FROM safety_signals
		WHERE user_id = ?
		ORDER BY verified_at`

	rows, err := s.query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying safety signals: %w", err)
	}
	defer rows.Close()

	signals := []models.SafetySignal{}
	for rows.Next() {
		var sig models.SafetySignal
		if err := rows.Scan(&sig.UserID, &sig.SignalType, &sig.Label, &sig.VerifiedAt); err != nil {
			return nil, fmt.Errorf("error scanning safety signal: %w", err)
		}
		signals = append(signals, sig)
	}
	return signals, rows.Err()
}

func (s *SQLStorage) SaveSafetySignal(ctx context.Context, signal *models.SafetySignal) error {
	query := `
		INSERT INTO safety_signals (user_id, signal_type, label, verified_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, signal_type) DO UPDATE SET
			label = excluded.label,
			verified_at = excluded.verified_at`

	_, err := s.exec(ctx, query, signal.UserID, signal.SignalType, signal.Label, utc(signal.VerifiedAt))
	if err != nil {
		return fmt.Errorf("error saving safety signal: %w", err)
	}
	return nil
}
