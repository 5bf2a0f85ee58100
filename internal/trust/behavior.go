package trust

import "github.com/xaenox/kindred/internal/models"

// Points returns the signed value recorded with a behavior log entry. It is
// kept for audit; the aggregate formulas count entries by type instead.
func Points(t models.BehaviorType) int {
	switch t {
	case models.BehaviorMessageSent:
		return 1
	case models.BehaviorMessageReceived:
		return 0
	case models.BehaviorLikeSent:
		return 1
	case models.BehaviorLikeReceived:
		return 0
	case models.BehaviorMatchCreated:
		return 5
	case models.BehaviorDateScheduled:
		return 3
	case models.BehaviorDateCompleted:
		return 10
	case models.BehaviorDateCancelled:
		return -5
	case models.BehaviorReportFiled:
		return -10
	case models.BehaviorBlockCreated:
		return 0
	case models.BehaviorProfileUpdated:
		return 2
	default:
		return 0
	}
}
