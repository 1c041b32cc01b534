package domain

const (
	StatusPending         = "pending"
	StatusInProgress      = "in_progress"
	StatusWaitingApproval = "waiting_approval"
	StatusApproved        = "approved"

	// StatusRejected is a DERIVED status, never stored: a work order counts as
	// rejected while status is in_progress and its builder notes carry the
	// REJECTED marker. Used only as a filter/display value.
	StatusRejected = "rejected"
)

const (
	UrgencyUrgent = "Urgent"
	UrgencyHigh   = "High Priority"
	UrgencyMedium = "Medium Priority"
	UrgencyLow    = "Low Priority"
)

// UrgencyRank orders Urgent > High Priority > everything else, matching the
// CASE expression the listing queries sort by.
func UrgencyRank(urgency string) int {
	switch urgency {
	case UrgencyUrgent:
		return 1
	case UrgencyHigh:
		return 2
	default:
		return 3
	}
}

// StatusRank is the fixed ordering of the building detail listing:
// items needing developer attention first.
func StatusRank(status string) int {
	switch status {
	case StatusWaitingApproval:
		return 1
	case StatusInProgress:
		return 2
	case StatusPending:
		return 3
	default:
		return 4
	}
}
