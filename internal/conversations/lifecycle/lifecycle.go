// Package lifecycle implements the conversation status state machine.
// Status is derived from qualification signals when a conversation is
// written; the derivation is pure so it can be tested apart from storage.
package lifecycle

// Conversation status values. Automation only ever moves a conversation
// into StatusQualified or StatusTourScheduled; the remaining states are set
// by managers working the lead.
const (
	StatusNew           = "new"
	StatusQualified     = "qualified"
	StatusTourScheduled = "tour_scheduled"
	StatusContacted     = "contacted"
	StatusScheduled     = "scheduled"
	StatusConverted     = "converted"
)

// Notification types emitted on qualifying transitions.
const (
	NotificationNewQualifiedLead = "new_qualified_lead"
	NotificationTourScheduled    = "tour_scheduled"
)

// ValidStatus reports whether s is a known conversation status.
func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusQualified, StatusTourScheduled, StatusContacted, StatusScheduled, StatusConverted:
		return true
	}
	return false
}

// Snapshot carries the lifecycle-relevant fields of a conversation row.
type Snapshot struct {
	Status       string
	PreQualified bool
	IsBookTour   bool
}

// Result describes the outcome of one derivation.
type Result struct {
	// Status is the status the row must be written with.
	Status string
	// Changed reports whether Status differs from the previous row.
	Changed bool
	// NotificationType is non-empty when the status transition must fan out
	// lead notifications; always NotificationNewQualifiedLead or
	// NotificationTourScheduled.
	NotificationType string
}

// Derive computes the status for an update from prev to next, comparing the
// new flag values against the previous row rather than re-checking the
// flags alone, so re-applying an identical update derives nothing.
//
// The pre_qualified check runs first and the is_book_tour check second;
// when both flags flip in the same update the later check wins and the
// conversation lands in tour_scheduled.
//
// The notification decision keys off the status value's own transition:
// only a change into qualified or tour_scheduled emits a type, so writing
// the same status twice never duplicates the fan-out.
func Derive(prev, next Snapshot) Result {
	status := next.Status
	if status == "" {
		status = prev.Status
	}
	if status == "" {
		status = StatusNew
	}

	if !prev.PreQualified && next.PreQualified {
		status = StatusQualified
	}
	if !prev.IsBookTour && next.IsBookTour {
		status = StatusTourScheduled
	}

	prevStatus := prev.Status
	if prevStatus == "" {
		prevStatus = StatusNew
	}

	result := Result{
		Status:  status,
		Changed: status != prevStatus,
	}

	if result.Changed {
		switch status {
		case StatusQualified:
			result.NotificationType = NotificationNewQualifiedLead
		case StatusTourScheduled:
			result.NotificationType = NotificationTourScheduled
		}
	}

	return result
}
