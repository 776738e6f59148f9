package events

import "github.com/google/uuid"

// LeadQualified is published after a conversation transitions into the
// qualified status and its notification rows were committed.
type LeadQualified struct {
	BaseEvent
	ConversationID  uuid.UUID
	PropertyID      uuid.UUID
	NotificationIDs []uuid.UUID
}

// EventName returns the unique event identifier.
func (LeadQualified) EventName() string { return "conversations.lead_qualified" }

// TourScheduled is published after a conversation transitions into the
// tour_scheduled status and its notification rows were committed.
type TourScheduled struct {
	BaseEvent
	ConversationID  uuid.UUID
	PropertyID      uuid.UUID
	NotificationIDs []uuid.UUID
}

// EventName returns the unique event identifier.
func (TourScheduled) EventName() string { return "conversations.tour_scheduled" }

// NotificationStatusChanged is published after a lead notification moves
// between delivery states.
type NotificationStatusChanged struct {
	BaseEvent
	NotificationID uuid.UUID
	ManagerID      uuid.UUID
	Status         string
}

// EventName returns the unique event identifier.
func (NotificationStatusChanged) EventName() string { return "notifications.status_changed" }
