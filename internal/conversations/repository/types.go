package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Conversation is one recorded interaction between a lead and a property
// chatbot. Status is derived by the lifecycle state machine on write and is
// never accepted verbatim from automation callers.
type Conversation struct {
	ID                      uuid.UUID       `json:"id"`
	ChatbotID               uuid.UUID       `json:"chatbotId"`
	LeadID                  *uuid.UUID      `json:"leadId,omitempty"`
	StartTime               time.Time       `json:"startTime"`
	EndTime                 *time.Time      `json:"endTime,omitempty"`
	IsQualified             bool            `json:"isQualified"`
	IsBookTour              bool            `json:"isBookTour"`
	TourType                *string         `json:"tourType,omitempty"`
	TourDatetime            *time.Time      `json:"tourDatetime,omitempty"`
	AIIntentSummary         *string         `json:"aiIntentSummary,omitempty"`
	ApartmentSizePreference *string         `json:"apartmentSizePreference,omitempty"`
	MoveInDate              *time.Time      `json:"moveInDate,omitempty"`
	PriceRangeMin           *float64        `json:"priceRangeMin,omitempty"`
	PriceRangeMax           *float64        `json:"priceRangeMax,omitempty"`
	OccupantsCount          *int            `json:"occupantsCount,omitempty"`
	HasPets                 *bool           `json:"hasPets,omitempty"`
	PetDetails              json.RawMessage `json:"petDetails,omitempty"`
	DesiredFeatures         json.RawMessage `json:"desiredFeatures,omitempty"`
	WorkLocation            *string         `json:"workLocation,omitempty"`
	ReasonForMoving         *string         `json:"reasonForMoving,omitempty"`
	PreQualified            bool            `json:"preQualified"`
	Source                  *string         `json:"source,omitempty"`
	Status                  string          `json:"status"`
	LeadScore               *int            `json:"leadScore,omitempty"`
	CreatedAt               time.Time       `json:"createdAt"`
	UpdatedAt               time.Time       `json:"updatedAt"`
}

// Lead is a prospective tenant. Anonymous leads carry neither email nor
// phone; leads with an email are deduplicated on it.
type Lead struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Age        *int      `json:"age,omitempty"`
	LeadSource *string   `json:"leadSource,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Message is a single utterance within a conversation. Rows are immutable
// once written except for the metadata annotation.
type Message struct {
	ID             uuid.UUID       `json:"id"`
	ConversationID uuid.UUID       `json:"conversationId"`
	SenderType     string          `json:"senderType"`
	MessageText    string          `json:"messageText"`
	Timestamp      time.Time       `json:"timestamp"`
	MessageType    *string         `json:"messageType,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// CreatedNotification describes a lead notification row created during a
// conversation write.
type CreatedNotification struct {
	ID        uuid.UUID
	ManagerID uuid.UUID
	Type      string
}

// WriteResult is the outcome of CreateOrUpdateConversation.
type WriteResult struct {
	Conversation Conversation
	// PropertyID is the owning property, resolved during the write.
	PropertyID uuid.UUID
	// StatusChanged reports whether the stored status moved.
	StatusChanged  bool
	PreviousStatus string
	// Notifications lists the rows created by the fan-out, deduplicated by
	// the (conversation, manager, type) unique index. Empty when the write
	// was not a qualifying transition or all rows already existed.
	Notifications []CreatedNotification
}

// UpsertFields carries the writable conversation fields. Nil pointers leave
// the stored value untouched on update.
type UpsertFields struct {
	ID                      *uuid.UUID
	ChatbotID               uuid.UUID
	LeadID                  *uuid.UUID
	EndTime                 *time.Time
	IsQualified             *bool
	IsBookTour              *bool
	TourType                *string
	TourDatetime            *time.Time
	AIIntentSummary         *string
	ApartmentSizePreference *string
	MoveInDate              *time.Time
	PriceRangeMin           *float64
	PriceRangeMax           *float64
	OccupantsCount          *int
	HasPets                 *bool
	PetDetails              json.RawMessage
	DesiredFeatures         json.RawMessage
	WorkLocation            *string
	ReasonForMoving         *string
	PreQualified            *bool
	Source                  *string
	// Status is honored only for manager-driven states; the qualifying
	// states are always derived.
	Status *string
}

// LeadFields carries lead attributes for the upsert that runs alongside a
// conversation create.
type LeadFields struct {
	FirstName  string
	LastName   string
	Email      *string
	Phone      *string
	Age        *int
	LeadSource *string
}
