package transport

import (
	"encoding/json"
	"time"

	"leasing_portal_backend/internal/conversations/repository"

	"github.com/google/uuid"
)

// UpsertConversationRequest creates or updates a conversation. Omitted
// fields keep their stored values on update. Status accepts only the
// manager-driven states; the qualifying states are derived server-side.
type UpsertConversationRequest struct {
	ID                      *uuid.UUID      `json:"id,omitempty"`
	ChatbotID               uuid.UUID       `json:"chatbotId" validate:"required"`
	LeadID                  *uuid.UUID      `json:"leadId,omitempty"`
	EndTime                 *time.Time      `json:"endTime,omitempty"`
	IsQualified             *bool           `json:"isQualified,omitempty"`
	IsBookTour              *bool           `json:"isBookTour,omitempty"`
	TourType                *string         `json:"tourType,omitempty" validate:"omitempty,max=50"`
	TourDatetime            *time.Time      `json:"tourDatetime,omitempty"`
	AIIntentSummary         *string         `json:"aiIntentSummary,omitempty"`
	ApartmentSizePreference *string         `json:"apartmentSizePreference,omitempty" validate:"omitempty,max=50"`
	MoveInDate              *time.Time      `json:"moveInDate,omitempty"`
	PriceRangeMin           *float64        `json:"priceRangeMin,omitempty" validate:"omitempty,min=0"`
	PriceRangeMax           *float64        `json:"priceRangeMax,omitempty" validate:"omitempty,min=0"`
	OccupantsCount          *int            `json:"occupantsCount,omitempty" validate:"omitempty,min=0"`
	HasPets                 *bool           `json:"hasPets,omitempty"`
	PetDetails              json.RawMessage `json:"petDetails,omitempty"`
	DesiredFeatures         json.RawMessage `json:"desiredFeatures,omitempty"`
	WorkLocation            *string         `json:"workLocation,omitempty" validate:"omitempty,max=255"`
	ReasonForMoving         *string         `json:"reasonForMoving,omitempty"`
	PreQualified            *bool           `json:"preQualified,omitempty"`
	Source                  *string         `json:"source,omitempty" validate:"omitempty,max=100"`
	Status                  *string         `json:"status,omitempty" validate:"omitempty,oneof=new qualified tour_scheduled contacted scheduled converted"`
	Lead                    *LeadRequest    `json:"lead,omitempty"`
}

// LeadRequest carries lead details alongside a conversation create.
type LeadRequest struct {
	FirstName  string  `json:"firstName" validate:"required,min=1,max=100"`
	LastName   string  `json:"lastName" validate:"required,min=1,max=100"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Age        *int    `json:"age,omitempty" validate:"omitempty,min=0,max=130"`
	LeadSource *string `json:"leadSource,omitempty" validate:"omitempty,max=100"`
}

// AppendMessageRequest appends one message to a conversation.
type AppendMessageRequest struct {
	SenderType  string          `json:"senderType" validate:"required,oneof=user bot"`
	MessageText string          `json:"messageText" validate:"required"`
	MessageType *string         `json:"messageType,omitempty" validate:"omitempty,max=50"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// AnnotateMessageRequest replaces a message's metadata annotation.
type AnnotateMessageRequest struct {
	Metadata json.RawMessage `json:"metadata" validate:"required"`
}

// ScoreResponse reports a recomputed lead score.
type ScoreResponse struct {
	ConversationID uuid.UUID `json:"conversationId"`
	LeadScore      int       `json:"leadScore"`
}

// ConversationListResponse wraps a conversation page.
type ConversationListResponse struct {
	Items []repository.Conversation `json:"items"`
	Total int                       `json:"total"`
}

// MessageListResponse wraps a message page.
type MessageListResponse struct {
	Items []repository.Message `json:"items"`
	Total int                  `json:"total"`
}

// ToUpsertFields maps the request onto storage fields.
func (r UpsertConversationRequest) ToUpsertFields() repository.UpsertFields {
	return repository.UpsertFields{
		ID:                      r.ID,
		ChatbotID:               r.ChatbotID,
		LeadID:                  r.LeadID,
		EndTime:                 r.EndTime,
		IsQualified:             r.IsQualified,
		IsBookTour:              r.IsBookTour,
		TourType:                r.TourType,
		TourDatetime:            r.TourDatetime,
		AIIntentSummary:         r.AIIntentSummary,
		ApartmentSizePreference: r.ApartmentSizePreference,
		MoveInDate:              r.MoveInDate,
		PriceRangeMin:           r.PriceRangeMin,
		PriceRangeMax:           r.PriceRangeMax,
		OccupantsCount:          r.OccupantsCount,
		HasPets:                 r.HasPets,
		PetDetails:              r.PetDetails,
		DesiredFeatures:         r.DesiredFeatures,
		WorkLocation:            r.WorkLocation,
		ReasonForMoving:         r.ReasonForMoving,
		PreQualified:            r.PreQualified,
		Source:                  r.Source,
		Status:                  r.Status,
	}
}

// ToLeadFields maps the embedded lead, when present.
func (r UpsertConversationRequest) ToLeadFields() *repository.LeadFields {
	if r.Lead == nil {
		return nil
	}
	return &repository.LeadFields{
		FirstName:  r.Lead.FirstName,
		LastName:   r.Lead.LastName,
		Email:      r.Lead.Email,
		Phone:      r.Lead.Phone,
		Age:        r.Lead.Age,
		LeadSource: r.Lead.LeadSource,
	}
}
