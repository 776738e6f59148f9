package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Company is a property management company, the tenancy root.
type Company struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	LogoURL      *string   `json:"logoUrl,omitempty"`
	ContactEmail *string   `json:"contactEmail,omitempty"`
	ContactPhone *string   `json:"contactPhone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Property is a leasable building owned by a company.
type Property struct {
	ID           uuid.UUID       `json:"id"`
	CompanyID    uuid.UUID       `json:"companyId"`
	Name         string          `json:"name"`
	Address      string          `json:"address"`
	City         string          `json:"city"`
	State        string          `json:"state"`
	ZipCode      string          `json:"zipCode"`
	PropertyType *string         `json:"propertyType,omitempty"`
	UnitsCount   *int            `json:"unitsCount,omitempty"`
	Amenities    json.RawMessage `json:"amenities,omitempty"`
	Features     json.RawMessage `json:"features,omitempty"`
	WebsiteURL   *string         `json:"websiteUrl,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Chatbot is the single conversational agent attached to a property.
type Chatbot struct {
	ID             uuid.UUID       `json:"id"`
	PropertyID     uuid.UUID       `json:"propertyId"`
	Name           string          `json:"name"`
	AvatarURL      *string         `json:"avatarUrl,omitempty"`
	IsActive       bool            `json:"isActive"`
	WelcomeMessage *string         `json:"welcomeMessage,omitempty"`
	EmbedCode      *string         `json:"embedCode,omitempty"`
	WidgetSettings json.RawMessage `json:"widgetSettings,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// FAQ is a per-property question/answer pair served to the chatbot.
type FAQ struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"propertyId"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Category   *string   `json:"category,omitempty"`
	SourceType *string   `json:"sourceType,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// WebsiteIntegration records where a property's chatbot widget is embedded.
type WebsiteIntegration struct {
	ID              uuid.UUID       `json:"id"`
	PropertyID      uuid.UUID       `json:"propertyId"`
	ChatbotID       *uuid.UUID      `json:"chatbotId,omitempty"`
	WebsiteURL      string          `json:"websiteUrl"`
	IntegrationType *string         `json:"integrationType,omitempty"`
	Configuration   json.RawMessage `json:"configuration,omitempty"`
	IsActive        bool            `json:"isActive"`
	TrackingID      *string         `json:"trackingId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// CreatePropertyParams carries a property create, optionally with its
// chatbot in the same transaction.
type CreatePropertyParams struct {
	Name         string
	Address      string
	City         string
	State        string
	ZipCode      string
	PropertyType *string
	UnitsCount   *int
	Amenities    json.RawMessage
	Features     json.RawMessage
	WebsiteURL   *string

	Chatbot *CreateChatbotParams
}

// CreateChatbotParams carries a chatbot create.
type CreateChatbotParams struct {
	Name           string
	AvatarURL      *string
	WelcomeMessage *string
	WidgetSettings json.RawMessage
}

// UpdatePropertyParams carries a partial property update.
type UpdatePropertyParams struct {
	Name         *string
	Address      *string
	City         *string
	State        *string
	ZipCode      *string
	PropertyType *string
	UnitsCount   *int
	Amenities    json.RawMessage
	Features     json.RawMessage
	WebsiteURL   *string
}

// UpdateChatbotParams carries a partial chatbot update.
type UpdateChatbotParams struct {
	Name           *string
	AvatarURL      *string
	IsActive       *bool
	WelcomeMessage *string
	EmbedCode      *string
	WidgetSettings json.RawMessage
}

// FAQParams carries an FAQ create or full update.
type FAQParams struct {
	Question   string
	Answer     string
	Category   *string
	SourceType *string
}

// IntegrationParams carries a website integration create.
type IntegrationParams struct {
	PropertyID      uuid.UUID
	ChatbotID       *uuid.UUID
	WebsiteURL      string
	IntegrationType *string
	Configuration   json.RawMessage
	TrackingID      *string
}
