package transport

import (
	"encoding/json"

	"leasing_portal_backend/internal/portfolio/repository"

	"github.com/google/uuid"
)

// UpdateCompanyRequest updates the company profile.
type UpdateCompanyRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	LogoURL      *string `json:"logoUrl,omitempty" validate:"omitempty,url,max=255"`
	ContactEmail *string `json:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone *string `json:"contactPhone,omitempty" validate:"omitempty,max=20"`
}

// CreatePropertyRequest creates a property, optionally with its chatbot in
// the same transaction.
type CreatePropertyRequest struct {
	Name         string          `json:"name" validate:"required,min=1,max=255"`
	Address      string          `json:"address" validate:"required,max=255"`
	City         string          `json:"city" validate:"required,max=100"`
	State        string          `json:"state" validate:"required,max=50"`
	ZipCode      string          `json:"zipCode" validate:"required,max=20"`
	PropertyType *string         `json:"propertyType,omitempty" validate:"omitempty,max=50"`
	UnitsCount   *int            `json:"unitsCount,omitempty" validate:"omitempty,min=0"`
	Amenities    json.RawMessage `json:"amenities,omitempty"`
	Features     json.RawMessage `json:"features,omitempty"`
	WebsiteURL   *string         `json:"websiteUrl,omitempty" validate:"omitempty,url,max=255"`

	Chatbot *CreateChatbotRequest `json:"chatbot,omitempty"`
}

// CreateChatbotRequest creates a chatbot for a property.
type CreateChatbotRequest struct {
	Name           string          `json:"name" validate:"required,min=1,max=100"`
	AvatarURL      *string         `json:"avatarUrl,omitempty" validate:"omitempty,url,max=255"`
	WelcomeMessage *string         `json:"welcomeMessage,omitempty"`
	WidgetSettings json.RawMessage `json:"widgetSettings,omitempty"`
}

// UpdatePropertyRequest applies a partial property update.
type UpdatePropertyRequest struct {
	Name         *string         `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Address      *string         `json:"address,omitempty" validate:"omitempty,max=255"`
	City         *string         `json:"city,omitempty" validate:"omitempty,max=100"`
	State        *string         `json:"state,omitempty" validate:"omitempty,max=50"`
	ZipCode      *string         `json:"zipCode,omitempty" validate:"omitempty,max=20"`
	PropertyType *string         `json:"propertyType,omitempty" validate:"omitempty,max=50"`
	UnitsCount   *int            `json:"unitsCount,omitempty" validate:"omitempty,min=0"`
	Amenities    json.RawMessage `json:"amenities,omitempty"`
	Features     json.RawMessage `json:"features,omitempty"`
	WebsiteURL   *string         `json:"websiteUrl,omitempty" validate:"omitempty,url,max=255"`
}

// UpdateChatbotRequest applies a partial chatbot update.
type UpdateChatbotRequest struct {
	Name           *string         `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	AvatarURL      *string         `json:"avatarUrl,omitempty" validate:"omitempty,url,max=255"`
	IsActive       *bool           `json:"isActive,omitempty"`
	WelcomeMessage *string         `json:"welcomeMessage,omitempty"`
	EmbedCode      *string         `json:"embedCode,omitempty"`
	WidgetSettings json.RawMessage `json:"widgetSettings,omitempty"`
}

// FAQRequest creates or replaces an FAQ entry.
type FAQRequest struct {
	Question   string  `json:"question" validate:"required"`
	Answer     string  `json:"answer" validate:"required"`
	Category   *string `json:"category,omitempty" validate:"omitempty,max=100"`
	SourceType *string `json:"sourceType,omitempty" validate:"omitempty,max=50"`
}

// CreateIntegrationRequest records a website embedding.
type CreateIntegrationRequest struct {
	ChatbotID       *uuid.UUID      `json:"chatbotId,omitempty"`
	WebsiteURL      string          `json:"websiteUrl" validate:"required,url,max=255"`
	IntegrationType *string         `json:"integrationType,omitempty" validate:"omitempty,max=50"`
	Configuration   json.RawMessage `json:"configuration,omitempty"`
	TrackingID      *string         `json:"trackingId,omitempty" validate:"omitempty,max=100"`
}

// PropertyResponse returns a property with its chatbot when one was
// created alongside it.
type PropertyResponse struct {
	Property repository.Property `json:"property"`
	Chatbot  *repository.Chatbot `json:"chatbot,omitempty"`
}

// PropertyListResponse wraps a property page.
type PropertyListResponse struct {
	Items []repository.Property `json:"items"`
	Total int                   `json:"total"`
}

// ToCreateParams maps the request onto repository parameters.
func (r CreatePropertyRequest) ToCreateParams() repository.CreatePropertyParams {
	params := repository.CreatePropertyParams{
		Name:         r.Name,
		Address:      r.Address,
		City:         r.City,
		State:        r.State,
		ZipCode:      r.ZipCode,
		PropertyType: r.PropertyType,
		UnitsCount:   r.UnitsCount,
		Amenities:    r.Amenities,
		Features:     r.Features,
		WebsiteURL:   r.WebsiteURL,
	}
	if r.Chatbot != nil {
		params.Chatbot = &repository.CreateChatbotParams{
			Name:           r.Chatbot.Name,
			AvatarURL:      r.Chatbot.AvatarURL,
			WelcomeMessage: r.Chatbot.WelcomeMessage,
			WidgetSettings: r.Chatbot.WidgetSettings,
		}
	}
	return params
}

// ToUpdateParams maps the request onto repository parameters.
func (r UpdatePropertyRequest) ToUpdateParams() repository.UpdatePropertyParams {
	return repository.UpdatePropertyParams{
		Name:         r.Name,
		Address:      r.Address,
		City:         r.City,
		State:        r.State,
		ZipCode:      r.ZipCode,
		PropertyType: r.PropertyType,
		UnitsCount:   r.UnitsCount,
		Amenities:    r.Amenities,
		Features:     r.Features,
		WebsiteURL:   r.WebsiteURL,
	}
}
