package transport

import (
	"encoding/json"
	"time"

	"leasing_portal_backend/internal/managers/repository"

	"github.com/google/uuid"
)

// CreateManagerRequest registers a property manager. The password is
// optional; managers without one cannot log in until it is set.
type CreateManagerRequest struct {
	FirstName   string  `json:"firstName" validate:"required,min=1,max=100"`
	LastName    string  `json:"lastName" validate:"required,min=1,max=100"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       string  `json:"phone" validate:"required,max=20"`
	Role        *string `json:"role,omitempty" validate:"omitempty,max=100"`
	AccessLevel string  `json:"accessLevel" validate:"omitempty,oneof=admin write read"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

// UpdateManagerRequest applies a partial manager update.
type UpdateManagerRequest struct {
	FirstName   *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName    *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Role        *string `json:"role,omitempty" validate:"omitempty,max=100"`
	AccessLevel *string `json:"accessLevel,omitempty" validate:"omitempty,oneof=admin write read"`
}

// AssignRequest links a manager to a property.
type AssignRequest struct {
	PropertyID              uuid.UUID       `json:"propertyId" validate:"required"`
	PropertyManagerID       uuid.UUID       `json:"propertyManagerId" validate:"required"`
	IsPrimary               bool            `json:"isPrimary"`
	StartDate               time.Time       `json:"startDate" validate:"required"`
	EndDate                 *time.Time      `json:"endDate,omitempty"`
	Permissions             json.RawMessage `json:"permissions,omitempty"`
	NotificationPreferences json.RawMessage `json:"notificationPreferences,omitempty"`
}

// ManagerListResponse wraps a manager page.
type ManagerListResponse struct {
	Items []repository.Manager `json:"items"`
	Total int                  `json:"total"`
}

// AssignmentListResponse wraps an assignment listing.
type AssignmentListResponse struct {
	Items []repository.Assignment `json:"items"`
}

// ToAssignParams maps the request onto repository parameters.
func (r AssignRequest) ToAssignParams() repository.AssignParams {
	return repository.AssignParams{
		PropertyID:              r.PropertyID,
		PropertyManagerID:       r.PropertyManagerID,
		IsPrimary:               r.IsPrimary,
		StartDate:               r.StartDate,
		EndDate:                 r.EndDate,
		Permissions:             r.Permissions,
		NotificationPreferences: r.NotificationPreferences,
	}
}
