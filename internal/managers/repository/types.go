package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Manager is a property manager record. PasswordHash never leaves the
// repository layer.
type Manager struct {
	ID          uuid.UUID  `json:"id"`
	CompanyID   *uuid.UUID `json:"companyId,omitempty"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Role        *string    `json:"role,omitempty"`
	AccessLevel string     `json:"accessLevel"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Assignment links a manager to a property. An assignment is active while
// end_date is NULL or has not passed.
type Assignment struct {
	ID                      uuid.UUID       `json:"id"`
	PropertyID              uuid.UUID       `json:"propertyId"`
	PropertyManagerID       uuid.UUID       `json:"propertyManagerId"`
	IsPrimary               bool            `json:"isPrimary"`
	StartDate               time.Time       `json:"startDate"`
	EndDate                 *time.Time      `json:"endDate,omitempty"`
	Permissions             json.RawMessage `json:"permissions,omitempty"`
	NotificationPreferences json.RawMessage `json:"notificationPreferences,omitempty"`
	CreatedAt               time.Time       `json:"createdAt"`
	UpdatedAt               time.Time       `json:"updatedAt"`
}

// CreateManagerParams carries a manager create.
type CreateManagerParams struct {
	CompanyID    *uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Role         *string
	AccessLevel  string
	PasswordHash *string
}

// UpdateManagerParams carries a partial manager update. Nil fields keep
// their stored values.
type UpdateManagerParams struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	Role        *string
	AccessLevel *string
}

// AssignParams carries an assignment upsert.
type AssignParams struct {
	PropertyID              uuid.UUID
	PropertyManagerID       uuid.UUID
	IsPrimary               bool
	StartDate               time.Time
	EndDate                 *time.Time
	Permissions             json.RawMessage
	NotificationPreferences json.RawMessage
}
