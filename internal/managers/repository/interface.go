package repository

import (
	"context"

	"leasing_portal_backend/internal/tenancy"

	"github.com/google/uuid"
)

// ManagerStore is the storage contract the managers service depends on.
type ManagerStore interface {
	CreateManager(ctx context.Context, tctx tenancy.Context, p CreateManagerParams) (Manager, error)
	GetManager(ctx context.Context, tctx tenancy.Context, id uuid.UUID) (Manager, error)
	ListManagers(ctx context.Context, tctx tenancy.Context, limit, offset int) ([]Manager, int, error)
	UpdateManager(ctx context.Context, tctx tenancy.Context, id uuid.UUID, p UpdateManagerParams) (Manager, error)
	DeleteManager(ctx context.Context, tctx tenancy.Context, id uuid.UUID) error

	Assign(ctx context.Context, tctx tenancy.Context, p AssignParams) (Assignment, error)
	EndAssignment(ctx context.Context, tctx tenancy.Context, id uuid.UUID) (Assignment, error)
	ListAssignments(ctx context.Context, tctx tenancy.Context, propertyID *uuid.UUID) ([]Assignment, error)
}
