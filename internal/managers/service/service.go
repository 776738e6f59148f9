// Package service holds the property manager and assignment use cases.
package service

import (
	"context"
	"strings"

	"leasing_portal_backend/internal/managers/repository"
	"leasing_portal_backend/internal/tenancy"
	"leasing_portal_backend/platform/apperr"
	"leasing_portal_backend/platform/logger"
	"leasing_portal_backend/platform/phone"

	"github.com/google/uuid"
)

type Service struct {
	store repository.ManagerStore
	log   *logger.Logger
}

func New(store repository.ManagerStore, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// CreateManager normalizes contact details and stores the manager.
// Email and phone are unique system-wide; phone is stored in E.164.
func (s *Service) CreateManager(ctx context.Context, tctx tenancy.Context, p repository.CreateManagerParams) (repository.Manager, error) {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Phone = phone.NormalizeE164(p.Phone)

	if p.AccessLevel == "" {
		p.AccessLevel = tenancy.AccessRead
	}
	if !validAccessLevel(p.AccessLevel) {
		return repository.Manager{}, apperr.Validation("unknown access level")
	}

	return s.store.CreateManager(ctx, tctx, p)
}

func (s *Service) Get(ctx context.Context, tctx tenancy.Context, id uuid.UUID) (repository.Manager, error) {
	return s.store.GetManager(ctx, tctx, id)
}

func (s *Service) List(ctx context.Context, tctx tenancy.Context, limit, offset int) ([]repository.Manager, int, error) {
	return s.store.ListManagers(ctx, tctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, tctx tenancy.Context, id uuid.UUID, p repository.UpdateManagerParams) (repository.Manager, error) {
	if p.Phone != nil {
		normalized := phone.NormalizeE164(*p.Phone)
		p.Phone = &normalized
	}
	if p.AccessLevel != nil && !validAccessLevel(*p.AccessLevel) {
		return repository.Manager{}, apperr.Validation("unknown access level")
	}

	return s.store.UpdateManager(ctx, tctx, id, p)
}

func (s *Service) Delete(ctx context.Context, tctx tenancy.Context, id uuid.UUID) error {
	return s.store.DeleteManager(ctx, tctx, id)
}

// Assign registers or refreshes a property assignment. The repository
// enforces the cross-tenant check and the single-active-primary rule.
func (s *Service) Assign(ctx context.Context, tctx tenancy.Context, p repository.AssignParams) (repository.Assignment, error) {
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return repository.Assignment{}, apperr.InvalidRange("end date precedes start date")
	}

	assignment, err := s.store.Assign(ctx, tctx, p)
	if err != nil {
		return repository.Assignment{}, err
	}

	s.log.Info("manager assigned to property",
		"assignmentId", assignment.ID,
		"propertyId", assignment.PropertyID,
		"managerId", assignment.PropertyManagerID,
		"isPrimary", assignment.IsPrimary)
	return assignment, nil
}

func (s *Service) EndAssignment(ctx context.Context, tctx tenancy.Context, id uuid.UUID) (repository.Assignment, error) {
	return s.store.EndAssignment(ctx, tctx, id)
}

func (s *Service) ListAssignments(ctx context.Context, tctx tenancy.Context, propertyID *uuid.UUID) ([]repository.Assignment, error) {
	return s.store.ListAssignments(ctx, tctx, propertyID)
}

func validAccessLevel(level string) bool {
	switch level {
	case tenancy.AccessAdmin, tenancy.AccessWrite, tenancy.AccessRead:
		return true
	}
	return false
}
