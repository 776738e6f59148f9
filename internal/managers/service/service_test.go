package service

import (
	"context"
	"testing"
	"time"

	"leasing_portal_backend/internal/managers/repository"
	"leasing_portal_backend/internal/tenancy"
	"leasing_portal_backend/platform/apperr"
	"leasing_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	repository.ManagerStore

	created    *repository.CreateManagerParams
	updated    *repository.UpdateManagerParams
	assigned   *repository.AssignParams
	assignment repository.Assignment
	assignErr  error
}

func (f *fakeStore) CreateManager(_ context.Context, _ tenancy.Context, p repository.CreateManagerParams) (repository.Manager, error) {
	f.created = &p
	return repository.Manager{ID: uuid.New(), Email: p.Email, Phone: p.Phone, AccessLevel: p.AccessLevel}, nil
}

func (f *fakeStore) UpdateManager(_ context.Context, _ tenancy.Context, id uuid.UUID, p repository.UpdateManagerParams) (repository.Manager, error) {
	f.updated = &p
	return repository.Manager{ID: id}, nil
}

func (f *fakeStore) Assign(_ context.Context, _ tenancy.Context, p repository.AssignParams) (repository.Assignment, error) {
	if f.assignErr != nil {
		return repository.Assignment{}, f.assignErr
	}
	f.assigned = &p
	return f.assignment, nil
}

func adminCtx() tenancy.Context {
	return tenancy.NewIdentity(uuid.New(), uuid.New(), tenancy.AccessAdmin)
}

func testService(store *fakeStore) *Service {
	return New(store, logger.New("development"))
}

func TestCreateManagerNormalizesContactDetails(t *testing.T) {
	store := &fakeStore{}
	svc := testService(store)

	_, err := svc.CreateManager(context.Background(), adminCtx(), repository.CreateManagerParams{
		FirstName:   "Dana",
		LastName:    "Whitfield",
		Email:       "  Dana.Whitfield@Example.COM ",
		Phone:       "(202) 456-1111",
		AccessLevel: tenancy.AccessWrite,
	})
	if err != nil {
		t.Fatalf("CreateManager: %v", err)
	}

	if store.created.Email != "dana.whitfield@example.com" {
		t.Errorf("email not normalized: %q", store.created.Email)
	}
	if store.created.Phone != "+12024561111" {
		t.Errorf("phone not normalized to E.164: %q", store.created.Phone)
	}
}

func TestCreateManagerDefaultsToReadAccess(t *testing.T) {
	store := &fakeStore{}
	svc := testService(store)

	_, err := svc.CreateManager(context.Background(), adminCtx(), repository.CreateManagerParams{
		FirstName: "Lee",
		LastName:  "Ortiz",
		Email:     "lee@example.com",
		Phone:     "+12024561111",
	})
	if err != nil {
		t.Fatalf("CreateManager: %v", err)
	}
	if store.created.AccessLevel != tenancy.AccessRead {
		t.Errorf("expected read default, got %q", store.created.AccessLevel)
	}
}

func TestCreateManagerRejectsUnknownAccessLevel(t *testing.T) {
	svc := testService(&fakeStore{})

	_, err := svc.CreateManager(context.Background(), adminCtx(), repository.CreateManagerParams{
		FirstName:   "Lee",
		LastName:    "Ortiz",
		Email:       "lee@example.com",
		Phone:       "+12024561111",
		AccessLevel: "owner",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAssignRejectsEndBeforeStart(t *testing.T) {
	store := &fakeStore{}
	svc := testService(store)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	_, err := svc.Assign(context.Background(), adminCtx(), repository.AssignParams{
		PropertyID:        uuid.New(),
		PropertyManagerID: uuid.New(),
		StartDate:         start,
		EndDate:           &end,
	})
	if !apperr.Is(err, apperr.KindInvalidRange) {
		t.Fatalf("expected invalid range error, got %v", err)
	}
	if store.assigned != nil {
		t.Error("store should not be reached on invalid range")
	}
}

func TestAssignPropagatesCrossTenant(t *testing.T) {
	store := &fakeStore{assignErr: apperr.CrossTenant("manager and property belong to different companies")}
	svc := testService(store)

	_, err := svc.Assign(context.Background(), adminCtx(), repository.AssignParams{
		PropertyID:        uuid.New(),
		PropertyManagerID: uuid.New(),
		StartDate:         time.Now(),
	})
	if !apperr.Is(err, apperr.KindCrossTenant) {
		t.Fatalf("expected cross-tenant error, got %v", err)
	}
}

func TestAssignOpenEndedAllowed(t *testing.T) {
	store := &fakeStore{assignment: repository.Assignment{ID: uuid.New(), IsPrimary: true}}
	svc := testService(store)

	got, err := svc.Assign(context.Background(), adminCtx(), repository.AssignParams{
		PropertyID:        uuid.New(),
		PropertyManagerID: uuid.New(),
		IsPrimary:         true,
		StartDate:         time.Now(),
	})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if got.ID != store.assignment.ID {
		t.Errorf("unexpected assignment returned")
	}
}

func TestUpdateNormalizesPhone(t *testing.T) {
	store := &fakeStore{}
	svc := testService(store)

	raw := "(202) 456-1111"
	_, err := svc.Update(context.Background(), adminCtx(), uuid.New(), repository.UpdateManagerParams{Phone: &raw})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if store.updated.Phone == nil || *store.updated.Phone != "+12024561111" {
		t.Errorf("phone not normalized: %v", store.updated.Phone)
	}
}
