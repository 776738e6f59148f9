// Package tenancy resolves the calling identity into per-operation data
// access grants and produces the row predicates that every tenant-scoped
// read and write must carry.
package tenancy

import (
	"leasing_portal_backend/platform/apperr"

	"github.com/google/uuid"
)

// Access levels carried on a property manager record.
const (
	AccessAdmin = "admin"
	AccessWrite = "write"
	AccessRead  = "read"
)

// Context describes who is asking for the duration of one operation.
// It holds at most one company-wide grant and at most one manager grant.
// The two grants are independent: company visibility comes from the admin
// access level, manager visibility from active property assignments, and
// neither implies the other. A Context must never be cached across
// operations.
type Context struct {
	// CompanyID is set when the caller holds company-wide (admin) visibility.
	CompanyID *uuid.UUID
	// ManagerID is set when the caller is a property manager; rows are then
	// visible through that manager's active assignments.
	ManagerID *uuid.UUID
	// ReadOnly marks callers whose access level forbids mutation.
	ReadOnly bool
}

// NewIdentity builds the Context for an authenticated manager. Managers
// with the admin access level additionally receive the company-wide grant.
func NewIdentity(companyID, managerID uuid.UUID, accessLevel string) Context {
	tctx := Context{}
	if managerID != uuid.Nil {
		id := managerID
		tctx.ManagerID = &id
	}
	if accessLevel == AccessAdmin && companyID != uuid.Nil {
		id := companyID
		tctx.CompanyID = &id
	}
	tctx.ReadOnly = accessLevel == AccessRead
	return tctx
}

// IsZero reports whether the context carries no grant at all.
func (c Context) IsZero() bool {
	return c.CompanyID == nil && c.ManagerID == nil
}

// RequireGrant fails when the context carries no grant. Tenant-scoped
// operations call this first so an absent context denies access instead of
// defaulting to all tenants.
func (c Context) RequireGrant() error {
	if c.IsZero() {
		return apperr.Unauthorized("no tenant grant in context")
	}
	return nil
}

// RequireWrite fails for read-only callers and for absent contexts.
func (c Context) RequireWrite() error {
	if err := c.RequireGrant(); err != nil {
		return err
	}
	if c.ReadOnly {
		return apperr.Forbidden("read-only access level")
	}
	return nil
}
