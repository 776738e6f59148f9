// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated caller's identity.
// This interface abstracts identity extraction from the web framework,
// allowing handlers to access caller information without depending on Gin.
type Identity interface {
	// ManagerID returns the authenticated property manager's ID.
	ManagerID() uuid.UUID
	// CompanyID returns the manager's company, or uuid.Nil for orphaned managers.
	CompanyID() uuid.UUID
	// AccessLevel returns the manager's access level (admin/write/read).
	AccessLevel() string
	// IsAuthenticated returns true if the caller is authenticated.
	IsAuthenticated() bool
}

// identity is the concrete implementation of Identity.
type identity struct {
	managerID     uuid.UUID
	companyID     uuid.UUID
	accessLevel   string
	authenticated bool
}

func (i *identity) ManagerID() uuid.UUID {
	return i.managerID
}

func (i *identity) CompanyID() uuid.UUID {
	return i.companyID
}

func (i *identity) AccessLevel() string {
	return i.accessLevel
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if caller info is not present.
func GetIdentity(c *gin.Context) Identity {
	managerID, managerOK := c.Get(ContextManagerIDKey)
	if !managerOK {
		return &identity{authenticated: false}
	}

	mid, ok := managerID.(uuid.UUID)
	if !ok {
		return &identity{authenticated: false}
	}

	var cid uuid.UUID
	if companyID, ok := c.Get(ContextCompanyIDKey); ok {
		cid, _ = companyID.(uuid.UUID)
	}

	var level string
	if accessLevel, ok := c.Get(ContextAccessLevelKey); ok {
		level, _ = accessLevel.(string)
	}

	return &identity{
		managerID:     mid,
		companyID:     cid,
		accessLevel:   level,
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the caller is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
