// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated user's identity.
// Handlers read it without touching gin context keys directly.
type Identity interface {
	UserID() uuid.UUID
	TenantID() *uuid.UUID
	Roles() []string
	HasRole(role string) bool
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	tenantID      *uuid.UUID
	roles         []string
	authenticated bool
}

func (i *identity) UserID() uuid.UUID     { return i.userID }
func (i *identity) TenantID() *uuid.UUID  { return i.tenantID }
func (i *identity) Roles() []string       { return i.roles }
func (i *identity) IsAuthenticated() bool { return i.authenticated }
func (i *identity) HasRole(role string) bool {
	return slices.Contains(i.roles, role)
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	rawUserID, ok := c.Get(ContextUserIDKey)
	if !ok {
		return &identity{}
	}
	uid, ok := rawUserID.(uuid.UUID)
	if !ok {
		return &identity{}
	}

	id := &identity{userID: uid, authenticated: true}
	if roles, ok := c.Get(ContextRolesKey); ok {
		id.roles, _ = roles.([]string)
	}
	if rawTenant, ok := c.Get(ContextTenantIDKey); ok {
		if tenantID, ok := rawTenant.(uuid.UUID); ok {
			id.tenantID = &tenantID
		}
	}
	return id
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the user is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return nil
	}
	return id
}

// MustGetTenant returns the identity and its tenant, aborting the request
// when either is missing.
func MustGetTenant(c *gin.Context) (Identity, uuid.UUID, bool) {
	id := MustGetIdentity(c)
	if id == nil {
		return nil, uuid.Nil, false
	}
	tenantID := id.TenantID()
	if tenantID == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "tenant ID is required"})
		return nil, uuid.Nil, false
	}
	return id, *tenantID, true
}
