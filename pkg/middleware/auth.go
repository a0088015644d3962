package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/storage-platform/storage-service/pkg/errors"
)

// Identity headers set by the API gateway after token verification
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderCompanyID = "X-Company-ID"
)

// Context keys for the authenticated identity
const (
	ContextKeyUserID    = "userId"
	ContextKeyUserRole  = "userRole"
	ContextKeyCompanyID = "companyId"
)

// Known roles
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleWorker  = "WORKER"
)

// Identity requires the gateway identity headers on every request and
// places them in the request context. Company scoping everywhere below
// relies on this.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		companyID := c.GetHeader(HeaderCompanyID)
		role := c.GetHeader(HeaderUserRole)

		if userID == "" || companyID == "" {
			AbortWithAppError(c, errors.ErrUnauthorized("missing identity headers"))
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyUserRole, role)
		c.Set(ContextKeyCompanyID, companyID)

		c.Next()
	}
}

// RequireRoles allows the request through only when the caller's role is
// one of the listed roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role := GetUserRole(c)
		if role == "" || !allowed[role] {
			AbortWithAppError(c, errors.ErrForbidden("insufficient role"))
			return
		}
		c.Next()
	}
}

// GetUserID extracts the authenticated user ID from context
func GetUserID(c *gin.Context) string {
	if val, exists := c.Get(ContextKeyUserID); exists {
		if id, ok := val.(string); ok {
			return id
		}
	}
	return ""
}

// GetUserRole extracts the authenticated role from context
func GetUserRole(c *gin.Context) string {
	if val, exists := c.Get(ContextKeyUserRole); exists {
		if role, ok := val.(string); ok {
			return role
		}
	}
	return ""
}

// GetCompanyID extracts the authenticated company ID from context
func GetCompanyID(c *gin.Context) string {
	if val, exists := c.Get(ContextKeyCompanyID); exists {
		if id, ok := val.(string); ok {
			return id
		}
	}
	return ""
}
