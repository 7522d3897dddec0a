package authorization

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Gin context keys populated by the auth middleware.
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
)

// SetPrincipal stores the authenticated caller on the gin context.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(ContextKeyUserID, p.ID)
	c.Set(ContextKeyUserRole, string(p.Role))
}

// GetPrincipal reads the caller stored by SetPrincipal.
func GetPrincipal(c *gin.Context) (Principal, bool) {
	raw, exists := c.Get(ContextKeyUserID)
	if !exists {
		return Principal{}, false
	}
	userID, ok := raw.(uint)
	if !ok || userID == 0 {
		return Principal{}, false
	}
	return Principal{ID: userID, Role: ParseUserRole(c.GetString(ContextKeyUserRole))}, true
}

// RequireRoles aborts with 403 unless the caller holds one of roles.
func RequireRoles(roles ...UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := GetPrincipal(c)
		if d := Guard(p, roles...); !d.Allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"type":    "access_denied",
					"message": "insufficient role",
					"details": d.Reason,
				},
			})
			return
		}
		c.Next()
	}
}
