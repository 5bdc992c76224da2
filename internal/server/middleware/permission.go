package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequirePermission allows the request when the principal holds ANY of the
// required permissions. An empty required set always allows. The table of
// required permissions per route is the set of RequirePermission calls in
// the router; there is no metadata indirection.
//
// Must run after AccessGuard; a missing principal is rejected 401.
func RequirePermission(required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(required) == 0 {
			c.Next()
			return
		}

		principal, ok := GetPrincipal(c)
		if !ok {
			unauthorized(c)
			return
		}

		for _, name := range required {
			if principal.HasPermission(name) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success":  false,
			"error":    "forbidden",
			"required": required,
		})
	}
}
