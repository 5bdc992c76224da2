package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/capstone-pvt/api/internal/permission"
	roledomain "github.com/capstone-pvt/api/internal/role/domain"
	"github.com/capstone-pvt/api/internal/security"
	userdomain "github.com/capstone-pvt/api/internal/user/domain"
)

// AccessCookie is the cookie the client presents on every request.
const AccessCookie = "accessToken"

const bearerPrefix = "bearer "

// UserGetter loads a user for per-request validation.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// RoleLister expands role ids into roles with permissions.
type RoleLister interface {
	ListByIDs(ctx context.Context, ids []string) ([]*roledomain.Role, error)
}

// AccessGuard validates the access token on each request and attaches a
// Principal to the request context. The token is read from the accessToken
// cookie, falling back to an Authorization bearer header.
//
// Beyond signature and expiry, the guard compares the token's embedded
// session id with the user's current_session_id: a mismatch is rejected even
// though the token itself is still valid. That comparison is what makes a
// login from a second device revoke the first device immediately instead of
// after the access TTL runs out.
//
// Every failure collapses to the same 401 body so callers cannot tell which
// check failed.
func AccessGuard(tokens *security.TokenProvider, users UserGetter, roles RoleLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractAccessToken(c)
		if token == "" {
			unauthorized(c)
			return
		}

		claims, err := tokens.ParseAccess(token)
		if err != nil {
			unauthorized(c)
			return
		}

		ctx := c.Request.Context()
		user, err := users.GetByID(ctx, claims.Subject)
		if err != nil || user == nil || !user.IsActive {
			unauthorized(c)
			return
		}

		if claims.SessionID == "" || claims.SessionID != user.CurrentSessionID {
			unauthorized(c)
			return
		}

		roleList, err := roles.ListByIDs(ctx, user.RoleIDs)
		if err != nil {
			unauthorized(c)
			return
		}

		principal := &Principal{
			UserID:      user.ID,
			Email:       user.Email,
			Roles:       permission.Names(roleList),
			Permissions: permission.Resolve(roleList),
			SessionID:   claims.SessionID,
		}
		c.Request = c.Request.WithContext(WithPrincipal(ctx, principal))
		c.Next()
	}
}

func extractAccessToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessCookie); err == nil && cookie != "" {
		return cookie
	}
	v := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   "unauthorized",
	})
}
