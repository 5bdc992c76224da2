// Package middleware provides the per-request guards and ambient HTTP
// middleware (logging, metrics, tracing) for the API server.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Principal is the request-scoped resolved identity built once by the access
// guard: user id, email, role names, effective permission names, and the
// session id the presented token was issued for. It is carried as a typed
// value on the request context and never persisted.
type Principal struct {
	UserID      string
	Email       string
	Roles       []string
	Permissions []string
	SessionID   string
}

// HasPermission reports whether the principal holds the named permission.
func (p *Principal) HasPermission(name string) bool {
	for _, got := range p.Permissions {
		if got == name {
			return true
		}
	}
	return false
}

type contextKey struct{ name string }

var principalKey = contextKey{"principal"}

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal from ctx and true if set; otherwise nil, false.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// GetPrincipal returns the principal attached to the gin request, or nil, false
// when the access guard did not run.
func GetPrincipal(c *gin.Context) (*Principal, bool) {
	return PrincipalFrom(c.Request.Context())
}
