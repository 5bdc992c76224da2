package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func permRouter(principal *Principal, required ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	attach := func(c *gin.Context) {
		if principal != nil {
			c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))
		}
		c.Next()
	}
	r.GET("/x", attach, RequirePermission(required...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func permRequest(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w
}

func TestRequirePermission_Allowed(t *testing.T) {
	p := &Principal{UserID: "user-1", Permissions: []string{"users.read", "roles.read"}}

	w := permRequest(permRouter(p, "roles.read"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermission_AnyOf(t *testing.T) {
	// Holding any one of the required permissions is enough.
	p := &Principal{UserID: "user-1", Permissions: []string{"roles.read"}}

	w := permRequest(permRouter(p, "roles.create", "roles.read"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermission_EmptyRequiredAllows(t *testing.T) {
	p := &Principal{UserID: "user-1"}

	w := permRequest(permRouter(p))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermission_Forbidden(t *testing.T) {
	p := &Principal{UserID: "user-1", Permissions: []string{"users.read"}}

	w := permRequest(permRouter(p, "roles.create", "roles.update"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t,
		`{"success":false,"error":"forbidden","required":["roles.create","roles.update"]}`,
		w.Body.String())
}

func TestRequirePermission_NoPermissionsForbidden(t *testing.T) {
	p := &Principal{UserID: "user-1"}

	w := permRequest(permRouter(p, "roles.read"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequirePermission_MissingPrincipal(t *testing.T) {
	w := permRequest(permRouter(nil, "roles.read"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPrincipal_HasPermission(t *testing.T) {
	p := &Principal{Permissions: []string{"users.read", "roles.read"}}

	assert.True(t, p.HasPermission("users.read"))
	assert.False(t, p.HasPermission("users.delete"))
	assert.False(t, (&Principal{}).HasPermission("users.read"))
}
