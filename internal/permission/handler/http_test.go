package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capstone-pvt/api/internal/permission/domain"
)

type memPermissionRepo struct {
	perms   []domain.Permission
	listErr error
}

func (r *memPermissionRepo) GetByName(ctx context.Context, name string) (*domain.Permission, error) {
	for _, p := range r.perms {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *memPermissionRepo) List(ctx context.Context) ([]domain.Permission, error) {
	return r.perms, r.listErr
}

func (r *memPermissionRepo) Create(ctx context.Context, p *domain.Permission) error {
	r.perms = append(r.perms, *p)
	return nil
}

func passGuard(...string) gin.HandlerFunc {
	return func(c *gin.Context) { c.Next() }
}

func newPermissionRouter(repo *memPermissionRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(repo).RegisterRoutes(r.Group("/api"), passGuard)
	return r
}

func TestPermissionList(t *testing.T) {
	repo := &memPermissionRepo{perms: []domain.Permission{
		{ID: "perm-1", Name: domain.RolesRead, Description: "View roles"},
		{ID: "perm-2", Name: domain.UsersRead, Description: "View user accounts"},
	}}
	r := newPermissionRouter(repo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/permissions", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"name":"roles.read"`)
	assert.Contains(t, w.Body.String(), `"name":"users.read"`)
}

func TestPermissionList_Empty(t *testing.T) {
	r := newPermissionRouter(&memPermissionRepo{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/permissions", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())
}

func TestPermissionList_RepoError(t *testing.T) {
	r := newPermissionRouter(&memPermissionRepo{listErr: errors.New("boom")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/permissions", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
