package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capstone-pvt/api/internal/audit/domain"
)

type memAuditRepo struct {
	entries   []*domain.AuditLog
	lastLimit int32
}

func (r *memAuditRepo) Create(ctx context.Context, a *domain.AuditLog) error {
	r.entries = append(r.entries, a)
	return nil
}

func (r *memAuditRepo) ListRecent(ctx context.Context, limit int32) ([]*domain.AuditLog, error) {
	r.lastLimit = limit
	if int32(len(r.entries)) > limit {
		return r.entries[:limit], nil
	}
	return r.entries, nil
}

func passGuard(...string) gin.HandlerFunc {
	return func(c *gin.Context) { c.Next() }
}

func newAuditRouter(repo *memAuditRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(repo).RegisterRoutes(r.Group("/api"), passGuard)
	return r
}

func TestAuditList(t *testing.T) {
	repo := &memAuditRepo{entries: []*domain.AuditLog{
		{ID: "log-1", UserID: "user-1", Action: domain.ActionLogin, Resource: "auth", IP: "127.0.0.1", CreatedAt: time.Now().UTC()},
		{ID: "log-2", UserID: "user-1", Action: domain.ActionLogout, Resource: "auth", CreatedAt: time.Now().UTC()},
	}}
	r := newAuditRouter(repo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit-logs", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"action":"login"`)
	assert.Contains(t, w.Body.String(), `"action":"logout"`)
	assert.Equal(t, int32(100), repo.lastLimit, "default limit")
}

func TestAuditList_LimitParam(t *testing.T) {
	repo := &memAuditRepo{entries: []*domain.AuditLog{
		{ID: "log-1", Action: domain.ActionLogin},
		{ID: "log-2", Action: domain.ActionLogout},
	}}
	r := newAuditRouter(repo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit-logs?limit=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(1), repo.lastLimit)
	assert.NotContains(t, w.Body.String(), `"id":"log-2"`)
}

func TestAuditList_InvalidLimit(t *testing.T) {
	r := newAuditRouter(&memAuditRepo{})

	for _, limit := range []string{"0", "-5", "501", "abc"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit-logs?limit="+limit, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", limit)
	}
}
