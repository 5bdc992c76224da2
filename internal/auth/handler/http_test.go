package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authservice "github.com/capstone-pvt/api/internal/auth/service"
	"github.com/capstone-pvt/api/internal/config"
	roledomain "github.com/capstone-pvt/api/internal/role/domain"
	"github.com/capstone-pvt/api/internal/security"
	sessiondomain "github.com/capstone-pvt/api/internal/session/domain"
	sessionservice "github.com/capstone-pvt/api/internal/session/service"
	"github.com/capstone-pvt/api/internal/server/middleware"
	userdomain "github.com/capstone-pvt/api/internal/user/domain"
)

type memUserRepo struct {
	mu   sync.Mutex
	byID map[string]*userdomain.User
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	u2 := *u
	u2.PasswordHash = ""
	return &u2, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	u, err := r.GetByEmailWithPassword(ctx, email)
	if u != nil {
		u.PasswordHash = ""
	}
	return u, err
}

func (r *memUserRepo) GetByEmailWithPassword(ctx context.Context, email string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			u2 := *u
			return &u2, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Create(ctx context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u2 := *u
	r.byID[u.ID] = &u2
	return nil
}

func (r *memUserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time, ip string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		u.LastLoginAt = &at
		u.LastLoginIP = ip
	}
	return nil
}

func (r *memUserRepo) UpdateCurrentSessionID(ctx context.Context, id string, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		u.CurrentSessionID = sessionID
	}
	return nil
}

type memRoleRepo struct{}

func (memRoleRepo) ListByIDs(ctx context.Context, ids []string) ([]*roledomain.Role, error) {
	return nil, nil
}

type memSessionRepo struct {
	mu sync.Mutex
	m  map[string]*sessiondomain.Session
}

func (r *memSessionRepo) Insert(ctx context.Context, s *sessiondomain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s2 := *s
	r.m[s.ID] = &s2
	return nil
}

func (r *memSessionRepo) ListValidByUser(ctx context.Context, userID string) ([]*sessiondomain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*sessiondomain.Session
	for _, s := range r.m {
		if s.UserID == userID && s.IsValid {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memSessionRepo) ListAllValid(ctx context.Context) ([]*sessiondomain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*sessiondomain.Session
	for _, s := range r.m {
		if s.IsValid {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memSessionRepo) Invalidate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.m[id]; ok {
		s.IsValid = false
	}
	return nil
}

func (r *memSessionRepo) InvalidateAllByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.m {
		if s.UserID == userID {
			s.IsValid = false
		}
	}
	return nil
}

// newTestRouter wires the handler exactly the way the server router does:
// public auth routes plus a guarded group.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTAccessTTL:       "15m",
		JWTRefreshTTLShort: "168h",
		JWTRefreshTTLLong:  "720h",
		Env:                "test",
	}
	users := &memUserRepo{byID: make(map[string]*userdomain.User)}
	roles := memRoleRepo{}
	store := sessionservice.NewStore(&memSessionRepo{m: make(map[string]*sessiondomain.Session)})
	tokens := security.NewTokenProvider(
		"access-secret", "refresh-secret", "personnel-api-test",
		cfg.AccessTTL(), cfg.RefreshTTLShort(), cfg.RefreshTTLLong(),
	)
	svc := authservice.NewService(users, roles, store, tokens, security.NewHasher(4), nil)
	h := NewHandler(svc, cfg)

	r := gin.New()
	api := r.Group("/api")
	h.RegisterPublicRoutes(api)
	protected := api.Group("")
	protected.Use(middleware.AccessGuard(tokens, users, roles))
	h.RegisterProtectedRoutes(protected)
	return r
}

func postJSON(r *gin.Engine, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cookieByName(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func register(t *testing.T, r *gin.Engine) *httptest.ResponseRecorder {
	t.Helper()
	w := postJSON(r, "/api/auth/register",
		`{"email":"user@example.com","password":"Password123!","firstName":"Jo","lastName":"Smith"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return w
}

func TestRegister_AutoLoginSetsCookies(t *testing.T) {
	r := newTestRouter(t)
	w := register(t, r)

	access := cookieByName(t, w, "accessToken")
	refresh := cookieByName(t, w, "refreshToken")
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.NotEmpty(t, access.Value)
	assert.NotEmpty(t, refresh.Value)
	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, "/", access.Path)
	assert.False(t, access.Secure, "not production")
	assert.Equal(t, int((15 * time.Minute).Seconds()), access.MaxAge)
	assert.Equal(t, int((168 * time.Hour).Seconds()), refresh.MaxAge)
}

func TestLogin_SetsCookies(t *testing.T) {
	r := newTestRouter(t)
	register(t, r)

	w := postJSON(r, "/api/auth/login", `{"email":"user@example.com","password":"Password123!"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"success":true`)

	refresh := cookieByName(t, w, "refreshToken")
	require.NotNil(t, refresh)
	assert.Equal(t, int((168 * time.Hour).Seconds()), refresh.MaxAge)
}

func TestLogin_RememberMeExtendsRefreshCookie(t *testing.T) {
	r := newTestRouter(t)
	register(t, r)

	w := postJSON(r, "/api/auth/login",
		`{"email":"user@example.com","password":"Password123!","rememberMe":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	refresh := cookieByName(t, w, "refreshToken")
	require.NotNil(t, refresh)
	assert.Equal(t, int((720 * time.Hour).Seconds()), refresh.MaxAge)
}

func TestLogin_BadCredentials(t *testing.T) {
	r := newTestRouter(t)
	register(t, r)

	w := postJSON(r, "/api/auth/login", `{"email":"user@example.com","password":"WrongPass123!"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, cookieByName(t, w, "accessToken"))
}

func TestRefresh_ReissuesAccessCookie(t *testing.T) {
	r := newTestRouter(t)
	reg := register(t, r)
	refresh := cookieByName(t, reg, "refreshToken")

	w := postJSON(r, "/api/auth/refresh", "", refresh)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	access := cookieByName(t, w, "accessToken")
	require.NotNil(t, access)
	assert.NotEmpty(t, access.Value)
	// The refresh cookie is not rotated.
	assert.Nil(t, cookieByName(t, w, "refreshToken"))
}

func TestRefresh_MissingCookie(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(r, "/api/auth/refresh", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_AfterLogoutRejected(t *testing.T) {
	r := newTestRouter(t)
	reg := register(t, r)
	refresh := cookieByName(t, reg, "refreshToken")

	w := postJSON(r, "/api/auth/logout", "", refresh)
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(r, "/api/auth/refresh", "", refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_AlwaysOKAndClearsCookies(t *testing.T) {
	r := newTestRouter(t)

	// No cookies at all.
	w := postJSON(r, "/api/auth/logout", "")
	assert.Equal(t, http.StatusOK, w.Code)

	access := cookieByName(t, w, "accessToken")
	refresh := cookieByName(t, w, "refreshToken")
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.Empty(t, access.Value)
	assert.Empty(t, refresh.Value)
	assert.Less(t, access.MaxAge, 0)
	assert.Less(t, refresh.MaxAge, 0)
}

func TestMe_RequiresAuth(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe_ReturnsUser(t *testing.T) {
	r := newTestRouter(t)
	reg := register(t, r)
	access := cookieByName(t, reg, "accessToken")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(access)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"email":"user@example.com"`)
	assert.Contains(t, w.Body.String(), `"fullName":"Jo Smith"`)
}

func TestLogoutAll_RevokesEverything(t *testing.T) {
	r := newTestRouter(t)
	reg := register(t, r)
	access := cookieByName(t, reg, "accessToken")
	refresh := cookieByName(t, reg, "refreshToken")

	w := postJSON(r, "/api/auth/logout-all", "", access)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Refresh token is dead.
	w = postJSON(r, "/api/auth/refresh", "", refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The access token dies too: CurrentSessionID was cleared.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(access)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
