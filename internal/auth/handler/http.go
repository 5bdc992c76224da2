// Package handler exposes the auth API over HTTP with cookie-based tokens.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/capstone-pvt/api/internal/auth/service"
	"github.com/capstone-pvt/api/internal/config"
	"github.com/capstone-pvt/api/internal/permission"
	roledomain "github.com/capstone-pvt/api/internal/role/domain"
	"github.com/capstone-pvt/api/internal/server/middleware"
	userdomain "github.com/capstone-pvt/api/internal/user/domain"
)

// Cookie names shared with the access guard.
const (
	accessCookie  = middleware.AccessCookie
	refreshCookie = "refreshToken"
)

type registerRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// Handler groups the HTTP handlers for the auth endpoints.
type Handler struct {
	auth *service.Service
	cfg  *config.Config
}

// NewHandler returns a Handler backed by the auth service.
func NewHandler(auth *service.Service, cfg *config.Config) *Handler {
	return &Handler{auth: auth, cfg: cfg}
}

// RegisterPublicRoutes mounts the unauthenticated auth endpoints.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/refresh", h.Refresh)
	rg.POST("/auth/logout", h.Logout)
}

// RegisterProtectedRoutes mounts the endpoints that require a valid access
// token. The caller applies the access guard to rg before mounting.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/logout-all", h.LogoutAll)
	rg.GET("/auth/me", h.Me)
}

// Register creates an account and immediately logs it in, so the client
// leaves with the same cookie pair a login would set.
func (h *Handler) Register(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "auth.register", trace.WithAttributes(
		attribute.String("layer", "handler"),
	))
	defer span.End()

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if _, err := h.auth.Register(ctx, req.Email, req.Password, req.FirstName, req.LastName); err != nil {
		span.RecordError(err)
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "email already registered"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.auth.Login(ctx, req.Email, req.Password, ExtractDeviceInfo(c), false)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken, false)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "registration successful",
		"data":    userPayload(result.User, result.Roles, result.Permissions),
	})
}

// Login authenticates and sets the accessToken/refreshToken cookie pair.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "auth.login", trace.WithAttributes(
		attribute.String("layer", "handler"),
	))
	defer span.End()

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.auth.Login(ctx, req.Email, req.Password, ExtractDeviceInfo(c), req.RememberMe)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid credentials"})
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	middleware.CountSessionIssued()
	h.setAuthCookies(c, result.AccessToken, result.RefreshToken, req.RememberMe)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "login successful",
		"data":    userPayload(result.User, result.Roles, result.Permissions),
	})
}

// Refresh reissues the access token cookie from the refreshToken cookie. The
// refresh cookie itself is left untouched.
func (h *Handler) Refresh(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "auth.refresh", trace.WithAttributes(
		attribute.String("layer", "handler"),
	))
	defer span.End()

	raw, err := c.Cookie(refreshCookie)
	if err != nil || raw == "" {
		middleware.CountAuthFailure("refresh_missing_cookie")
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
		return
	}

	result, err := h.auth.RefreshAccessToken(ctx, raw)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, service.ErrInvalidRefreshToken) || errors.Is(err, service.ErrSessionExpired) {
			middleware.CountAuthFailure("refresh_rejected")
			h.clearAuthCookies(c)
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("token refresh failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	h.setCookie(c, accessCookie, result.AccessToken, h.cfg.AccessTTL())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "token refreshed",
	})
}

// Logout invalidates the session behind the refresh cookie and clears both
// cookies. Always 200, even with no or an unrecognized cookie.
func (h *Handler) Logout(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "auth.logout", trace.WithAttributes(
		attribute.String("layer", "handler"),
	))
	defer span.End()

	raw, _ := c.Cookie(refreshCookie)
	if err := h.auth.Logout(ctx, raw); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("logout failed")
	}

	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
}

// LogoutAll invalidates every session of the authenticated user.
func (h *Handler) LogoutAll(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "auth.logout_all", trace.WithAttributes(
		attribute.String("layer", "handler"),
	))
	defer span.End()

	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
		return
	}

	if err := h.auth.LogoutAll(ctx, principal.UserID); err != nil {
		span.RecordError(err)
		log.Ctx(ctx).Error().Err(err).Msg("logout-all failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out everywhere"})
}

// Me returns the authenticated user with expanded roles and permissions.
func (h *Handler) Me(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "auth.me", trace.WithAttributes(
		attribute.String("layer", "handler"),
	))
	defer span.End()

	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
		return
	}

	user, roles, perms, err := h.auth.GetUserByID(ctx, principal.UserID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("me lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": userPayload(user, roles, perms)})
}

func (h *Handler) setAuthCookies(c *gin.Context, accessToken, refreshToken string, rememberMe bool) {
	refreshTTL := h.cfg.RefreshTTLShort()
	if rememberMe {
		refreshTTL = h.cfg.RefreshTTLLong()
	}
	h.setCookie(c, accessCookie, accessToken, h.cfg.AccessTTL())
	h.setCookie(c, refreshCookie, refreshToken, refreshTTL)
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	h.setCookie(c, accessCookie, "", -time.Second)
	h.setCookie(c, refreshCookie, "", -time.Second)
}

func (h *Handler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", "", h.cfg.IsProduction(), true)
}

func userPayload(u *userdomain.User, roles []*roledomain.Role, perms []string) gin.H {
	return gin.H{
		"id":          u.ID,
		"email":       u.Email,
		"firstName":   u.FirstName,
		"lastName":    u.LastName,
		"fullName":    u.FullName(),
		"isActive":    u.IsActive,
		"roles":       permission.Names(roles),
		"permissions": perms,
		"lastLoginAt": u.LastLoginAt,
	}
}
