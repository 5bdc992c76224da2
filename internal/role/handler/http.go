// Package handler exposes role management over HTTP. Mutating endpoints
// enforce the role hierarchy: the acting user's most senior role must outrank
// the role being touched.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/capstone-pvt/api/internal/audit"
	auditdomain "github.com/capstone-pvt/api/internal/audit/domain"
	permissiondomain "github.com/capstone-pvt/api/internal/permission/domain"
	"github.com/capstone-pvt/api/internal/role/domain"
	"github.com/capstone-pvt/api/internal/server/middleware"
)

// RoleRepo is the repository surface needed by the role handlers.
type RoleRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	ListByNames(ctx context.Context, names []string) ([]*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
	Create(ctx context.Context, r *domain.Role) error
	Update(ctx context.Context, r *domain.Role) error
	Delete(ctx context.Context, id string) error
}

type roleRequest struct {
	Name          string   `json:"name" binding:"required"`
	DisplayName   string   `json:"displayName" binding:"required"`
	Description   string   `json:"description"`
	Hierarchy     int      `json:"hierarchy" binding:"required"`
	PermissionIDs []string `json:"permissionIds"`
}

// Handler groups the HTTP handlers for role management.
type Handler struct {
	roles RoleRepo
	audit audit.AuditLogger
}

// NewHandler returns a Handler backed by the role repository.
func NewHandler(roles RoleRepo, auditLogger audit.AuditLogger) *Handler {
	if auditLogger == nil {
		auditLogger = audit.NopLogger{}
	}
	return &Handler{roles: roles, audit: auditLogger}
}

// RegisterRoutes mounts the role endpoints on rg. The caller wraps each route
// with the matching permission guard in the router's route table.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, guard func(...string) gin.HandlerFunc) {
	rg.GET("/roles", guard(permissiondomain.RolesRead), h.List)
	rg.GET("/roles/:id", guard(permissiondomain.RolesRead), h.Get)
	rg.POST("/roles", guard(permissiondomain.RolesCreate), h.Create)
	rg.PUT("/roles/:id", guard(permissiondomain.RolesUpdate), h.Update)
	rg.DELETE("/roles/:id", guard(permissiondomain.RolesDelete), h.Delete)
}

// List returns every role with expanded permissions.
func (h *Handler) List(c *gin.Context) {
	roles, err := h.roles.List(c.Request.Context())
	if err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("role list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	out := make([]gin.H, 0, len(roles))
	for _, r := range roles {
		out = append(out, rolePayload(r))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

// Get returns one role by id.
func (h *Handler) Get(c *gin.Context) {
	role, err := h.roles.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("role lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	if role == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "role not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rolePayload(role)})
}

// Create creates a role. The acting user's seniority must outrank the new
// role's hierarchy.
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	now := time.Now().UTC()
	role := &domain.Role{
		ID:            uuid.New().String(),
		Name:          req.Name,
		DisplayName:   req.DisplayName,
		Description:   req.Description,
		Hierarchy:     req.Hierarchy,
		PermissionIDs: req.PermissionIDs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := role.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if !h.canManage(c, role) {
		return
	}

	existing, err := h.roles.GetByName(ctx, role.Name)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("role name check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "role name already exists"})
		return
	}

	if err := h.roles.Create(ctx, role); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("role create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	h.logAction(c, auditdomain.ActionRoleCreate, role.Name)
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": rolePayload(role)})
}

// Update replaces a role's fields. The acting user must outrank both the
// role's current hierarchy and the requested one.
func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	role, err := h.roles.GetByID(ctx, c.Param("id"))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("role lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	if role == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "role not found"})
		return
	}

	if !h.canManage(c, role) {
		return
	}

	if req.Name != role.Name {
		existing, err := h.roles.GetByName(ctx, req.Name)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("role name check failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "role name already exists"})
			return
		}
	}

	role.Name = req.Name
	role.DisplayName = req.DisplayName
	role.Description = req.Description
	role.Hierarchy = req.Hierarchy
	role.PermissionIDs = req.PermissionIDs
	role.UpdatedAt = time.Now().UTC()
	if err := role.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	// Re-gate against the new hierarchy too, so a user cannot promote a role
	// above their own seniority.
	if !h.canManage(c, role) {
		return
	}

	if err := h.roles.Update(ctx, role); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("role update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	h.logAction(c, auditdomain.ActionRoleUpdate, role.Name)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rolePayload(role)})
}

// Delete removes a role. System roles cannot be deleted.
func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	role, err := h.roles.GetByID(ctx, c.Param("id"))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("role lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	if role == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "role not found"})
		return
	}
	if role.IsSystemRole {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "system roles cannot be deleted"})
		return
	}

	if !h.canManage(c, role) {
		return
	}

	if err := h.roles.Delete(ctx, role.ID); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("role delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	h.logAction(c, auditdomain.ActionRoleDelete, role.Name)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "role deleted"})
}

// canManage loads the acting principal's roles and checks that the most
// senior one outranks target. Writes the error response and returns false
// when the gate fails.
func (h *Handler) canManage(c *gin.Context, target *domain.Role) bool {
	ctx := c.Request.Context()

	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
		return false
	}

	acting, err := h.roles.ListByNames(ctx, principal.Roles)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("acting role lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return false
	}

	senior := mostSenior(acting)
	if senior == nil || !senior.CanManage(target) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "insufficient role hierarchy"})
		return false
	}
	return true
}

// mostSenior returns the role with the lowest hierarchy value, or nil.
func mostSenior(roles []*domain.Role) *domain.Role {
	var senior *domain.Role
	for _, r := range roles {
		if r == nil {
			continue
		}
		if senior == nil || r.Hierarchy < senior.Hierarchy {
			senior = r
		}
	}
	return senior
}

func (h *Handler) logAction(c *gin.Context, action, roleName string) {
	userID := ""
	if principal, ok := middleware.GetPrincipal(c); ok {
		userID = principal.UserID
	}
	h.audit.LogEvent(c.Request.Context(), userID, action, "role", c.ClientIP(), roleName)
}

func rolePayload(r *domain.Role) gin.H {
	perms := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, p.Name)
	}
	return gin.H{
		"id":           r.ID,
		"name":         r.Name,
		"displayName":  r.DisplayName,
		"description":  r.Description,
		"hierarchy":    r.Hierarchy,
		"isSystemRole": r.IsSystemRole,
		"permissions":  perms,
	}
}
