// Package handler exposes the permission catalogue over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	permissiondomain "github.com/capstone-pvt/api/internal/permission/domain"
	"github.com/capstone-pvt/api/internal/permission/repository"
)

// Handler serves the permission listing.
type Handler struct {
	repo repository.Repository
}

// NewHandler returns a Handler backed by the permission repository.
func NewHandler(repo repository.Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes mounts the permission endpoints on rg behind the
// permissions.read permission.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, guard func(...string) gin.HandlerFunc) {
	rg.GET("/permissions", guard(permissiondomain.PermissionsRead), h.List)
}

// List returns every permission, sorted by name. Role editors use this to
// populate permission pickers.
func (h *Handler) List(c *gin.Context) {
	perms, err := h.repo.List(c.Request.Context())
	if err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("permission list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	out := make([]gin.H, 0, len(perms))
	for _, p := range perms {
		out = append(out, gin.H{
			"id":          p.ID,
			"name":        p.Name,
			"description": p.Description,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}
