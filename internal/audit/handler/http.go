// Package handler exposes read access to the audit trail.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/capstone-pvt/api/internal/audit/repository"
	permissiondomain "github.com/capstone-pvt/api/internal/permission/domain"
)

const defaultLimit = 100

// Handler serves the audit log listing.
type Handler struct {
	repo repository.Repository
}

// NewHandler returns a Handler backed by the audit repository.
func NewHandler(repo repository.Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes mounts the audit endpoints on rg behind the audit.read
// permission.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, guard func(...string) gin.HandlerFunc) {
	rg.GET("/audit-logs", guard(permissiondomain.AuditRead), h.List)
}

// List returns the most recent audit events, newest first. The limit query
// parameter caps the page size at 500.
func (h *Handler) List(c *gin.Context) {
	limit := int32(defaultLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || n < 1 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "limit must be between 1 and 500"})
			return
		}
		limit = int32(n)
	}

	entries, err := h.repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("audit list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"id":        e.ID,
			"userId":    e.UserID,
			"action":    e.Action,
			"resource":  e.Resource,
			"ip":        e.IP,
			"metadata":  e.Metadata,
			"createdAt": e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}
