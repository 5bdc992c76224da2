// Package server assembles the HTTP router: middleware chain, health and
// metrics endpoints, and the route table with its permission guards.
package server

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	audithandler "github.com/capstone-pvt/api/internal/audit/handler"
	authhandler "github.com/capstone-pvt/api/internal/auth/handler"
	"github.com/capstone-pvt/api/internal/config"
	permissionhandler "github.com/capstone-pvt/api/internal/permission/handler"
	rolehandler "github.com/capstone-pvt/api/internal/role/handler"
	"github.com/capstone-pvt/api/internal/security"
	"github.com/capstone-pvt/api/internal/server/middleware"
)

// Deps holds everything the router needs. ShuttingDown flips /ready to 503
// once shutdown begins so load balancers drain before the listener closes.
type Deps struct {
	Cfg          *config.Config
	Auth         *authhandler.Handler
	Roles        *rolehandler.Handler
	Permissions  *permissionhandler.Handler
	Audit        *audithandler.Handler
	Tokens       *security.TokenProvider
	Users        middleware.UserGetter
	RoleLister   middleware.RoleLister
	ShuttingDown *atomic.Bool
}

// NewRouter builds the gin engine with the full middleware chain and route
// table. Permission requirements are declared here, next to the routes they
// guard, not inside the handlers.
func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(d.Cfg.ServiceName))
	r.Use(middleware.Logging())
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if d.ShuttingDown != nil && d.ShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	d.Auth.RegisterPublicRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.AccessGuard(d.Tokens, d.Users, d.RoleLister))
	d.Auth.RegisterProtectedRoutes(protected)
	d.Roles.RegisterRoutes(protected, middleware.RequirePermission)
	d.Permissions.RegisterRoutes(protected, middleware.RequirePermission)
	d.Audit.RegisterRoutes(protected, middleware.RequirePermission)

	return r
}
