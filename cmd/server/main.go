// server runs the personnel platform auth API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/capstone-pvt/api/internal/audit"
	audithandler "github.com/capstone-pvt/api/internal/audit/handler"
	auditrepo "github.com/capstone-pvt/api/internal/audit/repository"
	authhandler "github.com/capstone-pvt/api/internal/auth/handler"
	authservice "github.com/capstone-pvt/api/internal/auth/service"
	"github.com/capstone-pvt/api/internal/config"
	"github.com/capstone-pvt/api/internal/db"
	permissionhandler "github.com/capstone-pvt/api/internal/permission/handler"
	permissionrepo "github.com/capstone-pvt/api/internal/permission/repository"
	rolehandler "github.com/capstone-pvt/api/internal/role/handler"
	rolerepo "github.com/capstone-pvt/api/internal/role/repository"
	"github.com/capstone-pvt/api/internal/security"
	sessionrepo "github.com/capstone-pvt/api/internal/session/repository"
	sessionservice "github.com/capstone-pvt/api/internal/session/service"
	"github.com/capstone-pvt/api/internal/server"
	"github.com/capstone-pvt/api/internal/server/middleware"
	userrepo "github.com/capstone-pvt/api/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := cfg.ValidateSecrets(); err != nil {
		log.Fatal().Err(err).Msg("refusing to start without signing secrets")
	}

	setupLogging(cfg)
	log.Info().
		Str("service", cfg.ServiceName).
		Str("env", cfg.Env).
		Str("addr", cfg.HTTPAddr).
		Msg("service starting")

	ctx := context.Background()

	var tracerShutdown func(context.Context) error
	if cfg.TracingEnabled {
		tp, err := middleware.InitTracing(ctx, cfg)
		if err != nil {
			log.Warn().Err(err).Msg("tracing init failed")
		} else {
			tracerShutdown = tp.Shutdown
			log.Info().Str("endpoint", cfg.TracingEndpoint).Msg("tracing initialized")
		}
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer pool.Close()
	log.Info().Msg("database connection pool established")

	users := userrepo.NewPostgresRepository(pool)
	roles := rolerepo.NewPostgresRepository(pool)
	permissions := permissionrepo.NewPostgresRepository(pool)
	sessions := sessionrepo.NewPostgresRepository(pool)
	auditRepo := auditrepo.NewPostgresRepository(pool)
	auditLogger := audit.NewLogger(auditRepo)

	tokens := security.NewTokenProvider(
		cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer,
		cfg.AccessTTL(), cfg.RefreshTTLShort(), cfg.RefreshTTLLong(),
	)
	hasher := security.NewHasher(cfg.BcryptCost)
	sessionStore := sessionservice.NewStore(sessions)
	authSvc := authservice.NewService(users, roles, sessionStore, tokens, hasher, auditLogger)

	var shuttingDown atomic.Bool
	router := server.NewRouter(server.Deps{
		Cfg:          cfg,
		Auth:         authhandler.NewHandler(authSvc, cfg),
		Roles:        rolehandler.NewHandler(roles, auditLogger),
		Permissions:  permissionhandler.NewHandler(permissions),
		Audit:        audithandler.NewHandler(auditRepo),
		Tokens:       tokens,
		Users:        users,
		RoleLister:   roles,
		ShuttingDown: &shuttingDown,
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	<-sigCtx.Done()
	log.Info().Msg("shutdown signal received")

	// Fail readiness first so load balancers drain before the listener closes.
	shuttingDown.Store(true)
	if delay := cfg.ReadinessDrainDelayDuration(); delay > 0 {
		log.Info().Dur("delay", delay).Msg("readiness drain delay")
		time.Sleep(delay)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeoutDuration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	} else {
		log.Info().Msg("http server shutdown complete")
	}

	if tracerShutdown != nil {
		if err := tracerShutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown error")
		}
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = log.With().Str("service", cfg.ServiceName).Logger()
}
