package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "sphere/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"sphere/internal/auth"
	"sphere/internal/cache"
	"sphere/internal/config"
	"sphere/internal/db"
	"sphere/internal/guard"
	"sphere/internal/handler"
	"sphere/internal/logging"
	"sphere/internal/redirect"
	"sphere/internal/repository"
	"sphere/internal/router"
	"sphere/internal/service"
	"sphere/internal/session"
)

const (
	purgeInterval = 10 * time.Minute
	// a session guard unused for this long is evicted
	guardIdleTimeout = 30 * time.Minute
)

// @title Sphere Portal API
// @version 1.0
// @description Single sign-on portal in front of the Sphere backend API.
// @host localhost:8080
// @BasePath /
// @schemes http
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())

	// The catalog cache is optional: cache.Client degrades to misses when
	// Redis is unreachable.
	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()

	sessions, err := sessionBackend(ctx, cfg, cacheClient, logger)
	if err != nil {
		logger.Fatal("session backend init", zap.Error(err))
	}

	policy := redirect.DefaultPolicy()
	guards := guard.NewRegistry(policy, logger)
	go guards.RunSweeper(ctx, purgeInterval, guardIdleTimeout)
	portal := &router.Portal{
		Signer:   auth.NewSessionSigner(cfg.SessionSecret, cfg.SessionTTL),
		Sessions: sessions,
		Guards:   guards,
		Policy:   policy,
		Logger:   logger,
	}

	launchAt := cfg.ProjectLaunchURLs()

	// Initialize handlers; services are bound to each request's backend client
	authHandler := handler.NewAuthHandler(policy, guards, logger)
	menuHandler := handler.NewMenuHandler(func(api service.API) service.DashboardService {
		return service.NewDashboardService(api, launchAt)
	})
	userHandler := handler.NewUserHandler(func(api service.API) service.UserService {
		return service.NewUserService(api, cacheClient)
	})
	departmentHandler := handler.NewDepartmentHandler(func(api service.API) service.DepartmentService {
		return service.NewDepartmentService(api)
	})
	auditLogHandler := handler.NewAuditLogHandler(func(api service.API) service.AuditLogService {
		return service.NewAuditLogService(api, cacheClient)
	})

	// Register routes
	router.Register(
		e,
		cfg,
		portal,
		authHandler,
		menuHandler,
		userHandler,
		departmentHandler,
		auditLogHandler,
	)

	logger.Info("swagger documentation available", zap.String("url", swaggerURL(cfg)))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	addr := ":" + cfg.ServerPort
	logger.Info("portal listening", zap.String("addr", addr), zap.String("session_backend", cfg.SessionBackend))
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server start", zap.Error(err))
	}
}

// sessionBackend builds the configured session persistence. The MySQL
// backend also starts the expired-session purger.
func sessionBackend(ctx context.Context, cfg *config.Config, cacheClient *cache.Client, logger *zap.Logger) (session.Backend, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		if err := cacheClient.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, sessions will not persist until it recovers", zap.Error(err))
		}
		return session.NewCacheBackend(cacheClient, cfg.SessionTTL), nil
	case config.SessionBackendMySQL:
		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(gormDB); err != nil {
			return nil, err
		}
		backend := session.NewDBBackend(repository.NewSessionRepository(gormDB), cfg.SessionTTL)
		go session.RunPurger(ctx, backend, purgeInterval, logger)
		return backend, nil
	default:
		return session.NewMemoryBackend(), nil
	}
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
