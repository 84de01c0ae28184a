package main

import (
	"context"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/jim4golf/simsy-reporting-api/internal/auth"
	"github.com/jim4golf/simsy-reporting-api/internal/handler"
	"github.com/jim4golf/simsy-reporting-api/internal/middleware"
	"github.com/jim4golf/simsy-reporting-api/internal/model"
	"github.com/jim4golf/simsy-reporting-api/internal/scope"
	"github.com/jim4golf/simsy-reporting-api/internal/session"
	"github.com/jim4golf/simsy-reporting-api/pkg/config"
	"github.com/jim4golf/simsy-reporting-api/pkg/database"
	"github.com/jim4golf/simsy-reporting-api/pkg/jwtutil"
	"github.com/jim4golf/simsy-reporting-api/pkg/logger"
	"github.com/jim4golf/simsy-reporting-api/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting simsy-reporting-api...", zap.String("environment", cfg.Server.Env))
	if cfg.Auth.DevTenantHeader {
		log.Warn("Development tenant header is enabled - do not use in production")
	}

	// Initialize database (ORM connection for models and admin surface)
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(
		&model.Tenant{},
		&model.User{},
		&model.UsageRecord{},
		&model.Bundle{},
		&model.Endpoint{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connection established")

	// Connection pool for the scope-guarded report query path
	pool, err := database.NewPool(context.Background(), cfg)
	if err != nil {
		log.Fatal("Failed to initialize report query pool", zap.Error(err))
	}
	defer pool.Close()

	// Session store backing credential resolution and revocation
	store, err := session.NewRedisStore(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to session store", zap.Error(err))
	}
	log.Info("Session store connected", zap.String("addr", cfg.Redis.Addr))

	// Core components
	jwtUtil := jwtutil.NewJWTUtil(&cfg.JWT)
	resolver := auth.NewResolver(jwtUtil, store, &cfg.Auth)
	guard := scope.NewGuard(pool)

	// Handlers
	authHandler := handler.NewAuthHandler(jwtUtil, store, cfg.Auth.SessionTTL)
	tokenHandler := handler.NewServiceTokenHandler(store)
	reportHandler := handler.NewReportHandler(guard)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Authentication routes
	authGroup := e.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)

	// API routes - all require a resolved tenant identity
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware(resolver))

	// Reports
	reports := api.Group("/reports")
	reports.GET("/usage", reportHandler.UsageReport)
	reports.GET("/bundles", reportHandler.BundleReport)

	// Device endpoints
	api.GET("/endpoints", reportHandler.ListEndpoints)

	// Tenant listing (scoped per caller)
	api.GET("/tenants", handler.ListTenants)

	// Admin surface - interactive platform admins only
	admin := api.Group("")
	admin.Use(middleware.RequireSessionAuth)
	admin.Use(middleware.RequirePlatformAdmin)
	admin.GET("/users", handler.ListUsers)
	admin.POST("/users", handler.CreateUser)
	admin.DELETE("/users/:id", handler.DeleteUser)
	admin.POST("/service-tokens", tokenHandler.CreateServiceToken)
	admin.DELETE("/service-tokens/:id", tokenHandler.DeleteServiceToken)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
