package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/servicelens/mobile-core/internal/api/handler"
	"github.com/servicelens/mobile-core/internal/api/middleware"
	"github.com/servicelens/mobile-core/internal/core/domain"
	"github.com/servicelens/mobile-core/internal/core/service"
	"github.com/servicelens/mobile-core/internal/infrastructure/config"
	mongodb "github.com/servicelens/mobile-core/internal/infrastructure/db/mongo"
	redisdb "github.com/servicelens/mobile-core/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// Routes live under /api to match the path the mobile client is configured
// with.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("servicelens_auth_http"))

	// --- Dependencies ---
	accountRepo := mongodb.NewAccountRepository(db)
	accountService := service.NewAccountService(accountRepo, cfg.JWTSecret, cfg.TokenTTL)
	revoker := redisdb.NewRevocationList(rdb)
	authHandler := handler.NewAuthHandler(accountService, revoker)
	authRequired := middleware.Auth(cfg.JWTSecret, revoker)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/profile", authHandler.Profile, authRequired)
	auth.PUT("/profile", authHandler.UpdateProfile, authRequired)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout, authRequired)

	// --- Admin routes ---
	adminHandler := handler.NewAdminHandler(accountService)
	admin := e.Group("/api/admin", authRequired, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/accounts/:email", adminHandler.AccountByEmail)

	// --- Observability (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
