package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/darktech/marketplace-auth/internal/api/handler"
	"github.com/darktech/marketplace-auth/internal/api/middleware"
	"github.com/darktech/marketplace-auth/internal/core/domain"
	"github.com/darktech/marketplace-auth/internal/core/service"
	"github.com/darktech/marketplace-auth/internal/infrastructure/config"
	mongodb "github.com/darktech/marketplace-auth/internal/infrastructure/db/mongo"
	redisdb "github.com/darktech/marketplace-auth/internal/infrastructure/db/redis"
	"github.com/darktech/marketplace-auth/internal/infrastructure/queue"
)

// NewRouter builds and returns the Echo instance with all routes registered,
// plus the telemetry recorder the caller must Start.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) (*echo.Echo, *queue.Recorder) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("marketplace_auth"))

	// --- Dependencies ---
	identityRepo := mongodb.NewIdentityRepository(db)
	inviteRepo := mongodb.NewInviteRepository(db)
	sessionStore := redisdb.NewSessionStore(rdb)

	inviteService := service.NewInviteService(inviteRepo, log)
	lockoutService := service.NewLockoutService(identityRepo, cfg.LockoutThreshold, log)
	authService := service.NewAuthService(identityRepo, inviteService, sessionStore, cfg.JWTSecret, cfg.TokenTTL, log)

	recorder := queue.NewRecorder(cfg.TelemetryWorkers, lockoutService, log)

	authHandler := handler.NewAuthHandler(authService, sessionStore, recorder)
	telemetryHandler := handler.NewTelemetryHandler(lockoutService)
	inviteHandler := handler.NewInviteHandler(inviteService)
	authMiddleware := middleware.Auth(cfg.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/logout", authHandler.Logout, authMiddleware)
	e.GET("/auth/session", authHandler.Session, authMiddleware)
	e.POST("/auth/attempts", telemetryHandler.RecordAttempt)

	// --- Invite routes ---
	e.POST("/invites/validate", inviteHandler.Validate)
	e.POST("/invites/link", inviteHandler.Link)
	e.POST("/invites", inviteHandler.Generate, authMiddleware, middleware.RBAC(domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e, recorder
}
