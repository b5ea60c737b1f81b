package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uber-go/tally/v6"

	"mrp/internal/apperr"
	"mrp/internal/metrics"
	"mrp/internal/microservices/http-api/dto"
	"mrp/internal/microservices/http-api/middleware"
	"mrp/internal/microservices/http-api/service"
)

const (
	ServiceName    = "Media Ratings Platform API"
	ServiceVersion = "1.0.0"

	EndpointNotFound = "Endpoint not found"
	MethodNotAllowed = apperr.MethodNotAllowedMessage
)

// Services bundles everything the router dispatches to.
type Services struct {
	Auth     service.AuthService
	Sessions service.SessionService
	Media    service.MediaService
	Ratings  service.RatingService
	Users    service.UserService
}

type RouterConfig struct {
	Log            *slog.Logger
	Scope          tally.Scope
	MetricsHandler http.Handler // nil keeps /metrics unmounted
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter wires middleware and every API route onto a fresh engine.
func NewRouter(cfg RouterConfig, svcs Services) (*gin.Engine, error) {
	if err := dto.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}
	if cfg.Scope == nil {
		cfg.Scope = tally.NoopScope
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		middleware.Recovery(cfg.Log),
		middleware.RequestLogger(cfg.Log),
		metrics.Middleware(cfg.Scope),
		middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Log),
	)

	r.NoRoute(func(c *gin.Context) {
		respondError(c, cfg.Log, apperr.NotFound(EndpointNotFound))
	})
	r.NoMethod(func(c *gin.Context) {
		respondError(c, cfg.Log, apperr.MethodNotAllowed())
	})

	r.GET("/", health)
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	authHandler := NewAuthHandler(svcs.Auth, cfg.Log, cfg.RequestTimeout)
	mediaHandler := NewMediaHandler(svcs.Media, svcs.Ratings, cfg.Log, cfg.RequestTimeout)
	ratingHandler := NewRatingHandler(svcs.Ratings, cfg.Log, cfg.RequestTimeout)
	userHandler := NewUserHandler(svcs.Users, cfg.Log, cfg.RequestTimeout)

	api := r.Group("/api")
	api.GET("", health)

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/users/login", authHandler.Login)

	// Everything below requires a live token
	protected := api.Group("", middleware.AuthMiddleware(svcs.Sessions))
	mediaHandler.RegisterRoutes(protected.Group("/media"))
	ratingHandler.RegisterRoutes(protected.Group("/ratings"))
	userHandler.RegisterRoutes(protected.Group("/users"))
	protected.GET("/leaderboard", userHandler.Leaderboard)
	protected.GET("/recommendations", userHandler.Recommendations)

	return r, nil
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": ServiceName,
		"version": ServiceVersion,
	})
}
