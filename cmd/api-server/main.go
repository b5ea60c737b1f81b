package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"mrp/database"
	"mrp/internal/cache"
	"mrp/internal/config"
	"mrp/internal/logger"
	"mrp/internal/metrics"
	"mrp/internal/microservices/http-api/handler"
	"mrp/internal/microservices/http-api/repository"
	"mrp/internal/microservices/http-api/service"
	"mrp/internal/middleware/auth"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	appLogger := logger.New(cfg)
	slog.SetDefault(appLogger)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to the database
	db, err := database.Open(cfg, appLogger)
	if err != nil {
		appLogger.Error("database_unavailable", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	scope, metricsHandler, metricsCloser := metrics.NewReporter(cfg.PrometheusEnabled, "mrp_api", appLogger)
	defer metricsCloser.Close()

	var guard service.LoginGuard = service.NoopLoginGuard{}
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			appLogger.Error("redis_config_invalid", "error", err)
			os.Exit(1)
		}
		defer redisCache.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			// the throttle fails open, so an unreachable Redis is not fatal
			appLogger.Warn("redis_unreachable", "error", err)
		}
		cancel()
		guard = cache.NewLoginThrottle(redisCache, cfg.LoginMaxFailures, cfg.LoginFailureWindow)
	}

	users := repository.NewUserRepository(db)
	media := repository.NewMediaRepository(db)
	ratings := repository.NewRatingRepository(db)
	favorites := repository.NewFavoriteRepository(db)

	sessions := service.NewSessionService(repository.NewAuthTokenRepository(db), cfg.JWTSecret, appLogger)
	svcs := handler.Services{
		Auth:     service.NewAuthService(users, sessions, auth.NewBcryptHasher(cfg.BcryptCost), guard, appLogger, scope),
		Sessions: sessions,
		Media:    service.NewMediaService(media, ratings, favorites, appLogger),
		Ratings:  service.NewRatingService(ratings, media, appLogger),
		Users:    service.NewUserService(users, media, ratings, favorites, cfg.LeaderboardSize),
	}

	router, err := handler.NewRouter(handler.RouterConfig{
		Log:            appLogger,
		Scope:          scope,
		MetricsHandler: metricsHandler,
		RequestTimeout: cfg.RequestTimeout,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, svcs)
	if err != nil {
		appLogger.Error("router_setup_failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		appLogger.Info("starting_http_server", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		appLogger.Info("received_shutdown_signal")
	case err := <-errChan:
		appLogger.Error("server_error", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("shutdown_failed", "error", err)
		return
	}
	appLogger.Info("server_stopped_gracefully")
}
