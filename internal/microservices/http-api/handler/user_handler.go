package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mrp/internal/microservices/http-api/middleware"
	"mrp/internal/microservices/http-api/service"
)

type UserHandler struct {
	svc     service.UserService
	log     *slog.Logger
	timeout time.Duration
}

func NewUserHandler(svc service.UserService, log *slog.Logger, timeout time.Duration) *UserHandler {
	return &UserHandler{svc: svc, log: log, timeout: timeout}
}

func (h *UserHandler) RegisterRoutes(users *gin.RouterGroup) {
	users.GET("/:username/profile", h.Profile)
	users.GET("/:username/favorites", h.Favorites)
	users.GET("/:username/ratings", h.Ratings)
}

func (h *UserHandler) Profile(c *gin.Context) {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	profile, err := h.svc.Profile(ctx, c.Param("username"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) Favorites(c *gin.Context) {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	list, err := h.svc.Favorites(ctx, c.Param("username"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Ratings lists a user's ratings as seen by the caller.
func (h *UserHandler) Ratings(c *gin.Context) {
	caller, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	list, err := h.svc.Ratings(ctx, c.Param("username"), caller)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *UserHandler) Leaderboard(c *gin.Context) {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	entries, err := h.svc.Leaderboard(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *UserHandler) Recommendations(c *gin.Context) {
	caller, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	list, err := h.svc.Recommendations(ctx, caller)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
