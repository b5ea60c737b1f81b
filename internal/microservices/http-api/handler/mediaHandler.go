package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mrp/internal/microservices/http-api/dto"
	"mrp/internal/microservices/http-api/middleware"
	"mrp/internal/microservices/http-api/repository"
	"mrp/internal/microservices/http-api/service"
)

type MediaHandler struct {
	svc     service.MediaService
	ratings service.RatingService
	log     *slog.Logger
	timeout time.Duration
}

func NewMediaHandler(svc service.MediaService, ratings service.RatingService, log *slog.Logger, timeout time.Duration) *MediaHandler {
	return &MediaHandler{svc: svc, ratings: ratings, log: log, timeout: timeout}
}

// RegisterRoutes mounts the media endpoints; rg must already require auth.
func (h *MediaHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)

	rg.POST("/:id/favorite", h.AddFavorite)
	rg.DELETE("/:id/favorite", h.RemoveFavorite)
	rg.POST("/:id/ratings", h.Rate)
}

// List answers GET /api/media?search=&type=&genre=&year=&age=&sort=
func (h *MediaHandler) List(c *gin.Context) {
	filter, err := repository.ParseMediaFilter(c.Request.URL.Query())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	list, err := h.svc.List(ctx, filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *MediaHandler) Get(c *gin.Context) {
	caller, id, err := callerAndID(c, "media")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	detail, err := h.svc.Get(ctx, id, caller)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *MediaHandler) Create(c *gin.Context) {
	caller, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req dto.MediaRequest
	if !bindJSON(c, &req, dto.MediaMessages) {
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	entry, err := h.svc.Create(ctx, caller, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Update resolves existence and ownership before the body is looked at,
// so a stranger gets 403 even for a malformed payload.
func (h *MediaHandler) Update(c *gin.Context) {
	caller, id, err := callerAndID(c, "media")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	if _, err := h.svc.Owned(ctx, id, caller, service.MediaEditForbidden); err != nil {
		respondError(c, h.log, err)
		return
	}

	var req dto.MediaRequest
	if !bindJSON(c, &req, dto.MediaMessages) {
		return
	}

	entry, err := h.svc.Update(ctx, id, caller, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *MediaHandler) Delete(c *gin.Context) {
	caller, id, err := callerAndID(c, "media")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	if err := h.svc.Delete(ctx, id, caller); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, "Media deleted successfully")
}

func (h *MediaHandler) AddFavorite(c *gin.Context) {
	caller, id, err := callerAndID(c, "media")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	if err := h.svc.AddFavorite(ctx, caller, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, "Added to favorites")
}

func (h *MediaHandler) RemoveFavorite(c *gin.Context) {
	caller, id, err := callerAndID(c, "media")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	if err := h.svc.RemoveFavorite(ctx, caller, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, "Removed from favorites")
}

// Rate answers POST /api/media/:id/ratings.
func (h *MediaHandler) Rate(c *gin.Context) {
	caller, id, err := callerAndID(c, "media")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	if err := h.ratings.RequireMedia(ctx, id); err != nil {
		respondError(c, h.log, err)
		return
	}

	var req dto.RatingRequest
	if !bindJSON(c, &req, nil) {
		return
	}

	rating, err := h.ratings.Create(ctx, caller, id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, rating)
}
