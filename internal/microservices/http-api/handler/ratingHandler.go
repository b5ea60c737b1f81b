package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mrp/internal/microservices/http-api/dto"
	"mrp/internal/microservices/http-api/service"
)

type RatingHandler struct {
	svc     service.RatingService
	log     *slog.Logger
	timeout time.Duration
}

func NewRatingHandler(svc service.RatingService, log *slog.Logger, timeout time.Duration) *RatingHandler {
	return &RatingHandler{svc: svc, log: log, timeout: timeout}
}

func (h *RatingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.PUT("/:id/confirm", h.Confirm)
	rg.POST("/:id/like", h.Like)
	rg.DELETE("/:id/unlike", h.Unlike)
}

func (h *RatingHandler) Update(c *gin.Context) {
	caller, id, err := callerAndID(c, "rating")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	if _, err := h.svc.Owned(ctx, id, caller); err != nil {
		respondError(c, h.log, err)
		return
	}

	var req dto.RatingRequest
	if !bindJSON(c, &req, nil) {
		return
	}

	rating, err := h.svc.Update(ctx, id, caller, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

func (h *RatingHandler) Delete(c *gin.Context) {
	caller, id, err := callerAndID(c, "rating")
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
	respondMessage(c, http.StatusOK, "Rating deleted successfully")
}

// Confirm publishes the rating's comment to other users.
func (h *RatingHandler) Confirm(c *gin.Context) {
	caller, id, err := callerAndID(c, "rating")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	if err := h.svc.Confirm(ctx, id, caller); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, "Comment confirmed")
}

func (h *RatingHandler) Like(c *gin.Context) {
	caller, id, err := callerAndID(c, "rating")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	if err := h.svc.Like(ctx, id, caller); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, "Rating liked")
}

func (h *RatingHandler) Unlike(c *gin.Context) {
	caller, id, err := callerAndID(c, "rating")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	if err := h.svc.Unlike(ctx, id, caller); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, "Rating unliked")
}
