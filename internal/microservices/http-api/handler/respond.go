package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mrp/internal/apperr"
	"mrp/internal/microservices/http-api/dto"
	"mrp/internal/microservices/http-api/middleware"
	"mrp/internal/microservices/http-api/service"
)

// DefaultRequestTimeout bounds storage work for one request when no
// timeout is configured.
const DefaultRequestTimeout = 5 * time.Second

// respondError writes the error envelope for err. Internal failures are
// logged with their cause and reach the client only as a generic message.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindInternal {
		log.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
	c.JSON(apperr.HTTPStatus(e.Kind), gin.H{"error": apperr.PublicMessage(err)})
}

func respondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// bindJSON binds the body into dst; a failure is answered with the first
// failing field's message and reported as false.
func bindJSON(c *gin.Context, dst any, messages map[string]string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": dto.BindingMessage(err, messages)})
		return false
	}
	return true
}

func requestContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

// callerAndID reads the authenticated caller and the :id path parameter.
func callerAndID(c *gin.Context, entity string) (uuid.UUID, uuid.UUID, error) {
	caller, err := middleware.CurrentUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := service.ParseID(c.Param("id"), entity)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return caller, id, nil
}
