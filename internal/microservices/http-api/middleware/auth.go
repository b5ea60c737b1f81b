package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mrp/internal/apperr"
	"mrp/internal/microservices/http-api/service"
)

// userIDKey is the gin context key holding the authenticated caller's id.
const userIDKey = "userID"

// AuthMiddleware is a Gin middleware for bearer token authentication.
// Every failure answers 401 with the same message so clients cannot tell
// a forged token from a revoked one.
func AuthMiddleware(sessions service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := sessions.Resolve(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": service.AuthRequiredMessage})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// CurrentUserID returns the caller set by AuthMiddleware.
func CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, apperr.Unauthenticated(service.AuthRequiredMessage)
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, apperr.Unauthenticated(service.AuthRequiredMessage)
	}
	return id, nil
}
