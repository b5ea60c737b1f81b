package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mrp/internal/microservices/http-api/dto"
	"mrp/internal/microservices/http-api/service"
)

type AuthHandler struct {
	authService service.AuthService
	log         *slog.Logger
	timeout     time.Duration
}

func NewAuthHandler(authService service.AuthService, log *slog.Logger, timeout time.Duration) *AuthHandler {
	return &AuthHandler{authService: authService, log: log, timeout: timeout}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req, dto.CredentialMessages) {
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	user, err := h.authService.Register(ctx, req.Username, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.RegisterResponse{
		ID:       user.ID,
		Username: user.Username,
		Message:  "User registered successfully",
	})
}

// Login issues a new token; any token issued earlier stops working.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req, dto.CredentialMessages) {
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	token, user, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:    token,
		Username: user.Username,
		UserID:   user.ID,
		Message:  "Login successful",
	})
}
