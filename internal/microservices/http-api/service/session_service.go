package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"mrp/internal/apperr"
	"mrp/internal/microservices/http-api/models"
	"mrp/internal/microservices/http-api/repository"
)

const AuthRequiredMessage = "Authentication required"

// SessionService issues bearer tokens and resolves them back to a user.
// A user holds at most one live token; issuing a new one revokes the old.
type SessionService interface {
	IssueToken(ctx context.Context, user *models.User) (string, error)
	// Resolve maps an Authorization header value to the caller's id.
	Resolve(ctx context.Context, authorization string) (uuid.UUID, error)
}

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type sessionService struct {
	tokens repository.AuthTokenRepository
	secret []byte
	log    *slog.Logger
	now    func() time.Time
}

func NewSessionService(tokens repository.AuthTokenRepository, jwtSecret string, log *slog.Logger) SessionService {
	return &sessionService{
		tokens: tokens,
		secret: []byte(jwtSecret),
		log:    log,
		now:    time.Now,
	}
}

func (s *sessionService) IssueToken(ctx context.Context, user *models.User) (string, error) {
	// jti keeps two logins within the same second from producing the same token
	jti, err := uuid.NewV7()
	if err != nil {
		return "", apperr.Internal("generate token id", err)
	}

	claims := sessionClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  user.ID.String(),
			ID:       jti.String(),
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperr.Internal("sign token", err)
	}

	if err := s.tokens.Upsert(ctx, user.ID, signed); err != nil {
		return "", apperr.Internal("store token", err)
	}
	return signed, nil
}

func (s *sessionService) Resolve(ctx context.Context, authorization string) (uuid.UUID, error) {
	unauthenticated := apperr.Unauthenticated(AuthRequiredMessage)

	raw, ok := strings.CutPrefix(authorization, "Bearer ")
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return uuid.Nil, unauthenticated
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, unauthenticated
	}

	// a valid signature is not enough: the token must still be the stored one
	row, err := s.tokens.FindByToken(ctx, raw)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Error("token lookup failed", "error", err)
		}
		return uuid.Nil, unauthenticated
	}
	if row.UserID.String() != claims.Subject {
		s.log.Warn("token subject mismatch", "user_id", row.UserID, "subject", claims.Subject)
		return uuid.Nil, unauthenticated
	}
	return row.UserID, nil
}
