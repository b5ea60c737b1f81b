package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/uber-go/tally/v6"
	"gorm.io/gorm"

	"mrp/internal/apperr"
	"mrp/internal/microservices/http-api/models"
	"mrp/internal/microservices/http-api/repository"
	"mrp/internal/middleware/auth"
)

const (
	CredentialsRequired   = "Username and password are required"
	UsernameLength        = "Username must be between 3 and 50 characters"
	PasswordLength        = "Password must be at least 6 characters"
	PasswordTooLong       = "Password must be at most 72 bytes"
	UsernameTaken         = "Username already exists"
	InvalidCredentials    = "Invalid username or password"
	TooManyAttempts       = "Too many failed login attempts, try again later"
	minUsernameLength     = 3
	maxUsernameLength     = 50
	minPasswordLength     = 6
	maxPasswordBytes      = 72 // bcrypt input limit
	dummyPasswordMaterial = "mrp-dummy-password"
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	// Login verifies credentials and returns a fresh token, revoking the previous one.
	Login(ctx context.Context, username, password string) (string, *models.User, error)
}

// LoginGuard limits repeated failed logins per username.
type LoginGuard interface {
	Allow(ctx context.Context, username string) (bool, error)
	Failed(ctx context.Context, username string) error
	Succeeded(ctx context.Context, username string) error
}

// NoopLoginGuard never blocks; used when no Redis is configured.
type NoopLoginGuard struct{}

func (NoopLoginGuard) Allow(context.Context, string) (bool, error) { return true, nil }
func (NoopLoginGuard) Failed(context.Context, string) error        { return nil }
func (NoopLoginGuard) Succeeded(context.Context, string) error     { return nil }

type authService struct {
	users    repository.UserRepository
	sessions SessionService
	hasher   auth.PasswordHasher
	guard    LoginGuard
	log      *slog.Logger

	registered   tally.Counter
	loginSuccess tally.Counter
	loginFailure tally.Counter

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users repository.UserRepository,
	sessions SessionService,
	hasher auth.PasswordHasher,
	guard LoginGuard,
	log *slog.Logger,
	scope tally.Scope,
) AuthService {
	if guard == nil {
		guard = NoopLoginGuard{}
	}
	scope = scope.SubScope("auth")
	return &authService{
		users:        users,
		sessions:     sessions,
		hasher:       hasher,
		guard:        guard,
		log:          log,
		registered:   scope.Counter("registered"),
		loginSuccess: scope.Counter("login_success"),
		loginFailure: scope.Counter("login_failure"),
	}
}

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return apperr.Validation(CredentialsRequired)
	}
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return apperr.Validation(UsernameLength)
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return apperr.Validation(PasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return apperr.Validation(PasswordTooLong)
	}
	return nil
}

// Register: creates a user; the unique username index is the only uniqueness check
func (s *authService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	user := &models.User{Username: username, PasswordHash: hash}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		if apperr.IsUniqueViolation(err) {
			return nil, apperr.Conflict(UsernameTaken)
		}
		return nil, apperr.Internal("create user", err)
	}
	if !created {
		return nil, apperr.Conflict(UsernameTaken)
	}

	s.registered.Inc(1)
	s.log.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login: authenticates a user and issues the single live token
func (s *authService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return "", nil, apperr.Validation(CredentialsRequired)
	}

	allowed, err := s.guard.Allow(ctx, username)
	if err != nil {
		// throttle storage is advisory; fail open
		s.log.Warn("login throttle unavailable", "error", err)
	}
	if !allowed {
		return "", nil, apperr.Unauthenticated(TooManyAttempts)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperr.Internal("find user", err)
		}
		// unknown user still pays for a hash comparison so timing does not reveal existence
		_ = s.hasher.Verify(s.dummy(), password)
		return "", nil, s.failed(ctx, username)
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		return "", nil, s.failed(ctx, username)
	}

	token, err := s.sessions.IssueToken(ctx, user)
	if err != nil {
		return "", nil, err
	}
	if err := s.guard.Succeeded(ctx, username); err != nil {
		s.log.Warn("login throttle reset failed", "error", err)
	}

	s.loginSuccess.Inc(1)
	s.log.Info("user logged in", "user_id", user.ID)
	return token, user, nil
}

func (s *authService) failed(ctx context.Context, username string) error {
	s.loginFailure.Inc(1)
	if err := s.guard.Failed(ctx, username); err != nil {
		s.log.Warn("login throttle update failed", "error", err)
	}
	return apperr.Unauthenticated(InvalidCredentials)
}

func (s *authService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(dummyPasswordMaterial)
		if err != nil {
			s.log.Error("dummy hash failed", "error", err)
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
