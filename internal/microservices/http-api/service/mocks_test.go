package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"mrp/internal/microservices/http-api/models"
	"mrp/internal/microservices/http-api/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (bool, error) {
	args := m.Called(ctx, user)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Profile(ctx context.Context, user *models.User) (*models.UserProfile, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockUserRepository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LeaderboardEntry), args.Error(1)
}

// MockSessionService mocks the SessionService interface
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) IssueToken(ctx context.Context, user *models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockSessionService) Resolve(ctx context.Context, authorization string) (uuid.UUID, error) {
	args := m.Called(ctx, authorization)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockPasswordHasher mocks auth.PasswordHasher
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(hash, password string) error {
	args := m.Called(hash, password)
	return args.Error(0)
}

// MockMediaRepository mocks the MediaRepository interface
type MockMediaRepository struct {
	mock.Mock
}

func (m *MockMediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MediaEntry), args.Error(1)
}

func (m *MockMediaRepository) GetSummary(ctx context.Context, id uuid.UUID) (*models.MediaSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MediaSummary), args.Error(1)
}

func (m *MockMediaRepository) List(ctx context.Context, filter repository.MediaFilter) ([]models.MediaSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MediaSummary), args.Error(1)
}

func (m *MockMediaRepository) Create(ctx context.Context, entry *models.MediaEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockMediaRepository) Update(ctx context.Context, entry *models.MediaEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockMediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMediaRepository) ListUnratedBy(ctx context.Context, userID uuid.UUID) ([]models.MediaSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MediaSummary), args.Error(1)
}

// MockFavoriteRepository mocks the FavoriteRepository interface
type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) Add(ctx context.Context, userID, mediaID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, mediaID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) Remove(ctx context.Context, userID, mediaID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, mediaID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) List(ctx context.Context, userID uuid.UUID) ([]models.MediaSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MediaSummary), args.Error(1)
}

// MockRatingRepository mocks the RatingRepository interface
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) Create(ctx context.Context, rating *models.Rating) (bool, error) {
	args := m.Called(ctx, rating)
	return args.Bool(0), args.Error(1)
}

func (m *MockRatingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Rating, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rating), args.Error(1)
}

func (m *MockRatingRepository) Update(ctx context.Context, rating *models.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *MockRatingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRatingRepository) Confirm(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRatingRepository) ListForMedia(ctx context.Context, mediaID, viewer uuid.UUID) ([]models.RatingView, error) {
	args := m.Called(ctx, mediaID, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RatingView), args.Error(1)
}

func (m *MockRatingRepository) ListByUser(ctx context.Context, authorID, viewer uuid.UUID) ([]models.RatingView, error) {
	args := m.Called(ctx, authorID, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RatingView), args.Error(1)
}

func (m *MockRatingRepository) HighlyRatedMedia(ctx context.Context, userID uuid.UUID, minStars int) ([]models.MediaEntry, error) {
	args := m.Called(ctx, userID, minStars)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MediaEntry), args.Error(1)
}

func (m *MockRatingRepository) AddLike(ctx context.Context, ratingID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, ratingID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRatingRepository) RemoveLike(ctx context.Context, ratingID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, ratingID, userID)
	return args.Bool(0), args.Error(1)
}
