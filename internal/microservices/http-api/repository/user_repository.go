package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mrp/internal/microservices/http-api/models"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// Create inserts the user unless the username is taken; created is false on a clash.
	Create(ctx context.Context, user *models.User) (created bool, err error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Profile(ctx context.Context, user *models.User) (*models.UserProfile, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository in a GORM implementation
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (bool, error) {
	// the unique index on username decides; no separate existence check
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(user)
	if res.Error != nil {
		return false, fmt.Errorf("create user: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	// return nil on miss so callers never mistake a zero-value user for a hit
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Profile(ctx context.Context, user *models.User) (*models.UserProfile, error) {
	db := r.db.WithContext(ctx)
	profile := &models.UserProfile{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}

	var stats struct {
		Total   int64
		Average float64
	}
	if err := db.Model(&models.Rating{}).
		Select("COUNT(*) AS total, COALESCE(AVG(stars), 0) AS average").
		Where("user_id = ?", user.ID).
		Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("rating stats: %w", err)
	}
	profile.TotalRatings = stats.Total
	profile.AverageStarsGiven = stats.Average

	if err := db.Model(&models.Favorite{}).Where("user_id = ?", user.ID).Count(&profile.FavoritesCount).Error; err != nil {
		return nil, fmt.Errorf("count favorites: %w", err)
	}
	if err := db.Model(&models.MediaEntry{}).Where("creator_id = ?", user.ID).Count(&profile.MediaCreated).Error; err != nil {
		return nil, fmt.Errorf("count media: %w", err)
	}
	return profile, nil
}

func (r *userRepository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Table("users AS u").
		Select("u.id AS user_id, u.username, COUNT(r.id) AS rating_count").
		Joins("JOIN ratings r ON r.user_id = u.id").
		Group("u.id, u.username").
		Order("rating_count DESC, u.username ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
