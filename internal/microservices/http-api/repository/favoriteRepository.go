package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mrp/internal/microservices/http-api/models"
)

type FavoriteRepository interface {
	Add(ctx context.Context, userID, mediaID uuid.UUID) (created bool, err error)
	Remove(ctx context.Context, userID, mediaID uuid.UUID) (removed bool, err error)
	// List returns the user's favorites as summaries, most recently added first.
	List(ctx context.Context, userID uuid.UUID) ([]models.MediaSummary, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Add(ctx context.Context, userID, mediaID uuid.UUID) (bool, error) {
	fav := &models.Favorite{UserID: userID, MediaID: mediaID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(fav)
	if res.Error != nil {
		return false, fmt.Errorf("add favorite: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, mediaID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND media_id = ?", userID, mediaID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return false, fmt.Errorf("remove favorite: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *favoriteRepository) List(ctx context.Context, userID uuid.UUID) ([]models.MediaSummary, error) {
	rows := make([]models.MediaSummary, 0)
	err := r.db.WithContext(ctx).
		Table("favorites AS f").
		Select(mediaSummaryColumns).
		Joins("JOIN media_entries m ON m.id = f.media_id").
		Joins("JOIN users u ON u.id = m.creator_id").
		Joins("LEFT JOIN ratings r ON r.media_id = m.id").
		Where("f.user_id = ?", userID).
		Group("m.id, u.username, f.created_at").
		Order("f.created_at DESC, m.title ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return rows, nil
}
