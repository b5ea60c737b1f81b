package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mrp/internal/microservices/http-api/models"
)

type RatingRepository interface {
	// Create inserts the rating unless the user already rated the media.
	Create(ctx context.Context, rating *models.Rating) (created bool, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Rating, error)
	Update(ctx context.Context, rating *models.Rating) error
	Delete(ctx context.Context, id uuid.UUID) error
	Confirm(ctx context.Context, id uuid.UUID) error
	// ListForMedia returns the media's ratings the viewer may read, newest first.
	ListForMedia(ctx context.Context, mediaID, viewer uuid.UUID) ([]models.RatingView, error)
	// ListByUser returns the author's ratings the viewer may read, newest first.
	ListByUser(ctx context.Context, authorID, viewer uuid.UUID) ([]models.RatingView, error)
	// HighlyRatedMedia returns media the user gave at least minStars.
	HighlyRatedMedia(ctx context.Context, userID uuid.UUID, minStars int) ([]models.MediaEntry, error)

	AddLike(ctx context.Context, ratingID, userID uuid.UUID) (created bool, err error)
	RemoveLike(ctx context.Context, ratingID, userID uuid.UUID) (removed bool, err error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Create a new rating; the (media_id, user_id) unique index rejects a second one
func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rating)
	if res.Error != nil {
		return false, fmt.Errorf("create rating: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ratingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).First(&rating, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

// Update writes stars, comment and confirmation state
func (r *ratingRepository) Update(ctx context.Context, rating *models.Rating) error {
	res := r.db.WithContext(ctx).Model(&models.Rating{}).Where("id = ?", rating.ID).Updates(map[string]any{
		"stars":        rating.Stars,
		"comment":      rating.Comment,
		"is_confirmed": rating.Confirmed,
	})
	if res.Error != nil {
		return fmt.Errorf("update rating: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete a rating and its likes
func (r *ratingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rating_id = ?", id).Delete(&models.RatingLike{}).Error; err != nil {
			return fmt.Errorf("delete rating likes: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&models.Rating{})
		if res.Error != nil {
			return fmt.Errorf("delete rating: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *ratingRepository) Confirm(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.Rating{}).Where("id = ?", id).Update("is_confirmed", true)
	if res.Error != nil {
		return fmt.Errorf("confirm rating: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ratingViewSQL selects rating views; the first placeholder is the viewer for
// liked_by_current_user, callers append the WHERE clause.
const ratingViewSQL = `SELECT r.id, r.media_id, m.title AS media_title, r.user_id, u.username,
	r.stars, r.comment, r.is_confirmed AS confirmed, r.created_at,
	(SELECT COUNT(*) FROM rating_likes lc WHERE lc.rating_id = r.id) AS like_count,
	EXISTS (SELECT 1 FROM rating_likes lv WHERE lv.rating_id = r.id AND lv.user_id = ?) AS liked_by_current_user
FROM ratings r
JOIN users u ON u.id = r.user_id
JOIN media_entries m ON m.id = r.media_id
`

// visible to the viewer: confirmed, or written by the viewer
const ratingVisibleSQL = `(r.is_confirmed = ? OR r.user_id = ?)`

const ratingOrderSQL = ` ORDER BY r.created_at DESC, r.id DESC`

func (r *ratingRepository) ListForMedia(ctx context.Context, mediaID, viewer uuid.UUID) ([]models.RatingView, error) {
	views := make([]models.RatingView, 0)
	err := r.db.WithContext(ctx).Raw(
		ratingViewSQL+"WHERE r.media_id = ? AND "+ratingVisibleSQL+ratingOrderSQL,
		viewer, mediaID, true, viewer,
	).Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("list media ratings: %w", err)
	}
	return views, nil
}

func (r *ratingRepository) ListByUser(ctx context.Context, authorID, viewer uuid.UUID) ([]models.RatingView, error) {
	views := make([]models.RatingView, 0)
	err := r.db.WithContext(ctx).Raw(
		ratingViewSQL+"WHERE r.user_id = ? AND "+ratingVisibleSQL+ratingOrderSQL,
		viewer, authorID, true, viewer,
	).Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("list user ratings: %w", err)
	}
	return views, nil
}

func (r *ratingRepository) HighlyRatedMedia(ctx context.Context, userID uuid.UUID, minStars int) ([]models.MediaEntry, error) {
	var list []models.MediaEntry
	err := r.db.WithContext(ctx).
		Table("media_entries AS m").
		Select("m.*").
		Joins("JOIN ratings r ON r.media_id = m.id").
		Where("r.user_id = ? AND r.stars >= ?", userID, minStars).
		Scan(&list).Error
	if err != nil {
		return nil, fmt.Errorf("highly rated media: %w", err)
	}
	return list, nil
}

func (r *ratingRepository) AddLike(ctx context.Context, ratingID, userID uuid.UUID) (bool, error) {
	like := &models.RatingLike{RatingID: ratingID, UserID: userID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if res.Error != nil {
		return false, fmt.Errorf("add like: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ratingRepository) RemoveLike(ctx context.Context, ratingID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("rating_id = ? AND user_id = ?", ratingID, userID).
		Delete(&models.RatingLike{})
	if res.Error != nil {
		return false, fmt.Errorf("remove like: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
