package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mrp/internal/microservices/http-api/models"
)

type MediaRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.MediaEntry, error)
	// GetSummary returns the entry with creator name and global rating aggregates.
	GetSummary(ctx context.Context, id uuid.UUID) (*models.MediaSummary, error)
	List(ctx context.Context, filter MediaFilter) ([]models.MediaSummary, error)
	Create(ctx context.Context, m *models.MediaEntry) error
	Update(ctx context.Context, m *models.MediaEntry) error
	// Delete removes the entry together with its ratings, their likes and favorites.
	Delete(ctx context.Context, id uuid.UUID) error
	// ListUnratedBy returns summaries of media the user neither rated nor created.
	ListUnratedBy(ctx context.Context, userID uuid.UUID) ([]models.MediaSummary, error)
}

type mediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

const mediaSummaryColumns = `m.id, m.title, m.description, m.media_type, m.release_year, m.genres,
	m.age_restriction, m.creator_id, m.created_at, u.username AS creator_username,
	COALESCE(AVG(r.stars), 0) AS average_rating, COUNT(DISTINCT r.id) AS total_ratings`

// summaryQuery is the shared aggregate shape: media joined with its creator and
// every rating, with no visibility filter on the aggregate.
func (r *mediaRepository) summaryQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("media_entries AS m").
		Select(mediaSummaryColumns).
		Joins("JOIN users u ON u.id = m.creator_id").
		Joins("LEFT JOIN ratings r ON r.media_id = m.id").
		Group("m.id, u.username")
}

func (r *mediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaEntry, error) {
	var m models.MediaEntry
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mediaRepository) GetSummary(ctx context.Context, id uuid.UUID) (*models.MediaSummary, error) {
	var rows []models.MediaSummary
	if err := r.summaryQuery(ctx).Where("m.id = ?", id).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("media summary: %w", err)
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *mediaRepository) List(ctx context.Context, filter MediaFilter) ([]models.MediaSummary, error) {
	plan := filter.Plan()
	q := r.summaryQuery(ctx)
	for _, c := range plan.Conditions {
		q = q.Where(c.Expr, c.Arg)
	}

	rows := make([]models.MediaSummary, 0)
	if err := q.Order(plan.Order).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	return rows, nil
}

func (r *mediaRepository) Create(ctx context.Context, m *models.MediaEntry) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create media: %w", err)
	}
	return nil
}

func (r *mediaRepository) Update(ctx context.Context, m *models.MediaEntry) error {
	// map form so zero values (empty description, nil year) are written too
	res := r.db.WithContext(ctx).Model(&models.MediaEntry{}).Where("id = ?", m.ID).Updates(map[string]any{
		"title":           m.Title,
		"description":     m.Description,
		"media_type":      m.MediaType,
		"release_year":    m.ReleaseYear,
		"genres":          m.Genres,
		"age_restriction": m.AgeRestriction,
	})
	if res.Error != nil {
		return fmt.Errorf("update media: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *mediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM rating_likes WHERE rating_id IN (SELECT id FROM ratings WHERE media_id = ?)", id,
		).Error; err != nil {
			return fmt.Errorf("delete rating likes: %w", err)
		}
		if err := tx.Where("media_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return fmt.Errorf("delete ratings: %w", err)
		}
		if err := tx.Where("media_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return fmt.Errorf("delete favorites: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&models.MediaEntry{})
		if res.Error != nil {
			return fmt.Errorf("delete media: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *mediaRepository) ListUnratedBy(ctx context.Context, userID uuid.UUID) ([]models.MediaSummary, error) {
	rows := make([]models.MediaSummary, 0)
	err := r.summaryQuery(ctx).
		Where("m.creator_id <> ?", userID).
		Where("NOT EXISTS (SELECT 1 FROM ratings own WHERE own.media_id = m.id AND own.user_id = ?)", userID).
		Order("average_rating DESC, m.title ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list unrated media: %w", err)
	}
	return rows, nil
}
