package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mrp/internal/microservices/http-api/models"
)

// AuthTokenRepository stores the single live session token of each user.
type AuthTokenRepository interface {
	// Upsert stores token as the user's only token, replacing any previous one.
	Upsert(ctx context.Context, userID uuid.UUID, token string) error
	FindByToken(ctx context.Context, token string) (*models.AuthToken, error)
}

type authTokenRepository struct {
	db *gorm.DB
}

func NewAuthTokenRepository(db *gorm.DB) AuthTokenRepository {
	return &authTokenRepository{db: db}
}

func (r *authTokenRepository) Upsert(ctx context.Context, userID uuid.UUID, token string) error {
	row := &models.AuthToken{
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}
	// INSERT ... ON CONFLICT (user_id) DO UPDATE: one statement, no window
	// in which two tokens are valid for the same user
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "created_at"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

func (r *authTokenRepository) FindByToken(ctx context.Context, token string) (*models.AuthToken, error) {
	var row models.AuthToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
