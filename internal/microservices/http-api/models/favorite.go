package models

import (
	"time"

	"github.com/google/uuid"
)

type Favorite struct {
	UserID    uuid.UUID `gorm:"primaryKey;type:uuid" json:"user_id"`
	MediaID   uuid.UUID `gorm:"primaryKey;type:uuid;index" json:"media_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// UserProfile is the public statistics block for one user.
type UserProfile struct {
	ID                uuid.UUID `json:"id"`
	Username          string    `json:"username"`
	CreatedAt         time.Time `json:"created_at"`
	TotalRatings      int64     `json:"total_ratings"`
	AverageStarsGiven float64   `json:"average_stars_given"`
	FavoritesCount    int64     `json:"favorites_count"`
	MediaCreated      int64     `json:"media_created"`
}

type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	RatingCount int64     `json:"rating_count"`
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&User{},
		&AuthToken{},
		&MediaEntry{},
		&Rating{},
		&RatingLike{},
		&Favorite{},
	}
}
