package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Rating struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	MediaID   uuid.UUID `json:"media_id" gorm:"type:uuid;not null;uniqueIndex:idx_rating_media_user"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_rating_media_user;index"`
	Stars     int       `json:"stars" gorm:"not null;check:stars >= 1 AND stars <= 5"`
	Comment   string    `json:"comment"`
	Confirmed bool      `json:"is_confirmed" gorm:"column:is_confirmed;not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Rating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		r.ID = id
	}
	return nil
}

func (Rating) TableName() string {
	return "ratings"
}

// VisibleTo: confirmed ratings are public, unconfirmed ones only reach their author.
func (r *Rating) VisibleTo(viewer uuid.UUID) bool {
	return r.Confirmed || r.UserID == viewer
}

// RatingView is a rating as one viewer sees it.
type RatingView struct {
	ID                 uuid.UUID `json:"id"`
	MediaID            uuid.UUID `json:"media_id"`
	MediaTitle         string    `json:"media_title,omitempty"`
	UserID             uuid.UUID `json:"user_id"`
	Username           string    `json:"username"`
	Stars              int       `json:"stars"`
	Comment            string    `json:"comment"`
	Confirmed          bool      `json:"is_confirmed"`
	CreatedAt          time.Time `json:"created_at"`
	LikeCount          int64     `json:"like_count"`
	LikedByCurrentUser bool      `json:"liked_by_current_user"`
}

type RatingLike struct {
	RatingID  uuid.UUID `json:"rating_id" gorm:"primaryKey;type:uuid"`
	UserID    uuid.UUID `json:"user_id" gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `json:"created_at"`
}

func (RatingLike) TableName() string {
	return "rating_likes"
}
