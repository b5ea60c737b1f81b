package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthToken is keyed by user, so storing a token replaces the previous one.
type AuthToken struct {
	UserID    uuid.UUID `gorm:"primaryKey;type:uuid" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}
