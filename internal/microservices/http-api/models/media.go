package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
	MediaTypeGame   MediaType = "game"
)

func (t MediaType) Valid() bool {
	switch t {
	case MediaTypeMovie, MediaTypeSeries, MediaTypeGame:
		return true
	}
	return false
}

type MediaEntry struct {
	ID             uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Title          string    `json:"title" gorm:"not null"`
	Description    string    `json:"description"`
	MediaType      MediaType `json:"media_type" gorm:"size:16;not null;index"`
	ReleaseYear    *int      `json:"release_year"`
	Genres         string    `json:"genres"` // comma-joined tags
	AgeRestriction string    `json:"age_restriction"`
	CreatorID      uuid.UUID `json:"creator_id" gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time `json:"created_at"`
}

func (m *MediaEntry) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		m.ID = id
	}
	return nil
}

func (MediaEntry) TableName() string {
	return "media_entries"
}

// MediaSummary is a media row with its derived rating fields.
type MediaSummary struct {
	MediaEntry
	CreatorUsername string  `json:"creator_username"`
	AverageRating   float64 `json:"average_rating"`
	TotalRatings    int64   `json:"total_ratings"`
}

// MediaDetail adds the ratings a particular viewer may read.
type MediaDetail struct {
	MediaSummary
	Ratings []RatingView `json:"ratings"`
}
