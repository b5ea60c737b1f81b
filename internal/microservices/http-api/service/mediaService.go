package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mrp/internal/apperr"
	"mrp/internal/microservices/http-api/dto"
	"mrp/internal/microservices/http-api/models"
	"mrp/internal/microservices/http-api/repository"
)

const (
	MediaNotFound    = "Media not found"
	TitleRequired    = "Title is required"
	InvalidMediaType = "Media type must be 'movie', 'series', or 'game'"
	AlreadyFavorite  = "Already in favorites"
	NotFavorite      = "Not in favorites"
)

type MediaService interface {
	List(ctx context.Context, filter repository.MediaFilter) ([]models.MediaSummary, error)
	// Get returns global aggregates plus the ratings visible to viewer.
	Get(ctx context.Context, id, viewer uuid.UUID) (*models.MediaDetail, error)
	Create(ctx context.Context, caller uuid.UUID, req dto.MediaRequest) (*models.MediaEntry, error)
	// Owned loads an entry for mutation: NotFound first, then Forbidden.
	Owned(ctx context.Context, id, caller uuid.UUID, forbidden string) (*models.MediaEntry, error)
	Update(ctx context.Context, id, caller uuid.UUID, req dto.MediaRequest) (*models.MediaEntry, error)
	Delete(ctx context.Context, id, caller uuid.UUID) error
	AddFavorite(ctx context.Context, caller, mediaID uuid.UUID) error
	RemoveFavorite(ctx context.Context, caller, mediaID uuid.UUID) error
}

type mediaService struct {
	media     repository.MediaRepository
	ratings   repository.RatingRepository
	favorites repository.FavoriteRepository
	log       *slog.Logger
}

func NewMediaService(
	media repository.MediaRepository,
	ratings repository.RatingRepository,
	favorites repository.FavoriteRepository,
	log *slog.Logger,
) MediaService {
	return &mediaService{media: media, ratings: ratings, favorites: favorites, log: log}
}

// notFoundOr maps a missing row to msg and wraps anything else as internal.
func notFoundOr(err error, msg, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Internal(op, err)
}

func validateMedia(req dto.MediaRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return apperr.Validation(TitleRequired)
	}
	if !models.MediaType(req.MediaType).Valid() {
		return apperr.Validation(InvalidMediaType)
	}
	return nil
}

func (s *mediaService) List(ctx context.Context, filter repository.MediaFilter) ([]models.MediaSummary, error) {
	rows, err := s.media.List(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("list media", err)
	}
	return rows, nil
}

func (s *mediaService) Get(ctx context.Context, id, viewer uuid.UUID) (*models.MediaDetail, error) {
	summary, err := s.media.GetSummary(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, MediaNotFound, "get media")
	}

	// the aggregate above counts every rating; this list only what viewer may read
	ratings, err := s.ratings.ListForMedia(ctx, id, viewer)
	if err != nil {
		return nil, apperr.Internal("list ratings", err)
	}
	return &models.MediaDetail{MediaSummary: *summary, Ratings: ratings}, nil
}

func (s *mediaService) Create(ctx context.Context, caller uuid.UUID, req dto.MediaRequest) (*models.MediaEntry, error) {
	if err := validateMedia(req); err != nil {
		return nil, err
	}

	entry := &models.MediaEntry{CreatorID: caller}
	applyMediaRequest(entry, req)
	if err := s.media.Create(ctx, entry); err != nil {
		return nil, apperr.Internal("create media", err)
	}

	s.log.Info("media created", "media_id", entry.ID, "creator_id", caller)
	return entry, nil
}

func (s *mediaService) Owned(ctx context.Context, id, caller uuid.UUID, forbidden string) (*models.MediaEntry, error) {
	entry, err := s.media.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, MediaNotFound, "get media")
	}
	if err := RequireOwner(entry.CreatorID, caller, forbidden); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *mediaService) Update(ctx context.Context, id, caller uuid.UUID, req dto.MediaRequest) (*models.MediaEntry, error) {
	entry, err := s.Owned(ctx, id, caller, MediaEditForbidden)
	if err != nil {
		return nil, err
	}
	if err := validateMedia(req); err != nil {
		return nil, err
	}

	applyMediaRequest(entry, req)
	if err := s.media.Update(ctx, entry); err != nil {
		return nil, notFoundOr(err, MediaNotFound, "update media")
	}
	return entry, nil
}

func (s *mediaService) Delete(ctx context.Context, id, caller uuid.UUID) error {
	if _, err := s.Owned(ctx, id, caller, MediaDeleteForbidden); err != nil {
		return err
	}
	if err := s.media.Delete(ctx, id); err != nil {
		return notFoundOr(err, MediaNotFound, "delete media")
	}

	s.log.Info("media deleted", "media_id", id, "creator_id", caller)
	return nil
}

func (s *mediaService) AddFavorite(ctx context.Context, caller, mediaID uuid.UUID) error {
	if _, err := s.media.GetByID(ctx, mediaID); err != nil {
		return notFoundOr(err, MediaNotFound, "get media")
	}

	created, err := s.favorites.Add(ctx, caller, mediaID)
	if err != nil {
		return apperr.Internal("add favorite", err)
	}
	if !created {
		return apperr.Conflict(AlreadyFavorite)
	}
	return nil
}

func (s *mediaService) RemoveFavorite(ctx context.Context, caller, mediaID uuid.UUID) error {
	removed, err := s.favorites.Remove(ctx, caller, mediaID)
	if err != nil {
		return apperr.Internal("remove favorite", err)
	}
	if !removed {
		return apperr.NotFound(NotFavorite)
	}
	return nil
}

func applyMediaRequest(entry *models.MediaEntry, req dto.MediaRequest) {
	entry.Title = req.Title
	entry.Description = req.Description
	entry.MediaType = models.MediaType(req.MediaType)
	entry.ReleaseYear = req.ReleaseYear
	entry.Genres = req.Genres
	entry.AgeRestriction = req.AgeRestriction
}
