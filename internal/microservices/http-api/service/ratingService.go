package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"mrp/internal/apperr"
	"mrp/internal/microservices/http-api/dto"
	"mrp/internal/microservices/http-api/models"
	"mrp/internal/microservices/http-api/repository"
)

const (
	RatingNotFound   = "Rating not found"
	StarsOutOfRange  = "Stars must be between 1 and 5"
	AlreadyRated     = "You have already rated this media"
	CannotLikeOwn    = "You cannot like your own rating"
	AlreadyLiked     = "Already liked"
	LikeNotFound     = "Like not found"
	minStars         = 1
	maxStars         = 5
	recommendMinStar = 4
)

type RatingService interface {
	// RequireMedia reports NotFound when the media to be rated does not exist.
	RequireMedia(ctx context.Context, mediaID uuid.UUID) error
	Create(ctx context.Context, caller, mediaID uuid.UUID, req dto.RatingRequest) (*models.Rating, error)
	// Owned loads a rating for mutation by its author: NotFound first, then Forbidden.
	Owned(ctx context.Context, id, caller uuid.UUID) (*models.Rating, error)
	Update(ctx context.Context, id, caller uuid.UUID, req dto.RatingRequest) (*models.Rating, error)
	Delete(ctx context.Context, id, caller uuid.UUID) error
	Confirm(ctx context.Context, id, caller uuid.UUID) error
	Like(ctx context.Context, id, caller uuid.UUID) error
	Unlike(ctx context.Context, id, caller uuid.UUID) error
}

type ratingService struct {
	ratings repository.RatingRepository
	media   repository.MediaRepository
	log     *slog.Logger
}

func NewRatingService(ratings repository.RatingRepository, media repository.MediaRepository, log *slog.Logger) RatingService {
	return &ratingService{ratings: ratings, media: media, log: log}
}

func validateStars(stars int) error {
	if stars < minStars || stars > maxStars {
		return apperr.Validation(StarsOutOfRange)
	}
	return nil
}

func (s *ratingService) RequireMedia(ctx context.Context, mediaID uuid.UUID) error {
	if _, err := s.media.GetByID(ctx, mediaID); err != nil {
		return notFoundOr(err, MediaNotFound, "get media")
	}
	return nil
}

// Create a rating; new ratings start unconfirmed
func (s *ratingService) Create(ctx context.Context, caller, mediaID uuid.UUID, req dto.RatingRequest) (*models.Rating, error) {
	if err := s.RequireMedia(ctx, mediaID); err != nil {
		return nil, err
	}
	if err := validateStars(req.Stars); err != nil {
		return nil, err
	}

	rating := &models.Rating{
		MediaID: mediaID,
		UserID:  caller,
		Stars:   req.Stars,
		Comment: req.Comment,
	}
	created, err := s.ratings.Create(ctx, rating)
	if err != nil {
		if apperr.IsUniqueViolation(err) {
			return nil, apperr.Conflict(AlreadyRated)
		}
		return nil, apperr.Internal("create rating", err)
	}
	if !created {
		return nil, apperr.Conflict(AlreadyRated)
	}
	return rating, nil
}

func (s *ratingService) Owned(ctx context.Context, id, caller uuid.UUID) (*models.Rating, error) {
	rating, err := s.ratings.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, RatingNotFound, "get rating")
	}
	if err := RequireOwner(rating.UserID, caller, RatingForbidden); err != nil {
		return nil, err
	}
	return rating, nil
}

// Update an existing rating; a changed comment must be confirmed again
func (s *ratingService) Update(ctx context.Context, id, caller uuid.UUID, req dto.RatingRequest) (*models.Rating, error) {
	rating, err := s.Owned(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	if err := validateStars(req.Stars); err != nil {
		return nil, err
	}

	if req.Comment != rating.Comment {
		rating.Confirmed = false
	}
	rating.Stars = req.Stars
	rating.Comment = req.Comment
	if err := s.ratings.Update(ctx, rating); err != nil {
		return nil, notFoundOr(err, RatingNotFound, "update rating")
	}
	return rating, nil
}

func (s *ratingService) Delete(ctx context.Context, id, caller uuid.UUID) error {
	if _, err := s.Owned(ctx, id, caller); err != nil {
		return err
	}
	if err := s.ratings.Delete(ctx, id); err != nil {
		return notFoundOr(err, RatingNotFound, "delete rating")
	}
	return nil
}

func (s *ratingService) Confirm(ctx context.Context, id, caller uuid.UUID) error {
	if _, err := s.Owned(ctx, id, caller); err != nil {
		return err
	}
	if err := s.ratings.Confirm(ctx, id); err != nil {
		return notFoundOr(err, RatingNotFound, "confirm rating")
	}
	return nil
}

func (s *ratingService) Like(ctx context.Context, id, caller uuid.UUID) error {
	rating, err := s.ratings.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, RatingNotFound, "get rating")
	}
	// a rating the caller cannot see does not exist for them
	if !rating.VisibleTo(caller) {
		return apperr.NotFound(RatingNotFound)
	}
	if rating.UserID == caller {
		return apperr.Validation(CannotLikeOwn)
	}

	created, err := s.ratings.AddLike(ctx, id, caller)
	if err != nil {
		return apperr.Internal("add like", err)
	}
	if !created {
		return apperr.Conflict(AlreadyLiked)
	}
	return nil
}

func (s *ratingService) Unlike(ctx context.Context, id, caller uuid.UUID) error {
	removed, err := s.ratings.RemoveLike(ctx, id, caller)
	if err != nil {
		return apperr.Internal("remove like", err)
	}
	if !removed {
		return apperr.NotFound(LikeNotFound)
	}
	return nil
}
