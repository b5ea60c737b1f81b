package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"mrp/internal/microservices/http-api/models"
	"mrp/internal/microservices/http-api/repository"
)

const (
	UserNotFound        = "User not found"
	recommendationLimit = 10
)

// UserService serves the per-user read views.
type UserService interface {
	Profile(ctx context.Context, username string) (*models.UserProfile, error)
	Favorites(ctx context.Context, username string) ([]models.MediaSummary, error)
	Ratings(ctx context.Context, username string, viewer uuid.UUID) ([]models.RatingView, error)
	Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error)
	Recommendations(ctx context.Context, caller uuid.UUID) ([]models.MediaSummary, error)
}

type userService struct {
	users           repository.UserRepository
	media           repository.MediaRepository
	ratings         repository.RatingRepository
	favorites       repository.FavoriteRepository
	leaderboardSize int
}

func NewUserService(
	users repository.UserRepository,
	media repository.MediaRepository,
	ratings repository.RatingRepository,
	favorites repository.FavoriteRepository,
	leaderboardSize int,
) UserService {
	return &userService{
		users:           users,
		media:           media,
		ratings:         ratings,
		favorites:       favorites,
		leaderboardSize: leaderboardSize,
	}
}

func (s *userService) lookup(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFoundOr(err, UserNotFound, "find user")
	}
	return user, nil
}

func (s *userService) Profile(ctx context.Context, username string) (*models.UserProfile, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	profile, err := s.users.Profile(ctx, user)
	if err != nil {
		return nil, notFoundOr(err, UserNotFound, "user profile")
	}
	return profile, nil
}

func (s *userService) Favorites(ctx context.Context, username string) ([]models.MediaSummary, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	list, err := s.favorites.List(ctx, user.ID)
	if err != nil {
		return nil, notFoundOr(err, UserNotFound, "list favorites")
	}
	return list, nil
}

func (s *userService) Ratings(ctx context.Context, username string, viewer uuid.UUID) ([]models.RatingView, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	views, err := s.ratings.ListByUser(ctx, user.ID, viewer)
	if err != nil {
		return nil, notFoundOr(err, UserNotFound, "list user ratings")
	}
	return views, nil
}

func (s *userService) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	entries, err := s.users.Leaderboard(ctx, s.leaderboardSize)
	if err != nil {
		return nil, notFoundOr(err, UserNotFound, "leaderboard")
	}
	return entries, nil
}

// Recommendations scores unrated media by overlap with what the caller rated
// highly: one point per shared genre tag plus one for a matching type. With
// no high ratings to learn from it returns the best-rated unrated media.
func (s *userService) Recommendations(ctx context.Context, caller uuid.UUID) ([]models.MediaSummary, error) {
	liked, err := s.ratings.HighlyRatedMedia(ctx, caller, recommendMinStar)
	if err != nil {
		return nil, notFoundOr(err, MediaNotFound, "highly rated media")
	}
	candidates, err := s.media.ListUnratedBy(ctx, caller)
	if err != nil {
		return nil, notFoundOr(err, MediaNotFound, "unrated media")
	}

	if len(liked) == 0 {
		return limit(candidates, recommendationLimit), nil
	}

	genres := make(map[string]struct{})
	types := make(map[models.MediaType]struct{})
	for _, m := range liked {
		for _, g := range genreTags(m.Genres) {
			genres[g] = struct{}{}
		}
		types[m.MediaType] = struct{}{}
	}

	type scored struct {
		media models.MediaSummary
		score int
	}
	var picks []scored
	for _, c := range candidates {
		score := 0
		for _, g := range genreTags(c.Genres) {
			if _, ok := genres[g]; ok {
				score++
			}
		}
		if _, ok := types[c.MediaType]; ok {
			score++
		}
		if score > 0 {
			picks = append(picks, scored{media: c, score: score})
		}
	}

	sort.SliceStable(picks, func(i, j int) bool {
		a, b := picks[i], picks[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.media.AverageRating != b.media.AverageRating {
			return a.media.AverageRating > b.media.AverageRating
		}
		return a.media.Title < b.media.Title
	})

	out := make([]models.MediaSummary, 0, len(picks))
	for _, p := range picks {
		out = append(out, p.media)
	}
	return limit(out, recommendationLimit), nil
}

// genreTags splits the comma-joined genre list into trimmed lower-case tags.
func genreTags(joined string) []string {
	var tags []string
	for _, g := range strings.Split(joined, ",") {
		if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
			tags = append(tags, g)
		}
	}
	return tags
}

func limit[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
