package repository

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"mrp/internal/apperr"
	"mrp/internal/microservices/http-api/models"
	"mrp/internal/testutil"
)

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedMedia(t *testing.T, db *gorm.DB, creator *models.User, title string, typ models.MediaType, year *int, genres string) *models.MediaEntry {
	t.Helper()
	m := &models.MediaEntry{
		Title:       title,
		MediaType:   typ,
		ReleaseYear: year,
		Genres:      genres,
		CreatorID:   creator.ID,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func seedRating(t *testing.T, db *gorm.DB, author *models.User, media *models.MediaEntry, stars int, confirmed bool) *models.Rating {
	t.Helper()
	r := &models.Rating{MediaID: media.ID, UserID: author.ID, Stars: stars, Comment: "c", Confirmed: confirmed}
	require.NoError(t, db.Create(r).Error)
	return r
}

func yearPtr(y int) *int { return &y }

func titles(rows []models.MediaSummary) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Title)
	}
	return out
}

func TestUserRepository_CreateRejectsDuplicateUsername(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.User{Username: "alice", PasswordHash: "h"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, &models.User{Username: "alice", PasswordHash: "h2"})
	require.NoError(t, err)
	assert.False(t, created)

	u, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h", u.PasswordHash)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_ProfileAndLeaderboard(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	m1 := seedMedia(t, db, alice, "Alpha", models.MediaTypeMovie, nil, "")
	m2 := seedMedia(t, db, alice, "Beta", models.MediaTypeGame, nil, "")
	seedRating(t, db, bob, m1, 4, false)
	seedRating(t, db, bob, m2, 2, true)
	seedRating(t, db, carol, m1, 5, true)
	require.NoError(t, db.Create(&models.Favorite{UserID: bob.ID, MediaID: m1.ID}).Error)

	p, err := repo.Profile(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.TotalRatings)
	assert.InDelta(t, 3.0, p.AverageStarsGiven, 0.001)
	assert.Equal(t, int64(1), p.FavoritesCount)
	assert.Equal(t, int64(0), p.MediaCreated)

	p, err = repo.Profile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.TotalRatings)
	assert.Equal(t, 0.0, p.AverageStarsGiven)
	assert.Equal(t, int64(2), p.MediaCreated)

	board, err := repo.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "bob", board[0].Username)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, int64(2), board[0].RatingCount)
	assert.Equal(t, "carol", board[1].Username)
	assert.Equal(t, 2, board[1].Rank)

	board, err = repo.Leaderboard(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, board, 1)
}

func TestAuthTokenRepository_UpsertKeepsOneTokenPerUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAuthTokenRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "alice")

	require.NoError(t, repo.Upsert(ctx, u.ID, "first"))
	require.NoError(t, repo.Upsert(ctx, u.ID, "second"))

	_, err := repo.FindByToken(ctx, "first")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	row, err := repo.FindByToken(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, u.ID, row.UserID)

	var count int64
	require.NoError(t, db.Model(&models.AuthToken{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestParseMediaFilter(t *testing.T) {
	f, err := ParseMediaFilter(url.Values{
		"search": {" matrix "},
		"type":   {"movie"},
		"year":   {"1999"},
		"sort":   {"RATING"},
		"genre":  {""},
	})
	require.NoError(t, err)
	assert.Equal(t, "matrix", f.Search)
	assert.Equal(t, "movie", f.MediaType)
	assert.Empty(t, f.Genre)
	require.NotNil(t, f.ReleaseYear)
	assert.Equal(t, 1999, *f.ReleaseYear)
	assert.Equal(t, SortRating, f.Sort)

	f, err = ParseMediaFilter(url.Values{"sort": {"bogus"}})
	require.NoError(t, err)
	assert.Nil(t, f.ReleaseYear)
	assert.Equal(t, SortTitle, f.Sort)

	for _, raw := range []string{"nineteen", "", "  ", "19.99"} {
		_, err = ParseMediaFilter(url.Values{"year": {raw}})
		require.Error(t, err, "year=%q", raw)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		assert.Equal(t, "Invalid year parameter", err.Error())
	}
}

func TestMediaFilter_PlanBindsEveryValue(t *testing.T) {
	hostile := "x' OR '1'='1"
	f := MediaFilter{
		Search:         hostile,
		MediaType:      "movie",
		Genre:          "sci-fi",
		ReleaseYear:    yearPtr(1999),
		AgeRestriction: "16+",
		Sort:           SortYear,
	}
	plan := f.Plan()

	require.Len(t, plan.Conditions, 5)
	for _, c := range plan.Conditions {
		assert.NotContains(t, c.Expr, hostile)
		assert.Contains(t, c.Expr, "?")
	}
	assert.Equal(t, "%"+hostile+"%", plan.Conditions[0].Arg)
	assert.Equal(t, "movie", plan.Conditions[1].Arg)
	assert.Equal(t, "%sci-fi%", plan.Conditions[2].Arg)
	assert.Equal(t, 1999, plan.Conditions[3].Arg)
	assert.Equal(t, "16+", plan.Conditions[4].Arg)
	assert.Equal(t, "m.release_year IS NULL, m.release_year DESC, m.title ASC", plan.Order)

	wild := MediaFilter{Search: `50%_off\`, Genre: "sci_fi"}.Plan()
	require.Len(t, wild.Conditions, 2)
	assert.Equal(t, `%50\%\_off\\%`, wild.Conditions[0].Arg)
	assert.Equal(t, `%sci\_fi%`, wild.Conditions[1].Arg)
	assert.Contains(t, wild.Conditions[0].Expr, `ESCAPE '\'`)

	empty := MediaFilter{}.Plan()
	assert.Empty(t, empty.Conditions)
	assert.Equal(t, "m.title ASC", empty.Order)
	assert.Equal(t, empty, MediaFilter{Sort: "bogus"}.Plan())
	assert.Equal(t, f.Plan(), plan)
}

func TestMediaRepository_ListFiltersAndSorts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMediaRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	matrix := seedMedia(t, db, alice, "The Matrix", models.MediaTypeMovie, yearPtr(1999), "action,sci-fi")
	seedMedia(t, db, alice, "Fight Club", models.MediaTypeMovie, yearPtr(1999), "drama")
	seedMedia(t, db, alice, "Alien", models.MediaTypeMovie, yearPtr(1979), "horror,sci-fi")
	seedMedia(t, db, bob, "Zelda", models.MediaTypeGame, yearPtr(1999), "adventure")
	undated := seedMedia(t, db, bob, "Babylon 5", models.MediaTypeSeries, nil, "sci-fi")
	seedRating(t, db, bob, matrix, 5, false)
	seedRating(t, db, bob, undated, 3, true)

	rows, err := repo.List(ctx, MediaFilter{MediaType: "movie", ReleaseYear: yearPtr(1999)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fight Club", "The Matrix"}, titles(rows))

	rows, err = repo.List(ctx, MediaFilter{Genre: "SCI"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alien", "Babylon 5", "The Matrix"}, titles(rows))

	rows, err = repo.List(ctx, MediaFilter{Search: "the"})
	require.NoError(t, err)
	assert.Equal(t, []string{"The Matrix"}, titles(rows))

	def, err := repo.List(ctx, MediaFilter{})
	require.NoError(t, err)
	bogus, err := repo.List(ctx, MediaFilter{Sort: "bogus"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alien", "Babylon 5", "Fight Club", "The Matrix", "Zelda"}, titles(def))
	assert.Equal(t, titles(def), titles(bogus))

	rows, err = repo.List(ctx, MediaFilter{Sort: SortYear})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fight Club", "The Matrix", "Zelda", "Alien", "Babylon 5"}, titles(rows))

	rows, err = repo.List(ctx, MediaFilter{Sort: SortRating})
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", rows[0].Title)
	assert.Equal(t, "Babylon 5", rows[1].Title)
	assert.InDelta(t, 5.0, rows[0].AverageRating, 0.001)
	assert.Equal(t, int64(1), rows[0].TotalRatings)
	assert.Equal(t, "alice", rows[0].CreatorUsername)

	rows, err = repo.List(ctx, MediaFilter{MediaType: "podcast"})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestMediaRepository_SearchMatchesWildcardsLiterally(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMediaRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	seedMedia(t, db, alice, "C series", models.MediaTypeSeries, nil, "drama")
	seedMedia(t, db, alice, "b War", models.MediaTypeMovie, nil, "war")
	seedMedia(t, db, alice, "100% Wolf", models.MediaTypeMovie, nil, "family")
	seedMedia(t, db, alice, "snake_case", models.MediaTypeGame, nil, "puzzle")
	seedMedia(t, db, alice, `back\slash`, models.MediaTypeGame, nil, "sci_fi")

	cases := []struct {
		filter MediaFilter
		want   []string
	}{
		{MediaFilter{Search: "%"}, []string{"100% Wolf"}},
		{MediaFilter{Search: "_"}, []string{"snake_case"}},
		{MediaFilter{Search: `\`}, []string{`back\slash`}},
		{MediaFilter{Search: "0%"}, []string{"100% Wolf"}},
		{MediaFilter{Search: "E_C"}, []string{"snake_case"}},
		{MediaFilter{Genre: "_"}, []string{`back\slash`}},
		{MediaFilter{Genre: "%"}, []string{}},
	}
	for _, tc := range cases {
		rows, err := repo.List(ctx, tc.filter)
		require.NoError(t, err)
		assert.Equal(t, tc.want, titles(rows), "%+v", tc.filter)
	}
}

func TestMediaRepository_SummaryAggregatesEveryRating(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMediaRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	m := seedMedia(t, db, alice, "Dune", models.MediaTypeMovie, nil, "")

	s, err := repo.GetSummary(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.AverageRating)
	assert.Equal(t, int64(0), s.TotalRatings)

	seedRating(t, db, alice, m, 5, true)
	seedRating(t, db, bob, m, 2, false)

	s, err = repo.GetSummary(ctx, m.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, s.AverageRating, 0.001)
	assert.Equal(t, int64(2), s.TotalRatings)
	assert.Equal(t, "alice", s.CreatorUsername)

	_, err = repo.GetSummary(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMediaRepository_UpdateWritesZeroValues(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMediaRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	m := seedMedia(t, db, alice, "Dune", models.MediaTypeMovie, yearPtr(2021), "sci-fi")

	m.Title = "Dune: Part One"
	m.ReleaseYear = nil
	m.Genres = ""
	require.NoError(t, repo.Update(ctx, m))

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune: Part One", got.Title)
	assert.Nil(t, got.ReleaseYear)
	assert.Empty(t, got.Genres)

	err = repo.Update(ctx, &models.MediaEntry{ID: uuid.New(), Title: "x", MediaType: models.MediaTypeGame})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMediaRepository_DeleteRemovesDependents(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMediaRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	m := seedMedia(t, db, alice, "Dune", models.MediaTypeMovie, nil, "")
	other := seedMedia(t, db, alice, "Arrival", models.MediaTypeMovie, nil, "")
	r := seedRating(t, db, bob, m, 4, true)
	keep := seedRating(t, db, bob, other, 3, true)
	require.NoError(t, db.Create(&models.RatingLike{RatingID: r.ID, UserID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.RatingLike{RatingID: keep.ID, UserID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.Favorite{UserID: bob.ID, MediaID: m.ID}).Error)

	require.NoError(t, repo.Delete(ctx, m.ID))

	count := func(model any, where string, args ...any) int64 {
		var n int64
		require.NoError(t, db.Model(model).Where(where, args...).Count(&n).Error)
		return n
	}
	assert.Equal(t, int64(0), count(&models.MediaEntry{}, "id = ?", m.ID))
	assert.Equal(t, int64(0), count(&models.Rating{}, "media_id = ?", m.ID))
	assert.Equal(t, int64(0), count(&models.RatingLike{}, "rating_id = ?", r.ID))
	assert.Equal(t, int64(0), count(&models.Favorite{}, "media_id = ?", m.ID))
	assert.Equal(t, int64(1), count(&models.RatingLike{}, "rating_id = ?", keep.ID))

	assert.ErrorIs(t, repo.Delete(ctx, m.ID), gorm.ErrRecordNotFound)
}

func TestMediaRepository_ListUnratedBy(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMediaRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	seedMedia(t, db, bob, "Own", models.MediaTypeMovie, nil, "")
	rated := seedMedia(t, db, alice, "Rated", models.MediaTypeMovie, nil, "")
	seedMedia(t, db, alice, "Fresh", models.MediaTypeMovie, nil, "")
	seedRating(t, db, bob, rated, 4, true)

	rows, err := repo.ListUnratedBy(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fresh"}, titles(rows))
}

func TestRatingRepository_VisibilityAndLikes(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRatingRepository(db)
	ctx := context.Background()

	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")
	c := seedUser(t, db, "c")
	m := seedMedia(t, db, a, "Dune", models.MediaTypeMovie, nil, "")
	r1 := seedRating(t, db, a, m, 5, true)
	time.Sleep(2 * time.Millisecond)
	r2 := seedRating(t, db, b, m, 1, false)

	created, err := repo.AddLike(ctx, r1.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = repo.AddLike(ctx, r1.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, created)

	byB, err := repo.ListForMedia(ctx, m.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, byB, 2)
	assert.Equal(t, r2.ID, byB[0].ID, "newest first")
	assert.Equal(t, r1.ID, byB[1].ID)
	assert.Equal(t, "a", byB[1].Username)
	assert.Equal(t, int64(1), byB[1].LikeCount)
	assert.False(t, byB[1].LikedByCurrentUser)

	byC, err := repo.ListForMedia(ctx, m.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, byC, 1)
	assert.Equal(t, r1.ID, byC[0].ID)
	assert.True(t, byC[0].LikedByCurrentUser)
	assert.True(t, byC[0].Confirmed)

	ofB, err := repo.ListByUser(ctx, b.ID, c.ID)
	require.NoError(t, err)
	assert.Empty(t, ofB)
	ofB, err = repo.ListByUser(ctx, b.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, ofB, 1)
	assert.Equal(t, "Dune", ofB[0].MediaTitle)

	removed, err := repo.RemoveLike(ctx, r1.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.RemoveLike(ctx, r1.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRatingRepository_CreateUpdateConfirmDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRatingRepository(db)
	ctx := context.Background()

	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")
	m := seedMedia(t, db, a, "Dune", models.MediaTypeMovie, nil, "sci-fi")

	r := &models.Rating{MediaID: m.ID, UserID: b.ID, Stars: 4, Comment: "good"}
	created, err := repo.Create(ctx, r)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, uuid.Nil, r.ID)

	created, err = repo.Create(ctx, &models.Rating{MediaID: m.ID, UserID: b.ID, Stars: 2})
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, repo.Confirm(ctx, r.ID))
	got, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.Confirmed)

	got.Stars = 5
	got.Comment = "great"
	got.Confirmed = false
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stars)
	assert.False(t, got.Confirmed)

	high, err := repo.HighlyRatedMedia(ctx, b.ID, 4)
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, "sci-fi", high[0].Genres)

	_, err = repo.AddLike(ctx, r.ID, a.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, r.ID))
	var likes int64
	require.NoError(t, db.Model(&models.RatingLike{}).Where("rating_id = ?", r.ID).Count(&likes).Error)
	assert.Equal(t, int64(0), likes)

	assert.ErrorIs(t, repo.Delete(ctx, r.ID), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Confirm(ctx, r.ID), gorm.ErrRecordNotFound)
}

func TestFavoriteRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFavoriteRepository(db)
	ctx := context.Background()

	a := seedUser(t, db, "a")
	m1 := seedMedia(t, db, a, "First", models.MediaTypeMovie, nil, "")
	m2 := seedMedia(t, db, a, "Second", models.MediaTypeGame, nil, "")
	seedRating(t, db, a, m2, 4, true)

	created, err := repo.Add(ctx, a.ID, m1.ID)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = repo.Add(ctx, a.ID, m1.ID)
	require.NoError(t, err)
	assert.False(t, created)

	time.Sleep(2 * time.Millisecond)
	_, err = repo.Add(ctx, a.ID, m2.ID)
	require.NoError(t, err)

	list, err := repo.List(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Second", "First"}, titles(list))
	assert.InDelta(t, 4.0, list[0].AverageRating, 0.001)

	removed, err := repo.Remove(ctx, a.ID, m1.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Remove(ctx, a.ID, m1.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}
