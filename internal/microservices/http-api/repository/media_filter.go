package repository

import (
	"net/url"
	"strconv"
	"strings"

	"mrp/internal/apperr"
)

type SortKey string

const (
	SortTitle  SortKey = "title"
	SortYear   SortKey = "year"
	SortRating SortKey = "rating"
)

// MediaFilter holds the optional listing filters. Empty fields match everything.
type MediaFilter struct {
	Search         string
	MediaType      string
	Genre          string
	ReleaseYear    *int
	AgeRestriction string
	Sort           SortKey
}

// Condition is one WHERE fragment with exactly one bound argument.
type Condition struct {
	Expr string
	Arg  any
}

type ListPlan struct {
	Conditions []Condition
	Order      string
}

// likeEscaper makes LIKE metacharacters in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern is a LIKE pattern for a literal substring; pair it with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// order clauses are fixed strings; the sort parameter only selects among them
var sortOrders = map[SortKey]string{
	SortTitle:  "m.title ASC",
	SortYear:   "m.release_year IS NULL, m.release_year DESC, m.title ASC",
	SortRating: "average_rating DESC, m.title ASC",
}

// ParseMediaFilter reads search, type, genre, year, age and sort from a query string.
func ParseMediaFilter(q url.Values) (MediaFilter, error) {
	f := MediaFilter{
		Search:         strings.TrimSpace(q.Get("search")),
		MediaType:      strings.TrimSpace(q.Get("type")),
		Genre:          strings.TrimSpace(q.Get("genre")),
		AgeRestriction: strings.TrimSpace(q.Get("age")),
		Sort:           normalizeSort(q.Get("sort")),
	}

	// a year parameter that is present must be numeric, even when empty
	if q.Has("year") {
		year, err := strconv.Atoi(strings.TrimSpace(q.Get("year")))
		if err != nil {
			return MediaFilter{}, apperr.Validation("Invalid year parameter")
		}
		f.ReleaseYear = &year
	}
	return f, nil
}

func normalizeSort(raw string) SortKey {
	key := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := sortOrders[key]; ok {
		return key
	}
	return SortTitle
}

// Plan turns the filter into parameterized WHERE fragments and an ORDER BY.
// Filters combine with AND, in a fixed order.
func (f MediaFilter) Plan() ListPlan {
	var conds []Condition
	if f.Search != "" {
		conds = append(conds, Condition{Expr: `LOWER(m.title) LIKE LOWER(?) ESCAPE '\'`, Arg: containsPattern(f.Search)})
	}
	if f.MediaType != "" {
		conds = append(conds, Condition{Expr: "m.media_type = ?", Arg: f.MediaType})
	}
	if f.Genre != "" {
		// substring over the comma-joined list, so "action" also matches "action-comedy"
		conds = append(conds, Condition{Expr: `LOWER(m.genres) LIKE LOWER(?) ESCAPE '\'`, Arg: containsPattern(f.Genre)})
	}
	if f.ReleaseYear != nil {
		conds = append(conds, Condition{Expr: "m.release_year = ?", Arg: *f.ReleaseYear})
	}
	if f.AgeRestriction != "" {
		conds = append(conds, Condition{Expr: "m.age_restriction = ?", Arg: f.AgeRestriction})
	}

	order, ok := sortOrders[f.Sort]
	if !ok {
		order = sortOrders[SortTitle]
	}
	return ListPlan{Conditions: conds, Order: order}
}
