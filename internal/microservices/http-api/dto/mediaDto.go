package dto

// MediaRequest is the body of create and update; update replaces every field.
type MediaRequest struct {
	Title          string `json:"title" binding:"notblank"`
	Description    string `json:"description"`
	MediaType      string `json:"media_type" binding:"oneof=movie series game"`
	ReleaseYear    *int   `json:"release_year"`
	Genres         string `json:"genres"`
	AgeRestriction string `json:"age_restriction"`
}

var MediaMessages = map[string]string{
	"Title":     "Title is required",
	"MediaType": "Media type must be 'movie', 'series', or 'game'",
}
