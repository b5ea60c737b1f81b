package dto

// RatingRequest: payload for creating or editing a rating. Stars are range
// checked by the service after the media or rating is known to exist.
type RatingRequest struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}
