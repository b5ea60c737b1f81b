package service

import (
	"fmt"

	"github.com/google/uuid"

	"mrp/internal/apperr"
)

const (
	MediaEditForbidden   = "Only the creator can edit this media"
	MediaDeleteForbidden = "Only the creator can delete this media"
	RatingForbidden      = "Only the author can modify this rating"
)

// RequireOwner rejects callers other than the owner with message.
func RequireOwner(ownerID, callerID uuid.UUID, message string) error {
	if ownerID != callerID {
		return apperr.Forbidden(message)
	}
	return nil
}

// ParseID parses a path identifier; a malformed one is "Invalid <entity> id".
func ParseID(raw, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation(fmt.Sprintf("Invalid %s id", entity))
	}
	return id, nil
}
