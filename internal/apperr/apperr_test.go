package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Conflict("dup"), http.StatusBadRequest},
		{Unauthenticated("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{MethodNotAllowed(), http.StatusMethodNotAllowed},
		{Internal("boom", errors.New("db down")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(KindOf(tc.err)), tc.err.Error())
	}
}

func TestFrom_KeepsTypedErrorThroughWrapping(t *testing.T) {
	err := fmt.Errorf("update media: %w", Forbidden("Only the creator can edit this media"))

	e := From(err)
	assert.Equal(t, KindForbidden, e.Kind)
	assert.Equal(t, "Only the creator can edit this media", PublicMessage(err))
}

func TestFrom_InfrastructureErrors(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("find: %w", gorm.ErrRecordNotFound)))
	assert.Equal(t, KindConflict, KindOf(gorm.ErrDuplicatedKey))
	assert.Equal(t, KindConflict, KindOf(&pgconn.PgError{Code: "23505"}))
	assert.Equal(t, KindInternal, KindOf(&pgconn.PgError{Code: "23503"}))
	assert.Equal(t, KindInternal, KindOf(context.DeadlineExceeded))
}

func TestPublicMessage_HidesInternalDetail(t *testing.T) {
	err := Internal("list media", errors.New("pq: relation \"media_entries\" does not exist"))

	assert.Equal(t, InternalMessage, PublicMessage(err))
	assert.Equal(t, InternalMessage, PublicMessage(errors.New("SELECT * FROM users")))
	assert.Contains(t, err.Error(), "media_entries")
}

func TestIs(t *testing.T) {
	assert.True(t, Is(NotFound("x"), KindNotFound))
	assert.False(t, Is(NotFound("x"), KindConflict))
	assert.False(t, Is(nil, KindInternal))
}
