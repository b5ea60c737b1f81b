// Package apperr is the error taxonomy shared by services and handlers.
// Services return *Error values; handlers turn them into status codes with
// HTTPStatus and never show internal causes to clients.
package apperr

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindMethodNotAllowed
)

// InternalMessage is the only text an internal failure ever shows a client.
const InternalMessage = "Internal server error"

const MethodNotAllowedMessage = "Method not allowed"

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "internal"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error      { return &Error{Kind: KindValidation, Msg: msg} }
func Unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Msg: msg} }
func Forbidden(msg string) error       { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) error        { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) error        { return &Error{Kind: KindConflict, Msg: msg} }
func MethodNotAllowed() error {
	return &Error{Kind: KindMethodNotAllowed, Msg: MethodNotAllowedMessage}
}

// Internal wraps an unexpected failure. msg is for logs only.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// From classifies err. Typed errors keep their kind; known infrastructure
// errors are mapped; anything else is internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Msg: "Resource not found", Err: err}
	case IsUniqueViolation(err):
		return &Error{Kind: KindConflict, Msg: "Resource already exists", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindInternal, Msg: "request timed out", Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindInternal, Msg: "request was canceled", Err: err}
	default:
		return &Error{Kind: KindInternal, Msg: "unexpected failure", Err: err}
	}
}

// KindOf reports the kind From would assign.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	return From(err).Kind
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// IsUniqueViolation matches both gorm's translated error and a raw
// postgres unique_violation.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// HTTPStatus maps a kind to its response code. Conflicts answer 400 like
// every other rejected write.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the client-facing text for err.
func PublicMessage(err error) string {
	e := From(err)
	if e == nil || e.Kind == KindInternal {
		return InternalMessage
	}
	return e.Msg
}
