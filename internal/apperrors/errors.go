// Package apperrors holds the error kinds shared by the services and the
// HTTP layer. Services wrap one of these sentinels with an operation name;
// callers match them with errors.Is.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidArgument means a required field is missing or pagination is non-positive.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound means a referenced user, post, comment, follow edge or notification is absent.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists means a follow edge already exists for the pair.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnauthorized means the actor does not own the resource.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidRelationship means a user tried to follow themselves.
	ErrInvalidRelationship = errors.New("invalid relationship")
	// ErrConflict means a concurrent mutation won the race for the same record.
	ErrConflict = errors.New("conflict")
	// ErrAccessDenied means the viewer may not see the resource.
	ErrAccessDenied = errors.New("access denied")
	// ErrInternal hides storage failures from callers.
	ErrInternal = errors.New("internal error")
)

type detailed struct {
	kind error
	msg  string
}

func (d *detailed) Error() string { return d.msg }
func (d *detailed) Unwrap() error { return d.kind }

// New returns an error of the given kind carrying a client-facing message.
func New(kind error, msg string) error {
	return &detailed{kind: kind, msg: msg}
}

// HTTPStatus maps an error kind to the status code the handlers respond with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrInvalidRelationship):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

var kinds = []error{
	ErrInvalidArgument, ErrNotFound, ErrAlreadyExists, ErrUnauthorized,
	ErrInvalidRelationship, ErrConflict, ErrAccessDenied, ErrInternal,
}

// IsKnown reports whether err already carries one of the kinds above
func IsKnown(err error) bool {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// Message returns the client-facing text for err. Anything that is not one
// of the known kinds collapses to a generic message.
func Message(err error) string {
	var d *detailed
	if errors.As(err, &d) && d.kind != ErrInternal {
		return d.msg
	}
	for _, kind := range kinds {
		if kind != ErrInternal && errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return ErrInternal.Error()
}
