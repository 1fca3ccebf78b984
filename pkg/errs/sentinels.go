// Package errs contains sentinel errors shared across layers so the request
// boundary can map them to stable HTTP status codes.
package errs

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates an optimistic concurrency failure: the caller's
	// version token no longer matches the stored record.
	ErrConflict = errors.New("record changed, please refresh")

	// ErrUnauthorized indicates a missing or invalid session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller is authenticated but is neither the
	// record owner nor an admin.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates the caller exceeded the fixed-window limit.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrAlreadyExists indicates a unique constraint violation, e.g. a taken
	// username.
	ErrAlreadyExists = errors.New("already exists")
)
