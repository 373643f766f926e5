package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidSighting signals a sighting record that fails validation.
	ErrInvalidSighting = errors.New("invalid sighting")
	// ErrInvalidQuery signals search parameters that cannot be clamped into range.
	ErrInvalidQuery = errors.New("invalid search query")
	// ErrInvalidDate signals a reference date that is not an ISO-8601 calendar date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrBackendUnavailable signals that the search backend call failed.
	ErrBackendUnavailable = errors.New("search backend unavailable")
	// ErrDecodeFailure signals a backend response this service cannot interpret.
	ErrDecodeFailure = errors.New("unexpected search backend response")
)
