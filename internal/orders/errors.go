package orders

import "errors"

var (
	// ErrNotFound covers both a missing order row and an empty list result.
	ErrNotFound = errors.New("order not found")

	// ErrInvalidInput marks initiation requests missing required fields.
	ErrInvalidInput = errors.New("invalid order input")

	// ErrUnavailable wraps store failures so the boundary can answer with a
	// retry-later status instead of a bare 500.
	ErrUnavailable = errors.New("order store unavailable")
)
