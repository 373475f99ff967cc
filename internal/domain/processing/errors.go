package processing

import "errors"

var (
	// ErrStoreUnavailable means the durable store could not be reached or timed out.
	ErrStoreUnavailable = errors.New("processing issue store unavailable")
	// ErrConstraintViolation means a write would break a uniqueness or reference invariant.
	ErrConstraintViolation = errors.New("processing issue constraint violation")
)
