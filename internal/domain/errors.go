package domain

import (
	"errors"

	"conferencecentral/internal/query"
)

// Sentinel errors shared across services and repositories.
// Callers classify with errors.Is; services wrap with fmt.Errorf("...: %w", err).
var (
	// ErrNotFound means a referenced conference, session or profile does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict covers duplicate registration, duplicate wishlist entry and seat exhaustion.
	ErrConflict = errors.New("conflict")
	// ErrForbidden means the caller does not own the entity it tries to mutate.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidArgument is a client-input error outside the filter language.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidFilter is an unknown filter field/operator, a second
	// inequality field, or a non-coercible filter value. Never retried.
	// Shared with the filter compiler so errors.Is works across packages.
	ErrInvalidFilter = query.ErrInvalidFilter
	// ErrAborted means a storage transaction kept failing on write conflicts
	// after retries. The whole operation may be retried by the caller.
	ErrAborted = errors.New("transaction aborted")
)
