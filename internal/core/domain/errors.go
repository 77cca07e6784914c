package domain

import "errors"

var (
	// ErrInvalidConfig signals a degenerate limit configuration at
	// registration time (zero budget or zero window).
	ErrInvalidConfig = errors.New("invalid limit configuration")

	// ErrNotConfigured signals a check against a limit type that was
	// never registered.
	ErrNotConfigured = errors.New("limit type not configured")

	// ErrStoreUnavailable signals that the counter store failed or is
	// unreachable. Unavailable means "count unknown", never zero.
	ErrStoreUnavailable = errors.New("counter store unavailable")
)

func IsNotConfiguredError(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

func IsStoreUnavailableError(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
