package cache

import "errors"

// Sentinel errors for cache reads. Both are wrapped in a coded error from
// pkg/errors, so errors.Is works on the value returned by Read.
var (
	// ErrNotFound is returned when no entry exists at the location.
	ErrNotFound = errors.New("cache entry not found")

	// ErrCorrupt is returned when an entry exists but cannot be decoded.
	ErrCorrupt = errors.New("cache entry corrupt")
)
