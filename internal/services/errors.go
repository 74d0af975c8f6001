package services

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")

	// Returned when an endpoint needs an optional collaborator the
	// deployment did not configure.
	ErrStoreDisabled       = errors.New("session store not configured")
	ErrStatusCacheDisabled = errors.New("status cache not configured")
)
