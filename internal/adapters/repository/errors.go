package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound       = errors.New("no analysis stored for session")
	ErrInvalidSession = errors.New("invalid session id")
)
