package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidData      = errors.New("invalid data")
	ErrInvalidOptions   = errors.New("invalid options")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrParseStarted     = errors.New("parsing already started")
	ErrStoreUnavailable = errors.New("store unavailable")
)
