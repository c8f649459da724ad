package core

import (
	"errors"
)

var (
	// ErrBudgetExceeded indicates a generation resource budget was
	// exceeded; the request is aborted, never the process.
	ErrBudgetExceeded = errors.New("generation budget exceeded")
	// ErrCacheCorrupt indicates an on-disk cache entry could not be read.
	// Treated as a cache miss.
	ErrCacheCorrupt = errors.New("cache entry corrupt")
)
