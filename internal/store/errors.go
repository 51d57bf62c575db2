package store

import "errors"

// Sentinel errors.
var (
	// ErrClosed is returned by operations on a backend after Close.
	ErrClosed = errors.New("store is closed")
	// ErrEmptyKey is returned when an operation is given an empty key.
	ErrEmptyKey = errors.New("key must not be empty")
)
