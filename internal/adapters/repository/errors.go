package repository

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrEmpty  = errors.New("no cached log")
	ErrNilLog = errors.New("cached log is nil")
)
