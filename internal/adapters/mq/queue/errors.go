package queue

import "errors"

// Sentinel errors of the persistence pipeline.
var (
	ErrStopped = errors.New("persistence pipeline stopped")
	ErrFull    = errors.New("persistence queue full")
)
