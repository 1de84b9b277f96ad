package admission

import "errors"

var (
	// ErrRejected wraps every reason a task was not admitted.
	ErrRejected = errors.New("admission rejected")
	// ErrQueueFull is returned when a queue holds its maximum of pending tasks.
	ErrQueueFull = errors.New("admission queue full")
	// ErrUnknownQueue is returned for a queue name that was never registered.
	ErrUnknownQueue = errors.New("unknown admission queue")
	// ErrClosed is returned once the queue is shutting down.
	ErrClosed = errors.New("admission queue closed")
)
