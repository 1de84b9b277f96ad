package recommend

import "errors"

var (
	// ErrUserNotFound fails a recommendation call whose profile cannot be loaded.
	ErrUserNotFound = errors.New("user not found")
	// ErrProjectNotFound is returned by Match for an unknown project.
	ErrProjectNotFound = errors.New("project not found")
	// ErrDataUnavailable marks a failed project pool load. Recommend logs it
	// and returns an empty list instead.
	ErrDataUnavailable = errors.New("project data unavailable")
)
