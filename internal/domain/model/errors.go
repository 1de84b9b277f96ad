package model

import "errors"

// ErrNotFound is returned by data collaborators when a record does not exist.
var ErrNotFound = errors.New("record not found")
