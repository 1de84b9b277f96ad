package repository

import (
	"errors"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
)

// Sentinel kinds for store errors.
var (
	// ErrNotFound is the domain not-found sentinel, so callers above the
	// store can match it without importing this package.
	ErrNotFound    = model.ErrNotFound
	ErrUnavailable = errors.New("store unavailable")
	ErrInvalidSeed = errors.New("invalid seed data")
)
