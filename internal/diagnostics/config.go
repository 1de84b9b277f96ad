// Package diagnostics implements the operator checks behind the diagnose
// command: timed recommendation requests against a running server and local
// code evaluation.
package diagnostics

import (
	"errors"
	"time"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
)

// Defaults for Config.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultTimeout = 10 * time.Second
	DefaultWorkers = 4
)

// Outcome of one user's recommendation check.
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeTimeout  = "timeout"
	OutcomeNotFound = "not_found"
	OutcomeBusy     = "busy"
	OutcomeFailed   = "failed"
)

var (
	// ErrNoUsers is returned when a recommend run names no users.
	ErrNoUsers = errors.New("no users to check")
	// ErrUnhealthy is returned when the server health check fails.
	ErrUnhealthy = errors.New("service unhealthy")
)

// Config holds the settings of a recommend run.
type Config struct {
	BaseURL   string        // Base URL of the service
	Users     []string      // Users to request recommendations for
	Limit     int           // Requested list size; 0 uses the server default
	Diversify bool          // Ask for diversified results
	Timeout   time.Duration // Per-user timeout
	Workers   int           // Concurrent requests
	Verbose   bool
}

func (c *Config) normalize() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Workers < 1 {
		c.Workers = DefaultWorkers
	}
}

// UserResult is the outcome of one user's request.
type UserResult struct {
	UserID   string                 `json:"userId"`
	Outcome  string                 `json:"outcome"`
	Status   int                    `json:"status,omitempty"`
	Count    int                    `json:"count"`
	TopScore int                    `json:"topScore,omitempty"`
	Latency  time.Duration          `json:"latency"`
	Error    string                 `json:"error,omitempty"`
	Results  []model.Recommendation `json:"-"`
}
