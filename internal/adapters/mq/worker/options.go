package worker

import (
	"time"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/dedupe"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithWriteTimeout bounds a single upsert.
func WithWriteTimeout(d time.Duration) Option {
	return func(w *InMemoryWorker) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// WithDeduper skips a batch identical to the last one written for the same
// user. Pass the option once so every worker of a pool shares d.
func WithDeduper(d dedupe.Deduper) Option {
	if d == nil {
		return func(*InMemoryWorker) {}
	}
	u := newUnchanged(d)
	return func(w *InMemoryWorker) {
		w.unchanged = u
	}
}
