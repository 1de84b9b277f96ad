package cache

import (
	"context"
	"time"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/metrics"
)

// Disabled never stores anything; every Get calls the loader.
type Disabled struct {
	counters
}

// NewDisabled creates a pass-through cache.
func NewDisabled() *Disabled { return &Disabled{} }

// Backend implements ProjectCache.
func (d *Disabled) Backend() string { return BackendNone }

// Get implements ProjectCache.
func (d *Disabled) Get(ctx context.Context, _ string, load Loader, _ time.Duration) ([]model.ProjectCandidate, error) {
	d.misses.Add(1)
	d.loads.Add(1)
	metrics.RecordCacheLookup(BackendNone, false)
	return load(ctx)
}

// Invalidate implements ProjectCache.
func (d *Disabled) Invalidate(context.Context, string) error { return nil }

// Stats implements ProjectCache.
func (d *Disabled) Stats() Stats { return d.snapshot(BackendNone, 0) }
