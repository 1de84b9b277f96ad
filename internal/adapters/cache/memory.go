package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/metrics"
)

// Entry is a cached pool with its expiry.
type Entry struct {
	Data      []model.ProjectCandidate
	ExpiresAt time.Time
}

// Memory is an in-process TTL cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
	counters
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Backend implements ProjectCache.
func (m *Memory) Backend() string { return BackendMemory }

// Get implements ProjectCache. A non-positive ttl loads without storing.
func (m *Memory) Get(ctx context.Context, key string, load Loader, ttl time.Duration) ([]model.ProjectCandidate, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if ok && m.now().Before(entry.ExpiresAt) {
		m.hits.Add(1)
		metrics.RecordCacheLookup(BackendMemory, true)
		return entry.Data, nil
	}
	if ok {
		m.mu.Lock()
		// Another request may have refreshed the entry meanwhile.
		if cur, still := m.entries[key]; still && !m.now().Before(cur.ExpiresAt) {
			delete(m.entries, key)
			m.evictions.Add(1)
		}
		m.mu.Unlock()
	}
	m.misses.Add(1)
	metrics.RecordCacheLookup(BackendMemory, false)

	data, err := load(ctx)
	m.loads.Add(1)
	if err != nil {
		return nil, err
	}
	if ttl > 0 {
		m.mu.Lock()
		m.entries[key] = Entry{Data: data, ExpiresAt: m.now().Add(ttl)}
		m.mu.Unlock()
	}
	return data, nil
}

// Invalidate implements ProjectCache.
func (m *Memory) Invalidate(_ context.Context, key string) error {
	m.mu.Lock()
	if _, ok := m.entries[key]; ok {
		delete(m.entries, key)
		m.evictions.Add(1)
	}
	m.mu.Unlock()
	return nil
}

// Clear drops every entry.
func (m *Memory) Clear() {
	m.mu.Lock()
	m.evictions.Add(int64(len(m.entries)))
	m.entries = make(map[string]Entry)
	m.mu.Unlock()
}

// Stats implements ProjectCache.
func (m *Memory) Stats() Stats {
	m.mu.RLock()
	keys := len(m.entries)
	m.mu.RUnlock()
	return m.snapshot(BackendMemory, keys)
}
