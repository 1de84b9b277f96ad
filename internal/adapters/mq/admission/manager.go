package admission

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
)

// Option configures a Manager.
type Option func(*Manager)

// WithMaxConcurrent sets how many tasks each queue runs at once.
func WithMaxConcurrent(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxConcurrent = n
		}
	}
}

// WithMaxLength bounds the pending tasks of each queue.
func WithMaxLength(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxLength = n
		}
	}
}

// WithBypass exempts paths from admission. An entry ending in "/" matches
// every path below it; other entries match exactly.
func WithBypass(paths ...string) Option {
	return func(m *Manager) {
		for _, p := range paths {
			if p = strings.TrimSpace(p); p != "" {
				m.bypass = append(m.bypass, p)
			}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithRejectHandler sets the response written when a request is not admitted.
func WithRejectHandler(h RejectHandler) Option {
	return func(m *Manager) {
		if h != nil {
			m.reject = h
		}
	}
}

// Manager owns the named queues.
type Manager struct {
	maxConcurrent int
	maxLength     int
	bypass        []string
	reject        RejectHandler
	log           logger.Logger

	mu     sync.RWMutex
	queues map[string]*Queue
}

// NewManager creates a Manager with the given queues registered.
func NewManager(names []string, opts ...Option) *Manager {
	m := &Manager{
		maxConcurrent: defaultMaxConcurrent,
		maxLength:     defaultMaxLength,
		reject:        writeBusy,
		log:           logger.Nop(),
		queues:        make(map[string]*Queue, len(names)),
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, n := range names {
		m.Register(n)
	}
	return m
}

// Register adds a queue, or returns the existing one of that name.
func (m *Manager) Register(name string) *Queue {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q, ok := m.queues[name]; ok {
		return q
	}
	q := newQueue(name, m.maxConcurrent, m.maxLength, m.log)
	m.queues[name] = q
	return q
}

// Queue looks up a registered queue.
func (m *Manager) Queue(name string) (*Queue, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.queues[name]
	return q, ok
}

// Enqueue schedules task on the named queue.
func (m *Manager) Enqueue(name string, task func(), p Priority) error {
	q, ok := m.Queue(name)
	if !ok {
		return fmt.Errorf("%w: %w: %s", ErrRejected, ErrUnknownQueue, name)
	}
	return q.Enqueue(task, p)
}

// Bypassed reports whether path skips admission.
func (m *Manager) Bypassed(path string) bool {
	for _, b := range m.bypass {
		if strings.HasSuffix(b, "/") {
			if strings.HasPrefix(path, b) {
				return true
			}
			continue
		}
		if path == b {
			return true
		}
	}
	return false
}

// Snapshot returns the stats of every queue ordered by name.
func (m *Manager) Snapshot() []Stats {
	m.mu.RLock()
	qs := make([]*Queue, 0, len(m.queues))
	for _, q := range m.queues {
		qs = append(qs, q)
	}
	m.mu.RUnlock()

	out := make([]Stats, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.Stats())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Close stops admitting and waits for pending and running tasks, or for ctx.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.RLock()
	qs := make([]*Queue, 0, len(m.queues))
	for _, q := range m.queues {
		qs = append(qs, q)
	}
	m.mu.RUnlock()

	for _, q := range qs {
		q.close()
	}
	done := make(chan struct{})
	go func() {
		for _, q := range qs {
			q.wait()
		}
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("admission drain: %w", ctx.Err())
	}
}
