// Package admission gates expensive request groups behind named priority
// queues with bounded concurrency.
//
// Each queue keeps its pending tasks ordered by priority and runs at most
// maxConcurrent of them at once. Admission is non-preemptive: a task that
// has started runs to completion.
package admission

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/metrics"
)

const (
	defaultMaxConcurrent = 10
	defaultMaxLength     = 1000
)

// Stats is a point-in-time view of one queue.
type Stats struct {
	Name          string `json:"name"`
	Pending       int    `json:"pending"`
	Running       int    `json:"running"`
	MaxConcurrent int    `json:"maxConcurrent"`
	MaxLength     int    `json:"maxLength"`
	Admitted      uint64 `json:"admitted"`
	Completed     uint64 `json:"completed"`
	Rejected      uint64 `json:"rejected"`
	Panicked      uint64 `json:"panicked"`
}

// Queue is one named admission queue. It is safe for concurrent use.
type Queue struct {
	name          string
	maxConcurrent int
	maxLength     int
	log           logger.Logger

	mu      sync.Mutex
	pending taskHeap
	running int
	seq     uint64
	closed  bool
	stats   Stats

	// inflight counts pending and running tasks for Close.
	inflight sync.WaitGroup
}

func newQueue(name string, maxConcurrent, maxLength int, log logger.Logger) *Queue {
	if maxConcurrent < 1 {
		maxConcurrent = defaultMaxConcurrent
	}
	if maxLength < 1 {
		maxLength = defaultMaxLength
	}
	return &Queue{
		name:          name,
		maxConcurrent: maxConcurrent,
		maxLength:     maxLength,
		log:           log,
	}
}

// Name returns the queue name.
func (q *Queue) Name() string { return q.name }

// Enqueue schedules task at priority p and starts as many pending tasks as
// the concurrency bound allows. It never blocks on task execution.
func (q *Queue) Enqueue(task func(), p Priority) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.rejectLocked("closed")
		return fmt.Errorf("%w: %s: %w", ErrRejected, q.name, ErrClosed)
	}
	if len(q.pending) >= q.maxLength {
		q.rejectLocked("full")
		return fmt.Errorf("%w: %s: %w", ErrRejected, q.name, ErrQueueFull)
	}

	q.seq++
	q.inflight.Add(1)
	heap.Push(&q.pending, &item{task: task, priority: p, enqueuedAt: time.Now(), seq: q.seq})
	q.drainLocked()
	return nil
}

func (q *Queue) rejectLocked(reason string) {
	q.stats.Rejected++
	metrics.RecordAdmissionRejected(q.name, reason)
}

// drainLocked starts pending tasks while there is spare capacity.
func (q *Queue) drainLocked() {
	for q.pending.Len() > 0 && q.running < q.maxConcurrent {
		it := heap.Pop(&q.pending).(*item)
		q.running++
		q.stats.Admitted++
		metrics.RecordAdmission(q.name, float64(time.Since(it.enqueuedAt).Microseconds())/1000)
		go q.run(it)
	}
	metrics.UpdateAdmissionQueue(q.name, q.pending.Len(), q.running)
}

func (q *Queue) run(it *item) {
	defer q.inflight.Done()
	defer func() {
		r := recover()

		q.mu.Lock()
		defer q.mu.Unlock()
		if r != nil {
			q.stats.Panicked++
			q.log.Error(context.Background(), "admitted task panicked",
				logger.String("queue", q.name),
				logger.String("priority", it.priority.String()),
				logger.Any("panic", r))
		}
		q.running--
		q.stats.Completed++
		q.drainLocked()
	}()
	it.task()
}

// Stats returns a snapshot of the queue.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := q.stats
	s.Name = q.name
	s.Pending = q.pending.Len()
	s.Running = q.running
	s.MaxConcurrent = q.maxConcurrent
	s.MaxLength = q.maxLength
	return s
}

// close stops accepting tasks. Pending tasks still run.
func (q *Queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

func (q *Queue) wait() { q.inflight.Wait() }
