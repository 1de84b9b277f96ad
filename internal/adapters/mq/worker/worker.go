// Package worker persists recommendation batches in the background.
//
// Workers drain the persistence queue and upsert each batch through the
// store. Failures are logged and counted, never surfaced to the request
// that produced the batch.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/adapters/mq/queue"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 2
	defaultWriteTimeout = 5 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// Persister upserts the recommendations of one user keyed on (user, project).
type Persister interface {
	UpsertRecommendations(ctx context.Context, userID string, recs []model.Recommendation) error
}

// Queue defines how workers receive batches.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Batch
}

// Worker persists batches until its queue closes.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue drains.
	Run(ctx context.Context)

	// Shutdown stops the worker without waiting for the queue to drain.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	store   Persister
	name    string
	timeout time.Duration

	processed atomic.Int64
	failed    atomic.Int64
	skipped   atomic.Int64

	unchanged *unchanged

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, store Persister, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		store:    store,
		name:     "persist-worker",
		timeout:  defaultWriteTimeout,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	batches := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case b, ok := <-batches:
			if !ok {
				return
			}
			if err := w.persist(ctx, b); err != nil {
				w.logger.Warn(ctx, "recommendation persistence failed",
					logger.String("user_id", b.UserID),
					logger.Int("count", len(b.Recommendations)),
					logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stop()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) stop() {
	w.stopOnce.Do(func() { close(w.shutdown) })
}

// Processed returns the number of batches written.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

// Failed returns the number of batches that could not be written.
func (w *InMemoryWorker) Failed() int64 { return w.failed.Load() }

// Skipped returns the number of batches identical to the last write.
func (w *InMemoryWorker) Skipped() int64 { return w.skipped.Load() }

func (w *InMemoryWorker) persist(ctx context.Context, b queue.Batch) (err error) { //nolint:gocritic // hugeParam: Batch must be passed by value for channel semantics
	var key string
	if w.unchanged != nil {
		var skip bool
		if key, skip = w.unchanged.skip(ctx, &b); skip {
			w.skipped.Add(1)
			w.logger.Debug(ctx, "recommendations unchanged, skipping write",
				logger.String("user_id", b.UserID))
			return nil
		}
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while persisting: %v", r)
		}
		if err != nil {
			if w.unchanged != nil {
				w.unchanged.failed(ctx, b.UserID, key)
			}
			w.failed.Add(1)
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "persist_error")
			return
		}
		w.processed.Add(1)
		metrics.RecordWorkerProcessed(float64(time.Since(start).Milliseconds()))
	}()

	// The write outlives a cancelled Run context so a drained batch is not lost.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.timeout)
	defer cancel()
	if err := w.store.UpsertRecommendations(writeCtx, b.UserID, b.Recommendations); err != nil {
		return fmt.Errorf("upsert %d recommendations: %w", len(b.Recommendations), err)
	}
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a new worker pool. opts apply to every worker.
func NewPool(workerCount int, q Queue, store Persister, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		workerOpts := append(append([]Option{}, opts...), WithName("worker-"+strconv.Itoa(i)))
		p.workers[i] = NewInMemoryWorker(q, store, workerOpts...)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
}

// Processed returns the number of batches written by all workers.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Failed returns the number of failed batches across workers.
func (p *Pool) Failed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Failed()
	}
	return n
}

// Skipped returns the number of unchanged batches not rewritten.
func (p *Pool) Skipped() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Skipped()
	}
	return n
}

// Shutdown closes the queue and waits for workers to drain it. Workers still
// running when ctx expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-drainCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			w.stop()
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("worker pool drain: %w", drainCtx.Err())
	}
	return nil
}
