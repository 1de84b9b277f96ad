package worker

import (
	"context"
	"errors"
	"time"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/adapters/mq/queue"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/metrics"
)

// Pipeline is the best-effort persistence side effect of the recommendation
// path. Submit never blocks and never reports failure to its caller.
type Pipeline struct {
	queue  queue.Queue
	pool   *Pool
	logger logger.Logger
}

// NewPipeline wires a queue to a pool of workers writing through store.
func NewPipeline(q queue.Queue, store Persister, workers int, opts ...Option) *Pipeline {
	return &Pipeline{
		queue:  q,
		pool:   NewPool(workers, q, store, opts...),
		logger: pipelineLogger(opts),
	}
}

// pipelineLogger uses the logger set by WithLogger, if any.
func pipelineLogger(opts []Option) logger.Logger {
	w := &InMemoryWorker{}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		return logger.Get().Named("persist")
	}
	return w.logger.Named("persist")
}

// Start launches the workers.
func (p *Pipeline) Start(ctx context.Context) {
	p.pool.Start(ctx)
}

// Submit hands recs to the workers. A full or stopped queue drops the batch.
func (p *Pipeline) Submit(ctx context.Context, userID string, recs []model.Recommendation) {
	if len(recs) == 0 {
		return
	}
	b := queue.Batch{
		UserID:          userID,
		Recommendations: recs,
		EnqueuedAt:      time.Now(),
	}
	// Detached so a finished request does not cancel the hand-off.
	if err := p.queue.Enqueue(context.WithoutCancel(ctx), b); err != nil {
		metrics.RecordRecommendationsDropped()
		level := p.logger.Warn
		if errors.Is(err, queue.ErrStopped) {
			level = p.logger.Debug
		}
		level(ctx, "dropping recommendation batch",
			logger.String("user_id", userID),
			logger.Int("count", len(recs)),
			logger.Error(err))
	}
}

// Pending returns the number of queued batches.
func (p *Pipeline) Pending() int { return p.queue.Len() }

// Capacity returns the queue bound, or 0 when the queue does not report one.
func (p *Pipeline) Capacity() int {
	if c, ok := p.queue.(interface{ Capacity() int }); ok {
		return c.Capacity()
	}
	return 0
}

// Workers returns the number of persistence workers.
func (p *Pipeline) Workers() int { return p.pool.Size() }

// Processed returns the number of batches written.
func (p *Pipeline) Processed() int64 { return p.pool.Processed() }

// Failed returns the number of batches that failed to write.
func (p *Pipeline) Failed() int64 { return p.pool.Failed() }

// Skipped returns the number of batches identical to the last write.
func (p *Pipeline) Skipped() int64 { return p.pool.Skipped() }

// Shutdown stops accepting batches and drains the queue.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	return p.pool.Shutdown(ctx)
}
