package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/vytor/mnemoflash/internal/logger"
	"github.com/vytor/mnemoflash/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool    *worker.Pool
	timeout time.Duration
}

// NewWorkerQueue creates a new WorkerQueue. Each job is cancelled after
// timeout; zero means no limit.
func NewWorkerQueue(pool *worker.Pool, timeout time.Duration) *WorkerQueue {
	return &WorkerQueue{pool: pool, timeout: timeout}
}

var _ JobQueue = (*WorkerQueue)(nil)

func (q *WorkerQueue) Go(name string, fn func(ctx context.Context) error) error {
	job := worker.FuncJob{JobName: name, Fn: fn}
	if q.timeout > 0 {
		timeout := q.timeout
		job.Fn = func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return fn(ctx)
		}
	}

	if err := q.pool.Submit(job); err != nil {
		logger.Default().WithPrefix("jobs").Warn("failed to enqueue %s: %v", name, err)
		return fmt.Errorf("image generation is busy, try again shortly: %w", err)
	}
	return nil
}
