package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vytor/mnemoflash/internal/logger"
)

var (
	ErrQueueFull   = errors.New("worker queue is full")
	ErrPoolStopped = errors.New("worker pool is stopped")
)

type Job interface {
	Run(context.Context) error
	Name() string
}

// FuncJob adapts a function to the Job interface.
type FuncJob struct {
	JobName string
	Fn      func(context.Context) error
}

func (j FuncJob) Name() string { return j.JobName }

func (j FuncJob) Run(ctx context.Context) error { return j.Fn(ctx) }

type Pool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	workers int
	queue   int
	cancel  context.CancelFunc
	log     *logger.Logger

	mu      sync.RWMutex
	stopped bool
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	log := logger.Default().WithPrefix("worker-pool")
	log.Debug("creating worker pool with %d workers and queue size %d", workers, queueSize)
	return &Pool{
		jobs:    make(chan Job, queueSize),
		workers: workers,
		queue:   queueSize,
		log:     log,
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Info("starting worker pool with %d workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			workerLog := p.log.WithField("worker_id", id)
			workerLog.Debug("worker started")

			for {
				select {
				case <-ctx.Done():
					workerLog.Debug("worker shutting down (context cancelled)")
					return
				case job, ok := <-p.jobs:
					if !ok {
						workerLog.Debug("worker shutting down (queue closed)")
						return
					}
					p.run(logger.NewContext(ctx, workerLog.WithField("job", job.Name())), job)
				}
			}
		}(i + 1)
	}
}

func (p *Pool) run(ctx context.Context, job Job) {
	jobLog := logger.FromContext(ctx)
	jobLog.Debug("starting job")
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			jobLog.Error("job panicked after %v: %v", time.Since(start), r)
		}
	}()

	if err := job.Run(ctx); err != nil {
		jobLog.Error("job failed after %v: %v", time.Since(start), err)
	} else {
		jobLog.Info("job completed in %v", time.Since(start))
	}
}

// Stop stops accepting jobs, cancels running ones and waits for the
// workers to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.log.Info("stopping worker pool")
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.log.Info("worker pool stopped")
}

// Submit enqueues job without blocking. It returns ErrQueueFull when the
// queue has no room.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.jobs <- job:
		p.log.Debug("submitted job: %s", job.Name())
		return nil
	default:
		p.log.Warn("queue full (%d), rejecting job: %s", p.queue, job.Name())
		return ErrQueueFull
	}
}

// QueueSize returns the current number of pending jobs.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}
