package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsSubmittedJobs(t *testing.T) {
	p := NewPool(2, 8)
	p.Start(context.Background())

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(FuncJob{JobName: "count", Fn: func(context.Context) error {
			defer wg.Done()
			ran.Add(1)
			return nil
		}}))
	}
	wg.Wait()
	p.Stop()

	assert.Equal(t, int32(5), ran.Load())
}

func TestPool_FailingAndPanickingJobsKeepWorkerAlive(t *testing.T) {
	p := NewPool(1, 4)
	p.Start(context.Background())
	defer p.Stop()

	done := make(chan struct{})
	require.NoError(t, p.Submit(FuncJob{JobName: "fail", Fn: func(context.Context) error { return errors.New("boom") }}))
	require.NoError(t, p.Submit(FuncJob{JobName: "panic", Fn: func(context.Context) error { panic("bad job") }}))
	require.NoError(t, p.Submit(FuncJob{JobName: "ok", Fn: func(context.Context) error { close(done); return nil }}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive failing jobs")
	}
}

func TestPool_SubmitWhenFull(t *testing.T) {
	p := NewPool(1, 1)
	// Not started: nothing drains the queue.
	noop := FuncJob{JobName: "noop", Fn: func(context.Context) error { return nil }}

	require.NoError(t, p.Submit(noop))
	assert.ErrorIs(t, p.Submit(noop), ErrQueueFull)
	assert.Equal(t, 1, p.QueueSize())
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := NewPool(1, 1)
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	err := p.Submit(FuncJob{JobName: "late", Fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrPoolStopped)
}

func TestPool_JobSeesCancellationOnStop(t *testing.T) {
	p := NewPool(1, 1)
	p.Start(context.Background())

	started := make(chan struct{})
	var cancelled atomic.Bool
	require.NoError(t, p.Submit(FuncJob{JobName: "long", Fn: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}}))
	<-started
	p.Stop()

	assert.True(t, cancelled.Load())
}
