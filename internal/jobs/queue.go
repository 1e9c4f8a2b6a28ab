package jobs

import "context"

// JobQueue provides an abstraction for running background jobs. It
// satisfies pipeline.Runner.
type JobQueue interface {
	Go(name string, fn func(ctx context.Context) error) error
}
