package common

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TaskRunner runs detached background tasks spawned from the request
// path (e.g. the MFA status sync). A task gets its own context, logs its
// own failure, and is never observed by the request that spawned it.
// Wait drains in-flight tasks at shutdown so the process cannot exit
// underneath them.
type TaskRunner struct {
	logger  *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewTaskRunner(logger *zap.Logger, timeout time.Duration) *TaskRunner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TaskRunner{logger: logger, timeout: timeout}
}

// Go runs fn on its own goroutine, detached from any request context.
func (r *TaskRunner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			r.logger.Warn("detached task failed", zap.String("task", name), zap.Error(err))
		}
	}()
}

// Wait blocks until all detached tasks finish or ctx expires.
func (r *TaskRunner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
