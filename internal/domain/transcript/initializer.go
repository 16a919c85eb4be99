package transcript

import (
	"context"
	"sync"
)

// Initializer runs an asynchronous setup task at most once, no matter how
// many callers race into Wait. Every caller, including those arriving
// while the task is in flight, observes the same outcome. A failed task
// is not retried: the cached error is returned to every later Wait until
// the Initializer is recreated.
type Initializer struct {
	task func(ctx context.Context) error

	mu      sync.Mutex
	started bool
	done    chan struct{}
	err     error
}

// NewInitializer creates an Initializer for the given setup task.
func NewInitializer(task func(ctx context.Context) error) *Initializer {
	return &Initializer{task: task, done: make(chan struct{})}
}

// Wait starts the task on first call and blocks until it completes or ctx
// is canceled. The task itself is not canceled by any single waiter.
func (i *Initializer) Wait(ctx context.Context) error {
	i.mu.Lock()
	if !i.started {
		// The transition happens under the lock, before any caller can
		// observe the unstarted state a second time.
		i.started = true
		taskCtx := context.WithoutCancel(ctx)
		go func() {
			i.err = i.task(taskCtx)
			close(i.done)
		}()
	}
	i.mu.Unlock()

	select {
	case <-i.done:
		return i.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
