package transcript_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rpggio/scribe/internal/domain/transcript"
	"github.com/stretchr/testify/require"
)

func TestInitializer_RunsTaskOnce(t *testing.T) {
	ctx := context.Background()
	var runs atomic.Int32

	init := transcript.NewInitializer(func(ctx context.Context) error {
		runs.Add(1)
		time.Sleep(10 * time.Millisecond)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, init.Wait(ctx))
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), runs.Load())
	require.NoError(t, init.Wait(ctx))
	require.Equal(t, int32(1), runs.Load())
}

func TestInitializer_FailurePropagatesToAllWaiters(t *testing.T) {
	ctx := context.Background()
	taskErr := errors.New("setup failed")
	var runs atomic.Int32

	init := transcript.NewInitializer(func(ctx context.Context) error {
		runs.Add(1)
		return taskErr
	})

	require.ErrorIs(t, init.Wait(ctx), taskErr)

	// The failure is cached; the task is not retried.
	require.ErrorIs(t, init.Wait(ctx), taskErr)
	require.Equal(t, int32(1), runs.Load())
}

func TestInitializer_WaiterCancellationDoesNotCancelTask(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	init := transcript.NewInitializer(func(ctx context.Context) error {
		close(started)
		<-release
		finished.Store(true)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	require.ErrorIs(t, init.Wait(ctx), context.Canceled)
	require.False(t, finished.Load())

	close(release)
	require.NoError(t, init.Wait(context.Background()))
	require.True(t, finished.Load())
}
