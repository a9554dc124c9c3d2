package join

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInlineRunsImmediately(t *testing.T) {
	ran := false
	Inline().Dispatch(func() { ran = true })
	require.True(t, ran)
}

func TestQueueRunsTasksInOrder(t *testing.T) {
	q := NewQueue(16)
	var (
		mu    sync.Mutex
		order []int
	)
	for i := 0; i < 10; i++ {
		i := i
		q.Dispatch(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	q.Close()

	require.ErrorIs(t, q.Run(context.Background()), ErrQueueClosed)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestQueueStopsOnContextCancel(t *testing.T) {
	q := NewQueue(0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- q.Run(ctx) }()

	executed := make(chan struct{})
	q.Dispatch(func() { close(executed) })
	<-executed

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestQueueDropsAfterClose(t *testing.T) {
	q := NewQueue(1)
	q.Close()
	q.Dispatch(func() { t.Fatal("task dispatched after Close must not run") })
	require.ErrorIs(t, q.Run(context.Background()), ErrQueueClosed)
}

func TestQueueDispatchAfterCancelDoesNotBlock(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, q.Run(ctx), context.Canceled)

	returned := make(chan bool, 2)
	go func() {
		returned <- q.Dispatch(func() {})
		returned <- q.Dispatch(func() {})
	}()
	for i := 0; i < 2; i++ {
		select {
		case accepted := <-returned:
			require.False(t, accepted)
		case <-time.After(time.Second):
			t.Fatal("Dispatch blocked after Run was cancelled")
		}
	}
}

func TestQueueCancelRunsAcceptedTasks(t *testing.T) {
	q := NewQueue(2)
	ran := 0
	require.True(t, q.Dispatch(func() { ran++ }))
	require.True(t, q.Dispatch(func() { ran++ }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, q.Run(ctx), context.Canceled)
	require.Equal(t, 2, ran)
}
