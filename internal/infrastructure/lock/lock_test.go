package lock_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/biomebistro/biome-bistro-services/api/internal/infrastructure/lock"
)

func TestMemorySerializesSameKey(t *testing.T) {
	locker := lock.NewMemory()

	const workers = 32
	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(context.Background(), "r1|2026-03-15|19:00")
			require.NoError(t, err)
			counter++
			release()
		}()
	}
	wg.Wait()

	require.Equal(t, workers, counter)
}

func TestMemoryDistinctKeysDoNotBlock(t *testing.T) {
	locker := lock.NewMemory()

	releaseA, err := locker.Acquire(context.Background(), "a")
	require.NoError(t, err)
	defer releaseA()

	// a held lock on "a" must not delay "b"
	releaseB, err := locker.Acquire(context.Background(), "b")
	require.NoError(t, err)
	releaseB()
}

func TestMemoryReacquireAfterRelease(t *testing.T) {
	locker := lock.NewMemory()

	release, err := locker.Acquire(context.Background(), "a")
	require.NoError(t, err)
	release()

	release, err = locker.Acquire(context.Background(), "a")
	require.NoError(t, err)
	release()
}

func TestMemoryRejectsCancelledContext(t *testing.T) {
	locker := lock.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := locker.Acquire(ctx, "a")
	require.ErrorIs(t, err, context.Canceled)
}
