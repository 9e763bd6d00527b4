package locking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_SerializesSameAccount(t *testing.T) {
	locker := NewKeyedMutex()
	account := uuid.New()

	var (
		mu      sync.Mutex
		current int
		peak    int
		wg      sync.WaitGroup
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(context.Background(), account)
			require.NoError(t, err)
			defer release()

			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, peak, "same-account operations must be exclusive")
}

func TestKeyedMutex_DistinctAccountsProceedInParallel(t *testing.T) {
	locker := NewKeyedMutex()

	first, err := locker.Acquire(context.Background(), uuid.New())
	require.NoError(t, err)
	defer first()

	done := make(chan struct{})
	go func() {
		release, err := locker.Acquire(context.Background(), uuid.New())
		assert.NoError(t, err)
		release()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("distinct accounts must not block each other")
	}
}

func TestKeyedMutex_CancelledContext(t *testing.T) {
	locker := NewKeyedMutex()
	account := uuid.New()

	release, err := locker.Acquire(context.Background(), account)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(ctx, account)
	assert.Error(t, err, "waiting past the deadline must fail")

	// After release the lock is available again.
	release()
	again, err := locker.Acquire(context.Background(), account)
	require.NoError(t, err)
	again()
}

func TestKeyedMutex_ReleaseIsIdempotent(t *testing.T) {
	locker := NewKeyedMutex()
	account := uuid.New()

	release, err := locker.Acquire(context.Background(), account)
	require.NoError(t, err)
	release()
	release() // second call must be a no-op

	next, err := locker.Acquire(context.Background(), account)
	require.NoError(t, err)
	next()
}
