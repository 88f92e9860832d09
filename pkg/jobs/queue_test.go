package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]int)
	done := make(chan struct{}, 2)

	q := NewQueue(func(_ context.Context, jobID string) error {
		mu.Lock()
		seen[jobID]++
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, Config{Workers: 2})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue("job-1"))
	require.NoError(t, q.Enqueue("job-2"))
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, seen["job-1"])
	assert.Equal(t, 1, seen["job-2"])
}

func TestQueueRetriesFailedJob(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})

	q := NewQueue(func(_ context.Context, jobID string) error {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 2 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, Config{Workers: 1, MaxRetries: 2, RetryDelay: 10 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue("job-1"))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded")
	}
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue(func(context.Context, string) error { return nil }, Config{})
	assert.Error(t, q.Enqueue("job-1"))
}
