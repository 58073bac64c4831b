package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueRejectsEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	err := q.Enqueue(Job{ID: "j1", Type: "noop"})
	require.Error(t, err)
}

func TestQueueDeliversJobs(t *testing.T) {
	delivered := make(chan Job, 1)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		delivered <- job
		return nil
	}, QueueConfig{Workers: 2})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "noop", Payload: "hello"}))

	select {
	case job := <-delivered:
		require.Equal(t, "j1", job.ID)
		require.False(t, job.Enqueued.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("job was not delivered")
	}
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	attempts := make(chan int, 4)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		attempts <- job.Attempt
		if job.Attempt == 0 {
			return errors.New("transient failure")
		}
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 2, RetryDelay: 10 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "flaky"}))

	var seen []int
	for len(seen) < 2 {
		select {
		case attempt := <-attempts:
			seen = append(seen, attempt)
		case <-time.After(2 * time.Second):
			t.Fatalf("expected a retry, saw attempts %v", seen)
		}
	}
	require.Equal(t, []int{0, 1}, seen)
}
