package procqueue

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolProcessesSubmittedJobs(t *testing.T) {
	q := NewQueue()
	var processed int32
	pool := NewWorkerPool(q, 2, func(ctx context.Context, job *Job) error {
		atomic.AddInt32(&processed, 1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	q.Submit("image_derivative", "a", "720", PriorityBackground)
	q.Submit("image_derivative", "b", "720", PriorityBackground)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&processed) == 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected both jobs to be processed, got %d", processed)
}

func TestWorkerPoolPauseStopsNewWork(t *testing.T) {
	q := NewQueue()
	var processed int32
	pool := NewWorkerPool(q, 2, func(ctx context.Context, job *Job) error {
		atomic.AddInt32(&processed, 1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	pool.Pause()
	q.Submit("image_derivative", "a", "720", PriorityBackground)

	time.Sleep(300 * time.Millisecond)
	if atomic.LoadInt32(&processed) != 0 {
		t.Fatal("expected no jobs to run while paused")
	}

	pool.Resume()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&processed) == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected the job to run after resume")
}

func TestNewWorkerPoolClampsWorkerCount(t *testing.T) {
	pool := NewWorkerPool(NewQueue(), 100, func(ctx context.Context, job *Job) error { return nil })
	if pool.workers != MaxWorkers {
		t.Fatalf("expected workers clamped to %d, got %d", MaxWorkers, pool.workers)
	}
}
