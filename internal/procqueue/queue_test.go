package procqueue

import "testing"

func TestSubmitDedupesSameKey(t *testing.T) {
	q := NewQueue()
	j1, submitted1 := q.Submit("image_derivative", "abc123", "720", PriorityBackground)
	j2, submitted2 := q.Submit("image_derivative", "abc123", "720", PriorityBackground)

	if !submitted1 {
		t.Fatal("expected the first submission to be newly created")
	}
	if submitted2 {
		t.Fatal("expected the second submission to collapse onto the existing job")
	}
	if j1.ID != j2.ID {
		t.Fatalf("expected both submissions to return the same job, got %s and %s", j1.ID, j2.ID)
	}
}

func TestSubmitPromotesPriorityWithoutPreemptingRunning(t *testing.T) {
	q := NewQueue()
	q.Submit("image_derivative", "abc123", "720", PriorityBackground)

	running := q.startNext()
	if running == nil || running.Status != StatusRunning {
		t.Fatal("expected the job to start running")
	}

	// A user-facing request for the same artifact arrives while it's
	// already running; priority should not retroactively change the
	// in-flight job's running state.
	job, submitted := q.Submit("image_derivative", "abc123", "720", PriorityUserBlocked)
	if submitted {
		t.Fatal("expected no new job for an in-flight key")
	}
	if job.Status != StatusRunning {
		t.Fatalf("expected job to remain running, got %s", job.Status)
	}
}

func TestSubmitPromotesPendingJobPriority(t *testing.T) {
	q := NewQueue()
	q.Submit("image_derivative", "abc123", "720", PriorityBackground)
	job, submitted := q.Submit("image_derivative", "abc123", "720", PriorityUserBlocked)
	if submitted {
		t.Fatal("expected the second submission to collapse onto the pending job")
	}
	if job.Priority != PriorityUserBlocked {
		t.Fatalf("expected priority to be promoted to UserBlocked, got %v", job.Priority)
	}
}

func TestStartNextPicksHighestPriority(t *testing.T) {
	q := NewQueue()
	q.Submit("image_derivative", "bg", "720", PriorityBackground)
	q.Submit("image_derivative", "urgent", "720", PriorityUserBlocked)
	q.Submit("image_derivative", "implicit", "720", PriorityUserImplicit)

	next := q.startNext()
	if next == nil || next.Hash != "urgent" {
		t.Fatalf("expected the UserBlocked job to start first, got %+v", next)
	}
}

func TestCompleteAndFailTransitions(t *testing.T) {
	q := NewQueue()
	q.Submit("video_thumbnail", "hash1", "480", PriorityBackground)
	j := q.startNext()
	q.Complete(j.Key())

	got := q.Get("video_thumbnail", "hash1", "480")
	if got.Status != StatusComplete {
		t.Fatalf("expected StatusComplete, got %s", got.Status)
	}

	q.Submit("video_thumbnail", "hash2", "480", PriorityBackground)
	j2 := q.startNext()
	q.Fail(j2.Key(), "boom")
	got2 := q.Get("video_thumbnail", "hash2", "480")
	if got2.Status != StatusFailed || got2.Error != "boom" {
		t.Fatalf("expected failed job with error message, got %+v", got2)
	}
}

func TestQueueSizeAndActiveCount(t *testing.T) {
	q := NewQueue()
	q.Submit("image_derivative", "a", "720", PriorityBackground)
	q.Submit("image_derivative", "b", "720", PriorityBackground)
	if q.QueueSize() != 2 {
		t.Fatalf("expected 2 pending jobs, got %d", q.QueueSize())
	}
	q.startNext()
	if q.QueueSize() != 1 {
		t.Fatalf("expected 1 pending job after starting one, got %d", q.QueueSize())
	}
	if q.ActiveCount() != 1 {
		t.Fatalf("expected 1 active job, got %d", q.ActiveCount())
	}
}

func TestTerminalJobIsReplacedOnResubmit(t *testing.T) {
	q := NewQueue()
	q.Submit("image_derivative", "abc", "720", PriorityBackground)
	j := q.startNext()
	q.Fail(j.Key(), "disk full")

	job, submitted := q.Submit("image_derivative", "abc", "720", PriorityBackground)
	if !submitted {
		t.Fatal("expected a fresh job to be created after a terminal failure")
	}
	if job.Status != StatusPending {
		t.Fatalf("expected the replacement job to start pending, got %s", job.Status)
	}
}
