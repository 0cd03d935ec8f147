package procqueue

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is broadcast to subscribers on every state transition.
type Event struct {
	Type string // "added", "promoted", "started", "complete", "failed"
	Job  *Job
}

// Queue holds pending and in-flight jobs, deduplicated by Job.Key.
// It never persists to disk; internal/store is the durable ledger
// layered on top by the caller that wants jobs to survive a restart.
type Queue struct {
	mu    sync.Mutex
	jobs  map[string]*Job // keyed by Job.Key()
	order []string        // keys in submission order

	subsMu      sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewQueue creates an empty in-memory queue.
func NewQueue() *Queue {
	return &Queue{
		jobs:        make(map[string]*Job),
		subscribers: make(map[chan Event]struct{}),
	}
}

// Submit enqueues work for (kind, hash, variant) at the given
// priority. If a non-terminal job for the same key already exists, it
// is returned unchanged except that its priority is promoted if
// priority is higher (submitted reports false in that case). A
// terminal job for the same key is replaced with a fresh one, since a
// prior failure or an evicted cache entry means the artifact must be
// rebuilt.
func (q *Queue) Submit(kind, hash, variant string, priority Priority) (job *Job, submitted bool) {
	key := jobKey(kind, hash, variant)

	q.mu.Lock()
	if existing, ok := q.jobs[key]; ok && !existing.IsTerminal() {
		promoted := false
		if priority > existing.Priority && existing.Status == StatusPending {
			existing.Priority = priority
			promoted = true
		}
		q.mu.Unlock()
		if promoted {
			q.broadcast(Event{Type: "promoted", Job: existing.Copy()})
		}
		return existing, false
	}

	j := &Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		Hash:      hash,
		Variant:   variant,
		Priority:  priority,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	if _, existed := q.jobs[key]; !existed {
		q.order = append(q.order, key)
	}
	q.jobs[key] = j
	q.mu.Unlock()

	q.broadcast(Event{Type: "added", Job: j.Copy()})
	return j, true
}

// Promote raises the priority of a pending job for (kind, hash,
// variant), if one exists and isn't already running.
func (q *Queue) Promote(kind, hash, variant string, priority Priority) {
	key := jobKey(kind, hash, variant)
	q.mu.Lock()
	j, ok := q.jobs[key]
	if !ok || j.Status != StatusPending || priority <= j.Priority {
		q.mu.Unlock()
		return
	}
	j.Priority = priority
	copy := j.Copy()
	q.mu.Unlock()
	q.broadcast(Event{Type: "promoted", Job: copy})
}

// next returns the highest-priority pending job (ties broken by
// submission order), without removing it from the queue.
func (q *Queue) next() *Job {
	var best *Job
	for _, key := range q.order {
		j, ok := q.jobs[key]
		if !ok || j.Status != StatusPending {
			continue
		}
		if best == nil || j.Priority > best.Priority {
			best = j
		}
	}
	return best
}

// startNext atomically picks the highest-priority pending job and
// marks it running, so two workers can never pick up the same job.
func (q *Queue) startNext() *Job {
	q.mu.Lock()
	j := q.next()
	if j == nil {
		q.mu.Unlock()
		return nil
	}
	j.Status = StatusRunning
	j.StartedAt = time.Now()
	started := j.Copy()
	q.mu.Unlock()
	q.broadcast(Event{Type: "started", Job: started.Copy()})
	return started
}

// Complete marks a job as finished successfully.
func (q *Queue) Complete(key string) {
	q.mu.Lock()
	j, ok := q.jobs[key]
	if !ok {
		q.mu.Unlock()
		return
	}
	j.Status = StatusComplete
	j.CompletedAt = time.Now()
	copy := j.Copy()
	q.mu.Unlock()
	q.broadcast(Event{Type: "complete", Job: copy})
}

// Fail marks a job as failed with the given error message.
func (q *Queue) Fail(key string, errMsg string) {
	q.mu.Lock()
	j, ok := q.jobs[key]
	if !ok {
		q.mu.Unlock()
		return
	}
	j.Status = StatusFailed
	j.Error = errMsg
	j.CompletedAt = time.Now()
	copy := j.Copy()
	q.mu.Unlock()
	q.broadcast(Event{Type: "failed", Job: copy})
}

// Get returns the job for (kind, hash, variant), or nil.
func (q *Queue) Get(kind, hash, variant string) *Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	if j, ok := q.jobs[jobKey(kind, hash, variant)]; ok {
		return j.Copy()
	}
	return nil
}

// QueueSize returns the number of pending (not yet running) jobs.
func (q *Queue) QueueSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, j := range q.jobs {
		if j.Status == StatusPending {
			n++
		}
	}
	return n
}

// ActiveCount returns the number of jobs currently running.
func (q *Queue) ActiveCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, j := range q.jobs {
		if j.Status == StatusRunning {
			n++
		}
	}
	return n
}

// CompletedCount returns the number of jobs currently recorded as
// complete. A completed job is replaced (not removed) on resubmission,
// so this reflects jobs complete since the process started or since
// their artifact was last evicted and rebuilt.
func (q *Queue) CompletedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, j := range q.jobs {
		if j.Status == StatusComplete {
			n++
		}
	}
	return n
}

// Subscribe returns a channel that receives every queue event.
func (q *Queue) Subscribe() chan Event {
	ch := make(chan Event, 64)
	q.subsMu.Lock()
	q.subscribers[ch] = struct{}{}
	q.subsMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscription channel.
func (q *Queue) Unsubscribe(ch chan Event) {
	q.subsMu.Lock()
	delete(q.subscribers, ch)
	q.subsMu.Unlock()
	close(ch)
}

func (q *Queue) broadcast(ev Event) {
	q.subsMu.RLock()
	defer q.subsMu.RUnlock()
	for ch := range q.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
