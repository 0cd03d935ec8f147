// Package procqueue dispatches derivative-production work (thumbnails,
// resized images, HLS segments) at bounded concurrency, deduplicating
// requests for the same artifact and letting a user-facing request
// promote an already-queued background job ahead of the line.
package procqueue

import "time"

// Priority orders pending jobs: a user waiting on a response always
// jumps ahead of speculative background work, but never preempts a job
// that has already started running.
type Priority int

const (
	PriorityBackground Priority = iota
	PriorityUserImplicit
	PriorityUserBlocked
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Job is one unit of derivative work, identified by the
// (Kind, Hash, Variant) triple so that two requests for the same
// artifact collapse into a single dispatch.
type Job struct {
	ID       string
	Kind     string // e.g. "image", "video_thumb", "hls_single" (internal/derivative's kinds)
	Hash     string // digest identifying the source file (derivative.SourceHash)
	Variant  string // e.g. a target height or bitrate-ladder name
	Priority Priority
	Status   Status
	Error    string

	CreatedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time
}

// Key identifies the artifact a job produces, independent of ID or
// priority; two Submit calls for the same (kind, hash, variant) while
// one is in flight collapse onto the same Job.
func (j *Job) Key() string {
	return jobKey(j.Kind, j.Hash, j.Variant)
}

func jobKey(kind, hash, variant string) string {
	return kind + "|" + hash + "|" + variant
}

// IsTerminal reports whether the job has finished, successfully or
// not.
func (j *Job) IsTerminal() bool {
	return j.Status == StatusComplete || j.Status == StatusFailed
}

// Copy returns a shallow copy, safe to hand to callers since Job has
// no pointer or slice fields.
func (j *Job) Copy() *Job {
	c := *j
	return &c
}
