// Package status aggregates counters from the indexer and the
// derivative processing queue into a single snapshot, throttled so a
// subscriber never receives updates faster than once per second.
package status

import (
	"os"

	"github.com/dustin/go-humanize"

	"github.com/scottdrichards/photrix/internal/indexer"
	"github.com/scottdrichards/photrix/internal/procqueue"
)

// Phase reports progress through one stage of work.
type Phase struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

func newPhase(completed, total int) Phase {
	p := Phase{Completed: completed, Total: total}
	if total > 0 {
		p.Percent = float64(completed) / float64(total)
	}
	return p
}

// Pending counts indexer records awaiting each sub-stage of a scan:
// Info is discovered-but-not-yet-stat'd, Exif is stat'd-but-not-yet
// metadata-extracted. This is the indexer's own backlog, distinct from
// the derivative queue's (reported under Queue below).
type Pending struct {
	Info int `json:"info"`
	Exif int `json:"exif"`
}

// QueueStatus reports the derivative processing queue's own backlog
// and pause state.
type QueueStatus struct {
	Pending int  `json:"pending"`
	Paused  bool `json:"paused"`
}

// PauseState is implemented by derivative.Manager, reported separately
// from the indexer's scan progress since pausing the derivative queue
// has no effect on indexing.
type PauseState interface {
	Paused() bool
}

// Snapshot is the full status payload served by GET status / status/stream.
type Snapshot struct {
	DatabaseSize              string      `json:"database_size"`
	DatabaseSizeBytes         int64       `json:"database_size_bytes"`
	IndexedFilesCount         int         `json:"indexed_files_count"`
	LifetimeIndexedFilesCount int         `json:"lifetime_indexed_files_count"`
	Pending                   Pending     `json:"pending"`
	Queue                     QueueStatus `json:"queue"`
	Maintenance               struct {
		ExtractionActive bool `json:"extraction_active"`
	} `json:"maintenance"`
	Progress struct {
		Overall Phase `json:"overall"`
		Scan    Phase `json:"scan"`
		Info    Phase `json:"info"`
		Exif    Phase `json:"exif"`
	} `json:"progress"`
	Recent struct {
		DerivativeJobsCompleted int `json:"derivative_jobs_completed"`
	} `json:"recent"`
}

// Reporter builds Snapshots from an Indexer and a derivative job Queue.
type Reporter struct {
	idx           *indexer.Indexer
	queue         *procqueue.Queue
	indexFilePath string
	pauseState    PauseState
}

// NewReporter builds a Reporter. indexFilePath is the JSON index
// snapshot on disk, whose size is reported as DatabaseSize. pauseState
// reports the derivative queue's pause state; it may be nil, in which
// case Queue.Paused is always false.
func NewReporter(idx *indexer.Indexer, queue *procqueue.Queue, indexFilePath string, pauseState PauseState) *Reporter {
	return &Reporter{idx: idx, queue: queue, indexFilePath: indexFilePath, pauseState: pauseState}
}

// Snapshot computes the current status.
func (r *Reporter) Snapshot() Snapshot {
	var snap Snapshot

	if info, err := os.Stat(r.indexFilePath); err == nil {
		snap.DatabaseSizeBytes = info.Size()
		snap.DatabaseSize = humanize.Bytes(uint64(info.Size()))
	}

	stats := r.idx.Stats()
	snap.IndexedFilesCount = stats.Processed
	snap.LifetimeIndexedFilesCount = r.idx.LifetimeIndexedCount()
	snap.Maintenance.ExtractionActive = stats.Scanning
	snap.Progress.Overall = newPhase(stats.Processed, stats.Total)
	snap.Progress.Scan = newPhase(stats.Processed, stats.Total)
	snap.Progress.Info = newPhase(stats.InfoProcessed, stats.Total)
	snap.Progress.Exif = newPhase(stats.Processed, stats.Total)

	snap.Pending.Info = stats.Total - stats.InfoProcessed
	snap.Pending.Exif = stats.InfoProcessed - stats.Processed

	snap.Queue.Pending = r.queue.QueueSize()
	if r.pauseState != nil {
		snap.Queue.Paused = r.pauseState.Paused()
	}
	snap.Recent.DerivativeJobsCompleted = r.queue.CompletedCount()

	return snap
}
