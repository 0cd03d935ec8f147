package store

import (
	"context"

	"github.com/scottdrichards/photrix/internal/logger"
	"github.com/scottdrichards/photrix/internal/procqueue"
)

var log = logger.With("store")

// SourceLookup resolves a job's hash back to the relative path it was
// derived from, so completed/pending jobs can be persisted with enough
// information to resubmit after a restart.
type SourceLookup func(hash string) (string, bool)

// Persist subscribes to queue and writes every state transition
// through to st, so the ledger always reflects the in-memory queue. It
// runs until ctx is cancelled.
func Persist(ctx context.Context, queue *procqueue.Queue, st *Store, sourceFor SourceLookup) {
	sub := queue.Subscribe()
	go func() {
		defer queue.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if ev.Job == nil {
					continue
				}
				sourcePath, _ := sourceFor(ev.Job.Hash)
				if err := st.Save(ev.Job, sourcePath); err != nil {
					log.Warn("failed to persist job", "key", ev.Job.Key(), "error", err)
				}
			}
		}
	}()
}

// Restore resets any job left running from a prior process (it
// crashed or was killed mid-transcode) back to pending, then
// resubmits every still-pending job onto queue via remember (which
// should record the hash -> source path mapping the same way a live
// request would) so derivative generation picks up where it left off.
func Restore(st *Store, queue *procqueue.Queue, remember func(hash, sourcePath string)) error {
	if _, err := st.ResetRunningJobs(); err != nil {
		return err
	}
	records, err := st.LoadAll()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.Job.Status != procqueue.StatusPending {
			continue
		}
		if rec.SourcePath != "" {
			remember(rec.Job.Hash, rec.SourcePath)
		}
		queue.Submit(rec.Job.Kind, rec.Job.Hash, rec.Job.Variant, rec.Job.Priority)
	}
	return nil
}
