// Package indexer walks a media root, extracts file and media metadata
// for every entry, and keeps the resulting index current via a live
// filesystem watcher. It owns the only writer to an indexstore.Store.
package indexer

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/scottdrichards/photrix/internal/indexstore"
	"github.com/scottdrichards/photrix/internal/logger"
	"github.com/scottdrichards/photrix/internal/metadata"
	"github.com/scottdrichards/photrix/internal/pathutil"
	"github.com/scottdrichards/photrix/internal/query"
	"github.com/scottdrichards/photrix/internal/record"
)

// log is scoped to this package so every record it emits carries
// component=indexer without repeating the name in each message.
var log = logger.With("indexer")

// Stats summarizes the most recently completed (or in-progress) scan.
// These counters are session-scoped: they reset to zero at the start
// of every runScan, unlike LifetimeIndexedCount which persists across
// restarts via the index store.
type Stats struct {
	Total int

	// InfoProcessed counts files that have completed the fast stat+MIME
	// stage. Processed counts files whose whole indexing attempt has
	// finished (metadata extraction done, skipped as unchanged, or
	// failed); failures are also counted in Failed. A file whose stat
	// fails counts toward Processed and Failed but not InfoProcessed.
	InfoProcessed int
	Processed     int
	Failed        int
	Scanning      bool
	StartedAt     time.Time
	EndedAt       time.Time
}

// Indexer owns the discovery walk, the bounded metadata-extraction
// phase, and (when enabled) the live fsnotify watcher, all writing into
// a single indexstore.Store.
type Indexer struct {
	root    string
	workers int
	watch   bool
	awaitWriteFinish bool

	store       *indexstore.Store
	videoProber *metadata.VideoProber

	// extractGroup collapses concurrent extraction work for the same
	// relative path into a single call, so a watcher event firing while
	// the initial scan is still processing the same file doesn't
	// duplicate the ffprobe/EXIF work.
	extractGroup singleflight.Group

	progress func(processed, total int)

	mu       sync.Mutex
	stats    Stats
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	watcher  *dirWatcher
}

// New builds an Indexer rooted at root, persisting into store.
func New(root string, store *indexstore.Store, ffprobePath string, workers int, watch, awaitWriteFinish bool) *Indexer {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	if workers < 1 {
		workers = 20
	}
	return &Indexer{
		root:             absRoot,
		workers:          workers,
		watch:            watch,
		awaitWriteFinish: awaitWriteFinish,
		store:            store,
		videoProber:      metadata.NewVideoProber(ffprobePath),
	}
}

// SetProgress installs a callback invoked with the running
// processed/total counts during an active scan: at most once every
// 200ms as files finish, plus once when the scan completes.
func (x *Indexer) SetProgress(fn func(processed, total int)) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.progress = fn
}

// RootDir returns the absolute media root this indexer walks.
func (x *Indexer) RootDir() string {
	return x.root
}

// Stats returns a snapshot of the most recent scan's counters.
func (x *Indexer) Stats() Stats {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.stats
}

// Start launches the discovery walk and bounded processing phase in
// the background, attaching the filesystem watcher afterward if
// enabled. It returns immediately; callers observe progress via Stats
// or the SetProgress callback.
func (x *Indexer) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	x.mu.Lock()
	x.cancel = cancel
	x.mu.Unlock()

	x.wg.Add(1)
	go func() {
		defer x.wg.Done()
		x.runScan(ctx)
		if x.watch && ctx.Err() == nil {
			x.runWatch(ctx)
		}
	}()
}

// Stop cancels the scan/watch goroutines and waits for them to exit.
// When closeDB is true the backing index store is flushed and closed.
func (x *Indexer) Stop(closeDB bool) {
	x.mu.Lock()
	cancel := x.cancel
	x.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	x.wg.Wait()
	if closeDB {
		x.store.Close()
	}
}

// ListIndexedFiles returns every indexed record regardless of stage.
func (x *Indexer) ListIndexedFiles() []*record.Record {
	return x.store.List()
}

// LifetimeIndexedCount returns the number of Full records currently in
// the index store. Unlike Stats().Processed, which resets every scan,
// this survives restarts, since the store reloads its JSON snapshot on
// startup; files removed from the index are no longer counted.
func (x *Indexer) LifetimeIndexedCount() int {
	n := 0
	for _, r := range x.store.List() {
		if r.IsFull() {
			n++
		}
	}
	return n
}

// GetIndexedFile returns the record at relativePath, or nil.
func (x *Indexer) GetIndexedFile(relativePath string) *record.Record {
	return x.store.Get(relativePath)
}

// QueryFiles runs a query.Query against the current index snapshot.
func (x *Indexer) QueryFiles(node query.Node, opts query.Options) query.Result {
	return query.Query(x.store.List(), node, opts)
}

// AbsPath resolves a relative path against the media root, rejecting
// any path that would escape it.
func (x *Indexer) AbsPath(relativePath string) (string, error) {
	return pathutil.Join(x.root, relativePath)
}
