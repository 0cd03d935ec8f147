package indexer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/scottdrichards/photrix/internal/pathutil"
)

const writeStabilizeDelay = 200 * time.Millisecond

// dirWatcher wraps an fsnotify.Watcher with the indexer's debounce and
// directory-registration bookkeeping. fsnotify does not watch
// subtrees on its own, so every directory under the media root must be
// added individually, and newly created directories must be added as
// they appear.
type dirWatcher struct {
	fs *fsnotify.Watcher

	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

// runWatch registers every directory under the media root and then
// processes filesystem events until ctx is cancelled.
func (x *Indexer) runWatch(ctx context.Context) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("failed to start watcher", "error", err)
		return
	}
	defer fsw.Close()

	w := &dirWatcher{fs: fsw, timers: make(map[string]*time.Timer)}
	x.mu.Lock()
	x.watcher = w
	x.mu.Unlock()

	x.addTreeWatches(w, x.root)
	log.Info("watching for changes", "root", x.root)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			x.handleEvent(ctx, w, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			log.Warn("watcher error", "error", err)
		}
	}
}

// addTreeWatches registers dir and every non-hidden subdirectory
// beneath it.
func (x *Indexer) addTreeWatches(w *dirWatcher, dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			log.Warn("failed to watch directory", "path", p, "error", err)
		}
		return nil
	})
}

func (x *Indexer) handleEvent(ctx context.Context, w *dirWatcher, ev fsnotify.Event) {
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") {
		return
	}
	rel, err := filepath.Rel(x.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	switch {
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// A rename surfaces as Rename for the old name followed by a
		// Create for the new one; treat both like a delete here and let
		// the Create branch re-index under the new name.
		x.RemoveFile(rel)
		x.removeDescendants(rel)

	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		info, statErr := os.Stat(ev.Name)
		if statErr != nil {
			return
		}
		if info.IsDir() {
			if ev.Op&fsnotify.Create != 0 {
				x.addTreeWatches(w, ev.Name)
				x.indexExistingTree(ev.Name)
			}
			return
		}
		x.scheduleIndex(ctx, w, rel)
	}
}

// scheduleIndex debounces repeated write events for the same file so
// indexing runs only once the file has been idle for
// writeStabilizeDelay. When await-write-finish is disabled the file is
// indexed immediately.
func (x *Indexer) scheduleIndex(ctx context.Context, w *dirWatcher, rel string) {
	if !x.awaitWriteFinish {
		x.indexOne(rel)
		return
	}

	w.timersMu.Lock()
	defer w.timersMu.Unlock()
	if t, ok := w.timers[rel]; ok {
		t.Reset(writeStabilizeDelay)
		return
	}
	w.timers[rel] = time.AfterFunc(writeStabilizeDelay, func() {
		w.timersMu.Lock()
		delete(w.timers, rel)
		w.timersMu.Unlock()
		if ctx.Err() != nil {
			return
		}
		x.indexOne(rel)
	})
}

func (x *Indexer) indexOne(rel string) {
	if err := x.IndexFile(rel, false); err != nil {
		log.Warn("failed to index watched file", "path", rel, "error", err)
	}
}

// indexExistingTree indexes every file already present under a newly
// created directory (e.g. one moved into the media root with content
// already inside it).
func (x *Indexer) indexExistingTree(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, relErr := filepath.Rel(x.root, p)
		if relErr != nil {
			return nil
		}
		x.indexOne(filepath.ToSlash(rel))
		return nil
	})
}

// removeDescendants deletes every indexed record whose directory is
// rel or a descendant of it, in case rel named a removed directory
// rather than a file.
func (x *Indexer) removeDescendants(rel string) {
	for _, r := range x.store.List() {
		if r.RelativePath == rel {
			continue
		}
		if pathutil.IsDescendant(rel, r.RelativePath) {
			x.store.Remove(r.RelativePath)
		}
	}
}
