package indexer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scottdrichards/photrix/internal/metadata"
	"github.com/scottdrichards/photrix/internal/mimetype"
	"github.com/scottdrichards/photrix/internal/record"
)

const progressInterval = 200 * time.Millisecond

// runScan performs the discovery walk followed by the bounded
// metadata-extraction phase, reporting throttled progress throughout.
// Per-file failures are logged and counted but never abort the scan.
func (x *Indexer) runScan(ctx context.Context) {
	start := time.Now()
	x.mu.Lock()
	x.stats = Stats{Scanning: true, StartedAt: start}
	x.mu.Unlock()

	paths := x.discover(ctx)

	total := int64(len(paths))
	var infoProcessed, processed, failed int64
	lastReport := time.Now()
	var reportMu sync.Mutex

	report := func(force bool) {
		reportMu.Lock()
		defer reportMu.Unlock()
		if !force && time.Since(lastReport) < progressInterval {
			return
		}
		lastReport = time.Now()
		p := atomic.LoadInt64(&processed)
		x.mu.Lock()
		x.stats.InfoProcessed = int(atomic.LoadInt64(&infoProcessed))
		x.stats.Processed = int(p)
		x.stats.Failed = int(atomic.LoadInt64(&failed))
		x.stats.Total = int(total)
		cb := x.progress
		x.mu.Unlock()
		if cb != nil {
			cb(int(p), int(total))
		}
	}

	sem := make(chan struct{}, x.workers)
	var wg sync.WaitGroup
	for _, relPath := range paths {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(relPath string) {
			defer wg.Done()
			defer func() { <-sem }()

			onInfo := func() {
				atomic.AddInt64(&infoProcessed, 1)
				report(false)
			}
			if err := x.indexFile(relPath, true, onInfo); err != nil {
				atomic.AddInt64(&failed, 1)
				log.Warn("failed to index file", "path", relPath, "error", err)
			}
			atomic.AddInt64(&processed, 1)
			report(false)
		}(relPath)
	}
	wg.Wait()
	report(true)

	x.mu.Lock()
	x.stats.Scanning = false
	x.stats.EndedAt = time.Now()
	x.mu.Unlock()

	log.Info("scan complete",
		"total", total, "processed", atomic.LoadInt64(&processed), "failed", atomic.LoadInt64(&failed),
		"elapsed", time.Since(start))
}

// discover walks the media root and seeds every non-hidden regular
// file as a Discovered-stage record, returning the relative paths found
// so the processing phase can promote them to Full. Directory walk
// errors for individual entries are logged and skipped rather than
// aborting the whole walk.
func (x *Indexer) discover(ctx context.Context) []string {
	var paths []string
	err := filepath.WalkDir(x.root, func(p string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if err != nil {
			log.Warn("walk error", "path", p, "error", err)
			return nil
		}
		if d.IsDir() {
			if p != x.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		rel, relErr := filepath.Rel(x.root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if x.store.Get(rel) == nil {
			x.store.Upsert(record.NewDiscovered(rel, mimetype.ForPath(p)))
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		log.Warn("discovery walk failed", "root", x.root, "error", err)
	}
	return paths
}

// IndexFile stats, and if the file is new or changed (or
// skipIfUnchanged is false), extracts metadata for the record at
// relativePath, promoting it to the Full stage. A file whose size and
// modification time match the already-indexed Full record is left
// untouched when skipIfUnchanged is true.
func (x *Indexer) IndexFile(relativePath string, skipIfUnchanged bool) error {
	return x.indexFile(relativePath, skipIfUnchanged, nil)
}

// indexFile is IndexFile's core, with an optional onInfo hook fired
// once the stat+MIME stage completes (before the slower metadata
// extraction), so runScan can report per-stage progress.
func (x *Indexer) indexFile(relativePath string, skipIfUnchanged bool, onInfo func()) error {
	absPath, err := x.AbsPath(relativePath)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}
	if onInfo != nil {
		onInfo()
	}

	if skipIfUnchanged {
		if existing := x.store.Get(relativePath); existing != nil && existing.IsFull() {
			if existing.Size == info.Size() && existing.DateModified != nil && existing.DateModified.Equal(info.ModTime()) {
				return nil
			}
		}
	}

	mt := mimetype.ForPath(absPath)
	now := time.Now().UTC()
	modTime := info.ModTime().UTC()

	r := &record.Record{
		RelativePath:  relativePath,
		Directory:     dirOf(relativePath),
		Name:          filepath.Base(relativePath),
		Size:          info.Size(),
		MimeType:      mt,
		DateModified:  &modTime,
		LastIndexedAt: &now,
	}
	if created, err := creationTime(absPath, info); err == nil {
		r.DateCreated = &created
	} else {
		r.DateCreated = &modTime
	}

	md, _, _ := x.extractGroup.Do(relativePath, func() (any, error) {
		return x.extractMetadata(absPath, mt), nil
	})
	r.Metadata = md.(*record.Metadata)

	x.store.Upsert(r)
	return nil
}

func (x *Indexer) extractMetadata(absPath, mimeType string) *record.Metadata {
	switch {
	case mimetype.IsImage(mimeType):
		if img := metadata.ExtractImage(absPath); img != nil {
			return &record.Metadata{Image: img}
		}
		return &record.Metadata{Image: &record.ImageMetadata{}}
	case mimetype.IsVideo(mimeType):
		if vid := x.videoProber.ExtractVideo(absPath); vid != nil {
			return &record.Metadata{Video: vid}
		}
		return &record.Metadata{Video: &record.VideoMetadata{}}
	default:
		return &record.Metadata{}
	}
}

// RemoveFile deletes the record at relativePath from the index.
func (x *Indexer) RemoveFile(relativePath string) {
	x.store.Remove(relativePath)
}

func dirOf(relativePath string) string {
	d := filepath.ToSlash(filepath.Dir(relativePath))
	if d == "." {
		return ""
	}
	return d
}
