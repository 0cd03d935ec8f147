// Package indexstore holds the in-memory index of records keyed by
// relative path and persists it as a single debounced JSON snapshot.
package indexstore

import (
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/renameio/v2"

	"github.com/scottdrichards/photrix/internal/logger"
	"github.com/scottdrichards/photrix/internal/record"
)

const defaultDebounce = time.Second

// Store is the in-memory authority for indexed records. Its mutating
// operations appear atomic to readers: Upsert/Remove take a write lock,
// List/Get/Query take a read lock over a map that is always a complete,
// consistent snapshot.
type Store struct {
	path     string
	debounce time.Duration

	recordsMu sync.RWMutex
	records   map[string]*record.Record

	flushMu sync.Mutex

	timerMu sync.Mutex
	timer   *time.Timer
	dirty   bool
	writing bool
}

// New creates a Store backed by the JSON file at path. The file is
// loaded immediately; a missing file starts the store empty.
func New(path string) *Store {
	s := &Store{
		path:     path,
		debounce: defaultDebounce,
		records:  make(map[string]*record.Record),
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("indexstore: read failed, starting empty", "path", s.path, "error", err)
		}
		return
	}

	var recs []*record.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		logger.Warn("indexstore: parse failed, starting empty", "path", s.path, "error", err)
		return
	}

	s.recordsMu.Lock()
	defer s.recordsMu.Unlock()
	for _, r := range recs {
		if r.RelativePath == "" && r.Path != "" {
			r.RelativePath = r.Path
		}
		r.Path = ""
		if r.RelativePath == "" {
			continue
		}
		s.records[r.RelativePath] = r
	}
}

// Upsert replaces the record for its RelativePath and schedules a
// debounced flush.
func (s *Store) Upsert(r *record.Record) {
	s.recordsMu.Lock()
	s.records[r.RelativePath] = r
	s.recordsMu.Unlock()
	s.markDirty()
}

// Remove deletes the record at relativePath, if any, and schedules a
// debounced flush.
func (s *Store) Remove(relativePath string) {
	s.recordsMu.Lock()
	_, existed := s.records[relativePath]
	delete(s.records, relativePath)
	s.recordsMu.Unlock()
	if existed {
		s.markDirty()
	}
}

// Get returns the record at relativePath, or nil if absent.
func (s *Store) Get(relativePath string) *record.Record {
	s.recordsMu.RLock()
	defer s.recordsMu.RUnlock()
	return s.records[relativePath]
}

// List returns every record, sorted by RelativePath.
func (s *Store) List() []*record.Record {
	s.recordsMu.RLock()
	defer s.recordsMu.RUnlock()
	return s.sortedLocked()
}

// sortedLocked must be called with recordsMu held (read or write).
func (s *Store) sortedLocked() []*record.Record {
	out := make([]*record.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RelativePath < out[j].RelativePath
	})
	return out
}

// Close cancels any pending debounce timer and, if the store is dirty,
// flushes synchronously before returning.
func (s *Store) Close() {
	s.timerMu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	wasDirty := s.dirty
	s.dirty = false
	s.timerMu.Unlock()

	if wasDirty {
		if err := s.flushNow(); err != nil {
			logger.Error("indexstore: close-time flush failed", "path", s.path, "error", err)
		}
	}
}

func (s *Store) markDirty() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	s.dirty = true
	if s.writing {
		// onTimer re-checks dirty once its flush finishes and reschedules.
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.onTimer)
	} else {
		s.timer.Reset(s.debounce)
	}
}

func (s *Store) onTimer() {
	s.timerMu.Lock()
	s.timer = nil
	s.dirty = false
	s.writing = true
	s.timerMu.Unlock()

	err := s.flushNow()

	s.timerMu.Lock()
	s.writing = false
	redirty := s.dirty
	s.timerMu.Unlock()

	if err != nil {
		logger.Error("indexstore: flush failed, will retry", "path", s.path, "error", err)
		s.markDirty()
		return
	}
	if redirty {
		s.markDirty()
	}
}

func (s *Store) flushNow() error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.recordsMu.RLock()
	snapshot := s.sortedLocked()
	s.recordsMu.RUnlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	return renameio.WriteFile(s.path, data, 0644)
}
