// Package derivative produces and caches the display-ready artifacts
// served alongside an original file: resized images, video poster
// thumbnails, and HLS segments. Every artifact is keyed by SourceHash,
// a digest of the source file's relative path: a file changed in place
// keeps its key, so existing cache entries for it are served until they
// are evicted or deleted. The cache can be pruned freely since every
// entry is regenerable on demand.
package derivative

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/scottdrichards/photrix/internal/logger"
)

var log = logger.With("derivative")

// Cache lays out the derivative cache on disk and evicts
// least-recently-used entries once the configured byte budget is
// exceeded. A maxBytes of zero disables eviction entirely.
type Cache struct {
	root     string
	maxBytes int64

	mu        sync.Mutex
	totalSize int64
	lru       *lru.Cache[string, int64] // relative path -> size, ordered least to most recently used
}

// NewCache creates a Cache rooted at root. maxBytes of zero means
// unbounded.
func NewCache(root string, maxBytes int64) *Cache {
	c := &Cache{root: root, maxBytes: maxBytes}
	// The entry cap (1<<20) is set far above any expected entry count,
	// so eviction is normally driven by evictUntilUnderBudget. OnEvict
	// updates the size bookkeeping and removes the entry from disk.
	l, _ := lru.NewWithEvict(1<<20, func(relPath string, size int64) {
		c.totalSize -= size
		if err := os.RemoveAll(filepath.Join(c.root, relPath)); err != nil && !os.IsNotExist(err) {
			log.Warn("evict failed", "path", relPath, "error", err)
		}
	})
	c.lru = l
	return c
}

// ImagePath returns the cache path for a resized image derivative.
func (c *Cache) ImagePath(hash string, height int) string {
	return filepath.Join(c.root, "images", hash, strconv.Itoa(height)+".jpg")
}

// VideoThumbPath returns the cache path for a video poster thumbnail.
func (c *Cache) VideoThumbPath(hash string, height int) string {
	return filepath.Join(c.root, "videothumbs", hash, strconv.Itoa(height)+".jpg")
}

// HLSDir returns the cache directory for a single-stream HLS
// rendition at height.
func (c *Cache) HLSDir(hash string, height int) string {
	return filepath.Join(c.root, "hls", hash, strconv.Itoa(height))
}

// HLSMultiDir returns the cache directory for a source's multi-bitrate
// HLS ladder (master playlist plus one subdirectory per rendition).
func (c *Cache) HLSMultiDir(hash string) string {
	return filepath.Join(c.root, "hls-mbr", hash)
}

// Exists reports whether a cache path already holds a file, and if so
// marks it as recently used.
func (c *Cache) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	c.touch(path, info.Size())
	return true
}

// Touch registers path (an absolute path returned by one of the
// *Path/*Dir helpers) as freshly written with the given size, then
// evicts older entries if the cache now exceeds its byte budget.
func (c *Cache) Touch(path string, size int64) {
	c.touch(path, size)
	c.evictUntilUnderBudget()
}

func (c *Cache) touch(path string, size int64) {
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.lru.Peek(rel); ok {
		c.totalSize -= old
	}
	c.lru.Add(rel, size)
	c.totalSize += size
}

func (c *Cache) evictUntilUnderBudget() {
	if c.maxBytes <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.totalSize > c.maxBytes {
		_, _, ok := c.lru.RemoveOldest()
		if !ok {
			return
		}
	}
}

// TotalBytes reports the cache's current tracked size.
func (c *Cache) TotalBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalSize
}
