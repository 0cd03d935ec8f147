package derivative

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/scottdrichards/photrix/internal/ffmpeg"
	"github.com/scottdrichards/photrix/internal/procqueue"
)

const (
	KindImage      = "image"
	KindVideoThumb = "video_thumb"
	KindHLSSingle  = "hls_single"

	// VariantAllSizes marks a background job that produces every
	// standard image height in one pass.
	VariantAllSizes = "all"
)

// StandardHeights are the image derivative sizes produced by a
// background all-sizes job, matching the set a client may request.
var StandardHeights = []int{160, 320, 640, 1080, 2160}

// Resolver maps a source's relative path to its absolute path on disk.
type Resolver func(relativePath string) (string, error)

// Manager ties the derivative cache, the job queue, and the ffmpeg
// encoder together: it decides what a request needs, submits work at
// the right priority, and blocks callers only on the specific
// derivative they asked for.
type Manager struct {
	cache   *Cache
	queue   *procqueue.Queue
	pool    *procqueue.WorkerPool
	encoder *ffmpeg.Encoder
	resolve Resolver

	mu           sync.Mutex
	sourceByHash map[string]string
}

// NewManager builds a Manager. workers is clamped via
// procqueue.ClampWorkerCount.
func NewManager(cache *Cache, encoder *ffmpeg.Encoder, workers int, resolve Resolver) *Manager {
	m := &Manager{
		cache:        cache,
		queue:        procqueue.NewQueue(),
		encoder:      encoder,
		resolve:      resolve,
		sourceByHash: make(map[string]string),
	}
	m.pool = procqueue.NewWorkerPool(m.queue, workers, m.handle)
	return m
}

// Start begins processing queued jobs.
func (m *Manager) Start(ctx context.Context) { m.pool.Start(ctx) }

// Stop halts the worker pool.
func (m *Manager) Stop() { m.pool.Stop() }

// Pause stops the worker pool from picking up new jobs without losing
// anything already queued; already-running jobs finish normally.
func (m *Manager) Pause() { m.pool.Pause() }

// Resume re-enables the worker pool after Pause.
func (m *Manager) Resume() { m.pool.Resume() }

// Paused reports whether the worker pool is currently paused, used by
// internal/status to surface maintenance state.
func (m *Manager) Paused() bool { return m.pool.Paused() }

func (m *Manager) rememberSource(hash, relativePath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sourceByHash[hash] = relativePath
}

func (m *Manager) sourceFor(hash string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rel, ok := m.sourceByHash[hash]
	return rel, ok
}

// SourceFor exposes the hash -> relative path mapping for callers that
// persist job state alongside the queue (internal/store.Persist).
func (m *Manager) SourceFor(hash string) (string, bool) { return m.sourceFor(hash) }

// Remember records a hash -> relative path mapping without submitting
// any work, used when restoring persisted jobs on startup
// (internal/store.Restore) before resubmitting them.
func (m *Manager) Remember(hash, relativePath string) { m.rememberSource(hash, relativePath) }

// Queue exposes the underlying job queue so callers can wire
// persistence (internal/store.Persist/Restore) or inspect queue depth
// for the status reporter.
func (m *Manager) Queue() *procqueue.Queue { return m.queue }

// RequestImage ensures a resized image derivative exists at height,
// blocking until it is ready, and fires a background job to build the
// rest of the standard sizes so a follow-up request for another size
// doesn't wait on ffmpeg/imaging again.
func (m *Manager) RequestImage(ctx context.Context, relativePath, hash string, height int) (string, error) {
	m.rememberSource(hash, relativePath)

	path := m.cache.ImagePath(hash, height)
	if m.cache.Exists(path) {
		m.submitBackground(KindImage, hash, VariantAllSizes)
		return path, nil
	}

	if err := m.runAndWait(ctx, KindImage, hash, strconv.Itoa(height), procqueue.PriorityUserBlocked); err != nil {
		return "", err
	}
	m.submitBackground(KindImage, hash, VariantAllSizes)
	return path, nil
}

// RequestVideoThumbnail ensures a poster-frame JPEG exists at height,
// blocking until it is ready.
func (m *Manager) RequestVideoThumbnail(ctx context.Context, relativePath, hash string, height int) (string, error) {
	m.rememberSource(hash, relativePath)

	path := m.cache.VideoThumbPath(hash, height)
	if m.cache.Exists(path) {
		return path, nil
	}
	if err := m.runAndWait(ctx, KindVideoThumb, hash, strconv.Itoa(height), procqueue.PriorityUserBlocked); err != nil {
		return "", err
	}
	return path, nil
}

// RequestSingleStreamHLS starts (or joins) a single-stream HLS build
// for height and returns the output directory. It does not itself wait
// for segments to appear; callers use internal/hls.WaitForSegments
// against the returned directory before serving the playlist.
func (m *Manager) RequestSingleStreamHLS(relativePath, hash string, height int) string {
	m.rememberSource(hash, relativePath)
	m.submitBackground(KindHLSSingle, hash, strconv.Itoa(height))
	return m.cache.HLSDir(hash, height)
}

func (m *Manager) submitBackground(kind, hash, variant string) {
	m.queue.Submit(kind, hash, variant, procqueue.PriorityBackground)
}

// runAndWait submits a job at the given priority (promoting an
// existing pending job rather than duplicating it) and blocks until it
// reaches a terminal state or ctx is cancelled.
func (m *Manager) runAndWait(ctx context.Context, kind, hash, variant string, priority procqueue.Priority) error {
	sub := m.queue.Subscribe()
	defer m.queue.Unsubscribe(sub)

	job, _ := m.queue.Submit(kind, hash, variant, priority)
	if job.Status == procqueue.StatusComplete {
		return nil
	}
	if job.Status == procqueue.StatusFailed {
		return fmt.Errorf("derivative: job failed: %s", job.Error)
	}
	key := job.Key()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-sub:
			if ev.Job == nil || ev.Job.Key() != key {
				continue
			}
			switch ev.Job.Status {
			case procqueue.StatusComplete:
				return nil
			case procqueue.StatusFailed:
				return fmt.Errorf("derivative: job failed: %s", ev.Job.Error)
			}
		}
	}
}

// handle is the procqueue.Handler that actually builds a derivative.
func (m *Manager) handle(ctx context.Context, job *procqueue.Job) error {
	relativePath, ok := m.sourceFor(job.Hash)
	if !ok {
		return fmt.Errorf("derivative: unknown source for hash %s", job.Hash)
	}
	sourcePath, err := m.resolve(relativePath)
	if err != nil {
		return err
	}

	switch job.Kind {
	case KindImage:
		if job.Variant == VariantAllSizes {
			for _, h := range StandardHeights {
				out := m.cache.ImagePath(job.Hash, h)
				if m.cache.Exists(out) {
					continue
				}
				size, err := BuildImageDerivative(sourcePath, out, h)
				if err != nil {
					return err
				}
				m.cache.Touch(out, size)
			}
			return nil
		}
		height, err := strconv.Atoi(job.Variant)
		if err != nil {
			return fmt.Errorf("derivative: invalid image variant %q: %w", job.Variant, err)
		}
		out := m.cache.ImagePath(job.Hash, height)
		size, err := BuildImageDerivative(sourcePath, out, height)
		if err != nil {
			return err
		}
		m.cache.Touch(out, size)
		return nil

	case KindVideoThumb:
		height, err := strconv.Atoi(job.Variant)
		if err != nil {
			return fmt.Errorf("derivative: invalid thumbnail variant %q: %w", job.Variant, err)
		}
		out := m.cache.VideoThumbPath(job.Hash, height)
		if err := BuildVideoThumbnail(ctx, m.encoder, sourcePath, out, height); err != nil {
			return err
		}
		if info, statErr := statSize(out); statErr == nil {
			m.cache.Touch(out, info)
		}
		return nil

	case KindHLSSingle:
		height, err := strconv.Atoi(job.Variant)
		if err != nil {
			return fmt.Errorf("derivative: invalid hls variant %q: %w", job.Variant, err)
		}
		outDir := m.cache.HLSDir(job.Hash, height)
		if err := BuildSingleStreamHLS(ctx, m.encoder, sourcePath, outDir, height); err != nil {
			return err
		}
		m.cache.Touch(outDir, dirSize(outDir))
		return nil

	default:
		return fmt.Errorf("derivative: unknown job kind %q", job.Kind)
	}
}
