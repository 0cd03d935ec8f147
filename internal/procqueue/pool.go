package procqueue

import (
	"context"
	"sync"
	"time"

	"github.com/scottdrichards/photrix/internal/logger"
)

var log = logger.With("procqueue")

// Handler runs one job to completion. It must itself respect ctx
// cancellation for long-running work (e.g. an ffmpeg invocation).
type Handler func(ctx context.Context, job *Job) error

// pollInterval is how often an idle worker checks for newly-available
// work; real work is picked up immediately via the broadcast channel,
// this is only the fallback for missed wakeups.
const pollInterval = 250 * time.Millisecond

// WorkerPool runs a fixed number of goroutines pulling jobs from a
// Queue and invoking a Handler for each.
type WorkerPool struct {
	queue   *Queue
	handler Handler
	workers int

	pausedMu sync.RWMutex
	paused   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorkerPool creates a pool of ClampWorkerCount(workers) goroutines
// that will call handler for every job popped off queue.
func NewWorkerPool(queue *Queue, workers int, handler Handler) *WorkerPool {
	return &WorkerPool{
		queue:   queue,
		handler: handler,
		workers: ClampWorkerCount(workers),
	}
}

// Start launches the worker goroutines.
func (p *WorkerPool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)
	wake := p.queue.Subscribe()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(i, wake)
	}
}

// Stop signals every worker to exit and waits for them to finish their
// current job.
func (p *WorkerPool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// Pause stops workers from picking up new jobs; jobs already running
// are left to finish.
func (p *WorkerPool) Pause() {
	p.pausedMu.Lock()
	p.paused = true
	p.pausedMu.Unlock()
}

// Resume re-enables workers to pick up new jobs.
func (p *WorkerPool) Resume() {
	p.pausedMu.Lock()
	p.paused = false
	p.pausedMu.Unlock()
}

func (p *WorkerPool) isPaused() bool {
	p.pausedMu.RLock()
	defer p.pausedMu.RUnlock()
	return p.paused
}

// Paused reports whether the pool is currently paused.
func (p *WorkerPool) Paused() bool { return p.isPaused() }

func (p *WorkerPool) runWorker(id int, wake chan Event) {
	defer p.wg.Done()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-wake:
		case <-ticker.C:
		}

		if p.isPaused() {
			continue
		}

		for {
			job := p.queue.startNext()
			if job == nil {
				break
			}
			p.run(job)
			if p.isPaused() || p.ctx.Err() != nil {
				break
			}
		}
	}
}

func (p *WorkerPool) run(job *Job) {
	key := job.Key()
	if err := p.handler(p.ctx, job); err != nil {
		log.Warn("job failed", "kind", job.Kind, "hash", job.Hash, "variant", job.Variant, "error", err)
		p.queue.Fail(key, err.Error())
		return
	}
	p.queue.Complete(key)
}
