package queue

import (
	"context"
	"fmt"
	"sync"

	"gallery-server/internal/logging"
)

// Job is one unit of background work. The context is cancelled when the
// runner shuts down; long jobs should check it between steps.
type Job func(ctx context.Context)

// Config holds runner configuration.
type Config struct {
	// Workers is the number of goroutines draining the queue.
	Workers int
	// Size is the buffer of the in-memory job queue. Submit fails once the
	// buffer is full rather than blocking the caller.
	Size int
}

// DefaultConfig returns a configuration suitable for the tile pipeline:
// a couple of workers so independent artworks interleave, with enough
// buffer for their continuations.
func DefaultConfig() Config {
	return Config{Workers: 2, Size: 256}
}

// Runner executes submitted jobs on a fixed pool of worker goroutines.
//
// There is no per-job ordering guarantee between different submitters; the
// tile pipeline keeps batches for one artwork strictly sequential by only
// submitting the next continuation after the previous batch finishes.
type Runner struct {
	jobs   chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	cfg    Config

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewRunner creates a Runner with the given configuration. Zero or negative
// values fall back to the defaults.
func NewRunner(cfg Config) *Runner {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Size <= 0 {
		cfg.Size = def.Size
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		jobs:   make(chan Job, cfg.Size),
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
	}
}

// Start launches the worker goroutines. Safe to call once.
func (r *Runner) Start() {
	r.startOnce.Do(func() {
		for i := 0; i < r.cfg.Workers; i++ {
			r.wg.Add(1)
			go r.worker(i)
		}
		logging.Info("Job runner started (%d workers, queue size %d)", r.cfg.Workers, r.cfg.Size)
	})
}

// Submit enqueues a job. It never blocks: if the queue is full or the
// runner has been stopped, an error is returned and the job is dropped.
func (r *Runner) Submit(job Job) error {
	select {
	case <-r.ctx.Done():
		return fmt.Errorf("job runner is stopped")
	default:
	}

	select {
	case r.jobs <- job:
		return nil
	default:
		return fmt.Errorf("job queue is full (%d pending)", r.cfg.Size)
	}
}

// Stop cancels the run context and waits for in-flight jobs to return.
// Queued jobs that have not started are discarded.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		r.cancel()
		r.wg.Wait()
		logging.Info("Job runner stopped")
	})
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()

	logging.Debug("queue worker %d started", id)
	for {
		select {
		case <-r.ctx.Done():
			logging.Debug("queue worker %d stopping", id)
			return
		case job := <-r.jobs:
			job(r.ctx)
		}
	}
}
