package enrichment

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"call-recorder/pkg/utils"
)

// JobFunc is the unit of work a Dispatcher runs, normally Pipeline.Run.
type JobFunc func(ctx context.Context, callID, transcript string)

type job struct {
	callID     string
	transcript string
}

// DispatcherOptions bound the background enrichment fan-out.
type DispatcherOptions struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration

	// Optional cross-instance cap. When Redis is nil the dispatcher is
	// bounded only by its local worker pool.
	Redis    *redis.Client
	CapLimit int
}

const (
	defaultJobTimeout = 2 * time.Minute
	capKey            = "enrichment:inflight"
	capRetryDelay     = 500 * time.Millisecond
)

// Dispatcher runs enrichment jobs on a fixed worker pool behind a
// buffered queue. Schedule never blocks the caller; a full queue drops
// the job (the call keeps its pending summary until a later callback
// re-triggers enrichment).
type Dispatcher struct {
	run   JobFunc
	queue chan job
	opts  DispatcherOptions
	log   *slog.Logger

	wg sync.WaitGroup

	// mu guards closed so Schedule never races a close of the queue.
	mu     sync.Mutex
	closed bool
}

func NewDispatcher(run JobFunc, opts DispatcherOptions, log *slog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = defaultJobTimeout
	}
	return &Dispatcher{
		run:   run,
		queue: make(chan job, opts.QueueSize),
		opts:  opts,
		log:   log,
	}
}

// Start launches the worker pool.
func (d *Dispatcher) Start() {
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Schedule enqueues a job without blocking. The return value reports
// whether the job was accepted; after Stop every job is rejected.
func (d *Dispatcher) Schedule(callID, transcript string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- job{callID: callID, transcript: transcript}:
		return true
	default:
		return false
	}
}

// Stop closes the queue and drains remaining jobs. Safe to call more
// than once.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.queue {
		d.process(j)
	}
}

func (d *Dispatcher) process(j job) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("enrichment job panicked", "call_id", j.callID, "panic", r)
		}
	}()

	// Detached from the webhook request; the job outlives the response.
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.JobTimeout)
	defer cancel()

	release := d.acquireCap(ctx, j.callID)
	defer release()

	d.run(ctx, j.callID, j.transcript)
}

// acquireCap takes a cross-instance slot when a redis cap is configured.
// Redis trouble never blocks the job; the cap is advisory.
func (d *Dispatcher) acquireCap(ctx context.Context, callID string) (release func()) {
	release = func() {}
	if d.opts.Redis == nil || d.opts.CapLimit <= 0 {
		return release
	}

	for {
		ok, err := utils.AcquireConcurrencyCap(ctx, d.opts.Redis, capKey, d.opts.CapLimit, d.opts.JobTimeout)
		if err != nil {
			d.log.Warn("enrichment cap acquire failed, proceeding uncapped", "call_id", callID, "err", err)
			return release
		}
		if ok {
			return func() {
				if err := utils.ReleaseConcurrencyCap(context.Background(), d.opts.Redis, capKey); err != nil {
					d.log.Warn("enrichment cap release failed", "err", err)
				}
			}
		}
		select {
		case <-ctx.Done():
			d.log.Warn("enrichment cap wait timed out, proceeding uncapped", "call_id", callID)
			return release
		case <-time.After(capRetryDelay):
		}
	}
}
