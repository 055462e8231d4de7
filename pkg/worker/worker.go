package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/kasuboski/shokoz/pkg/logger"
	"github.com/kasuboski/shokoz/pkg/metrics"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

var (
	ErrQueueFull = errors.New("worker queue full")
	ErrClosed    = errors.New("worker pool closed")
)

// Task is a unit of detached work. Errors and panics are logged by the pool.
type Task func(ctx context.Context) error

type job struct {
	ctx  context.Context
	name string
	task Task
}

// Pool runs submitted tasks on a fixed set of workers. Submit never blocks;
// a task that does not fit in the queue is dropped.
type Pool struct {
	queue   chan job
	wg      conc.WaitGroup
	mu      sync.RWMutex
	closed  bool
	metrics *metrics.Metrics
}

func New(workers, queueSize int, m *metrics.Metrics) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	p := &Pool{
		queue:   make(chan job, queueSize),
		metrics: metrics.OrDiscard(m),
	}
	for range workers {
		p.wg.Go(p.work)
	}
	return p
}

// Submit queues task under name. The task runs with ctx's values but not its
// cancellation, so it outlives the request that triggered it.
func (p *Pool) Submit(ctx context.Context, name string, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.queue <- job{ctx: context.WithoutCancel(ctx), name: name, task: task}:
		p.metrics.SyncQueueDepth.Set(float64(len(p.queue)))
		return nil
	default:
		logger.FromCtx(ctx).Warnw("dropping task, worker queue is full", zap.String("task", name), zap.Int("capacity", cap(p.queue)))
		p.metrics.SyncActions.WithLabelValues(name, "dropped").Inc()
		return ErrQueueFull
	}
}

// Close stops accepting tasks and waits for queued ones to finish
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) work() {
	for j := range p.queue {
		p.metrics.SyncQueueDepth.Set(float64(len(p.queue)))
		p.run(j)
	}
}

func (p *Pool) run(j job) {
	log := logger.FromCtx(j.ctx)

	var err error
	var catcher panics.Catcher
	catcher.Try(func() {
		err = j.task(j.ctx)
	})

	if r := catcher.Recovered(); r != nil {
		log.Errorw("task panicked", zap.String("task", j.name), zap.Error(r.AsError()), zap.ByteString("stack", r.Stack))
		p.metrics.SyncActions.WithLabelValues(j.name, "panic").Inc()
		return
	}
	if err != nil {
		log.Warnw("task failed", zap.String("task", j.name), zap.Error(err))
		p.metrics.SyncActions.WithLabelValues(j.name, "error").Inc()
		return
	}
	p.metrics.SyncActions.WithLabelValues(j.name, "ok").Inc()
}
