// Package executor implements a shared-queue worker-pool scheduler
// for futures.
//
// Tasks are spawned onto a fixed pool of workers and run to their next
// suspension point without preemption. A task may resume on a
// different worker than the one that previously polled it; waking a
// parked task is idempotent and redundant wakes coalesce.
package executor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alextanhongpin/await/future"
)

var (
	ErrPanicked = errors.New("executor: task panicked")
	ErrClosed   = errors.New("executor: closed")
)

// Executor runs tasks on parallel workers drawing from a shared
// runnable queue.
type Executor struct {
	id      string
	workers int
	logger  *slog.Logger
	metrics MetricsCollector

	mu     sync.Mutex
	cond   *sync.Cond
	runq   []*task
	closed bool

	g errgroup.Group
}

// Option configures an Executor.
type Option func(*Executor)

// WithWorkers sets the worker count. Defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the logger. Defaults to discard.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithMetrics sets the metrics collector. Defaults to the atomic
// collector.
func WithMetrics(m MetricsCollector) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

// New starts an executor and its workers.
func New(opts ...Option) *Executor {
	e := &Executor{
		id:      uuid.NewString(),
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: new(AtomicMetricsCollector),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cond = sync.NewCond(&e.mu)
	for range e.workers {
		e.g.Go(e.run)
	}
	e.logger.Debug("executor",
		slog.String("event", "start"),
		slog.String("executor_id", e.id),
		slog.Int("workers", e.workers),
	)
	return e
}

// ID returns the executor's identity token.
func (e *Executor) ID() string {
	return e.id
}

// Close stops the workers once the runnable queue has drained. Tasks
// still parked are dropped with their resources; callers should await
// the handles they care about first.
func (e *Executor) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.cond.Broadcast()

	err := e.g.Wait()
	e.logger.Debug("executor",
		slog.String("event", "close"),
		slog.String("executor_id", e.id),
	)
	return err
}

// Spawn enqueues a new task driving f and returns its join handle. The
// handle delivers the task's value, or a join error if the task
// panicked.
func Spawn[T any](e *Executor, f future.Future[T]) *Handle[T] {
	h := newHandle[T]()

	t := &task{exec: e}
	t.ctx = future.NewContext(t)
	t.poll = func(ctx *future.Context) bool {
		p, err := pollRecover(f, ctx)
		if err != nil {
			e.metrics.IncPanicked()
			e.logger.Error("task",
				slog.String("event", "panic"),
				slog.String("executor_id", e.id),
				slog.String("error", err.Error()),
			)
			h.reject(err)
			return true
		}
		if v, ok := p.Get(); ok {
			h.resolve(v)
			return true
		}
		return false
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		h.reject(ErrClosed)
		return h
	}
	e.metrics.IncSpawned()
	t.state.Store(stateRunnable)
	e.runq = append(e.runq, t)
	e.metrics.SetQueueDepth(len(e.runq))
	e.mu.Unlock()
	e.cond.Signal()

	return h
}

func pollRecover[T any](f future.Future[T], ctx *future.Context) (p future.Poll[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()
	p = f.Poll(ctx)
	return
}

func (e *Executor) run() error {
	for {
		t := e.next()
		if t == nil {
			return nil
		}
		e.poll(t)
	}
}

func (e *Executor) next() *task {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(e.runq) == 0 && !e.closed {
		e.cond.Wait()
	}
	if len(e.runq) == 0 {
		return nil
	}
	t := e.runq[0]
	e.runq = e.runq[1:]
	e.metrics.SetQueueDepth(len(e.runq))
	return t
}

func (e *Executor) enqueue(t *task) {
	e.mu.Lock()
	e.runq = append(e.runq, t)
	e.metrics.SetQueueDepth(len(e.runq))
	e.mu.Unlock()
	e.cond.Signal()
}

// poll runs one task to its next suspension point.
func (e *Executor) poll(t *task) {
	// A wake that lands between dequeue and this store observes
	// Runnable and no-ops; the poll below satisfies it.
	t.state.Store(stateRunning)
	e.metrics.IncPolls()

	if done := t.poll(t.ctx); done {
		t.state.Store(stateTerminal)
		e.metrics.IncCompleted()
		return
	}
	if t.state.CompareAndSwap(stateRunning, stateParked) {
		return
	}
	// Woken while running: re-enqueue without delay.
	t.state.Store(stateRunnable)
	e.enqueue(t)
}
