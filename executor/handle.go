package executor

import (
	"sync"
	"time"

	"github.com/alextanhongpin/await/future"
)

// Handle joins a spawned task. The result can be taken synchronously
// with Await, or the handle can itself be polled as a future and
// composed with other futures.
type Handle[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	completed bool
	value     T
	err       error
	wakers    []future.Waker
}

func newHandle[T any]() *Handle[T] {
	return &Handle[T]{done: make(chan struct{})}
}

func (h *Handle[T]) resolve(v T) {
	h.complete(v, nil)
}

func (h *Handle[T]) reject(err error) {
	var zero T
	h.complete(zero, err)
}

func (h *Handle[T]) complete(v T, err error) {
	h.mu.Lock()
	if h.completed {
		h.mu.Unlock()
		return
	}
	h.value = v
	h.err = err
	h.completed = true
	wakers := h.wakers
	h.wakers = nil
	close(h.done)
	h.mu.Unlock()

	for _, w := range wakers {
		w.Wake()
	}
}

// Await blocks until the task completes and returns its result. The
// error is non-nil if the task panicked or the executor was closed.
func (h *Handle[T]) Await() (T, error) {
	<-h.done
	return h.value, h.err
}

// AwaitTimeout is like Await but gives up with future.ErrTimeout after
// d. The task keeps running.
func (h *Handle[T]) AwaitTimeout(d time.Duration) (T, error) {
	select {
	case <-h.done:
		return h.value, h.err
	case <-time.After(d):
		var zero T
		return zero, future.ErrTimeout
	}
}

// Poll implements future.Future so handles compose with combinators.
func (h *Handle[T]) Poll(ctx *future.Context) future.Poll[future.Result[T]] {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.completed {
		return future.Ready(future.Result[T]{Data: h.value, Err: h.err})
	}
	h.wakers = append(h.wakers, ctx.Waker())
	return future.Pending[future.Result[T]]()
}
