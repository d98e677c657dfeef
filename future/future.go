// Package future implements a readiness-based poll/wake protocol for
// asynchronous values.
//
// A Future is inert: it makes progress only when polled. A poll either
// yields the final value or returns pending after arranging for the
// current task's Waker to be invoked once the future can make progress.
// Each future is owned by exactly one driver (an executor task, or
// [Block]) and is polled by at most one goroutine at a time.
package future

import "errors"

var (
	ErrTimeout = errors.New("future: timeout")
)

// Poll is the outcome of a single poll: either ready with a value, or
// pending.
type Poll[T any] struct {
	value T
	ready bool
}

// Ready returns a ready poll outcome carrying v.
func Ready[T any](v T) Poll[T] {
	return Poll[T]{value: v, ready: true}
}

// Pending returns a pending poll outcome.
func Pending[T any]() Poll[T] {
	return Poll[T]{}
}

// Get returns the value and whether the outcome is ready.
func (p Poll[T]) Get() (T, bool) {
	return p.value, p.ready
}

// IsReady reports whether the outcome is ready.
func (p Poll[T]) IsReady() bool {
	return p.ready
}

// A Waker is a cheaply shareable handle that marks the owning task
// runnable. Invoking it more than once per suspension is allowed;
// redundant wakes coalesce.
type Waker interface {
	Wake()
}

// The WakerFunc type is an adapter to allow the use of ordinary
// functions as a Waker.
type WakerFunc func()

func (f WakerFunc) Wake() { f() }

type nopWaker struct{}

func (nopWaker) Wake() {}

// NopWaker is a Waker that does nothing. Useful as an initial value.
var NopWaker Waker = nopWaker{}

// Context carries the waker of the task currently polling. A leaf that
// returns pending must capture the waker and arrange for exactly one
// wake once it can make progress.
type Context struct {
	waker Waker
}

// NewContext returns a Context bound to w.
func NewContext(w Waker) *Context {
	if w == nil {
		w = NopWaker
	}
	return &Context{waker: w}
}

// Waker returns the wake handle for the current task.
func (c *Context) Waker() Waker {
	return c.waker
}

// A Future represents an asynchronous computation producing a T.
//
// Poll must never block. Once it has returned ready, the future must
// not be polled again; leaf implementations in this package panic on
// violation.
type Future[T any] interface {
	Poll(ctx *Context) Poll[T]
}

// The Func type is an adapter to allow the use of ordinary functions
// as a Future.
type Func[T any] func(ctx *Context) Poll[T]

func (f Func[T]) Poll(ctx *Context) Poll[T] { return f(ctx) }

// Result pairs a value with an error, for futures whose completion can
// fail (timeouts, background work, join handles).
type Result[T any] struct {
	Data T
	Err  error
}

// Unwrap returns the data and error from the result.
func (r Result[T]) Unwrap() (T, error) {
	return r.Data, r.Err
}

// IsError returns true if the result contains an error.
func (r Result[T]) IsError() bool {
	return r.Err != nil
}

// Resolved returns a future that is immediately ready with v.
func Resolved[T any](v T) Future[T] {
	return &resolved[T]{value: v}
}

type resolved[T any] struct {
	value T
	done  bool
}

func (f *resolved[T]) Poll(ctx *Context) Poll[T] {
	if f.done {
		panic("future: polled after ready")
	}
	f.done = true
	return Ready(f.value)
}

// Block drives f to completion on the calling goroutine and returns
// its value. Wakes are delivered through a one-slot channel, so
// redundant wakes coalesce and wake-before-pending (cooperative yield)
// does not spin.
func Block[T any](f Future[T]) T {
	wake := make(chan struct{}, 1)
	ctx := NewContext(WakerFunc(func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	}))
	for {
		if v, ok := f.Poll(ctx).Get(); ok {
			return v
		}
		<-wake
	}
}
