package future

import "time"

// Timeout returns a future that races f against a timer. It completes
// with the inner value if f finishes within d, or with [ErrTimeout]
// otherwise. On timeout the inner future is dropped; background work
// it spawned may run to completion but its result is discarded.
func Timeout[T any](d time.Duration, f Future[T]) Future[Result[T]] {
	return &timeoutFuture[T]{inner: f, timer: NewTimer(d)}
}

type timeoutFuture[T any] struct {
	inner Future[T]
	timer *Timer
	done  bool
}

func (t *timeoutFuture[T]) Poll(ctx *Context) Poll[Result[T]] {
	if t.done {
		panic("future: timeout polled after ready")
	}
	if v, ok := t.inner.Poll(ctx).Get(); ok {
		t.done = true
		return Ready(Result[T]{Data: v})
	}
	if _, ok := t.timer.Poll(ctx).Get(); ok {
		t.done = true
		t.inner = nil
		return Ready(Result[T]{Err: ErrTimeout})
	}
	return Pending[Result[T]]()
}
