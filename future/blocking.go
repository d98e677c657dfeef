package future

import (
	"fmt"
	"sync"
)

// Blocking returns a future for work that is allowed to block: file
// reads, network calls, CPU-heavy batches. The first poll starts fn on
// its own goroutine; completion is delivered through the wake
// protocol. A panic in fn is recovered into the error slot.
func Blocking[T any](fn func() (T, error)) Future[Result[T]] {
	return &blockingFuture[T]{fn: fn}
}

type blockingFuture[T any] struct {
	fn func() (T, error)

	mu       sync.Mutex
	started  bool
	resolved bool
	res      Result[T]
	waker    Waker

	done bool
}

func (b *blockingFuture[T]) Poll(ctx *Context) Poll[Result[T]] {
	if b.done {
		panic("future: blocking polled after ready")
	}
	b.mu.Lock()
	if b.resolved {
		b.mu.Unlock()
		b.done = true
		return Ready(b.res)
	}
	// The goroutine wakes whichever waker the most recent poll stored.
	b.waker = ctx.Waker()
	if !b.started {
		b.started = true
		go b.run()
	}
	b.mu.Unlock()
	return Pending[Result[T]]()
}

func (b *blockingFuture[T]) run() {
	var res Result[T]
	func() {
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok {
					res.Err = err
				} else {
					res.Err = fmt.Errorf("future: panic occurred: %v", r)
				}
			}
		}()
		res.Data, res.Err = b.fn()
	}()

	b.mu.Lock()
	b.res = res
	b.resolved = true
	w := b.waker
	b.mu.Unlock()

	if w != nil {
		w.Wake()
	}
}
