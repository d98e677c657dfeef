// Package semaphore provides bounded admission control for tasks
// driven through the poll/wake protocol.
package semaphore

import (
	"sync"

	"github.com/alextanhongpin/await/future"
)

// Semaphore holds a fixed number of permits and a FIFO queue of parked
// waiters. The number of permits simultaneously held never exceeds the
// capacity: a released permit is handed directly to the head waiter
// instead of returning to the pool.
type Semaphore struct {
	mu      sync.Mutex
	size    int
	held    int
	waiters []*waiter
}

type waiter struct {
	waker   future.Waker
	granted bool
}

// New returns a semaphore with the given capacity.
func New(n int) *Semaphore {
	if n < 1 {
		panic("semaphore: capacity must be at least 1")
	}
	return &Semaphore{size: n}
}

// Acquire returns a future that completes with a permit once one is
// available. Waiters are granted permits in FIFO order.
func (s *Semaphore) Acquire() future.Future[*Permit] {
	return &acquireFuture{s: s}
}

// TryAcquire takes a permit without waiting. It reports false when the
// semaphore is at capacity.
func (s *Semaphore) TryAcquire() (*Permit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held == s.size {
		return nil, false
	}
	s.held++
	return &Permit{s: s}, true
}

type acquireFuture struct {
	s    *Semaphore
	w    *waiter
	done bool
}

func (f *acquireFuture) Poll(ctx *future.Context) future.Poll[*Permit] {
	if f.done {
		panic("semaphore: acquire polled after ready")
	}
	s := f.s
	s.mu.Lock()
	if f.w != nil {
		if f.w.granted {
			// The releaser's permit was handed over; held is
			// unchanged.
			s.mu.Unlock()
			f.done = true
			return future.Ready(&Permit{s: s})
		}
		f.w.waker = ctx.Waker()
		s.mu.Unlock()
		return future.Pending[*Permit]()
	}
	if s.held < s.size {
		s.held++
		s.mu.Unlock()
		f.done = true
		return future.Ready(&Permit{s: s})
	}
	f.w = &waiter{waker: ctx.Waker()}
	s.waiters = append(s.waiters, f.w)
	s.mu.Unlock()
	return future.Pending[*Permit]()
}

// A Permit represents one unit of capacity. Release returns it;
// releasing more than once is a no-op.
type Permit struct {
	s    *Semaphore
	once sync.Once
}

// Release returns the permit and wakes the head waiter, if any.
func (p *Permit) Release() {
	p.once.Do(func() {
		p.s.release()
	})
}

func (s *Semaphore) release() {
	s.mu.Lock()
	var w *waiter
	if len(s.waiters) > 0 {
		w = s.waiters[0]
		s.waiters = s.waiters[1:]
		w.granted = true
	} else {
		s.held--
	}
	s.mu.Unlock()

	if w != nil && w.waker != nil {
		w.waker.Wake()
	}
}
