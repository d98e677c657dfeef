package channel

import (
	"sync"

	"github.com/alextanhongpin/await/future"
	"github.com/alextanhongpin/await/stream"
)

// New returns a paired sender and receiver for a bounded
// multi-producer channel with the given capacity. Sends park while the
// buffer is full (backpressure); messages are delivered in send order
// across all producers. The channel closes when the last sender
// closes; queued items remain drainable.
func New[T any](capacity int) (*Sender[T], *Receiver[T]) {
	if capacity < 1 {
		panic("channel: capacity must be at least 1")
	}
	c := &state[T]{capacity: capacity, senders: 1}
	return &Sender[T]{c: c}, &Receiver[T]{c: c}
}

type sendWaiter struct {
	waker   future.Waker
	granted bool
}

type state[T any] struct {
	mu       sync.Mutex
	buf      []T
	capacity int
	// reserved counts buffer slots promised to granted senders that
	// have not re-polled yet.
	reserved int
	senders  int
	closed   bool
	sendq    []*sendWaiter
	recvq    []future.Waker
}

func (c *state[T]) wakeOneReceiver() (w future.Waker) {
	if len(c.recvq) > 0 {
		w = c.recvq[0]
		c.recvq = c.recvq[1:]
	}
	return w
}

// Sender is a sending half. Clone it for additional producers; the
// channel closes once every sender has closed.
type Sender[T any] struct {
	c    *state[T]
	once sync.Once
}

// Clone registers and returns another sender for the same channel.
func (s *Sender[T]) Clone() *Sender[T] {
	c := s.c
	c.mu.Lock()
	c.senders++
	c.mu.Unlock()
	return &Sender[T]{c: c}
}

// Close drops this sender. When the last sender closes, the channel is
// marked closed and parked receivers are woken to observe end of
// stream after draining.
func (s *Sender[T]) Close() {
	s.once.Do(func() {
		c := s.c
		c.mu.Lock()
		c.senders--
		var wakers []future.Waker
		if c.senders == 0 {
			c.closed = true
			wakers = c.recvq
			c.recvq = nil
		}
		c.mu.Unlock()

		for _, w := range wakers {
			w.Wake()
		}
	})
}

// Send returns a future that completes once the value has been
// enqueued. It parks while the buffer is full; parked senders are
// granted freed slots in FIFO order.
func (s *Sender[T]) Send(v T) future.Future[struct{}] {
	return &sendFuture[T]{c: s.c, value: v}
}

type sendFuture[T any] struct {
	c     *state[T]
	value T
	w     *sendWaiter
	done  bool
}

func (f *sendFuture[T]) Poll(ctx *future.Context) future.Poll[struct{}] {
	if f.done {
		panic("channel: send polled after ready")
	}
	c := f.c
	c.mu.Lock()
	if f.w != nil {
		if !f.w.granted {
			f.w.waker = ctx.Waker()
			c.mu.Unlock()
			return future.Pending[struct{}]()
		}
		c.buf = append(c.buf, f.value)
		c.reserved--
		w := c.wakeOneReceiver()
		c.mu.Unlock()
		f.done = true
		if w != nil {
			w.Wake()
		}
		return future.Ready(struct{}{})
	}
	if c.closed {
		c.mu.Unlock()
		panic("channel: send on closed channel")
	}
	if len(c.buf)+c.reserved < c.capacity {
		c.buf = append(c.buf, f.value)
		w := c.wakeOneReceiver()
		c.mu.Unlock()
		f.done = true
		if w != nil {
			w.Wake()
		}
		return future.Ready(struct{}{})
	}
	f.w = &sendWaiter{waker: ctx.Waker()}
	c.sendq = append(c.sendq, f.w)
	c.mu.Unlock()
	return future.Pending[struct{}]()
}

// Receiver is the receiving half. It is both a future factory (Recv)
// and a stream over the delivered values.
type Receiver[T any] struct {
	c *state[T]
}

// Recv returns a future that completes with the next value, or with
// ok=false once the channel is closed and drained.
func (r *Receiver[T]) Recv() future.Future[Received[T]] {
	return &recvFuture[T]{c: r.c}
}

// Received is the outcome of a receive: a value, or ok=false for end
// of stream.
type Received[T any] struct {
	Value T
	OK    bool
}

type recvFuture[T any] struct {
	c    *state[T]
	done bool
}

func (f *recvFuture[T]) Poll(ctx *future.Context) future.Poll[Received[T]] {
	if f.done {
		panic("channel: recv polled after ready")
	}
	v, ok, ready := f.c.poll(ctx)
	if !ready {
		return future.Pending[Received[T]]()
	}
	f.done = true
	return future.Ready(Received[T]{Value: v, OK: ok})
}

// PollNext implements stream.Stream; the receiver yields values until
// the channel is closed and drained.
func (r *Receiver[T]) PollNext(ctx *future.Context) stream.Next[T] {
	v, ok, ready := r.c.poll(ctx)
	switch {
	case !ready:
		return stream.Pending[T]()
	case !ok:
		return stream.Done[T]()
	default:
		return stream.Item(v)
	}
}

func (c *state[T]) poll(ctx *future.Context) (v T, ok, ready bool) {
	c.mu.Lock()
	if len(c.buf) > 0 {
		v = c.buf[0]
		c.buf = c.buf[1:]
		// Hand the freed slot to the oldest parked sender.
		var sw *sendWaiter
		if len(c.sendq) > 0 {
			sw = c.sendq[0]
			c.sendq = c.sendq[1:]
			sw.granted = true
			c.reserved++
		}
		c.mu.Unlock()
		if sw != nil && sw.waker != nil {
			sw.waker.Wake()
		}
		return v, true, true
	}
	if c.closed {
		c.mu.Unlock()
		return v, false, true
	}
	c.recvq = append(c.recvq, ctx.Waker())
	c.mu.Unlock()
	return v, false, false
}
