// Package channel provides one-shot and bounded multi-producer
// channels for handoff between tasks driven through the poll/wake
// protocol.
package channel

import (
	"errors"
	"sync"

	"github.com/alextanhongpin/await/future"
)

var ErrClosed = errors.New("channel: closed")

// NewOneshot returns a paired sender and receiver for a single
// message. The receiver is a future: it completes with the sent value,
// or with [ErrClosed] if the sender closes without sending.
func NewOneshot[T any]() (*OneshotSender[T], *OneshotReceiver[T]) {
	s := &oneshotState[T]{}
	return &OneshotSender[T]{s: s}, &OneshotReceiver[T]{s: s}
}

type oneshotSlot uint8

const (
	oneshotEmpty oneshotSlot = iota
	oneshotSent
	oneshotClosed
)

type oneshotState[T any] struct {
	mu    sync.Mutex
	value T
	slot  oneshotSlot
	waker future.Waker
}

// OneshotSender is the sending half of a one-shot channel.
type OneshotSender[T any] struct {
	s *oneshotState[T]
}

// Send stores the value and wakes a parked receiver. It returns
// [ErrClosed] if the channel already carries a value or was closed.
func (o *OneshotSender[T]) Send(v T) error {
	s := o.s
	s.mu.Lock()
	if s.slot != oneshotEmpty {
		s.mu.Unlock()
		return ErrClosed
	}
	s.value = v
	s.slot = oneshotSent
	w := s.waker
	s.mu.Unlock()

	if w != nil {
		w.Wake()
	}
	return nil
}

// Close marks the channel closed without a value. Closing after a
// successful send is a no-op.
func (o *OneshotSender[T]) Close() {
	s := o.s
	s.mu.Lock()
	if s.slot != oneshotEmpty {
		s.mu.Unlock()
		return
	}
	s.slot = oneshotClosed
	w := s.waker
	s.mu.Unlock()

	if w != nil {
		w.Wake()
	}
}

// OneshotReceiver is the receiving half of a one-shot channel. It
// implements future.Future.
type OneshotReceiver[T any] struct {
	s    *oneshotState[T]
	done bool
}

func (o *OneshotReceiver[T]) Poll(ctx *future.Context) future.Poll[future.Result[T]] {
	if o.done {
		panic("channel: oneshot receiver polled after ready")
	}
	s := o.s
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.slot {
	case oneshotSent:
		o.done = true
		return future.Ready(future.Result[T]{Data: s.value})
	case oneshotClosed:
		o.done = true
		return future.Ready(future.Result[T]{Err: ErrClosed})
	default:
		s.waker = ctx.Waker()
		return future.Pending[future.Result[T]]()
	}
}
