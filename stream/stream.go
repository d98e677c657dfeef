// Package stream implements pull-based asynchronous sequences on top
// of the poll/wake protocol from package future.
//
// A Stream is the sequence analogue of a future: each PollNext yields
// the next item, pending, or end of sequence. Between items the same
// wake contract applies. After a stream has reported done it must not
// be polled again.
package stream

import "github.com/alextanhongpin/await/future"

type nextState uint8

const (
	statePending nextState = iota
	stateItem
	stateDone
)

// Next is the outcome of a single PollNext.
type Next[T any] struct {
	value T
	state nextState
}

// Item returns an outcome carrying the next item.
func Item[T any](v T) Next[T] {
	return Next[T]{value: v, state: stateItem}
}

// Pending returns a pending outcome.
func Pending[T any]() Next[T] {
	return Next[T]{}
}

// Done returns an end-of-sequence outcome.
func Done[T any]() Next[T] {
	return Next[T]{state: stateDone}
}

// Item returns the item and whether one was yielded.
func (n Next[T]) Item() (T, bool) {
	return n.value, n.state == stateItem
}

// IsDone reports end of sequence.
func (n Next[T]) IsDone() bool {
	return n.state == stateDone
}

// IsPending reports that no item is ready yet.
func (n Next[T]) IsPending() bool {
	return n.state == statePending
}

// A Stream is a possibly unbounded series of items delivered pull-at-
// a-time. PollNext must never block.
type Stream[T any] interface {
	PollNext(ctx *future.Context) Next[T]
}

// The Func type is an adapter to allow the use of ordinary functions
// as a Stream.
type Func[T any] func(ctx *future.Context) Next[T]

func (f Func[T]) PollNext(ctx *future.Context) Next[T] { return f(ctx) }
