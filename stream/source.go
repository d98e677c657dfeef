package stream

import (
	"iter"
	"slices"
	"time"

	"golang.org/x/exp/constraints"

	"github.com/alextanhongpin/await/future"
)

// Range returns a stream yielding each integer in [start, end),
// separated by delay. Each gap is a fresh timer driven through the
// same wake mechanism as any other leaf. A zero delay yields eagerly.
func Range[T constraints.Integer](start, end T, delay time.Duration) Stream[T] {
	return &rangeStream[T]{next: start, end: end, delay: delay}
}

type rangeStream[T constraints.Integer] struct {
	next  T
	end   T
	delay time.Duration
	timer *future.Timer
	done  bool
}

func (r *rangeStream[T]) PollNext(ctx *future.Context) Next[T] {
	if r.done {
		panic("stream: range polled after done")
	}
	if r.next >= r.end {
		r.done = true
		return Done[T]()
	}
	if r.delay > 0 {
		if r.timer == nil {
			r.timer = future.NewTimer(r.delay)
		}
		if _, ok := r.timer.Poll(ctx).Get(); !ok {
			return Pending[T]()
		}
		r.timer = nil
	}
	v := r.next
	r.next++
	return Item(v)
}

// FromSeq adapts an eager iterator into a stream that never returns
// pending.
func FromSeq[T any](seq iter.Seq[T]) Stream[T] {
	next, stop := iter.Pull(seq)
	return &seqStream[T]{next: next, stop: stop}
}

// Of returns a stream over the given values.
func Of[T any](vs ...T) Stream[T] {
	return FromSeq(slices.Values(vs))
}

type seqStream[T any] struct {
	next func() (T, bool)
	stop func()
	done bool
}

func (s *seqStream[T]) PollNext(ctx *future.Context) Next[T] {
	if s.done {
		panic("stream: sequence polled after done")
	}
	v, ok := s.next()
	if !ok {
		s.done = true
		s.stop()
		return Done[T]()
	}
	return Item(v)
}
