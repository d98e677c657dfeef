package stream

import (
	"slices"

	"github.com/alextanhongpin/await/future"
)

// BufferUnordered drives up to limit futures from the upstream
// concurrently and emits completions as they arrive, in arbitrary
// order. Upstream is polled only while fewer than limit children are
// in flight (backpressure). End of sequence is reported only after
// upstream is done and every in-flight child has completed.
func BufferUnordered[T any](s Stream[future.Future[T]], limit int) Stream[T] {
	if limit < 1 {
		panic("stream: buffer limit must be at least 1")
	}
	return &bufferUnordered[T]{upstream: s, limit: limit}
}

type bufferUnordered[T any] struct {
	upstream Stream[future.Future[T]]
	limit    int

	slots        []future.Future[T]
	ready        []T
	upstreamDone bool
	done         bool
}

func (b *bufferUnordered[T]) PollNext(ctx *future.Context) Next[T] {
	if b.done {
		panic("stream: buffer polled after done")
	}
	if len(b.ready) > 0 {
		return Item(b.pop())
	}

	// Admit new children while there is capacity.
	for !b.upstreamDone && len(b.slots) < b.limit {
		n := b.upstream.PollNext(ctx)
		if f, ok := n.Item(); ok {
			b.slots = append(b.slots, f)
			continue
		}
		if n.IsDone() {
			b.upstreamDone = true
		}
		break
	}

	// Make progress on every slot before reporting pending.
	for i := 0; i < len(b.slots); {
		if v, ok := b.slots[i].Poll(ctx).Get(); ok {
			b.ready = append(b.ready, v)
			b.slots = slices.Delete(b.slots, i, i+1)
			continue
		}
		i++
	}

	if len(b.ready) > 0 {
		return Item(b.pop())
	}
	if b.upstreamDone && len(b.slots) == 0 {
		b.done = true
		return Done[T]()
	}
	return Pending[T]()
}

func (b *bufferUnordered[T]) pop() T {
	v := b.ready[0]
	b.ready = b.ready[1:]
	return v
}
