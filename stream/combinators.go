package stream

import "github.com/alextanhongpin/await/future"

// Map applies fn to each upstream item. Order and endedness are
// preserved; fn is synchronous.
func Map[T, U any](s Stream[T], fn func(T) U) Stream[U] {
	return Func[U](func(ctx *future.Context) Next[U] {
		n := s.PollNext(ctx)
		if v, ok := n.Item(); ok {
			return Item(fn(v))
		}
		if n.IsDone() {
			return Done[U]()
		}
		return Pending[U]()
	})
}

// Filter drops upstream items for which pred is false. Order is
// preserved.
func Filter[T any](s Stream[T], pred func(T) bool) Stream[T] {
	return Func[T](func(ctx *future.Context) Next[T] {
		for {
			n := s.PollNext(ctx)
			v, ok := n.Item()
			if !ok {
				return n
			}
			if pred(v) {
				return Item(v)
			}
		}
	})
}

// FilterAsync drops upstream items for which the future produced by
// pred resolves false. The predicate for one item is driven to
// completion before the next upstream item is requested.
func FilterAsync[T any](s Stream[T], pred func(T) future.Future[bool]) Stream[T] {
	return &filterAsync[T]{upstream: s, pred: pred}
}

type filterAsync[T any] struct {
	upstream Stream[T]
	pred     func(T) future.Future[bool]

	item     T
	inflight future.Future[bool]
}

func (f *filterAsync[T]) PollNext(ctx *future.Context) Next[T] {
	for {
		if f.inflight != nil {
			keep, ok := f.inflight.Poll(ctx).Get()
			if !ok {
				return Pending[T]()
			}
			f.inflight = nil
			if keep {
				return Item(f.item)
			}
			continue
		}
		n := f.upstream.PollNext(ctx)
		v, ok := n.Item()
		if !ok {
			if n.IsDone() {
				return Done[T]()
			}
			return Pending[T]()
		}
		f.item = v
		f.inflight = f.pred(v)
	}
}

// Then maps each upstream item through fn and drives the produced
// future to completion before requesting the next item. Strictly
// sequential; order is preserved.
func Then[T, U any](s Stream[T], fn func(T) future.Future[U]) Stream[U] {
	return &thenStream[T, U]{upstream: s, fn: fn}
}

type thenStream[T, U any] struct {
	upstream Stream[T]
	fn       func(T) future.Future[U]
	inflight future.Future[U]
}

func (t *thenStream[T, U]) PollNext(ctx *future.Context) Next[U] {
	for {
		if t.inflight != nil {
			v, ok := t.inflight.Poll(ctx).Get()
			if !ok {
				return Pending[U]()
			}
			t.inflight = nil
			return Item(v)
		}
		n := t.upstream.PollNext(ctx)
		v, ok := n.Item()
		if !ok {
			if n.IsDone() {
				return Done[U]()
			}
			return Pending[U]()
		}
		t.inflight = t.fn(v)
	}
}

// Take passes through at most the first n upstream items, then reports
// done. Upstream is not polled past the n-th item.
func Take[T any](s Stream[T], n int) Stream[T] {
	return &takeStream[T]{upstream: s, left: n}
}

type takeStream[T any] struct {
	upstream Stream[T]
	left     int
	done     bool
}

func (t *takeStream[T]) PollNext(ctx *future.Context) Next[T] {
	if t.done {
		panic("stream: take polled after done")
	}
	if t.left <= 0 {
		t.done = true
		return Done[T]()
	}
	n := t.upstream.PollNext(ctx)
	if _, ok := n.Item(); ok {
		t.left--
	} else if n.IsDone() {
		t.done = true
	}
	return n
}

// Collect drives s to end of sequence, accumulating items in arrival
// order.
func Collect[T any](s Stream[T]) future.Future[[]T] {
	return &collectFuture[T]{s: s}
}

type collectFuture[T any] struct {
	s     Stream[T]
	items []T
	done  bool
}

func (c *collectFuture[T]) Poll(ctx *future.Context) future.Poll[[]T] {
	if c.done {
		panic("stream: collect polled after ready")
	}
	for {
		n := c.s.PollNext(ctx)
		if v, ok := n.Item(); ok {
			c.items = append(c.items, v)
			continue
		}
		if n.IsDone() {
			c.done = true
			return future.Ready(c.items)
		}
		return future.Pending[[]T]()
	}
}

// ForEach drives s to end of sequence, calling fn on each item, and
// completes with the item count.
func ForEach[T any](s Stream[T], fn func(T)) future.Future[int] {
	return &forEachFuture[T]{s: s, fn: fn}
}

type forEachFuture[T any] struct {
	s     Stream[T]
	fn    func(T)
	count int
	done  bool
}

func (f *forEachFuture[T]) Poll(ctx *future.Context) future.Poll[int] {
	if f.done {
		panic("stream: for-each polled after ready")
	}
	for {
		n := f.s.PollNext(ctx)
		if v, ok := n.Item(); ok {
			f.count++
			if f.fn != nil {
				f.fn(v)
			}
			continue
		}
		if n.IsDone() {
			f.done = true
			return future.Ready(f.count)
		}
		return future.Pending[int]()
	}
}
