package future

// Map returns a future that applies fn to the value of f once it is
// ready. The child is responsible for the wake when pending.
func Map[T, U any](f Future[T], fn func(T) U) Future[U] {
	return &mapFuture[T, U]{inner: f, fn: fn}
}

type mapFuture[T, U any] struct {
	inner Future[T]
	fn    func(T) U
}

func (m *mapFuture[T, U]) Poll(ctx *Context) Poll[U] {
	if v, ok := m.inner.Poll(ctx).Get(); ok {
		return Ready(m.fn(v))
	}
	return Pending[U]()
}

// Then returns a future that drives f to completion, then drives the
// future produced by fn from its value. Strictly sequential.
func Then[T, U any](f Future[T], fn func(T) Future[U]) Future[U] {
	return &thenFuture[T, U]{first: f, fn: fn}
}

type thenFuture[T, U any] struct {
	first  Future[T]
	fn     func(T) Future[U]
	second Future[U]
}

func (t *thenFuture[T, U]) Poll(ctx *Context) Poll[U] {
	if t.second == nil {
		v, ok := t.first.Poll(ctx).Get()
		if !ok {
			return Pending[U]()
		}
		t.first = nil
		t.second = t.fn(v)
	}
	return t.second.Poll(ctx)
}

// Join returns a future that drives all children concurrently and
// completes with their results in argument order. On every wake all
// unfinished children are re-polled; finished ones are never polled
// again.
func Join[T any](fs ...Future[T]) Future[[]T] {
	return &joinFuture[T]{
		futures: fs,
		results: make([]T, len(fs)),
		left:    len(fs),
	}
}

type joinFuture[T any] struct {
	futures []Future[T]
	results []T
	left    int
}

func (j *joinFuture[T]) Poll(ctx *Context) Poll[[]T] {
	for i, f := range j.futures {
		if f == nil {
			continue
		}
		if v, ok := f.Poll(ctx).Get(); ok {
			j.results[i] = v
			j.futures[i] = nil
			j.left--
		}
	}
	if j.left == 0 {
		return Ready(j.results)
	}
	return Pending[[]T]()
}
