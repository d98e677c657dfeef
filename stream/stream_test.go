package stream_test

import (
	"testing"
	"time"

	"github.com/alextanhongpin/await/future"
	"github.com/alextanhongpin/await/stream"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestOf(t *testing.T) {
	t.Run("collects all values", func(t *testing.T) {
		is := assert.New(t)

		vs := future.Block(stream.Collect(stream.Of(1, 2, 3)))
		is.Equal([]int{1, 2, 3}, vs)
	})

	t.Run("empty stream collects nothing", func(t *testing.T) {
		is := assert.New(t)

		vs := future.Block(stream.Collect(stream.Of[int]()))
		is.Empty(vs)
	})
}

func TestMap(t *testing.T) {
	is := assert.New(t)

	vs := future.Block(stream.Collect(
		stream.Map(stream.Range(1, 6, 0), func(i int) int {
			return i * 2
		}),
	))
	is.Empty(cmp.Diff([]int{2, 4, 6, 8, 10}, vs))
}

func TestFilter(t *testing.T) {
	is := assert.New(t)

	vs := future.Block(stream.Collect(
		stream.Filter(stream.Range(1, 11, 0), func(i int) bool {
			return i%2 == 0
		}),
	))
	is.Equal([]int{2, 4, 6, 8, 10}, vs)
}

func TestFilterAsync(t *testing.T) {
	is := assert.New(t)

	vs := future.Block(stream.Collect(
		stream.FilterAsync(stream.Range(1, 11, 0), func(i int) future.Future[bool] {
			return future.Map(future.Yield(), func(int) bool {
				return i%2 == 0
			})
		}),
	))
	is.Equal([]int{2, 4, 6, 8, 10}, vs)
}

func TestThen(t *testing.T) {
	t.Run("order preserved", func(t *testing.T) {
		is := assert.New(t)

		vs := future.Block(stream.Collect(
			stream.Then(stream.Of(1, 2, 3), func(i int) future.Future[int] {
				return future.Map(future.Yield(), func(int) int {
					return i * 10
				})
			}),
		))
		is.Equal([]int{10, 20, 30}, vs)
	})

	t.Run("one future in flight at a time", func(t *testing.T) {
		is := assert.New(t)

		var inflight, max int
		mk := func(i int) future.Future[int] {
			tm := future.NewTimer(5 * time.Millisecond)
			started := false
			return future.Func[int](func(ctx *future.Context) future.Poll[int] {
				if !started {
					started = true
					inflight++
					if inflight > max {
						max = inflight
					}
				}
				if _, ok := tm.Poll(ctx).Get(); ok {
					inflight--
					return future.Ready(i)
				}
				return future.Pending[int]()
			})
		}

		vs := future.Block(stream.Collect(stream.Then(stream.Of(1, 2, 3), mk)))
		is.Equal([]int{1, 2, 3}, vs)
		is.Equal(1, max)
	})
}

func TestTake(t *testing.T) {
	t.Run("takes the first n", func(t *testing.T) {
		is := assert.New(t)

		vs := future.Block(stream.Collect(stream.Take(stream.Range(1, 100, 0), 3)))
		is.Equal([]int{1, 2, 3}, vs)
	})

	t.Run("upstream is not polled past the nth item", func(t *testing.T) {
		is := assert.New(t)

		var polls int
		upstream := stream.Func[int](func(ctx *future.Context) stream.Next[int] {
			polls++
			return stream.Item(polls)
		})

		vs := future.Block(stream.Collect(stream.Take(upstream, 2)))
		is.Equal([]int{1, 2}, vs)
		is.Equal(2, polls)
	})

	t.Run("short upstream ends early", func(t *testing.T) {
		is := assert.New(t)

		vs := future.Block(stream.Collect(stream.Take(stream.Of(1, 2), 10)))
		is.Equal([]int{1, 2}, vs)
	})
}

func TestRange(t *testing.T) {
	t.Run("delay separates items", func(t *testing.T) {
		is := assert.New(t)

		start := time.Now()
		vs := future.Block(stream.Collect(stream.Range(0, 3, 10*time.Millisecond)))
		is.Equal([]int{0, 1, 2}, vs)
		is.GreaterOrEqual(time.Since(start), 30*time.Millisecond)
	})

	t.Run("panics when polled after done", func(t *testing.T) {
		is := assert.New(t)

		s := stream.Range(0, 1, 0)
		ctx := future.NewContext(nil)
		s.PollNext(ctx)
		is.True(s.PollNext(ctx).IsDone())
		is.Panics(func() {
			s.PollNext(ctx)
		})
	})
}

func TestForEach(t *testing.T) {
	is := assert.New(t)

	var got []int
	n := future.Block(stream.ForEach(stream.Of(1, 2, 3), func(v int) {
		got = append(got, v)
	}))
	is.Equal(3, n)
	is.Equal([]int{1, 2, 3}, got)
}

func TestBufferUnordered(t *testing.T) {
	t.Run("yields every result", func(t *testing.T) {
		is := assert.New(t)

		work := stream.Map(stream.Range(1, 6, 0), func(i int) future.Future[int] {
			// Later items finish first.
			d := time.Duration(6-i) * 5 * time.Millisecond
			return future.Map(future.Sleep(d), func(time.Duration) int {
				return i
			})
		})
		vs := future.Block(stream.Collect(stream.BufferUnordered(work, 5)))
		is.ElementsMatch([]int{1, 2, 3, 4, 5}, vs)
		is.NotEqual([]int{1, 2, 3, 4, 5}, vs)
	})

	t.Run("in flight never exceeds the limit", func(t *testing.T) {
		is := assert.New(t)

		var inflight, max int
		mk := func(i int) future.Future[int] {
			tm := future.NewTimer(5 * time.Millisecond)
			started := false
			return future.Func[int](func(ctx *future.Context) future.Poll[int] {
				if !started {
					started = true
					inflight++
					if inflight > max {
						max = inflight
					}
				}
				if _, ok := tm.Poll(ctx).Get(); ok {
					inflight--
					return future.Ready(i)
				}
				return future.Pending[int]()
			})
		}

		work := stream.Map(stream.Range(1, 11, 0), mk)
		vs := future.Block(stream.Collect(stream.BufferUnordered(work, 3)))
		is.Len(vs, 10)
		is.LessOrEqual(max, 3)
		is.Greater(max, 1)
	})

	t.Run("panics on a non-positive limit", func(t *testing.T) {
		is := assert.New(t)

		is.Panics(func() {
			stream.BufferUnordered(stream.Of[future.Future[int]](), 0)
		})
	})
}
