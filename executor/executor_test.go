package executor_test

import (
	"testing"
	"time"

	"github.com/alextanhongpin/await/executor"
	"github.com/alextanhongpin/await/future"
	"github.com/stretchr/testify/assert"
)

func TestSpawn(t *testing.T) {
	t.Run("await returns the value", func(t *testing.T) {
		is := assert.New(t)

		e := executor.New(executor.WithWorkers(2))
		defer e.Close()

		v, err := executor.Spawn(e, future.Resolved(42)).Await()
		is.Nil(err)
		is.Equal(42, v)
	})

	t.Run("tasks suspend and resume", func(t *testing.T) {
		is := assert.New(t)

		e := executor.New(executor.WithWorkers(2))
		defer e.Close()

		elapsed, err := executor.Spawn(e, future.Sleep(20*time.Millisecond)).Await()
		is.Nil(err)
		is.GreaterOrEqual(elapsed, 20*time.Millisecond)
	})

	t.Run("many tasks", func(t *testing.T) {
		is := assert.New(t)

		e := executor.New(executor.WithWorkers(4))
		defer e.Close()

		n := 100
		handles := make([]*executor.Handle[int], 0, n)
		for i := range n {
			f := future.Map[int](future.NewCounter(3), func(int) int {
				return i * 2
			})
			handles = append(handles, executor.Spawn(e, f))
		}
		for i, h := range handles {
			v, err := h.Await()
			is.Nil(err)
			is.Equal(i*2, v)
		}
	})

	t.Run("panic becomes a join error", func(t *testing.T) {
		is := assert.New(t)

		e := executor.New(executor.WithWorkers(2))
		defer e.Close()

		f := future.Func[int](func(ctx *future.Context) future.Poll[int] {
			panic("boom")
		})
		_, err := executor.Spawn(e, f).Await()
		is.ErrorIs(err, executor.ErrPanicked)
		is.Contains(err.Error(), "boom")
	})

	t.Run("panicked task does not stop the workers", func(t *testing.T) {
		is := assert.New(t)

		e := executor.New(executor.WithWorkers(1))
		defer e.Close()

		f := future.Func[int](func(ctx *future.Context) future.Poll[int] {
			panic("boom")
		})
		_, err := executor.Spawn(e, f).Await()
		is.Error(err)

		v, err := executor.Spawn(e, future.Resolved(1)).Await()
		is.Nil(err)
		is.Equal(1, v)
	})

	t.Run("spawn after close is rejected", func(t *testing.T) {
		is := assert.New(t)

		e := executor.New(executor.WithWorkers(1))
		is.Nil(e.Close())

		_, err := executor.Spawn(e, future.Resolved(1)).Await()
		is.ErrorIs(err, executor.ErrClosed)
	})
}

func TestHandle(t *testing.T) {
	t.Run("await timeout", func(t *testing.T) {
		is := assert.New(t)

		e := executor.New(executor.WithWorkers(2))
		defer e.Close()

		h := executor.Spawn(e, future.Sleep(100*time.Millisecond))
		_, err := h.AwaitTimeout(10 * time.Millisecond)
		is.ErrorIs(err, future.ErrTimeout)

		// The task keeps running.
		elapsed, err := h.Await()
		is.Nil(err)
		is.GreaterOrEqual(elapsed, 100*time.Millisecond)
	})

	t.Run("handle composes as a future", func(t *testing.T) {
		is := assert.New(t)

		e := executor.New(executor.WithWorkers(2))
		defer e.Close()

		h := executor.Spawn(e, future.Map(future.Sleep(10*time.Millisecond), func(time.Duration) int {
			return 21
		}))
		f := future.Map[future.Result[int]](h, func(r future.Result[int]) int {
			return r.Data * 2
		})
		v, err := executor.Spawn(e, f).Await()
		is.Nil(err)
		is.Equal(42, v)
	})
}

func TestMetrics(t *testing.T) {
	is := assert.New(t)

	m := new(executor.AtomicMetricsCollector)
	e := executor.New(executor.WithWorkers(2), executor.WithMetrics(m))

	n := 10
	handles := make([]*executor.Handle[int], 0, n)
	for range n {
		handles = append(handles, executor.Spawn[int](e, future.NewCounter(2)))
	}
	for _, h := range handles {
		v, err := h.Await()
		is.Nil(err)
		is.Equal(2, v)
	}
	is.Nil(e.Close())

	got := m.GetMetrics()
	is.Equal(int64(n), got.Spawned)
	is.Equal(int64(n), got.Completed)
	is.Equal(int64(0), got.Panicked)
	// Two yields and a final poll per task.
	is.GreaterOrEqual(got.Polls, int64(3*n))
	is.GreaterOrEqual(got.Wakes, int64(2*n))
	is.NotEmpty(got.String())
}

func TestID(t *testing.T) {
	is := assert.New(t)

	e := executor.New(executor.WithWorkers(1))
	defer e.Close()
	is.NotEmpty(e.ID())
}
