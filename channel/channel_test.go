package channel_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/alextanhongpin/await/channel"
	"github.com/alextanhongpin/await/executor"
	"github.com/alextanhongpin/await/future"
	"github.com/alextanhongpin/await/stream"
	"github.com/stretchr/testify/assert"
)

func TestOneshot(t *testing.T) {
	t.Run("send then receive", func(t *testing.T) {
		is := assert.New(t)

		tx, rx := channel.NewOneshot[int]()
		is.Nil(tx.Send(42))

		r := future.Block[future.Result[int]](rx)
		v, err := r.Unwrap()
		is.Nil(err)
		is.Equal(42, v)
	})

	t.Run("receive parks until send", func(t *testing.T) {
		is := assert.New(t)

		tx, rx := channel.NewOneshot[string]()
		go func() {
			time.Sleep(10 * time.Millisecond)
			tx.Send("hello")
		}()

		r := future.Block[future.Result[string]](rx)
		v, err := r.Unwrap()
		is.Nil(err)
		is.Equal("hello", v)
	})

	t.Run("close without send", func(t *testing.T) {
		is := assert.New(t)

		tx, rx := channel.NewOneshot[int]()
		tx.Close()

		r := future.Block[future.Result[int]](rx)
		is.ErrorIs(r.Err, channel.ErrClosed)
	})

	t.Run("second send fails", func(t *testing.T) {
		is := assert.New(t)

		tx, _ := channel.NewOneshot[int]()
		is.Nil(tx.Send(1))
		is.ErrorIs(tx.Send(2), channel.ErrClosed)
	})

	t.Run("close after send keeps the value", func(t *testing.T) {
		is := assert.New(t)

		tx, rx := channel.NewOneshot[int]()
		is.Nil(tx.Send(1))
		tx.Close()

		r := future.Block[future.Result[int]](rx)
		v, err := r.Unwrap()
		is.Nil(err)
		is.Equal(1, v)
	})
}

func TestBounded(t *testing.T) {
	t.Run("panics on a non-positive capacity", func(t *testing.T) {
		is := assert.New(t)

		is.Panics(func() {
			channel.New[int](0)
		})
	})

	t.Run("delivers in send order", func(t *testing.T) {
		is := assert.New(t)

		tx, rx := channel.New[int](10)
		for i := 1; i <= 5; i++ {
			future.Block(tx.Send(i))
		}
		tx.Close()

		vs := future.Block(stream.Collect[int](rx))
		is.Equal([]int{1, 2, 3, 4, 5}, vs)
	})

	t.Run("queued items drain after close", func(t *testing.T) {
		is := assert.New(t)

		tx, rx := channel.New[int](2)
		future.Block(tx.Send(1))
		future.Block(tx.Send(2))
		tx.Close()

		r := future.Block[channel.Received[int]](rx.Recv())
		is.True(r.OK)
		is.Equal(1, r.Value)

		r = future.Block[channel.Received[int]](rx.Recv())
		is.True(r.OK)
		is.Equal(2, r.Value)

		r = future.Block[channel.Received[int]](rx.Recv())
		is.False(r.OK)
	})

	t.Run("send on closed channel panics", func(t *testing.T) {
		is := assert.New(t)

		tx, _ := channel.New[int](1)
		tx.Close()
		is.Panics(func() {
			future.Block(tx.Send(1))
		})
	})

	t.Run("clone keeps the channel open", func(t *testing.T) {
		is := assert.New(t)

		tx, rx := channel.New[int](2)
		tx2 := tx.Clone()
		tx.Close()

		future.Block(tx2.Send(1))
		tx2.Close()

		vs := future.Block(stream.Collect[int](rx))
		is.Equal([]int{1}, vs)
	})

	t.Run("full buffer parks the sender", func(t *testing.T) {
		is := assert.New(t)

		tx, rx := channel.New[int](1)
		future.Block(tx.Send(1))

		woken := make(chan struct{}, 1)
		ctx := future.NewContext(future.WakerFunc(func() {
			select {
			case woken <- struct{}{}:
			default:
			}
		}))
		blocked := tx.Send(2)
		is.False(blocked.Poll(ctx).IsReady())

		// A receive frees the slot and grants it to the parked sender.
		r := future.Block[channel.Received[int]](rx.Recv())
		is.Equal(1, r.Value)

		<-woken
		is.True(blocked.Poll(ctx).IsReady())
	})
}

func TestProducerConsumer(t *testing.T) {
	is := assert.New(t)

	e := executor.New(executor.WithWorkers(4))
	defer e.Close()

	tx, rx := channel.New[string](10)

	producer := stream.ForEach(
		stream.Then(stream.Range(1, 6, 5*time.Millisecond), func(i int) future.Future[struct{}] {
			return tx.Send(fmt.Sprintf("msg %d", i))
		}),
		nil,
	)

	var got []string
	consumer := stream.ForEach(
		stream.Then[string, string](rx, func(msg string) future.Future[string] {
			return future.Map(future.Sleep(3*time.Millisecond), func(time.Duration) string {
				return msg
			})
		}),
		func(msg string) {
			got = append(got, msg)
		},
	)

	hc := executor.Spawn(e, consumer)
	hp := executor.Spawn(e, producer)

	sent, err := hp.Await()
	is.Nil(err)
	is.Equal(5, sent)

	tx.Close()

	received, err := hc.Await()
	is.Nil(err)
	is.Equal(5, received)
	is.Equal([]string{"msg 1", "msg 2", "msg 3", "msg 4", "msg 5"}, got)
}
