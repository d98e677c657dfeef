package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/alextanhongpin/await/channel"
	"github.com/alextanhongpin/await/executor"
	"github.com/alextanhongpin/await/future"
	"github.com/alextanhongpin/await/semaphore"
	"github.com/alextanhongpin/await/stream"
)

type scenarioFunc func(e *executor.Executor, cfg Config, log *slog.Logger) error

// scenarioTimers joins two timers on one task. The wall clock tracks
// the longer timer, not the sum.
func scenarioTimers(e *executor.Executor, cfg Config, log *slog.Logger) error {
	start := time.Now()
	h := executor.Spawn(e, future.Join[time.Duration](
		future.NewTimer(cfg.Timer.Long.D()),
		future.NewTimer(cfg.Timer.Short.D()),
	))
	elapsed, err := h.Await()
	if err != nil {
		return err
	}
	log.Info("timers joined",
		slog.Duration("long", elapsed[0]),
		slog.Duration("short", elapsed[1]),
		slog.Duration("wall", time.Since(start)),
	)
	return nil
}

// scenarioCollect doubles a lazy range and collects it.
func scenarioCollect(e *executor.Executor, cfg Config, log *slog.Logger) error {
	h := executor.Spawn(e, stream.Collect(
		stream.Map(stream.Range(1, 6, 0), func(i int) int {
			return i * 2
		}),
	))
	vs, err := h.Await()
	if err != nil {
		return err
	}
	log.Info("range collected", slog.Any("values", vs))
	return nil
}

// scenarioPipeline keeps even numbers with an asynchronous predicate,
// runs a bounded window of in-flight futures, and takes the first few
// completions in whatever order they finish.
func scenarioPipeline(e *executor.Executor, cfg Config, log *slog.Logger) error {
	evens := stream.FilterAsync(
		stream.Range(cfg.Pipeline.From, cfg.Pipeline.To, 0),
		func(v int) future.Future[bool] {
			// The counter yields control before answering.
			return future.Map[int](future.NewCounter(2), func(int) bool {
				return v%2 == 0
			})
		},
	)
	work := stream.Map(evens, func(v int) future.Future[int] {
		d := cfg.Pipeline.Latency.D() * time.Duration(v%3+1)
		return future.Map(future.Sleep(d), func(time.Duration) int {
			return v
		})
	})
	h := executor.Spawn(e, stream.Collect(
		stream.Take(stream.BufferUnordered(work, cfg.Pipeline.Buffer), cfg.Pipeline.Take),
	))
	vs, err := h.Await()
	if err != nil {
		return err
	}
	log.Info("pipeline finished",
		slog.Any("values", vs),
		slog.Int("buffer", cfg.Pipeline.Buffer),
	)
	return nil
}

// scenarioChannel runs a producer and a slower consumer over a bounded
// channel. The consumer sees every message in send order.
func scenarioChannel(e *executor.Executor, cfg Config, log *slog.Logger) error {
	tx, rx := channel.New[string](cfg.Channel.Capacity)

	producer := stream.ForEach(
		stream.Then(
			stream.Range(1, cfg.Channel.Messages+1, cfg.Channel.SendGap.D()),
			func(i int) future.Future[struct{}] {
				return tx.Send(fmt.Sprintf("消息 %d", i))
			},
		),
		nil,
	)
	consumer := stream.ForEach(
		stream.Then[string, string](rx, func(msg string) future.Future[string] {
			return future.Map(future.Sleep(cfg.Channel.RecvDelay.D()), func(time.Duration) string {
				return msg
			})
		}),
		func(msg string) {
			log.Info("received", slog.String("msg", msg))
		},
	)

	hc := executor.Spawn(e, consumer)
	hp := executor.Spawn(e, producer)

	sent, err := hp.Await()
	if err != nil {
		return err
	}
	tx.Close()
	got, err := hc.Await()
	if err != nil {
		return err
	}
	log.Info("channel drained", slog.Int("sent", sent), slog.Int("received", got))
	return nil
}

// scenarioTimeout races the same slow work against a short and a long
// deadline.
func scenarioTimeout(e *executor.Executor, cfg Config, log *slog.Logger) error {
	short, err := executor.Spawn(e,
		future.Timeout[time.Duration](cfg.Timeout.Short.D(), future.Sleep(cfg.Timeout.Work.D())),
	).Await()
	if err != nil {
		return err
	}
	if !errors.Is(short.Err, future.ErrTimeout) {
		return fmt.Errorf("expected timeout, got %v", short.Err)
	}
	log.Info("short deadline", slog.String("result", short.Err.Error()))

	long, err := executor.Spawn(e,
		future.Timeout[time.Duration](cfg.Timeout.Long.D(), future.Sleep(cfg.Timeout.Work.D())),
	).Await()
	if err != nil {
		return err
	}
	elapsed, err := long.Unwrap()
	if err != nil {
		return err
	}
	log.Info("long deadline", slog.Duration("elapsed", elapsed))
	return nil
}

// scenarioSemaphore runs more tasks than permits. With two permits and
// five tasks holding for 100ms the batch takes three rounds.
func scenarioSemaphore(e *executor.Executor, cfg Config, log *slog.Logger) error {
	sem := semaphore.New(cfg.Semaphore.Permits)
	start := time.Now()

	handles := make([]*executor.Handle[time.Duration], 0, cfg.Semaphore.Tasks)
	for i := range cfg.Semaphore.Tasks {
		id := i + 1
		f := future.Then(sem.Acquire(), func(p *semaphore.Permit) future.Future[time.Duration] {
			log.Info("permit acquired", slog.Int("task", id))
			return future.Map(future.Sleep(cfg.Semaphore.Hold.D()), func(d time.Duration) time.Duration {
				p.Release()
				return d
			})
		})
		handles = append(handles, executor.Spawn(e, f))
	}
	for _, h := range handles {
		if _, err := h.Await(); err != nil {
			return err
		}
	}
	log.Info("semaphore done",
		slog.Int("tasks", cfg.Semaphore.Tasks),
		slog.Int("permits", cfg.Semaphore.Permits),
		slog.Duration("wall", time.Since(start)),
	)
	return nil
}

// scenarioFetch fans out simulated requests on the blocking pool and
// joins the responses.
func scenarioFetch(e *executor.Executor, cfg Config, log *slog.Logger) error {
	fs := make([]future.Future[future.Result[string]], 0, cfg.Fetch.URLs)
	for i := range cfg.Fetch.URLs {
		url := fmt.Sprintf("https://api.example.com/items/%d", i+1)
		latency := cfg.Fetch.Latency.D() + time.Duration(i)*10*time.Millisecond
		fs = append(fs, future.Blocking(func() (string, error) {
			time.Sleep(latency)
			return fmt.Sprintf("%s: 200 OK", url), nil
		}))
	}
	start := time.Now()
	results, err := executor.Spawn(e, future.Join(fs...)).Await()
	if err != nil {
		return err
	}
	for _, r := range results {
		body, err := r.Unwrap()
		if err != nil {
			return err
		}
		log.Info("fetched", slog.String("body", body))
	}
	log.Info("fetch joined", slog.Duration("wall", time.Since(start)))
	return nil
}

// scenarioFile writes a file on the blocking pool, then reads it back.
func scenarioFile(e *executor.Executor, cfg Config, log *slog.Logger) error {
	path := filepath.Join(os.TempDir(), "await-demo-"+uuid.NewString()+".txt")
	defer os.Remove(path)

	data := []byte("hello from the blocking pool\n")
	f := future.Then(
		future.Blocking(func() (int, error) {
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return 0, err
			}
			return len(data), nil
		}),
		func(wrote future.Result[int]) future.Future[future.Result[string]] {
			if wrote.IsError() {
				return future.Resolved(future.Result[string]{Err: wrote.Err})
			}
			return future.Blocking(func() (string, error) {
				b, err := os.ReadFile(path)
				return string(b), err
			})
		},
	)
	r, err := executor.Spawn(e, f).Await()
	if err != nil {
		return err
	}
	content, err := r.Unwrap()
	if err != nil {
		return err
	}
	log.Info("file round trip",
		slog.String("path", path),
		slog.Int("bytes", len(content)),
	)
	return nil
}

// scenarioBatch runs CPU-bound jobs on the blocking pool, admission
// limited by a semaphore.
func scenarioBatch(e *executor.Executor, cfg Config, log *slog.Logger) error {
	sem := semaphore.New(cfg.Semaphore.Permits)

	fs := make([]future.Future[future.Result[int]], 0, cfg.Batch.Jobs)
	for i := range cfg.Batch.Jobs {
		n := cfg.Batch.Size + i
		fs = append(fs, future.Then(sem.Acquire(), func(p *semaphore.Permit) future.Future[future.Result[int]] {
			return future.Map(
				future.Blocking(func() (int, error) {
					return fib(n), nil
				}),
				func(r future.Result[int]) future.Result[int] {
					p.Release()
					return r
				},
			)
		}))
	}
	start := time.Now()
	results, err := executor.Spawn(e, future.Join(fs...)).Await()
	if err != nil {
		return err
	}
	sums := make([]int, 0, len(results))
	for _, r := range results {
		v, err := r.Unwrap()
		if err != nil {
			return err
		}
		sums = append(sums, v)
	}
	log.Info("batch done",
		slog.Int("jobs", cfg.Batch.Jobs),
		slog.Int("max", slices.Max(sums)),
		slog.Duration("wall", time.Since(start)),
	)
	return nil
}

func fib(n int) int {
	if n < 2 {
		return n
	}
	return fib(n-1) + fib(n-2)
}
