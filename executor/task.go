package executor

import (
	"sync/atomic"

	"github.com/alextanhongpin/await/future"
)

// Task states. A task is parked when its last poll returned pending
// and no wake has arrived, runnable when queued, running while a
// worker polls it, notified when a wake landed mid-poll, and terminal
// once its top-level future returned ready.
const (
	stateParked int32 = iota
	stateRunnable
	stateRunning
	stateNotified
	stateTerminal
)

type task struct {
	exec  *Executor
	state atomic.Int32
	// poll drives the type-erased top-level future once and reports
	// whether the task is done.
	poll func(ctx *future.Context) bool
	ctx  *future.Context
}

// Wake transitions the task from parked to runnable. It is the waker
// handed to every future the task polls, and is safe for concurrent
// use; redundant wakes coalesce.
func (t *task) Wake() {
	for {
		switch t.state.Load() {
		case stateParked:
			if t.state.CompareAndSwap(stateParked, stateRunnable) {
				t.exec.metrics.IncWakes()
				t.exec.enqueue(t)
				return
			}
		case stateRunning:
			if t.state.CompareAndSwap(stateRunning, stateNotified) {
				t.exec.metrics.IncWakes()
				return
			}
		default:
			// Already queued, already notified, or terminal.
			return
		}
	}
}
