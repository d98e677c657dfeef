package future

import "time"

// Timer is a leaf future that becomes ready once a wall-clock deadline
// has passed. The ready value is the actual elapsed duration since
// construction, which may exceed the requested one.
//
// On the first pending poll the timer arms a single background wake
// via [time.AfterFunc]. Dropping the timer before the deadline orphans
// that sleeper; it fires into a waker nobody is listening to anymore,
// which the task state machine treats as a no-op.
type Timer struct {
	start    time.Time
	deadline time.Time
	armed    bool
	done     bool
}

// NewTimer returns a timer that is ready d from now.
func NewTimer(d time.Duration) *Timer {
	now := time.Now()
	return &Timer{start: now, deadline: now.Add(d)}
}

func (t *Timer) Poll(ctx *Context) Poll[time.Duration] {
	if t.done {
		panic("future: timer polled after ready")
	}
	if !time.Now().Before(t.deadline) {
		t.done = true
		return Ready(time.Since(t.start))
	}
	if !t.armed {
		// One wake per suspension: later polls before the deadline
		// find the sleeper already armed.
		t.armed = true
		wake := ctx.Waker().Wake
		time.AfterFunc(time.Until(t.deadline), wake)
	}
	return Pending[time.Duration]()
}

// Sleep returns a future that is ready, with the elapsed duration,
// after at least d.
func Sleep(d time.Duration) Future[time.Duration] {
	return NewTimer(d)
}
