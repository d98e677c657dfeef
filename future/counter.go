package future

// Counter is a leaf future that yields control max times before
// completing with the final count. Each poll does O(1) work, invokes
// the waker, and returns pending: a cooperative yield, not a genuine
// suspension. The scheduler re-enqueues the task without delay.
type Counter struct {
	count int
	max   int
	done  bool
}

// NewCounter returns a counter that completes after max yields.
func NewCounter(max int) *Counter {
	return &Counter{max: max}
}

func (c *Counter) Poll(ctx *Context) Poll[int] {
	if c.done {
		panic("future: counter polled after ready")
	}
	if c.count < c.max {
		c.count++
		// Wake-before-pending: reschedule ourselves immediately.
		ctx.Waker().Wake()
		return Pending[int]()
	}
	c.done = true
	return Ready(c.count)
}

// Yield returns a future that yields control to the scheduler exactly
// once before completing.
func Yield() Future[int] {
	return NewCounter(1)
}
