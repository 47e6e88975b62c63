package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limits configures a Controller. Zero values disable the respective limit.
type Limits struct {
	MemoryBytes        int64
	ConcurrentReads    int64
	ReadBytesPerSecond int64
}

// Controller tracks memory reservations and paces backend reads.
type Controller struct {
	limits   Limits
	memory   *semaphore.Weighted
	reserved atomic.Int64
	reads    *semaphore.Weighted
	rate     *rate.Limiter
}

// NewController returns a Controller enforcing l.
func NewController(l Limits) *Controller {
	c := &Controller{limits: l}
	if l.MemoryBytes > 0 {
		c.memory = semaphore.NewWeighted(l.MemoryBytes)
	}
	if l.ConcurrentReads > 0 {
		c.reads = semaphore.NewWeighted(l.ConcurrentReads)
	}
	if l.ReadBytesPerSecond > 0 {
		// One second of budget may be spent at once.
		c.rate = rate.NewLimiter(rate.Limit(l.ReadBytesPerSecond), int(l.ReadBytesPerSecond))
	}
	return c
}

// Reserve charges n bytes against the memory budget and reports whether
// they fit. It never blocks.
func (c *Controller) Reserve(n int64) bool {
	if c == nil || n <= 0 {
		return true
	}
	if c.memory != nil && !c.memory.TryAcquire(n) {
		return false
	}
	c.reserved.Add(n)
	return true
}

// Release returns n reserved bytes.
func (c *Controller) Release(n int64) {
	if c == nil || n <= 0 {
		return
	}
	if c.memory != nil {
		c.memory.Release(n)
	}
	c.reserved.Add(-n)
}

// Reserved returns the bytes currently reserved.
func (c *Controller) Reserved() int64 {
	if c == nil {
		return 0
	}
	return c.reserved.Load()
}

// BeginRead waits for a read slot and for n bytes of read budget. The
// returned func frees the slot and must be called once the read finished.
func (c *Controller) BeginRead(ctx context.Context, n int) (done func(), err error) {
	if c == nil {
		return func() {}, nil
	}
	if c.reads != nil {
		if err := c.reads.Acquire(ctx, 1); err != nil {
			return nil, err
		}
	}
	done = func() {
		if c.reads != nil {
			c.reads.Release(1)
		}
	}
	if err := c.pace(ctx, n); err != nil {
		done()
		return nil, err
	}
	return done, nil
}

// pace waits until n bytes may be read. Reads larger than the burst are
// admitted in burst-sized steps.
func (c *Controller) pace(ctx context.Context, n int) error {
	if c.rate == nil {
		return nil
	}
	for n > 0 {
		step := min(n, c.rate.Burst())
		if err := c.rate.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}
