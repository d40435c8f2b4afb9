package core

import (
	"sync"
	"sync/atomic"
	"time"
)

// TimerFreq is the rate of the controller's free-running tick counter.
const TimerFreq = 12000000 // 12MHz

// Clock is a monotonic time source. Now returns the time elapsed since the
// clock's epoch (normally boot) and never decreases.
type Clock interface {
	Now() time.Duration
}

var systemTicks uint32

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	return atomic.LoadUint32(&systemTicks)
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ticks uint32) {
	atomic.StoreUint32(&systemTicks, ticks)
}

// TimerFromUS converts microseconds to timer ticks
func TimerFromUS(us uint32) uint32 {
	return uint32(uint64(us) * TimerFreq / 1000000)
}

// TimerToUS converts timer ticks to microseconds
func TimerToUS(ticks uint32) uint32 {
	return uint32(uint64(ticks) * 1000000 / TimerFreq)
}

// TickClock turns a wrapping 32-bit tick counter into a Clock.
// Now must be called at least once per counter period (~357s at 12MHz)
// for wraps to be detected.
type TickClock struct {
	mu    sync.Mutex
	read  func() uint32
	epoch uint32
	last  uint32
	wraps uint64
}

// NewTickClock creates a clock over read. A nil read uses GetTime.
// The epoch is the counter value at construction.
func NewTickClock(read func() uint32) *TickClock {
	if read == nil {
		read = GetTime
	}
	now := read()
	return &TickClock{read: read, epoch: now, last: now}
}

// Now implements Clock
func (c *TickClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	ticks := c.read()
	if ticks < c.last {
		c.wraps++
	}
	c.last = ticks

	total := c.wraps<<32 + uint64(ticks) - uint64(c.epoch)
	secs := total / TimerFreq
	rem := total % TimerFreq
	return time.Duration(secs)*time.Second + time.Duration(rem*uint64(time.Second)/TimerFreq)
}

// MonotonicClock reads the Go runtime's monotonic clock.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock returns a clock whose epoch is now.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Now implements Clock
func (c *MonotonicClock) Now() time.Duration {
	return time.Since(c.start)
}

// ManualClock only moves when told to. Used by simulations and tests.
type ManualClock struct {
	now atomic.Int64
}

// Now implements Clock
func (c *ManualClock) Now() time.Duration {
	return time.Duration(c.now.Load())
}

// Set moves the clock to d. Setting a time earlier than Now is ignored.
func (c *ManualClock) Set(d time.Duration) {
	for {
		cur := c.now.Load()
		if int64(d) <= cur || c.now.CompareAndSwap(cur, int64(d)) {
			return
		}
	}
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	if d > 0 {
		c.now.Add(int64(d))
	}
}
