package rx

import (
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// Task is a handle to work registered with a Scheduler.
type Task interface {
	// Cancel stops future firings. It is safe to call more than once.
	Cancel()
}

// Scheduler decides when timed work runs.
//
// Schedule runs task once after delay and then, if period is positive,
// every period until the returned Task is cancelled. Successive firings of
// one task never overlap.
type Scheduler interface {
	Now() time.Time
	Schedule(delay, period time.Duration, task func()) Task
}

type noopTask struct{}

func (noopTask) Cancel() {}

// Immediate runs every task inline, once, at the moment it is scheduled.
// Delay and period are ignored, so periodic tasks fire only once.
var Immediate Scheduler = immediate{}

type immediate struct{}

func (immediate) Now() time.Time {
	return clockz.RealClock.Now()
}

func (immediate) Schedule(_, _ time.Duration, task func()) Task {
	task()
	return noopTask{}
}

// ClockScheduler runs tasks on goroutines driven by a clockz.Clock.
// Each scheduled task owns one goroutine, which makes its firings
// sequential with respect to each other.
type ClockScheduler struct {
	clock clockz.Clock
}

// NewClockScheduler creates a scheduler on the given clock. Pass
// clockz.NewFakeClock() to control it from tests.
func NewClockScheduler(clock clockz.Clock) *ClockScheduler {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &ClockScheduler{clock: clock}
}

// DefaultScheduler is the scheduler used by timed sources when no
// WithScheduler option is given.
var DefaultScheduler Scheduler = NewClockScheduler(clockz.RealClock)

// Now returns the current time of the underlying clock.
func (c *ClockScheduler) Now() time.Time {
	return c.clock.Now()
}

// Schedule starts a goroutine that fires task on the clock. Periodic
// firings come from a clockz.Ticker; when delay equals period the ticker is
// armed immediately.
func (c *ClockScheduler) Schedule(delay, period time.Duration, task func()) Task {
	if delay < 0 {
		delay = 0
	}
	t := &clockTask{done: make(chan struct{})}
	if period > 0 && delay == period {
		go t.tick(c.clock.NewTicker(period), task)
		return t
	}
	go t.run(c.clock, c.clock.NewTimer(delay), period, task)
	return t
}

type clockTask struct {
	done chan struct{}
	once sync.Once
}

func (t *clockTask) Cancel() {
	t.once.Do(func() { close(t.done) })
}

func (t *clockTask) cancelled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// run waits out the initial delay, then hands periodic firings to a ticker.
// A fired clockz timer is not re-armed by Reset on every clock, so the
// ticker is created fresh.
func (t *clockTask) run(clock clockz.Clock, timer clockz.Timer, period time.Duration, task func()) {
	select {
	case <-t.done:
		timer.Stop()
		return
	case <-timer.C():
	}

	// Cancel may race with the timer; it wins.
	if t.cancelled() {
		return
	}
	task()
	if period <= 0 || t.cancelled() {
		return
	}
	t.tick(clock.NewTicker(period), task)
}

func (t *clockTask) tick(ticker clockz.Ticker, task func()) {
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C():
		}
		if t.cancelled() {
			return
		}
		task()
	}
}
