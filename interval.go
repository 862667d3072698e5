package rx

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Interval returns a Flux that emits 0, 1, 2, … every period, starting one
// period after subscription. It never completes on its own; bound it with
// Take or cancel the subscription.
//
// Ticks are not buffered. A tick that fires while the subscriber has no
// outstanding demand cancels the timer and fails the sequence with
// ErrInsufficientDemand.
//
// Immediate cannot repeat a task, so an Interval on it fails with
// ErrInvalidArgument.
func Interval(period time.Duration, opts ...Option) Flux[int64] {
	cfg := buildConfig(opts)
	if cfg.scheduler == Immediate {
		return Error[int64](fmt.Errorf("%w: interval needs a periodic scheduler", ErrInvalidArgument))
	}
	return Flux[int64]{source: PublisherFunc[int64](func(s Subscriber[int64]) {
		t := &tickSubscription{downstream: s, periodic: true}
		s.OnSubscribe(t)
		t.start(cfg.scheduler, period, period)
	})}
}

// Timer returns a Mono that emits 0 after delay and completes.
func Timer(delay time.Duration, opts ...Option) Mono[int64] {
	cfg := buildConfig(opts)
	return Mono[int64]{source: PublisherFunc[int64](func(s Subscriber[int64]) {
		t := &tickSubscription{downstream: s}
		s.OnSubscribe(t)
		t.start(cfg.scheduler, delay, 0)
	})}
}

// tickSubscription emits a counter from scheduler callbacks. Callbacks of one
// task never overlap, so count and the terminal path are only touched there.
type tickSubscription struct {
	downstream Subscriber[int64]
	periodic   bool

	requested atomic.Int64
	cancelled atomic.Bool
	invalid   atomic.Bool
	count     int64

	mu   sync.Mutex
	task Task
}

func (t *tickSubscription) start(s Scheduler, delay, period time.Duration) {
	if t.cancelled.Load() {
		return
	}
	task := s.Schedule(delay, period, t.tick)
	t.mu.Lock()
	t.task = task
	t.mu.Unlock()
	if t.cancelled.Load() {
		task.Cancel()
	}
}

func (t *tickSubscription) Request(n int64) {
	if n <= 0 {
		t.invalid.Store(true)
		return
	}
	addCap(&t.requested, n)
}

func (t *tickSubscription) Cancel() {
	if t.cancelled.Swap(true) {
		return
	}
	t.mu.Lock()
	task := t.task
	t.mu.Unlock()
	if task != nil {
		task.Cancel()
	}
}

func (t *tickSubscription) tick() {
	if t.cancelled.Load() {
		return
	}
	if t.invalid.Load() {
		t.Cancel()
		t.downstream.OnError(ErrInvalidRequest)
		return
	}
	if t.requested.Load() == 0 {
		t.Cancel()
		t.downstream.OnError(fmt.Errorf("%w: tick %d", ErrInsufficientDemand, t.count))
		return
	}

	v := t.count
	t.count++
	produced(&t.requested, 1)
	t.downstream.OnNext(v)

	if !t.periodic && !t.cancelled.Swap(true) {
		t.downstream.OnComplete()
	}
}
