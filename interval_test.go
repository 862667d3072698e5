package rx

import (
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
	"go.uber.org/goleak"
)

func TestInterval_Virtual(t *testing.T) {
	vs := NewVirtualScheduler()
	p := newProbe[int64](Unbounded)
	Interval(24*time.Hour, WithScheduler(vs)).Take(10).Subscribe(p)

	vs.Advance(24*time.Hour - time.Nanosecond)
	if values, _, _, _ := p.snapshot(); len(values) != 0 {
		t.Fatalf("expected no tick before one period, got %v", values)
	}

	vs.Advance(time.Nanosecond)
	vs.Advance(24 * time.Hour)
	values, _, _, _ := p.snapshot()
	if !slices.Equal(values, []int64{0, 1}) {
		t.Errorf("expected [0 1] after two periods, got %v", values)
	}

	vs.Advance(30 * 24 * time.Hour)
	values, _, completes, _ := p.snapshot()
	if len(values) != 10 || completes != 1 {
		t.Errorf("expected 10 ticks and completion, got %v completes=%d", values, completes)
	}
	if vs.Pending() != 0 {
		t.Errorf("expected the timer to be cancelled by Take, %d pending", vs.Pending())
	}
}

func TestInterval_InsufficientDemand(t *testing.T) {
	vs := NewVirtualScheduler()
	p := newProbe[int64](2)
	Interval(time.Second, WithScheduler(vs)).Subscribe(p)

	vs.Advance(3 * time.Second)
	values, err, _, failures := p.snapshot()
	if !slices.Equal(values, []int64{0, 1}) {
		t.Errorf("expected [0 1], got %v", values)
	}
	if !errors.Is(err, ErrInsufficientDemand) || failures != 1 {
		t.Errorf("expected one ErrInsufficientDemand, got %v (%d errors)", err, failures)
	}
	if vs.Pending() != 0 {
		t.Errorf("expected timer cancelled, %d pending", vs.Pending())
	}
}

func TestInterval_InvalidRequest(t *testing.T) {
	vs := NewVirtualScheduler()
	p := newProbe[int64](0)
	Interval(time.Second, WithScheduler(vs)).Subscribe(p)
	p.request(-5)

	vs.Advance(time.Second)
	if _, err, _, _ := p.snapshot(); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestInterval_Cancel(t *testing.T) {
	vs := NewVirtualScheduler()
	p := newProbe[int64](Unbounded)
	Interval(time.Second, WithScheduler(vs)).Subscribe(p)

	vs.Advance(2 * time.Second)
	p.cancel()
	vs.Advance(time.Hour)

	values, _, _, _ := p.snapshot()
	if len(values) != 2 || p.terminals() != 0 {
		t.Errorf("expected 2 ticks and no terminal, got %v", values)
	}
	if vs.Pending() != 0 {
		t.Errorf("expected no pending tasks, got %d", vs.Pending())
	}
}

func TestInterval_Restartable(t *testing.T) {
	vs := NewVirtualScheduler()
	f := Interval(time.Second, WithScheduler(vs)).Take(2)

	a := newProbe[int64](Unbounded)
	f.Subscribe(a)
	vs.Advance(time.Second)
	b := newProbe[int64](Unbounded)
	f.Subscribe(b)
	vs.Advance(2 * time.Second)

	av, _, _, _ := a.snapshot()
	bv, _, _, _ := b.snapshot()
	if !slices.Equal(av, []int64{0, 1}) || !slices.Equal(bv, []int64{0, 1}) {
		t.Errorf("expected independent counters, got %v and %v", av, bv)
	}
}

func TestTimer(t *testing.T) {
	vs := NewVirtualScheduler()
	p := newProbe[int64](1)
	Timer(time.Minute, WithScheduler(vs)).Subscribe(p)

	vs.Advance(time.Minute)
	values, _, completes, _ := p.snapshot()
	if !slices.Equal(values, []int64{0}) || completes != 1 {
		t.Errorf("expected [0] and completion, got %v completes=%d", values, completes)
	}
}

func TestInterval_ClockScheduler(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	clock := clockz.NewFakeClock()
	var ticks atomic.Int32
	done := make(chan struct{})
	Interval(100*time.Millisecond, WithScheduler(NewClockScheduler(clock))).
		Take(3).
		Consume(Callbacks[int64]{
			OnNext:     func(int64) { ticks.Add(1) },
			OnComplete: func() { close(done) },
		})

	for want := int32(1); want <= 3; want++ {
		clock.Advance(100 * time.Millisecond)
		clock.BlockUntilReady()
		if !waitFor(t, time.Second, func() bool { return ticks.Load() == want }) {
			t.Fatalf("expected %d ticks, got %d", want, ticks.Load())
		}
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected completion")
	}
}

func TestInterval_ImmediateScheduler(t *testing.T) {
	p := newProbe[int64](Unbounded)
	Interval(time.Second, WithScheduler(Immediate)).Subscribe(p)

	values, err, _, failures := p.snapshot()
	if len(values) != 0 || failures != 1 || !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v err=%v", values, err)
	}

	// Timer only needs one firing.
	p = newProbe[int64](Unbounded)
	Timer(time.Hour, WithScheduler(Immediate)).Subscribe(p)
	values, _, completes, _ := p.snapshot()
	if !slices.Equal(values, []int64{0}) || completes != 1 {
		t.Errorf("expected [0] and completion, got %v completes=%d", values, completes)
	}
}
