package rx

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/capitan"
)

func TestConsume_Callbacks(t *testing.T) {
	var (
		values    []string
		completed bool
	)
	d := Of("Thiele", "Heemann").Consume(Callbacks[string]{
		OnNext:     func(v string) { values = append(values, v) },
		OnComplete: func() { completed = true },
	})

	if !slices.Equal(values, []string{"Thiele", "Heemann"}) || !completed {
		t.Errorf("expected both names and completion, got %v completed=%v", values, completed)
	}
	if d.State() != StateCompleted || !d.IsDisposed() {
		t.Errorf("expected completed and disposed, got %s", d.State())
	}
}

func TestConsume_MergesCallbacks(t *testing.T) {
	var n int
	var done bool
	Range(1, 3).Consume(
		Callbacks[int]{OnNext: func(int) { n++ }},
		Callbacks[int]{OnComplete: func() { done = true }},
	)
	if n != 3 || !done {
		t.Errorf("expected merged callbacks, got n=%d done=%v", n, done)
	}
}

func TestConsume_OnSubscribeOwnsDemand(t *testing.T) {
	var values []int
	var sub Subscription
	d := Range(1, 10).Consume(Callbacks[int]{
		OnNext:      func(v int) { values = append(values, v) },
		OnSubscribe: func(s Subscription) { sub = s },
	})

	if len(values) != 0 || d.State() != StateActive {
		t.Fatalf("expected no items before request, got %v state=%s", values, d.State())
	}
	sub.Request(4)
	if !slices.Equal(values, []int{1, 2, 3, 4}) {
		t.Errorf("expected [1 2 3 4], got %v", values)
	}
}

func TestConsume_CancelInOnSubscribe(t *testing.T) {
	var values []int
	d := Range(1, 5).Consume(Callbacks[int]{
		OnNext:      func(v int) { values = append(values, v) },
		OnSubscribe: func(s Subscription) { s.Cancel() },
	})

	if len(values) != 0 {
		t.Errorf("expected nothing after cancel, got %v", values)
	}
	if d.State() != StateCancelled {
		t.Errorf("expected cancelled, got %s", d.State())
	}
}

func TestConsume_Error(t *testing.T) {
	boom := errors.New("boom")
	var got error
	d := Error[int](boom).Consume(Callbacks[int]{OnError: func(err error) { got = err }})

	if !errors.Is(got, boom) || d.State() != StateFailed {
		t.Errorf("expected boom and failed state, got %v %s", got, d.State())
	}
}

func TestConsume_UnhandledError(t *testing.T) {
	var reported atomic.Value
	capitan.Hook(SubscriberErrorUnhandled, func(_ context.Context, e *capitan.Event) {
		if msg, ok := KeyError.From(e); ok && msg == "unhandled-boom" {
			reported.Store(msg)
		}
	})

	d := Error[int](errors.New("unhandled-boom")).Consume()
	if d.State() != StateFailed {
		t.Errorf("expected failed, got %s", d.State())
	}
	if !waitFor(t, time.Second, func() bool { return reported.Load() != nil }) {
		t.Error("expected SubscriberErrorUnhandled event")
	}
}

func TestConsume_OnNextPanics(t *testing.T) {
	var got error
	cancelled := false
	d := Range(1, 5).DoOnCancel(func() { cancelled = true }).Consume(Callbacks[int]{
		OnNext: func(v int) {
			if v == 2 {
				panic("consumer broke")
			}
		},
		OnError: func(err error) { got = err },
	})

	var fault *Fault
	if !errors.As(got, &fault) || fault.Kind != FaultHook {
		t.Errorf("expected hook fault, got %v", got)
	}
	if !cancelled || d.State() != StateFailed {
		t.Errorf("expected upstream cancelled and failed state, cancelled=%v state=%s", cancelled, d.State())
	}
}

func TestDisposable_Dispose(t *testing.T) {
	vs := NewVirtualScheduler()
	var ticks int
	d := Interval(time.Second, WithScheduler(vs)).Consume(Callbacks[int64]{
		OnNext: func(int64) { ticks++ },
	})

	vs.Advance(3 * time.Second)
	d.Dispose()
	d.Dispose()
	vs.Advance(time.Hour)

	if ticks != 3 {
		t.Errorf("expected 3 ticks, got %d", ticks)
	}
	if d.State() != StateCancelled || !d.IsDisposed() {
		t.Errorf("expected cancelled, got %s", d.State())
	}
}

func TestDisposable_DisposeAfterComplete(t *testing.T) {
	d := Of(1).Consume()
	d.Dispose()
	if d.State() != StateCompleted {
		t.Errorf("dispose after completion must not change state, got %s", d.State())
	}
}
