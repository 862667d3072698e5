package integration

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/pipz"
	"github.com/zoobzio/rx"
	rxtest "github.com/zoobzio/rx/testing"
	"go.uber.org/goleak"
)

var (
	enrichID    = pipz.NewIdentity("integration:enrich", "Attach a sequence number")
	validID     = pipz.NewIdentity("integration:validate", "Reject negative amounts")
	errNegative = errors.New("negative amount")
)

type order struct {
	ID     int
	Amount int
	Seq    int64
}

type countingMetrics struct {
	rx.NoOpMetricsProvider
	nexts     atomic.Int64
	completed atomic.Bool
}

func (m *countingMetrics) OnNext()                  { m.nexts.Add(1) }
func (m *countingMetrics) OnComplete(time.Duration) { m.completed.Store(true) }

// TestPipeline_ChannelToCollect runs a channel-fed pipeline through a pipz
// chain, logging and metrics, and collects it.
func TestPipeline_ChannelToCollect(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var seq atomic.Int64
	enrich := pipz.Apply(enrichID, func(_ context.Context, o order) (order, error) {
		o.Seq = seq.Add(1)
		return o, nil
	})

	ch := make(chan order)
	go func() {
		defer close(ch)
		for i := 1; i <= 20; i++ {
			ch <- order{ID: i, Amount: i * 10}
		}
	}()

	metrics := &countingMetrics{}
	logs := rxtest.CaptureLog("integration-orders")

	pipeline := rx.Via(rx.FromChannel(context.Background(), ch), enrich).
		Filter(func(o order) bool { return o.Amount >= 50 }).
		Log("integration-orders").
		Metrics(metrics)

	orders, err := rxtest.Collect[order](t, pipeline, 5*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 16 {
		t.Fatalf("expected 16 orders, got %d", len(orders))
	}
	for i, o := range orders {
		if o.ID != i+5 {
			t.Errorf("expected order %d at position %d, got %d", i+5, i, o.ID)
		}
	}
	if metrics.nexts.Load() != 16 || !metrics.completed.Load() {
		t.Errorf("expected metrics for 16 items and completion, got %d", metrics.nexts.Load())
	}
	if !rxtest.WaitFor(t, time.Second, func() bool { return logs.Count(rx.LogNext) == 16 }) {
		t.Errorf("expected 16 logged items, got %d", logs.Count(rx.LogNext))
	}
}

// TestPipeline_Recovery shows a validation failure replaced by a fallback
// stream with demand carried across.
func TestPipeline_Recovery(t *testing.T) {
	validate := pipz.Apply(validID, func(_ context.Context, o order) (order, error) {
		if o.Amount < 0 {
			return o, errNegative
		}
		return o, nil
	})

	src := rx.Of(order{ID: 1, Amount: 5}, order{ID: 2, Amount: -1}, order{ID: 3, Amount: 7})
	pipeline := rx.Via(src, validate).OnErrorResume(func(err error) rx.Publisher[order] {
		if errors.Is(err, errNegative) {
			return rx.Of(order{ID: -1})
		}
		return rx.Error[order](err)
	})

	rxtest.Create[order](pipeline).
		ExpectNextMatches(func(o order) bool { return o.ID == 1 }).
		ExpectNextMatches(func(o order) bool { return o.ID == -1 }).
		VerifyComplete(t)
}

// TestPipeline_ClockDriven drives an interval from a fake clock and checks
// the consumer sees exactly the ticks it asked for.
func TestPipeline_ClockDriven(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	clock := clockz.NewFakeClock()
	var (
		mu   sync.Mutex
		seen []int64
	)
	done := make(chan struct{})
	d := rx.Interval(time.Second, rx.WithScheduler(rx.NewClockScheduler(clock))).
		Take(5).
		Consume(rx.Callbacks[int64]{
			OnNext: func(v int64) {
				mu.Lock()
				seen = append(seen, v)
				mu.Unlock()
			},
			OnComplete: func() { close(done) },
		})

	stepClock(t, clock, time.Second, 5, func(i int) bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == i
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected completion")
	}

	mu.Lock()
	defer mu.Unlock()
	if !slices.Equal(seen, []int64{0, 1, 2, 3, 4}) {
		t.Errorf("expected [0 1 2 3 4], got %v", seen)
	}
	rxtest.RequireState(t, d, rx.StateCompleted)
}

// TestPipeline_UnhandledErrorIsReported checks that a consumer without an
// error callback still surfaces the failure.
func TestPipeline_UnhandledErrorIsReported(t *testing.T) {
	var reported atomic.Bool
	capitan.Hook(rx.SubscriberErrorUnhandled, func(_ context.Context, e *capitan.Event) {
		if msg, _ := rx.KeyError.From(e); msg == "integration: lost" {
			reported.Store(true)
		}
	})

	rx.Error[int](errors.New("integration: lost")).Consume()
	if !rxtest.WaitFor(t, time.Second, reported.Load) {
		t.Error("expected SubscriberErrorUnhandled")
	}
}
