package testing

import (
	"sync"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/rx"
)

// Recorder is a Subscriber that records every signal it receives.
// It requests the initial demand given to NewRecorder on subscribe; further
// demand is issued through Request.
type Recorder[T any] struct {
	initial int64
	clock   clockz.Clock

	mu           sync.Mutex
	signals      []rx.Signal[T]
	subscription rx.Subscription
	subscribed   chan struct{}
	changed      chan struct{}
}

// NewRecorder creates a recorder that requests initial on subscribe.
// Pass 0 to request nothing until Request is called.
func NewRecorder[T any](initial int64) *Recorder[T] {
	return &Recorder[T]{
		initial:    initial,
		clock:      clockz.RealClock,
		subscribed: make(chan struct{}),
		changed:    make(chan struct{}, 1),
	}
}

// OnSubscribe implements rx.Subscriber.
func (r *Recorder[T]) OnSubscribe(s rx.Subscription) {
	r.mu.Lock()
	r.subscription = s
	r.mu.Unlock()
	close(r.subscribed)
	if r.initial > 0 {
		s.Request(r.initial)
	}
}

// OnNext implements rx.Subscriber.
func (r *Recorder[T]) OnNext(v T) {
	r.record(rx.Next(v))
}

// OnError implements rx.Subscriber.
func (r *Recorder[T]) OnError(err error) {
	r.record(rx.ErrorSignal[T](err))
}

// OnComplete implements rx.Subscriber.
func (r *Recorder[T]) OnComplete() {
	r.record(rx.CompleteSignal[T]())
}

func (r *Recorder[T]) record(sig rx.Signal[T]) {
	r.mu.Lock()
	r.signals = append(r.signals, sig)
	r.mu.Unlock()
	select {
	case r.changed <- struct{}{}:
	default:
	}
}

// Request asks the subscription for n more items.
func (r *Recorder[T]) Request(n int64) {
	if s := r.sub(); s != nil {
		s.Request(n)
	}
}

// Cancel cancels the subscription.
func (r *Recorder[T]) Cancel() {
	if s := r.sub(); s != nil {
		s.Cancel()
	}
}

func (r *Recorder[T]) sub() rx.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subscription
}

// Subscribed reports whether OnSubscribe has been received.
func (r *Recorder[T]) Subscribed() bool {
	select {
	case <-r.subscribed:
		return true
	default:
		return false
	}
}

// Signals returns a copy of every recorded signal, in arrival order.
func (r *Recorder[T]) Signals() []rx.Signal[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]rx.Signal[T](nil), r.signals...)
}

// Values returns the items of every recorded onNext signal.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []T
	for _, s := range r.signals {
		if s.Kind == rx.KindNext {
			out = append(out, s.Value)
		}
	}
	return out
}

// Err returns the recorded terminal error, or nil.
func (r *Recorder[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.signals {
		if s.Kind == rx.KindError {
			return s.Err
		}
	}
	return nil
}

// Completed reports whether onComplete was recorded.
func (r *Recorder[T]) Completed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.signals {
		if s.Kind == rx.KindComplete {
			return true
		}
	}
	return false
}

// Terminals returns the number of terminal signals recorded. A well-behaved
// publisher never produces more than one.
func (r *Recorder[T]) Terminals() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.signals {
		if s.Kind.Terminal() {
			n++
		}
	}
	return n
}

// signalAt waits until at least i+1 signals are recorded or timeout passes.
func (r *Recorder[T]) signalAt(i int, timeout time.Duration) (rx.Signal[T], bool) {
	var timer clockz.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		r.mu.Lock()
		if i < len(r.signals) {
			sig := r.signals[i]
			r.mu.Unlock()
			return sig, true
		}
		r.mu.Unlock()

		if timer == nil {
			timer = r.clock.NewTimer(timeout)
		}
		select {
		case <-r.changed:
		case <-timer.C():
			r.mu.Lock()
			defer r.mu.Unlock()
			if i < len(r.signals) {
				return r.signals[i], true
			}
			var zero rx.Signal[T]
			return zero, false
		}
	}
}

// waitSubscribed waits for OnSubscribe or timeout.
func (r *Recorder[T]) waitSubscribed(timeout time.Duration) bool {
	if r.Subscribed() {
		return true
	}
	timer := r.clock.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-r.subscribed:
		return true
	case <-timer.C():
		return false
	}
}
