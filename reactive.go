package rx

import (
	"math"
	"sync/atomic"
)

// Unbounded is the demand value that disables backpressure for a subscription.
const Unbounded int64 = math.MaxInt64

// Publisher is a provider of a potentially unbounded number of sequenced
// items, publishing them according to the demand received from its Subscriber.
//
// Subscribe is a factory method: it can be called many times and each call
// starts a new, independent Subscription.
type Publisher[T any] interface {
	Subscribe(s Subscriber[T])
}

// Subscriber receives a call to OnSubscribe once after being passed to
// Publisher.Subscribe. No further signals arrive until it calls Request on
// the provided Subscription.
type Subscriber[T any] interface {
	OnSubscribe(s Subscription)
	OnNext(v T)
	OnError(err error)
	OnComplete()
}

// Subscription represents the one-to-one lifecycle of a Subscriber
// subscribing to a Publisher.
type Subscription interface {
	// Request authorizes up to n further OnNext calls. n must be positive;
	// Unbounded removes the limit.
	Request(n int64)

	// Cancel asks the publisher to stop sending signals and release resources.
	// It is safe to call more than once and after termination.
	Cancel()
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc[T any] func(s Subscriber[T])

// Subscribe calls f(s).
func (f PublisherFunc[T]) Subscribe(s Subscriber[T]) {
	f(s)
}

// addCap adds n to the demand counter, saturating at Unbounded.
// It returns the demand before the addition.
func addCap(requested *atomic.Int64, n int64) int64 {
	for {
		cur := requested.Load()
		if cur == Unbounded {
			return Unbounded
		}
		next := cur + n
		if next < 0 {
			next = Unbounded
		}
		if requested.CompareAndSwap(cur, next) {
			return cur
		}
	}
}

// produced subtracts n emitted items from the demand counter.
// Unbounded demand is never decremented.
func produced(requested *atomic.Int64, n int64) int64 {
	for {
		cur := requested.Load()
		if cur == Unbounded {
			return Unbounded
		}
		next := cur - n
		if next < 0 {
			next = 0
		}
		if requested.CompareAndSwap(cur, next) {
			return next
		}
	}
}

// emptySubscription is handed to subscribers of sources that never need
// demand. Cancel marks it so a pending terminal signal can be skipped.
type emptySubscription struct {
	cancelled atomic.Bool
}

func (*emptySubscription) Request(int64) {}

func (e *emptySubscription) Cancel() {
	e.cancelled.Store(true)
}
