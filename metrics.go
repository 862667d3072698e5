package rx

import (
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
)

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on the signals crossing a
// Metrics stage.
type MetricsProvider interface {
	// OnSubscribe is called when a subscription passes through the stage.
	OnSubscribe()

	// OnRequest is called for every demand request. n is Unbounded for
	// push-mode subscriptions.
	OnRequest(n int64)

	// OnNext is called for every item.
	OnNext()

	// OnComplete is called when the sequence completes. Duration is the time
	// since subscription.
	OnComplete(duration time.Duration)

	// OnError is called when the sequence fails. Duration is the time since
	// subscription.
	OnError(err error, duration time.Duration)

	// OnCancel is called when the subscriber cancels. Duration is the time
	// since subscription.
	OnCancel(duration time.Duration)
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnSubscribe()                     {}
func (NoOpMetricsProvider) OnRequest(_ int64)                {}
func (NoOpMetricsProvider) OnNext()                          {}
func (NoOpMetricsProvider) OnComplete(_ time.Duration)       {}
func (NoOpMetricsProvider) OnError(_ error, _ time.Duration) {}
func (NoOpMetricsProvider) OnCancel(_ time.Duration)         {}

func metricsPublisher[T any](upstream Publisher[T], provider MetricsProvider, clock clockz.Clock) Publisher[T] {
	return PublisherFunc[T](func(s Subscriber[T]) {
		upstream.Subscribe(&metricsSubscriber[T]{downstream: s, provider: provider, clock: clock})
	})
}

type metricsSubscriber[T any] struct {
	downstream Subscriber[T]
	provider   MetricsProvider
	clock      clockz.Clock
	start      time.Time
	upstream   Subscription
	finished   atomic.Bool
}

func (m *metricsSubscriber[T]) OnSubscribe(s Subscription) {
	m.upstream = s
	m.start = m.clock.Now()
	m.provider.OnSubscribe()
	m.downstream.OnSubscribe(m)
}

func (m *metricsSubscriber[T]) OnNext(v T) {
	m.provider.OnNext()
	m.downstream.OnNext(v)
}

func (m *metricsSubscriber[T]) OnError(err error) {
	if m.finished.CompareAndSwap(false, true) {
		m.provider.OnError(err, m.clock.Now().Sub(m.start))
	}
	m.downstream.OnError(err)
}

func (m *metricsSubscriber[T]) OnComplete() {
	if m.finished.CompareAndSwap(false, true) {
		m.provider.OnComplete(m.clock.Now().Sub(m.start))
	}
	m.downstream.OnComplete()
}

func (m *metricsSubscriber[T]) Request(n int64) {
	m.provider.OnRequest(n)
	m.upstream.Request(n)
}

func (m *metricsSubscriber[T]) Cancel() {
	if m.finished.CompareAndSwap(false, true) {
		m.provider.OnCancel(m.clock.Now().Sub(m.start))
	}
	m.upstream.Cancel()
}
