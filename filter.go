package rx

import "sync/atomic"

func filterPublisher[T any](upstream Publisher[T], predicate func(T) bool) Publisher[T] {
	return PublisherFunc[T](func(s Subscriber[T]) {
		upstream.Subscribe(&filterSubscriber[T]{downstream: s, predicate: predicate})
	})
}

// filterSubscriber replaces every rejected item with a request for one more,
// so the downstream demand is eventually met.
type filterSubscriber[T any] struct {
	downstream Subscriber[T]
	predicate  func(T) bool
	upstream   Subscription
	done       atomic.Bool
}

func (f *filterSubscriber[T]) OnSubscribe(s Subscription) {
	f.upstream = s
	f.downstream.OnSubscribe(f)
}

func (f *filterSubscriber[T]) OnNext(v T) {
	if f.done.Load() {
		return
	}
	var keep bool
	if err := guard(FaultTransform, "filter", func() { keep = f.predicate(v) }); err != nil {
		if f.done.CompareAndSwap(false, true) {
			f.upstream.Cancel()
			f.downstream.OnError(err)
		}
		return
	}
	if !keep {
		f.upstream.Request(1)
		return
	}
	f.downstream.OnNext(v)
}

func (f *filterSubscriber[T]) OnError(err error) {
	if !f.done.CompareAndSwap(false, true) {
		dropError("filter", err)
		return
	}
	f.downstream.OnError(err)
}

func (f *filterSubscriber[T]) OnComplete() {
	if f.done.CompareAndSwap(false, true) {
		f.downstream.OnComplete()
	}
}

func (f *filterSubscriber[T]) Request(n int64) {
	f.upstream.Request(n)
}

func (f *filterSubscriber[T]) Cancel() {
	f.upstream.Cancel()
}
