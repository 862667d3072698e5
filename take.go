package rx

import "sync/atomic"

func takePublisher[T any](upstream Publisher[T], limit int64) Publisher[T] {
	if limit < 0 {
		limit = 0
	}
	return PublisherFunc[T](func(s Subscriber[T]) {
		upstream.Subscribe(&takeSubscriber[T]{downstream: s, limit: limit, remaining: limit})
	})
}

// takeSubscriber forwards at most limit items. It never requests more than
// limit from upstream in total, and cancels upstream once the limit is hit.
type takeSubscriber[T any] struct {
	downstream Subscriber[T]
	upstream   Subscription
	limit      int64
	remaining  int64
	requested  atomic.Int64
	done       atomic.Bool
}

func (t *takeSubscriber[T]) OnSubscribe(s Subscription) {
	t.upstream = s
	if t.limit == 0 {
		t.done.Store(true)
		s.Cancel()
		t.downstream.OnSubscribe(t)
		t.downstream.OnComplete()
		return
	}
	t.downstream.OnSubscribe(t)
}

func (t *takeSubscriber[T]) OnNext(v T) {
	if t.done.Load() {
		return
	}
	t.remaining--
	last := t.remaining == 0
	if last {
		// Stop the source before handing out the final item so a reentrant
		// request cannot pull anything past the limit.
		t.upstream.Cancel()
	}
	t.downstream.OnNext(v)
	if last && t.done.CompareAndSwap(false, true) {
		t.downstream.OnComplete()
	}
}

func (t *takeSubscriber[T]) OnError(err error) {
	if !t.done.CompareAndSwap(false, true) {
		dropError("take", err)
		return
	}
	t.downstream.OnError(err)
}

func (t *takeSubscriber[T]) OnComplete() {
	if t.done.CompareAndSwap(false, true) {
		t.downstream.OnComplete()
	}
}

func (t *takeSubscriber[T]) Request(n int64) {
	if n <= 0 {
		t.upstream.Request(n)
		return
	}
	for {
		cur := t.requested.Load()
		if cur >= t.limit {
			return
		}
		add := min(n, t.limit-cur)
		if t.requested.CompareAndSwap(cur, cur+add) {
			t.upstream.Request(add)
			return
		}
	}
}

func (t *takeSubscriber[T]) Cancel() {
	t.done.Store(true)
	t.upstream.Cancel()
}
