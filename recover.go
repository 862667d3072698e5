package rx

import "sync"

func resumePublisher[T any](upstream Publisher[T], stage string, fallback func(error) Publisher[T]) Publisher[T] {
	return PublisherFunc[T](func(s Subscriber[T]) {
		upstream.Subscribe(&resumeSubscriber[T]{downstream: s, stage: stage, fallback: fallback})
	})
}

func returnPublisher[T any](upstream Publisher[T], v T) Publisher[T] {
	return resumePublisher(upstream, "onErrorReturn", func(error) Publisher[T] {
		return just(v)
	})
}

// resumeSubscriber swaps a failed upstream for a fallback publisher. It
// tracks outstanding downstream demand so the fallback is asked for exactly
// what the downstream is still owed. Only the first error is intercepted; an
// error from the fallback is passed on.
type resumeSubscriber[T any] struct {
	downstream Subscriber[T]
	stage      string
	fallback   func(error) Publisher[T]

	mu          sync.Mutex
	upstream    Subscription
	outstanding int64
	subscribed  bool
	resumed     bool
	cancelled   bool
	done        bool
}

func (r *resumeSubscriber[T]) OnSubscribe(s Subscription) {
	r.mu.Lock()
	if r.cancelled {
		r.mu.Unlock()
		s.Cancel()
		return
	}
	r.upstream = s
	first := !r.subscribed
	r.subscribed = true
	owed := r.outstanding
	r.mu.Unlock()

	if first {
		r.downstream.OnSubscribe(r)
		return
	}
	if owed > 0 {
		s.Request(owed)
	}
}

func (r *resumeSubscriber[T]) OnNext(v T) {
	r.mu.Lock()
	if r.done {
		r.mu.Unlock()
		return
	}
	if r.outstanding != Unbounded && r.outstanding > 0 {
		r.outstanding--
	}
	r.mu.Unlock()
	r.downstream.OnNext(v)
}

func (r *resumeSubscriber[T]) OnError(err error) {
	r.mu.Lock()
	if r.done {
		r.mu.Unlock()
		dropError(r.stage, err)
		return
	}
	if r.cancelled {
		r.done = true
		r.mu.Unlock()
		dropError(r.stage, err)
		return
	}
	if r.resumed {
		r.done = true
		r.mu.Unlock()
		r.downstream.OnError(err)
		return
	}
	r.resumed = true
	r.mu.Unlock()

	var next Publisher[T]
	if ferr := guard(FaultTransform, r.stage, func() { next = r.fallback(err) }); ferr != nil {
		r.terminate(ferr)
		return
	}
	if next == nil {
		r.terminate(ErrNilPublisher)
		return
	}
	next.Subscribe(r)
}

func (r *resumeSubscriber[T]) terminate(err error) {
	r.mu.Lock()
	r.done = true
	r.mu.Unlock()
	r.downstream.OnError(err)
}

func (r *resumeSubscriber[T]) OnComplete() {
	r.mu.Lock()
	if r.done {
		r.mu.Unlock()
		return
	}
	r.done = true
	r.mu.Unlock()
	r.downstream.OnComplete()
}

func (r *resumeSubscriber[T]) Request(n int64) {
	r.mu.Lock()
	if n > 0 {
		r.outstanding += n
		if r.outstanding < 0 {
			r.outstanding = Unbounded
		}
	}
	up := r.upstream
	r.mu.Unlock()
	if up != nil {
		up.Request(n)
	}
}

func (r *resumeSubscriber[T]) Cancel() {
	r.mu.Lock()
	r.cancelled = true
	up := r.upstream
	r.mu.Unlock()
	if up != nil {
		up.Cancel()
	}
}
