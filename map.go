package rx

import "sync/atomic"

// Map transforms every item of f with fn. An error returned by fn, or a
// panic inside it, cancels the upstream and terminates the sequence with a
// *Fault of kind FaultTransform.
func Map[T, R any](f Flux[T], fn func(T) (R, error)) Flux[R] {
	return Flux[R]{source: mapPublisher(f.publisher(), "map", fn)}
}

// MapMono transforms the value of m with fn, following the rules of Map.
func MapMono[T, R any](m Mono[T], fn func(T) (R, error)) Mono[R] {
	return Mono[R]{source: mapPublisher(m.publisher(), "map", fn)}
}

func mapPublisher[T, R any](upstream Publisher[T], stage string, fn func(T) (R, error)) Publisher[R] {
	return PublisherFunc[R](func(s Subscriber[R]) {
		upstream.Subscribe(&mapSubscriber[T, R]{downstream: s, stage: stage, fn: fn})
	})
}

type mapSubscriber[T, R any] struct {
	downstream Subscriber[R]
	stage      string
	fn         func(T) (R, error)
	upstream   Subscription
	done       atomic.Bool
}

func (m *mapSubscriber[T, R]) OnSubscribe(s Subscription) {
	m.upstream = s
	m.downstream.OnSubscribe(m)
}

func (m *mapSubscriber[T, R]) OnNext(v T) {
	if m.done.Load() {
		return
	}
	var (
		out  R
		ferr error
	)
	err := guard(FaultTransform, m.stage, func() { out, ferr = m.fn(v) })
	if err == nil && ferr != nil {
		err = newFault(FaultTransform, m.stage, ferr)
	}
	if err != nil {
		m.fail(err)
		return
	}
	m.downstream.OnNext(out)
}

func (m *mapSubscriber[T, R]) fail(err error) {
	if !m.done.CompareAndSwap(false, true) {
		dropError(m.stage, err)
		return
	}
	m.upstream.Cancel()
	m.downstream.OnError(err)
}

func (m *mapSubscriber[T, R]) OnError(err error) {
	if !m.done.CompareAndSwap(false, true) {
		dropError(m.stage, err)
		return
	}
	m.downstream.OnError(err)
}

func (m *mapSubscriber[T, R]) OnComplete() {
	if m.done.CompareAndSwap(false, true) {
		m.downstream.OnComplete()
	}
}

func (m *mapSubscriber[T, R]) Request(n int64) {
	m.upstream.Request(n)
}

func (m *mapSubscriber[T, R]) Cancel() {
	m.upstream.Cancel()
}
