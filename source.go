package rx

import (
	"fmt"
	"iter"
	"math"
	"sync/atomic"
)

// Just returns a Mono that emits v and completes once demand arrives.
func Just[T any](v T) Mono[T] {
	return Mono[T]{source: just(v)}
}

// EmptyMono returns a Mono that completes without a value.
func EmptyMono[T any]() Mono[T] {
	return Mono[T]{source: empty[T]()}
}

// ErrorMono returns a Mono that fails with err without waiting for demand.
func ErrorMono[T any](err error) Mono[T] {
	return Mono[T]{source: failed[T](err)}
}

// DeferMono calls factory for every subscription and subscribes to the result.
func DeferMono[T any](factory func() Mono[T]) Mono[T] {
	return Mono[T]{source: deferred(func() Publisher[T] { return factory() })}
}

// Of returns a Flux that emits the given items in order.
func Of[T any](items ...T) Flux[T] {
	return FromSlice(items)
}

// FromSlice returns a Flux over a copy of items.
func FromSlice[T any](items []T) Flux[T] {
	snapshot := append([]T(nil), items...)
	return Flux[T]{source: PublisherFunc[T](func(s Subscriber[T]) {
		i := 0
		subscribePull(s, func() (T, bool) {
			if i >= len(snapshot) {
				var zero T
				return zero, false
			}
			v := snapshot[i]
			i++
			return v, true
		}, nil)
	})}
}

// Range returns a Flux emitting count sequential integers starting at start.
// A range whose last value would exceed math.MaxInt fails with
// ErrInvalidArgument.
func Range(start, count int) Flux[int] {
	if count < 0 {
		count = 0
	}
	if count > 0 && start > math.MaxInt-(count-1) {
		return Error[int](fmt.Errorf("%w: range of %d from %d overflows int", ErrInvalidArgument, count, start))
	}
	return Flux[int]{source: PublisherFunc[int](func(s Subscriber[int]) {
		i := 0
		subscribePull(s, func() (int, bool) {
			if i >= count {
				return 0, false
			}
			v := start + i
			i++
			return v, true
		}, nil)
	})}
}

// FromIter returns a Flux that pulls items from seq as demand arrives.
// Each subscription starts a fresh iteration; cancelling stops it.
func FromIter[T any](seq iter.Seq[T]) Flux[T] {
	return Flux[T]{source: PublisherFunc[T](func(s Subscriber[T]) {
		next, stop := iter.Pull(seq)
		subscribePull(s, next, stop)
	})}
}

// Empty returns a Flux that completes immediately.
func Empty[T any]() Flux[T] {
	return Flux[T]{source: empty[T]()}
}

// Error returns a Flux that fails with err without waiting for demand.
func Error[T any](err error) Flux[T] {
	return Flux[T]{source: failed[T](err)}
}

// Defer calls factory for every subscription and subscribes to the result.
func Defer[T any](factory func() Flux[T]) Flux[T] {
	return Flux[T]{source: deferred(func() Publisher[T] { return factory() })}
}

func empty[T any]() Publisher[T] {
	return PublisherFunc[T](func(s Subscriber[T]) {
		sub := &emptySubscription{}
		s.OnSubscribe(sub)
		if !sub.cancelled.Load() {
			s.OnComplete()
		}
	})
}

func failed[T any](err error) Publisher[T] {
	return PublisherFunc[T](func(s Subscriber[T]) {
		sub := &emptySubscription{}
		s.OnSubscribe(sub)
		if !sub.cancelled.Load() {
			s.OnError(err)
		}
	})
}

func deferred[T any](factory func() Publisher[T]) Publisher[T] {
	return PublisherFunc[T](func(s Subscriber[T]) {
		var p Publisher[T]
		if err := guard(FaultSource, "defer", func() { p = factory() }); err != nil {
			failed[T](err).Subscribe(s)
			return
		}
		if p == nil {
			failed[T](ErrNilPublisher).Subscribe(s)
			return
		}
		p.Subscribe(s)
	})
}

// -----------------------------------------------------------------------------
// Scalar source
// -----------------------------------------------------------------------------

func just[T any](v T) Publisher[T] {
	return PublisherFunc[T](func(s Subscriber[T]) {
		s.OnSubscribe(&scalarSubscription[T]{downstream: s, value: v})
	})
}

const (
	scalarIdle int32 = iota
	scalarEmitted
	scalarCancelled
)

type scalarSubscription[T any] struct {
	downstream Subscriber[T]
	value      T
	state      atomic.Int32
}

func (s *scalarSubscription[T]) Request(n int64) {
	if n <= 0 {
		if s.state.CompareAndSwap(scalarIdle, scalarCancelled) {
			s.downstream.OnError(ErrInvalidRequest)
		}
		return
	}
	if !s.state.CompareAndSwap(scalarIdle, scalarEmitted) {
		return
	}
	s.downstream.OnNext(s.value)
	if s.state.Load() != scalarCancelled {
		s.downstream.OnComplete()
	}
}

func (s *scalarSubscription[T]) Cancel() {
	s.state.Store(scalarCancelled)
}

// -----------------------------------------------------------------------------
// Pull source
// -----------------------------------------------------------------------------

// pullSubscription emits items obtained from next as demand allows. It looks
// one item ahead so completion is signalled right after the last item, even
// when no further demand arrives. All calls to next and stop happen inside
// the drain loop, which only one goroutine runs at a time.
type pullSubscription[T any] struct {
	downstream Subscriber[T]
	next       func() (T, bool)
	stop       func()

	requested atomic.Int64
	wip       atomic.Int32
	cancelled atomic.Bool
	invalid   atomic.Bool

	// drain-loop state
	pending    T
	hasPending bool
	exhausted  bool
	released   bool
}

func subscribePull[T any](s Subscriber[T], next func() (T, bool), stop func()) {
	p := &pullSubscription[T]{downstream: s, next: next, stop: stop}
	s.OnSubscribe(p)
	p.drain()
}

func (p *pullSubscription[T]) Request(n int64) {
	if n <= 0 {
		p.invalid.Store(true)
	} else {
		addCap(&p.requested, n)
	}
	p.drain()
}

func (p *pullSubscription[T]) Cancel() {
	if p.cancelled.Swap(true) {
		return
	}
	p.drain()
}

func (p *pullSubscription[T]) release() {
	if p.released {
		return
	}
	p.released = true
	var zero T
	p.pending = zero
	if p.stop != nil {
		p.stop()
	}
}

func (p *pullSubscription[T]) fill() error {
	if p.hasPending || p.exhausted {
		return nil
	}
	return guard(FaultSource, "pull", func() {
		v, ok := p.next()
		if ok {
			p.pending, p.hasPending = v, true
		} else {
			p.exhausted = true
		}
	})
}

func (p *pullSubscription[T]) drain() {
	if p.wip.Add(1) != 1 {
		return
	}
	missed := int32(1)
	for {
		if p.released {
			return
		}
		if p.cancelled.Load() {
			p.release()
			return
		}
		if p.invalid.Load() {
			p.cancelled.Store(true)
			p.release()
			p.downstream.OnError(ErrInvalidRequest)
			return
		}

		r := p.requested.Load()
		var e int64
		for {
			if p.cancelled.Load() {
				p.release()
				return
			}
			if err := p.fill(); err != nil {
				p.cancelled.Store(true)
				p.release()
				p.downstream.OnError(err)
				return
			}
			if !p.hasPending || e == r {
				break
			}
			v := p.pending
			var zero T
			p.pending, p.hasPending = zero, false
			p.downstream.OnNext(v)
			e++
		}

		if p.exhausted && !p.hasPending {
			if !p.cancelled.Swap(true) {
				p.release()
				p.downstream.OnComplete()
			} else {
				p.release()
			}
			return
		}

		if e > 0 {
			produced(&p.requested, e)
		}
		missed = p.wip.Add(-missed)
		if missed == 0 {
			return
		}
	}
}
