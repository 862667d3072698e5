package rx

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/capitan"
)

// Callbacks is the set of functions a consumer supplies to Consume.
// Every field is optional.
//
// Without OnSubscribe the subscription requests Unbounded as soon as it is
// established. With OnSubscribe, the callback owns demand: it must call
// Request itself, and nothing is emitted until it does.
//
// Without OnError a failure is reported through the SubscriberErrorUnhandled
// signal instead of being lost.
type Callbacks[T any] struct {
	OnNext      func(T)
	OnError     func(error)
	OnComplete  func()
	OnSubscribe func(Subscription)
}

// Disposable is the handle returned by Consume.
type Disposable interface {
	// Dispose cancels the subscription. It is a no-op once the sequence has
	// terminated.
	Dispose()

	// IsDisposed reports whether no further signals will be delivered.
	IsDisposed() bool

	// State returns the lifecycle state of the subscription.
	State() State
}

func consume[T any](p Publisher[T], cbs []Callbacks[T]) Disposable {
	var cb Callbacks[T]
	for _, c := range cbs {
		if c.OnNext != nil {
			cb.OnNext = c.OnNext
		}
		if c.OnError != nil {
			cb.OnError = c.OnError
		}
		if c.OnComplete != nil {
			cb.OnComplete = c.OnComplete
		}
		if c.OnSubscribe != nil {
			cb.OnSubscribe = c.OnSubscribe
		}
	}
	l := &lambdaSubscriber[T]{callbacks: cb}
	p.Subscribe(l)
	return l
}

// lambdaSubscriber adapts Callbacks to the Subscriber interface.
type lambdaSubscriber[T any] struct {
	callbacks Callbacks[T]
	state     atomic.Int32

	mu           sync.Mutex
	subscription Subscription
}

func (l *lambdaSubscriber[T]) OnSubscribe(s Subscription) {
	if !l.state.CompareAndSwap(int32(StatePending), int32(StateActive)) {
		s.Cancel()
		return
	}
	l.mu.Lock()
	l.subscription = s
	l.mu.Unlock()

	if l.callbacks.OnSubscribe == nil {
		s.Request(Unbounded)
		return
	}
	if err := guard(FaultHook, "onSubscribe", func() { l.callbacks.OnSubscribe(l) }); err != nil {
		s.Cancel()
		l.OnError(err)
	}
}

func (l *lambdaSubscriber[T]) OnNext(v T) {
	if State(l.state.Load()) != StateActive || l.callbacks.OnNext == nil {
		return
	}
	if err := guard(FaultHook, "onNext", func() { l.callbacks.OnNext(v) }); err != nil {
		l.cancelUpstream()
		l.OnError(err)
	}
}

func (l *lambdaSubscriber[T]) OnError(err error) {
	if !l.state.CompareAndSwap(int32(StateActive), int32(StateFailed)) {
		dropError("subscriber", err)
		return
	}
	if l.callbacks.OnError == nil {
		capitan.Emit(context.Background(), SubscriberErrorUnhandled,
			KeyError.Field(err.Error()),
		)
		return
	}
	if herr := guard(FaultHook, "onError", func() { l.callbacks.OnError(err) }); herr != nil {
		dropError("subscriber", herr)
	}
}

func (l *lambdaSubscriber[T]) OnComplete() {
	if !l.state.CompareAndSwap(int32(StateActive), int32(StateCompleted)) {
		return
	}
	if l.callbacks.OnComplete == nil {
		return
	}
	if err := guard(FaultHook, "onComplete", l.callbacks.OnComplete); err != nil {
		dropError("subscriber", err)
	}
}

// Request lets an OnSubscribe callback that kept the Subscription drive demand.
func (l *lambdaSubscriber[T]) Request(n int64) {
	l.mu.Lock()
	s := l.subscription
	l.mu.Unlock()
	if s != nil && State(l.state.Load()) == StateActive {
		s.Request(n)
	}
}

// Cancel is the Subscription view of Dispose.
func (l *lambdaSubscriber[T]) Cancel() {
	l.Dispose()
}

func (l *lambdaSubscriber[T]) Dispose() {
	if l.state.CompareAndSwap(int32(StateActive), int32(StateCancelled)) ||
		l.state.CompareAndSwap(int32(StatePending), int32(StateCancelled)) {
		l.cancelUpstream()
	}
}

func (l *lambdaSubscriber[T]) IsDisposed() bool {
	return l.State().Terminated()
}

func (l *lambdaSubscriber[T]) State() State {
	return State(l.state.Load())
}

func (l *lambdaSubscriber[T]) cancelUpstream() {
	l.mu.Lock()
	s := l.subscription
	l.mu.Unlock()
	if s != nil {
		s.Cancel()
	}
}
