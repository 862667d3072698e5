package rx

import "context"

// Flux is a cold, restartable sequence of zero or more items. The zero value
// fails every subscription with ErrNilPublisher.
//
// Operators return new Flux values and never modify the receiver, so a Flux
// can be shared and subscribed to any number of times.
type Flux[T any] struct {
	source Publisher[T]
}

// FromPublisher wraps any Publisher as a Flux.
func FromPublisher[T any](p Publisher[T]) Flux[T] {
	if f, ok := p.(Flux[T]); ok {
		return f
	}
	return Flux[T]{source: p}
}

func (f Flux[T]) publisher() Publisher[T] {
	if f.source == nil {
		return failed[T](ErrNilPublisher)
	}
	return f.source
}

// Subscribe implements Publisher. Use it with a custom Subscriber that
// manages its own demand; use Consume for callbacks.
func (f Flux[T]) Subscribe(s Subscriber[T]) {
	f.publisher().Subscribe(s)
}

// Consume subscribes with callbacks and returns a handle to the
// subscription. With no arguments every signal is discarded and demand is
// unbounded.
func (f Flux[T]) Consume(cbs ...Callbacks[T]) Disposable {
	return consume(f.publisher(), cbs)
}

// CollectList blocks until the sequence terminates and returns every item.
// If ctx is done first the subscription is cancelled and the error wraps
// ErrTimeout.
func (f Flux[T]) CollectList(ctx context.Context) ([]T, error) {
	return collect(ctx, f.publisher())
}

// BlockLast blocks until the sequence terminates and returns its last item.
// The boolean is false for an empty sequence.
func (f Flux[T]) BlockLast(ctx context.Context) (T, bool, error) {
	var zero T
	items, err := collect(ctx, f.publisher())
	if err != nil {
		return zero, false, err
	}
	if len(items) == 0 {
		return zero, false, nil
	}
	return items[len(items)-1], true, nil
}

// Filter forwards only the items for which predicate returns true.
// A panicking predicate fails the sequence with a FaultTransform.
func (f Flux[T]) Filter(predicate func(T) bool) Flux[T] {
	return Flux[T]{source: filterPublisher(f.publisher(), predicate)}
}

// Take forwards the first n items, then cancels the upstream and completes.
// It never requests more than n items upstream.
func (f Flux[T]) Take(n int64) Flux[T] {
	return Flux[T]{source: takePublisher(f.publisher(), n)}
}

// OnErrorReturn replaces an upstream error with v followed by completion.
func (f Flux[T]) OnErrorReturn(v T) Flux[T] {
	return Flux[T]{source: returnPublisher(f.publisher(), v)}
}

// OnErrorResume replaces an upstream error with the sequence of the
// publisher returned by fallback. Outstanding demand carries over.
func (f Flux[T]) OnErrorResume(fallback func(error) Publisher[T]) Flux[T] {
	return Flux[T]{source: resumePublisher(f.publisher(), "onErrorResume", fallback)}
}

// Log emits a capitan event for every signal crossing this point of the
// chain, tagged with category.
func (f Flux[T]) Log(category string) Flux[T] {
	return Flux[T]{source: logPublisher(f.publisher(), category)}
}

// Metrics reports the signals crossing this point of the chain to provider.
// WithClock sets the clock used for durations.
func (f Flux[T]) Metrics(provider MetricsProvider, opts ...Option) Flux[T] {
	return Flux[T]{source: metricsPublisher(f.publisher(), provider, buildConfig(opts).clock)}
}

// DoOnSubscribe calls fn when the subscription is established.
func (f Flux[T]) DoOnSubscribe(fn func(Subscription)) Flux[T] {
	return f.peek(hooks[T]{stage: "doOnSubscribe", onSubscribe: fn})
}

// DoOnRequest calls fn with every demand request before it travels upstream.
func (f Flux[T]) DoOnRequest(fn func(int64)) Flux[T] {
	return f.peek(hooks[T]{stage: "doOnRequest", onRequest: fn})
}

// DoOnNext calls fn with every item before it is forwarded.
func (f Flux[T]) DoOnNext(fn func(T)) Flux[T] {
	return f.peek(hooks[T]{stage: "doOnNext", onNext: fn})
}

// DoOnError calls fn with the terminal error before it is forwarded.
func (f Flux[T]) DoOnError(fn func(error)) Flux[T] {
	return f.peek(hooks[T]{stage: "doOnError", onError: fn})
}

// DoOnComplete calls fn before completion is forwarded.
func (f Flux[T]) DoOnComplete(fn func()) Flux[T] {
	return f.peek(hooks[T]{stage: "doOnComplete", onComplete: fn})
}

// DoOnCancel calls fn when the downstream cancels.
func (f Flux[T]) DoOnCancel(fn func()) Flux[T] {
	return f.peek(hooks[T]{stage: "doOnCancel", onCancel: fn})
}

// DoOnTerminate calls fn before either terminal signal is forwarded.
func (f Flux[T]) DoOnTerminate(fn func()) Flux[T] {
	return f.peek(hooks[T]{stage: "doOnTerminate", onTerminate: fn})
}

func (f Flux[T]) peek(h hooks[T]) Flux[T] {
	return Flux[T]{source: peekPublisher(f.publisher(), h)}
}
