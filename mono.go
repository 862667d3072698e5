package rx

import "context"

// Mono is a cold, restartable sequence of at most one item. The zero value
// fails every subscription with ErrNilPublisher.
type Mono[T any] struct {
	source Publisher[T]
}

// MonoFromPublisher wraps p as a Mono. Only the first item of p is kept;
// the upstream is cancelled after it.
func MonoFromPublisher[T any](p Publisher[T]) Mono[T] {
	switch v := p.(type) {
	case Mono[T]:
		return v
	case nil:
		return Mono[T]{}
	}
	return Mono[T]{source: takePublisher(p, 1)}
}

func (m Mono[T]) publisher() Publisher[T] {
	if m.source == nil {
		return failed[T](ErrNilPublisher)
	}
	return m.source
}

// Subscribe implements Publisher.
func (m Mono[T]) Subscribe(s Subscriber[T]) {
	m.publisher().Subscribe(s)
}

// Consume subscribes with callbacks; see Flux.Consume.
func (m Mono[T]) Consume(cbs ...Callbacks[T]) Disposable {
	return consume(m.publisher(), cbs)
}

// Flux returns the Mono as a Flux of zero or one item.
func (m Mono[T]) Flux() Flux[T] {
	return Flux[T]{source: m.publisher()}
}

// Block waits for the Mono to terminate. The boolean is false when it
// completed empty. If ctx is done first the subscription is cancelled and the
// error wraps ErrTimeout.
func (m Mono[T]) Block(ctx context.Context) (T, bool, error) {
	var zero T
	items, err := collect(ctx, m.publisher())
	if err != nil {
		return zero, false, err
	}
	if len(items) == 0 {
		return zero, false, nil
	}
	return items[0], true, nil
}

// OnErrorReturn replaces an upstream error with v.
func (m Mono[T]) OnErrorReturn(v T) Mono[T] {
	return Mono[T]{source: returnPublisher(m.publisher(), v)}
}

// OnErrorResume replaces an upstream error with the publisher returned by
// fallback.
func (m Mono[T]) OnErrorResume(fallback func(error) Publisher[T]) Mono[T] {
	return Mono[T]{source: resumePublisher(m.publisher(), "onErrorResume", fallback)}
}

// Log emits a capitan event for every signal crossing this point of the chain.
func (m Mono[T]) Log(category string) Mono[T] {
	return Mono[T]{source: logPublisher(m.publisher(), category)}
}

// Metrics reports the signals crossing this point of the chain to provider.
func (m Mono[T]) Metrics(provider MetricsProvider, opts ...Option) Mono[T] {
	return Mono[T]{source: metricsPublisher(m.publisher(), provider, buildConfig(opts).clock)}
}

// DoOnSubscribe calls fn when the subscription is established.
func (m Mono[T]) DoOnSubscribe(fn func(Subscription)) Mono[T] {
	return m.peek(hooks[T]{stage: "doOnSubscribe", onSubscribe: fn})
}

// DoOnRequest calls fn with every demand request before it travels upstream.
func (m Mono[T]) DoOnRequest(fn func(int64)) Mono[T] {
	return m.peek(hooks[T]{stage: "doOnRequest", onRequest: fn})
}

// DoOnNext calls fn with the value before it is forwarded.
func (m Mono[T]) DoOnNext(fn func(T)) Mono[T] {
	return m.peek(hooks[T]{stage: "doOnNext", onNext: fn})
}

// DoOnSuccess calls fn when the Mono succeeds: with its value, or with the
// zero value if it completes empty. It is not called on error.
func (m Mono[T]) DoOnSuccess(fn func(T)) Mono[T] {
	return m.peek(hooks[T]{stage: "doOnSuccess", onSuccess: fn})
}

// DoOnError calls fn with the terminal error before it is forwarded.
func (m Mono[T]) DoOnError(fn func(error)) Mono[T] {
	return m.peek(hooks[T]{stage: "doOnError", onError: fn})
}

// DoOnCancel calls fn when the downstream cancels.
func (m Mono[T]) DoOnCancel(fn func()) Mono[T] {
	return m.peek(hooks[T]{stage: "doOnCancel", onCancel: fn})
}

// DoOnTerminate calls fn before either terminal signal is forwarded.
func (m Mono[T]) DoOnTerminate(fn func()) Mono[T] {
	return m.peek(hooks[T]{stage: "doOnTerminate", onTerminate: fn})
}

func (m Mono[T]) peek(h hooks[T]) Mono[T] {
	return Mono[T]{source: peekPublisher(m.publisher(), h)}
}
