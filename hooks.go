package rx

import (
	"errors"
	"sync/atomic"
)

// hooks holds the side effects of one peek stage. Unset hooks are skipped.
type hooks[T any] struct {
	stage       string
	onSubscribe func(Subscription)
	onRequest   func(int64)
	onNext      func(T)
	onError     func(error)
	onComplete  func()
	onCancel    func()
	onTerminate func()

	// onSuccess receives the single value of a Mono, or the zero value
	// when the Mono completes empty.
	onSuccess func(T)
}

func peekPublisher[T any](upstream Publisher[T], h hooks[T]) Publisher[T] {
	return PublisherFunc[T](func(s Subscriber[T]) {
		upstream.Subscribe(&peekSubscriber[T]{downstream: s, hooks: h})
	})
}

// peekSubscriber runs hooks at signal points without altering the signals.
// A panicking hook becomes a FaultHook error on the main path: upstream is
// cancelled and the fault replaces the signal that triggered the hook.
type peekSubscriber[T any] struct {
	downstream Subscriber[T]
	hooks      hooks[T]
	upstream   Subscription
	done       atomic.Bool
	valued     bool
}

func (p *peekSubscriber[T]) run(fn func()) error {
	return guard(FaultHook, p.hooks.stage, fn)
}

func (p *peekSubscriber[T]) OnSubscribe(s Subscription) {
	p.upstream = s
	if h := p.hooks.onSubscribe; h != nil {
		if err := p.run(func() { h(s) }); err != nil {
			p.done.Store(true)
			s.Cancel()
			p.downstream.OnSubscribe(&emptySubscription{})
			p.downstream.OnError(err)
			return
		}
	}
	p.downstream.OnSubscribe(p)
}

func (p *peekSubscriber[T]) OnNext(v T) {
	if p.done.Load() {
		return
	}
	if h := p.hooks.onSuccess; h != nil {
		p.valued = true
		if err := p.run(func() { h(v) }); err != nil {
			p.fail(err)
			return
		}
	}
	if h := p.hooks.onNext; h != nil {
		if err := p.run(func() { h(v) }); err != nil {
			p.fail(err)
			return
		}
	}
	p.downstream.OnNext(v)
}

func (p *peekSubscriber[T]) OnError(err error) {
	if !p.done.CompareAndSwap(false, true) {
		dropError(p.hooks.stage, err)
		return
	}
	if h := p.hooks.onError; h != nil {
		if herr := p.run(func() { h(err) }); herr != nil {
			err = errors.Join(err, herr)
		}
	}
	if h := p.hooks.onTerminate; h != nil {
		if herr := p.run(h); herr != nil {
			err = errors.Join(err, herr)
		}
	}
	p.downstream.OnError(err)
}

func (p *peekSubscriber[T]) OnComplete() {
	if !p.done.CompareAndSwap(false, true) {
		return
	}
	if h := p.hooks.onSuccess; h != nil && !p.valued {
		var zero T
		if err := p.run(func() { h(zero) }); err != nil {
			p.downstream.OnError(err)
			return
		}
	}
	if h := p.hooks.onComplete; h != nil {
		if err := p.run(h); err != nil {
			p.downstream.OnError(err)
			return
		}
	}
	if h := p.hooks.onTerminate; h != nil {
		if err := p.run(h); err != nil {
			p.downstream.OnError(err)
			return
		}
	}
	p.downstream.OnComplete()
}

// fail terminates the main path with a hook fault.
func (p *peekSubscriber[T]) fail(err error) {
	if !p.done.CompareAndSwap(false, true) {
		dropError(p.hooks.stage, err)
		return
	}
	p.upstream.Cancel()
	p.downstream.OnError(err)
}

func (p *peekSubscriber[T]) Request(n int64) {
	if h := p.hooks.onRequest; h != nil {
		if err := p.run(func() { h(n) }); err != nil {
			p.fail(err)
			return
		}
	}
	p.upstream.Request(n)
}

func (p *peekSubscriber[T]) Cancel() {
	if h := p.hooks.onCancel; h != nil && !p.done.Load() {
		// Nothing downstream listens after a cancel, so a failing hook is
		// reported instead of signalled.
		if err := p.run(h); err != nil {
			dropError(p.hooks.stage, err)
		}
	}
	p.upstream.Cancel()
}
