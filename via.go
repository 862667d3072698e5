package rx

import (
	"context"
	"sync/atomic"

	"github.com/zoobzio/pipz"
)

// Via runs every item of f through a pipz pipeline, which may transform it
// or fail it. Each subscription gets its own context, cancelled when the
// subscription is cancelled or terminates, so long-running processors such as
// retries and timeouts stop with the stream. A pipeline error terminates the
// sequence with a *Fault of kind FaultTransform.
//
// Example:
//
//	enrich := pipz.Apply(enrichID, func(ctx context.Context, o Order) (Order, error) {
//	    return lookup(ctx, o)
//	})
//	orders := rx.Via(rx.FromSlice(batch), enrich)
func Via[T any](f Flux[T], chain pipz.Chainable[T]) Flux[T] {
	upstream := f.publisher()
	return Flux[T]{source: PublisherFunc[T](func(s Subscriber[T]) {
		ctx, cancel := context.WithCancel(context.Background())
		upstream.Subscribe(&viaSubscriber[T]{
			downstream: s,
			chain:      chain,
			ctx:        ctx,
			cancel:     cancel,
		})
	})}
}

type viaSubscriber[T any] struct {
	downstream Subscriber[T]
	chain      pipz.Chainable[T]
	ctx        context.Context
	cancel     context.CancelFunc
	upstream   Subscription
	done       atomic.Bool
}

func (v *viaSubscriber[T]) OnSubscribe(s Subscription) {
	v.upstream = s
	v.downstream.OnSubscribe(v)
}

func (v *viaSubscriber[T]) OnNext(item T) {
	if v.done.Load() {
		return
	}
	var (
		out  T
		perr error
	)
	err := guard(FaultTransform, "via", func() { out, perr = v.chain.Process(v.ctx, item) })
	if err == nil && perr != nil {
		err = newFault(FaultTransform, "via", perr)
	}
	if err != nil {
		if v.done.CompareAndSwap(false, true) {
			v.upstream.Cancel()
			v.cancel()
			v.downstream.OnError(err)
		}
		return
	}
	v.downstream.OnNext(out)
}

func (v *viaSubscriber[T]) OnError(err error) {
	if !v.done.CompareAndSwap(false, true) {
		dropError("via", err)
		return
	}
	v.cancel()
	v.downstream.OnError(err)
}

func (v *viaSubscriber[T]) OnComplete() {
	if v.done.CompareAndSwap(false, true) {
		v.cancel()
		v.downstream.OnComplete()
	}
}

func (v *viaSubscriber[T]) Request(n int64) {
	v.upstream.Request(n)
}

func (v *viaSubscriber[T]) Cancel() {
	v.cancel()
	v.upstream.Cancel()
}
