package rx

import (
	"context"
	"sync/atomic"
)

// FromChannel returns a Flux that forwards values received from ch.
//
// The channel is only read while the subscriber has outstanding demand, so a
// slow consumer applies backpressure to the channel's producer. The sequence
// completes when ch is closed and fails with the context's cause when ctx is
// done. Values are forwarded from a single goroutine per subscription, started
// on the first request.
//
// Every subscription competes for the same channel; values are not replayed.
func FromChannel[T any](ctx context.Context, ch <-chan T) Flux[T] {
	return Flux[T]{source: PublisherFunc[T](func(s Subscriber[T]) {
		subCtx, cancel := context.WithCancel(ctx)
		c := &channelSubscription[T]{
			ctx:        subCtx,
			cancel:     cancel,
			ch:         ch,
			downstream: s,
			wake:       make(chan struct{}, 1),
		}
		s.OnSubscribe(c)
	})}
}

type channelSubscription[T any] struct {
	ctx        context.Context
	cancel     context.CancelFunc
	ch         <-chan T
	downstream Subscriber[T]
	wake       chan struct{}

	requested atomic.Int64
	started   atomic.Bool
	cancelled atomic.Bool
	invalid   atomic.Bool
}

func (c *channelSubscription[T]) Request(n int64) {
	if n <= 0 {
		c.invalid.Store(true)
	} else {
		addCap(&c.requested, n)
	}
	if c.started.CompareAndSwap(false, true) {
		go c.pump()
	}
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *channelSubscription[T]) Cancel() {
	c.cancelled.Store(true)
	c.cancel()
}

// pump is the only goroutine that signals downstream.
func (c *channelSubscription[T]) pump() {
	defer c.cancel()
	for {
		for c.requested.Load() == 0 && !c.invalid.Load() {
			select {
			case <-c.ctx.Done():
				c.stop()
				return
			case <-c.wake:
			}
		}
		if c.invalid.Load() {
			c.cancelled.Store(true)
			c.downstream.OnError(ErrInvalidRequest)
			return
		}

		select {
		case <-c.ctx.Done():
			c.stop()
			return
		case v, ok := <-c.ch:
			if !ok {
				if !c.cancelled.Swap(true) {
					c.downstream.OnComplete()
				}
				return
			}
			if c.cancelled.Load() {
				return
			}
			produced(&c.requested, 1)
			c.downstream.OnNext(v)
		}
	}
}

// stop reports a context that ended without the subscriber cancelling.
func (c *channelSubscription[T]) stop() {
	if c.cancelled.Swap(true) {
		return
	}
	c.downstream.OnError(context.Cause(c.ctx))
}
