package rx

import (
	"context"
	"fmt"
	"sync"
)

// blockingSubscriber collects every item and closes done on termination.
type blockingSubscriber[T any] struct {
	mu           sync.Mutex
	items        []T
	err          error
	done         chan struct{}
	subscription Subscription
}

func newBlockingSubscriber[T any]() *blockingSubscriber[T] {
	return &blockingSubscriber[T]{done: make(chan struct{})}
}

func (b *blockingSubscriber[T]) OnSubscribe(s Subscription) {
	b.mu.Lock()
	b.subscription = s
	b.mu.Unlock()
	s.Request(Unbounded)
}

func (b *blockingSubscriber[T]) OnNext(v T) {
	b.mu.Lock()
	b.items = append(b.items, v)
	b.mu.Unlock()
}

func (b *blockingSubscriber[T]) OnError(err error) {
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
	close(b.done)
}

func (b *blockingSubscriber[T]) OnComplete() {
	close(b.done)
}

// await blocks until the sequence terminates or ctx is done. On ctx expiry
// the subscription is cancelled and the error wraps ErrTimeout.
func (b *blockingSubscriber[T]) await(ctx context.Context) ([]T, error) {
	select {
	case <-b.done:
	case <-ctx.Done():
		b.mu.Lock()
		s := b.subscription
		b.mu.Unlock()
		if s != nil {
			s.Cancel()
		}
		return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.items, b.err
	}
	return b.items, nil
}

func collect[T any](ctx context.Context, p Publisher[T]) ([]T, error) {
	b := newBlockingSubscriber[T]()
	p.Subscribe(b)
	return b.await(ctx)
}
