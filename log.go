package rx

import (
	"context"
	"fmt"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

func logPublisher[T any](upstream Publisher[T], category string) Publisher[T] {
	return PublisherFunc[T](func(s Subscriber[T]) {
		upstream.Subscribe(&logSubscriber[T]{downstream: s, category: category, clock: clockz.RealClock})
	})
}

// logSubscriber emits a capitan event for every signal that crosses it.
type logSubscriber[T any] struct {
	downstream Subscriber[T]
	category   string
	clock      clockz.Clock
	started    time.Time
	upstream   Subscription
}

func (l *logSubscriber[T]) OnSubscribe(s Subscription) {
	l.upstream = s
	l.started = l.clock.Now()
	capitan.Emit(context.Background(), LogSubscribe, KeyCategory.Field(l.category))
	l.downstream.OnSubscribe(l)
}

func (l *logSubscriber[T]) OnNext(v T) {
	capitan.Emit(context.Background(), LogNext,
		KeyCategory.Field(l.category),
		KeyValue.Field(fmt.Sprint(v)),
	)
	l.downstream.OnNext(v)
}

func (l *logSubscriber[T]) OnError(err error) {
	capitan.Emit(context.Background(), LogError,
		KeyCategory.Field(l.category),
		KeyError.Field(err.Error()),
		KeyElapsed.Field(l.clock.Now().Sub(l.started)),
	)
	l.downstream.OnError(err)
}

func (l *logSubscriber[T]) OnComplete() {
	capitan.Emit(context.Background(), LogComplete,
		KeyCategory.Field(l.category),
		KeyElapsed.Field(l.clock.Now().Sub(l.started)),
	)
	l.downstream.OnComplete()
}

func (l *logSubscriber[T]) Request(n int64) {
	amount := int(n)
	if n == Unbounded {
		amount = -1
	}
	capitan.Emit(context.Background(), LogRequest,
		KeyCategory.Field(l.category),
		KeyRequest.Field(amount),
	)
	l.upstream.Request(n)
}

func (l *logSubscriber[T]) Cancel() {
	capitan.Emit(context.Background(), LogCancel, KeyCategory.Field(l.category))
	l.upstream.Cancel()
}
