package benchmarks

import (
	"context"
	"testing"
	"time"

	"github.com/zoobzio/pipz"
	"github.com/zoobzio/rx"
)

var benchDoubleID = pipz.NewIdentity("bench:double", "Benchmark double transform")

// countingSubscriber requests batch items at a time and counts what arrives.
type countingSubscriber struct {
	batch int64
	sub   rx.Subscription
	seen  int64
}

func (c *countingSubscriber) OnSubscribe(s rx.Subscription) {
	c.sub = s
	s.Request(c.batch)
}

func (c *countingSubscriber) OnNext(int) {
	c.seen++
	if c.batch != rx.Unbounded && c.seen%c.batch == 0 {
		c.sub.Request(c.batch)
	}
}

func (c *countingSubscriber) OnError(error) {}
func (c *countingSubscriber) OnComplete()   {}

func BenchmarkRange_Unbounded(b *testing.B) {
	src := rx.Range(0, 1000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src.Subscribe(&countingSubscriber{batch: rx.Unbounded})
	}
}

func BenchmarkRange_OneByOne(b *testing.B) {
	src := rx.Range(0, 1000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src.Subscribe(&countingSubscriber{batch: 1})
	}
}

func BenchmarkRange_Batch32(b *testing.B) {
	src := rx.Range(0, 1000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src.Subscribe(&countingSubscriber{batch: 32})
	}
}

func BenchmarkOperatorChain(b *testing.B) {
	src := rx.Map(rx.Range(0, 1000), func(v int) (int, error) { return v + 1, nil }).
		Filter(func(v int) bool { return v%2 == 0 }).
		DoOnNext(func(int) {}).
		Take(400)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src.Subscribe(&countingSubscriber{batch: 16})
	}
}

func BenchmarkVia(b *testing.B) {
	double := pipz.Transform(benchDoubleID, func(_ context.Context, v int) int { return v * 2 })
	src := rx.Via(rx.Range(0, 1000), double)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src.Subscribe(&countingSubscriber{batch: rx.Unbounded})
	}
}

func BenchmarkCollectList(b *testing.B) {
	src := rx.Range(0, 1000)
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := src.CollectList(ctx); err != nil {
			b.Fatalf("CollectList() error = %v", err)
		}
	}
}

func BenchmarkVirtualInterval(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		vs := rx.NewVirtualScheduler()
		rx.Interval(time.Second, rx.WithScheduler(vs)).Take(100).Consume()
		vs.Advance(100 * time.Second)
	}
}

func BenchmarkFromChannel(b *testing.B) {
	ch := make(chan int, 1024)
	go func() {
		defer close(ch)
		for i := 0; i < b.N; i++ {
			ch <- i
		}
	}()
	b.ReportAllocs()
	b.ResetTimer()
	if _, err := rx.FromChannel(context.Background(), ch).CollectList(context.Background()); err != nil {
		b.Fatalf("CollectList() error = %v", err)
	}
}
