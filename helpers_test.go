package rx

import (
	"sync"
	"testing"
	"time"
)

// probe is a Subscriber that records what it receives. It requests initial
// on subscribe; onNext runs after each item is recorded.
type probe[T any] struct {
	initial int64
	onNext  func(p *probe[T], v T)

	mu        sync.Mutex
	sub       Subscription
	values    []T
	err       error
	completes int
	errors    int
	done      chan struct{}
	once      sync.Once
}

func newProbe[T any](initial int64) *probe[T] {
	return &probe[T]{initial: initial, done: make(chan struct{})}
}

func (p *probe[T]) OnSubscribe(s Subscription) {
	p.mu.Lock()
	p.sub = s
	p.mu.Unlock()
	if p.initial > 0 {
		s.Request(p.initial)
	}
}

func (p *probe[T]) OnNext(v T) {
	p.mu.Lock()
	p.values = append(p.values, v)
	p.mu.Unlock()
	if p.onNext != nil {
		p.onNext(p, v)
	}
}

func (p *probe[T]) OnError(err error) {
	p.mu.Lock()
	p.err = err
	p.errors++
	p.mu.Unlock()
	p.once.Do(func() { close(p.done) })
}

func (p *probe[T]) OnComplete() {
	p.mu.Lock()
	p.completes++
	p.mu.Unlock()
	p.once.Do(func() { close(p.done) })
}

func (p *probe[T]) request(n int64) {
	p.mu.Lock()
	s := p.sub
	p.mu.Unlock()
	s.Request(n)
}

func (p *probe[T]) cancel() {
	p.mu.Lock()
	s := p.sub
	p.mu.Unlock()
	s.Cancel()
}

func (p *probe[T]) snapshot() (values []T, err error, completes, failures int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]T(nil), p.values...), p.err, p.completes, p.errors
}

func (p *probe[T]) terminals() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completes + p.errors
}

func (p *probe[T]) await(t *testing.T, timeout time.Duration) {
	t.Helper()
	select {
	case <-p.done:
	case <-time.After(timeout):
		t.Fatalf("no terminal signal within %s", timeout)
	}
}

func waitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return condition()
}
