// Package testing provides test utilities for rx publishers, most notably
// StepVerifier, which asserts the exact sequence of signals a publisher
// emits.
//
//	rxtest.Create(rx.Range(1, 3)).
//	    ExpectNext(1, 2, 3).
//	    VerifyComplete(t)
//
// Time-driven publishers are verified under a VirtualScheduler, so days of
// ticks take microseconds:
//
//	rxtest.WithVirtualTime(func(vs *rx.VirtualScheduler) rx.Publisher[int64] {
//	    return rx.Interval(24*time.Hour, rx.WithScheduler(vs)).Take(10)
//	}).
//	    ExpectSubscription().
//	    ThenAwait(24 * time.Hour).
//	    ExpectNext(0).
//	    ThenAwait(24 * time.Hour).
//	    ExpectNext(1).
//	    ThenCancel().
//	    Verify(t)
package testing

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/rx"
)

// DefaultTimeout bounds how long a step waits for a signal to arrive.
const DefaultTimeout = 5 * time.Second

// StepVerifier declares an expected sequence of signals and checks a
// publisher against it. Steps run in declaration order when Verify or Run is
// called; each Verify subscribes afresh.
type StepVerifier[T any] struct {
	factory func(*rx.VirtualScheduler) rx.Publisher[T]
	virtual bool
	initial int64
	timeout time.Duration
	clock   clockz.Clock
	steps   []step[T]
}

type step[T any] struct {
	name string
	run  func(*session[T]) error
}

// session is the state of one verification run.
type session[T any] struct {
	verifier  *StepVerifier[T]
	scheduler *rx.VirtualScheduler
	recorder  *Recorder[T]
	cursor    int
	cancelled bool
}

// Create verifies p with unbounded initial demand.
func Create[T any](p rx.Publisher[T]) *StepVerifier[T] {
	return CreateWithDemand(p, rx.Unbounded)
}

// CreateWithDemand verifies p, requesting n items on subscribe. Use
// ThenRequest to add demand later; n may be 0.
func CreateWithDemand[T any](p rx.Publisher[T], n int64) *StepVerifier[T] {
	return &StepVerifier[T]{
		factory: func(*rx.VirtualScheduler) rx.Publisher[T] { return p },
		initial: n,
		timeout: DefaultTimeout,
		clock:   clockz.RealClock,
	}
}

// WithVirtualTime verifies the publisher built by factory. The factory
// receives a fresh VirtualScheduler for every run; ThenAwait and
// ExpectNoEvent advance it instead of sleeping.
func WithVirtualTime[T any](factory func(*rx.VirtualScheduler) rx.Publisher[T]) *StepVerifier[T] {
	return &StepVerifier[T]{
		factory: factory,
		virtual: true,
		initial: rx.Unbounded,
		timeout: DefaultTimeout,
		clock:   clockz.RealClock,
	}
}

// Demand sets the amount requested on subscribe.
func (v *StepVerifier[T]) Demand(n int64) *StepVerifier[T] {
	v.initial = n
	return v
}

// Timeout sets how long each step waits for a signal. Default: DefaultTimeout.
func (v *StepVerifier[T]) Timeout(d time.Duration) *StepVerifier[T] {
	v.timeout = d
	return v
}

// Clock sets the clock used for real-time waits.
func (v *StepVerifier[T]) Clock(clock clockz.Clock) *StepVerifier[T] {
	v.clock = clock
	return v
}

func (v *StepVerifier[T]) add(name string, run func(*session[T]) error) *StepVerifier[T] {
	v.steps = append(v.steps, step[T]{name: name, run: run})
	return v
}

// ExpectSubscription expects OnSubscribe to have been received.
func (v *StepVerifier[T]) ExpectSubscription() *StepVerifier[T] {
	return v.add("expectSubscription", func(s *session[T]) error {
		if !s.recorder.waitSubscribed(s.verifier.timeout) {
			return errors.New("expected: onSubscribe(); actual: no subscription")
		}
		return nil
	})
}

// ExpectNext expects the next signals to be onNext with exactly these values.
func (v *StepVerifier[T]) ExpectNext(values ...T) *StepVerifier[T] {
	for _, want := range values {
		v.add(fmt.Sprintf("expectNext(%v)", want), func(s *session[T]) error {
			got, err := s.next()
			if err != nil {
				return fmt.Errorf("expected: onNext(%v); actual: %w", want, err)
			}
			if got.Kind != rx.KindNext || !assert.ObjectsAreEqual(want, got.Value) {
				return fmt.Errorf("expected: onNext(%v); actual: %s", want, got)
			}
			return nil
		})
	}
	return v
}

// ExpectNextCount expects n onNext signals with any values.
func (v *StepVerifier[T]) ExpectNextCount(n int) *StepVerifier[T] {
	return v.add(fmt.Sprintf("expectNextCount(%d)", n), func(s *session[T]) error {
		for i := 0; i < n; i++ {
			got, err := s.next()
			if err != nil {
				return fmt.Errorf("expected: %d more onNext; actual: %w", n-i, err)
			}
			if got.Kind != rx.KindNext {
				return fmt.Errorf("expected: %d more onNext; actual: %s", n-i, got)
			}
		}
		return nil
	})
}

// ExpectNextMatches expects an onNext whose value satisfies predicate.
func (v *StepVerifier[T]) ExpectNextMatches(predicate func(T) bool) *StepVerifier[T] {
	return v.add("expectNextMatches", func(s *session[T]) error {
		got, err := s.next()
		if err != nil {
			return fmt.Errorf("expected: onNext matching predicate; actual: %w", err)
		}
		if got.Kind != rx.KindNext || !predicate(got.Value) {
			return fmt.Errorf("expected: onNext matching predicate; actual: %s", got)
		}
		return nil
	})
}

// ExpectComplete expects onComplete.
func (v *StepVerifier[T]) ExpectComplete() *StepVerifier[T] {
	return v.add("expectComplete", func(s *session[T]) error {
		got, err := s.next()
		if err != nil {
			return fmt.Errorf("expected: onComplete(); actual: %w", err)
		}
		if got.Kind != rx.KindComplete {
			return fmt.Errorf("expected: onComplete(); actual: %s", got)
		}
		return nil
	})
}

// ExpectError expects onError with any error.
func (v *StepVerifier[T]) ExpectError() *StepVerifier[T] {
	return v.expectError("expectError", "onError()", func(error) bool { return true })
}

// ExpectErrorIs expects onError with an error matching target via errors.Is.
func (v *StepVerifier[T]) ExpectErrorIs(target error) *StepVerifier[T] {
	return v.expectError("expectErrorIs", fmt.Sprintf("onError(%v)", target), func(err error) bool {
		return errors.Is(err, target)
	})
}

// ExpectErrorMatches expects onError with an error satisfying predicate.
func (v *StepVerifier[T]) ExpectErrorMatches(predicate func(error) bool) *StepVerifier[T] {
	return v.expectError("expectErrorMatches", "onError matching predicate", predicate)
}

func (v *StepVerifier[T]) expectError(name, want string, match func(error) bool) *StepVerifier[T] {
	return v.add(name, func(s *session[T]) error {
		got, err := s.next()
		if err != nil {
			return fmt.Errorf("expected: %s; actual: %w", want, err)
		}
		if got.Kind != rx.KindError || !match(got.Err) {
			return fmt.Errorf("expected: %s; actual: %s", want, got)
		}
		return nil
	})
}

// ExpectNoEvent expects no signal during d. Under virtual time the clock is
// advanced by d; otherwise the verifier waits d of real time.
func (v *StepVerifier[T]) ExpectNoEvent(d time.Duration) *StepVerifier[T] {
	return v.add(fmt.Sprintf("expectNoEvent(%s)", d), func(s *session[T]) error {
		s.await(d)
		if got, ok := s.peek(); ok {
			return fmt.Errorf("expected: no event during %s; actual: %s", d, got)
		}
		return nil
	})
}

// ThenAwait lets d pass: virtual time is advanced, real time is waited.
func (v *StepVerifier[T]) ThenAwait(d time.Duration) *StepVerifier[T] {
	return v.add(fmt.Sprintf("thenAwait(%s)", d), func(s *session[T]) error {
		s.await(d)
		return nil
	})
}

// ThenRequest requests n more items.
func (v *StepVerifier[T]) ThenRequest(n int64) *StepVerifier[T] {
	return v.add(fmt.Sprintf("thenRequest(%d)", n), func(s *session[T]) error {
		s.recorder.Request(n)
		return nil
	})
}

// ThenCancel cancels the subscription. Signals that arrived before the
// cancel but were not expected are not checked.
func (v *StepVerifier[T]) ThenCancel() *StepVerifier[T] {
	return v.add("thenCancel", func(s *session[T]) error {
		s.recorder.Cancel()
		s.cancelled = true
		return nil
	})
}

// Then runs fn, for side effects such as pushing into a source channel.
func (v *StepVerifier[T]) Then(fn func()) *StepVerifier[T] {
	return v.add("then", func(*session[T]) error {
		fn()
		return nil
	})
}

// Run subscribes, executes every step and returns the first mismatch.
// After the last step it fails if unexpected signals were received, unless
// the steps ended with ThenCancel.
func (v *StepVerifier[T]) Run() error {
	s := &session[T]{verifier: v, recorder: NewRecorder[T](v.initial)}
	s.recorder.clock = v.clock
	if v.virtual {
		s.scheduler = rx.NewVirtualScheduler()
	}

	p := v.factory(s.scheduler)
	if p == nil {
		return errors.New("publisher factory returned nil")
	}
	p.Subscribe(s.recorder)
	defer func() {
		if s.recorder.Terminals() == 0 {
			s.recorder.Cancel()
		}
	}()

	for i, st := range v.steps {
		if err := st.run(s); err != nil {
			return fmt.Errorf("expectation %q failed (step %d): %w", st.name, i+1, err)
		}
	}
	if !s.cancelled {
		if got, ok := s.peek(); ok {
			return fmt.Errorf("unexpected signal after last step: %s", got)
		}
	}
	return nil
}

// Verify runs the steps and fails t on the first mismatch.
func (v *StepVerifier[T]) Verify(t testing.TB) {
	t.Helper()
	if err := v.Run(); err != nil {
		t.Fatal(err)
	}
}

// VerifyComplete appends ExpectComplete and verifies.
func (v *StepVerifier[T]) VerifyComplete(t testing.TB) {
	t.Helper()
	v.ExpectComplete().Verify(t)
}

// VerifyError appends ExpectError and verifies.
func (v *StepVerifier[T]) VerifyError(t testing.TB) {
	t.Helper()
	v.ExpectError().Verify(t)
}

// VerifyErrorIs appends ExpectErrorIs and verifies.
func (v *StepVerifier[T]) VerifyErrorIs(t testing.TB, target error) {
	t.Helper()
	v.ExpectErrorIs(target).Verify(t)
}

// next consumes the next data or terminal signal.
func (s *session[T]) next() (rx.Signal[T], error) {
	sig, ok := s.recorder.signalAt(s.cursor, s.verifier.timeout)
	if !ok {
		var zero rx.Signal[T]
		return zero, fmt.Errorf("no signal within %s", s.verifier.timeout)
	}
	s.cursor++
	return sig, nil
}

// peek returns an unconsumed signal if one has already arrived.
func (s *session[T]) peek() (rx.Signal[T], bool) {
	sigs := s.recorder.Signals()
	if s.cursor < len(sigs) {
		return sigs[s.cursor], true
	}
	var zero rx.Signal[T]
	return zero, false
}

func (s *session[T]) await(d time.Duration) {
	if s.scheduler != nil {
		s.scheduler.Advance(d)
		return
	}
	timer := s.verifier.clock.NewTimer(d)
	defer timer.Stop()
	<-timer.C()
}
