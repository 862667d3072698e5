// Package rx provides backpressure-controlled reactive streams.
//
// The core types are Flux, a lazy sequence of zero or more items, and Mono,
// a lazy sequence of at most one item. Both are cold: nothing happens until a
// Subscriber subscribes and requests items, and every subscription runs an
// independent copy of the pipeline.
//
// # Protocol
//
// Publisher, Subscriber and Subscription follow the Reactive Streams contract:
//
//	Subscribe → OnSubscribe → Request(n) → OnNext* → (OnError | OnComplete)
//
// Demand flows upstream through Subscription.Request, items flow downstream
// through OnNext, and a producer never emits more items than were requested.
// Request(Unbounded) switches a subscription to push mode.
//
// # Operators
//
// Operators wrap an upstream publisher and intercept its signals:
//
//	names := rx.Map(rx.Range(1, 5), func(i int) (string, error) {
//	    return strconv.Itoa(i), nil
//	}).
//	    Filter(func(s string) bool { return s != "3" }).
//	    DoOnNext(func(s string) { fmt.Println("saw", s) }).
//	    OnErrorReturn("fallback")
//
// Errors returned or panicked inside user functions become a *Fault and are
// delivered as a single OnError. OnErrorReturn and OnErrorResume intercept the
// error closest to them in the chain; later recovery stages never see it.
//
// # Scheduling
//
// Interval and Timer emit on a Scheduler. ClockScheduler runs on a clockz
// clock, so clockz.NewFakeClock can drive it in tests. VirtualScheduler keeps a
// logical clock that only moves when Advance is called, firing due tasks
// synchronously and in order:
//
//	vs := rx.NewVirtualScheduler()
//	ticks := rx.Interval(24*time.Hour, rx.WithScheduler(vs)).Take(10)
//	ticks.Consume(rx.Callbacks[int64]{OnNext: func(i int64) { fmt.Println(i) }})
//	vs.Advance(48 * time.Hour) // prints 0 and 1
//
// # Observability
//
// Log emits a capitan event for every signal crossing it, and Metrics reports
// the same signals to a MetricsProvider:
//
//	capitan.Hook(rx.LogNext, func(_ context.Context, e *capitan.Event) {
//	    v, _ := rx.KeyValue.From(e)
//	    fmt.Println("next:", v)
//	})
//
// The testing subpackage provides a StepVerifier for asserting exact signal
// sequences, including under virtual time.
package rx
