package rx

import "fmt"

// SignalKind identifies a signal crossing a subscription.
type SignalKind int

const (
	// KindSubscribe is the OnSubscribe handshake.
	KindSubscribe SignalKind = iota

	// KindRequest is a demand request travelling upstream.
	KindRequest

	// KindNext carries an item.
	KindNext

	// KindError is the terminal failure signal.
	KindError

	// KindComplete is the terminal success signal.
	KindComplete

	// KindCancel is a cancellation travelling upstream.
	KindCancel
)

// String returns the string representation of the kind.
func (k SignalKind) String() string {
	switch k {
	case KindSubscribe:
		return "onSubscribe"
	case KindRequest:
		return "request"
	case KindNext:
		return "onNext"
	case KindError:
		return "onError"
	case KindComplete:
		return "onComplete"
	case KindCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Terminal reports whether the kind ends a subscription.
func (k SignalKind) Terminal() bool {
	return k == KindError || k == KindComplete
}

// Signal is a recorded signal. Value is set for KindNext, Err for KindError
// and Request for KindRequest.
type Signal[T any] struct {
	Kind    SignalKind
	Value   T
	Err     error
	Request int64
}

// Next returns an item signal.
func Next[T any](v T) Signal[T] {
	return Signal[T]{Kind: KindNext, Value: v}
}

// ErrorSignal returns a failure signal.
func ErrorSignal[T any](err error) Signal[T] {
	return Signal[T]{Kind: KindError, Err: err}
}

// CompleteSignal returns a completion signal.
func CompleteSignal[T any]() Signal[T] {
	return Signal[T]{Kind: KindComplete}
}

// String renders the signal the way it appears in verifier failures.
func (s Signal[T]) String() string {
	switch s.Kind {
	case KindNext:
		return fmt.Sprintf("onNext(%v)", s.Value)
	case KindError:
		return fmt.Sprintf("onError(%v)", s.Err)
	case KindRequest:
		if s.Request == Unbounded {
			return "request(unbounded)"
		}
		return fmt.Sprintf("request(%d)", s.Request)
	default:
		return s.Kind.String() + "()"
	}
}
