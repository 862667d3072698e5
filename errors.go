package rx

import (
	"context"
	"errors"
	"fmt"

	"github.com/zoobzio/capitan"
)

var (
	// ErrInvalidRequest is signalled when Request is called with n <= 0.
	ErrInvalidRequest = errors.New("rx: request amount must be positive")

	// ErrInsufficientDemand is signalled by timer sources that fire while
	// the subscriber has no outstanding demand.
	ErrInsufficientDemand = errors.New("rx: could not emit tick due to lack of requests")

	// ErrTimeout is returned by blocking operators when the context expires
	// before a terminal signal arrives.
	ErrTimeout = errors.New("rx: timeout waiting for terminal signal")

	// ErrNilPublisher is signalled when a deferred factory or a fallback
	// returns a nil publisher.
	ErrNilPublisher = errors.New("rx: publisher is nil")

	// ErrInvalidArgument is signalled by sources built from arguments they
	// cannot honor.
	ErrInvalidArgument = errors.New("rx: invalid argument")
)

// FaultKind records where in a pipeline a fault originated. It does not
// change how the fault travels: every fault is delivered as one OnError.
type FaultKind int

const (
	// FaultTransform is raised inside a user function of an operator
	// (Map, Filter, Via, a fallback factory).
	FaultTransform FaultKind = iota

	// FaultSource is raised by a source while producing items.
	FaultSource

	// FaultHook is raised by a side-effect hook or a terminal callback.
	FaultHook
)

// String returns the string representation of the kind.
func (k FaultKind) String() string {
	switch k {
	case FaultTransform:
		return "transform"
	case FaultSource:
		return "source"
	case FaultHook:
		return "hook"
	default:
		return "unknown"
	}
}

// Fault wraps an error raised by user code running inside a stage.
type Fault struct {
	Kind  FaultKind
	Stage string
	Err   error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s fault in %s: %v", f.Kind, f.Stage, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// newFault builds a fault from an error or a recovered panic value.
func newFault(kind FaultKind, stage string, cause any) *Fault {
	var err error
	switch c := cause.(type) {
	case *Fault:
		return c
	case error:
		err = c
	default:
		err = fmt.Errorf("panic: %v", c)
	}
	return &Fault{Kind: kind, Stage: stage, Err: err}
}

// guard runs fn and converts a panic into a fault.
func guard(kind FaultKind, stage string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newFault(kind, stage, r)
		}
	}()
	fn()
	return nil
}

// dropError reports an error that arrived after its subscription terminated.
func dropError(stage string, err error) {
	capitan.Emit(context.Background(), ErrorDropped,
		KeyStage.Field(stage),
		KeyError.Field(err.Error()),
	)
}
