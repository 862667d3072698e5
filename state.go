package rx

// State represents the lifecycle of a subscription started with Consume.
type State int32

const (
	// StatePending indicates the subscriber has not received OnSubscribe yet.
	StatePending State = iota

	// StateActive indicates the subscription is established and may still
	// receive items.
	StateActive

	// StateCompleted indicates the sequence finished with OnComplete.
	StateCompleted

	// StateFailed indicates the sequence finished with OnError.
	StateFailed

	// StateCancelled indicates the subscriber disposed the subscription
	// before a terminal signal arrived.
	StateCancelled
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminated reports whether no further signals can arrive.
func (s State) Terminated() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}
