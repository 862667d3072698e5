package rx

import "github.com/zoobzio/capitan"

// Log operator signals, one per reactive signal crossing a Log stage.
var (
	// LogSubscribe is emitted when a subscription passes through a Log stage.
	LogSubscribe = capitan.NewSignal(
		"rx.log.subscribe",
		"Subscription established",
	)

	// LogRequest is emitted when demand is requested through a Log stage.
	LogRequest = capitan.NewSignal(
		"rx.log.request",
		"Demand requested upstream",
	)

	// LogNext is emitted for every item passing through a Log stage.
	LogNext = capitan.NewSignal(
		"rx.log.next",
		"Item emitted downstream",
	)

	// LogError is emitted when an error passes through a Log stage.
	LogError = capitan.NewSignal(
		"rx.log.error",
		"Sequence terminated with error",
	)

	// LogComplete is emitted when completion passes through a Log stage.
	LogComplete = capitan.NewSignal(
		"rx.log.complete",
		"Sequence completed",
	)

	// LogCancel is emitted when a cancellation passes through a Log stage.
	LogCancel = capitan.NewSignal(
		"rx.log.cancel",
		"Subscription cancelled",
	)
)

// Error reporting signals.
var (
	// ErrorDropped is emitted when an error arrives after its subscription
	// already terminated and has nowhere to go.
	ErrorDropped = capitan.NewSignal(
		"rx.error.dropped",
		"Error dropped after termination",
	)

	// SubscriberErrorUnhandled is emitted when a sequence fails and the
	// consuming callbacks have no OnError handler.
	SubscriberErrorUnhandled = capitan.NewSignal(
		"rx.subscriber.error.unhandled",
		"Error reached a subscriber without an error callback",
	)
)
