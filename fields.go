package rx

import "github.com/zoobzio/capitan"

// Field keys for rx events.
var (
	// KeyCategory is the category name given to a Log stage.
	KeyCategory = capitan.NewStringKey("category")

	// KeyValue is the formatted item of an onNext signal.
	KeyValue = capitan.NewStringKey("value")

	// KeyRequest is the amount of demand requested; Unbounded is reported as -1.
	KeyRequest = capitan.NewIntKey("request")

	// KeyError is the error message of a failed sequence.
	KeyError = capitan.NewStringKey("error")

	// KeyStage is the name of the stage that reported an event.
	KeyStage = capitan.NewStringKey("stage")

	// KeyElapsed is the time between subscription and the reported event.
	KeyElapsed = capitan.NewDurationKey("elapsed")
)
