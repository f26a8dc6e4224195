package recorder

import (
	"context"

	"ptt-terminal/endpointing"
)

// Lifecycle events emitted around each recorded phrase.
const (
	EventRecordBegin = "record_begin"
	EventRecordEnd   = "record_end"
)

// EventSink receives lifecycle notifications. Dispatch is synchronous and
// must not block for long.
type EventSink interface {
	Emit(event string)
}

// Interface captures one phrase per call: wait for a trigger, record with
// adaptive endpointing, recalibrate if configured.
type Interface interface {
	// Listen blocks until a phrase has been captured and returns it. A
	// nil phrase with a nil error means a stop was requested while
	// waiting for the trigger.
	Listen(ctx context.Context) (*endpointing.Phrase, error)
}
