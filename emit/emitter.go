package emit

import "context"

// Emitter receives observability events from dispatch and task
// execution. Implementations should be non-blocking and thread-safe:
// they may be called concurrently from many in-flight tasks.
type Emitter interface {
	// Emit sends a single event. Emit must not block execution and
	// must not panic.
	Emit(event Event)

	// EmitBatch sends multiple events in one call, preserving order.
	EmitBatch(events []Event)

	// Flush blocks until all previously emitted events have been
	// delivered to the backend, or ctx is done.
	Flush(ctx context.Context) error
}
