package emit

import "context"

// NullEmitter discards every event. Useful as the default Emitter when
// no observability backend is configured.
type NullEmitter struct{}

func (NullEmitter) Emit(Event)                  {}
func (NullEmitter) EmitBatch([]Event)           {}
func (NullEmitter) Flush(context.Context) error { return nil }
