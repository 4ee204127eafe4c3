package emit

import "testing"

func TestNullEmitterNoOp(t *testing.T) {
	t.Run("emits events without error", func(t *testing.T) {
		emitter := NullEmitter{}
		events := []Event{
			{NodeID: "term1", Msg: "route_matched"},
			{NodeID: "term1", Msg: "handler_exception", Meta: map[string]interface{}{"error": "boom"}},
		}
		for _, e := range events {
			emitter.Emit(e)
		}
	})

	t.Run("can emit with nil meta", func(t *testing.T) {
		emitter := NullEmitter{}
		emitter.Emit(Event{NodeID: "term1", Msg: "task_spawned", Meta: nil})
	})
}

func TestNullEmitterInterfaceContract(t *testing.T) {
	var _ Emitter = NullEmitter{}
}
