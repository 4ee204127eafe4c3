package emit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogEmitterEmitText(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(&buf, false)
	emitter.Emit(Event{RunID: "r1", NodeID: "term1", Msg: "route_matched", Meta: map[string]interface{}{"priority_band": "Normal"}})

	out := buf.String()
	if !strings.Contains(out, "node=term1") || !strings.Contains(out, "msg=route_matched") {
		t.Fatalf("unexpected text line: %q", out)
	}
}

func TestLogEmitterEmitJSON(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(&buf, true)
	emitter.Emit(Event{RunID: "r1", Step: 2, NodeID: "term1", Msg: "task_spawned"})

	var decoded Event
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json line: %v", err)
	}
	if decoded.NodeID != "term1" || decoded.Msg != "task_spawned" || decoded.Step != 2 {
		t.Fatalf("unexpected decoded event: %+v", decoded)
	}
}

func TestLogEmitterEmitBatchPreservesOrder(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(&buf, true)
	emitter.EmitBatch([]Event{
		{NodeID: "a", Msg: "first"},
		{NodeID: "b", Msg: "second"},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	var first, second Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode first: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if first.Msg != "first" || second.Msg != "second" {
		t.Fatalf("batch order not preserved: %+v then %+v", first, second)
	}
}

func TestLogEmitterNilWriterDefaultsToStdout(t *testing.T) {
	emitter := NewLogEmitter(nil, false)
	if emitter.writer == nil {
		t.Fatal("expected a non-nil default writer")
	}
}

func TestLogEmitterFlushIsNoOp(t *testing.T) {
	emitter := NewLogEmitter(&bytes.Buffer{}, false)
	if err := emitter.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestLogEmitterInterfaceContract(t *testing.T) {
	var _ Emitter = NewLogEmitter(nil, false)
}
