package emit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// LogEmitter writes events to an io.Writer, either as a short text line
// or as JSON.
type LogEmitter struct {
	mu       sync.Mutex
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter builds a LogEmitter. A nil writer defaults to os.Stdout.
func NewLogEmitter(writer io.Writer, jsonMode bool) *LogEmitter {
	if writer == nil {
		writer = os.Stdout
	}
	return &LogEmitter{writer: writer, jsonMode: jsonMode}
}

func (l *LogEmitter) Emit(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.jsonMode {
		l.emitJSON(event)
		return
	}
	l.emitText(event)
}

func (l *LogEmitter) emitText(event Event) {
	fmt.Fprintf(l.writer, "[%s] node=%s msg=%s meta=%v\n", event.RunID, event.NodeID, event.Msg, event.Meta)
}

func (l *LogEmitter) emitJSON(event Event) {
	enc := json.NewEncoder(l.writer)
	_ = enc.Encode(event)
}

func (l *LogEmitter) EmitBatch(events []Event) {
	for _, e := range events {
		l.Emit(e)
	}
}

func (l *LogEmitter) Flush(context.Context) error { return nil }
