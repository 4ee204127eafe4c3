// Package emit provides event emission and observability for dispatch
// and task execution: a small Event record fanned out to pluggable
// emitters (log, OpenTelemetry, none).
package emit

// Event is one observability record produced while routing an Event,
// dispatching to a Terminal, or running a Task.
//
// Common Meta keys:
//   - "error": a handler or task error, set by dispatch/exec.
//   - "priority_band": the Executor priority band a task ran in.
//   - "timeout_ms": the timeout a task_paused wait was parked with.
type Event struct {
	RunID  string
	Step   int
	NodeID string
	Msg    string
	Meta   map[string]interface{}
}
