package exec

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// State is a Task's position in its lifecycle: Runnable -> Running ->
// (Completed | Failed | Paused), with Paused returning to Runnable on
// resume.
type State int

const (
	Runnable State = iota
	Running
	Completed
	Failed
	Paused
	Dead
)

func (s State) String() string {
	switch s {
	case Runnable:
		return "runnable"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Paused:
		return "paused"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

// Fn is the unit of work a Task runs. self gives the handler access to
// its own Task so it can call SuspendOther/SuspendNextPriority or hand
// itself to a WaitRegistry.
type Fn func(ctx context.Context, self *Task) error

// taskContextKey is the context.Context key WithTask/CurrentTask use to
// thread a Task reference through handler invocation — a scoped
// accessor rather than a process-wide mutable singleton.
type taskContextKey struct{}

// WithTask returns a copy of ctx carrying t, so that a handler which
// only receives a context.Context (e.g. dispatch.Handler) can recover
// its own Task via CurrentTask.
func WithTask(ctx context.Context, t *Task) context.Context {
	return context.WithValue(ctx, taskContextKey{}, t)
}

// CurrentTask returns the Task bound to ctx by WithTask, or nil if none
// was bound.
func CurrentTask(ctx context.Context) *Task {
	t, _ := ctx.Value(taskContextKey{}).(*Task)
	return t
}

// Task is one unit of cooperatively scheduled work: a matched handler
// running in a priority band, able to park itself on a WaitRegistry and
// be resumed by a later Event.
type Task struct {
	ID         uuid.UUID
	spawnOrder ulid.ULID
	Priority   Priority
	fn         Fn

	mu                  sync.Mutex
	state               State
	lastActiveTime      time.Time
	err                 error
	suspendOther        bool
	suspendNextPriority bool
}

// NewTask allocates a Task in state Runnable.
func NewTask(priority Priority, fn Fn) *Task {
	return &Task{
		ID:             uuid.New(),
		spawnOrder:     ulid.Make(),
		Priority:       priority,
		fn:             fn,
		state:          Runnable,
		lastActiveTime: time.Now(),
	}
}

// SpawnOrder is the deterministic, monotonic tie-break key used when
// two Tasks share an equal LastActiveTime.
func (t *Task) SpawnOrder() ulid.ULID { return t.spawnOrder }

func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// LastActiveTime is the monotonic activity timestamp: set on creation
// and on every Resume, and left unchanged while the Task runs or is
// parked.
func (t *Task) LastActiveTime() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastActiveTime
}

func (t *Task) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

func (t *Task) markRunning()   { t.setState(Running) }
func (t *Task) markCompleted() { t.setState(Completed) }
func (t *Task) markDead()      { t.setState(Dead) }
func (t *Task) markPaused()    { t.setState(Paused) }

func (t *Task) markFailed(err error) {
	t.mu.Lock()
	t.state = Failed
	t.err = err
	t.mu.Unlock()
}

// Resume transitions a Paused Task back to Runnable, recording fresh
// activity for the next LastActiveTime-based arbitration.
func (t *Task) Resume() {
	t.mu.Lock()
	t.state = Runnable
	t.lastActiveTime = time.Now()
	t.mu.Unlock()
}

// Err returns the error a Failed Task finished with, if any.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// SuspendOther marks this Task's wait as one that, once satisfied,
// stops the wakeup arbitration from also satisfying any Task with an
// older LastActiveTime.
func (t *Task) SuspendOther() {
	t.mu.Lock()
	t.suspendOther = true
	t.mu.Unlock()
}

func (t *Task) wantsSuspendOther() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.suspendOther
}

// SuspendNextPriority halts the Executor from running any band lower
// in priority than this Task's for the remainder of the current tick.
func (t *Task) SuspendNextPriority() {
	t.mu.Lock()
	t.suspendNextPriority = true
	t.mu.Unlock()
}

func (t *Task) wantsSuspendNextPriority() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.suspendNextPriority
}

// consumeSuspendNextPriority reads and clears the flag — used by wakeup
// arbitration so a one-shot request does not leak into the Task's next
// wait.
func (t *Task) consumeSuspendNextPriority() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	v := t.suspendNextPriority
	t.suspendNextPriority = false
	return v
}
