package exec

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chatroute-io/chatroute/emit"
	"github.com/chatroute-io/chatroute/event"
	"github.com/chatroute-io/chatroute/keystore"
	"github.com/chatroute-io/chatroute/metrics"
)

// Options configures an Executor. Zero values fall back to the
// defaults below; the With* functional options mutate individual
// fields.
type Options struct {
	MaxConcurrentPerBand int
	DefaultWaitTimeout   time.Duration
	SchedulerTick        time.Duration
	Metrics              *metrics.Collectors
	Emitter              emit.Emitter
}

// Option mutates Options.
type Option func(*Options)

func WithMaxConcurrentPerBand(n int) Option {
	return func(o *Options) { o.MaxConcurrentPerBand = n }
}

func WithDefaultWaitTimeout(d time.Duration) Option {
	return func(o *Options) { o.DefaultWaitTimeout = d }
}

func WithSchedulerTick(d time.Duration) Option {
	return func(o *Options) { o.SchedulerTick = d }
}

func WithMetrics(m *metrics.Collectors) Option {
	return func(o *Options) { o.Metrics = m }
}

func WithEmitter(e emit.Emitter) Option {
	return func(o *Options) { o.Emitter = e }
}

func defaultOptions() Options {
	return Options{
		MaxConcurrentPerBand: 8,
		DefaultWaitTimeout:   30 * time.Second,
		SchedulerTick:        time.Second,
	}
}

// Executor runs Tasks in priority bands: within a tick, every Runnable
// task of the highest nonempty band runs concurrently; the Executor
// waits for every task's Fn to return before moving to the next band,
// unless a task called SuspendNextPriority, which halts the tick before
// any lower band runs. A Task parked in WaitRegistry.WaitUntil does not
// release its band: its Fn returns only once the wait resolves, times
// out, or is cancelled.
type Executor struct {
	opts     Options
	mu       sync.Mutex
	bands    map[Priority][]*Task
	inflight atomic.Int64
	Waits    *WaitRegistry
}

// New builds an Executor.
func New(opts ...Option) *Executor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Emitter == nil {
		o.Emitter = emit.NullEmitter{}
	}
	e := &Executor{opts: o, bands: map[Priority][]*Task{}}
	e.Waits = newWaitRegistry(e)
	return e
}

// Spawn enqueues fn to run in priority band p, returning its Task.
// Tasks spawned at Never are routed but never executed.
func (e *Executor) Spawn(p Priority, fn Fn) *Task {
	t := NewTask(p, fn)
	e.mu.Lock()
	e.bands[p] = append(e.bands[p], t)
	e.mu.Unlock()
	e.opts.Emitter.Emit(emit.Event{NodeID: t.ID.String(), Msg: "task_spawned", Meta: map[string]interface{}{"priority_band": p.String()}})
	return t
}

func (e *Executor) drainBand(p Priority) []*Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	tasks := e.bands[p]
	e.bands[p] = nil
	runnable := tasks[:0]
	for _, t := range tasks {
		if t.State() == Runnable {
			runnable = append(runnable, t)
		}
	}
	return runnable
}

// RunTick drains and runs every nonempty band in priority order, one
// band at a time, stopping early if a task requests
// SuspendNextPriority. It returns after every task of the last band it
// ran has returned from its Fn (Completed or Failed); a task waiting in
// WaitUntil keeps RunTick blocked until that wait ends.
func (e *Executor) RunTick(ctx context.Context) error {
	for i, band := range bandOrder {
		tasks := e.drainBand(band)
		if len(tasks) == 0 {
			continue
		}

		start := time.Now()
		sem := make(chan struct{}, max(1, e.opts.MaxConcurrentPerBand))
		g, gctx := errgroup.WithContext(ctx)
		for _, t := range tasks {
			t := t
			g.Go(func() error {
				sem <- struct{}{}
				defer func() { <-sem }()
				return e.runTask(gctx, t, band)
			})
		}
		_ = g.Wait()

		if e.opts.Metrics != nil {
			e.opts.Metrics.ObserveBandLatencyMS(band.String(), float64(time.Since(start).Milliseconds()))
		}
		e.opts.Emitter.Emit(emit.Event{Step: int(band), Msg: "band_closed", Meta: map[string]interface{}{"priority_band": band.String(), "tasks": len(tasks)}})

		halt := false
		for _, t := range tasks {
			if t.wantsSuspendNextPriority() {
				halt = true
				break
			}
		}
		if halt {
			// Tasks already queued for the suppressed bands must not
			// leak into a later tick.
			e.discardBands(bandOrder[i+1:])
			break
		}
	}
	return nil
}

func (e *Executor) discardBands(bands []Priority) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range bands {
		e.bands[p] = nil
	}
}

func (e *Executor) runTask(ctx context.Context, t *Task, band Priority) error {
	t.markRunning()
	if m := e.opts.Metrics; m != nil {
		m.SetInflightTasks(int(e.inflight.Add(1)))
	}
	err := t.fn(ctx, t)
	if m := e.opts.Metrics; m != nil {
		m.SetInflightTasks(int(e.inflight.Add(-1)))
	}
	switch {
	case t.State() == Paused:
		// fn parked the task via the WaitRegistry; leave its state alone.
	case err != nil:
		t.markFailed(err)
		e.opts.Emitter.Emit(emit.Event{NodeID: t.ID.String(), Msg: "handler_exception", Meta: map[string]interface{}{"error": err.Error(), "priority_band": band.String()}})
		if e.opts.Metrics != nil {
			e.opts.Metrics.IncHandlerErrors(band.String())
		}
	default:
		t.markCompleted()
	}
	return err
}

// StartScheduler begins a background sweep that offers a synthetic
// scheduler ping to the WaitRegistry every SchedulerTick, with a small
// jitter so several executors in one process do not sweep in lockstep.
// Each ping expires waits whose deadline lapsed even when their own
// timers are starved. Returns a stop function.
func (e *Executor) StartScheduler() (stop func()) {
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(jitterTick(e.opts.SchedulerTick)):
				ping := event.Event{Type: event.Unknown, Provider: event.SchedulerSource}
				e.Waits.Offer(keystore.NewRouteState(ping))
			}
		}
	}()
	return func() { close(done) }
}

func jitterTick(d time.Duration) time.Duration {
	if d <= 0 {
		d = time.Second
	}
	f := 0.9 + 0.2*rand.Float64()
	return time.Duration(float64(d) * f)
}
