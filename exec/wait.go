package exec

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chatroute-io/chatroute/emit"
	"github.com/chatroute-io/chatroute/event"
	"github.com/chatroute-io/chatroute/keystore"
	"github.com/chatroute-io/chatroute/routing"
)

type waitResult struct {
	state keystore.RouteState
	err   error
}

// candidate is one parked WaitUntil call: an ephemeral Terminal
// installed at the end of a caller-supplied RoutingGraph, waiting for
// an Event that matches it or for its deadline to lapse.
type candidate struct {
	task     *Task
	graph    routing.Graph
	terminal *routing.Terminal
	deadline time.Time
	result   chan waitResult
}

// WaitRegistry lets a Task pause itself awaiting an ephemeral
// RoutingGraph match, racing a timeout, with wakeup arbitration across
// concurrently waiting Tasks.
type WaitRegistry struct {
	exec *Executor

	mu         sync.Mutex
	candidates []*candidate
}

func newWaitRegistry(e *Executor) *WaitRegistry {
	return &WaitRegistry{exec: e}
}

// WaitUntil installs g as an ephemeral terminal, pauses task, and
// blocks until a subsequent Offer delivers a matching Event, the
// deadline (timeout, or the Executor's DefaultWaitTimeout if <= 0)
// lapses, or ctx is cancelled. On timeout the ephemeral terminal is
// withdrawn before the TimeoutError surfaces.
//
// suspendOther marks this wait so that, once it is satisfied during
// wakeup arbitration, no Task with an older LastActiveTime is also
// satisfied by the same Event. suspendNextPriority additionally stops
// the waking Event's remaining priority bands from running.
func (w *WaitRegistry) WaitUntil(ctx context.Context, task *Task, g routing.Graph, timeout time.Duration, suspendOther, suspendNextPriority bool) (keystore.RouteState, error) {
	if timeout <= 0 {
		timeout = w.exec.opts.DefaultWaitTimeout
	}
	if suspendOther {
		task.SuspendOther()
	}
	if suspendNextPriority {
		task.SuspendNextPriority()
	}

	term := routing.NewTerminal("wait:" + task.ID.String()).WithPriority(Never).WithCountFinished(false)
	installed := g.Install(term)

	// Pausing leaves LastActiveTime (creation or latest resume)
	// unchanged; the deadline is measured from it.
	task.markPaused()
	cand := &candidate{
		task:     task,
		graph:    installed,
		terminal: term,
		deadline: task.LastActiveTime().Add(timeout),
		result:   make(chan waitResult, 1),
	}

	w.mu.Lock()
	w.candidates = append(w.candidates, cand)
	queued := len(w.candidates)
	w.mu.Unlock()
	if m := w.exec.opts.Metrics; m != nil {
		m.SetWaitQueued(queued)
	}
	w.exec.opts.Emitter.Emit(emit.Event{NodeID: term.ID, Msg: "task_paused", Meta: map[string]interface{}{"timeout_ms": timeout.Milliseconds()}})

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case res := <-cand.result:
			w.remove(cand)
			task.Resume()
			if res.err == nil {
				w.exec.opts.Emitter.Emit(emit.Event{NodeID: term.ID, Msg: "task_resumed"})
			}
			return res.state, res.err
		case <-timer.C:
			// Drive the deadline check through the same path a real
			// event takes: a synthetic ping from the scheduler source.
			ping := event.Event{Type: event.Unknown, Provider: event.SchedulerSource}
			w.Offer(keystore.NewRouteState(ping))
		case <-ctx.Done():
			w.remove(cand)
			task.Resume()
			return keystore.RouteState{}, ctx.Err()
		}
	}
}

// WaitNext waits for the next Event from the same conversation as ev.
func (w *WaitRegistry) WaitNext(ctx context.Context, task *Task, ev event.Event, timeout time.Duration, suspendOther, suspendNextPriority bool) (keystore.RouteState, error) {
	return w.WaitUntil(ctx, task, routing.SameEventAs(ev), timeout, suspendOther, suspendNextPriority)
}

// WaitQuote waits for a message that quotes messageID.
func (w *WaitRegistry) WaitQuote(ctx context.Context, task *Task, messageID int64, timeout time.Duration, suspendOther, suspendNextPriority bool) (keystore.RouteState, error) {
	return w.WaitUntil(ctx, task, routing.QuotesMessage(messageID), timeout, suspendOther, suspendNextPriority)
}

// Offer evaluates every live candidate against rs and resolves the
// wakeup arbitration. Candidates whose deadline has lapsed are resumed
// with a TimeoutError and withdrawn first. The remaining candidates
// that matched are sorted by LastActiveTime ascending and popped from
// the end — most-recently-active first — stopping once a popped
// candidate's SuspendOther flag is set; older candidates stay parked.
//
// Offer returns true when any resumed candidate had asked to suspend
// the triggering Event's remaining priority bands; the caller must then
// skip running them. Offer should be called once per incoming Event,
// before the Event's own handlers run.
func (w *WaitRegistry) Offer(rs keystore.RouteState) bool {
	now := time.Now()
	w.mu.Lock()
	var live, expired []*candidate
	for _, c := range w.candidates {
		if !now.Before(c.deadline) {
			expired = append(expired, c)
			continue
		}
		live = append(live, c)
	}
	w.candidates = live
	queued := len(live)
	w.mu.Unlock()

	for _, c := range expired {
		select {
		case c.result <- waitResult{err: &TimeoutError{TaskID: c.task.ID.String()}}:
		default:
		}
		w.exec.opts.Emitter.Emit(emit.Event{NodeID: c.terminal.ID, Msg: "task_timeout"})
		if m := w.exec.opts.Metrics; m != nil {
			m.IncTimeouts()
		}
	}
	if m := w.exec.opts.Metrics; m != nil {
		m.SetWaitQueued(queued)
	}

	type hit struct {
		cand  *candidate
		match routing.RouteMatch
	}
	var hits []hit
	for _, c := range live {
		for _, m := range c.graph.Route(rs) {
			if m.Terminal == c.terminal {
				hits = append(hits, hit{cand: c, match: m})
				break
			}
		}
	}
	if len(hits) == 0 {
		return false
	}

	sort.Slice(hits, func(i, j int) bool {
		ti, tj := hits[i].cand.task, hits[j].cand.task
		ai, aj := ti.LastActiveTime(), tj.LastActiveTime()
		if ai.Equal(aj) {
			return ti.SpawnOrder().Compare(tj.SpawnOrder()) < 0
		}
		return ai.Before(aj)
	})

	suspendNext := false
	for i := len(hits) - 1; i >= 0; i-- {
		h := hits[i]
		select {
		case h.cand.result <- waitResult{state: h.match.State}:
		default:
		}
		suspendNext = h.cand.task.consumeSuspendNextPriority() || suspendNext
		if h.cand.task.wantsSuspendOther() {
			break
		}
	}
	return suspendNext
}

func (w *WaitRegistry) remove(c *candidate) {
	w.mu.Lock()
	for i, x := range w.candidates {
		if x == c {
			w.candidates = append(w.candidates[:i], w.candidates[i+1:]...)
			break
		}
	}
	queued := len(w.candidates)
	w.mu.Unlock()
	if m := w.exec.opts.Metrics; m != nil {
		m.SetWaitQueued(queued)
	}
}

// Pending returns the number of Tasks currently parked in the
// WaitRegistry.
func (w *WaitRegistry) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.candidates)
}
