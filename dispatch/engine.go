// Package dispatch implements the DispatchEngine: the component that
// merges subscribed RoutingGraphs into one shared decision graph and,
// for each incoming Event, routes it to every matching Terminal and
// hands the matches to an exec.Executor for priority-banded execution.
package dispatch

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/chatroute-io/chatroute/emit"
	"github.com/chatroute-io/chatroute/event"
	"github.com/chatroute-io/chatroute/exec"
	"github.com/chatroute-io/chatroute/keystore"
	"github.com/chatroute-io/chatroute/metrics"
	"github.com/chatroute-io/chatroute/priority"
	"github.com/chatroute-io/chatroute/routing"
)

// Handler processes a single Terminal match.
type Handler func(ctx context.Context, rs keystore.RouteState) error

// subscription is one installed RoutingGraph plus the Handler bound to
// its Terminal.
type subscription struct {
	terminal *routing.Terminal
	graph    routing.Graph
	handler  Handler
}

// insideExceptionHandlerKey cuts off the ExceptionNotHandled recursion:
// a handler for that meta-event which itself fails is logged and
// dropped, never re-dispatched.
type insideExceptionHandlerKey struct{}

// Engine merges every live subscription into one shared routing graph
// and dispatches Events against it, handing matched Terminals to an
// exec.Executor grouped by priority band. Subscriptions whose graphs
// branch on the same KeyFunction at the same position share their
// discriminator node, so that node is evaluated once per event rather
// than once per subscription; the same axis appearing at different
// positions is evaluated at each of them.
type Engine struct {
	mu       sync.RWMutex
	root     *routing.Root
	subs     map[string]*subscription
	byTerm   map[*routing.Terminal]*subscription
	emitter  emit.Emitter
	metrics  *metrics.Collectors
	executor *exec.Executor
}

// New builds an Engine emitting observability events to emitter and
// running matched handlers on a freshly built exec.Executor. A nil
// emitter defaults to emit.NullEmitter{}. Use WithExecutor to run
// against an Executor configured with non-default Options (max
// concurrency per band, wait timeout, metrics, ...).
func New(emitter emit.Emitter) *Engine {
	if emitter == nil {
		emitter = emit.NullEmitter{}
	}
	return &Engine{
		root:     routing.NewRoot(),
		subs:     map[string]*subscription{},
		byTerm:   map[*routing.Terminal]*subscription{},
		emitter:  emitter,
		executor: exec.New(exec.WithEmitter(emitter)),
	}
}

// WithExecutor replaces the Engine's Executor, e.g. to share one
// Executor (and its WaitRegistry) across several Engines, or to tune
// its Options. Returns e for chaining.
func (e *Engine) WithExecutor(ex *exec.Executor) *Engine {
	e.executor = ex
	return e
}

// WithMetrics installs collectors the Engine updates on subscription
// merges. Returns e for chaining.
func (e *Engine) WithMetrics(m *metrics.Collectors) *Engine {
	e.metrics = m
	return e
}

// Executor returns the Engine's Executor, for callers that need to hand
// a Task a WaitRegistry reference (WaitUntil/WaitNext/WaitQuote).
func (e *Engine) Executor() *exec.Executor { return e.executor }

// Subscribe installs graph terminated at a Terminal identified by id,
// bound to handler, annotated with the priority band the Executor runs
// it in and whether a successful run of it counts toward HandleEvent's
// "handled" signal. The graph's entry is merged into the Engine's
// shared root: nonterminals keyed on the same KeyFunction as an
// existing subscription are shared, not duplicated. Re-subscribing the
// same id replaces the prior subscription.
//
// Subscribe returns a RoutingError if graph is already closed or empty;
// the Engine's state is unchanged on failure.
func (e *Engine) Subscribe(id string, graph routing.Graph, p priority.Priority, countFinished bool, handler Handler) (*routing.Terminal, error) {
	if graph.Closed() {
		return nil, &exec.RoutingError{Message: "cannot subscribe a closed graph: " + id, Code: "graph_closed"}
	}
	if graph.Root() == nil {
		return nil, &exec.RoutingError{Message: "cannot subscribe an empty graph: " + id, Code: "graph_empty"}
	}
	term := routing.NewTerminal(id).WithPriority(p).WithCountFinished(countFinished)
	installed := graph.Install(term)

	e.mu.Lock()
	defer e.mu.Unlock()
	if old, ok := e.subs[id]; ok {
		e.root.RemoveTerminal(old.terminal)
		delete(e.byTerm, old.terminal)
	}
	merges := e.root.Add(installed.Root())
	sub := &subscription{terminal: term, graph: installed, handler: handler}
	e.subs[id] = sub
	e.byTerm[term] = sub

	if e.metrics != nil {
		for i := 0; i < merges; i++ {
			e.metrics.IncMerges()
		}
	}
	e.emitter.Emit(emit.Event{NodeID: id, Msg: "subscribed", Meta: map[string]interface{}{"merges": merges, "priority_band": p.String()}})
	return term, nil
}

// Unsubscribe removes the subscription installed under id, withdrawing
// its Terminal from every successor set and pruning nonterminals left
// with no successors.
func (e *Engine) Unsubscribe(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sub, ok := e.subs[id]
	if !ok {
		return
	}
	e.root.RemoveTerminal(sub.terminal)
	delete(e.byTerm, sub.terminal)
	delete(e.subs, id)
}

// UnsubscribeTerminals removes every given Terminal from the shared
// graph, whichever subscription installed it.
func (e *Engine) UnsubscribeTerminals(terms ...*routing.Terminal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range terms {
		e.root.RemoveTerminal(t)
		if sub, ok := e.byTerm[t]; ok {
			delete(e.subs, sub.terminal.ID)
			delete(e.byTerm, t)
		}
	}
}

// NodeCount returns the number of distinct nodes in the shared routing
// graph, Terminals included.
func (e *Engine) NodeCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.root.NodeCount()
}

// HandleEvent routes ev against the shared graph and every Task parked
// on a wait. Wakeup arbitration runs first, via the Executor's
// WaitRegistry: parked Tasks matching ev are resumed before ev's own
// handlers run, and may suppress them entirely. Matched Terminals are
// then handed to the Executor grouped by priority band; Terminals at
// priority Never are routed but never executed.
//
// extras are pre-seeded into the traversal's KeyStore alongside the
// reserved "event" and "source" entries, e.g. keystore.Named{"bot",
// session}.
//
// Returns true iff at least one CountFinished Terminal's handler ran to
// completion without error.
func (e *Engine) HandleEvent(ctx context.Context, ev event.Event, extras ...keystore.Named) (bool, error) {
	rs := keystore.NewRouteState(ev)
	rs = rs.BindNamed("event", ev).BindNamed("source", ev.Provider)
	for _, x := range extras {
		rs = rs.BindNamed(x.Name, x.Value)
	}

	if suppressed := e.executor.Waits.Offer(rs); suppressed {
		return false, nil
	}

	e.mu.RLock()
	matches := e.root.Route(rs)
	handlers := make([]*subscription, len(matches))
	for i, m := range matches {
		handlers[i] = e.byTerm[m.Terminal]
	}
	e.mu.RUnlock()

	var handled atomic.Bool
	var failuresMu sync.Mutex
	var failures []failure
	for i, m := range matches {
		sub := handlers[i]
		if sub == nil || m.Terminal.Priority == priority.Never {
			continue
		}
		m := m
		e.executor.Spawn(m.Terminal.Priority, func(ctx context.Context, self *exec.Task) error {
			e.emitter.Emit(emit.Event{NodeID: sub.terminal.ID, Msg: "route_matched"})
			err := sub.handler(exec.WithTask(ctx, self), m.State)
			if err != nil {
				failuresMu.Lock()
				failures = append(failures, failure{terminalID: sub.terminal.ID, cause: err})
				failuresMu.Unlock()
				return &exec.HandlerException{Message: err.Error(), TerminalID: sub.terminal.ID, Cause: err}
			}
			if m.Terminal.CountFinished {
				handled.Store(true)
			}
			return nil
		})
	}

	tickErr := e.executor.RunTick(ctx)

	// Surfacing exceptions happens only once the current tick has fully
	// settled: routing the ExceptionNotHandled meta-event recursively
	// calls HandleEvent (and therefore RunTick) again, and doing that
	// while the outer RunTick is still draining bands would let the
	// nested call steal tasks queued for a band the outer call hasn't
	// reached yet.
	if ctx.Value(insideExceptionHandlerKey{}) == nil {
		for _, f := range failures {
			e.dispatchExceptionNotHandled(ctx, f.terminalID, f.cause)
		}
	}

	return handled.Load(), tickErr
}

// failure records one handler's error for deferred ExceptionNotHandled
// dispatch once the current tick has settled.
type failure struct {
	terminalID string
	cause      error
}

// dispatchExceptionNotHandled surfaces a failing handler's error as an
// ExceptionNotHandled Meta event, dispatched back through the Engine so
// that exception handlers are themselves regular routed handlers. A
// handler for that meta-event which itself fails is logged and dropped
// rather than recursed into again.
func (e *Engine) dispatchExceptionNotHandled(ctx context.Context, terminalID string, cause error) {
	bag := event.NewAttrBag("")
	if next, err := bag.Set("kind", "ExceptionNotHandled"); err == nil {
		bag = next
	}
	if next, err := bag.Set("terminal_id", terminalID); err == nil {
		bag = next
	}
	if next, err := bag.Set("error", cause.Error()); err == nil {
		bag = next
	}
	metaEvent := event.Event{Type: event.Meta, Attrs: bag}

	nested := context.WithValue(ctx, insideExceptionHandlerKey{}, true)
	if _, err := e.HandleEvent(nested, metaEvent); err != nil {
		e.emitter.Emit(emit.Event{NodeID: terminalID, Msg: "exception_handler_dropped", Meta: map[string]interface{}{"error": err.Error()}})
	}
}
