// Package routing implements the RoutingGraph: a DAG of nonterminal
// match nodes (EqualNode, PrefixNode, PredicateNode, MessageTypeNode,
// ProcessNode) ending in Terminals. Graphs are built with the Then/Or
// combinators, closed by installing a Terminal, and merged into an
// engine-owned Root so patterns branching on the same KeyFunction share
// one discriminator node.
package routing

import (
	"github.com/chatroute-io/chatroute/keystore"
	"github.com/chatroute-io/chatroute/priority"
)

// Node is one step of a RoutingGraph. Route returns every Terminal this
// node (and its reachable successors) matches for the given RouteState,
// paired with the RouteState as bound along that branch.
type Node interface {
	Route(rs keystore.RouteState) []RouteMatch
}

// RouteMatch pairs a reached Terminal with the RouteState bound while
// reaching it — the store a subscribed handler receives.
type RouteMatch struct {
	Terminal *Terminal
	State    keystore.RouteState
}

// Terminal is a leaf of the RoutingGraph: a dispatch target a
// DispatchEngine subscription installs at the end of a pattern.
// Priority selects the Executor band its handler runs in;
// CountFinished controls whether a successful run counts toward the
// engine's "handled" signal.
type Terminal struct {
	ID            string
	Priority      priority.Priority
	CountFinished bool
}

// NewTerminal allocates a Terminal identified by id, defaulting to the
// Normal priority band with CountFinished set — the common case for a
// user-registered handler. Use WithPriority/WithCountFinished to
// override either annotation.
func NewTerminal(id string) *Terminal {
	return &Terminal{ID: id, Priority: priority.Normal, CountFinished: true}
}

// WithPriority returns t with Priority set to p, for chaining off
// NewTerminal.
func (t *Terminal) WithPriority(p priority.Priority) *Terminal {
	t.Priority = p
	return t
}

// WithCountFinished returns t with CountFinished set to v, for chaining
// off NewTerminal.
func (t *Terminal) WithCountFinished(v bool) *Terminal {
	t.CountFinished = v
	return t
}

// Route on a Terminal always matches, returning itself.
func (t *Terminal) Route(rs keystore.RouteState) []RouteMatch {
	return []RouteMatch{{Terminal: t, State: rs}}
}

// leaf is implemented by every open attachment point a Graph exposes
// for composition.
type leaf interface {
	attach(next Node)
}

// nonterminal is the embeddable base for match nodes with a single
// ordered successor list (PredicateNode, ProcessNode).
type nonterminal struct {
	next []Node
}

func (n *nonterminal) attach(next Node) {
	n.next = append(n.next, next)
}

func (n *nonterminal) routeNext(rs keystore.RouteState) []RouteMatch {
	var out []RouteMatch
	for _, nx := range n.next {
		out = append(out, nx.Route(rs)...)
	}
	return out
}

func (n *nonterminal) removeTerminal(t *Terminal) bool {
	n.next = removeTerminalFrom(n.next, t)
	return len(n.next) == 0
}

func (n *nonterminal) children() []Node { return n.next }
