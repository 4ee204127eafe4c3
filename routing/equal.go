package routing

import (
	"github.com/chatroute-io/chatroute/keyfunc"
	"github.com/chatroute-io/chatroute/keystore"
)

// EqualNode dispatches on value equality: each configured value maps to
// its own successor set, so two subscriptions branching on the same
// KeyFunction share one discriminator node after merging.
type EqualNode struct {
	Key        keyfunc.KeyFunction
	vals       []interface{}
	successors map[interface{}][]Node
}

// NewEqualNode builds an EqualNode matching any of vals on key.
func NewEqualNode(key keyfunc.KeyFunction, vals ...interface{}) *EqualNode {
	return &EqualNode{Key: key, vals: vals, successors: map[interface{}][]Node{}}
}

// attach connects next under every configured value — the open-leaf
// step used while a Graph is under construction.
func (e *EqualNode) attach(next Node) {
	for _, v := range e.vals {
		e.successors[v] = append(e.successors[v], next)
	}
}

func (e *EqualNode) Route(rs keystore.RouteState) []RouteMatch {
	v := e.Key.Eval(rs.Event)
	nexts, ok := e.successors[v]
	if !ok {
		return nil
	}
	bound := rs.Bind(e.Key, v)
	var out []RouteMatch
	for _, nx := range nexts {
		out = append(out, nx.Route(bound)...)
	}
	return out
}

// mergeFrom folds in's per-value successor sets into e, recursively
// merging successors that share an axis.
func (e *EqualNode) mergeFrom(in *EqualNode, merges *int) {
	for _, v := range in.vals {
		if !e.hasVal(v) {
			e.vals = append(e.vals, v)
		}
		for _, n := range in.successors[v] {
			e.successors[v] = mergeInto(e.successors[v], n, merges)
		}
	}
}

func (e *EqualNode) hasVal(v interface{}) bool {
	for _, x := range e.vals {
		if x == v {
			return true
		}
	}
	return false
}

func (e *EqualNode) removeTerminal(t *Terminal) bool {
	for v, nexts := range e.successors {
		kept := removeTerminalFrom(nexts, t)
		if len(kept) == 0 {
			delete(e.successors, v)
			continue
		}
		e.successors[v] = kept
	}
	return len(e.successors) == 0
}

func (e *EqualNode) children() []Node {
	var out []Node
	for _, v := range e.vals {
		out = append(out, e.successors[v]...)
	}
	return out
}
