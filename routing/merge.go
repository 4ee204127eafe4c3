package routing

import "github.com/chatroute-io/chatroute/keystore"

// Root is the engine-owned entry node every subscription merges into.
// It matches unconditionally and fans out to the first discriminating
// node of each installed pattern. Subscriptions whose graphs start with
// a nonterminal keyed on the same KeyFunction converge on one shared
// node, so the per-event traversal evaluates that node once rather than
// once per subscription.
type Root struct {
	successors []Node
}

// NewRoot returns an empty Root.
func NewRoot() *Root { return &Root{} }

// Add merges the entry node of a closed Graph into the Root, sharing
// nonterminals keyed on the same KeyFunction with previously installed
// subscriptions. It returns the number of node merges performed.
func (r *Root) Add(n Node) int {
	merges := 0
	r.successors = mergeInto(r.successors, n, &merges)
	return merges
}

// RemoveTerminal removes t from every successor set reachable from the
// Root and prunes nonterminals left with no successors.
func (r *Root) RemoveTerminal(t *Terminal) {
	r.successors = removeTerminalFrom(r.successors, t)
}

// Route traverses every installed pattern against rs. The returned
// matches are deduplicated by Terminal identity, keeping the first
// RouteState a Terminal was reached with.
func (r *Root) Route(rs keystore.RouteState) []RouteMatch {
	var out []RouteMatch
	seen := map[*Terminal]bool{}
	for _, n := range r.successors {
		for _, m := range n.Route(rs) {
			if seen[m.Terminal] {
				continue
			}
			seen[m.Terminal] = true
			out = append(out, m)
		}
	}
	return out
}

// NodeCount returns the number of distinct nodes reachable from the
// Root, Terminals included. Shared discriminator nodes count once.
func (r *Root) NodeCount() int {
	seen := map[Node]bool{}
	var walk func(n Node)
	walk = func(n Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		if p, ok := n.(parent); ok {
			for _, c := range p.children() {
				walk(c)
			}
		}
	}
	for _, n := range r.successors {
		walk(n)
	}
	return len(seen)
}

// parent is implemented by every node with successors, for NodeCount's
// reachability walk.
type parent interface {
	children() []Node
}

// terminalRemover is implemented by every nonterminal; removeTerminal
// prunes t from the node's successor sets and reports whether the node
// is now empty and should itself be pruned.
type terminalRemover interface {
	removeTerminal(t *Terminal) bool
}

// mergeInto inserts in among siblings, merging it with an existing
// sibling when both are nonterminals on the same KeyFunction instead of
// keeping two parallel discriminators on one axis.
func mergeInto(siblings []Node, in Node, merges *int) []Node {
	switch x := in.(type) {
	case *forkNode:
		for _, b := range x.branches {
			siblings = mergeInto(siblings, b, merges)
		}
		return siblings
	case *EqualNode:
		for _, s := range siblings {
			if ex, ok := s.(*EqualNode); ok && ex.Key.ID() == x.Key.ID() {
				*merges++
				ex.mergeFrom(x, merges)
				return siblings
			}
		}
	case *PrefixNode:
		for _, s := range siblings {
			if ex, ok := s.(*PrefixNode); ok && ex.Key.ID() == x.Key.ID() {
				*merges++
				ex.mergeFrom(x, merges)
				return siblings
			}
		}
	case *PredicateNode:
		for _, s := range siblings {
			if ex, ok := s.(*PredicateNode); ok && ex.Key.ID() == x.Key.ID() {
				*merges++
				for _, n := range x.next {
					ex.next = mergeInto(ex.next, n, merges)
				}
				return siblings
			}
		}
	case *MessageTypeNode:
		for _, s := range siblings {
			if ex, ok := s.(*MessageTypeNode); ok {
				*merges++
				ex.mergeFrom(x, merges)
				return siblings
			}
		}
	case *Terminal:
		for _, s := range siblings {
			if term, ok := s.(*Terminal); ok && term == x {
				return siblings
			}
		}
	}
	return append(siblings, in)
}

// removeTerminalFrom filters t out of nodes, recursing into
// nonterminals and dropping any that end up with no successors.
func removeTerminalFrom(nodes []Node, t *Terminal) []Node {
	kept := nodes[:0]
	for _, n := range nodes {
		if term, ok := n.(*Terminal); ok {
			if term == t {
				continue
			}
			kept = append(kept, n)
			continue
		}
		if tr, ok := n.(terminalRemover); ok && tr.removeTerminal(t) {
			continue
		}
		kept = append(kept, n)
	}
	return kept
}
