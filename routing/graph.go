package routing

import "github.com/chatroute-io/chatroute/keystore"

// Graph is a RoutingGraph under construction: a root Node plus the set
// of open leaves further composition attaches to. Go has no operator
// overloading, so serial composition (`&`) and alternation (`|`) are
// the Then and Or methods.
type Graph struct {
	root   Node
	leaves []leaf
	closed bool
}

func single(n Node, lv leaf) Graph {
	return Graph{root: n, leaves: []leaf{lv}}
}

// Root returns the Graph's entry Node, for installing into a
// dispatch.Engine.
func (g Graph) Root() Node { return g.root }

// Closed reports whether a Terminal has been installed, after which the
// Graph accepts no further composition.
func (g Graph) Closed() bool { return g.closed }

// Then composes g followed by next: every open leaf of g is connected
// to next's root, and the result's open leaves become next's leaves.
func (g Graph) Then(next Graph) Graph {
	for _, lv := range g.leaves {
		lv.attach(next.root)
	}
	return Graph{root: g.root, leaves: next.leaves}
}

// Or composes g and other as alternatives: an Event matches if either
// branch matches. The combined open leaves are the union of both
// branches', so a further Then attaches after whichever branch matched.
func (g Graph) Or(other Graph) Graph {
	return Graph{
		root:   &forkNode{branches: []Node{g.root, other.root}},
		leaves: append(append([]leaf{}, g.leaves...), other.leaves...),
	}
}

// Install terminates g at term, closing the Graph: every open leaf is
// connected to term and no further composition is meaningful.
func (g Graph) Install(term *Terminal) Graph {
	for _, lv := range g.leaves {
		lv.attach(term)
	}
	return Graph{root: g.root, closed: true}
}

// Route evaluates the Graph's root against rs.
func (g Graph) Route(rs keystore.RouteState) []RouteMatch {
	if g.root == nil {
		return nil
	}
	return g.root.Route(rs)
}

// forkNode routes to every branch unconditionally — the structural node
// behind Or. It carries no key of its own; each branch re-evaluates its
// own match condition independently.
type forkNode struct {
	branches []Node
}

func (f *forkNode) Route(rs keystore.RouteState) []RouteMatch {
	var out []RouteMatch
	for _, b := range f.branches {
		out = append(out, b.Route(rs)...)
	}
	return out
}

func (f *forkNode) removeTerminal(t *Terminal) bool {
	f.branches = removeTerminalFrom(f.branches, t)
	return len(f.branches) == 0
}

func (f *forkNode) children() []Node { return f.branches }
