package routing

import "github.com/chatroute-io/chatroute/keystore"

// ProcessNode always continues, first transforming the RouteState —
// the escape hatch for binding derived values into the store before
// further matching (e.g. normalizing message content).
type ProcessNode struct {
	nonterminal
	fn func(keystore.RouteState) keystore.RouteState
}

// NewProcessNode builds a ProcessNode applying fn before continuing.
func NewProcessNode(fn func(keystore.RouteState) keystore.RouteState) *ProcessNode {
	return &ProcessNode{fn: fn}
}

func (p *ProcessNode) Route(rs keystore.RouteState) []RouteMatch {
	return p.routeNext(p.fn(rs))
}
