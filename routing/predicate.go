package routing

import (
	"github.com/chatroute-io/chatroute/keyfunc"
	"github.com/chatroute-io/chatroute/keystore"
)

// PredicateNode matches when key's projection of the event is truthy
// (non-nil, non-false). If the projected value is a []string (e.g.
// regexp.FindStringSubmatch), the capture groups after index 0 are
// bound as positional args.
type PredicateNode struct {
	nonterminal
	Key keyfunc.KeyFunction
}

// NewPredicateNode builds a PredicateNode that continues whenever key
// projects a truthy value.
func NewPredicateNode(key keyfunc.KeyFunction) *PredicateNode {
	return &PredicateNode{Key: key}
}

func (p *PredicateNode) Route(rs keystore.RouteState) []RouteMatch {
	v := p.Key.Eval(rs.Event)
	if isFalsy(v) {
		return nil
	}
	next := rs.Bind(p.Key, v)
	if groups, ok := v.([]string); ok && len(groups) > 1 {
		args := make([]interface{}, 0, len(groups)-1)
		for _, g := range groups[1:] {
			args = append(args, g)
		}
		next = next.BindArgs(args...)
	}
	return p.routeNext(next)
}

func isFalsy(v interface{}) bool {
	if v == nil {
		return true
	}
	if b, ok := v.(bool); ok {
		return !b
	}
	return false
}
