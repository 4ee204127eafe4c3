package routing

import (
	"fmt"

	"github.com/chatroute-io/chatroute/internal/trie"
	"github.com/chatroute-io/chatroute/keyfunc"
	"github.com/chatroute-io/chatroute/keystore"
)

// PrefixNode matches when key's string projection of the event starts
// with a configured prefix, longest prefix winning. On a match the node
// records the full projected string under the key axis, the matched
// prefix under "<axis>_prefix", its byte length under "<axis>_len",
// and the remainder as positional arg 0.
type PrefixNode struct {
	Key        keyfunc.KeyFunction
	t          *trie.Trie
	prefixes   []string
	successors map[string][]Node
}

// NewPrefixNode builds a PrefixNode matching any of prefixes on key.
func NewPrefixNode(key keyfunc.KeyFunction, prefixes ...string) *PrefixNode {
	t := trie.New()
	for _, p := range prefixes {
		t.Insert(p)
	}
	return &PrefixNode{Key: key, t: t, prefixes: prefixes, successors: map[string][]Node{}}
}

// attach connects next under every configured prefix.
func (p *PrefixNode) attach(next Node) {
	for _, pre := range p.prefixes {
		p.successors[pre] = append(p.successors[pre], next)
	}
}

func (p *PrefixNode) Route(rs keystore.RouteState) []RouteMatch {
	v, ok := p.Key.Eval(rs.Event).(string)
	if !ok {
		return nil
	}
	prefix, rest, ok := p.t.MatchLongest(v)
	if !ok {
		return nil
	}
	nexts := p.successors[prefix]
	if len(nexts) == 0 {
		return nil
	}
	axis := fmt.Sprint(p.Key.Key())
	bound := rs.Bind(p.Key, v).
		BindNamed(axis+"_prefix", prefix).
		BindNamed(axis+"_len", len(prefix)).
		BindArgs(rest)
	var out []RouteMatch
	for _, nx := range nexts {
		out = append(out, nx.Route(bound)...)
	}
	return out
}

// mergeFrom folds in's prefixes and per-prefix successor sets into p.
func (p *PrefixNode) mergeFrom(in *PrefixNode, merges *int) {
	for _, pre := range in.prefixes {
		if _, ok := p.successors[pre]; !ok {
			p.t.Insert(pre)
			p.prefixes = append(p.prefixes, pre)
		}
		for _, n := range in.successors[pre] {
			p.successors[pre] = mergeInto(p.successors[pre], n, merges)
		}
	}
}

func (p *PrefixNode) removeTerminal(t *Terminal) bool {
	for pre, nexts := range p.successors {
		kept := removeTerminalFrom(nexts, t)
		if len(kept) == 0 {
			delete(p.successors, pre)
			p.t.Remove(pre)
			p.prefixes = dropString(p.prefixes, pre)
			continue
		}
		p.successors[pre] = kept
	}
	return len(p.successors) == 0
}

func (p *PrefixNode) children() []Node {
	var out []Node
	for _, pre := range p.prefixes {
		out = append(out, p.successors[pre]...)
	}
	return out
}

func dropString(ss []string, s string) []string {
	kept := ss[:0]
	for _, x := range ss {
		if x != s {
			kept = append(kept, x)
		}
	}
	return kept
}
