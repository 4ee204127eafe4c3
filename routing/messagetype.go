package routing

import "github.com/chatroute-io/chatroute/keystore"

// MessageTypeNode fans out over every element of the event's message
// chain, matching successors registered for that element's Type.
type MessageTypeNode struct {
	types      []string
	successors map[string][]Node
}

// NewMessageTypeNode builds a MessageTypeNode matching any of the given
// element type names.
func NewMessageTypeNode(types ...string) *MessageTypeNode {
	return &MessageTypeNode{types: types, successors: map[string][]Node{}}
}

func (m *MessageTypeNode) attach(next Node) {
	for _, t := range m.types {
		m.successors[t] = append(m.successors[t], next)
	}
}

func (m *MessageTypeNode) Route(rs keystore.RouteState) []RouteMatch {
	seen := map[Node]bool{}
	var out []RouteMatch
	for _, el := range rs.Event.Message {
		nexts, ok := m.successors[el.Type()]
		if !ok {
			continue
		}
		for _, nx := range nexts {
			if seen[nx] {
				continue
			}
			seen[nx] = true
			out = append(out, nx.Route(rs)...)
		}
	}
	return out
}

// mergeFrom folds in's per-type successor sets into m. All
// MessageTypeNodes share the implicit "element type" axis, so any two
// of them at the same graph depth merge.
func (m *MessageTypeNode) mergeFrom(in *MessageTypeNode, merges *int) {
	for _, t := range in.types {
		if _, ok := m.successors[t]; !ok {
			m.types = append(m.types, t)
		}
		for _, n := range in.successors[t] {
			m.successors[t] = mergeInto(m.successors[t], n, merges)
		}
	}
}

func (m *MessageTypeNode) removeTerminal(t *Terminal) bool {
	for typ, nexts := range m.successors {
		kept := removeTerminalFrom(nexts, t)
		if len(kept) == 0 {
			delete(m.successors, typ)
			m.types = dropString(m.types, typ)
			continue
		}
		m.successors[typ] = kept
	}
	return len(m.successors) == 0
}

func (m *MessageTypeNode) children() []Node {
	var out []Node
	for _, t := range m.types {
		out = append(out, m.successors[t]...)
	}
	return out
}
