// Package keystore implements KeyStore and RouteState: the per-route
// bag of values a RoutingGraph accumulates as it matches an Event down
// to a terminal, plus positional args captured by matching nodes
// (regex capture groups, prefix remainders).
package keystore

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/chatroute-io/chatroute/event"
	"github.com/chatroute-io/chatroute/keyfunc"
)

// KeyStore holds values indexed by KeyFunction identity, plus a
// by-name view of the same captures keyed by each KeyFunction's Key()
// axis — two distinct KeyFunction instances declared on the same axis
// alias to one another — plus an ordered list of positional args
// captured while routing.
type KeyStore struct {
	values map[uintptr]interface{}
	named  map[string]interface{}
	args   []interface{}
}

// NewKeyStore returns an empty KeyStore.
func NewKeyStore() KeyStore {
	return KeyStore{values: map[uintptr]interface{}{}, named: map[string]interface{}{}}
}

// Get returns the value stored for kf, and whether it was present.
func (s KeyStore) Get(kf keyfunc.KeyFunction) (interface{}, bool) {
	v, ok := s.values[kf.ID()]
	return v, ok
}

// GetNamed returns the value recorded under the axis name, and whether
// it was present. A value lands under a name either because its
// KeyFunction's Key() was explicitly set to that name (keyfunc.
// NewNamed) or because the matching node recorded a derived value
// (e.g. PrefixNode's "<axis>_len").
func (s KeyStore) GetNamed(name string) (interface{}, bool) {
	v, ok := s.named[name]
	return v, ok
}

// Has reports whether name has been recorded.
func (s KeyStore) Has(name string) bool {
	_, ok := s.named[name]
	return ok
}

// Arg returns the i'th positional arg captured while routing.
func (s KeyStore) Arg(i int) (interface{}, bool) {
	if i < 0 || i >= len(s.args) {
		return nil, false
	}
	return s.args[i], true
}

// With returns a copy of the KeyStore with kf bound to v, both under
// kf's own identity and under kf's Key() axis name, so a later lookup
// by either KeyFunction identity or by the shared axis name observes
// this capture. KeyStore is copy-on-write so that branching routes
// (multiple successors of a nonterminal) never observe each other's
// bindings.
func (s KeyStore) With(kf keyfunc.KeyFunction, v interface{}) KeyStore {
	next := s.clone()
	next.values[kf.ID()] = v
	next.named[fmt.Sprint(kf.Key())] = v
	return next
}

// WithNamed returns a copy of the KeyStore with v recorded under name,
// for nodes (e.g. PrefixNode's matched-prefix captures) that record a
// derived value rather than the KeyFunction's own projected value.
func (s KeyStore) WithNamed(name string, v interface{}) KeyStore {
	next := s.clone()
	next.named[name] = v
	return next
}

// WithArgs returns a copy of the KeyStore with args appended.
func (s KeyStore) WithArgs(args ...interface{}) KeyStore {
	next := s.clone()
	next.args = append(append([]interface{}{}, s.args...), args...)
	return next
}

func (s KeyStore) clone() KeyStore {
	values := make(map[uintptr]interface{}, len(s.values)+1)
	for k, v := range s.values {
		values[k] = v
	}
	named := make(map[string]interface{}, len(s.named)+1)
	for k, v := range s.named {
		named[k] = v
	}
	return KeyStore{values: values, named: named, args: s.args}
}

// Named is one pre-seeded store entry handed to Engine.HandleEvent,
// e.g. Named{"bot", session} so message handlers can reach the session
// that delivered the event.
type Named struct {
	Name  string
	Value interface{}
}

// RouteState is the state threaded through a single routing attempt: the
// Event being routed plus the KeyStore accumulated so far. RouteState
// carries an identity (ID) so the wait subsystem can correlate a
// matched RouteState back to the Task that is waiting on it.
type RouteState struct {
	ID    uuid.UUID
	Event event.Event
	Store KeyStore
}

// NewRouteState begins routing ev with an empty KeyStore.
func NewRouteState(ev event.Event) RouteState {
	return RouteState{ID: uuid.New(), Event: ev, Store: NewKeyStore()}
}

// Bind returns a copy of the RouteState with kf bound to v in its
// KeyStore.
func (rs RouteState) Bind(kf keyfunc.KeyFunction, v interface{}) RouteState {
	return RouteState{ID: rs.ID, Event: rs.Event, Store: rs.Store.With(kf, v)}
}

// BindNamed returns a copy of the RouteState with v recorded under name
// in its KeyStore, for nodes that capture a derived value rather than a
// KeyFunction's own projection.
func (rs RouteState) BindNamed(name string, v interface{}) RouteState {
	return RouteState{ID: rs.ID, Event: rs.Event, Store: rs.Store.WithNamed(name, v)}
}

// BindArgs returns a copy of the RouteState with args appended to its
// KeyStore's positional args.
func (rs RouteState) BindArgs(args ...interface{}) RouteState {
	return RouteState{ID: rs.ID, Event: rs.Event, Store: rs.Store.WithArgs(args...)}
}
