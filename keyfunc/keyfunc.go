// Package keyfunc implements KeyFunction: a named, identity-comparable
// projection from an event.Event to a routing key. Routing nodes built
// on KeyFunctions with the same identity merge into one discriminator
// node when installed into an engine.
package keyfunc

import (
	"sync/atomic"

	"github.com/chatroute-io/chatroute/event"
)

// KeyFunction projects an Event to a value that a routing Node matches
// against. Two KeyFunctions with the same ID are considered the same
// axis for node-merging purposes.
type KeyFunction interface {
	// ID identifies this KeyFunction for merge/equality purposes.
	ID() uintptr

	// Key names the axis this KeyFunction projects onto, used for
	// KeyStore indexing: distinct KeyFunctions declared on the same
	// axis alias to one another in the store.
	Key() interface{}

	// Eval projects ev onto this KeyFunction's axis.
	Eval(ev event.Event) interface{}
}

var nextID uint64

// newID hands out a fresh identity for every constructed KeyFunction.
//
// A Go func value's code address is shared by every closure compiled
// from the same literal regardless of what it captures, so two
// independently built KeyFunctions wrapping the same literal (e.g. two
// Match(pattern) calls with different patterns) would incorrectly
// report equal IDs and merge. An atomic counter assigned once at
// construction gives each KeyFunction value its own stable identity,
// while a KeyFunction held in a package-level var (keyfunc.EventTypeOf
// and friends) still compares equal everywhere it's referenced, since
// it's the same Func value copied around, not reconstructed.
func newID() uintptr {
	return uintptr(atomic.AddUint64(&nextID, 1))
}

// Func adapts a plain function into a KeyFunction.
type Func struct {
	id   uintptr
	eval func(event.Event) interface{}
	key  interface{}
}

// New wraps fn as a KeyFunction whose Key() defaults to its own ID.
func New(fn func(event.Event) interface{}) Func {
	return Func{id: newID(), eval: fn}
}

// NewNamed wraps fn as a KeyFunction with an explicit key axis — used
// when several distinct functions should be considered the same axis
// for KeyStore indexing (e.g. predicate KeyFunctions keyed "match").
func NewNamed(fn func(event.Event) interface{}, key interface{}) Func {
	return Func{id: newID(), eval: fn, key: key}
}

// ID returns this KeyFunction's identity.
func (f Func) ID() uintptr {
	return f.id
}

// Key returns the explicit key axis given to NewNamed, or this
// KeyFunction's ID() when none was given.
func (f Func) Key() interface{} {
	if f.key != nil {
		return f.key
	}
	return f.ID()
}

func (f Func) Eval(ev event.Event) interface{} { return f.eval(ev) }
