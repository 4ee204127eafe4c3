package keyfunc

import (
	"testing"

	"github.com/chatroute-io/chatroute/event"
)

func TestFuncIdentityIsStable(t *testing.T) {
	fn := func(ev event.Event) interface{} { return ev.Type }
	a := New(fn)
	b := New(fn)

	if a.ID() != b.ID() {
		t.Fatalf("two Func wrappers around the same function should share an ID")
	}
}

func TestFuncIdentityDiffersAcrossFunctions(t *testing.T) {
	a := New(func(ev event.Event) interface{} { return ev.Type })
	b := New(func(ev event.Event) interface{} { return ev.Type })

	if a.ID() == b.ID() {
		t.Fatalf("distinct function literals should not share an ID")
	}
}

func TestKeyDefaultsToID(t *testing.T) {
	f := New(func(ev event.Event) interface{} { return ev.Type })
	if f.Key() != f.ID() {
		t.Fatalf("Key() should default to ID() when no explicit axis is given")
	}
}

func TestNewNamedUsesExplicitKey(t *testing.T) {
	f := NewNamed(func(ev event.Event) interface{} { return ev.Type }, "axis")
	if f.Key() != "axis" {
		t.Fatalf("expected explicit key axis, got %#v", f.Key())
	}
}

func TestEventTypeOf(t *testing.T) {
	ev := event.Event{Type: event.GroupMessage}
	if got := EventTypeOf.Eval(ev); got != event.GroupMessage {
		t.Fatalf("expected %v, got %v", event.GroupMessage, got)
	}
}

func TestMessageContentStripped(t *testing.T) {
	ev := event.Event{Message: event.NewText("  hi  ")}
	if got := MessageContentStripped.Eval(ev); got != "hi" {
		t.Fatalf("expected %q, got %q", "hi", got)
	}
}
