package event

import "testing"

func TestMessageAsPlainConcatenatesTextElements(t *testing.T) {
	m := Message{Text("hello "), Quote{ReplyTo: 1}, Text("world")}
	if got := m.AsPlain(); got != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", got)
	}
}

func TestWithQuoteAppendsElement(t *testing.T) {
	m := NewText("reply").WithQuote(Quote{ReplyTo: 42})
	if len(m) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(m))
	}
	q, ok := m[1].(Quote)
	if !ok || q.ReplyTo != 42 {
		t.Fatalf("expected a Quote(42) element, got %#v", m[1])
	}
}

func TestAttrBagSetGet(t *testing.T) {
	bag := NewAttrBag("")
	bag, err := bag.Set("conn.state", "open")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := bag.Get("conn.state").String(); got != "open" {
		t.Fatalf("expected %q, got %q", "open", got)
	}
	if bag.Get("conn.missing").Exists() {
		t.Fatalf("unset path must not exist")
	}
}

func TestAttrBagSetDoesNotMutateReceiver(t *testing.T) {
	base := NewAttrBag(`{"a":1}`)
	next, err := base.Set("a", 2)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if base.Get("a").Int() != 1 || next.Get("a").Int() != 2 {
		t.Fatalf("expected copy-on-write semantics, got base=%v next=%v", base.Get("a").Int(), next.Get("a").Int())
	}
}

func TestMethodNotInjectedError(t *testing.T) {
	err := &MethodNotInjectedError{Method: "reply"}
	if err.Error() != "method not injected: reply" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
