package exec

import (
	"context"
	"sync"
	"testing"
)

func TestRunTickOrdersBands(t *testing.T) {
	e := New()
	var mu sync.Mutex
	var order []string

	record := func(name string) Fn {
		return func(ctx context.Context, self *Task) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	e.Spawn(Low, record("low"))
	e.Spawn(High, record("high"))
	e.Spawn(Wakeup, record("wakeup"))

	if err := e.RunTick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"wakeup", "high", "low"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected band order %v, got %v", want, order)
		}
	}
}

func TestSuspendNextPriorityDiscardsQueuedLowerBands(t *testing.T) {
	e := New()
	lowRan := false

	e.Spawn(High, func(ctx context.Context, self *Task) error {
		self.SuspendNextPriority()
		return nil
	})
	e.Spawn(Low, func(ctx context.Context, self *Task) error {
		lowRan = true
		return nil
	})

	if err := e.RunTick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lowRan {
		t.Fatal("Low band must not run after SuspendNextPriority")
	}

	// The suppressed task must not resurface on a later tick either.
	if err := e.RunTick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lowRan {
		t.Fatal("a discarded task ran on a later tick")
	}
}

func TestNeverBandIsNeverDrained(t *testing.T) {
	e := New()
	ran := false
	e.Spawn(Never, func(ctx context.Context, self *Task) error {
		ran = true
		return nil
	})
	if err := e.RunTick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ran {
		t.Fatal("Never-band tasks must not execute")
	}
}
