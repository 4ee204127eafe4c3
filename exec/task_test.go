package exec

import (
	"context"
	"testing"
)

func TestTaskLifecycleCompleted(t *testing.T) {
	e := New()
	done := make(chan struct{})
	task := e.Spawn(Normal, func(ctx context.Context, self *Task) error {
		close(done)
		return nil
	})
	if task.State() != Runnable {
		t.Fatalf("expected new task to be Runnable, got %v", task.State())
	}
	if err := e.RunTick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	<-done
	if task.State() != Completed {
		t.Fatalf("expected Completed, got %v", task.State())
	}
}

func TestTaskLifecycleFailed(t *testing.T) {
	e := New()
	boom := errBoom{}
	task := e.Spawn(Normal, func(ctx context.Context, self *Task) error {
		return boom
	})
	_ = e.RunTick(context.Background())
	if task.State() != Failed {
		t.Fatalf("expected Failed, got %v", task.State())
	}
	if task.Err() != boom {
		t.Fatalf("expected task.Err() to return the handler's error")
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
