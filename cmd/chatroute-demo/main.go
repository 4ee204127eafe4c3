// Command chatroute-demo wires routing, dispatch, and exec together
// against a handful of handlers, then feeds a short scripted sequence
// of events through the engine: equality dispatch, prefix matching with
// command-remainder capture, priority gating, and a parked wait that a
// later reply resumes.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chatroute-io/chatroute/dispatch"
	"github.com/chatroute-io/chatroute/emit"
	"github.com/chatroute-io/chatroute/event"
	"github.com/chatroute-io/chatroute/exec"
	"github.com/chatroute-io/chatroute/keystore"
	"github.com/chatroute-io/chatroute/priority"
	"github.com/chatroute-io/chatroute/routing"
)

func main() {
	emitter := emit.NewLogEmitter(nil, false)
	executor := exec.New(
		exec.WithEmitter(emitter),
		exec.WithDefaultWaitTimeout(1500*time.Millisecond),
		exec.WithSchedulerTick(500*time.Millisecond),
	)
	stopScheduler := executor.StartScheduler()
	defer stopScheduler()

	engine := dispatch.New(emitter).WithExecutor(executor)

	subscribe := func(id string, g routing.Graph, p priority.Priority, h dispatch.Handler) {
		if _, err := engine.Subscribe(id, g, p, true, h); err != nil {
			log.Fatalf("subscribe %s: %v", id, err)
		}
	}

	// Equality dispatch on event type.
	subscribe("friend-hello", routing.IsFriend(), priority.Normal,
		func(ctx context.Context, rs keystore.RouteState) error {
			fmt.Println("friend handler:", rs.Event.AsPlain())
			return nil
		})

	// Prefix dispatch, reading back the matched prefix and remainder.
	subscribe("help-prefix", routing.StartsWith(true, "!help"), priority.Normal,
		func(ctx context.Context, rs keystore.RouteState) error {
			prefix, _ := rs.Store.GetNamed("message_content_lstripped_prefix")
			rest, _ := rs.Store.Arg(0)
			fmt.Printf("help handler: prefix=%v remainder=%q\n", prefix, rest)
			return nil
		})

	// Priority gating: High suspends Low for this event.
	subscribe("urgent", routing.Equals(true, "!stop"), priority.High,
		func(ctx context.Context, rs keystore.RouteState) error {
			fmt.Println("urgent handler ran, suspending lower-priority bands")
			if self := exec.CurrentTask(ctx); self != nil {
				self.SuspendNextPriority()
			}
			return nil
		})
	subscribe("logger", routing.Equals(true, "!stop"), priority.Low,
		func(ctx context.Context, rs keystore.RouteState) error {
			fmt.Println("logger handler ran (should not print after !stop)")
			return nil
		})

	// "ping" parks a task until the next message from the same sender
	// arrives, or times out.
	subscribe("ping", routing.Equals(true, "ping"), priority.Normal,
		func(ctx context.Context, rs keystore.RouteState) error {
			self := exec.CurrentTask(ctx)
			reply, err := executor.Waits.WaitNext(ctx, self, rs.Event, 1500*time.Millisecond, true, false)
			if err != nil {
				fmt.Println("ping handler: wait timed out:", err)
				return nil
			}
			fmt.Println("ping handler: got reply", reply.Event.AsPlain())
			return nil
		})

	fmt.Println("routing graph nodes:", engine.NodeCount())

	sender := event.Sender{QQ: 42, Name: "alice"}
	session := event.BotSession{Name: "demo"}
	events := []event.Event{
		{Type: event.FriendMessage, Provider: session, Sender: sender, Message: event.NewText("hi there")},
		{Type: event.GroupMessage, Provider: session, Group: 1, Sender: sender, Message: event.NewText("  !help me")},
		{Type: event.GroupMessage, Provider: session, Group: 1, Sender: sender, Message: event.NewText("!stop")},
	}

	ctx := context.Background()
	for _, ev := range events {
		handled, err := engine.HandleEvent(ctx, ev, keystore.Named{Name: "bot", Value: session})
		if err != nil {
			log.Printf("HandleEvent error: %v", err)
		}
		fmt.Printf("dispatched %s: handled=%v\n", ev.Type, handled)
	}

	// The "ping" handler parks itself on a wait, so its HandleEvent call
	// blocks until the reply arrives or the deadline lapses. Real
	// deployments drive every inbound transport event from its own
	// goroutine for exactly this reason.
	done := make(chan struct{})
	go func() {
		defer close(done)
		ping := event.Event{Type: event.FriendMessage, Provider: session, Sender: sender, Message: event.NewText("ping")}
		if _, err := engine.HandleEvent(ctx, ping); err != nil {
			log.Printf("HandleEvent error: %v", err)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	reply := event.Event{Type: event.FriendMessage, Provider: session, Sender: sender, Message: event.NewText("pong")}
	if _, err := engine.HandleEvent(ctx, reply); err != nil {
		log.Printf("HandleEvent error: %v", err)
	}
	<-done
}
