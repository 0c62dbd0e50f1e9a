package depgraph

import "testing"

func TestSubscribeRejectsCycle(t *testing.T) {
	g := New()
	g.Register("a")
	g.Register("b")
	if err := g.Subscribe("a", "b"); err != nil {
		t.Fatalf("Subscribe(a,b): %v", err)
	}
	if err := g.Subscribe("b", "a"); err == nil {
		t.Fatal("expected cycle rejection")
	}
}

func TestSubscribeRejectsSelf(t *testing.T) {
	g := New()
	g.Register("a")
	if err := g.Subscribe("a", "a"); err == nil {
		t.Fatal("expected self-subscription rejection")
	}
}

func TestSubscribeRejectsUnregistered(t *testing.T) {
	g := New()
	g.Register("a")
	if err := g.Subscribe("a", "ghost"); err == nil {
		t.Fatal("expected error for unregistered source")
	}
}

func TestDispatchEventsDedupesBySourceAndKind(t *testing.T) {
	g := New()
	g.Register("cpu")
	g.Register("w1")
	g.Register("w2")
	if err := g.Subscribe("w1", "cpu"); err != nil {
		t.Fatal(err)
	}
	if err := g.Subscribe("w2", "cpu"); err != nil {
		t.Fatal(err)
	}

	g.Notify(ChangeEvent{Kind: "sample", Source: "cpu", Data: 85.0})
	g.Notify(ChangeEvent{Kind: "sample", Source: "cpu", Data: 90.0})
	g.Notify(ChangeEvent{Kind: "other", Source: "cpu", Data: nil})

	dispatches := g.DispatchEvents()
	if len(dispatches) != 2 {
		t.Fatalf("expected 2 deduped dispatches, got %d", len(dispatches))
	}

	first := dispatches[0]
	if first.Event.Data != 85.0 {
		t.Fatalf("expected first-seen event to survive, got %+v", first.Event)
	}
	if len(first.Observers) != 2 || first.Observers[0] != "w1" || first.Observers[1] != "w2" {
		t.Fatalf("unexpected observers: %+v", first.Observers)
	}

	if len(g.DispatchEvents()) != 0 {
		t.Fatal("expected pending queue to be cleared after dispatch")
	}
}

func TestUnsubscribeRemovesEdge(t *testing.T) {
	g := New()
	g.Register("a")
	g.Register("b")
	if err := g.Subscribe("b", "a"); err != nil {
		t.Fatal(err)
	}
	g.Unsubscribe("b", "a")

	g.Notify(ChangeEvent{Kind: "k", Source: "a"})
	dispatches := g.DispatchEvents()
	if len(dispatches) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(dispatches))
	}
	if len(dispatches[0].Observers) != 0 {
		t.Fatalf("expected no observers after unsubscribe, got %+v", dispatches[0].Observers)
	}
}

func TestReachableFollowsTransitiveObservers(t *testing.T) {
	g := New()
	g.Register("a")
	g.Register("b")
	g.Register("c")
	if err := g.Subscribe("b", "a"); err != nil {
		t.Fatal(err)
	}
	if err := g.Subscribe("c", "b"); err != nil {
		t.Fatal(err)
	}

	reachable := g.Reachable("a")
	if len(reachable) != 2 || reachable[0] != "b" || reachable[1] != "c" {
		t.Fatalf("unexpected reachable set: %+v", reachable)
	}
}
