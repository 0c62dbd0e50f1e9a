package timeline

import (
	"testing"

	"github.com/go-drift/tinydisplay/pkg/anim"
	"github.com/go-drift/tinydisplay/pkg/coordination"
)

func f64p(f float64) *float64 { return &f }

func TestEvaluateAtInvokesSideEffectInOrder(t *testing.T) {
	anims := anim.NewEngine()
	def, err := anim.NewDefBuilder("a", anim.KindFade).Duration(10).
		StartEnd(anim.Values{Opacity: f64p(0)}, anim.Values{Opacity: f64p(1)}).Build()
	if err != nil {
		t.Fatal(err)
	}
	id, err := anims.Register(def)
	if err != nil {
		t.Fatal(err)
	}
	if err := anims.Start(id, 0); err != nil {
		t.Fatal(err)
	}

	coord := coordination.NewEngine(anims, nil, nil)
	sync, err := coordination.NewSync("s", 0, []string{id})
	if err != nil {
		t.Fatal(err)
	}
	coord.RegisterSync(sync)

	eng := NewEngine(coord, 0)
	var seen []coordination.Event
	evs, err := eng.EvaluateAt(0, nil, func(ev coordination.Event) { seen = append(seen, ev) })
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || len(seen) != 1 || seen[0].PrimitiveID != "s" {
		t.Fatalf("expected side effect to observe sync event, got evs=%v seen=%v", evs, seen)
	}

	recent := eng.RecentEvents()
	if len(recent) != 1 || recent[0].PrimitiveID != "s" {
		t.Fatalf("expected ring to retain the event, got %v", recent)
	}
}

func TestEventRingEvictsOldest(t *testing.T) {
	r := newEventRing(2)
	r.push(coordination.Event{Tick: 1}, coordination.Event{Tick: 2}, coordination.Event{Tick: 3})
	snap := r.snapshot()
	if len(snap) != 2 || snap[0].Tick != 2 || snap[1].Tick != 3 {
		t.Fatalf("expected ring to retain the last two pushes, got %v", snap)
	}
}

func TestPlanOwnerLookup(t *testing.T) {
	plan, err := NewPlan("intro", []string{"sync-a", "barrier-b"})
	if err != nil {
		t.Fatal(err)
	}
	plans := map[string]*Plan{"intro": plan}
	if Owner(plans, "barrier-b") == nil {
		t.Fatal("expected barrier-b to be owned by intro")
	}
	if Owner(plans, "unknown") != nil {
		t.Fatal("expected unknown primitive to have no owning plan")
	}
}

func TestPredictDoesNotTouchRing(t *testing.T) {
	anims := anim.NewEngine()
	def, err := anim.NewDefBuilder("a", anim.KindFade).Duration(10).
		StartEnd(anim.Values{Opacity: f64p(0)}, anim.Values{Opacity: f64p(1)}).Build()
	if err != nil {
		t.Fatal(err)
	}
	id, err := anims.Register(def)
	if err != nil {
		t.Fatal(err)
	}
	if err := anims.Start(id, 0); err != nil {
		t.Fatal(err)
	}
	coord := coordination.NewEngine(anims, nil, nil)
	pt, err := coordination.NewProgressTrigger("pt", id, 0.5, false, "")
	if err != nil {
		t.Fatal(err)
	}
	coord.RegisterProgressTrigger(pt)

	eng := NewEngine(coord, 0)
	evs, err := eng.Predict(0, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 {
		t.Fatalf("expected one predicted event, got %v", evs)
	}
	if len(eng.RecentEvents()) != 0 {
		t.Fatal("expected Predict not to touch the ring")
	}
}
