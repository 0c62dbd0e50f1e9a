package coordination

import (
	"testing"

	"github.com/go-drift/tinydisplay/pkg/anim"
	"github.com/go-drift/tinydisplay/pkg/expr"
	"github.com/go-drift/tinydisplay/pkg/tderrors"
)

func f64p(f float64) *float64 { return &f }

func mustAnim(t *testing.T, a *anim.Engine, b *anim.DefBuilder) string {
	t.Helper()
	def, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	id, err := a.Register(def)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return id
}

func TestSyncFiresWhenAllAnimationsActive(t *testing.T) {
	anims := anim.NewEngine()
	a := mustAnim(t, anims, anim.NewDefBuilder("a", anim.KindFade).Duration(10).StartEnd(anim.Values{Opacity: f64p(0)}, anim.Values{Opacity: f64p(1)}))
	b := mustAnim(t, anims, anim.NewDefBuilder("b", anim.KindFade).Duration(10).StartEnd(anim.Values{Opacity: f64p(0)}, anim.Values{Opacity: f64p(1)}))
	if err := anims.Start(a, 0); err != nil {
		t.Fatal(err)
	}
	if err := anims.Start(b, 5); err != nil {
		t.Fatal(err)
	}

	eng := NewEngine(anims, nil, nil)
	sync, err := NewSync("s1", 0, []string{a, b})
	if err != nil {
		t.Fatal(err)
	}
	eng.RegisterSync(sync)

	evs, err := eng.EvaluateAt(3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 0 {
		t.Fatalf("expected no fire before b starts, got %v", evs)
	}

	evs, err = eng.EvaluateAt(5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Kind != SyncTriggered || evs[0].PrimitiveID != "s1" {
		t.Fatalf("expected SYNC_TRIGGERED at t=5, got %v", evs)
	}

	evs, err = eng.EvaluateAt(6, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 0 {
		t.Fatalf("expected sync not to re-fire, got %v", evs)
	}
}

func TestBarrierResolvesWhenAllWaitingComplete(t *testing.T) {
	anims := anim.NewEngine()
	a := mustAnim(t, anims, anim.NewDefBuilder("a", anim.KindFade).Duration(10).StartEnd(anim.Values{Opacity: f64p(0)}, anim.Values{Opacity: f64p(1)}))
	b := mustAnim(t, anims, anim.NewDefBuilder("b", anim.KindFade).Duration(20).StartEnd(anim.Values{Opacity: f64p(0)}, anim.Values{Opacity: f64p(1)}))
	if err := anims.Start(a, 0); err != nil {
		t.Fatal(err)
	}
	if err := anims.Start(b, 0); err != nil {
		t.Fatal(err)
	}

	eng := NewEngine(anims, nil, nil)
	barrier, err := NewBarrier("br", 0, []string{a, b}, nil)
	if err != nil {
		t.Fatal(err)
	}
	eng.RegisterBarrier(barrier)

	evs, err := eng.EvaluateAt(10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 0 {
		t.Fatalf("expected no resolution while b still running, got %v", evs)
	}

	evs, err = eng.EvaluateAt(20, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Kind != BarrierResolved {
		t.Fatalf("expected BARRIER_RESOLVED at t=20, got %v", evs)
	}
}

func TestBarrierTimeoutReleasesByDefault(t *testing.T) {
	anims := anim.NewEngine()
	a := mustAnim(t, anims, anim.NewDefBuilder("a", anim.KindFade).Duration(100).StartEnd(anim.Values{Opacity: f64p(0)}, anim.Values{Opacity: f64p(1)}))
	if err := anims.Start(a, 0); err != nil {
		t.Fatal(err)
	}

	eng := NewEngine(anims, nil, nil)
	barrier, err := NewBarrier("br", 0, []string{a}, nil, WithTimeout(10, Release))
	if err != nil {
		t.Fatal(err)
	}
	eng.RegisterBarrier(barrier)

	evs, err := eng.EvaluateAt(10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Kind != BarrierResolved {
		t.Fatalf("expected timeout release at t=10, got %v", evs)
	}
	if payload, ok := evs[0].Payload.(map[string]bool); !ok || !payload["timeout"] {
		t.Fatalf("expected timeout=true payload, got %v", evs[0].Payload)
	}
}

func TestSequenceEmitsStepsInOrderAndCompletes(t *testing.T) {
	anims := anim.NewEngine()
	eng := NewEngine(anims, nil, nil)
	seq, err := NewSequence("seq", 10, []SequenceStep{
		{OffsetTicks: 5, AnimationID: "x"},
		{OffsetTicks: 0, AnimationID: "w"},
	})
	if err != nil {
		t.Fatal(err)
	}
	eng.RegisterSequence(seq)

	evs, err := eng.EvaluateAt(10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Payload != "w" {
		t.Fatalf("expected step w to start at t=10, got %v", evs)
	}

	evs, err = eng.EvaluateAt(15, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 2 || evs[0].Kind != SequenceStepStarted || evs[1].Kind != SequenceCompleted {
		t.Fatalf("expected step x then completion at t=15, got %v", evs)
	}
}

func TestProgressTriggerFiresOnThresholdCross(t *testing.T) {
	anims := anim.NewEngine()
	a := mustAnim(t, anims, anim.NewDefBuilder("a", anim.KindFade).Duration(10).StartEnd(anim.Values{Opacity: f64p(0)}, anim.Values{Opacity: f64p(1)}))
	if err := anims.Start(a, 0); err != nil {
		t.Fatal(err)
	}

	eng := NewEngine(anims, nil, nil)
	pt, err := NewProgressTrigger("pt", a, 0.5, false, "")
	if err != nil {
		t.Fatal(err)
	}
	eng.RegisterProgressTrigger(pt)

	evs, err := eng.EvaluateAt(4, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 0 {
		t.Fatalf("expected no fire below threshold, got %v", evs)
	}

	evs, err = eng.EvaluateAt(5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Kind != TriggerActivated {
		t.Fatalf("expected TRIGGER_ACTIVATED at t=5, got %v", evs)
	}
}

// TestDataTriggerCpuScenario is the seed scenario from spec.md §8:
// DataTrigger(condition="cpu > 80", vars=[cpu]) with auto_reset=true,
// sampling cpu=75@10, cpu=85@20, cpu=70@40.
func TestDataTriggerCpuScenario(t *testing.T) {
	anims := anim.NewEngine()
	eng := NewEngine(anims, nil, nil)
	dt, err := NewDataTrigger("cpu-high", "cpu > 80", []string{"cpu"}, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.RegisterDataTrigger(dt); err != nil {
		t.Fatal(err)
	}

	evs, err := eng.EvaluateAt(10, map[string]expr.Value{"cpu": expr.Num(75)})
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 0 {
		t.Fatalf("expected no trigger at cpu=75, got %v", evs)
	}

	evs, err = eng.EvaluateAt(20, map[string]expr.Value{"cpu": expr.Num(85)})
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Kind != TriggerActivated || evs[0].PrimitiveID != "cpu-high" {
		t.Fatalf("expected TRIGGER_ACTIVATED at t=20, got %v", evs)
	}

	evs, err = eng.EvaluateAt(40, map[string]expr.Value{"cpu": expr.Num(70)})
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Kind != TriggerReset || evs[0].PrimitiveID != "cpu-high" {
		t.Fatalf("expected TRIGGER_RESET at t=40, got %v", evs)
	}
}

func TestPredictDoesNotMutateLiveState(t *testing.T) {
	anims := anim.NewEngine()
	a := mustAnim(t, anims, anim.NewDefBuilder("a", anim.KindFade).Duration(10).StartEnd(anim.Values{Opacity: f64p(0)}, anim.Values{Opacity: f64p(1)}))
	if err := anims.Start(a, 0); err != nil {
		t.Fatal(err)
	}

	eng := NewEngine(anims, nil, nil)
	pt, err := NewProgressTrigger("pt", a, 0.5, false, "")
	if err != nil {
		t.Fatal(err)
	}
	eng.RegisterProgressTrigger(pt)

	evs, err := eng.Predict(0, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Kind != TriggerActivated {
		t.Fatalf("expected predicted TRIGGER_ACTIVATED, got %v", evs)
	}

	live, err := eng.EvaluateAt(5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(live) != 1 || live[0].Kind != TriggerActivated {
		t.Fatalf("expected live evaluation unaffected by Predict, got %v", live)
	}
}

// TestDataTriggerEvalFailureDegradesInsteadOfAborting covers a DataTrigger
// whose condition references a variable with no sample yet: the failed
// evaluation must count as false for that trigger, increment
// MetricExprEvalFallback, and never stop the rest of the tick's
// primitives (here a Sync due the same tick) from evaluating.
func TestDataTriggerEvalFailureDegradesInsteadOfAborting(t *testing.T) {
	anims := anim.NewEngine()
	a := mustAnim(t, anims, anim.NewDefBuilder("a", anim.KindFade).Duration(10).StartEnd(anim.Values{Opacity: f64p(0)}, anim.Values{Opacity: f64p(1)}))
	if err := anims.Start(a, 0); err != nil {
		t.Fatal(err)
	}

	metrics := tderrors.NewMetrics()
	eng := NewEngine(anims, nil, metrics)

	dt, err := NewDataTrigger("unfed", "cpu > 80", []string{"cpu"}, false, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.RegisterDataTrigger(dt); err != nil {
		t.Fatal(err)
	}
	sync, err := NewSync("s1", 0, []string{a})
	if err != nil {
		t.Fatal(err)
	}
	eng.RegisterSync(sync)

	evs, err := eng.EvaluateAt(0, nil)
	if err != nil {
		t.Fatalf("expected eval failure to degrade rather than abort the tick, got err=%v", err)
	}
	if len(evs) != 1 || evs[0].Kind != SyncTriggered {
		t.Fatalf("expected the sync to still fire despite the unevaluable data trigger, got %v", evs)
	}
	if got := metrics.Get(tderrors.MetricExprEvalFallback); got != 1 {
		t.Fatalf("expected MetricExprEvalFallback=1, got %d", got)
	}
}

func TestEventOrderWithinTick(t *testing.T) {
	events := []Event{
		{Tick: 10, Kind: BarrierResolved, PrimitiveID: "z"},
		{Tick: 10, Kind: SyncTriggered, PrimitiveID: "a"},
		{Tick: 5, Kind: TriggerReset, PrimitiveID: "x"},
		{Tick: 10, Kind: TriggerActivated, PrimitiveID: "b"},
	}
	Order(events)
	want := []EventKind{TriggerReset, SyncTriggered, TriggerActivated, BarrierResolved}
	for i, k := range want {
		if events[i].Kind != k {
			t.Fatalf("index %d: expected %v, got %v", i, k, events[i].Kind)
		}
	}
}
