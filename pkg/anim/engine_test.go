package anim

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func mustBuild(t *testing.T, b *DefBuilder) *AnimationDef {
	t.Helper()
	def, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return def
}

func TestSimpleFade(t *testing.T) {
	e := NewEngine()
	def := mustBuild(t, NewDefBuilder("fade-in", KindFade).
		Duration(10).
		Easing("linear").
		StartEnd(Values{Opacity: f64p(0)}, Values{Opacity: f64p(1)}))
	if _, err := e.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := e.Start("fade-in", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if st := e.StateAt("fade-in", 0); st == nil || !almostEqual(*st.Opacity, 0) {
		t.Fatalf("t=0: got %+v", st)
	}
	if st := e.StateAt("fade-in", 5); st == nil || !almostEqual(*st.Opacity, 0.5) {
		t.Fatalf("t=5: got %+v", st)
	}
	if st := e.StateAt("fade-in", 10); st == nil || !st.Completed || !almostEqual(*st.Opacity, 1) {
		t.Fatalf("t=10: got %+v", st)
	}
	if st := e.StateAt("fade-in", 50); st == nil || !st.Completed {
		t.Fatalf("t=50: completion must be sticky, got %+v", st)
	}
}

// TestRepeatWithReverse is seed scenario 5 from spec.md §8: A =
// scale(1->2, duration=10, repeat_count=2, reverse_on_repeat=true,
// easing=linear, start_tick=0). At t=5, scale=1.5 (phase up); at t=15,
// scale=1.5 (phase down); at t=20, completed=true, scale=1.
func TestRepeatWithReverse(t *testing.T) {
	e := NewEngine()
	def := mustBuild(t, NewDefBuilder("scale-a", KindScale).
		Duration(10).
		Repeat(2, true).
		Easing("linear").
		StartEnd(Values{Scale: f64p(1)}, Values{Scale: f64p(2)}))
	if _, err := e.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := e.Start("scale-a", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if st := e.StateAt("scale-a", 5); st == nil || !almostEqual(*st.Scale, 1.5) {
		t.Fatalf("t=5: got %+v", st)
	}
	if st := e.StateAt("scale-a", 15); st == nil || !almostEqual(*st.Scale, 1.5) {
		t.Fatalf("t=15: got %+v", st)
	}
	st := e.StateAt("scale-a", 20)
	if st == nil || !st.Completed {
		t.Fatalf("t=20: expected completed, got %+v", st)
	}
	if !almostEqual(*st.Scale, 1) {
		t.Fatalf("t=20: expected scale=1 on completion per final-state evaluation, got %v", *st.Scale)
	}
}

func TestDurationOneEdgeCase(t *testing.T) {
	e := NewEngine()
	def := mustBuild(t, NewDefBuilder("blink", KindFade).
		Duration(1).
		Easing("linear").
		StartEnd(Values{Opacity: f64p(0)}, Values{Opacity: f64p(1)}))
	if _, err := e.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := e.Start("blink", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if st := e.StateAt("blink", 0); st == nil || !almostEqual(st.Progress, 1) {
		t.Fatalf("duration=1 single active tick must read progress=1, got %+v", st)
	}
}

func TestPreStartDefaultIsNil(t *testing.T) {
	e := NewEngine()
	def := mustBuild(t, NewDefBuilder("delayed", KindFade).
		Duration(10).
		Delay(5).
		StartEnd(Values{Opacity: f64p(0)}, Values{Opacity: f64p(1)}))
	if _, err := e.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := e.Start("delayed", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if st := e.StateAt("delayed", 4); st != nil {
		t.Fatalf("expected nil before origin, got %+v", st)
	}
	if st := e.StateAt("delayed", 5); st == nil || !almostEqual(*st.Opacity, 0) {
		t.Fatalf("expected active at origin, got %+v", st)
	}
}

func TestPreStartFrozen(t *testing.T) {
	e := NewEngine()
	def := mustBuild(t, NewDefBuilder("frozen", KindFade).
		Duration(10).
		Delay(5).
		PreStart(PreStartFrozen).
		StartEnd(Values{Opacity: f64p(0.25)}, Values{Opacity: f64p(1)}))
	if _, err := e.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := e.Start("frozen", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	st := e.StateAt("frozen", 0)
	if st == nil || st.Active || !almostEqual(*st.Opacity, 0.25) {
		t.Fatalf("expected frozen start value before origin, got %+v", st)
	}
}

func TestPauseResumeFreezesElapsedTime(t *testing.T) {
	e := NewEngine()
	def := mustBuild(t, NewDefBuilder("pausable", KindFade).
		Duration(10).
		Easing("linear").
		StartEnd(Values{Opacity: f64p(0)}, Values{Opacity: f64p(1)}))
	if _, err := e.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := e.Start("pausable", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := e.Pause("pausable", 3); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if st := e.StateAt("pausable", 8); st == nil || !almostEqual(*st.Opacity, 0.3) {
		t.Fatalf("while paused progress must hold, got %+v", st)
	}
	if err := e.Resume("pausable", 8); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if st := e.StateAt("pausable", 10); st == nil || !almostEqual(*st.Opacity, 0.5) {
		t.Fatalf("after resume, 2 more elapsed ticks expected, got %+v", st)
	}
}

func TestStopEndsAnimation(t *testing.T) {
	e := NewEngine()
	def := mustBuild(t, NewDefBuilder("stoppable", KindFade).
		Duration(10).
		StartEnd(Values{Opacity: f64p(0)}, Values{Opacity: f64p(1)}))
	if _, err := e.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := e.Start("stoppable", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := e.Stop("stoppable", 5); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if st := e.StateAt("stoppable", 5); st != nil {
		t.Fatalf("expected nil after stop, got %+v", st)
	}
	if st := e.StateAt("stoppable", 3); st == nil {
		t.Fatalf("expected active before stop tick, got nil")
	}
}

func TestFrameStateFoldsAllAnimations(t *testing.T) {
	e := NewEngine()
	a := mustBuild(t, NewDefBuilder("a", KindFade).Duration(10).StartEnd(Values{Opacity: f64p(0)}, Values{Opacity: f64p(1)}))
	b := mustBuild(t, NewDefBuilder("b", KindScale).Duration(10).StartEnd(Values{Scale: f64p(1)}, Values{Scale: f64p(2)}))
	if _, err := e.Register(a); err != nil {
		t.Fatalf("Register a: %v", err)
	}
	if _, err := e.Register(b); err != nil {
		t.Fatalf("Register b: %v", err)
	}
	if err := e.Start("a", 0); err != nil {
		t.Fatal(err)
	}
	if err := e.Start("b", 0); err != nil {
		t.Fatal(err)
	}

	fs := e.FrameState(5)
	if len(fs.States) != 2 {
		t.Fatalf("expected 2 states, got %d", len(fs.States))
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	e := NewEngine()
	def := mustBuild(t, NewDefBuilder("a", KindFade).Duration(10).StartEnd(Values{Opacity: f64p(0)}, Values{Opacity: f64p(1)}))
	if _, err := e.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := e.Start("a", 0); err != nil {
		t.Fatal(err)
	}
	if err := e.Pause("a", 3); err != nil {
		t.Fatal(err)
	}
	if err := e.Resume("a", 6); err != nil {
		t.Fatal(err)
	}

	data := e.Snapshot()

	restored := NewEngine()
	def2 := mustBuild(t, NewDefBuilder("a", KindFade).Duration(10).StartEnd(Values{Opacity: f64p(0)}, Values{Opacity: f64p(1)}))
	if _, err := restored.Register(def2); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := restored.Restore(data); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	want := e.StateAt("a", 20)
	got := restored.StateAt("a", 20)
	if want == nil || got == nil {
		t.Fatalf("expected non-nil states, want=%+v got=%+v", want, got)
	}
	if !almostEqual(*want.Opacity, *got.Opacity) {
		t.Fatalf("snapshot round trip mismatch: want %v got %v", *want.Opacity, *got.Opacity)
	}
}

func TestHashExcludesTickAndMatchesAcrossRuns(t *testing.T) {
	build := func() *Engine {
		e := NewEngine()
		def := mustBuild(t, NewDefBuilder("a", KindFade).Duration(10).StartEnd(Values{Opacity: f64p(0)}, Values{Opacity: f64p(1)}))
		if _, err := e.Register(def); err != nil {
			t.Fatalf("Register: %v", err)
		}
		if err := e.Start("a", 0); err != nil {
			t.Fatal(err)
		}
		return e
	}

	e1 := build()
	e2 := build()

	h1 := Hash(e1.FrameState(5))
	h2 := Hash(e2.FrameState(5))
	if h1 != h2 {
		t.Fatalf("expected identical determinism hash across independent engines at the same logical tick, got %x vs %x", h1, h2)
	}
}

func TestDoubleStartIsIdempotent(t *testing.T) {
	e := NewEngine()
	def := mustBuild(t, NewDefBuilder("a", KindFade).Duration(10).StartEnd(Values{Opacity: f64p(0)}, Values{Opacity: f64p(1)}))
	if _, err := e.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := e.Start("a", 0); err != nil {
		t.Fatal(err)
	}
	if err := e.Start("a", 100); err != nil {
		t.Fatal(err)
	}
	if st := e.StateAt("a", 5); st == nil || !almostEqual(*st.Opacity, 0.5) {
		t.Fatalf("second Start call must not reset origin, got %+v", st)
	}
}

func TestRegisterRejectsDuplicateID(t *testing.T) {
	e := NewEngine()
	def := mustBuild(t, NewDefBuilder("dup", KindFade).Duration(10).StartEnd(Values{Opacity: f64p(0)}, Values{Opacity: f64p(1)}))
	if _, err := e.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	def2 := mustBuild(t, NewDefBuilder("dup", KindFade).Duration(10).StartEnd(Values{Opacity: f64p(0)}, Values{Opacity: f64p(1)}))
	if _, err := e.Register(def2); err == nil {
		t.Fatal("expected error registering duplicate id")
	}
}

func TestCustomInterpolatorIsPure(t *testing.T) {
	e := NewEngine()
	def := mustBuild(t, NewDefBuilder("custom-1", KindCustom).
		Duration(10).
		Custom(func(p float64, start, end Values) Values {
			return Values{Progress: f64p(p * p)}
		}))
	if _, err := e.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := e.Start("custom-1", 0); err != nil {
		t.Fatal(err)
	}
	st := e.StateAt("custom-1", 5)
	if st == nil || !almostEqual(*st.Progress, 0.25) {
		t.Fatalf("expected p^2 at phase 0.5, got %+v", st)
	}
}
