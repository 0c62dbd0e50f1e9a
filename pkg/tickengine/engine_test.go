package tickengine

import (
	"path/filepath"
	"testing"

	"github.com/go-drift/tinydisplay/pkg/anim"
	"github.com/go-drift/tinydisplay/pkg/marquee"
	"github.com/go-drift/tinydisplay/pkg/tdconfig"
)

func f64p(v float64) *float64 { return &v }

func newTestEngine(t *testing.T, renderer func(*anim.FrameState)) *Engine {
	t.Helper()
	cfg := tdconfig.Default()
	cfg.PersistencePath = filepath.Join(t.TempDir(), "engine.db")
	cfg.Workers = 0 // exercise the synchronous-compute fallback path

	e, err := New(cfg, renderer)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := e.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return e
}

func mustBuild(t *testing.T, b *anim.DefBuilder) *anim.AnimationDef {
	t.Helper()
	def, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return def
}

func TestEngineRunsFadeAnimationAcrossTicks(t *testing.T) {
	e := newTestEngine(t, nil)

	def := mustBuild(t, anim.NewDefBuilder("fade", anim.KindFade).
		Duration(4).Easing("linear").
		StartEnd(anim.Values{Opacity: f64p(0)}, anim.Values{Opacity: f64p(1)}))
	if _, err := e.Anims().Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := e.Anims().Start("fade", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 4; i++ {
		e.OnTickPulse()
	}

	st := e.Anims().StateAt("fade", 2)
	if st == nil || *st.Opacity != 0.5 {
		t.Fatalf("StateAt(2) = %+v, want Opacity 0.5", st)
	}
}

func TestPushSampleAndFastBindApplyToCustomValue(t *testing.T) {
	var captured *anim.FrameState
	e := newTestEngine(t, func(fs *anim.FrameState) { captured = fs })

	def := mustBuild(t, anim.NewDefBuilder("fade", anim.KindFade).
		Duration(10).Easing("linear").
		StartEnd(anim.Values{Opacity: f64p(0)}, anim.Values{Opacity: f64p(1)}))
	if _, err := e.Anims().Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := e.Anims().Start("fade", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := e.BindData("cpu", "fade", "cpu_level", "", true); err != nil {
		t.Fatalf("BindData: %v", err)
	}

	if dropped, err := e.PushSample("metrics", "cpu", 73.0, 0); err != nil || dropped {
		t.Fatalf("PushSample: dropped=%v err=%v", dropped, err)
	}

	e.OnTickPulse()

	if captured == nil {
		t.Fatalf("renderer was never called")
	}
	if got := captured.States["fade"].Values.Custom["cpu_level"]; got != 73.0 {
		t.Fatalf("cpu_level = %v, want 73", got)
	}
}

func TestMarqueeResolutionAndPositionLookup(t *testing.T) {
	e := newTestEngine(t, nil)

	prog, err := marquee.NewProgramBuilder().Move(marquee.Right, 10, 1).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	e.RegisterMarqueeWidget("ticker", 0, prog)
	e.ResolveMarquee()

	x, _, ok := e.MarqueePosition("ticker", 0)
	if !ok {
		t.Fatalf("expected a resolved timeline for ticker")
	}
	if x != 0 {
		t.Fatalf("x at t=0 = %d, want 0", x)
	}

	x10, _, ok := e.MarqueePosition("ticker", 10)
	if !ok || x10 != 10 {
		t.Fatalf("x at t=10 = %d (ok=%v), want 10", x10, ok)
	}
}

func TestBindExpressionRejectsUnknownVariable(t *testing.T) {
	e := newTestEngine(t, nil)
	if err := e.BindExpression("fade", "scaled", "undeclared * 2", []string{"cpu"}); err == nil {
		t.Fatalf("expected a compile error referencing an unbound variable")
	}
}
