package databind

import (
	"testing"

	"github.com/go-drift/tinydisplay/pkg/anim"
	"github.com/go-drift/tinydisplay/pkg/expr"
)

func f64p(v float64) *float64 { return &v }

func mustBuild(t *testing.T, b *anim.DefBuilder) *anim.AnimationDef {
	t.Helper()
	def, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return def
}

func TestFastDataBindingCopiesSampleIntoCustom(t *testing.T) {
	anims := anim.NewEngine()
	def := mustBuild(t, anim.NewDefBuilder("a1", anim.KindFade).
		Duration(10).Easing("linear").
		StartEnd(anim.Values{Opacity: f64p(0)}, anim.Values{Opacity: f64p(1)}))
	if _, err := anims.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := anims.Start("a1", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}

	cache := expr.NewCache(expr.DefaultCacheSize)
	b, err := NewDataBinding(cache, "cpu", "a1", "cpu_level", "", true)
	if err != nil {
		t.Fatalf("NewDataBinding: %v", err)
	}
	reg := NewRegistry(nil)
	reg.Add(b)

	fs := anims.FrameState(0)
	reg.Apply(fs, map[string]expr.Value{"cpu": expr.Num(42)})

	st := fs.States["a1"]
	if st.Values.Custom["cpu_level"] != 42 {
		t.Fatalf("cpu_level = %v, want 42", st.Values.Custom["cpu_level"])
	}
}

func TestExpressionBindingDoesNotMutateOriginalFrameState(t *testing.T) {
	anims := anim.NewEngine()
	def := mustBuild(t, anim.NewDefBuilder("a1", anim.KindFade).
		Duration(10).Easing("linear").
		StartEnd(anim.Values{Opacity: f64p(0)}, anim.Values{Opacity: f64p(1)}))
	if _, err := anims.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := anims.Start("a1", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}

	cache := expr.NewCache(expr.DefaultCacheSize)
	b, err := NewExpressionBinding(cache, "a1", "scaled", "cpu * 2", []string{"cpu"})
	if err != nil {
		t.Fatalf("NewExpressionBinding: %v", err)
	}
	reg := NewRegistry(nil)
	reg.Add(b)

	original := anims.FrameState(0)
	originalState := original.States["a1"]

	reg.Apply(original, map[string]expr.Value{"cpu": expr.Num(10)})

	if originalState.Values.Custom != nil {
		t.Fatalf("pre-Apply AnimationState pointer should be untouched, got Custom=%v", originalState.Values.Custom)
	}
	if v := original.States["a1"].Values.Custom["scaled"]; v != 20 {
		t.Fatalf("scaled = %v, want 20", v)
	}
}

func TestBindingSkippedWhenSourceUnobserved(t *testing.T) {
	anims := anim.NewEngine()
	def := mustBuild(t, anim.NewDefBuilder("a1", anim.KindFade).
		Duration(10).Easing("linear").
		StartEnd(anim.Values{Opacity: f64p(0)}, anim.Values{Opacity: f64p(1)}))
	if _, err := anims.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := anims.Start("a1", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}

	cache := expr.NewCache(expr.DefaultCacheSize)
	b, err := NewDataBinding(cache, "missing", "a1", "p", "", true)
	if err != nil {
		t.Fatalf("NewDataBinding: %v", err)
	}
	reg := NewRegistry(nil)
	reg.Add(b)

	fs := anims.FrameState(0)
	reg.Apply(fs, map[string]expr.Value{})

	if _, ok := fs.States["a1"].Values.Custom["p"]; ok {
		t.Fatalf("binding should not fire without an observed sample")
	}
}
