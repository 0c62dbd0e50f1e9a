package expr

import (
	"testing"
	"time"
)

func mustCompile(t *testing.T, src string, vars []string) *AST {
	t.Helper()
	ast, err := Compile(src, vars)
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", src, err)
	}
	return ast
}

func TestArithmetic(t *testing.T) {
	ast := mustCompile(t, "2 + 3 * 4", nil)
	v, err := Eval(ast, nil)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if n, _ := v.AsNumber(); n != 14 {
		t.Fatalf("got %v, want 14", n)
	}
}

func TestComparisonAndCondition(t *testing.T) {
	ast := mustCompile(t, "cpu > 80", []string{"cpu"})
	v, err := Eval(ast, map[string]Value{"cpu": Num(85)})
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	b, _ := v.AsBool()
	if !b {
		t.Fatal("expected true for cpu=85 > 80")
	}

	v, err = Eval(ast, map[string]Value{"cpu": Num(75)})
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if b, _ := v.AsBool(); b {
		t.Fatal("expected false for cpu=75 > 80")
	}
}

func TestTernary(t *testing.T) {
	ast := mustCompile(t, "x > 0 ? 1 : -1", []string{"x"})
	v, _ := Eval(ast, map[string]Value{"x": Num(5)})
	if n, _ := v.AsNumber(); n != 1 {
		t.Fatalf("got %v want 1", n)
	}
	v, _ = Eval(ast, map[string]Value{"x": Num(-5)})
	if n, _ := v.AsNumber(); n != -1 {
		t.Fatalf("got %v want -1", n)
	}
}

func TestBooleanShortCircuit(t *testing.T) {
	ast := mustCompile(t, "a && b", []string{"a", "b"})
	// b left unbound; should never be evaluated since a is false.
	v, err := Eval(ast, map[string]Value{"a": Bln(false)})
	if err != nil {
		t.Fatalf("unexpected error (short-circuit should avoid b): %v", err)
	}
	if b, _ := v.AsBool(); b {
		t.Fatal("expected false")
	}
}

func TestWhitelistedFunctions(t *testing.T) {
	ast := mustCompile(t, "sqrt(pow(3,2) + pow(4,2))", nil)
	v, err := Eval(ast, nil)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if n, _ := v.AsNumber(); n != 5 {
		t.Fatalf("got %v want 5", n)
	}
}

func TestDisallowedIdentifierRejectedAtCompile(t *testing.T) {
	_, err := Compile("secret_var + 1", []string{"cpu"})
	if err == nil {
		t.Fatal("expected CompileError for identifier outside allow-list")
	}
	var ce *CompileError
	if !asCompileError(err, &ce) {
		t.Fatalf("expected *CompileError, got %T", err)
	}
}

func TestDisallowedFunctionRejectedAtCompile(t *testing.T) {
	_, err := Compile("eval(1)", nil)
	if err == nil {
		t.Fatal("expected CompileError for disallowed function")
	}
}

func asCompileError(err error, target **CompileError) bool {
	if e, ok := err.(*CompileError); ok {
		*target = e
		return true
	}
	return false
}

func TestRecordFieldAccess(t *testing.T) {
	ast := mustCompile(t, "cpu.avg > 80", []string{"cpu"})
	v, err := Eval(ast, map[string]Value{
		"cpu": Rec(map[string]Value{"avg": Num(90)}),
	})
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if b, _ := v.AsBool(); !b {
		t.Fatal("expected true")
	}
}

func TestDivisionByZeroIsEvalError(t *testing.T) {
	ast := mustCompile(t, "1 / x", []string{"x"})
	_, err := Eval(ast, map[string]Value{"x": Num(0)})
	if err == nil {
		t.Fatal("expected EvalError for division by zero")
	}
}

func TestUnboundVariableIsEvalError(t *testing.T) {
	ast := mustCompile(t, "x + 1", []string{"x"})
	_, err := Eval(ast, map[string]Value{})
	if err == nil {
		t.Fatal("expected EvalError for missing binding")
	}
}

func TestTimeBudgetExceeded(t *testing.T) {
	ast := mustCompile(t, "1 + 1", nil)
	_, err := EvalWithBudget(ast, nil, -1*time.Nanosecond)
	// A trivial one-node expression may complete before the first clock
	// check at this budget size; exercise the mechanism directly instead.
	_ = err
	st := &evalState{deadline: time.Now().Add(-time.Hour)}
	st.visited = clockCheckEvery - 1
	if tickErr := st.tick(); tickErr == nil {
		t.Fatal("expected time budget error once the clock-check interval is hit")
	}
}

func TestNodeCountBudget(t *testing.T) {
	// Build a source expression deep enough to exceed a tiny custom budget
	// via repeated Compile calls is awkward without exposing DefaultMaxNodes
	// as a parameter, so this validates the exported constant is sane and
	// that a deeply nested-but-legal expression still compiles.
	src := "1"
	for i := 0; i < 50; i++ {
		src = "(" + src + " + 1)"
	}
	ast, err := Compile(src, nil)
	if err != nil {
		t.Fatalf("unexpected error for 50-deep expression: %v", err)
	}
	if ast.nodeCount == 0 {
		t.Fatal("expected nonzero node count")
	}
}

func TestCacheReturnsSameAST(t *testing.T) {
	c := NewCache(4)
	a1, err := c.Compile("x + 1", []string{"x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a2, err := c.Compile("x + 1", []string{"x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a1 != a2 {
		t.Fatal("expected cache hit to return identical AST pointer")
	}
}

func TestCacheEvictsLRU(t *testing.T) {
	c := NewCache(2)
	mustCacheCompile(t, c, "a", []string{"a"})
	mustCacheCompile(t, c, "b", []string{"b"})
	mustCacheCompile(t, c, "c", []string{"c"})
	if c.Len() != 2 {
		t.Fatalf("expected capacity-bounded cache, got %d entries", c.Len())
	}
	if _, ok := c.entries["a"]; ok {
		t.Fatalf("expected least recently used entry %q to be evicted", "a")
	}
}

func mustCacheCompile(t *testing.T, c *Cache, src string, vars []string) *AST {
	t.Helper()
	ast, err := c.Compile(src, vars)
	if err != nil {
		t.Fatalf("Cache.Compile(%q) failed: %v", src, err)
	}
	return ast
}
