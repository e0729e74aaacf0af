package jit

import (
	"testing"

	"nimbus/internal/bytecode"
	"nimbus/internal/compiler"
	"nimbus/internal/lexer"
	"nimbus/internal/memory"
	"nimbus/internal/object"
	"nimbus/internal/parser"
)

// compileFn parses and compiles src and returns the object.Function the
// VM would mint for the top-level function named name, so Compile sees
// the same Chunk the VM would dispatch.
func compileFn(t *testing.T, src, name string) *object.Function {
	t.Helper()
	sc := lexer.NewScanner(src)
	tokens := sc.ScanTokens()
	p := parser.NewParser(tokens, "test.nim")
	stmts := p.Parse()
	if len(p.Errors) != 0 {
		t.Fatalf("parse errors: %v", p.Errors)
	}
	heap := memory.NewHeap()
	script, errs := compiler.Compile(stmts, heap, "test.nim")
	if len(errs) != 0 {
		t.Fatalf("compile errors: %v", errs)
	}
	for _, c := range script.Chunk.Constants {
		if proto, ok := c.(*bytecode.Function); ok && proto.Name == name {
			return heap.NewFunction(proto)
		}
	}
	t.Fatalf("no function named %q found in compiled script", name)
	return nil
}

func TestCompileSimpleAdd(t *testing.T) {
	fn := compileFn(t, `function add(a, b) { return a + b; }`, "add")
	entry := Compile(fn)
	if entry == nil {
		t.Fatal("expected JIT compilation to succeed for a + b")
	}
	if got := entry([]float64{2, 3}); got != 5 {
		t.Fatalf("add(2, 3) = %v, want 5", got)
	}
}

func TestCompileArithmeticMix(t *testing.T) {
	fn := compileFn(t, `function f(a, b) { return a * b - a; }`, "f")
	entry := Compile(fn)
	if entry == nil {
		t.Fatal("expected JIT compilation to succeed")
	}
	if got := entry([]float64{3, 4}); got != 9 {
		t.Fatalf("f(3, 4) = %v, want 9", got)
	}
}

func TestCompileWithLocalAssignment(t *testing.T) {
	fn := compileFn(t, `
		function f(a) {
			var b = a + 1;
			return b * 2;
		}
	`, "f")
	entry := Compile(fn)
	if entry == nil {
		t.Fatal("expected JIT compilation to succeed")
	}
	if got := entry([]float64{5}); got != 12 {
		t.Fatalf("f(5) = %v, want 12", got)
	}
}

func TestCompileRefusesControlFlow(t *testing.T) {
	fn := compileFn(t, `
		function f(a) {
			if (a < 0) return 0;
			return a;
		}
	`, "f")
	if entry := Compile(fn); entry != nil {
		t.Fatal("expected JIT compilation to refuse a function with a branch")
	}
}

func TestCompileRefusesStringConstant(t *testing.T) {
	fn := compileFn(t, `
		function f(a) {
			var s = "x";
			return a;
		}
	`, "f")
	if entry := Compile(fn); entry != nil {
		t.Fatal("expected JIT compilation to refuse a non-numeric constant")
	}
}

func TestCompileRefusesCall(t *testing.T) {
	fn := compileFn(t, `
		function helper(x) { return x; }
		function f(a) { return helper(a); }
	`, "f")
	if entry := Compile(fn); entry != nil {
		t.Fatal("expected JIT compilation to refuse a function containing a call")
	}
}
