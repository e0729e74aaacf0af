package compiler

import (
	"testing"

	"nimbus/internal/bytecode"
	"nimbus/internal/lexer"
	"nimbus/internal/memory"
	"nimbus/internal/object"
	"nimbus/internal/parser"
)

func compileSource(t *testing.T, src string) *bytecode.Function {
	t.Helper()
	sc := lexer.NewScanner(src)
	tokens := sc.ScanTokens()
	p := parser.NewParser(tokens, "test.nim")
	stmts := p.Parse()
	if len(p.Errors) != 0 {
		t.Fatalf("parse errors: %v", p.Errors)
	}
	fn, errs := Compile(stmts, memory.NewHeap(), "test.nim")
	if len(errs) != 0 {
		t.Fatalf("compile errors: %v", errs)
	}
	return fn
}

func opsOf(fn *bytecode.Function) []bytecode.OpCode {
	var ops []bytecode.OpCode
	code := fn.Chunk.Code
	for i := 0; i < len(code); {
		op := bytecode.OpCode(code[i])
		ops = append(ops, op)
		i += 1 + operandWidth(op)
	}
	return ops
}

// operandWidth mirrors the disassembler's per-opcode operand widths,
// just enough to walk the instruction stream without decoding operands.
func operandWidth(op bytecode.OpCode) int {
	switch op {
	case bytecode.OpConstant, bytecode.OpJump, bytecode.OpJumpIfFalse,
		bytecode.OpJumpIfTrue, bytecode.OpLoop, bytecode.OpGetGlobal,
		bytecode.OpSetGlobal, bytecode.OpDefineGlobal, bytecode.OpDefineGlobalConst,
		bytecode.OpClass, bytecode.OpMethod, bytecode.OpGetProperty,
		bytecode.OpSetProperty, bytecode.OpMakeClosure:
		return 2
	case bytecode.OpGetLocal, bytecode.OpSetLocal, bytecode.OpGetUpvalue,
		bytecode.OpSetUpvalue, bytecode.OpCall, bytecode.OpNew,
		bytecode.OpBuildList, bytecode.OpBuildObject:
		return 1
	default:
		return 0
	}
}

func TestVarStmtGlobalEmitsDefineGlobal(t *testing.T) {
	fn := compileSource(t, `var x = 1;`)
	ops := opsOf(fn)
	if ops[0] != bytecode.OpConstant || ops[1] != bytecode.OpDefineGlobal {
		t.Fatalf("got %v", ops)
	}
}

func TestConstVarEmitsDefineGlobalConst(t *testing.T) {
	fn := compileSource(t, `const x = 1;`)
	found := false
	for _, op := range opsOf(fn) {
		if op == bytecode.OpDefineGlobalConst {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected DEFINE_GLOBAL_CONST in %v", opsOf(fn))
	}
}

func TestAssignToConstIsCompileError(t *testing.T) {
	sc := lexer.NewScanner(`const x = 1; x = 2;`)
	p := parser.NewParser(sc.ScanTokens(), "t")
	stmts := p.Parse()
	_, errs := Compile(stmts, memory.NewHeap(), "t")
	if len(errs) == 0 {
		t.Fatalf("expected a compile error assigning to const")
	}
}

func TestLocalDeclarationUsesGetSetLocalNotGlobal(t *testing.T) {
	fn := compileSource(t, `{ var x = 1; x = 2; }`)
	for _, op := range opsOf(fn) {
		if op == bytecode.OpDefineGlobal || op == bytecode.OpGetGlobal || op == bytecode.OpSetGlobal {
			t.Fatalf("local var leaked a global opcode: %v", opsOf(fn))
		}
	}
}

func TestForLoopDesugarsToWhile(t *testing.T) {
	fn := compileSource(t, `for (var i = 0; i < 3; i++) { print(i); }`)
	ops := opsOf(fn)
	hasLoop := false
	for _, op := range ops {
		if op == bytecode.OpLoop {
			hasLoop = true
		}
	}
	if !hasLoop {
		t.Fatalf("expected a LOOP opcode from desugared for-loop, got %v", ops)
	}
}

func TestClosureCapturesEnclosingLocalAsUpvalue(t *testing.T) {
	fn := compileSource(t, `
		function outer() {
			var x = 1;
			function inner() { return x; }
			return inner;
		}
	`)
	// outer's constant pool holds inner's *bytecode.Function prototype.
	var innerProto *bytecode.Function
	for _, k := range fn.Chunk.Constants {
		if nested, ok := k.(*bytecode.Function); ok && nested.Name == "outer" {
			for _, ik := range nested.Chunk.Constants {
				if inner, ok := ik.(*bytecode.Function); ok && inner.Name == "inner" {
					innerProto = inner
				}
			}
		}
	}
	if innerProto == nil {
		t.Fatalf("could not find inner's compiled prototype")
	}
	if innerProto.UpvalueCount != 1 {
		t.Fatalf("expected inner to capture exactly one upvalue, got %d", innerProto.UpvalueCount)
	}
}

func TestHoistedFunctionCallableBeforeItsDeclaration(t *testing.T) {
	fn := compileSource(t, `
		greet();
		function greet() { return 1; }
	`)
	ops := opsOf(fn)
	// DEFINE_GLOBAL for greet (from the hoisting pre-pass) must precede
	// the CALL emitted for the textually-earlier greet() expression.
	defineIdx, callIdx := -1, -1
	for i, op := range ops {
		if op == bytecode.OpDefineGlobal && defineIdx == -1 {
			defineIdx = i
		}
		if op == bytecode.OpCall {
			callIdx = i
		}
	}
	if defineIdx == -1 || callIdx == -1 || defineIdx > callIdx {
		t.Fatalf("expected hoisted DEFINE_GLOBAL before CALL, got %v", ops)
	}
}

func TestClassEmitsClassAndMethodOpcodes(t *testing.T) {
	fn := compileSource(t, `
		class Point {
			constructor(x) { this.x = x; }
			getX() { return this.x; }
		}
	`)
	ops := opsOf(fn)
	if ops[0] != bytecode.OpClass {
		t.Fatalf("expected CLASS first, got %v", ops)
	}
	methodCount := 0
	for _, op := range ops {
		if op == bytecode.OpMethod {
			methodCount++
		}
	}
	if methodCount != 2 {
		t.Fatalf("expected 2 METHOD opcodes (constructor + getX), got %d in %v", methodCount, ops)
	}
}

func TestConstructorImplicitReturnYieldsInstanceSlot(t *testing.T) {
	fn := compileSource(t, `
		class Point {
			constructor() {}
		}
	`)
	for _, k := range fn.Chunk.Constants {
		if proto, ok := k.(*bytecode.Function); ok && proto.IsConstructor {
			code := proto.Chunk.Code
			n := len(code)
			if n < 3 || bytecode.OpCode(code[n-3]) != bytecode.OpGetLocal || code[n-2] != 0 || bytecode.OpCode(code[n-1]) != bytecode.OpReturn {
				t.Fatalf("expected trailing GET_LOCAL 0 RETURN, got tail bytes %v", code[max(0, n-3):])
			}
			return
		}
	}
	t.Fatalf("constructor prototype not found")
}

func TestNotEqualDesugarsToEqualThenNot(t *testing.T) {
	fn := compileSource(t, `var x = 1 != 2;`)
	ops := opsOf(fn)
	foundEqualThenNot := false
	for i := 0; i+1 < len(ops); i++ {
		if ops[i] == bytecode.OpEqual && ops[i+1] == bytecode.OpNot {
			foundEqualThenNot = true
		}
	}
	if !foundEqualThenNot {
		t.Fatalf("expected EQUAL followed by NOT for !=, got %v", ops)
	}
}

func TestStringLiteralIsPooledAsHeapString(t *testing.T) {
	fn := compileSource(t, `var s = "hi";`)
	found := false
	for _, k := range fn.Chunk.Constants {
		if s, ok := k.(*object.String); ok && s.Value == "hi" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a *object.String constant, got %v", fn.Chunk.Constants)
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
