package parser

import (
	"testing"

	"github.com/kr/pretty"

	"nimbus/internal/lexer"
)

func parse(t *testing.T, src string) []Stmt {
	t.Helper()
	tokens := lexer.NewScanner(src).ScanTokens()
	p := NewParser(tokens, "test")
	stmts := p.Parse()
	if len(p.Errors) != 0 {
		t.Fatalf("parse(%q) produced errors: %v", src, p.Errors)
	}
	return stmts
}

func TestVarDeclaration(t *testing.T) {
	stmts := parse(t, "var x = 1;")
	v, ok := stmts[0].(*VarStmt)
	if !ok || v.Name != "x" || v.IsConst {
		t.Fatalf("got %#v", stmts[0])
	}
}

func TestConstDeclaration(t *testing.T) {
	stmts := parse(t, "const x = 1;")
	v := stmts[0].(*VarStmt)
	if !v.IsConst {
		t.Fatal("expected IsConst = true")
	}
}

func TestCompoundAssignmentDesugarsToBinary(t *testing.T) {
	stmts := parse(t, "x += 1;")
	es := stmts[0].(*ExpressionStmt)
	assign := es.Expr.(*Assign)
	bin := assign.Value.(*Binary)
	if bin.Operator != "+" {
		t.Fatalf("expected desugared '+' binary, got %q", bin.Operator)
	}
}

func TestForDesugarsToBlockWithWhile(t *testing.T) {
	stmts := parse(t, "for (var i = 0; i < 3; i = i + 1) { print(i); }")
	block := stmts[0].(*BlockStmt)
	if _, ok := block.Stmts[0].(*VarStmt); !ok {
		t.Fatalf("expected init VarStmt first, got %#v", block.Stmts[0])
	}
	while, ok := block.Stmts[1].(*WhileStmt)
	if !ok {
		t.Fatalf("expected WhileStmt second, got %#v", block.Stmts[1])
	}
	body := while.Body.(*BlockStmt)
	if len(body.Stmts) != 2 {
		t.Fatalf("expected body + increment in while body, got %d stmts", len(body.Stmts))
	}
}

func TestForWithoutConditionDefaultsToTrue(t *testing.T) {
	stmts := parse(t, "for (;;) { x; }")
	while := stmts[0].(*WhileStmt)
	lit := while.Cond.(*Literal)
	if lit.Value != true {
		t.Fatalf("expected literal true condition, got %#v", lit.Value)
	}
}

func TestTernaryPrecedenceBelowOr(t *testing.T) {
	stmts := parse(t, "a || b ? c : d;")
	es := stmts[0].(*ExpressionStmt)
	tern := es.Expr.(*Ternary)
	if _, ok := tern.Cond.(*Logical); !ok {
		t.Fatalf("expected logical cond, got %#v", tern.Cond)
	}
}

func TestArrowSingleParamShorthand(t *testing.T) {
	stmts := parse(t, "var f = x => x + 1;")
	v := stmts[0].(*VarStmt)
	arrow := v.Init.(*ArrowExpr)
	if len(arrow.Params) != 1 || arrow.Params[0] != "x" {
		t.Fatalf("got params %v", arrow.Params)
	}
	if arrow.ExprBody == nil {
		t.Fatal("expected expression-bodied arrow")
	}
}

func TestArrowParenParamsWithBlockBody(t *testing.T) {
	stmts := parse(t, "var f = (a, b) => { return a + b; };")
	v := stmts[0].(*VarStmt)
	arrow := v.Init.(*ArrowExpr)
	if len(arrow.Params) != 2 {
		t.Fatalf("got params %v", arrow.Params)
	}
	if arrow.Body == nil {
		t.Fatal("expected block-bodied arrow")
	}
}

func TestParenthesizedExpressionIsNotMistakenForArrow(t *testing.T) {
	stmts := parse(t, "var x = (1 + 2) * 3;")
	v := stmts[0].(*VarStmt)
	if _, ok := v.Init.(*Binary); !ok {
		t.Fatalf("got %#v", v.Init)
	}
}

func TestClassWithConstructorAndMethod(t *testing.T) {
	stmts := parse(t, `
		class Point {
			constructor(x, y) { this.x = x; this.y = y; }
			sum() { return this.x + this.y; }
		}
	`)
	class := stmts[0].(*ClassStmt)
	if class.Name != "Point" || len(class.Methods) != 2 {
		t.Fatalf("got %# v", pretty.Formatter(class))
	}
	if class.Methods[0].Name != "constructor" {
		t.Fatalf("expected constructor first, got %q", class.Methods[0].Name)
	}
}

func TestNewExpression(t *testing.T) {
	stmts := parse(t, "var p = new Point(1, 2);")
	v := stmts[0].(*VarStmt)
	n := v.Init.(*New)
	if len(n.Args) != 2 {
		t.Fatalf("got %#v", n)
	}
}

func TestImportDesugaredToStatement(t *testing.T) {
	stmts := parse(t, `import { a, b } from "./mod.nim";`)
	imp := stmts[0].(*ImportStmt)
	if imp.Path != "./mod.nim" || len(imp.Specifiers) != 2 {
		t.Fatalf("got %# v", pretty.Formatter(imp))
	}
}

func TestCallMemberSubscriptChain(t *testing.T) {
	stmts := parse(t, "a.b[0](1);")
	es := stmts[0].(*ExpressionStmt)
	call := es.Expr.(*Call)
	idx := call.Callee.(*Index)
	if _, ok := idx.Object.(*Property); !ok {
		t.Fatalf("got %#v", idx.Object)
	}
}

func TestPostfixIncrementIsDistinctFromPrefix(t *testing.T) {
	stmts := parse(t, "x++; ++x;")
	if _, ok := stmts[0].(*ExpressionStmt).Expr.(*Postfix); !ok {
		t.Fatalf("expected Postfix, got %#v", stmts[0])
	}
	if _, ok := stmts[1].(*ExpressionStmt).Expr.(*Unary); !ok {
		t.Fatalf("expected Unary, got %#v", stmts[1])
	}
}

func TestSyntaxErrorsAreCollectedNotPanicked(t *testing.T) {
	tokens := lexer.NewScanner("var ; var x = 1;").ScanTokens()
	p := NewParser(tokens, "test")
	stmts := p.Parse()
	if len(p.Errors) == 0 {
		t.Fatal("expected at least one collected parse error")
	}
	found := false
	for _, s := range stmts {
		if v, ok := s.(*VarStmt); ok && v.Name == "x" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected parsing to recover and still produce the second declaration")
	}
}
