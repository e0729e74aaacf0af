package parser

// Stmt is implemented by every statement-AST node.
type Stmt interface {
	Accept(v StmtVisitor) interface{}
}

type ExpressionStmt struct {
	Expr Expr
}

func (s *ExpressionStmt) Accept(v StmtVisitor) interface{} { return v.VisitExpressionStmt(s) }

// VarStmt is a `var`/`let`/`const` declaration. IsConst marks the
// const form, compiled to DEFINE_GLOBAL_CONST / a const local.
type VarStmt struct {
	Name    string
	Init    Expr
	IsConst bool
	Line    int
}

func (s *VarStmt) Accept(v StmtVisitor) interface{} { return v.VisitVarStmt(s) }

type BlockStmt struct {
	Stmts []Stmt
}

func (s *BlockStmt) Accept(v StmtVisitor) interface{} { return v.VisitBlockStmt(s) }

type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt
}

func (s *IfStmt) Accept(v StmtVisitor) interface{} { return v.VisitIfStmt(s) }

type WhileStmt struct {
	Cond Expr
	Body Stmt
}

func (s *WhileStmt) Accept(v StmtVisitor) interface{} { return v.VisitWhileStmt(s) }

type ReturnStmt struct {
	Value Expr
	Line  int
}

func (s *ReturnStmt) Accept(v StmtVisitor) interface{} { return v.VisitReturnStmt(s) }

// FunctionStmt is a function declaration, hoisted when it sits at the
// script's top level (SPEC_FULL.md §4.3's function-hoisting note).
type FunctionStmt struct {
	Name   string
	Params []string
	Body   []Stmt
	Line   int
}

func (s *FunctionStmt) Accept(v StmtVisitor) interface{} { return v.VisitFunctionStmt(s) }

// ClassStmt is a class declaration: a flat list of methods, one of
// which may be named "constructor".
type ClassStmt struct {
	Name    string
	Methods []*FunctionStmt
	Line    int
}

func (s *ClassStmt) Accept(v StmtVisitor) interface{} { return v.VisitClassStmt(s) }

// ImportStmt is `import { a, b } from "path";`, desugared by the
// compiler (not the parser) to a require() call plus property-gets.
type ImportStmt struct {
	Specifiers []string
	Path       string
	Line       int
}

func (s *ImportStmt) Accept(v StmtVisitor) interface{} { return v.VisitImportStmt(s) }

// ExportStmt is `export { a, b };`.
type ExportStmt struct {
	Names []string
	Line  int
}

func (s *ExportStmt) Accept(v StmtVisitor) interface{} { return v.VisitExportStmt(s) }

type StmtVisitor interface {
	VisitExpressionStmt(s *ExpressionStmt) interface{}
	VisitVarStmt(s *VarStmt) interface{}
	VisitBlockStmt(s *BlockStmt) interface{}
	VisitIfStmt(s *IfStmt) interface{}
	VisitWhileStmt(s *WhileStmt) interface{}
	VisitReturnStmt(s *ReturnStmt) interface{}
	VisitFunctionStmt(s *FunctionStmt) interface{}
	VisitClassStmt(s *ClassStmt) interface{}
	VisitImportStmt(s *ImportStmt) interface{}
	VisitExportStmt(s *ExportStmt) interface{}
}
