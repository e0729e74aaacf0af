// Package compiler implements the single-pass AST-to-bytecode compiler
// of spec.md §4.3: one CompilerState frame per function being compiled,
// tracking locals/upvalues for closure capture, emitting directly into
// a bytecode.Chunk with no separate optimization pass.
package compiler

import (
	"nimbus/internal/bytecode"
	"nimbus/internal/errors"
	"nimbus/internal/memory"
	"nimbus/internal/parser"
)

// Compiler holds the nested CompilerState stack (via state.enclosing)
// plus the cross-function bookkeeping spec.md §4.3 assigns to the
// compiler as a whole rather than to any one frame: the set of names
// declared const at global scope, and the heap used to mint the
// compile-time string constants that land in each chunk's pool.
type Compiler struct {
	cur          *state
	heap         *memory.Heap
	file         string
	globalConsts map[string]bool
	lastLine     int
	Errors       []*errors.Error
}

// Compile compiles a parsed program into the implicit top-level
// function named "<script>", per spec.md §4.3.
func Compile(stmts []parser.Stmt, heap *memory.Heap, file string) (*bytecode.Function, []*errors.Error) {
	c := &Compiler{heap: heap, file: file, globalConsts: map[string]bool{}}
	c.cur = newState(nil, KindScript, "<script>")
	c.compileStatements(stmts)
	c.emitImplicitReturn()
	return c.cur.function, c.Errors
}

// compileFunctionBody compiles a nested function/method/arrow body in
// its own CompilerState, returning the finished prototype plus the
// upvalue capture list the enclosing frame must emit after
// MAKE_CLOSURE.
func (c *Compiler) compileFunctionBody(kind FunctionKind, name string, params []string, body []parser.Stmt) (*bytecode.Function, []Upvalue) {
	enclosing := c.cur
	c.cur = newState(enclosing, kind, name)
	c.beginScope()
	c.cur.function.Arity = len(params)
	c.cur.function.IsMethod = kind == KindMethod || kind == KindConstructor
	c.cur.function.IsConstructor = kind == KindConstructor

	for _, p := range params {
		c.addLocal(p, false)
		c.markInitialized()
	}

	c.compileStatements(body)
	c.emitImplicitReturn()

	fn := c.cur.function
	fn.UpvalueCount = len(c.cur.upvalues)
	upvalues := c.cur.upvalues
	c.cur = enclosing
	return fn, upvalues
}

// emitImplicitReturn appends `NIL RETURN` (or, for a constructor,
// `GET_LOCAL 0 RETURN` so the implicit return is the instance) per
// spec.md §4.3; emitting it unconditionally is harmless since an
// earlier explicit RETURN already exits the frame at runtime before
// these bytes are ever reached.
func (c *Compiler) emitImplicitReturn() {
	if c.cur.kind == KindConstructor {
		c.emitOp(bytecode.OpGetLocal)
		c.emitByte(0)
	} else {
		c.emitOp(bytecode.OpNil)
	}
	c.emitOp(bytecode.OpReturn)
}

func (c *Compiler) errorf(line int, format string, args ...interface{}) {
	c.Errors = append(c.Errors, errors.New(errors.Compile, c.file, line, format, args...))
}
