package compiler

import "nimbus/internal/bytecode"

// FunctionKind distinguishes the receiver-slot and implicit-return
// conventions a CompilerState frame uses, per spec.md §4.3's "Functions"
// rule (slot 0 is "this" for methods, the implicit return is the
// instance for constructors).
type FunctionKind int

const (
	KindScript FunctionKind = iota
	KindFunction
	KindMethod
	KindConstructor
)

// Local tracks one compile-time stack slot: its name (for resolution),
// the scope depth it was declared at, whether a nested function closed
// over it (forcing CLOSE_UPVALUE on scope exit) and whether it's const.
type Local struct {
	Name       string
	Depth      int
	IsCaptured bool
	IsConst    bool
}

// Upvalue is the compile-time twin of bytecode.Upvalue: which slot of
// the immediately enclosing frame (or which of its own upvalues) this
// frame's closure must capture.
type Upvalue struct {
	Index   byte
	IsLocal bool
	IsConst bool
}

// state is one CompilerState frame — one per function (or the
// top-level script) currently being compiled. States nest via
// enclosing, mirroring the call stack of nested function literals.
type state struct {
	enclosing *state
	kind      FunctionKind
	function  *bytecode.Function
	locals    []Local
	upvalues  []Upvalue
	scopeDepth int
}

func newState(enclosing *state, kind FunctionKind, name string) *state {
	s := &state{
		enclosing: enclosing,
		kind:      kind,
		function:  &bytecode.Function{Name: name, Chunk: bytecode.NewChunk()},
	}
	// Slot 0 is the reserved receiver slot: "this" for methods and
	// constructors, unnamed (unreferenceable) otherwise.
	receiver := ""
	if kind == KindMethod || kind == KindConstructor {
		receiver = "this"
	}
	s.locals = append(s.locals, Local{Name: receiver, Depth: 0})
	return s
}

func (s *state) chunk() *bytecode.Chunk { return s.function.Chunk }
