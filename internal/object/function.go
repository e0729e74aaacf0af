package object

import "nimbus/internal/bytecode"

// JitEntry is the contract a method-granular JIT compiles a Function
// down to: packed numeric arguments in, one numeric result out. See
// internal/jit for the compiler that produces these.
type JitEntry func(args []float64) float64

// Function holds a compiled function's bytecode and its JIT entry point
// once (if ever) the JIT decides the function is hot enough to compile.
type Function struct {
	Header
	Name         string
	Arity        int
	UpvalueCount int
	Chunk        *bytecode.Chunk
	Jit          JitEntry // nil until the VM lazily compiles it
	JitAttempted bool

	// Constants holds the heap objects (string literals) drawn out of
	// Chunk.Constants at load time, so the GC can mark them directly
	// from the Function without walking the untyped constant pool.
	Constants []Value
}

func NewFunction(name string, arity int, chunk *bytecode.Chunk, upvalueCount int) *Function {
	return &Function{
		Header:       newHeader(TFunction),
		Name:         name,
		Arity:        arity,
		Chunk:        chunk,
		UpvalueCount: upvalueCount,
	}
}
