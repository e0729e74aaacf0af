// Package vm implements the stack-based bytecode interpreter of
// spec.md §4.4: one CallFrame per active closure invocation, a shared
// operand stack, a global table, and the open-upvalue list that lets
// nested closures share mutable locals until the owning frame returns.
package vm

import (
	"fmt"

	"nimbus/internal/bytecode"
	"nimbus/internal/errors"
	"nimbus/internal/eventloop"
	"nimbus/internal/memory"
	"nimbus/internal/object"
)

// CallFrame is one activation record: the closure being run, its
// instruction pointer into that closure's chunk, and the stack index
// its local slots (including the receiver slot 0) begin at. Grounded on
// the teacher's internal/vm.CallFrame{ip, slotBase, chunk}, generalised
// to carry a closure instead of a bare chunk so GET_UPVALUE has
// somewhere to read from.
type CallFrame struct {
	closure *object.Closure
	ip      int
	slots   int
}

// VM owns the whole interpreter's mutable runtime state: the operand
// stack, the call-frame stack, the global table, and the heap that
// mints every object allocated while running. One VM corresponds to one
// top-level script or REPL session; internal/module gives each required
// file its own Compile pass but shares the VM's heap and globals.
// stackCapacity bounds the operand stack's backing array, preallocated
// up front and never reallocated: open upvalues hold raw pointers into
// it (object.Upvalue.Location), and those pointers must survive every
// later push for as long as the upvalue stays open.
const stackCapacity = 1 << 16

// maxFrames bounds recursion depth; exceeding it is a script-level
// runtime error ("too much recursion"), not a Go panic.
const maxFrames = 1024

type VM struct {
	stack  []object.Value
	frames []CallFrame

	globals map[string]object.Value

	// openUpvalues maps an absolute stack slot to the Upvalue
	// currently borrowing it, so MAKE_CLOSURE can reuse one already
	// opened by an earlier closure over the same local, and
	// CLOSE_UPVALUE/RETURN can find every upvalue that must close
	// before its slot goes out of scope.
	openUpvalues map[int]*object.Upvalue

	heap *memory.Heap

	// functions memoizes the object.Function minted for a given
	// compile-time prototype, so every closure created from the same
	// source function shares one Function (and therefore one JIT
	// cache and one Constants slice) rather than re-extracting it on
	// every MAKE_CLOSURE.
	functions map[*bytecode.Function]*object.Function

	// objectLiteralClass backs BUILD_OBJECT's synthetic anonymous
	// class, minted once and reused for every object literal.
	objectLiteralClass *object.Class

	file string

	jitEnabled bool
	jitCompile func(*object.Function) object.JitEntry

	// loop is the event queue spec.md §5 calls out as part of the VM's
	// global state ("the VM owns all global state (heap, stacks, tables,
	// event queue)"), not a free-floating singleton.
	loop *eventloop.Loop

	// listMethods and stringMethods back GET_PROPERTY dispatch onto a
	// List/String receiver (property.go). Built once per VM instead of
	// at package scope so each entry can mint its *object.String
	// results through this VM's own heap.
	listMethods   map[string]object.NativeFn
	stringMethods map[string]object.NativeFn
}

// NewVM creates a VM over heap, wiring the heap's GC root provider to
// this VM so a collection triggered mid-run can see every live value.
func NewVM(heap *memory.Heap, file string) *VM {
	vm := &VM{
		stack:        make([]object.Value, 0, stackCapacity),
		frames:       make([]CallFrame, 0, maxFrames),
		globals:      make(map[string]object.Value),
		openUpvalues: make(map[int]*object.Upvalue),
		heap:         heap,
		functions:    make(map[*bytecode.Function]*object.Function),
		file:         file,
		loop:         eventloop.NewLoop(),
	}
	vm.listMethods = newListMethods(heap)
	vm.stringMethods = newStringMethods(heap)
	heap.AttachRoots(vm)
	return vm
}

// Loop exposes the VM's timer queue to internal/stdlib's
// setTimeout/setInterval/clearInterval natives.
func (vm *VM) Loop() *eventloop.Loop { return vm.loop }

// RunEventLoop drains the timer queue per spec.md §4.8, invoked once
// the top-level script (or REPL session) has returned. It re-enters the
// VM through CallSync for every fired callback, on the same goroutine
// that ran the script, so no call-stack state needs to cross goroutines.
func (vm *VM) RunEventLoop() error {
	return vm.loop.Run(vm.CallSync)
}

// EnableJIT turns on call-site specialisation (spec.md §4.4.3): the
// first CALL of a closure submits its chunk to the method-granular JIT.
func (vm *VM) EnableJIT(enabled bool) { vm.jitEnabled = enabled }

// AttachJIT wires a JIT compiler in (internal/jit.Compile has the
// matching signature). cmd/nimbus calls neither this nor EnableJIT; until
// a caller does, jitCompile stays nil and tryJIT always falls through to
// bytecode.
func (vm *VM) AttachJIT(compile func(*object.Function) object.JitEntry) {
	vm.jitCompile = compile
}

func (vm *VM) Globals() map[string]object.Value { return vm.globals }

func (vm *VM) Heap() *memory.Heap { return vm.heap }

// overflowPanic is recovered by run()'s own defer rather than by
// Go's normal error-return path, since push has no room in its
// signature to report failure without touching every call site.
type overflowPanic struct{ err error }

func (vm *VM) push(v object.Value) {
	if len(vm.stack) == cap(vm.stack) {
		panic(overflowPanic{vm.runtimeError("stack overflow")})
	}
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() object.Value {
	n := len(vm.stack) - 1
	v := vm.stack[n]
	vm.stack = vm.stack[:n]
	return v
}

func (vm *VM) peek(distance int) object.Value {
	return vm.stack[len(vm.stack)-1-distance]
}

func (vm *VM) frame() *CallFrame {
	return &vm.frames[len(vm.frames)-1]
}

func (vm *VM) chunk() *bytecode.Chunk {
	return vm.frame().closure.Function.Chunk
}

func (vm *VM) readByte() byte {
	f := vm.frame()
	b := vm.chunk().Code[f.ip]
	f.ip++
	return b
}

func (vm *VM) readUint16() uint16 {
	f := vm.frame()
	v := vm.chunk().ReadUint16(f.ip)
	f.ip += 2
	return v
}

func (vm *VM) readConstant() interface{} {
	return vm.chunk().Constants[vm.readUint16()]
}

func (vm *VM) readName() string {
	return vm.readConstant().(*object.String).Value
}

// Interpret compiles and runs the top-level script function produced by
// internal/compiler.Compile. It's the entry point cmd/nimbus and
// internal/repl drive.
func (vm *VM) Interpret(script *bytecode.Function) (object.Value, error) {
	fn := vm.functionFor(script)
	closure := vm.heap.NewClosure(fn, nil)
	vm.push(closure)
	if _, err := vm.invokeAt(0, 0); err != nil {
		return nil, err
	}
	return vm.run(0)
}

// functionFor returns the shared object.Function for a compile-time
// prototype, minting it the first time any closure is made from it.
func (vm *VM) functionFor(proto *bytecode.Function) *object.Function {
	if fn, ok := vm.functions[proto]; ok {
		return fn
	}
	fn := vm.heap.NewFunction(proto)
	vm.functions[proto] = fn
	return fn
}

func (vm *VM) runtimeError(format string, args ...interface{}) error {
	line := 0
	if len(vm.frames) > 0 {
		line = vm.chunk().LineAt(vm.frame().ip)
	}
	return errors.New(errors.Runtime, vm.file, line, format, args...)
}

func (vm *VM) String() string {
	return fmt.Sprintf("<vm frames=%d stack=%d>", len(vm.frames), len(vm.stack))
}
