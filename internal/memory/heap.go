// Package memory implements the interpreter's tracing mark-and-sweep
// collector: a single intrusive allocation list over internal/object's
// heterogeneous heap, collected before any allocation that would push
// bytesAllocated past nextGC.
package memory

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"nimbus/internal/bytecode"
	"nimbus/internal/object"
)

// Rough per-variant byte costs used for the bytesAllocated accounting.
// These are nominal, not exact Go runtime sizes — what matters is that
// they're monotonic with the object's real footprint so the nextGC
// threshold grows at a sane rate.
const (
	sizeString   = 32
	sizeFunction = 96
	sizeClosure  = 48
	sizeUpvalue  = 40
	sizeNative   = 48
	sizeList     = 32
	sizeClass    = 80
	sizeInstance = 56
	sizeBound    = 40
)

// Heap owns the allocation list, the byte-accounting trigger, and the
// temp-roots stack. A *Heap is created once per VM and handed to the
// compiler (for compile-time string constants) and to native code (for
// anything it allocates).
type Heap struct {
	allocList      object.Obj
	bytesAllocated int64
	nextGC         int64

	tempRoots []object.Value
	roots     RootProvider

	logGC bool
	out   *os.File

	collections int
}

// NewHeap creates a heap with an initial 1MiB collection threshold.
// AttachRoots must be called once the VM that owns this heap exists,
// before the first allocation that could trigger a collection.
func NewHeap() *Heap {
	return &Heap{
		nextGC: 1 << 20,
		logGC:  os.Getenv("NIMBUS_GC_LOG") != "",
		out:    os.Stderr,
	}
}

// AttachRoots wires the collector to its root provider. Until this is
// called, Collect treats the root set as empty, which a VM must never
// allow to happen between NewHeap and its first allocation.
func (h *Heap) AttachRoots(r RootProvider) {
	h.roots = r
}

// track links a freshly allocated object into the allocation list and
// charges its size against bytesAllocated, running a collection first
// if the previous allocation already pushed past nextGC.
func (h *Heap) track(o object.Obj, size int64) {
	if h.bytesAllocated > h.nextGC {
		h.Collect()
	}
	o.SetNext(h.allocList)
	h.allocList = o
	h.bytesAllocated += size
}

// PushTempRoot protects obj from collection across any allocation that
// happens before it becomes reachable through the stack, globals or an
// upvalue — e.g. while a native function builds a List element by
// element. Callers must PopTempRoot in a defer to avoid leaking roots.
func (h *Heap) PushTempRoot(v object.Value) {
	h.tempRoots = append(h.tempRoots, v)
}

// PopTempRoot removes the most recently pushed temp root.
func (h *Heap) PopTempRoot() {
	if len(h.tempRoots) == 0 {
		return
	}
	h.tempRoots = h.tempRoots[:len(h.tempRoots)-1]
}

func (h *Heap) NewString(s string) *object.String {
	o := object.NewString(s)
	h.track(o, sizeString+int64(len(s)))
	return o
}

// newFunctionConstants extracts the already-heap-allocated constants
// (string literals) out of proto's constant pool so the GC can trace
// them from the Function without walking raw bytecode.Chunk.Constants,
// which mixes untyped Go primitives with *bytecode.Function prototypes.
func newFunctionConstants(proto *bytecode.Function) []object.Value {
	var out []object.Value
	for _, c := range proto.Chunk.Constants {
		if s, ok := c.(*object.String); ok {
			out = append(out, s)
		}
	}
	return out
}

func (h *Heap) NewFunction(proto *bytecode.Function) *object.Function {
	fn := object.NewFunction(proto.Name, proto.Arity, proto.Chunk, proto.UpvalueCount)
	fn.Constants = newFunctionConstants(proto)
	h.track(fn, sizeFunction)
	return fn
}

func (h *Heap) NewClosure(fn *object.Function, upvalues []*object.Upvalue) *object.Closure {
	o := object.NewClosure(fn, upvalues)
	h.track(o, sizeClosure+int64(len(upvalues))*8)
	return o
}

func (h *Heap) NewUpvalue(slot *object.Value) *object.Upvalue {
	o := object.NewUpvalue(slot)
	h.track(o, sizeUpvalue)
	return o
}

func (h *Heap) NewNative(name string, fn object.NativeFn) *object.Native {
	o := object.NewNative(name, fn)
	h.track(o, sizeNative)
	return o
}

func (h *Heap) NewList(elements []object.Value) *object.List {
	o := object.NewList(elements)
	h.track(o, sizeList+int64(len(elements))*8)
	return o
}

func (h *Heap) NewClass(name string) *object.Class {
	o := object.NewClass(name)
	h.track(o, sizeClass)
	return o
}

func (h *Heap) NewInstance(class *object.Class) *object.Instance {
	o := object.NewInstance(class)
	h.track(o, sizeInstance)
	return o
}

func (h *Heap) NewNativeInstance(class *object.Class, data interface{}, destructor func(interface{})) *object.NativeInstance {
	o := object.NewNativeInstance(class, data, destructor)
	h.track(o, sizeInstance)
	return o
}

func (h *Heap) NewBoundMethodClosure(receiver object.Value, method *object.Closure) *object.BoundMethod {
	o := object.NewBoundMethodClosure(receiver, method)
	h.track(o, sizeBound)
	return o
}

func (h *Heap) NewBoundMethodNative(receiver object.Value, method *object.Native) *object.BoundMethod {
	o := object.NewBoundMethodNative(receiver, method)
	h.track(o, sizeBound)
	return o
}

// BytesAllocated reports the current live-byte estimate, exposed for
// diagnostics and for tests asserting a collection actually ran.
func (h *Heap) BytesAllocated() int64 { return h.bytesAllocated }

// Collections reports how many collection cycles have run.
func (h *Heap) Collections() int { return h.collections }

func (h *Heap) logCollection(before, after int64) {
	if !h.logGC {
		return
	}
	fmt.Fprintf(h.out, "[gc] collection #%d: %s -> %s, nextGC=%s\n",
		h.collections,
		humanize.Bytes(uint64(before)),
		humanize.Bytes(uint64(after)),
		humanize.Bytes(uint64(h.nextGC)),
	)
}
