// Package object defines the heterogeneous heap of the interpreter: the
// tagged Value union and the ten Object variants from which the GC
// tracks a single intrusive allocation list.
package object

// Value is the tagged union described by the data model: null (Go nil),
// boolean, number (float64) or a reference to a heap Obj. There is no
// wrapper type — a bare Go nil/bool/float64/Obj is already a well-formed
// Value — so callers never need to unwrap before a type switch.
type Value interface{}

// Type tags every heap object for fast dispatch without reflection.
type Type byte

const (
	TString Type = iota
	TFunction
	TClosure
	TUpvalue
	TNative
	TList
	TClass
	TInstance
	TNativeInstance
	TBoundMethod
)

func (t Type) String() string {
	switch t {
	case TString:
		return "string"
	case TFunction:
		return "function"
	case TClosure:
		return "closure"
	case TUpvalue:
		return "upvalue"
	case TNative:
		return "native"
	case TList:
		return "list"
	case TClass:
		return "class"
	case TInstance:
		return "instance"
	case TNativeInstance:
		return "instance"
	case TBoundMethod:
		return "bound method"
	default:
		return "object"
	}
}

// Obj is satisfied by every heap-allocated variant. The GC's allocation
// list is a singly linked chain of Obj; Header supplies the mark bit and
// Next link every variant needs, promoted through struct embedding so
// individual variants never implement these methods themselves.
type Obj interface {
	ObjType() Type
	Marked() bool
	SetMarked(bool)
	Next() Obj
	SetNext(Obj)
}

// Header is embedded as the first field of every Object variant.
type Header struct {
	typ    Type
	marked bool
	next   Obj
}

func (h *Header) ObjType() Type    { return h.typ }
func (h *Header) Marked() bool     { return h.marked }
func (h *Header) SetMarked(m bool) { h.marked = m }
func (h *Header) Next() Obj        { return h.next }
func (h *Header) SetNext(n Obj)    { h.next = n }

func newHeader(t Type) Header {
	return Header{typ: t}
}
