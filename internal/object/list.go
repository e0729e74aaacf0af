package object

// List is an ordered, mutable sequence of Values backed by a Go slice.
type List struct {
	Header
	Elements []Value
}

func NewList(elements []Value) *List {
	if elements == nil {
		elements = []Value{}
	}
	return &List{Header: newHeader(TList), Elements: elements}
}
