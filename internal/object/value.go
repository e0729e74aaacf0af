package object

import (
	"fmt"
	"strconv"
	"strings"
)

// IsTruthy implements the JS-like truthiness rule: null, false and 0
// are falsy; every other value, including the empty string and empty
// list, is truthy.
func IsTruthy(v Value) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return true
	}
}

// TypeOf implements the typeof() builtin's type names.
func TypeOf(v Value) string {
	switch v.(type) {
	case nil:
		return "undefined"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case *String:
		return "string"
	case *Closure, *Function, *Native, *BoundMethod:
		return "function"
	case *Class:
		return "function"
	default:
		return "object"
	}
}

// Equal implements loose equality: numbers/strings compare by value
// within their own tag, references compare by identity, and values of
// different tags are never equal — the observed (and spec-documented)
// behaviour of ==.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case *String:
		bv, ok := b.(*String)
		return ok && av.Value == bv.Value
	default:
		return sameReference(a, b)
	}
}

// StrictEqual implements ===: same variant tag, and for strings, equal
// contents; every other reference type compares by identity.
func StrictEqual(a, b Value) bool {
	if as, ok := a.(*String); ok {
		bs, ok2 := b.(*String)
		return ok2 && as.Value == bs.Value
	}
	return sameTag(a, b) && Equal(a, b)
}

func sameTag(a, b Value) bool {
	switch a.(type) {
	case nil:
		return b == nil
	case bool:
		_, ok := b.(bool)
		return ok
	case float64:
		_, ok := b.(float64)
		return ok
	default:
		oa, aok := a.(Obj)
		ob, bok := b.(Obj)
		return aok && bok && oa.ObjType() == ob.ObjType()
	}
}

func sameReference(a, b Value) bool {
	oa, aok := a.(Obj)
	ob, bok := b.(Obj)
	if !aok || !bok {
		return false
	}
	return oa == ob
}

// ToDisplayString renders a Value for print()/println() and string
// concatenation via ADD.
func ToDisplayString(v Value) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(t)
	case *String:
		return t.Value
	case *List:
		parts := make([]string, len(t.Elements))
		for i, e := range t.Elements {
			parts[i] = ToDisplayString(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Function:
		return fmt.Sprintf("<fn %s>", t.Name)
	case *Closure:
		return fmt.Sprintf("<fn %s>", t.Function.Name)
	case *Native:
		return fmt.Sprintf("<native fn %s>", t.Name)
	case *Class:
		return fmt.Sprintf("<class %s>", t.Name)
	case *Instance:
		return fmt.Sprintf("<%s instance>", t.Class.Name)
	case *NativeInstance:
		return fmt.Sprintf("<%s instance>", t.Class.Name)
	case *BoundMethod:
		return "<bound method>"
	default:
		return fmt.Sprintf("%v", t)
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) && f < 1e15 && f > -1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
