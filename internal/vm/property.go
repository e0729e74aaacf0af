package vm

import (
	"strings"

	"nimbus/internal/memory"
	"nimbus/internal/object"
)

// getProperty implements spec.md §4.4.2's GET_PROPERTY dispatch: List
// and String expose a length field plus a method table; Instance checks
// fields first, then its class's native and closure method tables;
// Class exposes its own tables directly for ClassName.staticMethod()
// access.
func (vm *VM) getProperty(obj object.Value, name string) (object.Value, error) {
	switch v := obj.(type) {
	case *object.List:
		if name == "length" {
			return float64(len(v.Elements)), nil
		}
		if native, ok := vm.listMethods[name]; ok {
			return vm.heap.NewBoundMethodNative(v, vm.heap.NewNative(name, native)), nil
		}
		return nil, vm.runtimeError("list has no property %q", name)

	case *object.String:
		if name == "length" {
			return float64(len(v.Value)), nil
		}
		if native, ok := vm.stringMethods[name]; ok {
			return vm.heap.NewBoundMethodNative(v, vm.heap.NewNative(name, native)), nil
		}
		return nil, vm.runtimeError("string has no property %q", name)

	case *object.NativeInstance:
		return vm.instanceProperty(&v.Instance, v, name)
	case *object.Instance:
		return vm.instanceProperty(v, v, name)

	case *object.Class:
		if n, ok := v.Natives[name]; ok {
			return n, nil
		}
		if c, ok := v.Methods[name]; ok {
			return c, nil
		}
		return nil, vm.runtimeError("%s has no static property %q", v.Name, name)

	case nil:
		return nil, vm.runtimeError("cannot read property %q of null", name)

	default:
		return nil, vm.runtimeError("%s has no properties", object.TypeOf(obj))
	}
}

func (vm *VM) instanceProperty(inst *object.Instance, receiver object.Value, name string) (object.Value, error) {
	if f, ok := inst.Fields[name]; ok {
		return f, nil
	}
	if n, ok := inst.Class.Natives[name]; ok {
		return vm.heap.NewBoundMethodNative(receiver, n), nil
	}
	if c, ok := inst.Class.Methods[name]; ok {
		return vm.heap.NewBoundMethodClosure(receiver, c), nil
	}
	return nil, vm.runtimeError("%s instance has no property %q", inst.Class.Name, name)
}

// setProperty only ever writes an Instance's own field table; lists,
// strings and classes have no settable properties.
func (vm *VM) setProperty(obj object.Value, name string, val object.Value) error {
	switch v := obj.(type) {
	case *object.NativeInstance:
		v.Fields[name] = val
		return nil
	case *object.Instance:
		v.Fields[name] = val
		return nil
	case nil:
		return vm.runtimeError("cannot set property %q of null", name)
	default:
		return vm.runtimeError("%s has no settable properties", object.TypeOf(obj))
	}
}

// getSubscript implements `obj[idx]`: numeric index into a List or
// String, or a string key into an object-literal Instance.
func (vm *VM) getSubscript(obj, idx object.Value) (object.Value, error) {
	switch v := obj.(type) {
	case *object.List:
		i, ok := idx.(float64)
		if !ok {
			return nil, vm.runtimeError("list index must be a number")
		}
		n := int(i)
		if n < 0 || n >= len(v.Elements) {
			return nil, nil
		}
		return v.Elements[n], nil
	case *object.String:
		i, ok := idx.(float64)
		if !ok {
			return nil, vm.runtimeError("string index must be a number")
		}
		n := int(i)
		if n < 0 || n >= len(v.Value) {
			return nil, nil
		}
		return vm.heap.NewString(string(v.Value[n])), nil
	case *object.Instance:
		key, ok := idx.(*object.String)
		if !ok {
			return nil, vm.runtimeError("object index must be a string")
		}
		return v.Fields[key.Value], nil
	case nil:
		return nil, vm.runtimeError("cannot index null")
	default:
		return nil, vm.runtimeError("%s is not indexable", object.TypeOf(obj))
	}
}

func (vm *VM) setSubscript(obj, idx, val object.Value) error {
	switch v := obj.(type) {
	case *object.List:
		i, ok := idx.(float64)
		if !ok {
			return vm.runtimeError("list index must be a number")
		}
		n := int(i)
		if n < 0 {
			return vm.runtimeError("list index out of range")
		}
		for n >= len(v.Elements) {
			v.Elements = append(v.Elements, nil)
		}
		v.Elements[n] = val
		return nil
	case *object.Instance:
		key, ok := idx.(*object.String)
		if !ok {
			return vm.runtimeError("object index must be a string")
		}
		v.Fields[key.Value] = val
		return nil
	case nil:
		return vm.runtimeError("cannot index null")
	default:
		return vm.runtimeError("%s is not indexable", object.TypeOf(obj))
	}
}

// newListMethods and newStringMethods back the VM's built-in method
// tables named in spec.md §4.4.2/§ "Built-in methods". Each has the
// object.NativeFn shape (receiver, args) so the same minting path used
// for host natives (Instance method lookup, BoundMethod) works for them
// unmodified. They close over heap so every *object.String they return
// is minted through heap.NewString and counted against bytesAllocated
// like any other script-visible string, instead of bypassing the GC's
// accounting the way a bare object.NewString would.
func newListMethods(heap *memory.Heap) map[string]object.NativeFn {
	return map[string]object.NativeFn{
		"push": func(receiver object.Value, args []object.Value) (object.Value, error) {
			l := receiver.(*object.List)
			l.Elements = append(l.Elements, args...)
			return float64(len(l.Elements)), nil
		},
		"pop": func(receiver object.Value, args []object.Value) (object.Value, error) {
			l := receiver.(*object.List)
			if len(l.Elements) == 0 {
				return nil, nil
			}
			last := l.Elements[len(l.Elements)-1]
			l.Elements = l.Elements[:len(l.Elements)-1]
			return last, nil
		},
		"clear": func(receiver object.Value, args []object.Value) (object.Value, error) {
			l := receiver.(*object.List)
			l.Elements = l.Elements[:0]
			return nil, nil
		},
		"join": func(receiver object.Value, args []object.Value) (object.Value, error) {
			l := receiver.(*object.List)
			sep := ","
			if len(args) > 0 {
				if s, ok := args[0].(*object.String); ok {
					sep = s.Value
				}
			}
			parts := make([]string, len(l.Elements))
			for i, e := range l.Elements {
				parts[i] = object.ToDisplayString(e)
			}
			return heap.NewString(strings.Join(parts, sep)), nil
		},
		"at": func(receiver object.Value, args []object.Value) (object.Value, error) {
			l := receiver.(*object.List)
			if len(args) == 0 {
				return nil, nil
			}
			i, ok := args[0].(float64)
			if !ok {
				return nil, nil
			}
			n := int(i)
			if n < 0 || n >= len(l.Elements) {
				return nil, nil
			}
			return l.Elements[n], nil
		},
	}
}

func newStringMethods(heap *memory.Heap) map[string]object.NativeFn {
	return map[string]object.NativeFn{
		"at": func(receiver object.Value, args []object.Value) (object.Value, error) {
			s := receiver.(*object.String)
			if len(args) == 0 {
				return nil, nil
			}
			i, ok := args[0].(float64)
			if !ok {
				return nil, nil
			}
			n := int(i)
			if n < 0 || n >= len(s.Value) {
				return nil, nil
			}
			return heap.NewString(string(s.Value[n])), nil
		},
		"indexOf": func(receiver object.Value, args []object.Value) (object.Value, error) {
			s := receiver.(*object.String)
			if len(args) == 0 {
				return float64(-1), nil
			}
			sub, ok := args[0].(*object.String)
			if !ok {
				return float64(-1), nil
			}
			return float64(strings.Index(s.Value, sub.Value)), nil
		},
		"substring": func(receiver object.Value, args []object.Value) (object.Value, error) {
			s := receiver.(*object.String)
			a, b := 0, len(s.Value)
			if len(args) > 0 {
				if n, ok := args[0].(float64); ok {
					a = clamp(int(n), 0, len(s.Value))
				}
			}
			if len(args) > 1 {
				if n, ok := args[1].(float64); ok {
					b = clamp(int(n), 0, len(s.Value))
				}
			}
			if a > b {
				a, b = b, a
			}
			return heap.NewString(s.Value[a:b]), nil
		},
		"toUpperCase": func(receiver object.Value, args []object.Value) (object.Value, error) {
			return heap.NewString(strings.ToUpper(receiver.(*object.String).Value)), nil
		},
		"toLowerCase": func(receiver object.Value, args []object.Value) (object.Value, error) {
			return heap.NewString(strings.ToLower(receiver.(*object.String).Value)), nil
		},
		"trim": func(receiver object.Value, args []object.Value) (object.Value, error) {
			return heap.NewString(strings.TrimSpace(receiver.(*object.String).Value)), nil
		},
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
