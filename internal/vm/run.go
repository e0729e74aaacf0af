package vm

import (
	"nimbus/internal/bytecode"
	"nimbus/internal/object"
)

// run dispatches bytecode until the frame stack unwinds back to
// baseDepth, then returns the single value RETURN left on the stack.
// Interpret calls this with baseDepth 0; CallSync calls it with
// whatever depth the stack was at before it pushed a re-entrant call,
// which is what makes native callbacks into script code possible.
func (vm *VM) run(baseDepth int) (result object.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if op, ok := r.(overflowPanic); ok {
				result, err = nil, op.err
				return
			}
			panic(r)
		}
	}()
	for {
		f := vm.frame()
		op := bytecode.OpCode(vm.chunk().Code[f.ip])
		f.ip++

		switch op {
		case bytecode.OpConstant:
			vm.push(vm.constantValue(vm.readConstant()))

		case bytecode.OpNil:
			vm.push(nil)
		case bytecode.OpTrue:
			vm.push(true)
		case bytecode.OpFalse:
			vm.push(false)
		case bytecode.OpPop:
			vm.pop()

		case bytecode.OpGetLocal:
			slot := int(vm.readByte())
			vm.push(vm.stack[f.slots+slot])
		case bytecode.OpSetLocal:
			slot := int(vm.readByte())
			vm.stack[f.slots+slot] = vm.peek(0)

		case bytecode.OpGetGlobal:
			name := vm.readName()
			v, ok := vm.globals[name]
			if !ok {
				return nil, vm.runtimeError("undefined variable %q", name)
			}
			vm.push(v)
		case bytecode.OpSetGlobal:
			name := vm.readName()
			if _, ok := vm.globals[name]; !ok {
				return nil, vm.runtimeError("undefined variable %q", name)
			}
			vm.globals[name] = vm.peek(0)
		case bytecode.OpDefineGlobal:
			name := vm.readName()
			vm.globals[name] = vm.pop()
		case bytecode.OpDefineGlobalConst:
			name := vm.readName()
			vm.globals[name] = vm.pop()

		case bytecode.OpGetUpvalue:
			idx := int(vm.readByte())
			vm.push(f.closure.Upvalues[idx].Get())
		case bytecode.OpSetUpvalue:
			idx := int(vm.readByte())
			f.closure.Upvalues[idx].Set(vm.peek(0))

		case bytecode.OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(object.Equal(a, b))
		case bytecode.OpStrictEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(object.StrictEqual(a, b))
		case bytecode.OpStrictNotEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(!object.StrictEqual(a, b))
		case bytecode.OpLess:
			if err := vm.numericBinary(func(a, b float64) object.Value { return a < b }); err != nil {
				return nil, err
			}
		case bytecode.OpGreater:
			if err := vm.numericBinary(func(a, b float64) object.Value { return a > b }); err != nil {
				return nil, err
			}

		case bytecode.OpAdd:
			if err := vm.add(); err != nil {
				return nil, err
			}
		case bytecode.OpSub:
			if err := vm.numericBinary(func(a, b float64) object.Value { return a - b }); err != nil {
				return nil, err
			}
		case bytecode.OpMul:
			if err := vm.numericBinary(func(a, b float64) object.Value { return a * b }); err != nil {
				return nil, err
			}
		case bytecode.OpDiv:
			if err := vm.numericBinary(func(a, b float64) object.Value { return a / b }); err != nil {
				return nil, err
			}
		case bytecode.OpMod:
			if err := vm.numericBinary(func(a, b float64) object.Value { return float64(int64(a) % int64(b)) }); err != nil {
				return nil, err
			}
		case bytecode.OpNot:
			vm.push(!object.IsTruthy(vm.pop()))
		case bytecode.OpNegate:
			n, ok := vm.pop().(float64)
			if !ok {
				return nil, vm.runtimeError("operand must be a number")
			}
			vm.push(-n)

		case bytecode.OpJump:
			off := vm.readUint16()
			f.ip += int(off)
		case bytecode.OpJumpIfFalse:
			off := vm.readUint16()
			if !object.IsTruthy(vm.peek(0)) {
				f.ip += int(off)
			}
		case bytecode.OpJumpIfTrue:
			off := vm.readUint16()
			if object.IsTruthy(vm.peek(0)) {
				f.ip += int(off)
			}
		case bytecode.OpLoop:
			off := vm.readUint16()
			f.ip -= int(off)

		case bytecode.OpCall:
			argc := int(vm.readByte())
			calleeSlot := len(vm.stack) - 1 - argc
			if _, err := vm.invokeAt(calleeSlot, argc); err != nil {
				return nil, err
			}
		case bytecode.OpNew:
			argc := int(vm.readByte())
			calleeSlot := len(vm.stack) - 1 - argc
			if _, ok := vm.stack[calleeSlot].(*object.Class); !ok {
				return nil, vm.runtimeError("%s is not a constructor", object.TypeOf(vm.stack[calleeSlot]))
			}
			if _, err := vm.invokeAt(calleeSlot, argc); err != nil {
				return nil, err
			}

		case bytecode.OpMakeClosure:
			proto := vm.readConstant().(*bytecode.Function)
			fn := vm.functionFor(proto)
			upvalues := make([]*object.Upvalue, fn.UpvalueCount)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := vm.readByte() == 1
				index := vm.readByte()
				if isLocal {
					upvalues[i] = vm.captureUpvalue(f.slots + int(index))
				} else {
					upvalues[i] = f.closure.Upvalues[index]
				}
			}
			vm.push(vm.heap.NewClosure(fn, upvalues))

		case bytecode.OpCloseUpvalue:
			vm.closeUpvalues(len(vm.stack) - 1)
			vm.pop()

		case bytecode.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(f.slots)
			vm.stack = vm.stack[:f.slots]
			vm.frames = vm.frames[:len(vm.frames)-1]
			vm.push(result)
			if len(vm.frames) == baseDepth {
				return vm.pop(), nil
			}

		case bytecode.OpBuildList:
			n := int(vm.readByte())
			elems := append([]object.Value(nil), vm.stack[len(vm.stack)-n:]...)
			vm.stack = vm.stack[:len(vm.stack)-n]
			vm.push(vm.heap.NewList(elems))

		case bytecode.OpBuildObject:
			n := int(vm.readByte())
			cls := vm.anonymousClass()
			inst := vm.heap.NewInstance(cls)
			base := len(vm.stack) - n*2
			for i := 0; i < n; i++ {
				key := vm.stack[base+i*2].(*object.String).Value
				val := vm.stack[base+i*2+1]
				inst.Fields[key] = val
			}
			vm.stack = vm.stack[:base]
			vm.push(inst)

		case bytecode.OpGetSubscript:
			idxV, obj := vm.pop(), vm.pop()
			v, err := vm.getSubscript(obj, idxV)
			if err != nil {
				return nil, err
			}
			vm.push(v)
		case bytecode.OpSetSubscript:
			val, idxV, obj := vm.pop(), vm.pop(), vm.pop()
			if err := vm.setSubscript(obj, idxV, val); err != nil {
				return nil, err
			}
			vm.push(val)

		case bytecode.OpClass:
			name := vm.readName()
			vm.push(vm.heap.NewClass(name))
		case bytecode.OpMethod:
			name := vm.readName()
			method := vm.pop().(*object.Closure)
			cls := vm.peek(0).(*object.Class)
			cls.Methods[name] = method

		case bytecode.OpGetProperty:
			name := vm.readName()
			obj := vm.pop()
			v, err := vm.getProperty(obj, name)
			if err != nil {
				return nil, err
			}
			vm.push(v)
		case bytecode.OpSetProperty:
			name := vm.readName()
			val, obj := vm.pop(), vm.pop()
			if err := vm.setProperty(obj, name, val); err != nil {
				return nil, err
			}
			vm.push(val)

		default:
			return nil, vm.runtimeError("unknown opcode %s", op)
		}
	}
}

// constantValue converts a raw constant-pool entry to a runtime Value:
// numbers and already-heap-backed *object.String pass through unchanged;
// *bytecode.Function prototypes are never read directly (only via
// MAKE_CLOSURE's readConstant), so CONSTANT never sees one.
func (vm *VM) constantValue(c interface{}) object.Value {
	return c
}

func (vm *VM) numericBinary(op func(a, b float64) object.Value) error {
	b, a := vm.pop(), vm.pop()
	an, aok := a.(float64)
	bn, bok := b.(float64)
	if !aok || !bok {
		return vm.runtimeError("operands must be numbers")
	}
	vm.push(op(an, bn))
	return nil
}

// add implements ADD's dual contract: string coercion if either operand
// is a string, else numeric addition, else a runtime error.
func (vm *VM) add() error {
	b, a := vm.pop(), vm.pop()
	_, aStr := a.(*object.String)
	_, bStr := b.(*object.String)
	if aStr || bStr {
		vm.push(vm.heap.NewString(object.ToDisplayString(a) + object.ToDisplayString(b)))
		return nil
	}
	an, aok := a.(float64)
	bn, bok := b.(float64)
	if !aok || !bok {
		return vm.runtimeError("operands must be numbers or strings")
	}
	vm.push(an + bn)
	return nil
}

// anonymousClass backs BUILD_OBJECT's "synthetic anonymous class" per
// spec.md §4.4: object literals are sugar for an Instance of a shared,
// nameless, method-less class.
func (vm *VM) anonymousClass() *object.Class {
	if vm.objectLiteralClass == nil {
		vm.objectLiteralClass = vm.heap.NewClass("object")
	}
	return vm.objectLiteralClass
}

// NewPlainObject mints an Instance of the same anonymous class object
// literals use, for callers outside the bytecode loop that need a bare
// object: internal/module's `exports` binding, internal/stdlib's
// Object.keys/values/entries family.
func (vm *VM) NewPlainObject() *object.Instance {
	return vm.heap.NewInstance(vm.anonymousClass())
}
