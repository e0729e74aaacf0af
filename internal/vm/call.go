package vm

import (
	"nimbus/internal/errors"
	"nimbus/internal/object"
)

// invokeAt implements spec.md §4.4.1's call protocol against the value
// sitting at calleeSlot, with argc arguments above it on the stack. It
// either pushes a new CallFrame (pushedFrame=true, the run loop keeps
// dispatching into it) or completes synchronously and leaves exactly
// one result value at calleeSlot (pushedFrame=false).
func (vm *VM) invokeAt(calleeSlot, argc int) (pushedFrame bool, err error) {
	switch callee := vm.stack[calleeSlot].(type) {
	case *object.Closure:
		return vm.callClosure(callee, calleeSlot, argc)
	case *object.Native:
		return vm.callNative(callee, nil, calleeSlot, argc)
	case *object.Class:
		return vm.instantiate(callee, calleeSlot, argc)
	case *object.BoundMethod:
		vm.stack[calleeSlot] = callee.Receiver
		if callee.Closure != nil {
			return vm.callClosure(callee.Closure, calleeSlot, argc)
		}
		return vm.callNative(callee.Native, callee.Receiver, calleeSlot, argc)
	default:
		return false, vm.runtimeError("%s is not callable", object.TypeOf(callee))
	}
}

func (vm *VM) callClosure(c *object.Closure, calleeSlot, argc int) (bool, error) {
	if c.Function.Arity != argc {
		return false, vm.runtimeError("%s expects %d argument(s), got %d", c.Function.Name, c.Function.Arity, argc)
	}
	if vm.jitEnabled {
		if done, result, err := vm.tryJIT(c, calleeSlot, argc); done {
			if err != nil {
				return false, err
			}
			vm.stack = vm.stack[:calleeSlot]
			vm.push(result)
			return false, nil
		}
	}
	if len(vm.frames) == maxFrames {
		return false, vm.runtimeError("too much recursion")
	}
	vm.frames = append(vm.frames, CallFrame{closure: c, ip: 0, slots: calleeSlot})
	return true, nil
}

func (vm *VM) callNative(n *object.Native, receiver object.Value, calleeSlot, argc int) (bool, error) {
	args := append([]object.Value(nil), vm.stack[calleeSlot+1:calleeSlot+1+argc]...)
	result, err := n.Fn(receiver, args)
	if err != nil {
		if exit, ok := err.(*errors.Exit); ok {
			return false, exit
		}
		return false, vm.runtimeError("%s", err)
	}
	vm.stack = vm.stack[:calleeSlot]
	vm.push(result)
	return false, nil
}

// instantiate allocates the Instance (or NativeInstance) a `new` or
// bare-call-of-a-class expression produces, then runs the constructor
// if there is one, per spec.md §4.4.1's Class callee rule.
func (vm *VM) instantiate(cls *object.Class, calleeSlot, argc int) (bool, error) {
	var inst object.Value
	if cls.IsNative {
		inst = vm.heap.NewNativeInstance(cls, nil, nil)
	} else {
		inst = vm.heap.NewInstance(cls)
	}
	vm.stack[calleeSlot] = inst

	switch {
	case cls.Constructor() != nil:
		return vm.callClosure(cls.Constructor(), calleeSlot, argc)
	case cls.NativeConstructor() != nil:
		args := append([]object.Value(nil), vm.stack[calleeSlot+1:calleeSlot+1+argc]...)
		if _, err := cls.NativeConstructor().Fn(inst, args); err != nil {
			return false, vm.runtimeError("%s", err)
		}
		vm.stack = vm.stack[:calleeSlot+1]
		return false, nil
	case argc != 0:
		return false, vm.runtimeError("%s takes no arguments", cls.Name)
	default:
		vm.stack = vm.stack[:calleeSlot+1]
		return false, nil
	}
}

// CallSync lets native code (the list/string method tables, stdlib
// callbacks) invoke a script value synchronously and get its result
// back, re-entering the dispatch loop when the callee is a closure. A
// bound receiver travels inside callee as a *object.BoundMethod; callers
// invoking a bare function pass one directly.
func (vm *VM) CallSync(callee object.Value, args []object.Value) (object.Value, error) {
	calleeSlot := len(vm.stack)
	vm.push(callee)
	for _, a := range args {
		vm.push(a)
	}
	baseDepth := len(vm.frames)
	pushedFrame, err := vm.invokeAt(calleeSlot, len(args))
	if err != nil {
		vm.stack = vm.stack[:calleeSlot]
		return nil, err
	}
	if !pushedFrame {
		return vm.pop(), nil
	}
	result, err := vm.run(baseDepth)
	if err != nil {
		return nil, err
	}
	return result, nil
}
