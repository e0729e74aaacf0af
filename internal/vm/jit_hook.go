package vm

import "nimbus/internal/object"

// tryJIT implements the call-site specialisation of spec.md §4.4.3: on
// a closure's first CALL with JIT enabled, its chunk is submitted to
// internal/jit; on success the function caches a native entry point,
// and every call with all-numeric arguments can skip bytecode dispatch
// entirely. VM.AttachJIT wires a compiler in (internal/jit.Compile has
// the matching signature); until one is attached (or whenever
// compilation fails or an argument isn't numeric) this always falls
// through to a normal bytecode call.
func (vm *VM) tryJIT(c *object.Closure, calleeSlot, argc int) (done bool, result object.Value, err error) {
	fn := c.Function
	if !fn.JitAttempted {
		fn.JitAttempted = true
		if vm.jitCompile != nil {
			fn.Jit = vm.jitCompile(fn)
		}
	}
	if fn.Jit == nil {
		return false, nil, nil
	}
	args := make([]float64, argc)
	for i := 0; i < argc; i++ {
		n, ok := vm.stack[calleeSlot+1+i].(float64)
		if !ok {
			return false, nil, nil
		}
		args[i] = n
	}
	return true, fn.Jit(args), nil
}
