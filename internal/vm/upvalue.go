package vm

import "nimbus/internal/object"

// captureUpvalue returns the open Upvalue already borrowing slot, or
// opens a new one. Reusing an existing open upvalue for the same slot
// is what lets two closures created from the same enclosing call share
// one mutable cell (data-model invariant: "two closures capturing the
// same local share one Upvalue while it's open").
func (vm *VM) captureUpvalue(slot int) *object.Upvalue {
	if uv, ok := vm.openUpvalues[slot]; ok {
		return uv
	}
	uv := vm.heap.NewUpvalue(&vm.stack[slot])
	vm.openUpvalues[slot] = uv
	return uv
}

// closeUpvalues closes every open upvalue at or above fromSlot, copying
// its borrowed stack value into its own Closed field before that slot
// is invalidated by a scope exit or RETURN's stack truncation.
func (vm *VM) closeUpvalues(fromSlot int) {
	for slot, uv := range vm.openUpvalues {
		if slot >= fromSlot {
			uv.Close()
			delete(vm.openUpvalues, slot)
		}
	}
}
