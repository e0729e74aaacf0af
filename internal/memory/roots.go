package memory

import "nimbus/internal/object"

// RootProvider is implemented by the VM so the collector can enumerate
// the root set without internal/memory importing internal/vm (which
// would create a cycle, since the VM holds a *Heap).
type RootProvider interface {
	// StackRoots returns every live slot of the operand stack, across
	// all active call frames.
	StackRoots() []object.Value

	// GlobalRoots returns the current values of the globals table.
	GlobalRoots() []object.Value

	// FrameClosures returns the closure of each active CallFrame.
	FrameClosures() []object.Value

	// OpenUpvalues returns the VM's open-upvalue chain.
	OpenUpvalues() []*object.Upvalue
}
