package memory

import (
	"testing"

	"nimbus/internal/object"
)

// fakeRoots lets tests control exactly what the collector sees as live
// without standing up a VM.
type fakeRoots struct {
	stack   []object.Value
	globals []object.Value
}

func (f *fakeRoots) StackRoots() []object.Value      { return f.stack }
func (f *fakeRoots) GlobalRoots() []object.Value     { return f.globals }
func (f *fakeRoots) FrameClosures() []object.Value   { return nil }
func (f *fakeRoots) OpenUpvalues() []*object.Upvalue { return nil }

func countAlloc(h *Heap) int {
	n := 0
	for o := h.allocList; o != nil; o = o.Next() {
		n++
	}
	return n
}

func TestCollectSweepsUnreachable(t *testing.T) {
	h := NewHeap()
	roots := &fakeRoots{}
	h.AttachRoots(roots)

	kept := h.NewString("kept")
	h.NewString("garbage")
	roots.stack = []object.Value{kept}

	h.Collect()

	if countAlloc(h) != 1 {
		t.Fatalf("expected 1 surviving object, got %d", countAlloc(h))
	}
	if h.allocList != object.Obj(kept) {
		t.Fatal("the reachable string should have survived collection")
	}
}

func TestCollectTracesListElements(t *testing.T) {
	h := NewHeap()
	roots := &fakeRoots{}
	h.AttachRoots(roots)

	elem := h.NewString("inside")
	list := h.NewList([]object.Value{elem})
	roots.globals = []object.Value{list}

	h.Collect()

	if countAlloc(h) != 2 {
		t.Fatalf("expected list + element to survive, got %d objects", countAlloc(h))
	}
}

func TestTempRootProtectsDuringAllocation(t *testing.T) {
	h := NewHeap()
	roots := &fakeRoots{}
	h.AttachRoots(roots)

	protected := h.NewString("protected")
	h.PushTempRoot(protected)
	defer h.PopTempRoot()

	h.Collect()

	if countAlloc(h) != 1 {
		t.Fatal("temp-rooted object must survive a collection with no other roots")
	}
}

func TestCollectionTriggersBeforeOverAllocation(t *testing.T) {
	h := NewHeap()
	h.AttachRoots(&fakeRoots{})
	h.nextGC = 1

	h.NewString("a")
	h.NewString("b")

	if h.Collections() == 0 {
		t.Fatal("expected at least one collection once bytesAllocated exceeded nextGC")
	}
}

func TestUpvalueClosedValueIsTraced(t *testing.T) {
	h := NewHeap()
	roots := &fakeRoots{}
	h.AttachRoots(roots)

	slotValue := object.Value(h.NewString("closed-over"))
	uv := h.NewUpvalue(&slotValue)
	uv.Close()
	roots.stack = []object.Value{uv}

	h.Collect()

	if countAlloc(h) != 2 {
		t.Fatalf("expected upvalue + its closed string to survive, got %d", countAlloc(h))
	}
}

func TestNativeInstanceDestructorRunsOnSweep(t *testing.T) {
	h := NewHeap()
	roots := &fakeRoots{}
	h.AttachRoots(roots)

	destroyed := false
	class := h.NewClass("File")
	h.NewNativeInstance(class, "handle", func(interface{}) { destroyed = true })
	roots.globals = []object.Value{class}

	h.Collect()

	if !destroyed {
		t.Fatal("expected the native instance's destructor to run when it was swept")
	}
}
