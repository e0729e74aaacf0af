package memory

import "nimbus/internal/object"

// Collect runs one full stop-the-world mark-and-sweep cycle: mark every
// root and everything reachable from it, then sweep the allocation
// list, unlinking and dropping anything left unmarked.
func (h *Heap) Collect() {
	before := h.bytesAllocated

	gray := h.markRoots()
	for len(gray) > 0 {
		o := gray[len(gray)-1]
		gray = gray[:len(gray)-1]
		gray = h.blacken(o, gray)
	}

	h.sweep()
	h.nextGC = h.bytesAllocated * 2
	h.collections++
	h.logCollection(before, h.bytesAllocated)
}

// mark flags a value's object (if it has one) and, the first time it's
// marked, appends it to the gray worklist for blacken to trace later.
// Non-reference values (nil, bool, float64) are ignored.
func (h *Heap) mark(v object.Value, gray []object.Obj) []object.Obj {
	o, ok := v.(object.Obj)
	if !ok || o.Marked() {
		return gray
	}
	o.SetMarked(true)
	return append(gray, o)
}

func (h *Heap) markRoots() []object.Obj {
	var gray []object.Obj

	for _, v := range h.tempRoots {
		gray = h.mark(v, gray)
	}

	if h.roots == nil {
		return gray
	}
	for _, v := range h.roots.StackRoots() {
		gray = h.mark(v, gray)
	}
	for _, v := range h.roots.GlobalRoots() {
		gray = h.mark(v, gray)
	}
	for _, v := range h.roots.FrameClosures() {
		gray = h.mark(v, gray)
	}
	for _, uv := range h.roots.OpenUpvalues() {
		gray = h.mark(object.Value(uv), gray)
	}
	return gray
}

// blacken traces the children of one gray object per the §4.7 mark
// table, graying any of them not already marked, and returns the
// (possibly grown) worklist.
func (h *Heap) blacken(o object.Obj, gray []object.Obj) []object.Obj {
	switch t := o.(type) {
	case *object.String:
		// no children

	case *object.Function:
		for _, c := range t.Constants {
			gray = h.mark(c, gray)
		}

	case *object.Closure:
		gray = h.mark(object.Value(t.Function), gray)
		for _, uv := range t.Upvalues {
			gray = h.mark(object.Value(uv), gray)
		}

	case *object.Upvalue:
		gray = h.mark(t.Closed, gray)

	case *object.Native:
		// no children

	case *object.List:
		for _, e := range t.Elements {
			gray = h.mark(e, gray)
		}

	case *object.Class:
		for _, m := range t.Methods {
			gray = h.mark(object.Value(m), gray)
		}
		for _, n := range t.Natives {
			gray = h.mark(object.Value(n), gray)
		}

	case *object.Instance:
		gray = h.mark(object.Value(t.Class), gray)
		for _, v := range t.Fields {
			gray = h.mark(v, gray)
		}

	case *object.NativeInstance:
		gray = h.mark(object.Value(t.Class), gray)
		for _, v := range t.Fields {
			gray = h.mark(v, gray)
		}

	case *object.BoundMethod:
		gray = h.mark(t.Receiver, gray)
		if t.Closure != nil {
			gray = h.mark(object.Value(t.Closure), gray)
		}
		if t.Native != nil {
			gray = h.mark(object.Value(t.Native), gray)
		}
	}
	return gray
}

// sweep walks the allocation list, unlinking and dropping unmarked
// nodes and clearing the mark bit on survivors.
func (h *Heap) sweep() {
	var prev object.Obj
	cur := h.allocList

	for cur != nil {
		next := cur.Next()
		if cur.Marked() {
			cur.SetMarked(false)
			prev = cur
		} else {
			h.bytesAllocated -= sizeOf(cur)
			if destroyer, ok := cur.(interface{ Destroy() }); ok {
				destroyer.Destroy()
			}
			if prev == nil {
				h.allocList = next
			} else {
				prev.SetNext(next)
			}
		}
		cur = next
	}
}

func sizeOf(o object.Obj) int64 {
	switch t := o.(type) {
	case *object.String:
		return sizeString + int64(len(t.Value))
	case *object.Function:
		return sizeFunction
	case *object.Closure:
		return sizeClosure + int64(len(t.Upvalues))*8
	case *object.Upvalue:
		return sizeUpvalue
	case *object.Native:
		return sizeNative
	case *object.List:
		return sizeList + int64(len(t.Elements))*8
	case *object.Class:
		return sizeClass
	case *object.Instance:
		return sizeInstance
	case *object.NativeInstance:
		return sizeInstance
	case *object.BoundMethod:
		return sizeBound
	default:
		return 0
	}
}
