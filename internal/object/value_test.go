package object

import "testing"

func TestIsTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{0.0, false},
		{1.0, true},
		{NewString(""), true},
		{NewString("x"), true},
	}
	for _, c := range cases {
		if got := IsTruthy(c.v); got != c.want {
			t.Errorf("IsTruthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestEqualAcrossTagsIsFalse(t *testing.T) {
	if Equal(1.0, NewString("1")) {
		t.Fatal("1 == \"1\" should be false across distinct tags")
	}
}

func TestStrictEqualStringsByContent(t *testing.T) {
	a := NewString("ab")
	b := NewString("ab")
	if a == b {
		t.Fatal("test setup: expected distinct string objects")
	}
	if !StrictEqual(a, b) {
		t.Fatal("distinct string objects with equal contents must be ===")
	}
}

func TestStrictEqualReferencesByIdentity(t *testing.T) {
	l1 := NewList(nil)
	l2 := NewList(nil)
	if StrictEqual(l1, l2) {
		t.Fatal("distinct lists must not be === even with equal contents")
	}
	if !StrictEqual(l1, l1) {
		t.Fatal("a list must be === to itself")
	}
}

func TestStrictEqualImpliesLooseEqual(t *testing.T) {
	s := NewString("x")
	if StrictEqual(s, s) && !Equal(s, s) {
		t.Fatal("a === b must imply a == b")
	}
}

func TestUpvalueOpenThenClose(t *testing.T) {
	slotValue := Value(42.0)
	uv := NewUpvalue(&slotValue)
	if !uv.IsOpen() {
		t.Fatal("upvalue should start open")
	}
	if got := uv.Get(); got != 42.0 {
		t.Fatalf("Get() = %v, want 42", got)
	}
	uv.Close()
	if uv.IsOpen() {
		t.Fatal("upvalue should be closed")
	}
	if got := uv.Get(); got != 42.0 {
		t.Fatalf("Get() after close = %v, want 42", got)
	}
	uv.Set(99.0)
	if got := uv.Get(); got != 99.0 {
		t.Fatalf("Get() after Set = %v, want 99", got)
	}
}

func TestObjAllocationListLinking(t *testing.T) {
	a := NewString("a")
	b := NewString("b")
	a.SetNext(b)
	if a.Next() != Obj(b) {
		t.Fatal("Next() did not return linked object")
	}
	if a.Marked() {
		t.Fatal("new object should start unmarked")
	}
	a.SetMarked(true)
	if !a.Marked() {
		t.Fatal("SetMarked(true) did not stick")
	}
}
