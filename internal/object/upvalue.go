package object

// Upvalue is a cell that lets an inner closure refer to a local of an
// outer function. While Location is non-nil the upvalue is open and
// borrows a live stack slot; Close copies the current value into Closed
// and clears Location, after which the upvalue owns its value.
type Upvalue struct {
	Header
	Location *Value
	Closed   Value
}

func NewUpvalue(slot *Value) *Upvalue {
	return &Upvalue{Header: newHeader(TUpvalue), Location: slot}
}

func (u *Upvalue) IsOpen() bool {
	return u.Location != nil
}

func (u *Upvalue) Get() Value {
	if u.Location != nil {
		return *u.Location
	}
	return u.Closed
}

func (u *Upvalue) Set(v Value) {
	if u.Location != nil {
		*u.Location = v
		return
	}
	u.Closed = v
}

// Close transitions the upvalue from borrowing a stack slot to owning
// its value, which must happen before the owning frame's slot is
// invalidated (data-model invariant 2).
func (u *Upvalue) Close() {
	if u.Location == nil {
		return
	}
	u.Closed = *u.Location
	u.Location = nil
}
