package object

// Instance is a plain script-defined object: a class pointer plus its
// own field table. Method lookup falls through to Class when a name
// isn't a field (see the VM's GET_PROPERTY handling).
type Instance struct {
	Header
	Class  *Class
	Fields map[string]Value
}

func NewInstance(class *Class) *Instance {
	return &Instance{Header: newHeader(TInstance), Class: class, Fields: make(map[string]Value)}
}

// NativeInstance is an Instance plus an opaque host-data pointer and an
// optional destructor invoked when the GC sweeps it — the representation
// for built-in classes like File that wrap an OS resource.
type NativeInstance struct {
	Instance
	Data       interface{}
	Destructor func(interface{})
}

func NewNativeInstance(class *Class, data interface{}, destructor func(interface{})) *NativeInstance {
	ni := &NativeInstance{
		Instance:   Instance{Header: newHeader(TNativeInstance), Class: class, Fields: make(map[string]Value)},
		Data:       data,
		Destructor: destructor,
	}
	return ni
}

// Destroy runs the destructor, if any, when the GC sweeps this instance.
func (ni *NativeInstance) Destroy() {
	if ni.Destructor != nil {
		ni.Destructor(ni.Data)
		ni.Destructor = nil
	}
}
