package object

// Class holds a name and two method tables: closures compiled from
// script source, and natives for host-backed classes (IsNative). A
// class looked up as `ClassName.staticMethod` searches both tables the
// same way GET_PROPERTY on an instance does.
type Class struct {
	Header
	Name    string
	Methods map[string]*Closure
	Natives map[string]*Native
	IsNative bool
}

func NewClass(name string) *Class {
	return &Class{
		Header:  newHeader(TClass),
		Name:    name,
		Methods: make(map[string]*Closure),
		Natives: make(map[string]*Native),
	}
}

func (c *Class) Constructor() *Closure {
	return c.Methods["constructor"]
}

func (c *Class) NativeConstructor() *Native {
	return c.Natives["constructor"]
}
