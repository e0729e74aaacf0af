package object

// String is an immutable byte sequence. Two Strings compare equal by
// contents under == (loose) and under === (strict) alike — unlike other
// reference types, string identity never matters to script code.
type String struct {
	Header
	Value string
}

func NewString(s string) *String {
	return &String{Header: newHeader(TString), Value: s}
}
