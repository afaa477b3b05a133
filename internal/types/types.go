// Package types is the Orka data type model shared by the parser and the
// code generator.
//
// The set of types is closed: void, char, the 32-bit signed integer, and
// pointers to any of these. Pointers nest (a pointer to a pointer to char is
// a valid type) and always carry exactly one element type.
package types

// Type is implemented by every Orka data type.
type Type interface {
	// String returns the type in source-like notation, e.g. "int" or "*char".
	String() string

	// Equals reports structural identity: two pointers are equal when their
	// element types are equal.
	Equals(other Type) bool

	kind() Kind
}

// Kind distinguishes the concrete types without a type switch.
type Kind int

const (
	KindVoid Kind = iota
	KindChar
	KindInt32
	KindPointer
)

// VoidType is the type of functions that return nothing.
type VoidType struct{}

func (*VoidType) String() string         { return "void" }
func (*VoidType) Equals(other Type) bool { return other != nil && other.kind() == KindVoid }
func (*VoidType) kind() Kind             { return KindVoid }

// CharType is an 8-bit character. It only appears as a pointer element.
type CharType struct{}

func (*CharType) String() string         { return "char" }
func (*CharType) Equals(other Type) bool { return other != nil && other.kind() == KindChar }
func (*CharType) kind() Kind             { return KindChar }

// Int32Type is the signed 32-bit integer, spelled int in source.
type Int32Type struct{}

func (*Int32Type) String() string         { return "int" }
func (*Int32Type) Equals(other Type) bool { return other != nil && other.kind() == KindInt32 }
func (*Int32Type) kind() Kind             { return KindInt32 }

// PointerType points at a value of type Elem.
type PointerType struct {
	Elem Type
}

func (p *PointerType) String() string {
	return "*" + p.Elem.String()
}

func (p *PointerType) Equals(other Type) bool {
	o, ok := other.(*PointerType)
	if !ok || o == nil {
		return false
	}
	return p.Elem.Equals(o.Elem)
}

func (*PointerType) kind() Kind { return KindPointer }

var (
	Void  = &VoidType{}
	Char  = &CharType{}
	Int32 = &Int32Type{}

	// String is the type of string literals and of str parameters.
	String Type = NewPointer(Char)
)

// NewPointer returns the pointer type whose element is elem.
func NewPointer(elem Type) *PointerType {
	return &PointerType{Elem: elem}
}

// KindOf returns the kind of t.
func KindOf(t Type) Kind {
	return t.kind()
}

// IsInteger reports whether t is the 32-bit integer type.
func IsInteger(t Type) bool {
	return t != nil && t.kind() == KindInt32
}

// IsString reports whether t is a pointer to char.
func IsString(t Type) bool {
	return t != nil && t.Equals(String)
}
