package ir

import "strings"

// TypeKind classifies machine types.
type TypeKind int

const (
	TypeVoid TypeKind = iota
	TypeI8
	TypeI32
	TypePointer
	TypeFunc
)

// Type is a machine type. Types are compared with Equal, never by pointer.
type Type struct {
	Kind TypeKind

	// Elem is the pointee of a pointer type.
	Elem *Type

	// Ret and Params describe a function type.
	Ret    *Type
	Params []*Type
}

var (
	Void = &Type{Kind: TypeVoid}
	I8   = &Type{Kind: TypeI8}
	I32  = &Type{Kind: TypeI32}
)

// PointerTo returns the type of a pointer to elem.
func PointerTo(elem *Type) *Type {
	return &Type{Kind: TypePointer, Elem: elem}
}

// FuncOf returns the type of a function taking params and returning ret.
func FuncOf(ret *Type, params ...*Type) *Type {
	return &Type{Kind: TypeFunc, Ret: ret, Params: params}
}

// Equal reports structural identity.
func (t *Type) Equal(other *Type) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil || t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TypePointer:
		return t.Elem.Equal(other.Elem)
	case TypeFunc:
		if !t.Ret.Equal(other.Ret) || len(t.Params) != len(other.Params) {
			return false
		}
		for i, p := range t.Params {
			if !p.Equal(other.Params[i]) {
				return false
			}
		}
	}
	return true
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case TypeVoid:
		return "void"
	case TypeI8:
		return "i8"
	case TypeI32:
		return "i32"
	case TypePointer:
		return t.Elem.String() + "*"
	case TypeFunc:
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = p.String()
		}
		return t.Ret.String() + " (" + strings.Join(params, ", ") + ")"
	default:
		return "?"
	}
}
