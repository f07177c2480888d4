// Package types defines lml's type descriptors and the structural
// compatibility rules ("typesMatch") used by the Scanner.
package types

import "strings"

// Primitive is one of the closed set of primitive type tags.
type Primitive int

const (
	Str Primitive = iota
	Int
	Dbl
	Bool
	Obj
	Nil
	Func
	Err
	Unknown
	Void
)

func (p Primitive) String() string {
	switch p {
	case Str:
		return "str"
	case Int:
		return "int"
	case Dbl:
		return "dbl"
	case Bool:
		return "bool"
	case Obj:
		return "obj"
	case Nil:
		return "nil"
	case Func:
		return "func"
	case Err:
		return "err"
	case Unknown:
		return "unknown"
	case Void:
		return "void"
	}
	return "?"
}

// Type is either a primitive, an array of some element type, or a struct
// with named fields and named method signatures.
type Type struct {
	Primitive Primitive // valid when Array == nil && Struct == nil
	Array     *Type     // element type, non-nil for array<T>
	Struct    *StructType
}

// StructType describes an anonymous struct type: a set of named fields and
// named function signatures (methods).
type StructType struct {
	Fields     map[string]*Type
	Signatures map[string]*Signature
}

// Param describes one parameter of a function signature.
type Param struct {
	Name        string
	Type        *Type
	Optional    bool
	Rest        bool
	Description string
}

// Signature is an ordered parameter list plus a return type.
type Signature struct {
	Params     []Param
	ReturnType *Type
}

func Primitive_(p Primitive) *Type { return &Type{Primitive: p} }

var (
	TStr     = Primitive_(Str)
	TInt     = Primitive_(Int)
	TDbl     = Primitive_(Dbl)
	TBool    = Primitive_(Bool)
	TObj     = Primitive_(Obj)
	TNil     = Primitive_(Nil)
	TFunc    = Primitive_(Func)
	TErr     = Primitive_(Err)
	TUnknown = Primitive_(Unknown)
	TVoid    = Primitive_(Void)
)

// ArrayOf builds array<elem>.
func ArrayOf(elem *Type) *Type {
	return &Type{Array: elem}
}

// StructOf builds a struct type with the given fields and method
// signatures.
func StructOf(fields map[string]*Type, sigs map[string]*Signature) *Type {
	return &Type{Struct: &StructType{Fields: fields, Signatures: sigs}}
}

// IsArray reports whether t is a compound array type.
func (t *Type) IsArray() bool { return t != nil && t.Array != nil }

// IsStruct reports whether t is a compound struct type.
func (t *Type) IsStruct() bool { return t != nil && t.Struct != nil }

// String renders a human-readable type name, used in diagnostics.
func (t *Type) String() string {
	if t == nil {
		return "?"
	}
	switch {
	case t.IsArray():
		return t.Array.String() + "[]"
	case t.IsStruct():
		var names []string
		for name := range t.Struct.Fields {
			names = append(names, name)
		}
		return "struct{" + strings.Join(names, ",") + "}"
	default:
		return t.Primitive.String()
	}
}

// TypesMatch implements the Scanner's structural type-compatibility rule:
// identical primitives match; unknown matches anything in
// both directions; obj matches any struct; two arrays match iff their
// element types match; two structs match iff they have the same field
// names and matching field types. int does not widen to dbl.
func TypesMatch(a, b *Type) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Primitive == Unknown || b.Primitive == Unknown {
		return true
	}
	if a.IsArray() && b.IsArray() {
		return TypesMatch(a.Array, b.Array)
	}
	if a.IsArray() != b.IsArray() {
		return false
	}

	aStruct, bStruct := structView(a), structView(b)
	if aStruct != nil && bStruct != nil {
		return structsMatch(aStruct, bStruct)
	}
	if aStruct != nil || bStruct != nil {
		// obj matches any struct in either position.
		other := a
		if aStruct != nil {
			other = b
		}
		return other.Primitive == Obj
	}

	return a.Primitive == b.Primitive
}

// structView returns t.Struct, treating obj as "not a concrete struct
// shape" (obj only matches structurally via the Obj-primitive branch
// above).
func structView(t *Type) *StructType {
	if t.IsStruct() {
		return t.Struct
	}
	return nil
}

func structsMatch(a, b *StructType) bool {
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	for name, at := range a.Fields {
		bt, ok := b.Fields[name]
		if !ok || !TypesMatch(at, bt) {
			return false
		}
	}
	return true
}

// IsNumeric reports whether t is int or dbl.
func (t *Type) IsNumeric() bool {
	return t != nil && !t.IsArray() && !t.IsStruct() && (t.Primitive == Int || t.Primitive == Dbl)
}
