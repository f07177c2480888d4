// Package values defines lml's runtime value model: a single tagged union
// type rather than an open interface hierarchy, since AST nodes, tokens,
// type descriptors, and runtime values are naturally expressed as
// discriminated variants.
package values

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/qrailibs/lmlang/internal/ast"
	"github.com/qrailibs/lmlang/internal/types"
)

// Kind is the closed set of runtime value tags. A Value's Kind is
// authoritative — callers never infer it from which payload field happens
// to be set.
type Kind int

const (
	KindStr Kind = iota
	KindInt
	KindDbl
	KindBool
	KindNil
	KindFunc
	KindErr
	KindArray
	KindObject
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindStr:
		return "str"
	case KindInt:
		return "int"
	case KindDbl:
		return "dbl"
	case KindBool:
		return "bool"
	case KindNil:
		return "nil"
	case KindFunc:
		return "func"
	case KindErr:
		return "err"
	case KindArray:
		return "array"
	case KindObject:
		return "obj"
	case KindUnknown:
		return "unknown"
	}
	return "?"
}

// Value is a runtime value: a tag plus exactly one populated payload field.
type Value struct {
	Kind Kind

	Str  string
	Int  int64
	Dbl  float64
	Bool bool
	Err  error
	Fn   *Function
	Arr  *Array
	Obj  *Object

	// Payload carries an opaque container-decoded result for KindUnknown
	// values that are not themselves one of the above shapes (e.g. a JSON
	// object or array returned by a container, before any host code
	// narrows it back with a TypeConversion).
	Payload any
}

// Function is a closure: captured environment plus the lambda's
// parameters and body. A Function wrapping a standard-library or
// container-bridged builtin has Native set instead of a body/Env, and is
// invoked directly rather than by binding params into a child scope.
type Function struct {
	Name       string
	Params     []ast.LambdaParam
	ReturnType *types.Type
	BodyExpr   ast.Expression
	BodyStmts  []ast.Statement
	Env        Scope // the environment current when the lambda was declared

	Native func(ctx context.Context, args []Value) (Value, error)
}

// Scope is the minimal interface the values package needs from an
// environment, avoiding an import cycle with the interp package that owns
// the concrete Environment type.
type Scope interface {
	Get(name string) (Value, bool)
}

// Array is a resizable, homogeneously-typed sequence of values.
type Array struct {
	Elem     *types.Type
	Elements []Value
}

// Object is an ordered name→value mapping. Order is preserved for
// deterministic String()/JSON output and to round-trip container replies
// that carry field order.
type Object struct {
	keys   []string
	fields map[string]Value
}

// NewObject creates an empty ordered object.
func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// Get returns the value stored at name.
func (o *Object) Get(name string) (Value, bool) {
	v, ok := o.fields[name]
	return v, ok
}

// Set inserts or overwrites name, appending it to the key order the first
// time it is set.
func (o *Object) Set(name string, v Value) {
	if _, exists := o.fields[name]; !exists {
		o.keys = append(o.keys, name)
	}
	o.fields[name] = v
}

// Keys returns field names in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of fields.
func (o *Object) Len() int { return len(o.keys) }

// Constructors -------------------------------------------------------------

func Str(s string) Value   { return Value{Kind: KindStr, Str: s} }
func Int(i int64) Value    { return Value{Kind: KindInt, Int: i} }
func Dbl(d float64) Value  { return Value{Kind: KindDbl, Dbl: d} }
func Bool(b bool) Value    { return Value{Kind: KindBool, Bool: b} }
func Nil() Value           { return Value{Kind: KindNil} }
func Err(err error) Value  { return Value{Kind: KindErr, Err: err} }
func Func(f *Function) Value {
	return Value{Kind: KindFunc, Fn: f}
}
func Arr(a *Array) Value { return Value{Kind: KindArray, Arr: a} }
func Obj(o *Object) Value { return Value{Kind: KindObject, Obj: o} }

// Unknown wraps an opaque payload (typically a container's decoded JSON
// reply) as a KindUnknown value, produced by RuntimeLiteral evaluation.
func Unknown(payload any) Value { return Value{Kind: KindUnknown, Payload: payload} }

// Type returns the runtime value's static type descriptor.
func (v Value) Type() *types.Type {
	switch v.Kind {
	case KindStr:
		return types.TStr
	case KindInt:
		return types.TInt
	case KindDbl:
		return types.TDbl
	case KindBool:
		return types.TBool
	case KindNil:
		return types.TNil
	case KindFunc:
		return types.TFunc
	case KindErr:
		return types.TErr
	case KindArray:
		return types.ArrayOf(v.Arr.Elem)
	case KindObject:
		return types.TObj
	default:
		return types.TUnknown
	}
}

// Truthy implements the boolean-coercion rule used by TypeConversion to
// bool and by any place operators apply permissively to KindUnknown
// operands.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int != 0
	case KindDbl:
		return v.Dbl != 0
	case KindStr:
		return v.Str != ""
	case KindNil:
		return false
	case KindArray:
		return len(v.Arr.Elements) > 0
	case KindObject:
		return v.Obj.Len() > 0
	default:
		return v.Payload != nil
	}
}

// String renders a value for `print` and diagnostics.
func (v Value) String() string {
	switch v.Kind {
	case KindStr:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindDbl:
		return strconv.FormatFloat(v.Dbl, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNil:
		return "nil"
	case KindFunc:
		return "func " + v.Fn.Name
	case KindErr:
		return "error: " + v.Err.Error()
	case KindArray:
		parts := make([]string, len(v.Arr.Elements))
		for i, e := range v.Arr.Elements {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindObject:
		parts := make([]string, 0, v.Obj.Len())
		for _, k := range v.Obj.Keys() {
			fv, _ := v.Obj.Get(k)
			parts = append(parts, fmt.Sprintf("%s: %s", k, fv.String()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		if v.Payload != nil {
			return fmt.Sprintf("%v", v.Payload)
		}
		return "unknown"
	}
}
