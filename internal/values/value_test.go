package values

import (
	"context"
	"errors"
	"testing"

	"github.com/qrailibs/lmlang/internal/types"
)

func TestTypePerKind(t *testing.T) {
	cases := []struct {
		v    Value
		want *types.Type
	}{
		{Str("a"), types.TStr},
		{Int(1), types.TInt},
		{Dbl(1.5), types.TDbl},
		{Bool(true), types.TBool},
		{Nil(), types.TNil},
		{Func(&Function{Name: "f"}), types.TFunc},
		{Err(errors.New("boom")), types.TErr},
		{Obj(NewObject()), types.TObj},
	}
	for _, c := range cases {
		if got := c.v.Type(); got.String() != c.want.String() {
			t.Fatalf("Type() = %s, want %s", got, c.want)
		}
	}
}

func TestTypeOfArrayCarriesElemType(t *testing.T) {
	v := Arr(&Array{Elem: types.TInt, Elements: []Value{Int(1), Int(2)}})
	got := v.Type()
	if !got.IsArray() || got.Array.String() != "int" {
		t.Fatalf("expected int[], got %s", got)
	}
}

func TestTypeOfUnknown(t *testing.T) {
	v := Unknown(map[string]any{"a": 1})
	if v.Type() != types.TUnknown {
		t.Fatalf("expected TUnknown, got %s", v.Type())
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Bool(true), true},
		{Bool(false), false},
		{Int(0), false},
		{Int(5), true},
		{Dbl(0), false},
		{Dbl(0.1), true},
		{Str(""), false},
		{Str("x"), true},
		{Nil(), false},
		{Arr(&Array{}), false},
		{Arr(&Array{Elements: []Value{Int(1)}}), true},
	}
	for _, c := range cases {
		if got := c.v.Truthy(); got != c.want {
			t.Fatalf("Truthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestTruthyObject(t *testing.T) {
	empty := NewObject()
	if Obj(empty).Truthy() {
		t.Fatalf("expected empty object to be falsy")
	}
	full := NewObject()
	full.Set("a", Int(1))
	if !Obj(full).Truthy() {
		t.Fatalf("expected non-empty object to be truthy")
	}
}

func TestTruthyUnknownFollowsPayload(t *testing.T) {
	if Unknown(nil).Truthy() {
		t.Fatalf("expected nil-payload unknown to be falsy")
	}
	if !Unknown("x").Truthy() {
		t.Fatalf("expected non-nil-payload unknown to be truthy")
	}
}

func TestStringRendering(t *testing.T) {
	if Int(42).String() != "42" {
		t.Fatalf("expected '42', got %q", Int(42).String())
	}
	if Str("hi").String() != "hi" {
		t.Fatalf("expected 'hi', got %q", Str("hi").String())
	}
	if Bool(true).String() != "true" {
		t.Fatalf("expected 'true', got %q", Bool(true).String())
	}
	if Nil().String() != "nil" {
		t.Fatalf("expected 'nil', got %q", Nil().String())
	}
}

func TestStringRenderingArrayPreservesOrder(t *testing.T) {
	v := Arr(&Array{Elem: types.TInt, Elements: []Value{Int(1), Int(2), Int(3)}})
	if v.String() != "[1, 2, 3]" {
		t.Fatalf("expected '[1, 2, 3]', got %q", v.String())
	}
}

func TestObjectPreservesInsertionOrder(t *testing.T) {
	o := NewObject()
	o.Set("z", Int(1))
	o.Set("a", Int(2))
	o.Set("z", Int(3)) // overwrite, should not move position

	keys := o.Keys()
	if len(keys) != 2 || keys[0] != "z" || keys[1] != "a" {
		t.Fatalf("unexpected key order: %v", keys)
	}
	v, _ := o.Get("z")
	if v.Int != 3 {
		t.Fatalf("expected overwritten value 3, got %d", v.Int)
	}
}

func TestFunctionNativeDoesNotRequireEnv(t *testing.T) {
	fn := &Function{
		Name: "native-add",
		Native: func(_ context.Context, args []Value) (Value, error) {
			return Int(0), nil
		},
	}
	if fn.Env != nil {
		t.Fatalf("expected nil Env for a native-only function")
	}
}
