package stdlib

import (
	"context"
	"testing"

	"github.com/qrailibs/lmlang/internal/types"
	"github.com/qrailibs/lmlang/internal/values"
)

func TestDefaultRegistryModules(t *testing.T) {
	r := Default()
	for _, name := range []string{"", "math", "strings"} {
		if _, ok := r.Module(name); !ok {
			t.Fatalf("expected module %q to be registered", name)
		}
	}
	if _, ok := r.Module("nosuch"); ok {
		t.Fatalf("expected 'nosuch' to be unregistered")
	}
}

func TestRootPrintAcceptsVariadicValues(t *testing.T) {
	r := Default()
	root, _ := r.Module("")
	print, ok := root["print"]
	if !ok {
		t.Fatalf("expected root 'print' builtin")
	}
	if _, err := print.Call(context.Background(), []values.Value{values.Str("a"), values.Int(1)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !print.Signature.Params[0].Rest {
		t.Fatalf("expected print's sole param to be rest-typed")
	}
}

func TestRootStrConvertsAnyValueToString(t *testing.T) {
	r := Default()
	root, _ := r.Module("")
	str := root["str"]
	v, err := str.Call(context.Background(), []values.Value{values.Int(42)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != values.KindStr || v.Str != "42" {
		t.Fatalf("expected str(42) == \"42\", got %v", v)
	}
}

func TestRootIntTruncatesDouble(t *testing.T) {
	r := Default()
	root, _ := r.Module("")
	v, err := root["int"].Call(context.Background(), []values.Value{values.Dbl(3.9)})
	if err != nil || v.Int != 3 {
		t.Fatalf("expected int(3.9) == 3, got %v err=%v", v, err)
	}
}

func TestRootDoubleWidensInt(t *testing.T) {
	r := Default()
	root, _ := r.Module("")
	v, err := root["double"].Call(context.Background(), []values.Value{values.Int(3)})
	if err != nil || v.Dbl != 3 {
		t.Fatalf("expected double(3) == 3.0, got %v err=%v", v, err)
	}
}

func TestRegistryRootSignaturesAndValues(t *testing.T) {
	r := Default()
	sigs := r.RootSignatures()
	if _, ok := sigs["print"]; !ok {
		t.Fatalf("expected 'print' among root signatures, got %v", sigs)
	}
	vals := r.RootValues()
	print, ok := vals["print"]
	if !ok || print.Fn == nil || print.Fn.Native == nil {
		t.Fatalf("expected 'print' among root values as a native function, got %v ok=%v", print, ok)
	}
}

func TestMathModule(t *testing.T) {
	r := Default()
	math, _ := r.Module("math")

	sqrt := math["sqrt"]
	v, err := sqrt.Call(context.Background(), []values.Value{values.Dbl(9)})
	if err != nil || v.Dbl != 3 {
		t.Fatalf("expected sqrt(9) = 3, got %v err=%v", v, err)
	}

	abs := math["abs"]
	v, err = abs.Call(context.Background(), []values.Value{values.Dbl(-4.5)})
	if err != nil || v.Dbl != 4.5 {
		t.Fatalf("expected abs(-4.5) = 4.5, got %v err=%v", v, err)
	}

	floor := math["floor"]
	v, err = floor.Call(context.Background(), []values.Value{values.Dbl(3.9)})
	if err != nil || v.Int != 3 {
		t.Fatalf("expected floor(3.9) = 3, got %v err=%v", v, err)
	}
}

func TestMathModuleAcceptsIntArgsToo(t *testing.T) {
	r := Default()
	math, _ := r.Module("math")
	sqrt := math["sqrt"]
	v, err := sqrt.Call(context.Background(), []values.Value{values.Int(16)})
	if err != nil || v.Dbl != 4 {
		t.Fatalf("expected sqrt(16) = 4, got %v err=%v", v, err)
	}
}

func TestStringsModule(t *testing.T) {
	r := Default()
	strs, _ := r.Module("strings")

	upper := strs["upper"]
	v, err := upper.Call(context.Background(), []values.Value{values.Str("hi")})
	if err != nil || v.Str != "HI" {
		t.Fatalf("expected upper('hi') = 'HI', got %v err=%v", v, err)
	}

	lower := strs["lower"]
	v, err = lower.Call(context.Background(), []values.Value{values.Str("HI")})
	if err != nil || v.Str != "hi" {
		t.Fatalf("expected lower('HI') = 'hi', got %v err=%v", v, err)
	}

	split := strs["split"]
	v, err = split.Call(context.Background(), []values.Value{values.Str("a,b,c"), values.Str(",")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Arr.Elements) != 3 || v.Arr.Elements[1].Str != "b" {
		t.Fatalf("expected ['a','b','c'], got %v", v.Arr.Elements)
	}
}

func TestSignaturesProjection(t *testing.T) {
	r := Default()
	math, _ := r.Module("math")
	sigs := Signatures(math)
	if len(sigs) != len(math) {
		t.Fatalf("expected a signature entry for every builtin")
	}
	if sigs["sqrt"].ReturnType != types.TDbl {
		t.Fatalf("expected sqrt's signature return type to be dbl")
	}
}
