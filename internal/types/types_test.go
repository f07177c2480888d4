package types

import "testing"

func TestTypesMatchPrimitives(t *testing.T) {
	if !TypesMatch(TInt, TInt) {
		t.Fatalf("expected int to match int")
	}
	if TypesMatch(TInt, TDbl) {
		t.Fatalf("expected int not to widen to dbl")
	}
	if TypesMatch(TStr, TBool) {
		t.Fatalf("expected str and bool to mismatch")
	}
}

func TestTypesMatchUnknownIsCompatibleBothWays(t *testing.T) {
	if !TypesMatch(TUnknown, TStr) {
		t.Fatalf("expected unknown to match str")
	}
	if !TypesMatch(TInt, TUnknown) {
		t.Fatalf("expected int to match unknown")
	}
}

func TestTypesMatchArrays(t *testing.T) {
	if !TypesMatch(ArrayOf(TInt), ArrayOf(TInt)) {
		t.Fatalf("expected int[] to match int[]")
	}
	if TypesMatch(ArrayOf(TInt), ArrayOf(TStr)) {
		t.Fatalf("expected int[] not to match str[]")
	}
	if TypesMatch(ArrayOf(TInt), TInt) {
		t.Fatalf("expected int[] not to match int")
	}
}

func TestTypesMatchObjMatchesAnyStruct(t *testing.T) {
	s := StructOf(map[string]*Type{"x": TInt}, nil)
	if !TypesMatch(TObj, s) {
		t.Fatalf("expected obj to match any struct")
	}
	if !TypesMatch(s, TObj) {
		t.Fatalf("expected struct to match obj in either position")
	}
}

func TestTypesMatchStructsByFieldShape(t *testing.T) {
	a := StructOf(map[string]*Type{"x": TInt, "y": TStr}, nil)
	b := StructOf(map[string]*Type{"x": TInt, "y": TStr}, nil)
	c := StructOf(map[string]*Type{"x": TInt}, nil)
	d := StructOf(map[string]*Type{"x": TStr, "y": TStr}, nil)

	if !TypesMatch(a, b) {
		t.Fatalf("expected structurally identical structs to match")
	}
	if TypesMatch(a, c) {
		t.Fatalf("expected structs with different field counts to mismatch")
	}
	if TypesMatch(a, d) {
		t.Fatalf("expected structs with mismatched field types to mismatch")
	}
}

func TestTypesMatchNilIsNeverCompatible(t *testing.T) {
	if TypesMatch(nil, TInt) || TypesMatch(TInt, nil) {
		t.Fatalf("expected nil type to never match")
	}
}

func TestIsArrayIsStruct(t *testing.T) {
	arr := ArrayOf(TStr)
	if !arr.IsArray() || arr.IsStruct() {
		t.Fatalf("expected array type to report IsArray only")
	}
	s := StructOf(map[string]*Type{"x": TInt}, nil)
	if !s.IsStruct() || s.IsArray() {
		t.Fatalf("expected struct type to report IsStruct only")
	}
	if TInt.IsArray() || TInt.IsStruct() {
		t.Fatalf("expected primitive to report neither")
	}
}

func TestIsNumeric(t *testing.T) {
	if !TInt.IsNumeric() || !TDbl.IsNumeric() {
		t.Fatalf("expected int and dbl to be numeric")
	}
	if TStr.IsNumeric() || TBool.IsNumeric() {
		t.Fatalf("expected str and bool not to be numeric")
	}
	if ArrayOf(TInt).IsNumeric() {
		t.Fatalf("expected int[] not to be numeric")
	}
}

func TestTypeString(t *testing.T) {
	if TInt.String() != "int" {
		t.Fatalf("expected 'int', got %q", TInt.String())
	}
	if ArrayOf(TInt).String() != "int[]" {
		t.Fatalf("expected 'int[]', got %q", ArrayOf(TInt).String())
	}
	var nilType *Type
	if nilType.String() != "?" {
		t.Fatalf("expected '?' for nil type, got %q", nilType.String())
	}
}
