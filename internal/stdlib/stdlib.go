// Package stdlib is the read-only standard-library registry: a
// moduleName → exportName → {callable, signature} mapping the Scanner
// consults for non-relative import names and the Interpreter consults to
// bind the actual callables. Full standard-library module bodies are
// explicitly out of core scope; this package supplies only the
// root-scope built-ins (`str`, `int`, `double`, `print`) and a couple of
// representative modules to exercise the registry interface end to end.
package stdlib

import (
	"context"
	"fmt"

	"github.com/qrailibs/lmlang/internal/types"
	"github.com/qrailibs/lmlang/internal/values"
)

// Builtin is one standard-library export: its call signature plus the Go
// function that implements it.
type Builtin struct {
	Signature *types.Signature
	Call      func(ctx context.Context, args []values.Value) (values.Value, error)
}

// Registry is the read-only moduleName → exportName → Builtin table. The
// core never introspects a Builtin's Call body; it only invokes it and
// wraps the result as a values.Value.
type Registry struct {
	modules map[string]map[string]*Builtin
}

// Default builds the registry with the root-scope built-ins (`print`,
// `str`, `int`, `double` conversions) plus "math" and "strings" as
// representative standard-library modules.
func Default() *Registry {
	r := &Registry{modules: make(map[string]map[string]*Builtin)}
	r.modules[""] = rootBuiltins()
	r.modules["math"] = mathModule()
	r.modules["strings"] = stringsModule()
	return r
}

// Module returns the exports of a standard-library module by name, or
// false if no such module is registered. An empty name ("") denotes the
// always-present root-scope built-ins.
func (r *Registry) Module(name string) (map[string]*Builtin, bool) {
	m, ok := r.modules[name]
	return m, ok
}

// Signatures projects a module's Builtins down to just their Signatures,
// the shape the Scanner's ModuleLoader needs.
func Signatures(mod map[string]*Builtin) map[string]*types.Signature {
	out := make(map[string]*types.Signature, len(mod))
	for name, b := range mod {
		out[name] = b.Signature
	}
	return out
}

// Values projects a module's Builtins down to callable values.Value
// functions, the shape the Interpreter's global scope needs.
func Values(mod map[string]*Builtin) map[string]values.Value {
	out := make(map[string]values.Value, len(mod))
	for name, b := range mod {
		out[name] = values.Func(&values.Function{Name: name, Native: b.Call})
	}
	return out
}

// RootSignatures returns the root-scope built-ins' signatures (the root
// scope is pre-populated with str, int, double, print), the shape
// Scanner.WithBuiltins needs.
func (r *Registry) RootSignatures() map[string]*types.Signature {
	mod, _ := r.Module("")
	return Signatures(mod)
}

// RootValues returns the root-scope built-ins as callable values.Value
// functions, the shape Interpreter.WithBuiltins needs.
func (r *Registry) RootValues() map[string]values.Value {
	mod, _ := r.Module("")
	return Values(mod)
}

func rootBuiltins() map[string]*Builtin {
	return map[string]*Builtin{
		"print": {
			Signature: &types.Signature{
				Params:     []types.Param{{Name: "value", Type: types.TUnknown, Rest: true}},
				ReturnType: types.TVoid,
			},
			Call: func(_ context.Context, args []values.Value) (values.Value, error) {
				parts := make([]any, len(args))
				for i, a := range args {
					parts[i] = a.String()
				}
				fmt.Println(parts...)
				return values.Nil(), nil
			},
		},
		"str": {
			Signature: &types.Signature{
				Params:     []types.Param{{Name: "value", Type: types.TUnknown}},
				ReturnType: types.TStr,
			},
			Call: func(_ context.Context, args []values.Value) (values.Value, error) {
				return values.Str(args[0].String()), nil
			},
		},
		"int": {
			Signature: &types.Signature{
				Params:     []types.Param{{Name: "value", Type: types.TUnknown}},
				ReturnType: types.TInt,
			},
			Call: func(_ context.Context, args []values.Value) (values.Value, error) {
				return values.Int(toInt(args[0])), nil
			},
		},
		"double": {
			Signature: &types.Signature{
				Params:     []types.Param{{Name: "value", Type: types.TUnknown}},
				ReturnType: types.TDbl,
			},
			Call: func(_ context.Context, args []values.Value) (values.Value, error) {
				return values.Dbl(toFloat(args[0])), nil
			},
		},
	}
}
