// Package modules resolves lml import paths: `.`-prefixed paths go
// through an embedder-supplied source Resolver and are parsed, scanned,
// and (on demand) executed recursively with per-path caching; all other
// names are looked up in the standard-library Registry.
package modules

import (
	"context"
	"fmt"
	"strings"

	"github.com/qrailibs/lmlang/internal/ast"
	"github.com/qrailibs/lmlang/internal/interp"
	"github.com/qrailibs/lmlang/internal/lexer"
	"github.com/qrailibs/lmlang/internal/parser"
	"github.com/qrailibs/lmlang/internal/semantic"
	"github.com/qrailibs/lmlang/internal/stdlib"
	"github.com/qrailibs/lmlang/internal/types"
	"github.com/qrailibs/lmlang/internal/values"
)

// Resolver is the embedder-supplied callback that turns a relative import
// path into source text: `(importPath, basePath) → string|null`, modeled
// here as a (source, found) pair instead of a nullable string.
type Resolver interface {
	Resolve(importPath, basePath string) (source string, found bool)
}

// Loader implements semantic.ModuleLoader directly; its Values() method
// returns an interp.ModuleLoader view backed by the same cache, so the
// Scanner's type-level pass and the Interpreter's value-level pass agree
// on module identity: imports are resolved against the same loader at
// both scan time and run time.
type Loader struct {
	Resolver Resolver
	Registry *stdlib.Registry
	BasePath string

	containers interp.ContainerRunner

	parsed  map[string]*ast.Program
	scanned map[string]semantic.Result
	execed  map[string]map[string]values.Value
}

// New creates a Loader rooted at basePath (the entrypoint's directory),
// resolving relative imports through resolver and non-relative imports
// against registry. containers is threaded through to every module's own
// Interpreter so embedded-code expressions inside imported modules reach
// the same orchestrator as the top-level program.
func New(resolver Resolver, registry *stdlib.Registry, basePath string, containers interp.ContainerRunner) *Loader {
	return &Loader{
		Resolver:   resolver,
		Registry:   registry,
		BasePath:   basePath,
		containers: containers,
		parsed:     make(map[string]*ast.Program),
		scanned:    make(map[string]semantic.Result),
		execed:     make(map[string]map[string]values.Value),
	}
}

func isRelative(path string) bool { return strings.HasPrefix(path, ".") }

// Load implements semantic.ModuleLoader: the exported bindings' static
// types (and signatures, for functions) for path.
func (l *Loader) Load(path string) (map[string]semantic.Export, error) {
	if !isRelative(path) {
		return l.loadStdlib(path)
	}
	result, err := l.scan(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]semantic.Export, len(result.Exports))
	for name, t := range result.Exports {
		out[name] = semantic.Export{Type: t, Signature: result.Signatures[name]}
	}
	return out, nil
}

func (l *Loader) loadStdlib(moduleName string) (map[string]semantic.Export, error) {
	mod, ok := l.Registry.Module(moduleName)
	if !ok {
		return nil, fmt.Errorf("no standard-library module named %q", moduleName)
	}
	out := make(map[string]semantic.Export, len(mod))
	for name, b := range mod {
		out[name] = semantic.Export{Type: types.TFunc, Signature: b.Signature}
	}
	return out, nil
}

// scan parses and scans the module at path exactly once, caching the
// result so re-imports (diamonds) and cycles resolve without reparsing.
func (l *Loader) scan(path string) (semantic.Result, error) {
	if cached, ok := l.scanned[path]; ok {
		return cached, nil
	}
	prog, err := l.parse(path)
	if err != nil {
		return semantic.Result{}, err
	}
	l.scanned[path] = semantic.Result{} // breaks cycles: partial view while scanning
	sc := semantic.New(l).WithBuiltins(l.Registry.RootSignatures())
	result := sc.Scan(prog)
	l.scanned[path] = result
	return result, nil
}

func (l *Loader) parse(path string) (*ast.Program, error) {
	if cached, ok := l.parsed[path]; ok {
		return cached, nil
	}
	source, found := l.Resolver.Resolve(path, l.BasePath)
	if !found {
		return nil, fmt.Errorf("module not found: %s", path)
	}
	p := parser.New(lexer.New(source))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, errs[0]
	}
	l.parsed[path] = prog
	return prog, nil
}

// Values returns an interp.ModuleLoader view of l: importing a module at
// run time executes it (once per Loader instance, cached by path) and
// hands back its exported bindings as runtime values.
func (l *Loader) Values() interp.ModuleLoader {
	return valueLoader{l}
}

func (l *Loader) exec(ctx context.Context, path string) (map[string]values.Value, error) {
	if cached, ok := l.execed[path]; ok {
		return cached, nil
	}
	if !isRelative(path) {
		return l.execStdlib(path)
	}
	prog, err := l.parse(path)
	if err != nil {
		return nil, err
	}
	l.execed[path] = make(map[string]values.Value) // breaks cycles: partial view while running
	in := interp.New(l.containers, valueLoader{l}).WithBuiltins(l.Registry.RootValues())
	if err := in.Run(ctx, prog); err != nil {
		delete(l.execed, path)
		return nil, err
	}
	exports := make(map[string]values.Value)
	for _, stmt := range prog.Statements {
		def, ok := stmt.(*ast.Def)
		if !ok || !def.Export {
			continue
		}
		if v, ok := in.Global.Get(def.Name); ok {
			exports[def.Name] = v
		}
	}
	l.execed[path] = exports
	return exports, nil
}

func (l *Loader) execStdlib(moduleName string) (map[string]values.Value, error) {
	mod, ok := l.Registry.Module(moduleName)
	if !ok {
		return nil, fmt.Errorf("no standard-library module named %q", moduleName)
	}
	out := make(map[string]values.Value, len(mod))
	for name, b := range mod {
		builtin := b
		out[name] = values.Func(&values.Function{Name: name, Native: builtin.Call})
	}
	return out, nil
}

// valueLoader adapts Loader to interp.ModuleLoader (which takes no
// context); module execution triggered by an import always runs with a
// background context since the Interpreter interface offers none to pass
// through at import-resolution time.
type valueLoader struct{ l *Loader }

func (v valueLoader) Load(path string) (map[string]values.Value, error) {
	return v.l.exec(context.Background(), path)
}
