package semantic

import (
	"github.com/qrailibs/lmlang/internal/ast"
	"github.com/qrailibs/lmlang/internal/types"
)

// Export is one module-level binding as seen from the importing side: its
// type, plus a Signature when it is a function (so a call through an
// imported name still gets arity/type checking, not just a bare `func`
// type).
type Export struct {
	Type      *types.Type
	Signature *types.Signature // nil unless Type is func
}

// ModuleLoader resolves an import path to the exported bindings of
// another scanned program. The Scanner injects a loader rather than
// reading files itself, so the same Scanner works whether imports come
// from a disk-backed package manager, an in-memory fixture, or a
// relative-path resolver rooted at the entrypoint.
type ModuleLoader interface {
	// Load returns every top-level `export`ed binding's name for the
	// module at path. It is called at most once per distinct path within
	// a single Scan — the Scanner caches results itself so import cycles
	// resolve to a (possibly partial) cached entry instead of recursing
	// forever.
	Load(path string) (map[string]Export, error)
}

// Scanner performs static analysis over a parsed Program: it builds a
// scope tree, infers every expression's type, and collects diagnostics
// for type mismatches, arity mismatches, and unresolved references,
// continuing after each one instead of aborting.
type Scanner struct {
	Modules  ModuleLoader
	Builtins map[string]*types.Signature // root-scope built-ins: name -> signature

	diags       []Diagnostic
	moduleCache map[string]map[string]Export
	inFlight    map[string]bool
}

// New creates a Scanner. modules may be nil if the program under scan
// never imports anything.
func New(modules ModuleLoader) *Scanner {
	return &Scanner{
		Modules:     modules,
		moduleCache: make(map[string]map[string]Export),
		inFlight:    make(map[string]bool),
	}
}

// WithBuiltins pre-populates the Scanner's root scope with the given
// name->signature bindings (the root scope is pre-populated with
// built-ins: str, int, double, print) so bare references to them resolve
// without an explicit import.
func (s *Scanner) WithBuiltins(builtins map[string]*types.Signature) *Scanner {
	s.Builtins = builtins
	return s
}

// Result is everything a successful Scan produces: the diagnostics found
// and the scope tree for tooling queries.
type Result struct {
	Diagnostics []Diagnostic
	Scopes      *ScopeTree
	Exports     map[string]*types.Type
	Signatures  map[string]*types.Signature // populated only for func-typed exports
}

// Scan analyzes prog and returns every diagnostic found plus the scope
// tree built along the way. It never returns early: a type error in one
// function does not prevent the rest of the program from being checked.
func (s *Scanner) Scan(prog *ast.Program) Result {
	root := newScope(nil, prog.Rng)
	for name, sig := range s.Builtins {
		root.defineFunc(name, sig)
	}
	s.hoistTopLevel(prog.Statements, root)
	for _, stmt := range prog.Statements {
		s.scanStmt(stmt, root)
	}

	exports := make(map[string]*types.Type)
	sigs := make(map[string]*types.Signature)
	for _, stmt := range prog.Statements {
		def, ok := stmt.(*ast.Def)
		if !ok || !def.Export {
			continue
		}
		if t, ok := root.lookup(def.Name); ok {
			exports[def.Name] = t
		}
		if sig, ok := root.lookupSignature(def.Name); ok {
			sigs[def.Name] = sig
		}
	}

	return Result{Diagnostics: s.diags, Scopes: &ScopeTree{root: root}, Exports: exports, Signatures: sigs}
}

func (s *Scanner) diag(d Diagnostic) {
	s.diags = append(s.diags, d)
}

// hoistTopLevel pre-binds every function-valued Def's name and signature
// type before scanning any body, so mutually recursive and forward-
// referencing function definitions resolve: function names are bound in
// their enclosing scope before their bodies are scanned.
func (s *Scanner) hoistTopLevel(stmts []ast.Statement, sc *scope) {
	for _, stmt := range stmts {
		def, ok := stmt.(*ast.Def)
		if !ok {
			continue
		}
		if lambda, ok := def.Value.(*ast.Lambda); ok {
			sc.defineFunc(def.Name, lambdaSignature(lambda))
		}
	}
}

func lambdaSignature(l *ast.Lambda) *types.Signature {
	sig := &types.Signature{ReturnType: l.ReturnType}
	for _, p := range l.Params {
		sig.Params = append(sig.Params, types.Param{
			Name: p.Name, Type: p.Type, Optional: p.Optional, Rest: p.Rest,
		})
	}
	return sig
}
