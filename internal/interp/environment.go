// Package interp is the tree-walking evaluator: it runs a scanned AST
// against an Environment, dispatching RuntimeLiteral nodes to an
// Orchestrator-backed container.
package interp

import (
	"fmt"

	"github.com/qrailibs/lmlang/internal/values"
)

// Environment is a lexical scope: a flat variable map with a parent
// pointer. Lambdas capture the Environment pointer current at declaration
// time, not a copy, so closures observe later mutations of their
// enclosing scope.
type Environment struct {
	parent *Environment
	vars   map[string]values.Value
}

// NewEnvironment creates a root environment with no parent.
func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]values.Value)}
}

// Child creates a new scope nested under e, used for block bodies and
// function calls.
func (e *Environment) Child() *Environment {
	return &Environment{parent: e, vars: make(map[string]values.Value)}
}

// Get looks up name in e or any ancestor, satisfying values.Scope.
func (e *Environment) Get(name string) (values.Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return values.Value{}, false
}

// Define binds name in e's own scope, shadowing any outer binding of the
// same name.
func (e *Environment) Define(name string, v values.Value) {
	e.vars[name] = v
}

// Set assigns to the nearest enclosing scope that already defines name. It
// reports an error if name was never defined — lml has no implicit
// globals, every binding starts with a typed Def.
func (e *Environment) Set(name string, v values.Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = v
			return nil
		}
	}
	return fmt.Errorf("undefined variable %q", name)
}
