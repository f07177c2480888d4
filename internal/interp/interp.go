package interp

import (
	"context"

	"github.com/qrailibs/lmlang/internal/ast"
	"github.com/qrailibs/lmlang/internal/token"
	"github.com/qrailibs/lmlang/internal/types"
	"github.com/qrailibs/lmlang/internal/values"
)

// ContainerRunner is the subset of Orchestrator behavior the interpreter
// needs to evaluate a RuntimeLiteral: hand it a container name, source
// code, and an attribute bag, get back a decoded reply or an error. Kept
// as an interface here (rather than importing the orchestrator package
// directly) so the evaluator can be tested against a fake without
// spawning real child processes.
type ContainerRunner interface {
	Execute(ctx context.Context, container, code string, attrs map[string]values.Value) (any, error)
}

// ModuleLoader resolves an import path to an already-scanned program's
// exported bindings, mirroring the Scanner's own loader injection so the
// Interpreter and Scanner agree on module identity and caching.
type ModuleLoader interface {
	Load(path string) (map[string]values.Value, error)
}

// Interpreter walks a scanned AST, evaluating statements against an
// Environment and dispatching RuntimeLiteral nodes to a ContainerRunner.
type Interpreter struct {
	Containers ContainerRunner
	Modules    ModuleLoader
	Global     *Environment
}

// New creates an Interpreter with a fresh global scope.
func New(containers ContainerRunner, modules ModuleLoader) *Interpreter {
	return &Interpreter{Containers: containers, Modules: modules, Global: NewEnvironment()}
}

// WithBuiltins defines each name->value pair directly into the
// Interpreter's global scope (the root scope is pre-populated with
// built-ins: str, int, double, print), so bare references to them
// resolve without an explicit import. Returns in for chaining.
func (in *Interpreter) WithBuiltins(builtins map[string]values.Value) *Interpreter {
	for name, v := range builtins {
		in.Global.Define(name, v)
	}
	return in
}

// Run evaluates every top-level statement of prog in the Interpreter's
// global scope.
func (in *Interpreter) Run(ctx context.Context, prog *ast.Program) error {
	for _, stmt := range prog.Statements {
		if err := in.execStmt(ctx, stmt, in.Global); err != nil {
			if _, isReturn := err.(*returnSignal); isReturn {
				continue
			}
			return err
		}
	}
	return nil
}

func (in *Interpreter) execStmt(ctx context.Context, stmt ast.Statement, env *Environment) error {
	switch s := stmt.(type) {
	case *ast.Def:
		v, err := in.eval(ctx, s.Value, env)
		if err != nil {
			return err
		}
		env.Define(s.Name, v)
		return nil

	case *ast.Assignment:
		v, err := in.eval(ctx, s.Value, env)
		if err != nil {
			return err
		}
		return in.assign(ctx, s.Target, v, env)

	case *ast.If:
		cond, err := in.eval(ctx, s.Cond, env)
		if err != nil {
			return err
		}
		if cond.Truthy() {
			return in.execStmt(ctx, s.Then, env)
		} else if s.Else != nil {
			return in.execStmt(ctx, s.Else, env)
		}
		return nil

	case *ast.Block:
		child := env.Child()
		for _, inner := range s.Statements {
			if err := in.execStmt(ctx, inner, child); err != nil {
				return err
			}
		}
		return nil

	case *ast.Return:
		var v values.Value
		if s.Value != nil {
			var err error
			v, err = in.eval(ctx, s.Value, env)
			if err != nil {
				return err
			}
		}
		return &returnSignal{Value: v}

	case *ast.ExpressionStatement:
		_, err := in.eval(ctx, s.Expr, env)
		return err

	case *ast.Import:
		return in.execImport(s, env)

	default:
		return runtimeErrorf(stmt.Range().Start, "unsupported statement %T", stmt)
	}
}

func (in *Interpreter) execImport(s *ast.Import, env *Environment) error {
	if in.Modules == nil {
		return runtimeErrorf(s.Range().Start, "no module loader configured")
	}
	exports, err := in.Modules.Load(s.Path)
	if err != nil {
		return runtimeErrorf(s.Range().Start, "importing %q: %v", s.Path, err)
	}
	if s.Default != "" {
		v, ok := exports[s.Default]
		if !ok {
			return runtimeErrorf(s.Range().Start, "module %q has no export %q", s.Path, s.Default)
		}
		env.Define(s.Default, v)
		return nil
	}
	for _, spec := range s.Specifiers {
		v, ok := exports[spec.Name]
		if !ok {
			return runtimeErrorf(s.Range().Start, "module %q has no export %q", s.Path, spec.Name)
		}
		env.Define(spec.Alias, v)
	}
	return nil
}

// assign resolves an l-value and stores v into it.
func (in *Interpreter) assign(ctx context.Context, target ast.Expression, v values.Value, env *Environment) error {
	switch t := target.(type) {
	case *ast.VarReference:
		if err := env.Set(t.Name, v); err != nil {
			return runtimeErrorf(t.Range().Start, "%v", err)
		}
		return nil

	case *ast.Member:
		obj, err := in.eval(ctx, t.Object, env)
		if err != nil {
			return err
		}
		if obj.Kind != values.KindObject {
			return runtimeErrorf(t.Range().Start, "cannot assign member of non-object")
		}
		obj.Obj.Set(t.Name, v)
		return nil

	case *ast.Index:
		obj, err := in.eval(ctx, t.Object, env)
		if err != nil {
			return err
		}
		idx, err := in.eval(ctx, t.Index, env)
		if err != nil {
			return err
		}
		if obj.Kind != values.KindArray {
			return runtimeErrorf(t.Range().Start, "cannot index non-array")
		}
		i := int(idx.Int)
		if i < 0 || i >= len(obj.Arr.Elements) {
			return runtimeErrorf(t.Range().Start, "index %d out of range", i)
		}
		obj.Arr.Elements[i] = v
		return nil

	default:
		return runtimeErrorf(target.Range().Start, "invalid assignment target %T", target)
	}
}

// eval evaluates an expression to a Value. Errors returned here are either
// *RuntimeError or *returnSignal surfaced from a lambda body evaluated
// inline (arrow-form lambdas never contain return, so this path is for
// symmetry only).
func (in *Interpreter) eval(ctx context.Context, expr ast.Expression, env *Environment) (values.Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return values.Int(e.Value), nil
	case *ast.DoubleLiteral:
		return values.Dbl(e.Value), nil
	case *ast.BoolLiteral:
		return values.Bool(e.Value), nil
	case *ast.StringLiteral:
		return values.Str(e.Value), nil

	case *ast.ArrayLiteral:
		arr := &values.Array{Elem: types.TUnknown, Elements: make([]values.Value, 0, len(e.Elements))}
		for _, el := range e.Elements {
			v, err := in.eval(ctx, el, env)
			if err != nil {
				return values.Value{}, err
			}
			arr.Elements = append(arr.Elements, v)
		}
		if len(arr.Elements) > 0 {
			arr.Elem = arr.Elements[0].Type()
		}
		return values.Arr(arr), nil

	case *ast.ObjectLiteral:
		obj := values.NewObject()
		for _, f := range e.Fields {
			v, err := in.eval(ctx, f.Value, env)
			if err != nil {
				return values.Value{}, err
			}
			obj.Set(f.Name, v)
		}
		return values.Obj(obj), nil

	case *ast.VarReference:
		v, ok := env.Get(e.Name)
		if !ok {
			return values.Value{}, runtimeErrorf(e.Range().Start, "undefined variable %q", e.Name)
		}
		return v, nil

	case *ast.Member:
		obj, err := in.eval(ctx, e.Object, env)
		if err != nil {
			return values.Value{}, err
		}
		if obj.Kind != values.KindObject {
			return values.Value{}, runtimeErrorf(e.Range().Start, "cannot read member of non-object")
		}
		v, ok := obj.Obj.Get(e.Name)
		if !ok {
			return values.Value{}, runtimeErrorf(e.Range().Start, "object has no field %q", e.Name)
		}
		return v, nil

	case *ast.Index:
		return in.evalIndex(ctx, e, env)

	case *ast.Call:
		return in.evalCall(ctx, e, env)

	case *ast.Lambda:
		return values.Func(&values.Function{
			Name:       e.Name,
			Params:     e.Params,
			ReturnType: e.ReturnType,
			BodyExpr:   e.BodyExpr,
			BodyStmts:  e.BodyStmts,
			Env:        env,
		}), nil

	case *ast.Binary:
		return in.evalBinary(ctx, e, env)

	case *ast.Unary:
		return in.evalUnary(ctx, e, env)

	case *ast.Update:
		return in.evalUpdate(ctx, e, env)

	case *ast.TypeConversion:
		v, err := in.eval(ctx, e.Operand, env)
		if err != nil {
			return values.Value{}, err
		}
		return convert(v, e.Target, e.Range().Start)

	case *ast.TypeCheck:
		v, err := in.eval(ctx, e.Operand, env)
		if err != nil {
			return values.Value{}, err
		}
		return values.Str(v.Type().String()), nil

	case *ast.RuntimeLiteral:
		return in.evalRuntimeLiteral(ctx, e, env)

	default:
		return values.Value{}, runtimeErrorf(expr.Range().Start, "unsupported expression %T", expr)
	}
}

func (in *Interpreter) evalIndex(ctx context.Context, e *ast.Index, env *Environment) (values.Value, error) {
	obj, err := in.eval(ctx, e.Object, env)
	if err != nil {
		return values.Value{}, err
	}
	idx, err := in.eval(ctx, e.Index, env)
	if err != nil {
		return values.Value{}, err
	}
	if obj.Kind != values.KindArray {
		return values.Value{}, runtimeErrorf(e.Range().Start, "cannot index non-array")
	}
	i := int(idx.Int)
	if i < 0 || i >= len(obj.Arr.Elements) {
		return values.Value{}, runtimeErrorf(e.Range().Start, "index %d out of range", i)
	}
	return obj.Arr.Elements[i], nil
}

func (in *Interpreter) evalCall(ctx context.Context, e *ast.Call, env *Environment) (values.Value, error) {
	callee, err := in.eval(ctx, e.Callee, env)
	if err != nil {
		return values.Value{}, err
	}
	if callee.Kind != values.KindFunc {
		return values.Value{}, runtimeErrorf(e.Range().Start, "cannot call non-function")
	}
	args := make([]values.Value, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := in.eval(ctx, a, env)
		if err != nil {
			return values.Value{}, err
		}
		args = append(args, v)
	}
	return in.callFunction(ctx, callee.Fn, args, e.Range().Start)
}

// callFunction invokes a closure: a fresh child scope of the function's
// captured environment (never the caller's), params bound positionally
// with the final rest param (if any) collecting remaining args into an
// array.
func (in *Interpreter) callFunction(ctx context.Context, fn *values.Function, args []values.Value, pos token.Position) (values.Value, error) {
	if fn.Native != nil {
		return fn.Native(ctx, args)
	}

	scope := fn.Env.(*Environment).Child()
	for i, p := range fn.Params {
		if p.Rest {
			rest := &values.Array{Elem: types.TUnknown, Elements: append([]values.Value{}, args[i:]...)}
			scope.Define(p.Name, values.Arr(rest))
			break
		}
		if i < len(args) {
			scope.Define(p.Name, args[i])
		} else if p.Optional {
			scope.Define(p.Name, values.Nil())
		} else {
			return values.Value{}, runtimeErrorf(pos, "missing argument %q", p.Name)
		}
	}

	if fn.BodyExpr != nil {
		return in.eval(ctx, fn.BodyExpr, scope)
	}

	for _, stmt := range fn.BodyStmts {
		err := in.execStmt(ctx, stmt, scope)
		if err == nil {
			continue
		}
		if ret, ok := err.(*returnSignal); ok {
			return ret.Value, nil
		}
		return values.Value{}, err
	}
	return values.Nil(), nil
}

func (in *Interpreter) evalRuntimeLiteral(ctx context.Context, e *ast.RuntimeLiteral, env *Environment) (values.Value, error) {
	if in.Containers == nil {
		return values.Value{}, runtimeErrorf(e.Range().Start, "no container runner configured")
	}
	attrs := make(map[string]values.Value, len(e.Attrs))
	for _, a := range e.Attrs {
		v, err := in.eval(ctx, a.Value, env)
		if err != nil {
			return values.Value{}, err
		}
		attrs[a.Name] = v
	}
	result, err := in.Containers.Execute(ctx, e.Container, e.RawCode, attrs)
	if err != nil {
		return values.Value{}, runtimeErrorf(e.Range().Start, "container %q: %v", e.Container, err)
	}
	return values.Unknown(result), nil
}

