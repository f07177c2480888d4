package semantic

import (
	"fmt"

	"github.com/qrailibs/lmlang/internal/ast"
	"github.com/qrailibs/lmlang/internal/types"
)

func (s *Scanner) scanStmt(stmt ast.Statement, sc *scope) {
	switch st := stmt.(type) {
	case *ast.Def:
		s.scanDef(st, sc)

	case *ast.Assignment:
		targetType := s.scanExpr(st.Target, sc)
		valueType := s.scanExpr(st.Value, sc)
		if !types.TypesMatch(targetType, valueType) {
			s.diag(Diagnostic{
				Message: fmt.Sprintf("cannot assign %s to %s", valueType, targetType),
				Pos:     st.Value.Range().Start,
			})
		}

	case *ast.If:
		condType := s.scanExpr(st.Cond, sc)
		if !types.TypesMatch(condType, types.TBool) {
			s.diag(Diagnostic{
				Message: fmt.Sprintf("if condition must be bool, got %s", condType),
				Pos:     st.Cond.Range().Start,
			})
		}
		s.scanStmt(st.Then, sc)
		if st.Else != nil {
			s.scanStmt(st.Else, sc)
		}

	case *ast.Block:
		child := newScope(sc, st.Rng)
		s.hoistTopLevel(st.Statements, child)
		for _, inner := range st.Statements {
			s.scanStmt(inner, child)
		}

	case *ast.Return:
		if st.Value != nil {
			s.scanExpr(st.Value, sc)
		}

	case *ast.ExpressionStatement:
		s.scanExpr(st.Expr, sc)

	case *ast.Import:
		s.scanImport(st, sc)

	default:
		s.diag(Diagnostic{Message: fmt.Sprintf("unsupported statement %T", stmt), Pos: stmt.Range().Start})
	}
}

func (s *Scanner) scanDef(def *ast.Def, sc *scope) {
	if lambda, ok := def.Value.(*ast.Lambda); ok {
		// Already hoisted by hoistTopLevel in the enclosing scope; still
		// scan the body so nested diagnostics surface.
		if _, known := sc.lookupSignature(def.Name); !known {
			sc.defineFunc(def.Name, lambdaSignature(lambda))
		}
		s.scanLambda(lambda, sc)
		return
	}

	valueType := s.scanExpr(def.Value, sc)
	if !types.TypesMatch(def.DeclType, valueType) {
		d := Diagnostic{
			Message: fmt.Sprintf("cannot assign %s to declared type %s", valueType, def.DeclType),
			Pos:     def.Value.Range().Start,
		}
		if types.TypesMatch(def.DeclType, types.TDbl) && types.TypesMatch(valueType, types.TInt) {
			d.Hint = "int does not widen to dbl; convert it with double(...)"
		}
		s.diag(d)
	}
	sc.define(def.Name, def.DeclType)
}

func (s *Scanner) scanLambda(l *ast.Lambda, sc *scope) *types.Signature {
	bodyScope := newScope(sc, l.Range())
	for i, p := range l.Params {
		if p.Rest && i != len(l.Params)-1 {
			s.diag(Diagnostic{Message: fmt.Sprintf("rest parameter %q must be the last parameter", p.Name), Pos: l.Range().Start})
		}
		bodyScope.define(p.Name, p.Type)
	}

	if l.BodyExpr != nil {
		retType := s.scanExpr(l.BodyExpr, bodyScope)
		if l.ReturnType != types.TVoid && !types.TypesMatch(retType, l.ReturnType) {
			s.diag(Diagnostic{
				Message: fmt.Sprintf("function body returns %s, declared return type is %s", retType, l.ReturnType),
				Pos:     l.BodyExpr.Range().Start,
			})
		}
	} else {
		s.hoistTopLevel(l.BodyStmts, bodyScope)
		for _, stmt := range l.BodyStmts {
			s.scanStmt(stmt, bodyScope)
			if ret, ok := stmt.(*ast.Return); ok && ret.Value != nil {
				retType := s.exprType(ret.Value, bodyScope)
				if l.ReturnType != types.TVoid && !types.TypesMatch(retType, l.ReturnType) {
					s.diag(Diagnostic{
						Message: fmt.Sprintf("return type %s does not match declared return type %s", retType, l.ReturnType),
						Pos:     ret.Value.Range().Start,
					})
				}
			}
		}
	}
	return lambdaSignature(l)
}

// exprType infers an expression's type without re-emitting diagnostics
// already collected by an earlier scanExpr pass over the same node; used
// when a Return statement's value was already scanned as part of the
// statement loop.
func (s *Scanner) exprType(e ast.Expression, sc *scope) *types.Type {
	suppressed := len(s.diags)
	t := s.scanExpr(e, sc)
	s.diags = s.diags[:suppressed]
	return t
}

func (s *Scanner) scanImport(imp *ast.Import, sc *scope) {
	exports, err := s.loadModule(imp.Path)
	if err != nil {
		s.diag(Diagnostic{Message: fmt.Sprintf("importing %q: %v", imp.Path, err), Pos: imp.Range().Start})
		return
	}
	if imp.Default != "" {
		exp, ok := exports[imp.Default]
		if !ok {
			s.diag(Diagnostic{Message: fmt.Sprintf("module %q has no export %q", imp.Path, imp.Default), Pos: imp.Range().Start})
			return
		}
		bindExport(sc, imp.Default, exp)
		return
	}
	for _, spec := range imp.Specifiers {
		exp, ok := exports[spec.Name]
		if !ok {
			s.diag(Diagnostic{Message: fmt.Sprintf("module %q has no export %q", imp.Path, spec.Name), Pos: imp.Range().Start})
			continue
		}
		bindExport(sc, spec.Alias, exp)
	}
}

func bindExport(sc *scope, name string, exp Export) {
	if exp.Signature != nil {
		sc.defineFunc(name, exp.Signature)
		return
	}
	sc.define(name, exp.Type)
}

// loadModule resolves path through the injected ModuleLoader, caching by
// path so a diamond or cyclic import graph only loads each module once;
// a module still mid-load when re-requested (a true cycle) resolves to an
// empty export set rather than recursing.
func (s *Scanner) loadModule(path string) (map[string]Export, error) {
	if cached, ok := s.moduleCache[path]; ok {
		return cached, nil
	}
	if s.inFlight[path] {
		return map[string]Export{}, nil
	}
	if s.Modules == nil {
		return nil, fmt.Errorf("no module loader configured")
	}
	s.inFlight[path] = true
	exports, err := s.Modules.Load(path)
	delete(s.inFlight, path)
	if err != nil {
		return nil, err
	}
	s.moduleCache[path] = exports
	return exports, nil
}
