package semantic

import (
	"github.com/qrailibs/lmlang/internal/ast"
	"github.com/qrailibs/lmlang/internal/token"
	"github.com/qrailibs/lmlang/internal/types"
)

// scope is one lexical level of the Scanner's scope tree: a flat name→type
// table plus a parent pointer and the source Range it covers, so
// GetScopeAt can walk it for tooling (hover/completion).
type scope struct {
	parent   *scope
	children []*scope
	rng      ast.Range
	vars     map[string]*types.Type
	sigs     map[string]*types.Signature // populated only for func-typed bindings
}

func newScope(parent *scope, rng ast.Range) *scope {
	s := &scope{
		parent: parent, rng: rng,
		vars: make(map[string]*types.Type),
		sigs: make(map[string]*types.Signature),
	}
	if parent != nil {
		parent.children = append(parent.children, s)
	}
	return s
}

func (s *scope) define(name string, t *types.Type) {
	s.vars[name] = t
}

func (s *scope) defineFunc(name string, sig *types.Signature) {
	s.vars[name] = types.TFunc
	s.sigs[name] = sig
}

func (s *scope) lookup(name string) (*types.Type, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (s *scope) lookupSignature(name string) (*types.Signature, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if sig, ok := cur.sigs[name]; ok {
			return sig, true
		}
		if _, ok := cur.vars[name]; ok {
			return nil, false // shadowed by a non-signature binding
		}
	}
	return nil, false
}

// ScopeTree is the root of the Scanner's scope structure, exposed so
// tooling can resolve "what bindings are visible at this position"
// queries via GetScopeAt.
type ScopeTree struct {
	root *scope
}

// GetScopeAt returns the name→type bindings visible at pos, walking from
// the innermost enclosing scope outward. In the returned map an inner
// binding replaces an outer one with the same name.
func (t *ScopeTree) GetScopeAt(pos token.Position) map[string]*types.Type {
	target := t.root
	for {
		next := findChildContaining(target, pos)
		if next == nil {
			break
		}
		target = next
	}

	out := make(map[string]*types.Type)
	var chain []*scope
	for cur := target; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for name, typ := range chain[i].vars {
			out[name] = typ
		}
	}
	return out
}

func findChildContaining(s *scope, pos token.Position) *scope {
	for _, c := range s.children {
		if c.rng.ContainsPos(pos) {
			return c
		}
	}
	return nil
}
