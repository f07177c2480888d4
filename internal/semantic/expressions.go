package semantic

import (
	"fmt"

	"github.com/qrailibs/lmlang/internal/ast"
	"github.com/qrailibs/lmlang/internal/types"
)

// scanExpr infers e's type, recording any diagnostic it finds along the
// way, and returns that type so callers (assignment, return, call-arg
// checks) can compare it against an expected type.
func (s *Scanner) scanExpr(e ast.Expression, sc *scope) *types.Type {
	switch ex := e.(type) {
	case *ast.IntLiteral:
		return types.TInt
	case *ast.DoubleLiteral:
		return types.TDbl
	case *ast.BoolLiteral:
		return types.TBool
	case *ast.StringLiteral:
		return types.TStr

	case *ast.ArrayLiteral:
		elem := types.TUnknown
		for i, el := range ex.Elements {
			t := s.scanExpr(el, sc)
			if i == 0 {
				elem = t
			} else if !types.TypesMatch(elem, t) {
				s.diag(Diagnostic{
					Message: fmt.Sprintf("array element %d has type %s, expected %s", i, t, elem),
					Pos:     el.Range().Start,
				})
			}
		}
		return types.ArrayOf(elem)

	case *ast.ObjectLiteral:
		fields := make(map[string]*types.Type, len(ex.Fields))
		for _, f := range ex.Fields {
			fields[f.Name] = s.scanExpr(f.Value, sc)
		}
		return types.StructOf(fields, nil)

	case *ast.VarReference:
		t, ok := sc.lookup(ex.Name)
		if !ok {
			s.diag(Diagnostic{Message: fmt.Sprintf("undefined variable %q", ex.Name), Pos: ex.Range().Start})
			return types.TUnknown
		}
		return t

	case *ast.Member:
		objType := s.scanExpr(ex.Object, sc)
		if objType.IsStruct() {
			if ft, ok := objType.Struct.Fields[ex.Name]; ok {
				return ft
			}
			s.diag(Diagnostic{Message: fmt.Sprintf("struct has no field %q", ex.Name), Pos: ex.Range().Start})
			return types.TUnknown
		}
		if objType.Primitive == types.Obj || objType.Primitive == types.Unknown {
			return types.TUnknown
		}
		s.diag(Diagnostic{Message: fmt.Sprintf("cannot access member %q on %s", ex.Name, objType), Pos: ex.Range().Start})
		return types.TUnknown

	case *ast.Index:
		objType := s.scanExpr(ex.Object, sc)
		idxType := s.scanExpr(ex.Index, sc)
		if !types.TypesMatch(idxType, types.TInt) {
			s.diag(Diagnostic{Message: fmt.Sprintf("array index must be int, got %s", idxType), Pos: ex.Index.Range().Start})
		}
		if objType.IsArray() {
			return objType.Array
		}
		if objType.Primitive == types.Unknown {
			return types.TUnknown
		}
		s.diag(Diagnostic{Message: fmt.Sprintf("cannot index %s", objType), Pos: ex.Range().Start})
		return types.TUnknown

	case *ast.Call:
		return s.scanCall(ex, sc)

	case *ast.Lambda:
		s.scanLambda(ex, sc)
		return types.TFunc

	case *ast.Binary:
		return s.scanBinary(ex, sc)

	case *ast.Unary:
		return s.scanUnary(ex, sc)

	case *ast.Update:
		t := s.scanExpr(ex.Operand, sc)
		if !t.IsNumeric() {
			s.diag(Diagnostic{Message: fmt.Sprintf("cannot increment/decrement %s", t), Pos: ex.Range().Start})
		}
		return t

	case *ast.TypeConversion:
		operand := s.scanExpr(ex.Operand, sc)
		target := ex.Target
		if !target.IsArray() && !target.IsStruct() && target.Primitive == types.Void {
			s.diag(Diagnostic{Message: "cannot convert to void", Pos: ex.Range().Start})
		} else if target.IsArray() && !operand.IsArray() && operand.Primitive != types.Unknown {
			s.diag(Diagnostic{Message: fmt.Sprintf("cannot convert %s to %s", operand, target), Pos: ex.Range().Start})
		}
		return ex.Target

	case *ast.TypeCheck:
		s.scanExpr(ex.Operand, sc)
		return types.TStr

	case *ast.RuntimeLiteral:
		for _, a := range ex.Attrs {
			s.scanExpr(a.Value, sc)
		}
		// A container's reply shape is unknown until it replies, so a
		// RuntimeLiteral is always statically typed `unknown`; callers
		// narrow it with a TypeConversion.
		return types.TUnknown

	default:
		s.diag(Diagnostic{Message: fmt.Sprintf("unsupported expression %T", e), Pos: e.Range().Start})
		return types.TUnknown
	}
}

func (s *Scanner) scanCall(call *ast.Call, sc *scope) *types.Type {
	calleeType := s.scanExpr(call.Callee, sc)
	argTypes := make([]*types.Type, len(call.Args))
	for i, a := range call.Args {
		argTypes[i] = s.scanExpr(a, sc)
	}

	ref, isVarRef := call.Callee.(*ast.VarReference)
	if !isVarRef {
		if calleeType != types.TFunc && calleeType.Primitive != types.Unknown {
			s.diag(Diagnostic{Message: fmt.Sprintf("cannot call %s", calleeType), Pos: call.Range().Start})
		}
		return types.TUnknown
	}

	sig, ok := sc.lookupSignature(ref.Name)
	if !ok {
		// A func-typed value without a known signature (e.g. stored in a
		// variable, passed as a parameter) cannot have its call checked
		// further; this is permissive by design, mirroring how `unknown`
		// operands are deferred to runtime.
		return types.TUnknown
	}
	s.checkArgs(call, sig, argTypes)
	if sig.ReturnType == nil {
		return types.TUnknown
	}
	return sig.ReturnType
}

func (s *Scanner) checkArgs(call *ast.Call, sig *types.Signature, argTypes []*types.Type) {
	minArgs := 0
	hasRest := false
	for _, p := range sig.Params {
		if p.Rest {
			hasRest = true
			continue
		}
		if !p.Optional {
			minArgs++
		}
	}
	if len(argTypes) < minArgs || (!hasRest && len(argTypes) > len(sig.Params)) {
		s.diag(Diagnostic{
			Message: fmt.Sprintf("call has %d argument(s), expected %d", len(argTypes), len(sig.Params)),
			Pos:     call.Range().Start,
		})
		return
	}
	for i, p := range sig.Params {
		if p.Rest {
			for j := i; j < len(argTypes); j++ {
				if !types.TypesMatch(argTypes[j], p.Type) {
					s.diag(Diagnostic{
						Message: fmt.Sprintf("argument %d has type %s, expected %s", j+1, argTypes[j], p.Type),
						Pos:     call.Args[j].Range().Start,
					})
				}
			}
			return
		}
		if i >= len(argTypes) {
			return // optional param not supplied
		}
		if !types.TypesMatch(argTypes[i], p.Type) {
			s.diag(Diagnostic{
				Message: fmt.Sprintf("argument %d has type %s, expected %s", i+1, argTypes[i], p.Type),
				Pos:     call.Args[i].Range().Start,
			})
		}
	}
}

func (s *Scanner) scanBinary(b *ast.Binary, sc *scope) *types.Type {
	left := s.scanExpr(b.Left, sc)
	right := s.scanExpr(b.Right, sc)

	switch b.Op {
	case ast.OpAnd, ast.OpOr:
		if !types.TypesMatch(left, types.TBool) {
			s.diag(Diagnostic{Message: fmt.Sprintf("logical operand must be bool, got %s", left), Pos: b.Left.Range().Start})
		}
		if !types.TypesMatch(right, types.TBool) {
			s.diag(Diagnostic{Message: fmt.Sprintf("logical operand must be bool, got %s", right), Pos: b.Right.Range().Start})
		}
		return types.TBool
	case ast.OpEq, ast.OpNotEq:
		return types.TBool
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if !left.IsNumeric() && left.Primitive != types.Unknown {
			s.diag(Diagnostic{Message: fmt.Sprintf("comparison operand must be numeric, got %s", left), Pos: b.Left.Range().Start})
		}
		if !right.IsNumeric() && right.Primitive != types.Unknown {
			s.diag(Diagnostic{Message: fmt.Sprintf("comparison operand must be numeric, got %s", right), Pos: b.Right.Range().Start})
		}
		return types.TBool
	case ast.OpAdd:
		if left.Primitive == types.Str && right.Primitive == types.Str {
			return types.TStr
		}
		return s.scanArithmetic(b, left, right)
	default:
		return s.scanArithmetic(b, left, right)
	}
}

func (s *Scanner) scanArithmetic(b *ast.Binary, left, right *types.Type) *types.Type {
	if left.Primitive == types.Unknown || right.Primitive == types.Unknown {
		return types.TUnknown
	}
	if !left.IsNumeric() {
		s.diag(Diagnostic{Message: fmt.Sprintf("arithmetic operand must be numeric, got %s", left), Pos: b.Left.Range().Start})
		return types.TUnknown
	}
	if !right.IsNumeric() {
		s.diag(Diagnostic{Message: fmt.Sprintf("arithmetic operand must be numeric, got %s", right), Pos: b.Right.Range().Start})
		return types.TUnknown
	}
	if left.Primitive == types.Dbl || right.Primitive == types.Dbl {
		return types.TDbl
	}
	return types.TInt
}

func (s *Scanner) scanUnary(u *ast.Unary, sc *scope) *types.Type {
	t := s.scanExpr(u.Operand, sc)
	switch u.Op {
	case ast.OpNot:
		return types.TBool
	case ast.OpNeg:
		if !t.IsNumeric() && t.Primitive != types.Unknown {
			s.diag(Diagnostic{Message: fmt.Sprintf("cannot negate %s", t), Pos: u.Range().Start})
		}
		return t
	case ast.OpPreInc, ast.OpPreDec:
		if !t.IsNumeric() {
			s.diag(Diagnostic{Message: fmt.Sprintf("cannot increment/decrement %s", t), Pos: u.Range().Start})
		}
		return t
	default:
		return types.TUnknown
	}
}
