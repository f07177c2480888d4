package parser

import (
	"strconv"

	"github.com/qrailibs/lmlang/internal/ast"
	"github.com/qrailibs/lmlang/internal/token"
)

// precedence levels, weakest to strongest.
type precedence int

const (
	precLowest precedence = iota
	precOr                // ||
	precAnd               // &&
	precEquality          // == !=
	precRelational        // < <= > >=
	precAdditive          // + -
	precMultiplicative     // * / %
	precConversion        // ~ (right-assoc)
	precUnary             // prefix ! ++ -- typeof
	precPostfix           // call / member / index / ++ / --
)

var binPrec = map[token.Kind]precedence{
	token.Or:      precOr,
	token.And:     precAnd,
	token.Eq:      precEquality,
	token.NotEq:   precEquality,
	token.Lt:      precRelational,
	token.Le:      precRelational,
	token.Gt:      precRelational,
	token.Ge:      precRelational,
	token.Plus:    precAdditive,
	token.Minus:   precAdditive,
	token.Star:    precMultiplicative,
	token.Slash:   precMultiplicative,
	token.Percent: precMultiplicative,
}

var binOps = map[token.Kind]ast.BinaryOp{
	token.Plus:    ast.OpAdd,
	token.Minus:   ast.OpSub,
	token.Star:    ast.OpMul,
	token.Slash:   ast.OpDiv,
	token.Percent: ast.OpMod,
	token.Eq:      ast.OpEq,
	token.NotEq:   ast.OpNotEq,
	token.Lt:      ast.OpLt,
	token.Le:      ast.OpLe,
	token.Gt:      ast.OpGt,
	token.Ge:      ast.OpGe,
	token.And:     ast.OpAnd,
	token.Or:      ast.OpOr,
}

// parseExpression implements precedence-climbing over the binary operator
// table, with `~` handled separately as a right-associative postfix-ish
// conversion operator above additive/multiplicative but below prefix ops.
func (p *Parser) parseExpression(minPrec precedence) ast.Expression {
	left := p.parseUnary()

	for {
		if p.check(token.Tilde) {
			p.advance()
			target := p.parseType()
			left = &ast.TypeConversion{
				Base:    bse(left.Range().Start, p.prevEndOr(left)),
				Operand: left,
				Target:  target,
			}
			continue
		}

		prec, ok := binPrec[p.peek().Kind]
		if !ok || prec < minPrec {
			return left
		}
		opTok := p.advance()
		right := p.parseExpression(prec + 1)
		left = &ast.Binary{
			Base:  bse(left.Range().Start, right.Range().End),
			Op:    binOps[opTok.Kind],
			Left:  left,
			Right: right,
		}
	}
}

// prevEndOr returns the position just consumed, falling back to e's own
// end when nothing has been consumed since (defensive for degenerate
// conversions with no further tokens).
func (p *Parser) prevEndOr(e ast.Expression) token.Position {
	if p.cur > 0 {
		return p.buf[p.cur-1].Pos
	}
	return e.Range().End
}

func (p *Parser) parseUnary() ast.Expression {
	switch p.peek().Kind {
	case token.Not:
		start := p.advance().Pos
		operand := p.parseUnary()
		return &ast.Unary{Base: bse(start, operand.Range().End), Op: ast.OpNot, Operand: operand}
	case token.Minus:
		start := p.advance().Pos
		operand := p.parseUnary()
		return &ast.Unary{Base: bse(start, operand.Range().End), Op: ast.OpNeg, Operand: operand}
	case token.Inc:
		start := p.advance().Pos
		operand := p.parseUnary()
		return &ast.Unary{Base: bse(start, operand.Range().End), Op: ast.OpPreInc, Operand: operand}
	case token.Dec:
		start := p.advance().Pos
		operand := p.parseUnary()
		return &ast.Unary{Base: bse(start, operand.Range().End), Op: ast.OpPreDec, Operand: operand}
	case token.KwTypeof:
		start := p.advance().Pos
		operand := p.parseUnary()
		return &ast.TypeCheck{Base: bse(start, operand.Range().End), Operand: operand}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch p.peek().Kind {
		case token.Dot:
			p.advance()
			name := p.expect(token.Ident).Literal
			expr = &ast.Member{Base: bse(expr.Range().Start, p.buf[p.cur-1].Pos), Object: expr, Name: name}
		case token.LBracket:
			p.advance()
			idx := p.parseExpression(precLowest)
			end := p.expect(token.RBracket).Pos
			expr = &ast.Index{Base: bse(expr.Range().Start, end), Object: expr, Index: idx}
		case token.LParen:
			p.advance()
			var args []ast.Expression
			for !p.check(token.RParen) && !p.failed() {
				args = append(args, p.parseExpression(precLowest))
				if p.check(token.Comma) {
					p.advance()
				} else {
					break
				}
			}
			end := p.expect(token.RParen).Pos
			expr = &ast.Call{Base: bse(expr.Range().Start, end), Callee: expr, Args: args}
		case token.Inc:
			end := p.advance().Pos
			expr = &ast.Update{Base: bse(expr.Range().Start, end), Op: ast.OpPostInc, Operand: expr}
		case token.Dec:
			end := p.advance().Pos
			expr = &ast.Update{Base: bse(expr.Range().Start, end), Op: ast.OpPostDec, Operand: expr}
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.peek()
	switch tok.Kind {
	case token.Int:
		p.advance()
		v, _ := strconv.ParseInt(tok.Literal, 10, 64)
		return &ast.IntLiteral{Base: bse(tok.Pos, tok.Pos), Value: v}
	case token.Double:
		p.advance()
		v, _ := strconv.ParseFloat(tok.Literal, 64)
		return &ast.DoubleLiteral{Base: bse(tok.Pos, tok.Pos), Value: v}
	case token.String:
		p.advance()
		return &ast.StringLiteral{Base: bse(tok.Pos, tok.Pos), Value: tok.Literal}
	case token.KwTrue:
		p.advance()
		return &ast.BoolLiteral{Base: bse(tok.Pos, tok.Pos), Value: true}
	case token.KwFalse:
		p.advance()
		return &ast.BoolLiteral{Base: bse(tok.Pos, tok.Pos), Value: false}
	case token.Ident:
		p.advance()
		return &ast.VarReference{Base: bse(tok.Pos, tok.Pos), Name: tok.Literal}
	case token.LBracket:
		return p.parseArrayLiteral()
	case token.LBrace:
		return p.parseObjectLiteral()
	case token.LParen:
		return p.parseParenOrLambda()
	case token.Lt:
		return p.parseRuntimeLiteral()
	default:
		p.fail("unexpected token " + tok.Kind.String() + " " + strconv.Quote(tok.Literal))
		p.advance()
		return &ast.VarReference{Base: bse(tok.Pos, tok.Pos), Name: "<error>"}
	}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	start := p.advance().Pos // '['
	var elems []ast.Expression
	for !p.check(token.RBracket) && !p.failed() {
		elems = append(elems, p.parseExpression(precLowest))
		if p.check(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	end := p.expect(token.RBracket).Pos
	return &ast.ArrayLiteral{Base: bse(start, end), Elements: elems}
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	start := p.advance().Pos // '{'
	var fields []ast.ObjectField
	for !p.check(token.RBrace) && !p.failed() {
		name := p.expect(token.Ident).Literal
		p.expect(token.Colon)
		value := p.parseExpression(precLowest)
		fields = append(fields, ast.ObjectField{Name: name, Value: value})
		if p.check(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	end := p.expect(token.RBrace).Pos
	return &ast.ObjectLiteral{Base: bse(start, end), Fields: fields}
}

// parseParenOrLambda implements a two-token lookahead:
// `(` begins a lambda parameter list when immediately followed by `)` or by
// a type keyword then an identifier; otherwise it is a parenthesized
// expression.
func (p *Parser) parseParenOrLambda() ast.Expression {
	start := p.peek().Pos
	if p.looksLikeLambdaParams() {
		return p.parseLambdaLiteral()
	}

	p.advance() // '('
	inner := p.parseExpression(precLowest)
	p.expect(token.RParen)
	// Preserve the outer parens in the range so tooling sees the grouping,
	// without introducing a dedicated Paren node (the grammar has none).
	inner = rerange(inner, start, p.buf[p.cur-1].Pos)
	return inner
}

func rerange(e ast.Expression, start, end token.Position) ast.Expression {
	switch v := e.(type) {
	case *ast.IntLiteral:
		v.Rng = ast.Range{Start: start, End: end}
	case *ast.DoubleLiteral:
		v.Rng = ast.Range{Start: start, End: end}
	case *ast.StringLiteral:
		v.Rng = ast.Range{Start: start, End: end}
	case *ast.BoolLiteral:
		v.Rng = ast.Range{Start: start, End: end}
	case *ast.VarReference:
		v.Rng = ast.Range{Start: start, End: end}
	case *ast.Binary:
		v.Rng = ast.Range{Start: start, End: end}
	case *ast.Unary:
		v.Rng = ast.Range{Start: start, End: end}
	case *ast.Call:
		v.Rng = ast.Range{Start: start, End: end}
	case *ast.Member:
		v.Rng = ast.Range{Start: start, End: end}
	case *ast.Index:
		v.Rng = ast.Range{Start: start, End: end}
	case *ast.TypeConversion:
		v.Rng = ast.Range{Start: start, End: end}
	case *ast.TypeCheck:
		v.Rng = ast.Range{Start: start, End: end}
	case *ast.ArrayLiteral:
		v.Rng = ast.Range{Start: start, End: end}
	case *ast.ObjectLiteral:
		v.Rng = ast.Range{Start: start, End: end}
	case *ast.Update:
		v.Rng = ast.Range{Start: start, End: end}
	case *ast.Lambda:
		v.Rng = ast.Range{Start: start, End: end}
	case *ast.RuntimeLiteral:
		v.Rng = ast.Range{Start: start, End: end}
	}
	return e
}

// looksLikeLambdaParams performs the bounded two-token lookahead: it never
// consumes input.
func (p *Parser) looksLikeLambdaParams() bool {
	if p.peek().Kind != token.LParen {
		return false
	}
	if p.peek2().Kind == token.RParen {
		return true
	}
	return token.IsTypeKeyword(p.peek2().Kind) && p.peekN(2).Kind == token.Ident
}

// parseLambdaLiteral parses `(params): RetType => expr` or
// `(params): RetType { stmts }`.
func (p *Parser) parseLambdaLiteral() ast.Expression {
	start := p.peek().Pos
	params := p.parseParamList()
	p.expect(token.Colon)
	retType := p.parseType()

	lambda := &ast.Lambda{Params: params, ReturnType: retType}
	if p.check(token.Arrow) {
		p.advance()
		body := p.parseExpression(precLowest)
		lambda.BodyExpr = body
		lambda.Rng = ast.Range{Start: start, End: body.Range().End}
	} else {
		body := p.parseBlock()
		lambda.BodyStmts = body.Statements
		lambda.Rng = ast.Range{Start: start, End: body.Range().End}
	}
	return lambda
}

// parseParamList parses `(T1 name1, ...T2 rest)`. A parameter is
// rest-typed when its name begins with `...`, lexed as three consecutive
// Dot tokens; at most one rest may appear and it must be last (the Scanner
// rejects violations). The grammar's punctuation set has no `?` token, so
// `optional` params have no surface syntax here — they only appear on
// signatures the standard-library registry constructs directly in Go.
func (p *Parser) parseParamList() []ast.LambdaParam {
	p.expect(token.LParen)
	var params []ast.LambdaParam
	for !p.check(token.RParen) && !p.failed() {
		rest := p.consumeEllipsis()
		typ := p.parseType()
		name := p.expect(token.Ident).Literal
		params = append(params, ast.LambdaParam{Name: name, Type: typ, Rest: rest})
		if p.check(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RParen)
	return params
}

// consumeEllipsis consumes a leading `...` (three Dot tokens) if present.
func (p *Parser) consumeEllipsis() bool {
	if p.check(token.Dot) && p.peek2().Kind == token.Dot && p.peekN(2).Kind == token.Dot {
		p.advance()
		p.advance()
		p.advance()
		return true
	}
	return false
}

// parseRuntimeLiteral parses `<name attr={expr} …> RAW </name>`.
func (p *Parser) parseRuntimeLiteral() ast.Expression {
	start := p.expect(token.Lt).Pos
	name := p.expect(token.Ident).Literal

	lit := &ast.RuntimeLiteral{Container: name}
	for p.check(token.Ident) {
		attrName := p.advance().Literal
		p.expect(token.Assign)
		p.expect(token.LBrace)
		value := p.parseExpression(precLowest)
		p.expect(token.RBrace)
		lit.Attrs = append(lit.Attrs, ast.ObjectField{Name: attrName, Value: value})
	}
	p.expect(token.Gt)

	bodyTok := p.expect(token.TagBody)
	lit.RawCode = bodyTok.Literal

	// The lexer's tag-body state machine only confirms name-character
	// equality; parseRuntimeLiteral must still reject a mismatched closer
	// for a non-trivial name, but since the lexer already scanned forward
	// to the matching `</name>` for the *opened* name, a mismatch can only
	// manifest as running to EOF. Treat an EOF-terminated body as a syntax
	// error naming the expected closing tag.
	if p.check(token.EOF) && bodyTok.Literal == "" {
		p.fail("unterminated runtime literal, expected </" + name + ">")
	}

	end := bodyTok.Pos
	lit.Rng = ast.Range{Start: start, End: end}
	return lit
}
