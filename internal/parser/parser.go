// Package parser implements lml's recursive-descent, precedence-climbing
// parser: tokens in, a typed AST out, failing at the first syntax error.
package parser

import (
	"fmt"

	"github.com/qrailibs/lmlang/internal/ast"
	"github.com/qrailibs/lmlang/internal/lexer"
	"github.com/qrailibs/lmlang/internal/token"
	"github.com/qrailibs/lmlang/internal/types"
)

// Error is a single syntax error carrying the offending token's location.
type Error struct {
	Message string
	Pos     token.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// Parser consumes a token stream produced by lexer.Lexer and builds an AST.
// It buffers tokens lazily to support the bounded lookahead the grammar
// needs (lambda-vs-parenthesized disambiguation, `=` detection after an
// expression statement).
type Parser struct {
	l      *lexer.Lexer
	buf    []token.Token
	cur    int
	errors []*Error
}

// New creates a Parser over the token stream produced by l.
func New(l *lexer.Lexer) *Parser {
	return &Parser{l: l}
}

// Errors returns all syntax errors accumulated before the parser aborted.
// The parser reports at most the first error: this slice has length 0 or 1.
func (p *Parser) Errors() []*Error { return p.errors }

func (p *Parser) fill(n int) {
	for len(p.buf) <= n {
		p.buf = append(p.buf, p.l.NextToken())
		if errs := p.l.Errors(); len(errs) > 0 && len(p.errors) == 0 {
			p.errors = append(p.errors, &Error{Message: errs[0].Message, Pos: errs[0].Pos})
		}
	}
}

func (p *Parser) peekN(n int) token.Token {
	p.fill(p.cur + n)
	return p.buf[p.cur+n]
}

func (p *Parser) peek() token.Token  { return p.peekN(0) }
func (p *Parser) peek2() token.Token { return p.peekN(1) }

func (p *Parser) advance() token.Token {
	tok := p.peek()
	p.cur++
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) fail(msg string) {
	if len(p.errors) == 0 {
		p.errors = append(p.errors, &Error{Message: msg, Pos: p.peek().Pos})
	}
}

// expect consumes the next token if it matches kind, or records a syntax
// error and returns the zero Token.
func (p *Parser) expect(kind token.Kind) token.Token {
	if p.check(kind) {
		return p.advance()
	}
	p.fail(fmt.Sprintf("expected %s, got %s %q", kind, p.peek().Kind, p.peek().Literal))
	return token.Token{}
}

func (p *Parser) failed() bool { return len(p.errors) > 0 }

// ParseProgram parses the whole token stream into a Program. Once a syntax
// error is recorded, parsing stops producing further statements.
func (p *Parser) ParseProgram() *ast.Program {
	start := p.peek().Pos
	prog := &ast.Program{}
	for !p.check(token.EOF) && !p.failed() {
		stmt := p.parseStatement()
		if stmt == nil {
			break
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	end := start
	if len(prog.Statements) > 0 {
		end = prog.Statements[len(prog.Statements)-1].Range().End
	}
	prog.Rng = ast.Range{Start: start, End: end}
	return prog
}

// ---- Statements -----------------------------------------------------------

func (p *Parser) parseStatement() ast.Statement {
	switch p.peek().Kind {
	case token.KwImport:
		return p.parseImport()
	case token.KwExport:
		return p.parseExportedDef()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwIf:
		return p.parseIf()
	case token.LBrace:
		return p.parseBlock()
	case token.KwFunc:
		return p.parseFunctionDecl()
	default:
		if token.IsTypeKeyword(p.peek().Kind) && p.peek().Kind != token.KwFunc {
			return p.parseDef(false)
		}
		return p.parseExpressionOrAssignment()
	}
}

func (p *Parser) parseImport() ast.Statement {
	start := p.advance().Pos // 'import'

	imp := &ast.Import{}
	if p.check(token.LBrace) {
		p.advance()
		for !p.check(token.RBrace) && !p.failed() {
			name := p.expect(token.Ident).Literal
			alias := name
			if p.check(token.Ident) && p.peek().Literal == "as" {
				p.advance()
				alias = p.expect(token.Ident).Literal
			}
			imp.Specifiers = append(imp.Specifiers, ast.ImportSpecifier{Name: name, Alias: alias})
			if p.check(token.Comma) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RBrace)
	} else {
		imp.Default = p.expect(token.Ident).Literal
	}

	p.expect(token.KwFrom)
	pathTok := p.expect(token.String)
	imp.Path = pathTok.Literal
	end := pathTok.Pos
	if p.check(token.Semicolon) {
		end = p.advance().Pos
	}
	imp.Rng = ast.Range{Start: start, End: end}
	return imp
}

func (p *Parser) parseExportedDef() ast.Statement {
	p.advance() // 'export'
	if p.check(token.KwFunc) {
		fn := p.parseFunctionDecl()
		if d, ok := fn.(*ast.Def); ok {
			d.Export = true
		}
		return fn
	}
	return p.parseDef(true)
}

// parseDef parses `T name = expr;`.
func (p *Parser) parseDef(exported bool) ast.Statement {
	start := p.peek().Pos
	declType := p.parseType()
	name := p.expect(token.Ident).Literal
	p.expect(token.Assign)
	value := p.parseExpression(precLowest)
	end := value.Range().End
	if p.check(token.Semicolon) {
		end = p.advance().Pos
	}
	return &ast.Def{
		Base:     bse(start, end),
		Name:     name,
		DeclType: declType,
		Value:    value,
		Export:   exported,
	}
}

// parseFunctionDecl parses `func name(params): RetType { body }` and
// desugars it into a Def binding a Lambda value.
func (p *Parser) parseFunctionDecl() ast.Statement {
	start := p.advance().Pos // 'func'
	name := p.expect(token.Ident).Literal
	params := p.parseParamList()
	p.expect(token.Colon)
	retType := p.parseType()
	body := p.parseBlock()

	lambda := &ast.Lambda{
		Base:       bse(start, body.Range().End),
		Name:       name,
		Params:     params,
		ReturnType: retType,
		BodyStmts:  body.Statements,
	}
	return &ast.Def{
		Base:     bse(lambda.Range().Start, lambda.Range().End),
		Name:     name,
		DeclType: types.TFunc,
		Value:    lambda,
	}
}

func (p *Parser) parseReturn() ast.Statement {
	start := p.advance().Pos // 'return'
	var value ast.Expression
	end := start
	if !p.check(token.Semicolon) && !p.check(token.RBrace) && !p.check(token.EOF) {
		value = p.parseExpression(precLowest)
		end = value.Range().End
	}
	if p.check(token.Semicolon) {
		end = p.advance().Pos
	}
	return &ast.Return{Base: bse(start, end), Value: value}
}

func (p *Parser) parseIf() ast.Statement {
	start := p.advance().Pos // 'if'
	p.expect(token.LParen)
	cond := p.parseExpression(precLowest)
	p.expect(token.RParen)
	then := p.parseBlock()
	end := then.Range().End

	var elseStmt ast.Statement
	if p.check(token.KwElse) {
		p.advance()
		if p.check(token.KwIf) {
			elseStmt = p.parseIf()
		} else {
			elseStmt = p.parseBlock()
		}
		end = elseStmt.Range().End
	}
	return &ast.If{Base: bse(start, end), Cond: cond, Then: then, Else: elseStmt}
}

func (p *Parser) parseBlock() *ast.Block {
	start := p.expect(token.LBrace).Pos
	block := &ast.Block{}
	for !p.check(token.RBrace) && !p.check(token.EOF) && !p.failed() {
		stmt := p.parseStatement()
		if stmt == nil {
			break
		}
		block.Statements = append(block.Statements, stmt)
	}
	end := p.expect(token.RBrace).Pos
	block.Rng = ast.Range{Start: start, End: end}
	return block
}

// parseExpressionOrAssignment parses an expression statement, rewriting it
// as an Assignment if a trailing `=` follows an l-value-shaped expression:
// assignment is parsed post-hoc rather than as its own grammar production.
func (p *Parser) parseExpressionOrAssignment() ast.Statement {
	start := p.peek().Pos
	expr := p.parseExpression(precLowest)

	if p.check(token.Assign) {
		if !isLValue(expr) {
			p.fail("invalid assignment target")
			return nil
		}
		p.advance() // '='
		value := p.parseExpression(precLowest)
		end := value.Range().End
		if p.check(token.Semicolon) {
			end = p.advance().Pos
		}
		return &ast.Assignment{Base: bse(start, end), Target: expr, Value: value}
	}

	end := expr.Range().End
	if p.check(token.Semicolon) {
		end = p.advance().Pos
	}
	return &ast.ExpressionStatement{Base: bse(start, end), Expr: expr}
}

func isLValue(e ast.Expression) bool {
	switch e.(type) {
	case *ast.VarReference, *ast.Member, *ast.Index:
		return true
	}
	return false
}

// ---- Types ------------------------------------------------------------

// parseType parses a type annotation: a primitive keyword, `array` (bare
// dynamic array of unknown), or a primitive/array suffixed with `[]` for
// array<T>. Angle-bracket generics (`array<T>`) are deliberately not used
// in concrete syntax: `<` is reserved for runtime-literal tag openers, so
// array types are written postfix as `T[]`.
func (p *Parser) parseType() *types.Type {
	var base *types.Type
	switch p.peek().Kind {
	case token.KwStr:
		p.advance()
		base = types.TStr
	case token.KwInt:
		p.advance()
		base = types.TInt
	case token.KwDbl:
		p.advance()
		base = types.TDbl
	case token.KwBool:
		p.advance()
		base = types.TBool
	case token.KwObj:
		p.advance()
		base = types.TObj
	case token.KwNil:
		p.advance()
		base = types.TNil
	case token.KwFunc:
		p.advance()
		base = types.TFunc
	case token.KwVoid:
		p.advance()
		base = types.TVoid
	case token.KwErr:
		p.advance()
		base = types.TErr
	case token.KwUnknown:
		p.advance()
		base = types.TUnknown
	case token.KwArray:
		p.advance()
		base = types.ArrayOf(types.TUnknown)
	default:
		p.fail(fmt.Sprintf("expected type, got %s %q", p.peek().Kind, p.peek().Literal))
		return types.TUnknown
	}

	for p.check(token.LBracket) {
		p.advance()
		p.expect(token.RBracket)
		base = types.ArrayOf(base)
	}
	return base
}

// bse builds an ast.Base spanning [start, end], the shared constructor
// every node literal below uses for its embedded range.
func bse(start, end token.Position) ast.Base {
	return ast.Base{Rng: ast.Range{Start: start, End: end}}
}
