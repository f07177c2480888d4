package ast

import (
	"testing"

	"github.com/qrailibs/lmlang/internal/token"
)

func pos(line, col int) token.Position { return token.Position{Line: line, Column: col} }

func TestRangeContains(t *testing.T) {
	outer := Range{Start: pos(1, 1), End: pos(5, 1)}
	inner := Range{Start: pos(2, 1), End: pos(3, 1)}
	if !outer.Contains(inner) {
		t.Fatalf("expected outer range to contain inner range")
	}
	if inner.Contains(outer) {
		t.Fatalf("expected inner range not to contain outer range")
	}
}

func TestRangeContainsPos(t *testing.T) {
	r := Range{Start: pos(2, 1), End: pos(4, 10)}
	if !r.ContainsPos(pos(2, 1)) || !r.ContainsPos(pos(4, 10)) {
		t.Fatalf("expected range boundaries to be inclusive")
	}
	if r.ContainsPos(pos(1, 1)) || r.ContainsPos(pos(5, 1)) {
		t.Fatalf("expected positions outside the range to be rejected")
	}
}

func TestBaseEmbedsRange(t *testing.T) {
	b := Base{Rng: Range{Start: pos(1, 1), End: pos(1, 5)}}
	def := &Def{Base: b, Name: "x"}
	if def.Range() != b.Rng {
		t.Fatalf("expected Def.Range() to return its embedded Base range")
	}
}

func TestClosedStatementAndExpressionSets(t *testing.T) {
	var _ Statement = (*Def)(nil)
	var _ Statement = (*Assignment)(nil)
	var _ Statement = (*If)(nil)
	var _ Statement = (*Block)(nil)
	var _ Statement = (*Return)(nil)
	var _ Statement = (*ExpressionStatement)(nil)
	var _ Statement = (*Import)(nil)

	var _ Expression = (*IntLiteral)(nil)
	var _ Expression = (*Lambda)(nil)
	var _ Expression = (*RuntimeLiteral)(nil)
	var _ Expression = (*Call)(nil)
}
