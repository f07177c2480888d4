// Package semantic implements the Scanner: a static analysis pass over a
// parsed Program that builds a scope tree, infers expression types, and
// collects every diagnostic it finds rather than stopping at the first
// one — the Scanner is a collect-all pass, unlike the fail-fast Parser.
package semantic

import (
	"fmt"

	"github.com/qrailibs/lmlang/internal/token"
)

// Diagnostic is one static-analysis finding: a message anchored to a
// source position, with an optional hint. Rendering it with a source
// snippet and caret underline is internal/errors' job, not the Scanner's.
type Diagnostic struct {
	Message string
	Pos     token.Position
	Hint    string
}

func (d Diagnostic) String() string {
	if d.Hint != "" {
		return fmt.Sprintf("%s at %s (%s)", d.Message, d.Pos, d.Hint)
	}
	return fmt.Sprintf("%s at %s", d.Message, d.Pos)
}
