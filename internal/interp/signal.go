package interp

import (
	"fmt"

	"github.com/qrailibs/lmlang/internal/token"
	"github.com/qrailibs/lmlang/internal/values"
)

// returnSignal unwinds the Go call stack back to the nearest function-call
// boundary when a `return` statement executes. It is never exposed outside
// this package: callFunction catches it at exactly the point a function
// body finishes executing (and Run drops one raised by a top-level
// return), modeling non-local return without a sentinel value that could
// collide with ordinary data.
type returnSignal struct {
	Value values.Value
}

func (returnSignal) Error() string { return "return outside function" }

// RuntimeError is a runtime fault raised during evaluation: a failed
// container call, a type mismatch the Scanner could not rule out because
// an operand was unknown, a division by zero, or an out-of-range index.
type RuntimeError struct {
	Message string
	Pos     token.Position
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

func runtimeErrorf(pos token.Position, format string, args ...any) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Pos: pos}
}
