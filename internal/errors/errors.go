// Package errors formats lml diagnostics with source context: line/column
// information and a caret pointing at the offending position, plus an
// optional hint line, following a `{message, location, hint?,
// source-snippet}` diagnostic shape.
package errors

import (
	"fmt"
	"strings"

	"github.com/qrailibs/lmlang/internal/token"
)

// Diagnostic is a single rendered error: a syntax error, scanner finding,
// or runtime fault, anchored to a source position.
type Diagnostic struct {
	Message string
	Source  string
	File    string
	Pos     token.Position
	Hint    string
}

// New creates a Diagnostic.
func New(pos token.Position, message, source, file string) *Diagnostic {
	return &Diagnostic{
		Pos:     pos,
		Message: message,
		Source:  source,
		File:    file,
	}
}

// WithHint attaches a hint, returning the same Diagnostic for chaining.
func (e *Diagnostic) WithHint(hint string) *Diagnostic {
	e.Hint = hint
	return e
}

// Error implements the error interface.
func (e *Diagnostic) Error() string {
	return e.Format(false)
}

// Format renders the diagnostic with its source line and a caret
// indicator. If color is true, ANSI color codes are used for terminal
// output.
func (e *Diagnostic) Format(color bool) string {
	var sb strings.Builder

	// File and position header
	if e.File != "" {
		sb.WriteString(fmt.Sprintf("Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("Error at line %d:%d\n", e.Pos.Line, e.Pos.Column))
	}

	// Extract the relevant source line
	sourceLine := e.getSourceLine(e.Pos.Line)
	if sourceLine != "" {
		// Line number and source
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(sourceLine)
		sb.WriteString("\n")

		// Caret indicator
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m") // Red bold
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m") // Reset
		}
		sb.WriteString("\n")
	}

	// Error message
	if color {
		sb.WriteString("\033[1m") // Bold
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m") // Reset
	}
	if e.Hint != "" {
		sb.WriteString("\nhint: ")
		sb.WriteString(e.Hint)
	}

	return sb.String()
}

// getSourceLine extracts a specific line from the source code.
// Lines are 1-indexed.
func (e *Diagnostic) getSourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}

	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}

	return lines[lineNum-1]
}

// getSourceContext extracts multiple lines around the error for context.
// Returns lines from (lineNum - contextBefore) to (lineNum + contextAfter).
func (e *Diagnostic) getSourceContext(lineNum, contextBefore, contextAfter int) []string {
	if e.Source == "" {
		return nil
	}

	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return nil
	}

	start := lineNum - contextBefore
	if start < 1 {
		start = 1
	}

	end := lineNum + contextAfter
	if end > len(lines) {
		end = len(lines)
	}

	return lines[start-1 : end]
}

// FormatWithContext formats the error with surrounding source context.
func (e *Diagnostic) FormatWithContext(contextLines int, color bool) string {
	var sb strings.Builder

	// File and position header
	if e.File != "" {
		sb.WriteString(fmt.Sprintf("Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("Error at line %d:%d\n", e.Pos.Line, e.Pos.Column))
	}

	// Get context lines
	contextLinesList := e.getSourceContext(e.Pos.Line, contextLines, contextLines)
	if len(contextLinesList) == 0 {
		// Fallback to single line
		return e.Format(color)
	}

	// Calculate starting line number
	startLine := e.Pos.Line - contextLines
	if startLine < 1 {
		startLine = 1
	}

	// Display context
	for i, line := range contextLinesList {
		currentLine := startLine + i
		lineNumStr := fmt.Sprintf("%4d | ", currentLine)

		// Highlight the error line
		if currentLine == e.Pos.Line {
			if color {
				sb.WriteString("\033[1m") // Bold
			}
			sb.WriteString(lineNumStr)
			sb.WriteString(line)
			if color {
				sb.WriteString("\033[0m") // Reset
			}
			sb.WriteString("\n")

			// Caret indicator
			sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
			if color {
				sb.WriteString("\033[1;31m") // Red bold
			}
			sb.WriteString("^")
			if color {
				sb.WriteString("\033[0m") // Reset
			}
			sb.WriteString("\n")
		} else {
			// Context lines (dimmed if color enabled)
			if color {
				sb.WriteString("\033[2m") // Dim
			}
			sb.WriteString(lineNumStr)
			sb.WriteString(line)
			if color {
				sb.WriteString("\033[0m") // Reset
			}
			sb.WriteString("\n")
		}
	}

	// Error message
	sb.WriteString("\n")
	if color {
		sb.WriteString("\033[1m") // Bold
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m") // Reset
	}
	if e.Hint != "" {
		sb.WriteString("\nhint: ")
		sb.WriteString(e.Hint)
	}

	return sb.String()
}

// FormatDiagnostics formats multiple diagnostics.
// Each is formatted individually with source context.
func FormatDiagnostics(diags []*Diagnostic, color bool) string {
	if len(diags) == 0 {
		return ""
	}

	if len(diags) == 1 {
		return diags[0].Format(color)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d diagnostic(s):\n\n", len(diags)))

	for i, d := range diags {
		sb.WriteString(fmt.Sprintf("[%d of %d]\n", i+1, len(diags)))
		sb.WriteString(d.Format(color))
		if i < len(diags)-1 {
			sb.WriteString("\n\n")
		}
	}

	return sb.String()
}

// FormatDiagnosticsWithContext is FormatDiagnostics with each diagnostic
// rendered via FormatWithContext instead of Format, for a richer terminal
// report that shows the lines around the fault, not just the one it's on.
func FormatDiagnosticsWithContext(diags []*Diagnostic, contextLines int, color bool) string {
	if len(diags) == 0 {
		return ""
	}

	if len(diags) == 1 {
		return diags[0].FormatWithContext(contextLines, color)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d diagnostic(s):\n\n", len(diags)))

	for i, d := range diags {
		sb.WriteString(fmt.Sprintf("[%d of %d]\n", i+1, len(diags)))
		sb.WriteString(d.FormatWithContext(contextLines, color))
		if i < len(diags)-1 {
			sb.WriteString("\n\n")
		}
	}

	return sb.String()
}

// FromStrings converts plain-string error messages (as produced by the
// Lexer and Parser, which carry position only in their formatted string)
// into Diagnostics with parsed position info.
func FromStrings(messages []string, source, file string) []*Diagnostic {
	diags := make([]*Diagnostic, 0, len(messages))

	for _, msg := range messages {
		pos, message := parsePositionSuffix(msg)
		diags = append(diags, New(pos, message, source, file))
	}

	return diags
}

// parsePositionSuffix extracts a trailing " at LINE:COLUMN" produced by
// lexer.Error, parser.Error, and interp.RuntimeError's Error() methods.
func parsePositionSuffix(s string) (token.Position, string) {
	atIndex := strings.LastIndex(s, " at ")
	if atIndex == -1 {
		return token.Position{}, s
	}

	posStr := s[atIndex+4:]
	message := strings.TrimSpace(s[:atIndex])

	var line, column int
	if _, err := fmt.Sscanf(posStr, "%d:%d", &line, &column); err != nil {
		return token.Position{}, s
	}

	return token.Position{Line: line, Column: column}, message
}
