package errors

import (
	"strings"
	"testing"

	"github.com/qrailibs/lmlang/internal/token"
)

func TestFormatIncludesSourceLineAndCaret(t *testing.T) {
	d := New(token.Position{Line: 2, Column: 5}, "unexpected token", "int x = 1;\nint y = ;", "main.lml")
	out := d.Format(false)

	if !strings.Contains(out, "main.lml:2:5") {
		t.Fatalf("expected header to name file and position, got:\n%s", out)
	}
	if !strings.Contains(out, "int y = ;") {
		t.Fatalf("expected the offending source line to be included, got:\n%s", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("expected a caret indicator, got:\n%s", out)
	}
	if !strings.Contains(out, "unexpected token") {
		t.Fatalf("expected the message to be included, got:\n%s", out)
	}
}

func TestFormatWithoutFileUsesLineColumnHeader(t *testing.T) {
	d := New(token.Position{Line: 1, Column: 1}, "oops", "x", "")
	out := d.Format(false)
	if !strings.Contains(out, "Error at line 1:1") {
		t.Fatalf("expected a file-less header, got:\n%s", out)
	}
}

func TestFormatWithHintAppendsHintLine(t *testing.T) {
	d := New(token.Position{Line: 1, Column: 1}, "oops", "x", "f.lml").WithHint("did you mean y?")
	out := d.Format(false)
	if !strings.Contains(out, "hint: did you mean y?") {
		t.Fatalf("expected hint line, got:\n%s", out)
	}
}

func TestFormatColorAddsAnsiCodes(t *testing.T) {
	d := New(token.Position{Line: 1, Column: 1}, "oops", "x", "f.lml")
	out := d.Format(true)
	if !strings.Contains(out, "\033[") {
		t.Fatalf("expected ANSI escape codes when color=true, got:\n%s", out)
	}
}

func TestFormatWithContextShowsSurroundingLines(t *testing.T) {
	source := "line1\nline2\nline3\nline4\nline5"
	d := New(token.Position{Line: 3, Column: 1}, "bad", source, "f.lml")
	out := d.FormatWithContext(1, false)
	if !strings.Contains(out, "line2") || !strings.Contains(out, "line3") || !strings.Contains(out, "line4") {
		t.Fatalf("expected context lines 2-4, got:\n%s", out)
	}
}

func TestFormatDiagnosticsEmpty(t *testing.T) {
	if got := FormatDiagnostics(nil, false); got != "" {
		t.Fatalf("expected empty string for no diagnostics, got %q", got)
	}
}

func TestFormatDiagnosticsSingle(t *testing.T) {
	d := New(token.Position{Line: 1, Column: 1}, "oops", "x", "f.lml")
	got := FormatDiagnostics([]*Diagnostic{d}, false)
	if !strings.Contains(got, "oops") {
		t.Fatalf("expected the single diagnostic's message, got %q", got)
	}
	if strings.Contains(got, "diagnostic(s):") {
		t.Fatalf("expected no multi-diagnostic header for a single diagnostic, got %q", got)
	}
}

func TestFormatDiagnosticsMultiple(t *testing.T) {
	d1 := New(token.Position{Line: 1, Column: 1}, "first", "x\ny", "f.lml")
	d2 := New(token.Position{Line: 2, Column: 1}, "second", "x\ny", "f.lml")
	got := FormatDiagnostics([]*Diagnostic{d1, d2}, false)
	if !strings.Contains(got, "2 diagnostic(s):") {
		t.Fatalf("expected a multi-diagnostic header, got %q", got)
	}
	if !strings.Contains(got, "first") || !strings.Contains(got, "second") {
		t.Fatalf("expected both messages present, got %q", got)
	}
}

func TestFormatDiagnosticsWithContextSingleShowsSurroundingLines(t *testing.T) {
	source := "line1\nline2\nline3\nline4\nline5"
	d := New(token.Position{Line: 3, Column: 1}, "bad", source, "f.lml")
	out := FormatDiagnosticsWithContext([]*Diagnostic{d}, 1, false)
	if !strings.Contains(out, "line2") || !strings.Contains(out, "line3") || !strings.Contains(out, "line4") {
		t.Fatalf("expected context lines 2-4, got:\n%s", out)
	}
}

func TestFormatDiagnosticsWithContextMultipleIncludesHeader(t *testing.T) {
	source := "line1\nline2\nline3"
	d1 := New(token.Position{Line: 1, Column: 1}, "first", source, "f.lml")
	d2 := New(token.Position{Line: 3, Column: 1}, "second", source, "f.lml")
	out := FormatDiagnosticsWithContext([]*Diagnostic{d1, d2}, 1, false)
	if !strings.Contains(out, "2 diagnostic(s):") {
		t.Fatalf("expected a multi-diagnostic header, got %q", out)
	}
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Fatalf("expected both messages present, got %q", out)
	}
}

func TestFromStringsParsesTrailingPosition(t *testing.T) {
	diags := FromStrings([]string{"unexpected token ; at 3:7"}, "src", "f.lml")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].Pos.Line != 3 || diags[0].Pos.Column != 7 {
		t.Fatalf("expected position 3:7, got %s", diags[0].Pos)
	}
	if diags[0].Message != "unexpected token ;" {
		t.Fatalf("expected message without position suffix, got %q", diags[0].Message)
	}
}

func TestFromStringsWithoutPositionSuffixKeepsWholeMessage(t *testing.T) {
	diags := FromStrings([]string{"a message with no position"}, "src", "f.lml")
	if diags[0].Message != "a message with no position" {
		t.Fatalf("expected the whole message preserved, got %q", diags[0].Message)
	}
	if diags[0].Pos != (token.Position{}) {
		t.Fatalf("expected zero position, got %s", diags[0].Pos)
	}
}

func TestDiagnosticErrorMatchesUncoloredFormat(t *testing.T) {
	d := New(token.Position{Line: 1, Column: 1}, "oops", "x", "f.lml")
	if d.Error() != d.Format(false) {
		t.Fatalf("expected Error() to equal Format(false)")
	}
}
