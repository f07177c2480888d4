package modules

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qrailibs/lmlang/internal/semantic"
	"github.com/qrailibs/lmlang/internal/stdlib"
	"github.com/qrailibs/lmlang/internal/types"
)

type fakeResolver struct {
	sources map[string]string
	resolve int
}

func (f *fakeResolver) Resolve(importPath, basePath string) (string, bool) {
	f.resolve++
	src, ok := f.sources[importPath]
	return src, ok
}

func TestLoadRelativeModuleExportsTypeAndSignature(t *testing.T) {
	resolver := &fakeResolver{sources: map[string]string{
		"./math": `export func add(int a, int b): int { return a + b; }`,
	}}
	l := New(resolver, stdlib.Default(), "/proj", nil)

	exports, err := l.Load("./math")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	add, ok := exports["add"]
	if !ok || add.Type != types.TFunc {
		t.Fatalf("expected 'add' exported as func, got %v ok=%v", add, ok)
	}
	if add.Signature == nil || len(add.Signature.Params) != 2 || add.Signature.ReturnType != types.TInt {
		t.Fatalf("expected a 2-param int-returning signature, got %#v", add.Signature)
	}
}

func TestLoadCachesParsedAndScannedModules(t *testing.T) {
	resolver := &fakeResolver{sources: map[string]string{
		"./math": `export func add(int a, int b): int { return a + b; }`,
	}}
	l := New(resolver, stdlib.Default(), "/proj", nil)

	if _, err := l.Load("./math"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := l.Load("./math"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolver.resolve != 1 {
		t.Fatalf("expected the resolver to be consulted exactly once across repeated loads, got %d", resolver.resolve)
	}
}

func TestLoadRelativeModuleNotFoundErrors(t *testing.T) {
	resolver := &fakeResolver{sources: map[string]string{}}
	l := New(resolver, stdlib.Default(), "/proj", nil)
	if _, err := l.Load("./missing"); err == nil {
		t.Fatalf("expected an error for an unresolvable import path")
	}
}

func TestLoadRelativeModuleWithSyntaxErrorPropagates(t *testing.T) {
	resolver := &fakeResolver{sources: map[string]string{
		"./bad": `func f(: int { return 1; }`,
	}}
	l := New(resolver, stdlib.Default(), "/proj", nil)
	if _, err := l.Load("./bad"); err == nil {
		t.Fatalf("expected a parse error to propagate")
	}
}

func TestLoadNonRelativeUsesStdlibRegistry(t *testing.T) {
	l := New(&fakeResolver{}, stdlib.Default(), "/proj", nil)
	exports, err := l.Load("math")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sqrt, ok := exports["sqrt"]
	if !ok || sqrt.Type != types.TFunc {
		t.Fatalf("expected 'sqrt' exported as func from the math stdlib module, got %v ok=%v", sqrt, ok)
	}
}

func TestLoadUnknownStdlibModuleErrors(t *testing.T) {
	l := New(&fakeResolver{}, stdlib.Default(), "/proj", nil)
	if _, err := l.Load("nosuch"); err == nil {
		t.Fatalf("expected an error for an unregistered stdlib module")
	}
}

func TestValuesExecutesRelativeModuleAndCachesExports(t *testing.T) {
	resolver := &fakeResolver{sources: map[string]string{
		"./math": `export func add(int a, int b): int { return a + b; }
export int pi = 3;`,
	}}
	l := New(resolver, stdlib.Default(), "/proj", nil)
	vl := l.Values()

	exports, err := vl.Load("./math")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := exports["add"]; !ok {
		t.Fatalf("expected 'add' among exported runtime values, got %v", exports)
	}
	pi, ok := exports["pi"]
	if !ok || pi.Int != 3 {
		t.Fatalf("expected exported pi == 3, got %v ok=%v", pi, ok)
	}

	if _, err := vl.Load("./math"); err != nil {
		t.Fatalf("unexpected error on second load: %v", err)
	}
	if resolver.resolve != 1 {
		t.Fatalf("expected module execution to be cached across repeated value-loads, got %d resolves", resolver.resolve)
	}
}

func TestValuesExecStdlibProducesNativeFunctions(t *testing.T) {
	l := New(&fakeResolver{}, stdlib.Default(), "/proj", nil)
	exports, err := l.Values().Load("strings")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	upper, ok := exports["upper"]
	if !ok || upper.Fn == nil || upper.Fn.Native == nil {
		t.Fatalf("expected 'upper' to be a native-backed function value, got %v ok=%v", upper, ok)
	}
}

func TestValuesExecUnknownStdlibModuleErrors(t *testing.T) {
	l := New(&fakeResolver{}, stdlib.Default(), "/proj", nil)
	if _, err := l.Values().Load("nosuch"); err == nil {
		t.Fatalf("expected an error for an unregistered stdlib module")
	}
}

func TestExecSelfImportBreaksCycleWithoutHanging(t *testing.T) {
	// "./self" imports its own (not-yet-populated) export table; the
	// pre-assigned empty execed[path] entry breaks the recursion, so this
	// must return (with an error, since "seen" isn't visible yet) rather
	// than recurse forever.
	resolver := &fakeResolver{sources: map[string]string{
		"./self": `import { seen } from "./self";
export int copy = 1;`,
	}}
	l := New(resolver, stdlib.Default(), "/proj", nil)

	done := make(chan error, 1)
	go func() {
		_, err := l.exec(context.Background(), "./self")
		done <- err
	}()
	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected an error: the self-import can't yet see 'seen' mid-execution")
		}
	case <-ctxTimeout():
		t.Fatalf("exec did not return: suspected infinite recursion on self-import")
	}
}

func TestScanMutualImportCycleBreaksWithoutHanging(t *testing.T) {
	// "./a" imports "./b" and "./b" imports "./a" back; the pre-assigned
	// empty scanned[path] entry must break the recursion during the
	// Scanner pass the same way exec's pre-assigned execed[path] does for
	// the Interpreter pass.
	resolver := &fakeResolver{sources: map[string]string{
		"./a": `import { b } from "./b";
export int a = 1;`,
		"./b": `import { a } from "./a";
export int b = 2;`,
	}}
	l := New(resolver, stdlib.Default(), "/proj", nil)

	done := make(chan error, 1)
	go func() {
		_, err := l.scan("./a")
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error scanning a mutual import cycle: %v", err)
		}
	case <-ctxTimeout():
		t.Fatalf("scan did not return: suspected infinite recursion on a mutual import cycle")
	}
}

func ctxTimeout() <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		<-time.After(2 * time.Second)
		close(ch)
	}()
	return ch
}

func TestIsRelative(t *testing.T) {
	if !isRelative("./math") || !isRelative("../util") {
		t.Fatalf("expected dot-prefixed paths to be relative")
	}
	if isRelative("math") || isRelative("strings") {
		t.Fatalf("expected bare names to be non-relative")
	}
}

func TestDiskResolverAppendsExtensionAndReads(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "math.lml"), []byte("export int x = 1;"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	var r DiskResolver
	src, ok := r.Resolve("./math", dir)
	if !ok || src != "export int x = 1;" {
		t.Fatalf("expected extension-appended resolve to succeed, got %q ok=%v", src, ok)
	}
}

func TestDiskResolverHonorsExistingExtension(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "math.txt"), []byte("not lml"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	var r DiskResolver
	src, ok := r.Resolve("./math.txt", dir)
	if !ok || src != "not lml" {
		t.Fatalf("expected an explicit extension to be respected, got %q ok=%v", src, ok)
	}
}

func TestDiskResolverMissingFileNotFound(t *testing.T) {
	var r DiskResolver
	if _, ok := r.Resolve("./missing", t.TempDir()); ok {
		t.Fatalf("expected a missing file to resolve as not found")
	}
}

var _ semantic.ModuleLoader = (*Loader)(nil)
