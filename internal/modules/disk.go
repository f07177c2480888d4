package modules

import (
	"os"
	"path/filepath"
)

// DiskResolver resolves `.`-prefixed import paths against the
// filesystem, relative to basePath, appending a ".lml" extension when the
// path carries none. The Loader passes its BasePath (the entrypoint's
// directory) for every import, so an import inside a module that lives in
// a subdirectory is still resolved from the entrypoint's directory, not
// from that module's own directory. This is the only Resolver
// implementation the CLI needs, since an embedder hosting lml in-process
// may supply its own.
type DiskResolver struct{}

func (DiskResolver) Resolve(importPath, basePath string) (string, bool) {
	path := importPath
	if filepath.Ext(path) == "" {
		path += ".lml"
	}
	full := filepath.Join(basePath, path)
	data, err := os.ReadFile(full)
	if err != nil {
		return "", false
	}
	return string(data), true
}
