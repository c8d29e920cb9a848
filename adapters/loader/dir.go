package loader

import (
	"context"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"peajes/internal/errors"
)

// DirFetcher reads artifacts from a local directory, resolving names the
// way a static file server would.
type DirFetcher struct {
	root string
	fsys fs.FS
}

// NewDirFetcher serves artifacts from dir.
func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{root: dir, fsys: os.DirFS(dir)}
}

// NewFSFetcher serves artifacts from any fs.FS, e.g. fstest.MapFS in tests.
func NewFSFetcher(name string, fsys fs.FS) *DirFetcher {
	return &DirFetcher{root: name, fsys: fsys}
}

// Describe names the artifact origin for logs.
func (f *DirFetcher) Describe() string {
	return f.root
}

// Fetch reads one artifact. Missing files map to a 404 RetrievalError so
// callers see the same failure as over HTTP.
func (f *DirFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Retrieval(name, 0, err)
	}
	clean := strings.TrimPrefix(path.Clean("/"+name), "/")
	if !fs.ValidPath(clean) || clean == "." {
		return nil, errors.Retrieval(name, http.StatusBadRequest, nil)
	}

	raw, err := fs.ReadFile(f.fsys, clean)
	switch {
	case err == nil:
		return raw, nil
	case errors.IsNotExist(err):
		return nil, errors.Retrieval(name, http.StatusNotFound, nil)
	case errors.IsPermission(err):
		return nil, errors.Retrieval(name, http.StatusForbidden, err)
	default:
		return nil, errors.Retrieval(name, http.StatusInternalServerError, err)
	}
}
