package kcompat

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// SourceRoot is the directory of the kernel tree being scanned. It is
// threaded explicitly through every resolver call; the engine never
// changes the process working directory.
type SourceRoot string

// Join resolves a catalog-relative path under the root.
func (r SourceRoot) Join(rel string) string {
	return filepath.Join(string(r), rel)
}

// Resolve filters refs down to the candidates worth scanning: literal
// sources always pass; paths pass when they name an existing,
// non-empty, readable regular file under the root. Order is preserved.
// Missing files are a normal outcome reflecting the scanned tree's
// version, never an error.
func (r SourceRoot) Resolve(refs []FileRef) []FileRef {
	out := make([]FileRef, 0, len(refs))
	for _, ref := range refs {
		if ref.IsLiteral {
			out = append(out, ref)
			continue
		}

		path := r.Join(ref.Path)
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() || fi.Size() == 0 {
			continue
		}
		if unix.Access(path, unix.R_OK) != nil {
			continue
		}
		out = append(out, ref)
	}
	return out
}

// ReadSource returns the text of a resolved ref. Literal refs are
// returned as-is. A read failure on a path that passed [Resolve] is
// unexpected and surfaces as an error for the caller to treat as fatal.
func (r SourceRoot) ReadSource(ref FileRef) (string, error) {
	if ref.IsLiteral {
		return ref.Literal, nil
	}
	data, err := os.ReadFile(r.Join(ref.Path))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", ref.Path, err)
	}
	return string(data), nil
}
