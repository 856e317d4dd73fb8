// Package archive builds Walk abstraction on top of "archive/zip" and
// selects files to be processed with path patterns.
package archive

import (
	"archive/zip"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to
// Walk, fsys gives access to all archive entries (images referenced by
// documents, for example) and file is the archive entry which satisfies
// both prefix and filter. If an error is returned, processing stops.
type WalkFunc func(archive string, fsys fs.FS, file *zip.File) error

// Walk visits files in the archive in stored order. Only entries with names
// starting with prefix and accepted by filter are passed to walkFn, filter
// sees names relative to the prefix. Archive with absolute or ".." entry
// names is rejected as a whole.
func Walk(archive, prefix string, filter *Filter, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if !filter.Match(strings.TrimPrefix(strings.TrimPrefix(name, prefix), "/")) {
			continue
		}
		if err := walkFn(archive, &r.Reader, f); err != nil {
			return err
		}
	}
	return nil
}

func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(strings.ReplaceAll(name, `\`, "/"), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
