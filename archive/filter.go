package archive

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter selects source documents by their slash separated path relative
// to the source root (directory or archive). Patterns use doublestar syntax
// so "**" crosses directories.
type Filter struct {
	include []string
	exclude []string
}

// NewFilter validates patterns. Empty include list accepts everything.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range include {
		p = filepath.ToSlash(p)
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("bad include pattern %q", p)
		}
		f.include = append(f.include, p)
	}
	for _, p := range exclude {
		p = filepath.ToSlash(p)
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("bad exclude pattern %q", p)
		}
		f.exclude = append(f.exclude, p)
	}
	return f, nil
}

// Match reports if file should be processed. Nil filter matches everything.
func (f *Filter) Match(rel string) bool {
	if f == nil {
		return true
	}
	rel = filepath.ToSlash(rel)
	if len(f.include) > 0 && !matchesAny(rel, f.include) {
		return false
	}
	return !matchesAny(rel, f.exclude)
}

// matchesAny tries full path first and then base name, so "*.md" works for
// nested files too.
func matchesAny(rel string, patterns []string) bool {
	base := path.Base(rel)
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(p, base); err == nil && ok {
			return true
		}
	}
	return false
}
