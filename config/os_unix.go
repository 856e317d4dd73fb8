//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// CleanFileName drops NUL and separators. Leading dots are removed so output
// never becomes hidden.
func CleanFileName(in string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case 0, os.PathSeparator, os.PathListSeparator:
			return -1
		}
		return r
	}, in)
	return finishFileName(strings.TrimLeft(cleaned, "."))
}

func colorCapable(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
