//go:build windows

package config

import (
	"os"
	"strings"

	"golang.org/x/sys/windows"
	"golang.org/x/term"
)

const reservedNameChars = `<>":/\|?*`

// CleanFileName drops control and reserved characters. Windows does not
// accept trailing dots either.
func CleanFileName(in string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 32 || r == os.PathListSeparator || strings.ContainsRune(reservedNameChars, r) {
			return -1
		}
		return r
	}, in)
	return finishFileName(strings.TrimRight(cleaned, "."))
}

// colorCapable turns on VT sequence processing for console stream. Consoles
// before Windows 10 cannot do it.
func colorCapable(stream *os.File) bool {
	if windows.RtlGetVersion().MajorVersion < 10 || !term.IsTerminal(int(stream.Fd())) {
		return false
	}
	h := windows.Handle(stream.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
