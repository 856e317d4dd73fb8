package config

import (
	"strings"
	"unicode/utf8"
)

// maxFileNameLen is in bytes, most file systems limit name to 255.
const maxFileNameLen = 240

// finishFileName trims what is left after character cleanup and makes sure
// result is usable.
func finishFileName(in string) string {
	out := strings.TrimSpace(in)
	for len(out) > maxFileNameLen {
		_, size := utf8.DecodeLastRuneInString(out)
		out = out[:len(out)-size]
	}
	out = strings.TrimRight(out, " ")
	if len(out) == 0 {
		out = "_bad_file_name_"
	}
	return out
}
