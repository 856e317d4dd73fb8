// Package common keeps enums shared between configuration and processing
// packages, so config does not have to import document processing code.
package common

import (
	"path/filepath"
	"strings"
)

// Kind of document source.
// ENUM(html, xhtml, markdown)
type InputFmt int

// InputFmtFromName detects source kind by file extension.
func InputFmtFromName(name string) (InputFmt, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return InputFmtHtml, true
	case ".xhtml", ".xht":
		return InputFmtXhtml, true
	case ".md", ".markdown":
		return InputFmtMarkdown, true
	}
	return InputFmtHtml, false
}

// Ext returns extension to be used for produced document.
func (f InputFmt) Ext() string {
	if f == InputFmtXhtml {
		return ".xhtml"
	}
	// markdown is always rendered to html
	return ".html"
}

// How runtime scroll script is attached to produced documents.
// ENUM(none, inline, external)
type ScriptMode int
