package inject

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"itoc/common"
	"itoc/config"
	"itoc/page"
	"itoc/state"
)

// Values holds variables available for output name template expansion.
type Values struct {
	Context    string
	Title      string
	Language   string
	Format     string
	SourceFile string
	SourceDir  string
	Headings   int
}

func expandTemplate(doc *page.Document, src string, name config.TemplateFieldName, field string, format common.InputFmt) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		Title:      doc.Title(),
		Language:   doc.Lang(),
		Format:     strings.TrimPrefix(format.Ext(), "."),
		SourceFile: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		SourceDir:  filepath.ToSlash(filepath.Dir(src)),
		Headings:   len(doc.Headings(nil)),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// buildOutputPath returns output file name for a source document relative to
// destination. "src" is source path relative to processed root (or just base
// name for a single file). Unless directories are flattened source structure
// is repeated. When output name template is configured its expansion
// replaces source base name and may add subdirectories. Every path segment is
// cleaned and, if requested, transliterated.
func buildOutputPath(doc *page.Document, src string, format common.InputFmt, env *state.LocalEnv) string {
	var parts []string
	if !env.Inject.NoDirs {
		for _, segment := range splitPath(filepath.Dir(src)) {
			parts = append(parts, cleanPathSegment(segment, env))
		}
	}

	names := []string{strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))}
	if tmpl := env.Cfg.Document.OutputNameTemplate; len(tmpl) > 0 && doc != nil {
		if expanded := expandOutputNameTemplate(doc, src, format, env); len(expanded) > 0 {
			names = expanded
		}
	}
	for _, segment := range names[:len(names)-1] {
		parts = append(parts, cleanPathSegment(segment, env))
	}
	parts = append(parts, cleanPathSegment(names[len(names)-1], env)+format.Ext())
	return filepath.Join(parts...)
}

// expandOutputNameTemplate returns non empty path segments of expanded
// template, nil when expansion failed.
func expandOutputNameTemplate(doc *page.Document, src string, format common.InputFmt, env *state.LocalEnv) []string {
	expanded, err := expandTemplate(doc, src, config.OutputNameTemplateFieldName, env.Cfg.Document.OutputNameTemplate, format)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return nil
	}
	var segments []string
	for s := range strings.SplitSeq(expanded, "/") {
		if s = strings.TrimSpace(s); len(s) > 0 && s != "." && s != ".." {
			segments = append(segments, s)
		}
	}
	return segments
}

// scriptHref returns location of external runtime script relative to the
// produced document, always slash separated.
func scriptHref(outputName, scriptName string) string {
	depth := len(splitPath(filepath.Dir(outputName)))
	return strings.Repeat("../", depth) + path.Base(scriptName)
}

func splitPath(name string) []string {
	name = strings.Trim(filepath.Clean(name), string(os.PathSeparator))
	if name == "." || name == "" {
		return nil
	}
	segments := make([]string, 0, 8)
	for head, tail := filepath.Split(name); tail != ""; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Document.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
