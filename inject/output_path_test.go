package inject

import (
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"itoc/common"
	"itoc/config"
	"itoc/page"
	"itoc/state"
)

func setupTestEnvForOutputPath(t *testing.T, noDirs, transliterate bool) *state.LocalEnv {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Document.FileNameTransliterate = transliterate
	return &state.LocalEnv{
		Log:    zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
		Cfg:    cfg,
		Inject: state.InjectOptions{NoDirs: noDirs},
	}
}

func TestBuildOutputPath(t *testing.T) {
	tests := []struct {
		name          string
		src           string
		format        common.InputFmt
		noDirs        bool
		transliterate bool
		want          string
	}{
		{"single file", "page.html", common.InputFmtHtml, false, false, "page.html"},
		{"htm becomes html", "page.htm", common.InputFmtHtml, false, false, "page.html"},
		{"xhtml keeps extension", "page.xhtml", common.InputFmtXhtml, false, false, "page.xhtml"},
		{"markdown rendered", "README.md", common.InputFmtMarkdown, false, false, "README.html"},
		{"nested", "docs/guide/intro.html", common.InputFmtHtml, false, false, "docs/guide/intro.html"},
		{"nested flattened", "docs/guide/intro.html", common.InputFmtHtml, true, false, "intro.html"},
		{"spaces kept", "My Docs/Chapter One.html", common.InputFmtHtml, false, false, "My Docs/Chapter One.html"},
		{"transliterated", "My Docs/Chapter One.html", common.InputFmtHtml, false, true, "my-docs/chapter-one.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.noDirs, tt.transliterate)
			got := buildOutputPath(nil, filepath.FromSlash(tt.src), tt.format, env)
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("buildOutputPath() = %q, want %q", got, filepath.FromSlash(tt.want))
			}
		})
	}
}

const templatePage = `<html lang="en"><head><title>User Guide</title></head>
<body><h2>One</h2><h3>One A</h3><h2>Two</h2></body></html>`

func TestBuildOutputPath_Template(t *testing.T) {
	doc, err := page.Read(strings.NewReader(templatePage), "guide.html")
	if err != nil {
		t.Fatalf("page.Read() error = %v", err)
	}

	tests := []struct {
		name          string
		tmpl          string
		noDirs        bool
		transliterate bool
		want          string
	}{
		{"title", "{{ .Title }}", false, false, "docs/User Guide.html"},
		{"subdirectories", "{{ .Language }}/{{ .SourceFile }}", false, false, "docs/en/guide.html"},
		{"flattened", "{{ .Language }}/{{ .SourceFile }}", true, false, "en/guide.html"},
		{"sprig functions", `{{ .Title | lower | replace " " "_" }}-{{ .Headings }}`, false, false, "docs/user_guide-3.html"},
		{"source directory", `{{ .SourceDir | base }}-{{ .Format }}`, true, false, "docs-html.html"},
		{"transliterated", "{{ .Title }}", false, true, "docs/user-guide.html"},
		{"parent references dropped", "../../{{ .SourceFile }}", false, false, "docs/guide.html"},
		{"empty expansion", "{{ if false }}x{{ end }}", false, false, "docs/guide.html"},
		{"broken template", "{{ .Title", false, false, "docs/guide.html"},
		{"unknown field", "{{ .Author }}", false, false, "docs/guide.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.noDirs, tt.transliterate)
			env.Cfg.Document.OutputNameTemplate = tt.tmpl
			got := buildOutputPath(doc, filepath.FromSlash("docs/guide.html"), common.InputFmtHtml, env)
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("buildOutputPath() = %q, want %q", got, filepath.FromSlash(tt.want))
			}
		})
	}
}

func TestScriptHref(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"page.html", "itoc.js"},
		{"docs/page.html", "../itoc.js"},
		{"a/b/page.html", "../../itoc.js"},
	}
	for _, tt := range tests {
		if got := scriptHref(filepath.FromSlash(tt.output), "itoc.js"); got != tt.want {
			t.Errorf("scriptHref(%q) = %q, want %q", tt.output, got, tt.want)
		}
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{".", nil},
		{"", nil},
		{"a", []string{"a"}},
		{filepath.FromSlash("a/b/c"), []string{"a", "b", "c"}},
		{filepath.FromSlash("a//b/"), []string{"a", "b"}},
	}
	for _, tt := range tests {
		got := splitPath(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitPath(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitPath(%q) = %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}
