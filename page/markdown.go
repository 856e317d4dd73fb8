package page

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// MarkdownOptions control rendering of markdown sources.
type MarkdownOptions struct {
	GFM bool
	// Highlight is chroma style name for fenced code, empty disables
	// highlighting.
	Highlight string
	// TOCSite and GoToSite add empty sites, so rendered page gets table of
	// contents at the top and go-to controls at the bottom.
	TOCSite  bool
	GoToSite bool
}

func newMarkdown(opts MarkdownOptions) goldmark.Markdown {
	var exts []goldmark.Extender
	if opts.GFM {
		exts = append(exts, extension.GFM)
	}
	if len(opts.Highlight) > 0 {
		exts = append(exts, highlighting.NewHighlighting(highlighting.WithStyle(opts.Highlight)))
	}
	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)
}

// FromMarkdown renders markdown source into XHTML page. Title is taken
// from the first top level heading, or from the name.
func FromMarkdown(src []byte, name string, opts MarkdownOptions) (*Document, error) {
	var body bytes.Buffer
	if err := newMarkdown(opts).Convert(src, &body); err != nil {
		return nil, fmt.Errorf("unable to render markdown %q: %w", name, err)
	}

	tree := newTree()
	// rendered fragment may have several top level elements, wrap it so it
	// parses as single tree
	if err := tree.ReadFromString("<body>" + body.String() + "</body>"); err != nil {
		return nil, fmt.Errorf("unable to parse rendered markdown %q: %w", name, err)
	}

	rendered := tree.Root()
	title := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if h1 := rendered.FindElement(".//h1"); h1 != nil {
		var b strings.Builder
		collectText(&b, h1.Child)
		if t := strings.Join(strings.Fields(b.String()), " "); len(t) > 0 {
			title = t
		}
	}

	doc := newTree()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateDirective("DOCTYPE html")
	root := doc.CreateElement("html")
	root.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	head := root.CreateElement("head")
	head.CreateElement("meta").CreateAttr("charset", "utf-8")
	head.CreateElement("title").SetText(title)

	bodyEl := root.CreateElement("body")
	if opts.TOCSite {
		bodyEl.CreateElement("div").CreateAttr("id", TOCSiteID)
	}
	for _, t := range rendered.Child {
		switch v := t.(type) {
		case *etree.Element:
			bodyEl.AddChild(v.Copy())
		case *etree.CharData:
			bodyEl.AddChild(etree.NewText(v.Data))
		}
	}
	if opts.GoToSite {
		bodyEl.CreateElement("div").CreateAttr("class", GoToSiteClass)
	}
	return New(name, doc), nil
}
