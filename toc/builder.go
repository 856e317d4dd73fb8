package toc

import (
	"github.com/beevik/etree"

	"itoc/layout"
	"itoc/page"
	"itoc/scroll"
)

// Generated markup markers.
const (
	ContainerID = "table-of-contents"
	TitleID     = "table-of-contents__title"
	TopicsID    = "table-of-contents__topics"
	Title       = "Table Of Contents"
)

// Builder creates table of contents and go-to controls for one document.
// All produced targets share single scroll handler and are bound to the
// builder registry.
type Builder struct {
	doc      *page.Document
	resolver layout.Resolver
	handler  scroll.Handler
	registry *scroll.Registry

	// HeadingOffset is added to heading position when scrolling to it.
	HeadingOffset float64
	// Summaries, when set, give table of contents items a tooltip with the
	// first sentence of their section.
	Summaries *Summarizer
}

func NewBuilder(doc *page.Document, resolver layout.Resolver, handler scroll.Handler) *Builder {
	return &Builder{
		doc:      doc,
		resolver: resolver,
		handler:  handler,
		registry: scroll.NewRegistry(),
	}
}

func (b *Builder) Registry() *scroll.Registry {
	return b.registry
}

func (b *Builder) headingItem(h *page.Heading) *etree.Element {
	t := scroll.NewHeadingTarget(b.doc, h, b.HeadingOffset, b.handler)
	b.registry.Bind(t)
	if b.Summaries != nil {
		if s := b.Summaries.Summary(b.doc.SectionText(h)); len(s) > 0 {
			t.Element().CreateAttr("title", s)
		}
	}
	return t.Element()
}

// BuildList produces ordered list of topics. Subtopic groups become
// unordered lists placed right after the topic item they belong to.
func (b *Builder) BuildList(entries []Entry) *etree.Element {
	ol := etree.NewElement("ol")
	ol.CreateAttr("id", TopicsID)

	for _, e := range entries {
		switch e.Kind {
		case EntryTopic:
			ol.AddChild(b.headingItem(e.Headings[0]))
		case EntrySubtopics:
			ul := ol.CreateElement("ul")
			for _, h := range e.Headings {
				ul.AddChild(b.headingItem(h))
			}
		}
	}
	return ol
}

// BuildTableOfContents appends titled table of contents to the site.
// Calling it twice for the same site produces two tables.
func (b *Builder) BuildTableOfContents(site *etree.Element, entries []Entry) *etree.Element {
	div := etree.NewElement("div")
	div.CreateAttr("id", ContainerID)

	h2 := div.CreateElement("h2")
	h2.CreateAttr("id", TitleID)
	h2.CreateAttr("class", page.NotNumberedClass)
	h2.SetText(Title)

	div.AddChild(b.BuildList(entries))
	site.AddChild(div)
	return div
}

// BuildGoToControls appends "top" and "toc" controls, in that order, to the
// site. Every call produces new elements.
func (b *Builder) BuildGoToControls(site *etree.Element) (top, toc *scroll.Target) {
	top = scroll.NewTopTarget(b.handler)
	toc = scroll.NewTOCTarget(b.doc, b.resolver, b.handler)

	site.AddChild(top.Element())
	site.AddChild(toc.Element())

	b.registry.Bind(top)
	b.registry.Bind(toc)
	return top, toc
}
