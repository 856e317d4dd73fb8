package toc

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"

	"itoc/common"
	"itoc/config"
	"itoc/layout"
	"itoc/page"
	"itoc/scroll"
)

// Page is a document after table of contents and go-to controls were
// attached to it.
type Page struct {
	Doc      *page.Document
	Resolver layout.Resolver
	Targets  *scroll.Registry

	// Entries is grouped heading list, empty when table of contents was not
	// built.
	Entries []Entry
	// TOC is generated "#table-of-contents" element or nil.
	TOC *etree.Element
	// GoToSites is number of populated go-to containers.
	GoToSites int
}

// Ready performs all document initialization at once: it builds table of
// contents inside table of contents site and populates every go-to site
// with its own pair of controls. Missing sites are not an error, there is
// simply nothing to do for them. Heading positions are captured last, in
// the layout of the finished page.
func Ready(doc *page.Document, resolver layout.Resolver, handler scroll.Handler, cfg *config.DocumentConfig, log *zap.Logger) *Page {
	if log == nil {
		log = zap.NewNop()
	}

	b := NewBuilder(doc, resolver, handler)
	b.HeadingOffset = cfg.TOC.HeadingOffset
	if cfg.TOC.Enable && cfg.TOC.SummaryLength > 0 {
		s, err := NewSummarizer(cfg.TOC.SummaryLength)
		if err != nil {
			log.Warn("Unable to load sentence tokenizer, summaries are off", zap.Error(err))
		} else {
			b.Summaries = s
		}
	}

	p := &Page{Doc: doc, Resolver: resolver, Targets: b.Registry()}
	defer p.locateHeadings()

	if cfg.GoTo.Enable && cfg.GoTo.AfterPrimary {
		if n := doc.InsertGoToSitesAfterPrimary(); n > 0 {
			log.Debug("Inserted go-to sites", zap.Int("count", n))
		}
	}

	site := doc.TOCSite()

	if cfg.TOC.Enable && site != nil {
		// runtime script finds headings by id
		if cfg.TOC.Anchors || cfg.Script.Mode != common.ScriptModeNone {
			if n := doc.AssignHeadingIDs(); n > 0 {
				log.Debug("Assigned heading anchors", zap.Int("count", n))
			}
		}
		if doc.ElementByID(ContainerID) != nil {
			log.Warn("Document already has table of contents, skipping", zap.String("id", ContainerID))
		} else {
			headings := doc.Headings(resolver)
			p.Entries = Group(headings)
			p.TOC = b.BuildTableOfContents(site, p.Entries)
			log.Debug("Table of contents built", zap.Int("headings", len(headings)), zap.Int("entries", len(p.Entries)))
		}
	}

	if cfg.GoTo.Enable {
		if cfg.GoTo.RequireTOC && site == nil {
			log.Debug("No table of contents site, go-to controls skipped")
			return p
		}
		for _, s := range doc.GoToSites() {
			b.BuildGoToControls(s)
			p.GoToSites++
		}
		if p.GoToSites > 0 {
			log.Debug("Go-to controls attached", zap.Int("sites", p.GoToSites))
		}
	}
	return p
}

// locateHeadings captures positions of headings bound to targets once all
// generated markup is in place.
func (p *Page) locateHeadings() {
	for _, t := range p.Targets.Targets() {
		if h := t.Heading(); h != nil {
			h.Locate(p.Resolver)
		}
	}
}
