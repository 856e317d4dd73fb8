package toc

import (
	"itoc/layout"
	"itoc/page"
	"itoc/utils/debug"
)

// Dump renders grouped entries as indented tree showing heading text, level
// and captured position, used by inspection and in debug logging.
func Dump(entries []Entry) string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "table of contents: %d entries", len(entries))
	for i, e := range entries {
		switch e.Kind {
		case EntryTopic:
			tw.Line(1, "%d. topic", i+1)
		case EntrySubtopics:
			if e.Dangling {
				tw.Line(1, "%d. subtopics (%d, dangling)", i+1, len(e.Headings))
			} else {
				tw.Line(1, "%d. subtopics (%d)", i+1, len(e.Headings))
			}
		}
		for _, h := range e.Headings {
			dumpHeading(tw, 2, h)
		}
	}
	return tw.String()
}

func dumpHeading(tw *debug.TreeWriter, depth int, h *page.Heading) {
	tw.Line(depth, "%s %s", h.Level.Tag(), h.ID())
	tw.TextBlock(depth+1, "text", h.Text())
	tw.Offset(depth+1, "y", h.Position, true)
	if h.NotNumbered() {
		tw.Line(depth+1, "not numbered")
	}
}

// DumpPage writes page targets: generated table of contents markup followed
// by every bound target with offset it would scroll to right now.
func DumpPage(p *Page) string {
	tw := debug.NewTreeWriter()
	if p.TOC != nil {
		tw.Line(0, "generated table of contents")
		tw.Element(1, p.TOC)
	}
	targets := p.Targets.Targets()
	tw.Line(0, "targets: %d", len(targets))
	for _, t := range targets {
		y, ok := t.Offset()
		tw.Line(1, "%s", t.Kind())
		if h := t.Heading(); h != nil {
			tw.TextBlock(2, "heading", h.Text())
		}
		tw.Offset(2, "y", y, ok)
	}
	if e, ok := p.Resolver.(*layout.Estimator); ok {
		tw.Offset(0, "estimated height", e.Height(), true)
	}
	return tw.String()
}
