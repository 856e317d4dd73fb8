// Package scroll models interactive elements whose activation moves the
// viewport so that a computed vertical offset is at the top.
//
// Target is a closed set of three kinds: a bound heading, the top of the
// page and the table of contents. Kinds differ only in how offset is
// computed on activation.
package scroll

import (
	"strconv"

	"github.com/beevik/etree"

	"itoc/layout"
	"itoc/page"
)

// Handler is the only capability needed from the scrolling mechanism.
type Handler interface {
	ScrollTo(y float64)
}

// HandlerFunc adapts ordinary function to Handler.
type HandlerFunc func(y float64)

func (f HandlerFunc) ScrollTo(y float64) { f(y) }

// Kind of scroll target.
type Kind int

const (
	KindHeading Kind = iota
	KindTop
	KindTOC
)

// String returns value used for "data-scroll" attribute of generated markup.
func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindTop:
		return "top"
	case KindTOC:
		return "toc"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Markers and labels of generated elements.
const (
	ClickableClass = "clickable-list-item"
	GoToClass      = "div-go-to"
	TopLabel       = "beginning"
	TOCLabel       = "topics"

	ScrollAttr = "data-scroll"
	TargetAttr = "data-target"
	OffsetAttr = "data-offset"
)

// Target is an interactive element with its activation behavior.
type Target struct {
	kind    Kind
	element *etree.Element // visual representation
	trigger *etree.Element // element reacting to clicks
	handler Handler

	// heading kind
	doc     *page.Document
	heading *page.Heading
	extra   float64

	// toc kind
	resolver layout.Resolver
}

// NewHeadingTarget produces list item scrolling to h. The item shows a copy
// of heading content and inherits heading "not numbered" marker. Offset is
// heading position captured at construction plus extra.
func NewHeadingTarget(doc *page.Document, h *page.Heading, extra float64, handler Handler) *Target {
	li := etree.NewElement("li")
	li.CreateAttr("class", ClickableClass)
	if h.NotNumbered() {
		page.AddClass(li, page.NotNumberedClass)
	}
	li.CreateAttr(ScrollAttr, KindHeading.String())
	if id := h.ID(); len(id) > 0 {
		li.CreateAttr(TargetAttr, id)
	}
	if extra != 0 {
		li.CreateAttr(OffsetAttr, strconv.FormatFloat(extra, 'f', -1, 64))
	}
	span := li.CreateElement("span")
	for _, t := range h.Content() {
		span.AddChild(t)
	}
	return &Target{
		kind:    KindHeading,
		element: li,
		trigger: li,
		handler: handler,
		doc:     doc,
		heading: h,
		extra:   extra,
	}
}

// NewTopTarget produces control scrolling to the very top of the page.
func NewTopTarget(handler Handler) *Target {
	div, span := goToElement(KindTop, TopLabel)
	return &Target{
		kind:    KindTop,
		element: div,
		trigger: span,
		handler: handler,
	}
}

// NewTOCTarget produces control scrolling to table of contents site. Site
// is looked up and its position resolved on every activation.
func NewTOCTarget(doc *page.Document, resolver layout.Resolver, handler Handler) *Target {
	div, span := goToElement(KindTOC, TOCLabel)
	return &Target{
		kind:     KindTOC,
		element:  div,
		trigger:  span,
		handler:  handler,
		doc:      doc,
		resolver: resolver,
	}
}

func goToElement(kind Kind, label string) (*etree.Element, *etree.Element) {
	div := etree.NewElement("div")
	div.CreateAttr("class", GoToClass)
	span := div.CreateElement("span")
	span.CreateAttr(ScrollAttr, kind.String())
	span.SetText(label)
	return div, span
}

func (t *Target) Kind() Kind { return t.kind }

// Element returns visual representation to be inserted into document.
func (t *Target) Element() *etree.Element { return t.element }

// Trigger returns element clicks on which activate the target.
func (t *Target) Trigger() *etree.Element { return t.trigger }

// Heading returns bound heading, nil for other kinds.
func (t *Target) Heading() *page.Heading { return t.heading }

// Offset computes where activation would scroll to. ok is false when target
// position cannot be resolved any more.
func (t *Target) Offset() (float64, bool) {
	switch t.kind {
	case KindHeading:
		if t.heading == nil || t.doc == nil || !t.doc.Contains(t.heading.Element) {
			return 0, false
		}
		return t.heading.Position + t.extra, true
	case KindTop:
		return 0, true
	case KindTOC:
		if t.doc == nil || t.resolver == nil {
			return 0, false
		}
		site := t.doc.TOCSite()
		if site == nil {
			return 0, false
		}
		return t.resolver.Offset(site)
	}
	return 0, false
}

// Activate scrolls to target. Stale target is a no-op reported by ok being
// false, handler is not called then.
func (t *Target) Activate() (y float64, ok bool) {
	if y, ok = t.Offset(); !ok || t.handler == nil {
		return y, false
	}
	t.handler.ScrollTo(y)
	return y, true
}
