package page

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/gosimple/slug"

	"itoc/layout"
)

// Level of section heading.
type Level int

const (
	// LevelPrimary is a top level section heading (h2).
	LevelPrimary Level = iota
	// LevelSecondary is a subsection heading (h3).
	LevelSecondary
)

func (l Level) String() string {
	switch l {
	case LevelPrimary:
		return "primary"
	case LevelSecondary:
		return "secondary"
	}
	return "Level(" + strconv.Itoa(int(l)) + ")"
}

// Tag returns HTML element name for the level.
func (l Level) Tag() string {
	if l == LevelSecondary {
		return "h3"
	}
	return "h2"
}

func levelOf(el *etree.Element) (Level, bool) {
	switch strings.ToLower(el.Tag) {
	case "h2":
		return LevelPrimary, true
	case "h3":
		return LevelSecondary, true
	}
	return 0, false
}

// Heading is a section heading captured from document. Content is taken at
// capture time, Position is resolved by Locate.
type Heading struct {
	Level    Level
	Element  *etree.Element
	Position float64

	content []etree.Token
}

// Content returns fresh copy of heading markup fragment, ready to be
// attached to another element.
func (h *Heading) Content() []etree.Token {
	return copyTokens(h.content)
}

// Markup returns heading markup fragment serialized.
func (h *Heading) Markup() string {
	return Markup(h.content)
}

// Text returns heading text without markup.
func (h *Heading) Text() string {
	var b strings.Builder
	collectText(&b, h.content)
	return strings.Join(strings.Fields(b.String()), " ")
}

// NotNumbered reports if host marked heading as excluded from numbering.
func (h *Heading) NotNumbered() bool {
	return HasClass(h.Element, NotNumberedClass)
}

// ID returns heading element id, may be empty.
func (h *Heading) ID() string {
	return h.Element.SelectAttrValue("id", "")
}

// Locate resolves heading position in current document layout. Unresolved
// or nil resolver leaves position at 0.
func (h *Heading) Locate(resolver layout.Resolver) {
	h.Position = 0
	if resolver != nil {
		h.Position, _ = resolver.Offset(h.Element)
	}
}

// Headings captures all primary and secondary headings of the document in
// document order, wherever they are. Positions are resolved now.
func (d *Document) Headings(resolver layout.Resolver) []*Heading {
	var headings []*Heading
	d.Walk(func(el *etree.Element) bool {
		level, ok := levelOf(el)
		if !ok {
			return true
		}
		h := &Heading{
			Level:   level,
			Element: el,
			content: copyTokens(el.Child),
		}
		h.Locate(resolver)
		headings = append(headings, h)
		return true
	})
	return headings
}

// AssignHeadingIDs gives every primary and secondary heading without id a
// unique one derived from its text. Returns number of ids assigned.
func (d *Document) AssignHeadingIDs() int {
	used := make(map[string]bool)
	var pending []*etree.Element
	d.Walk(func(el *etree.Element) bool {
		if id := el.SelectAttrValue("id", ""); len(id) > 0 {
			used[id] = true
		}
		if _, ok := levelOf(el); ok && el.SelectAttr("id") == nil {
			pending = append(pending, el)
		}
		return true
	})

	for _, el := range pending {
		var b strings.Builder
		collectText(&b, el.Child)
		base := slug.Make(b.String())
		if len(base) == 0 {
			base = "section"
		}
		id := base
		for n := 2; used[id]; n++ {
			id = base + "-" + strconv.Itoa(n)
		}
		used[id] = true
		el.CreateAttr("id", id)
	}
	return len(pending)
}

// InsertGoToSitesAfterPrimary places empty go-to container after every
// primary heading which is not already followed by one.
func (d *Document) InsertGoToSitesAfterPrimary() int {
	var primary []*etree.Element
	d.Walk(func(el *etree.Element) bool {
		if level, ok := levelOf(el); ok && level == LevelPrimary {
			primary = append(primary, el)
		}
		return true
	})

	count := 0
	for _, el := range primary {
		parent := el.Parent()
		if parent == nil {
			continue
		}
		if next := el.NextSibling(); next != nil && HasClass(next, GoToSiteClass) {
			continue
		}
		site := etree.NewElement("div")
		site.CreateAttr("class", GoToSiteClass)
		parent.InsertChildAt(el.Index()+1, site)
		count++
	}
	return count
}

func copyTokens(tokens []etree.Token) []etree.Token {
	out := make([]etree.Token, 0, len(tokens))
	for _, t := range tokens {
		switch v := t.(type) {
		case *etree.Element:
			out = append(out, v.Copy())
		case *etree.CharData:
			if v.IsCData() {
				out = append(out, etree.NewCData(v.Data))
			} else {
				out = append(out, etree.NewText(v.Data))
			}
		case *etree.Comment:
			out = append(out, etree.NewComment(v.Data))
		}
	}
	return out
}

// Markup serializes tokens the way document writer would.
func Markup(tokens []etree.Token) string {
	var (
		b strings.Builder
		s = newTree().WriteSettings
	)
	for _, t := range tokens {
		t.WriteTo(&b, &s)
	}
	return b.String()
}

func collectText(b *strings.Builder, tokens []etree.Token) {
	for _, t := range tokens {
		switch v := t.(type) {
		case *etree.CharData:
			b.WriteString(v.Data)
			b.WriteByte(' ')
		case *etree.Element:
			collectText(b, v.Child)
		}
	}
}
