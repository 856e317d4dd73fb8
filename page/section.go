package page

import (
	"strings"

	"github.com/beevik/etree"
)

var (
	inlineTags = map[string]bool{
		"a": true, "abbr": true, "b": true, "cite": true, "code": true, "em": true,
		"i": true, "kbd": true, "mark": true, "q": true, "s": true, "samp": true,
		"small": true, "span": true, "strong": true, "sub": true, "sup": true,
		"time": true, "u": true, "var": true,
	}
	skippedTags = map[string]bool{
		"script": true, "style": true, "template": true, "noscript": true,
		"pre": true, "table": true, "figure": true,
	}
)

func isAnyHeading(el *etree.Element) bool {
	tag := strings.ToLower(el.Tag)
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

// SectionText returns prose following heading up to the next heading of
// any level. Code, tables and figures are left out.
func (d *Document) SectionText(h *Heading) string {
	var (
		b       strings.Builder
		started bool
	)
	var walk func(e *etree.Element) bool
	walk = func(e *etree.Element) bool {
		for _, t := range e.Child {
			switch v := t.(type) {
			case *etree.CharData:
				if started {
					b.WriteString(v.Data)
				}
			case *etree.Element:
				if v == h.Element {
					started = true
					continue
				}
				if started && isAnyHeading(v) {
					return false
				}
				if started && skippedTags[strings.ToLower(v.Tag)] {
					continue
				}
				if !walk(v) {
					return false
				}
				if started && !inlineTags[strings.ToLower(v.Tag)] {
					b.WriteByte(' ')
				}
			}
		}
		return true
	}
	walk(&d.Tree.Element)
	return strings.Join(strings.Fields(b.String()), " ")
}
