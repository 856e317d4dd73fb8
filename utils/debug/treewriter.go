package debug

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// TreeWriter accumulates indented human readable dump of hierarchical data.
type TreeWriter struct {
	w      *strings.Builder
	indent string
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w:      &strings.Builder{},
		indent: "  ",
	}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) pad(depth int) {
	for range depth {
		tw.w.WriteString(tw.indent)
	}
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.pad(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Offset writes labeled vertical position, unresolved positions are shown
// as "n/a".
func (tw *TreeWriter) Offset(depth int, label string, y float64, ok bool) {
	tw.pad(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	if ok {
		tw.w.WriteString(strconv.FormatFloat(y, 'f', -1, 64))
	} else {
		tw.w.WriteString("n/a")
	}
	tw.w.WriteByte('\n')
}

// Element writes element subtree: one line per element with its attributes
// in document order, non blank text as quoted blocks.
func (tw *TreeWriter) Element(depth int, el *etree.Element) {
	tw.pad(depth)
	tw.w.WriteString(el.FullTag())
	for _, a := range el.Attr {
		fmt.Fprintf(tw.w, " %s=%s", a.FullKey(), strconv.Quote(a.Value))
	}
	tw.w.WriteByte('\n')
	for _, t := range el.Child {
		switch v := t.(type) {
		case *etree.Element:
			tw.Element(depth+1, v)
		case *etree.CharData:
			if text := strings.TrimSpace(v.Data); len(text) > 0 {
				tw.TextBlock(depth+1, "text", text)
			}
		}
	}
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
