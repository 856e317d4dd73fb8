// Package layout answers vertical position queries for elements of a loaded
// document. There is no real renderer behind it: positions are estimated by
// laying document blocks out one under another in a single column.
package layout

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"

	"itoc/utils/images"
)

// Resolver reports the distance in pixels from the top of the page to the
// top of an element.
type Resolver interface {
	// Offset returns current position of el. ok is false when el is not
	// part of the document (never was or was removed since).
	Offset(el *etree.Element) (y float64, ok bool)
}

// Metrics drive block height estimation.
type Metrics struct {
	LineHeight   float64
	CharsPerLine int
	BlockSpacing float64
	HeadingScale float64
	// ImageHeight is used for embedded content of unknown size.
	ImageHeight float64
	// ColumnWidth limits width of images, taller ones are scaled down
	// keeping aspect ratio. Zero means no limit.
	ColumnWidth float64
}

// Images supplies intrinsic sizes of images referenced by documents.
type Images interface {
	Size(src string) (w, h float64, ok bool)
}

// DefaultMetrics roughly matches a desktop browser with default stylesheet.
func DefaultMetrics() Metrics {
	return Metrics{
		LineHeight:   24,
		CharsPerLine: 80,
		BlockSpacing: 16,
		HeadingScale: 1.5,
		ImageHeight:  240,
		ColumnWidth:  720,
	}
}

// Estimator is a Resolver which walks the document on every query, so
// positions always reflect the current state of the tree.
type Estimator struct {
	doc    *etree.Document
	m      Metrics
	images Images
}

func NewEstimator(doc *etree.Document, m Metrics) *Estimator {
	if m.CharsPerLine <= 0 {
		m.CharsPerLine = DefaultMetrics().CharsPerLine
	}
	if m.HeadingScale <= 0 {
		m.HeadingScale = 1
	}
	return &Estimator{doc: doc, m: m}
}

// WithImages makes estimator use real image sizes where known.
func (e *Estimator) WithImages(im Images) *Estimator {
	e.images = im
	return e
}

func (e *Estimator) Offset(el *etree.Element) (float64, bool) {
	if el == nil || e.doc == nil {
		return 0, false
	}
	c := &cursor{m: e.m, images: e.images, target: el, scale: 1}
	for _, t := range e.doc.Child {
		if child, ok := t.(*etree.Element); ok && c.visit(child) {
			return c.y, true
		}
	}
	return 0, false
}

// Height returns estimated height of the whole document.
func (e *Estimator) Height() float64 {
	c := &cursor{m: e.m, images: e.images, scale: 1}
	for _, t := range e.doc.Child {
		if child, ok := t.(*etree.Element); ok {
			c.visit(child)
		}
	}
	c.flush()
	return c.y
}

var (
	hiddenTags = map[string]bool{
		"head": true, "script": true, "style": true, "title": true,
		"template": true, "noscript": true, "meta": true, "link": true,
	}
	blockTags = map[string]bool{
		"html": true, "body": true, "div": true, "p": true, "section": true,
		"article": true, "header": true, "footer": true, "nav": true, "main": true,
		"aside": true, "blockquote": true, "pre": true, "ul": true, "ol": true,
		"li": true, "dl": true, "dt": true, "dd": true, "table": true, "tr": true,
		"figure": true, "figcaption": true, "form": true, "fieldset": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"hr": true, "address": true, "details": true, "summary": true,
	}
	spacedTags = map[string]bool{
		"p": true, "ul": true, "ol": true, "dl": true, "pre": true,
		"blockquote": true, "table": true, "figure": true, "hr": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	}
)

func isHeading(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

type cursor struct {
	m      Metrics
	images Images
	target *etree.Element
	y      float64
	run    int // runes of inline text not yet laid out
	scale  float64
	pre    bool
}

// flush lays out pending inline text of the current block.
func (c *cursor) flush() {
	if c.run == 0 {
		return
	}
	lines := (c.run + c.m.CharsPerLine - 1) / c.m.CharsPerLine
	c.y += float64(lines) * c.m.LineHeight * c.scale
	c.run = 0
}

// visit returns true as soon as target is reached, leaving y at its top.
func (c *cursor) visit(el *etree.Element) bool {
	tag := strings.ToLower(el.Tag)
	block := blockTags[tag]
	if block {
		c.flush()
	}
	if el == c.target {
		return true
	}
	if hiddenTags[tag] {
		// not rendered, but target may still live inside
		return c.target != nil && contains(el, c.target)
	}

	switch tag {
	case "br":
		if c.run == 0 {
			c.run = 1
		}
		c.flush()
		return false
	case "img", "svg", "video", "canvas", "iframe":
		c.flush()
		c.y += c.replaced(el, tag)
		return c.target != nil && contains(el, c.target)
	case "hr":
		c.y += c.m.BlockSpacing
		return false
	}

	oldScale, oldPre := c.scale, c.pre
	if isHeading(tag) {
		c.scale = c.m.HeadingScale
	}
	if tag == "pre" {
		c.pre = true
	}

	for _, t := range el.Child {
		switch v := t.(type) {
		case *etree.Element:
			if c.visit(v) {
				return true
			}
		case *etree.CharData:
			c.text(v.Data)
		}
	}

	if block {
		c.flush()
		if spacedTags[tag] {
			c.y += c.m.BlockSpacing
		}
	}
	c.scale, c.pre = oldScale, oldPre
	return false
}

func (c *cursor) text(s string) {
	if c.pre {
		lines := strings.Split(strings.Trim(s, "\n"), "\n")
		for i, l := range lines {
			c.run += max(utf8.RuneCountInString(l), 1)
			if i < len(lines)-1 {
				c.flush()
			}
		}
		return
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return
	}
	n := len(words) - 1
	for _, w := range words {
		n += utf8.RuneCountInString(w)
	}
	if c.run > 0 {
		n++
	}
	c.run += n
}

func contains(root, el *etree.Element) bool {
	for p := el; p != nil; p = p.Parent() {
		if p == root {
			return true
		}
	}
	return false
}

// replaced returns height of embedded content. Explicit dimensions win,
// missing one is derived from intrinsic aspect ratio.
func (c *cursor) replaced(el *etree.Element, tag string) float64 {
	w, h := dimension(el, "width"), dimension(el, "height")

	var iw, ih float64
	switch tag {
	case "img":
		if c.images != nil {
			iw, ih, _ = c.images.Size(el.SelectAttrValue("src", ""))
		}
	case "svg":
		iw, ih = inlineSVGSize(el)
	}

	switch {
	case w > 0 && h > 0:
	case h > 0:
		if iw > 0 && ih > 0 {
			w = iw * h / ih
		}
	case w > 0 && iw > 0 && ih > 0:
		h = ih * w / iw
	case iw > 0 && ih > 0:
		w, h = iw, ih
	default:
		return c.m.ImageHeight
	}
	if c.m.ColumnWidth > 0 && w > c.m.ColumnWidth {
		h *= c.m.ColumnWidth / w
	}
	return h
}

// dimension parses presentational attribute, only pixel values are
// understood.
func dimension(el *etree.Element, name string) float64 {
	v := strings.TrimSuffix(strings.TrimSpace(el.SelectAttrValue(name, "")), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0
	}
	return f
}

func inlineSVGSize(el *etree.Element) (float64, float64) {
	if len(el.SelectAttrValue("viewBox", "")) == 0 {
		return 0, 0
	}
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	data, err := doc.WriteToBytes()
	if err != nil {
		return 0, 0
	}
	s, err := images.SVGSize(data)
	if err != nil {
		return 0, 0
	}
	return float64(s.W), float64(s.H)
}
