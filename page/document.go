// Package page loads host documents and exposes what the interactive table of
// contents needs from them: section headings and container sites.
package page

import (
	"encoding/xml"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// Markers host documents use to request features and markers of generated
// markup.
const (
	TOCSiteID        = "table-of-contents__container"
	GoToSiteClass    = "divs-go-to__container"
	NotNumberedClass = "not-numbered"
)

// Document is a loaded host document.
type Document struct {
	Name string
	Tree *etree.Document
}

// New wraps already parsed tree.
func New(name string, tree *etree.Document) *Document {
	return &Document{Name: name, Tree: tree}
}

// charsetReader decodes legacy encodings declared in XML prolog. Unicode
// inputs arrive here already converted to UTF-8 (see BOM handling by
// callers), so their declarations are ignored.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch l := strings.ToLower(strings.TrimSpace(label)); {
	case strings.HasPrefix(l, "utf-16"), strings.HasPrefix(l, "utf-32"), strings.HasPrefix(l, "ucs-"):
		return input, nil
	}
	return charset.NewReaderLabel(label, input)
}

func newTree() *etree.Document {
	tree := etree.NewDocument()
	tree.ReadSettings = etree.ReadSettings{
		CharsetReader: charsetReader,
		Entity:        xml.HTMLEntity,
		AutoClose:     xml.HTMLAutoClose,
		PreserveCData: true,
		ValidateInput: false,
		Permissive:    true,
	}
	tree.WriteSettings = etree.WriteSettings{
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}
	return tree
}

// Read parses HTML or XHTML document. HTML is accepted as long as it is
// close enough to XML for permissive decoder: void elements may be left
// unclosed and HTML named entities are understood.
func Read(r io.Reader, name string) (*Document, error) {
	// decoder stops early on readers returning last data with io.EOF
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read document: %w", err)
	}
	tree := newTree()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("unable to parse document: %w", err)
	}
	if tree.Root() == nil {
		return nil, fmt.Errorf("document %q has no root element", name)
	}
	return New(name, tree), nil
}

// voidTags may be written self-closed, every other empty element gets
// explicit end tag so output survives HTML parsers.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// WriteTo serializes document.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	d.Walk(func(el *etree.Element) bool {
		if len(el.Child) == 0 && !voidTags[strings.ToLower(el.Tag)] {
			el.AddChild(etree.NewText(""))
		}
		return true
	})
	return d.Tree.WriteTo(w)
}

// Body returns element under which generated content may be placed when
// host did not provide a site: body if present, document root otherwise.
func (d *Document) Body() *etree.Element {
	var body *etree.Element
	d.Walk(func(el *etree.Element) bool {
		if body == nil && strings.EqualFold(el.Tag, "body") {
			body = el
		}
		return body == nil
	})
	if body == nil {
		return d.Tree.Root()
	}
	return body
}

// Walk visits elements in document order until fn returns false.
func (d *Document) Walk(fn func(el *etree.Element) bool) {
	var walk func(e *etree.Element) bool
	walk = func(e *etree.Element) bool {
		for _, t := range e.Child {
			if child, ok := t.(*etree.Element); ok {
				if !fn(child) || !walk(child) {
					return false
				}
			}
		}
		return true
	}
	walk(&d.Tree.Element)
}

// Contains reports if el is currently attached to the document.
func (d *Document) Contains(el *etree.Element) bool {
	for p := el; p != nil; p = p.Parent() {
		if p == &d.Tree.Element {
			return true
		}
	}
	return false
}

// ElementByID returns first element with requested id.
func (d *Document) ElementByID(id string) *etree.Element {
	var found *etree.Element
	d.Walk(func(el *etree.Element) bool {
		if el.SelectAttrValue("id", "") == id {
			found = el
		}
		return found == nil
	})
	return found
}

// ElementsByClass returns all elements carrying class in document order.
func (d *Document) ElementsByClass(class string) []*etree.Element {
	var found []*etree.Element
	d.Walk(func(el *etree.Element) bool {
		if HasClass(el, class) {
			found = append(found, el)
		}
		return true
	})
	return found
}

// TOCSite returns TOC insertion point or nil when document does not want
// table of contents.
func (d *Document) TOCSite() *etree.Element {
	return d.ElementByID(TOCSiteID)
}

// GoToSites returns all go-to controls insertion points.
func (d *Document) GoToSites() []*etree.Element {
	return d.ElementsByClass(GoToSiteClass)
}

// HasClass checks element "class" attribute.
func HasClass(el *etree.Element, class string) bool {
	return slices.Contains(strings.Fields(el.SelectAttrValue("class", "")), class)
}

// AddClass appends class to element "class" attribute if not there yet.
func AddClass(el *etree.Element, class string) {
	classes := strings.Fields(el.SelectAttrValue("class", ""))
	if slices.Contains(classes, class) {
		return
	}
	el.CreateAttr("class", strings.Join(append(classes, class), " "))
}

// Title returns text of document title element, or of the first h1 when
// title is missing or empty.
func (d *Document) Title() string {
	var title string
	for _, tag := range []string{"title", "h1"} {
		d.Walk(func(el *etree.Element) bool {
			if !strings.EqualFold(el.Tag, tag) {
				return true
			}
			var b strings.Builder
			collectText(&b, el.Child)
			title = strings.Join(strings.Fields(b.String()), " ")
			return false
		})
		if len(title) > 0 {
			break
		}
	}
	return title
}

// Lang returns language declared by document root, may be empty.
func (d *Document) Lang() string {
	root := d.Tree.Root()
	if root == nil {
		return ""
	}
	if lang := root.SelectAttrValue("lang", ""); len(lang) > 0 {
		return lang
	}
	return root.SelectAttrValue("xml:lang", "")
}
