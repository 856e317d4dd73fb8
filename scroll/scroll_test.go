package scroll

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"itoc/page"
)

type mapResolver map[*etree.Element]float64

func (r mapResolver) Offset(el *etree.Element) (float64, bool) {
	y, ok := r[el]
	return y, ok
}

func loadDoc(t *testing.T, src string) *page.Document {
	t.Helper()
	doc, err := page.Read(strings.NewReader(src), "test.html")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return doc
}

const sample = `<html><body>
<div id="table-of-contents__container"/>
<h2 id="a" class="not-numbered">Alpha <i>one</i></h2>
<h3>Beta</h3>
</body></html>`

func TestHeadingTarget(t *testing.T) {
	doc := loadDoc(t, sample)
	hs := doc.Headings(mapResolver{doc.ElementByID("a"): 120})
	rec := &Recorder{}

	target := NewHeadingTarget(doc, hs[0], 8, rec)
	li := target.Element()
	if li != target.Trigger() {
		t.Error("heading item reacts to clicks on itself")
	}
	if li.Tag != "li" || !page.HasClass(li, ClickableClass) || !page.HasClass(li, page.NotNumberedClass) {
		t.Errorf("unexpected item: %s class=%q", li.Tag, li.SelectAttrValue("class", ""))
	}
	if li.SelectAttrValue(ScrollAttr, "") != "heading" || li.SelectAttrValue(TargetAttr, "") != "a" || li.SelectAttrValue(OffsetAttr, "") != "8" {
		t.Error("unexpected data attributes")
	}
	span := li.FindElement("span")
	if span == nil || page.Markup(span.Child) != "Alpha <i>one</i>" {
		t.Error("heading markup was not copied")
	}

	y, ok := target.Activate()
	if !ok || y != 128 {
		t.Errorf("Activate() = %v, %v", y, ok)
	}
	if last, _ := rec.Last(); last != 128 {
		t.Errorf("recorded %v", last)
	}

	// second heading has no id and no extra offset
	plain := NewHeadingTarget(doc, hs[1], 0, rec)
	if plain.Element().SelectAttr(TargetAttr) != nil || plain.Element().SelectAttr(OffsetAttr) != nil {
		t.Error("optional attributes must be omitted")
	}
	if page.HasClass(plain.Element(), page.NotNumberedClass) {
		t.Error("not numbered marker leaked")
	}
}

func TestTopTarget(t *testing.T) {
	rec := &Recorder{}
	target := NewTopTarget(rec)
	if target.Element().Tag != "div" || !page.HasClass(target.Element(), GoToClass) {
		t.Error("unexpected control element")
	}
	if target.Trigger().Text() != TopLabel {
		t.Errorf("label = %q", target.Trigger().Text())
	}
	for range 3 {
		if y, ok := target.Activate(); !ok || y != 0 {
			t.Errorf("Activate() = %v, %v", y, ok)
		}
	}
	if len(rec.Offsets) != 3 {
		t.Errorf("recorded %d scrolls", len(rec.Offsets))
	}
}

func TestTOCTarget(t *testing.T) {
	doc := loadDoc(t, sample)
	site := doc.TOCSite()
	r := mapResolver{site: 300}
	rec := &Recorder{}

	target := NewTOCTarget(doc, r, rec)
	if target.Trigger().Text() != TOCLabel {
		t.Errorf("label = %q", target.Trigger().Text())
	}
	if y, ok := target.Activate(); !ok || y != 300 {
		t.Errorf("Activate() = %v, %v", y, ok)
	}
	r[site] = 10
	if y, ok := target.Activate(); !ok || y != 10 {
		t.Errorf("Activate() after move = %v, %v", y, ok)
	}

	site.Parent().RemoveChild(site)
	if _, ok := target.Activate(); ok {
		t.Error("target must be stale without site")
	}
	if len(rec.Offsets) != 2 {
		t.Errorf("recorded %v", rec.Offsets)
	}
}

func TestStaleHeading(t *testing.T) {
	doc := loadDoc(t, sample)
	hs := doc.Headings(nil)
	rec := &Recorder{}
	target := NewHeadingTarget(doc, hs[0], 0, rec)

	hs[0].Element.Parent().RemoveChild(hs[0].Element)
	if _, ok := target.Activate(); ok {
		t.Error("target must be stale after heading removal")
	}
	if len(rec.Offsets) != 0 {
		t.Error("stale target scrolled")
	}
}

func TestRegistry(t *testing.T) {
	doc := loadDoc(t, sample)
	hs := doc.Headings(nil)
	rec := &Recorder{}

	reg := NewRegistry()
	heading := NewHeadingTarget(doc, hs[0], 0, rec)
	top := NewTopTarget(rec)
	reg.Bind(heading)
	reg.Bind(top)

	if got := reg.Targets(); len(got) != 2 || got[0] != heading || got[1] != top {
		t.Error("targets are not kept in binding order")
	}

	// clicks on nested markup bubble to the trigger
	nested := heading.Element().FindElement(".//i")
	if reg.Lookup(nested) != heading {
		t.Error("nested element does not resolve to heading target")
	}
	if _, ok := reg.Click(top.Trigger()); !ok {
		t.Error("click on top control failed")
	}
	// wrapper div is not a trigger
	if _, ok := reg.Click(top.Element()); ok {
		t.Error("click outside trigger activated target")
	}
	if _, ok := reg.Click(etree.NewElement("p")); ok {
		t.Error("click on unrelated element activated target")
	}
}

func TestKind_String(t *testing.T) {
	for k, want := range map[Kind]string{KindHeading: "heading", KindTop: "top", KindTOC: "toc", Kind(9): "Kind(9)"} {
		if k.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(k), k.String(), want)
		}
	}
}

func TestHandlers(t *testing.T) {
	var got float64
	HandlerFunc(func(y float64) { got = y }).ScrollTo(7)
	if got != 7 {
		t.Errorf("HandlerFunc got %v", got)
	}

	rec := &Recorder{}
	if _, ok := rec.Last(); ok {
		t.Error("empty recorder has last offset")
	}

	core, logs := observer.New(zap.InfoLevel)
	LogHandler{Log: zap.New(core)}.ScrollTo(42)
	entries := logs.All()
	if len(entries) != 1 || entries[0].ContextMap()["y"] != float64(42) {
		t.Errorf("unexpected log entries: %v", entries)
	}
}
