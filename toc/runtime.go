package toc

import (
	_ "embed"
	"strings"

	"github.com/beevik/etree"

	"itoc/common"
)

//go:embed runtime.js
var runtimeJS string

// RuntimeAttr marks script element attached by AttachRuntime.
const RuntimeAttr = "data-itoc"

// RuntimeScript returns browser code which scrolls viewport when generated
// elements are clicked. It dispatches on "data-scroll" attribute values and
// resolves positions in the browser at click time.
func RuntimeScript() string {
	return runtimeJS
}

// AttachRuntime adds script element to the page head (or body when there is
// no head). Inline mode embeds the code, external mode references href.
// Nothing is attached when page has no targets, mode is none or runtime was
// already attached.
func AttachRuntime(p *Page, mode common.ScriptMode, href string) bool {
	if mode == common.ScriptModeNone || len(p.Targets.Targets()) == 0 {
		return false
	}
	var (
		attached bool
		host     *etree.Element
	)
	p.Doc.Walk(func(el *etree.Element) bool {
		switch {
		case strings.EqualFold(el.Tag, "script") && el.SelectAttr(RuntimeAttr) != nil:
			attached = true
		case host == nil && strings.EqualFold(el.Tag, "head"):
			host = el
		}
		return !attached
	})
	if attached {
		return false
	}
	if host == nil {
		host = p.Doc.Body()
	}
	if host == nil {
		return false
	}

	script := host.CreateElement("script")
	script.CreateAttr("type", "text/javascript")
	script.CreateAttr(RuntimeAttr, "runtime")
	switch mode {
	case common.ScriptModeExternal:
		script.CreateAttr("src", href)
	default:
		script.CreateText("//")
		script.CreateCData("\n" + runtimeJS + "//")
		script.CreateText("\n")
	}
	return true
}
