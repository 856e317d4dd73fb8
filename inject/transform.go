package inject

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"itoc/common"
	"itoc/config"
	"itoc/layout"
	"itoc/page"
	"itoc/scroll"
	"itoc/toc"
)

// Load reads source document of requested kind. Markdown is rendered to
// XHTML page first.
func Load(r io.Reader, name string, format common.InputFmt, cfg *config.DocumentConfig) (*page.Document, error) {
	if format == common.InputFmtMarkdown {
		src, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("unable to read %q: %w", name, err)
		}
		return page.FromMarkdown(src, name, cfg.Markdown.Options())
	}
	return page.Read(r, name)
}

// Prepare attaches table of contents, go-to controls and runtime script to
// the loaded document. Positions are estimated with configured layout
// metrics, using real image sizes when im is set, and activations are
// reported to handler.
func Prepare(doc *page.Document, handler scroll.Handler, scriptHref string, im layout.Images, cfg *config.DocumentConfig, log *zap.Logger) *toc.Page {
	resolver := layout.NewEstimator(doc.Tree, cfg.Layout.Metrics())
	if im != nil {
		resolver.WithImages(im)
	}
	p := toc.Ready(doc, resolver, handler, cfg, log)
	if toc.AttachRuntime(p, cfg.Script.Mode, scriptHref) {
		log.Debug("Runtime script attached", zap.Stringer("mode", cfg.Script.Mode))
	}
	return p
}
