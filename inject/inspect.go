package inject

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"itoc/layout"
	"itoc/scroll"
	"itoc/state"
	"itoc/toc"
	"itoc/utils/images"
)

// Inspect loads single document, attaches table of contents in memory and
// prints what was built. When requested every target is activated in turn,
// which reports offsets the page would scroll to.
func Inspect(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("inspect")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input document has been specified")
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	source, err := OpenDocument(src)
	if err != nil {
		return fmt.Errorf("unable to open document: %w", err)
	}
	if source == nil {
		return fmt.Errorf("input was not recognized as document (%s)", src)
	}
	defer source.Close()

	doc, err := Load(source, filepath.Base(src), source.Format, &env.Cfg.Document)
	if err != nil {
		return err
	}
	var im layout.Images
	if env.Cfg.Document.Layout.ProbeImages {
		im = images.NewDir(os.DirFS(filepath.Dir(src)), ".")
	}
	p := Prepare(doc, scroll.LogHandler{Log: log}, env.Cfg.Document.Script.FileName, im, &env.Cfg.Document, log)

	if err := report(env.Out, p, cmd.Bool("activate")); err != nil {
		return err
	}
	if env.Rpt != nil {
		env.Rpt.Store("inspected"+filepath.Ext(src), src)
	}
	return nil
}

func report(w io.Writer, p *toc.Page, activate bool) error {
	if len(p.Entries) > 0 {
		if _, err := io.WriteString(w, toc.Dump(p.Entries)); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, toc.DumpPage(p)); err != nil {
		return err
	}
	if !activate {
		return nil
	}
	for i, t := range p.Targets.Targets() {
		y, ok := t.Activate()
		if !ok {
			if _, err := fmt.Fprintf(w, "activate %d (%s): stale\n", i+1, t.Kind()); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "activate %d (%s): %g\n", i+1, t.Kind(), y); err != nil {
			return err
		}
	}
	return nil
}
