// Package inject implements batch processing: it finds documents in files,
// directories and zip archives, attaches interactive table of contents to
// every one of them and writes results out.
package inject

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"itoc/archive"
	"itoc/common"
	"itoc/layout"
	"itoc/state"
	"itoc/toc"
	"itoc/utils/images"
)

// job keeps what is shared by all documents of a single run.
type job struct {
	out     sink
	catalog *catalog
	filter  *archive.Filter
	log     *zap.Logger
	probe   bool

	// set when at least one document references external runtime script
	needScript bool
	count      int
	failed     int
	errs       error
}

// fail accounts for document which could not be processed.
func (j *job) fail(src string, err error) {
	j.failed++
	j.errs = multierr.Append(j.errs, fmt.Errorf("%s: %w", src, err))
}

// images returns prober for documents located in dir of fsys, nil when
// image sizes should not be looked at.
func (j *job) images(fsys fs.FS, dir string) layout.Images {
	if !j.probe {
		return nil
	}
	return images.NewDir(fsys, dir)
}

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("inject")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Inject.NoDirs, env.Inject.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")
	if c := cmd.String("catalog"); len(c) > 0 {
		env.Cfg.Catalog.Destination = c
	}

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		env.Inject.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.Inject.CodePage == nil {
			log.Warn("Unknown character set name, ignoring", zap.String("charset", cp), zap.Error(err))
			env.Inject.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.Inject.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// process handles the core logic independently of CLI framework. It
// determines the input type (directory, archive, or single file) and
// processes accordingly. Source may point inside of an archive.
func process(ctx context.Context, src, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	filter, err := archive.NewFilter(env.Cfg.Document.Sources.Include, env.Cfg.Document.Sources.Exclude)
	if err != nil {
		return fmt.Errorf("unable to prepare source filter: %w", err)
	}
	j := &job{filter: filter, log: log, probe: env.Cfg.Document.Layout.ProbeImages}

	if j.out, err = newSink(dst, env.Inject.Overwrite, log); err != nil {
		return err
	}
	defer func() {
		rerr = multierr.Append(rerr, j.out.close())
	}()

	if name := env.Cfg.Catalog.Destination; len(name) > 0 {
		if j.catalog, err = openCatalog(name, src, dst, log); err != nil {
			return err
		}
		defer func() {
			rerr = multierr.Append(rerr, j.catalog.close())
		}()
	}

	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}
		if err := env.Rpt.StoreCopy("source/"+filepath.Base(head), head); err != nil {
			log.Warn("Unable to store source in debug report", zap.String("path", head), zap.Error(err))
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, j, head); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			filter := j.filter
			if _, ok := common.InputFmtFromName(tail); ok {
				// single document was requested explicitly
				filter = nil
			}
			if err := processArchive(ctx, j, filter, head, tail, ""); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		format, enc, ok, err := isDocumentFile(head)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if ok && len(tail) == 0 {
			file, err := os.Open(head)
			if err != nil {
				return fmt.Errorf("unable to open document: %w", err)
			}
			defer file.Close()
			im := j.images(os.DirFS(filepath.Dir(head)), ".")
			if err := processDocument(ctx, j, selectReader(file, enc), filepath.Base(head), format, im); err != nil {
				return fmt.Errorf("unable to process document (%s): %w", head, err)
			}
			break
		}
		return fmt.Errorf("input was not recognized as document (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	if err := j.finish(ctx); err != nil {
		return err
	}
	if j.failed > 0 {
		log.Warn("Some documents were not processed",
			zap.Int("failed", j.failed), zap.Int("processed", j.count), zap.Errors("errors", multierr.Errors(j.errs)))
	}
	return nil
}

// processDir finds documents and archives in directory tree and processes
// them in natural order of their relative names.
func processDir(ctx context.Context, j *job, dir string) error {
	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			j.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.Type().IsRegular() {
			names = append(names, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Sort(natural.StringSlice(names))

	count := j.count
	for _, path := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		isArchive, err := isArchiveFile(path)
		if err != nil {
			j.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if isArchive {
			if err := processArchive(ctx, j, j.filter, path, "", filepath.Dir(rel)); err != nil {
				j.log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			continue
		}

		if !j.filter.Match(rel) {
			j.log.Debug("Skipping file, filtered out", zap.String("file", path))
			continue
		}
		format, enc, ok, err := isDocumentFile(path)
		if err != nil {
			j.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if !ok {
			j.log.Debug("Skipping file, not recognized as document or archive", zap.String("file", path))
			continue
		}
		processFile(ctx, j, dir, rel, format, enc)
	}
	if j.count == count {
		j.log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return nil
}

func processFile(ctx context.Context, j *job, dir, rel string, format common.InputFmt, enc srcEncoding) {
	name := filepath.Join(dir, rel)
	file, err := os.Open(name)
	if err != nil {
		j.fail(rel, err)
		j.log.Error("Unable to process file", zap.String("file", name), zap.Error(err))
		return
	}
	defer file.Close()

	im := j.images(os.DirFS(dir), path.Dir(filepath.ToSlash(rel)))
	if err := processDocument(ctx, j, selectReader(file, enc), rel, format, im); err != nil {
		j.log.Error("Unable to process file", zap.String("file", name), zap.Error(err))
	}
}

// processArchive walks all files inside archive, finds documents under
// "pathIn" and processes them. Results are placed under "pathOut".
func processArchive(ctx context.Context, j *job, filter *archive.Filter, arcPath, pathIn, pathOut string) error {
	count := j.count
	cp := state.EnvFromContext(ctx).Inject.CodePage

	err := archive.Walk(arcPath, pathIn, filter, func(arc string, fsys fs.FS, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		format, enc, ok, err := isDocumentInArchive(f)
		if err != nil {
			j.log.Warn("Skipping file in archive",
				zap.String("archive", arc), zap.String("path", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		if !ok {
			j.log.Debug("Skipping file, not recognized as document", zap.String("archive", arc), zap.String("file", f.FileHeader.Name))
			return nil
		}

		r, err := f.Open()
		if err != nil {
			j.fail(f.FileHeader.Name, err)
			j.log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		name := f.FileHeader.Name
		if cp != nil && f.FileHeader.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(name); err == nil {
				name = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				j.log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", name), zap.Error(err))
			}
		}
		im := j.images(fsys, path.Dir(f.FileHeader.Name))
		if err := processDocument(ctx, j, selectReader(r, enc), filepath.Join(pathOut, filepath.FromSlash(name)), format, im); err != nil {
			j.log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
		}
		return nil
	})
	if err == nil && j.count == count {
		j.log.Debug("Nothing to process", zap.String("archive", arcPath))
	}
	return err
}

// processDocument handles single document. "src" is part of the source path
// (always including file name) relative to the original path: base name for
// a single file or relative path inside archive or directory. "im", when
// set, resolves images document refers to.
func processDocument(ctx context.Context, j *job, r io.Reader, src string, format common.InputFmt, im layout.Images) (rerr error) {
	env := state.EnvFromContext(ctx)
	cfg := &env.Cfg.Document

	var (
		outputName string
		p          *toc.Page
	)

	j.log.Info("Processing document", zap.String("from", src))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			j.log.Error("Processing ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("processing panic: %v", r)
		}
		if rerr != nil {
			j.fail(src, rerr)
			return
		}
		j.count++
		fields := []zap.Field{zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName)}
		if p != nil {
			fields = append(fields, zap.Int("entries", len(p.Entries)), zap.Int("goto", p.GoToSites))
		}
		j.log.Info("Processing completed", fields...)
	}(time.Now())

	doc, err := Load(r, src, format, cfg)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	outputName = buildOutputPath(doc, src, format, env)

	var href string
	if cfg.Script.Mode == common.ScriptModeExternal {
		href = scriptHref(outputName, cfg.Script.FileName)
	}
	p = Prepare(doc, nopHandler{}, href, im, cfg, j.log)
	if cfg.Script.Mode == common.ScriptModeExternal && len(p.Targets.Targets()) > 0 {
		j.needScript = true
	}

	var buf bytes.Buffer
	if _, err := p.Doc.WriteTo(&buf); err != nil {
		return fmt.Errorf("unable to write document: %w", err)
	}
	err = j.out.write(outputName, func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	})
	if err != nil {
		return err
	}
	outputName = j.out.location(outputName)

	if j.catalog != nil {
		if err := j.catalog.add(src, outputName, p); err != nil {
			j.log.Warn("Document was not added to catalog", zap.String("from", src), zap.Error(err))
		}
	}

	if env.Rpt != nil {
		env.Rpt.StoreData(fmt.Sprintf("result-%04d%s", j.count+j.failed, format.Ext()), buf.Bytes())
		env.Rpt.StoreData(fmt.Sprintf("result-%04d.toc.txt", j.count+j.failed), []byte(toc.Dump(p.Entries)))
	}
	return nil
}

// finish writes external runtime script next to produced documents when
// any of them refers to it.
func (j *job) finish(ctx context.Context) error {
	if !j.needScript {
		return nil
	}
	env := state.EnvFromContext(ctx)
	name := env.Cfg.Document.Script.FileName
	if err := j.out.replace(name, []byte(toc.RuntimeScript())); err != nil {
		return fmt.Errorf("unable to write runtime script: %w", err)
	}
	j.log.Debug("Runtime script written", zap.String("file", j.out.location(name)))
	return nil
}

// nopHandler is used when produced pages are written out: nothing is
// activated before page reaches a browser.
type nopHandler struct{}

func (nopHandler) ScrollTo(float64) {}
