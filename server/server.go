// Package server serves a directory of documents over HTTP attaching
// interactive table of contents to every page on the fly. Everything which
// is not a recognized document is served as is.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"itoc/archive"
	"itoc/common"
	"itoc/config"
	"itoc/inject"
	"itoc/layout"
	"itoc/scroll"
	"itoc/toc"
	"itoc/utils/images"
)

// InspectPrefix is URL prefix under which table of contents dump of any
// served document is available.
const InspectPrefix = "/_toc"

var errNotDocument = errors.New("not recognized as document")

type Server struct {
	root   string
	cfg    *config.Config
	filter *archive.Filter
	log    *zap.Logger

	router     chi.Router
	httpServer *http.Server
}

// New prepares server for documents under root directory.
func New(root string, cfg *config.Config, log *zap.Logger) (*Server, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}
	filter, err := archive.NewFilter(cfg.Document.Sources.Include, cfg.Document.Sources.Exclude)
	if err != nil {
		return nil, fmt.Errorf("unable to prepare source filter: %w", err)
	}
	s := &Server{
		root:   root,
		cfg:    cfg,
		filter: filter,
		log:    log,
	}
	s.router = s.buildRouter()
	return s, nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	if len(s.cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.Server.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	if s.cfg.Document.Script.Mode == common.ScriptModeExternal {
		r.Get(s.scriptPath(), s.serveScript)
	}
	r.Get(InspectPrefix+"/*", s.serveInspect)
	r.Get("/*", s.serveFile)
	return r
}

// Handler returns HTTP handler, useful for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) scriptPath() string {
	return "/" + strings.TrimLeft(s.cfg.Document.Script.FileName, "/")
}

func (s *Server) serveScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	http.ServeContent(w, r, s.cfg.Document.Script.FileName, time.Time{}, strings.NewReader(toc.RuntimeScript()))
}

// resolve maps URL path to file under root. Directories are served with
// their index document if there is one.
func (s *Server) resolve(urlPath string) (string, os.FileInfo, error) {
	name := filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+urlPath)))
	fi, err := os.Stat(name)
	if err != nil {
		return "", nil, err
	}
	if fi.IsDir() {
		for _, index := range []string{"index.html", "index.xhtml", "index.md", "README.md"} {
			candidate := filepath.Join(name, index)
			if ifi, err := os.Stat(candidate); err == nil && ifi.Mode().IsRegular() {
				return candidate, ifi, nil
			}
		}
	}
	return name, fi, nil
}

// document reports if file should get table of contents.
func (s *Server) document(name string) (common.InputFmt, bool) {
	format, ok := common.InputFmtFromName(name)
	if !ok {
		return format, false
	}
	rel, err := filepath.Rel(s.root, name)
	if err != nil {
		return format, false
	}
	return format, s.filter.Match(rel)
}

func (s *Server) load(name string) (*toc.Page, error) {
	source, err := inject.OpenDocument(name)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, errNotDocument
	}
	defer source.Close()

	cfg := &s.cfg.Document
	doc, err := inject.Load(source, filepath.Base(name), source.Format, cfg)
	if err != nil {
		return nil, err
	}
	var im layout.Images
	if cfg.Layout.ProbeImages {
		// absolute image references are resolved against site root
		rel, _ := filepath.Rel(s.root, filepath.Dir(name))
		im = images.NewDir(os.DirFS(s.root), filepath.ToSlash(rel))
	}
	// pages are activated in the browser, server never scrolls anything
	return inject.Prepare(doc, scroll.HandlerFunc(func(float64) {}), s.scriptPath(), im, cfg, s.log), nil
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	name, fi, err := s.resolve(chi.URLParam(r, "*"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	format, ok := s.document(name)
	if fi.IsDir() || !ok {
		http.ServeFile(w, r, name)
		return
	}

	p, err := s.load(name)
	if errors.Is(err, errNotDocument) {
		http.ServeFile(w, r, name)
		return
	}
	if err != nil {
		s.log.Warn("Unable to prepare document, serving as is", zap.String("file", name), zap.Error(err))
		http.ServeFile(w, r, name)
		return
	}

	var buf bytes.Buffer
	if _, err := p.Doc.WriteTo(&buf); err != nil {
		http.Error(w, "unable to render document", http.StatusInternalServerError)
		return
	}
	if format == common.InputFmtXhtml {
		w.Header().Set("Content-Type", "application/xhtml+xml; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	http.ServeContent(w, r, filepath.Base(name), fi.ModTime(), bytes.NewReader(buf.Bytes()))
}

func (s *Server) serveInspect(w http.ResponseWriter, r *http.Request) {
	name, fi, err := s.resolve(chi.URLParam(r, "*"))
	if err != nil || fi.IsDir() {
		http.NotFound(w, r)
		return
	}
	if _, ok := s.document(name); !ok {
		http.Error(w, "not a document", http.StatusUnsupportedMediaType)
		return
	}
	p, err := s.load(name)
	if errors.Is(err, errNotDocument) {
		http.Error(w, "not a document", http.StatusUnsupportedMediaType)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(toc.Dump(p.Entries)))
	w.Write([]byte(toc.DumpPage(p)))
}

// ListenAndServe serves until context is canceled, then shuts server down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Server.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ErrorLog:          zap.NewStdLog(s.log),
	}

	errs := make(chan error, 1)
	go func() {
		s.log.Info("Serving documents", zap.String("root", s.root), zap.String("listen", s.cfg.Server.Listen))
		errs <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("Shutting down")
	if err := s.httpServer.Shutdown(shutdown); err != nil {
		return fmt.Errorf("unable to shut server down: %w", err)
	}
	return nil
}
