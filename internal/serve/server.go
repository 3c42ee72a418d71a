// Package serve renders source documents on request, for previewing docs
// while editing them.
package serve

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/jcorbin/docfence/internal/render"
	"github.com/jcorbin/docfence/internal/site"
)

// DocPrefix is the route prefix for rendered documents.
const DocPrefix = "/doc/"

// ShutdownTimeout bounds how long ListenAndServe waits for open requests.
var ShutdownTimeout = 5 * time.Second

// Options configure a Server.
type Options struct {
	Source   string   // root directory of the source documents
	Include  []string // doublestar patterns, relative to Source
	Version  string
	Margin   int
	Renderer render.Renderer // defaults to a plain Blackfriday
	Log      logrus.FieldLogger

	// Registry collects the server's metrics; a new one is made when nil.
	Registry *prometheus.Registry
}

// Server renders documents under a source root as HTML pages.
type Server struct {
	opts    Options
	log     logrus.FieldLogger
	metrics *Metrics
	router  *mux.Router
}

// New creates a server; its routes are ready once New returns.
func New(opts Options) *Server {
	if opts.Renderer == nil {
		opts.Renderer = render.Blackfriday{}
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	s := &Server{
		opts:    opts,
		log:     opts.Log,
		metrics: NewMetrics(opts.Registry),
		router:  mux.NewRouter().SkipClean(true),
	}
	if s.log == nil {
		discard := logrus.New()
		discard.Out = io.Discard
		s.log = discard
	}
	s.RegisterRoutes(s.router)
	return s
}

// RegisterRoutes registers the server's routes on router.
func (s *Server) RegisterRoutes(router *mux.Router) {
	router.Use(s.metrics.Middleware)
	router.HandleFunc("/", s.index).Methods("GET", "HEAD")
	router.HandleFunc(DocPrefix+"{path:.*}", s.doc).Methods("GET", "HEAD")
	router.HandleFunc("/healthz", s.healthz).Methods("GET", "HEAD")
	router.Handle("/metrics", promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{}))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe listens on addr and serves until ctx is done, after which it
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, after which it shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.WithField("addr", ln.Addr().String()).Info("serving docs")

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if serr := <-errc; err == nil && !errors.Is(serr, http.ErrServerClosed) {
		err = serr
	}
	return err
}

// index handles GET /
func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	files, err := site.Collect(s.opts.Source, s.opts.Include)
	if err != nil {
		s.fail(w, "failed to collect sources", err)
		return
	}
	pages := make([]site.Page, len(files))
	for i, file := range files {
		pages[i] = site.NewPage(file)
	}
	var buf bytes.Buffer
	if err := site.WriteIndex(&buf, s.opts.Version, pages, func(page site.Page) string {
		return DocPrefix + page.Source
	}); err != nil {
		s.fail(w, "failed to write index", err)
		return
	}
	writeHTML(w, buf.Bytes())
}

// doc handles GET /doc/{path}
func (s *Server) doc(w http.ResponseWriter, r *http.Request) {
	name, ok := s.resolve(mux.Vars(r)["path"])
	if !ok {
		http.NotFound(w, r)
		return
	}
	path, err := s.regular(name)
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	} else if err != nil {
		s.fail(w, "failed to open document", err)
		return
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	} else if err != nil {
		s.fail(w, "failed to open document", err)
		return
	}
	defer f.Close()

	var body bytes.Buffer
	start := time.Now()
	err = render.Doc(&body, f, s.opts.Renderer, s.opts.Margin)
	s.metrics.RecordRender(time.Since(start), err)
	if err != nil {
		s.fail(w, "failed to render "+name, err)
		return
	}

	var buf bytes.Buffer
	if err := site.WritePage(&buf, site.NewPage(name), s.opts.Version, "/", body.Bytes()); err != nil {
		s.fail(w, "failed to write page", err)
		return
	}
	writeHTML(w, buf.Bytes())
}

// healthz handles GET /healthz
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

// resolve checks that a requested document path stays under the source root
// and names a source document. Paths are not cleaned before routing, so any
// ".." element is still here to be refused.
func (s *Server) resolve(name string) (string, bool) {
	if !fs.ValidPath(name) || name == "." {
		return "", false
	}
	return name, site.Match(name, s.opts.Include)
}

// regular returns the source path of name, which must be a regular file
// reached through real directories, as Collect would find it; anything else
// is reported as not existing.
func (s *Server) regular(name string) (string, error) {
	path := s.opts.Source
	parts := strings.Split(name, "/")
	for i, part := range parts {
		path = filepath.Join(path, part)
		info, err := os.Lstat(path)
		if err != nil {
			return "", err
		}
		if last := i == len(parts)-1; last && !info.Mode().IsRegular() || !last && !info.IsDir() {
			return "", fs.ErrNotExist
		}
	}
	return path, nil
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	s.log.WithError(err).Error(msg)
	http.Error(w, msg, http.StatusInternalServerError)
}

func writeHTML(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(b)
}
