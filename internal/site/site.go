// Package site builds a versioned tree of HTML pages from a directory of
// docstring documents.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/renameio"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/docfence/internal/render"
)

// ErrOutputExists is returned by Build when the versioned output directory
// is already there and Options.Overwrite is not set.
var ErrOutputExists = errors.New("output directory already exists")

// IndexName is the name of the index page written at the output root.
const IndexName = "index.html"

// Options configure a Build.
type Options struct {
	Source  string   // root directory of the source documents
	Include []string // doublestar patterns, relative to Source
	Out     string   // output directory
	Version string   // output subdirectory under Out

	// Overwrite allows building into an existing output directory, replacing
	// its pages and removing any whose source is gone.
	Overwrite bool

	Jobs     int             // concurrent page renders, at least 1
	Margin   int             // doctest output margin
	Renderer render.Renderer // defaults to a plain Blackfriday
	Log      logrus.FieldLogger
}

// Page is one rendered document.
type Page struct {
	Source string // slash separated path under Options.Source
	Path   string // slash separated path under the output root
	Title  string
}

// Result describes a completed Build.
type Result struct {
	Root  string // Out joined with Version
	Pages []Page // in Source order
}

// NewPage returns the page for a slash separated source path.
func NewPage(source string) Page {
	base := path.Base(source)
	return Page{
		Source: source,
		Path:   source + ".html",
		Title:  strings.TrimSuffix(base, path.Ext(base)),
	}
}

// IndexLink returns the relative link from the page back to the index.
func (p Page) IndexLink() string {
	return strings.Repeat("../", strings.Count(p.Path, "/")) + IndexName
}

// Collect returns the sorted slash separated paths of regular files under
// root that match any include pattern. Hidden files and directories are
// skipped.
func Collect(root string, include []string) ([]string, error) {
	for _, pat := range include {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid include pattern %q", pat)
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if name != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, name)
		if err != nil {
			return err
		}
		if rel = filepath.ToSlash(rel); Match(rel, include) {
			files = append(files, rel)
		}
		return nil
	})
	slices.Sort(files)
	return files, err
}

// Match reports whether the slash separated path rel names a source
// document: none of its elements are hidden, and it matches an include
// pattern.
func Match(rel string, include []string) bool {
	for _, elem := range strings.Split(rel, "/") {
		if strings.HasPrefix(elem, ".") {
			return false
		}
	}
	for _, pat := range include {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

// Build renders every included source document into a page under
// Out/Version, and writes an index of them. Every file is replaced
// atomically, so a concurrent reader sees either the old or the new page.
func Build(ctx context.Context, opts Options) (Result, error) {
	log := opts.Log
	if log == nil {
		discard := logrus.New()
		discard.Out = io.Discard
		log = discard
	}
	if opts.Renderer == nil {
		opts.Renderer = render.Blackfriday{}
	}

	res := Result{Root: filepath.Join(opts.Out, opts.Version)}
	if _, err := os.Stat(res.Root); err == nil {
		if !opts.Overwrite {
			return res, fmt.Errorf("%w: %s", ErrOutputExists, res.Root)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return res, err
	}

	files, err := Collect(opts.Source, opts.Include)
	if err != nil {
		return res, fmt.Errorf("failed to collect sources: %w", err)
	}
	if err := os.MkdirAll(res.Root, 0755); err != nil {
		return res, err
	}

	start := time.Now()
	res.Pages = make([]Page, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Jobs, 1))
	for i, file := range files {
		page := NewPage(file)
		res.Pages[i] = page
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := writePage(opts, res.Root, page); err != nil {
				return fmt.Errorf("%s: %w", page.Source, err)
			}
			log.WithField("page", page.Path).Debug("wrote page")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	if err := writeIndex(opts, res); err != nil {
		return res, fmt.Errorf("%s: %w", IndexName, err)
	}
	if opts.Overwrite {
		if err := prune(res, log); err != nil {
			return res, err
		}
	}

	log.WithFields(logrus.Fields{
		"root":    res.Root,
		"pages":   len(res.Pages),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("built docs")
	return res, nil
}

func writePage(opts Options, root string, page Page) (rerr error) {
	f, err := os.Open(filepath.Join(opts.Source, filepath.FromSlash(page.Source)))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); rerr == nil {
			rerr = cerr
		}
	}()

	var body bytes.Buffer
	if err := render.Doc(&body, f, opts.Renderer, opts.Margin); err != nil {
		return err
	}

	var out bytes.Buffer
	if err := WritePage(&out, page, opts.Version, page.IndexLink(), body.Bytes()); err != nil {
		return err
	}
	return writeFile(filepath.Join(root, filepath.FromSlash(page.Path)), out.Bytes())
}

func writeIndex(opts Options, res Result) error {
	var out bytes.Buffer
	if err := WriteIndex(&out, opts.Version, res.Pages, func(page Page) string {
		return page.Path
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(res.Root, IndexName), out.Bytes())
}

// writeFile atomically replaces name with data, creating its directory.
func writeFile(name string, data []byte) (rerr error) {
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return err
	}
	pf, err := renameio.TempFile("", name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := pf.Cleanup(); rerr == nil {
			rerr = cerr
		}
	}()
	if err := pf.Chmod(0644); err != nil {
		return err
	}
	if _, err := pf.Write(data); err != nil {
		return err
	}
	return pf.CloseAtomicallyReplace()
}

// prune removes pages under the output root that the build did not write.
func prune(res Result, log logrus.FieldLogger) error {
	keep := make(map[string]bool, len(res.Pages)+1)
	keep[IndexName] = true
	for _, page := range res.Pages {
		keep[page.Path] = true
	}
	return filepath.WalkDir(res.Root, func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(name) != ".html" {
			return err
		}
		rel, err := filepath.Rel(res.Root, name)
		if err != nil {
			return err
		}
		if rel = filepath.ToSlash(rel); keep[rel] {
			return nil
		}
		log.WithField("page", rel).Info("removing stale page")
		return os.Remove(name)
	})
}
