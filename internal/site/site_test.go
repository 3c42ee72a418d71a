package site_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/docfence/internal/render"
	. "github.com/jcorbin/docfence/internal/site"
)

var defaultInclude = []string{"**/*.txt", "**/*.rst", "**/*.md"}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.txt":           "",
		"pkg/b.md":        "",
		"pkg/.hidden.txt": "",
		".git/c.txt":      "",
		"skip.go":         "",
		"z/deep/e.rst":    "",
	})

	files, err := Collect(root, defaultInclude)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "pkg/b.md", "z/deep/e.rst"}, files)

	files, err = Collect(root, []string{"pkg/*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg/b.md"}, files)

	_, err = Collect(root, []string{"[oops"})
	assert.EqualError(t, err, `invalid include pattern "[oops"`)

	_, err = Collect(filepath.Join(root, "nope"), defaultInclude)
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}

func TestNewPage(t *testing.T) {
	page := NewPage("pkg/sub/mod.txt")
	assert.Equal(t, Page{
		Source: "pkg/sub/mod.txt",
		Path:   "pkg/sub/mod.txt.html",
		Title:  "mod",
	}, page)
	assert.Equal(t, "../../index.html", page.IndexLink())
	assert.Equal(t, "index.html", NewPage("top.md").IndexLink())
}

func TestBuild(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeFiles(t, src, map[string]string{
		"mod.txt":    "Module docs.\n\n>>> x #:lang python\n[1]\n",
		"pkg/sub.md": "# Sub\n\nText <b>\n",
	})
	opts := Options{
		Source:  src,
		Include: defaultInclude,
		Out:     out,
		Version: "1.0",
		Jobs:    2,
		Margin:  4,
	}

	res, err := Build(context.Background(), opts)
	require.NoError(t, err)
	root := filepath.Join(out, "1.0")
	assert.Equal(t, root, res.Root)
	assert.Equal(t, []Page{NewPage("mod.txt"), NewPage("pkg/sub.md")}, res.Pages)

	mod := readFile(t, filepath.Join(root, "mod.txt.html"))
	assert.Contains(t, mod, "<title>mod (1.0)</title>")
	assert.Contains(t, mod, `<a href="index.html">index</a>`)
	assert.Contains(t, mod, `class="language-python">[1]`)

	sub := readFile(t, filepath.Join(root, "pkg", "sub.md.html"))
	assert.Contains(t, sub, `<a href="../index.html">index</a>`)
	assert.Contains(t, sub, "Sub</h1>")

	info, err := os.Stat(filepath.Join(root, "pkg", "sub.md.html"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	index := readFile(t, filepath.Join(root, IndexName))
	assert.Contains(t, index, `<a href="mod.txt.html">mod</a>`)
	assert.Contains(t, index, `<a href="pkg/sub.md.html">sub</a>`)

	t.Run("refuses existing output", func(t *testing.T) {
		_, err := Build(context.Background(), opts)
		assert.True(t, errors.Is(err, ErrOutputExists), "got %v", err)
	})

	t.Run("overwrite prunes stale pages", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(src, "pkg", "sub.md")))
		opts := opts
		opts.Overwrite = true
		res, err := Build(context.Background(), opts)
		require.NoError(t, err)
		assert.Equal(t, []Page{NewPage("mod.txt")}, res.Pages)
		_, err = os.Stat(filepath.Join(root, "pkg", "sub.md.html"))
		assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
		assert.NotContains(t, readFile(t, filepath.Join(root, IndexName)), "sub.md.html")
	})
}

func TestBuild_canceled(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, map[string]string{"a.txt": "text\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, Options{
		Source:  src,
		Include: defaultInclude,
		Out:     t.TempDir(),
		Version: "v",
	})
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

type failRenderer struct{}

func (failRenderer) Render(w io.Writer, src []byte) error { return errors.New("engine broke") }

var _ render.Renderer = failRenderer{}

func TestBuild_renderError(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, map[string]string{"a.txt": "text\n"})
	_, err := Build(context.Background(), Options{
		Source:   src,
		Include:  defaultInclude,
		Out:      t.TempDir(),
		Version:  "v",
		Renderer: failRenderer{},
	})
	assert.EqualError(t, err, "a.txt: engine broke")
}

func TestMatch(t *testing.T) {
	for _, tc := range []struct {
		rel  string
		want bool
	}{
		{"a.txt", true},
		{"pkg/deep/b.md", true},
		{"pkg/.hidden/b.md", false},
		{".b.md", false},
		{"main.go", false},
	} {
		assert.Equal(t, tc.want, Match(tc.rel, defaultInclude), "Match(%q)", tc.rel)
	}
}
