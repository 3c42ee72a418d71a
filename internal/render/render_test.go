package render_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/jcorbin/docfence/internal/render"
)

func TestNew(t *testing.T) {
	rend, err := New("", Options{})
	require.NoError(t, err)
	assert.IsType(t, Blackfriday{}, rend)

	rend, err = New(EngineGoldmark, Options{})
	require.NoError(t, err)
	assert.IsType(t, Goldmark{}, rend)

	_, err = New("pandoc", Options{})
	assert.True(t, errors.Is(err, ErrUnknownEngine), "got %v", err)
	assert.Contains(t, err.Error(), `"pandoc"`)
}

func TestRenderers(t *testing.T) {
	for _, engine := range []string{EngineBlackfriday, EngineGoldmark} {
		t.Run(engine, func(t *testing.T) {
			render := func(t *testing.T, opts Options, src string) string {
				rend, err := New(engine, opts)
				require.NoError(t, err)
				var out bytes.Buffer
				require.NoError(t, rend.Render(&out, []byte(src)))
				return out.String()
			}

			t.Run("heading", func(t *testing.T) {
				html := render(t, Options{}, "# Title\n\ntext\n")
				assert.Contains(t, html, "Title</h1>")
				assert.Contains(t, html, "<p>text</p>")
			})

			t.Run("table", func(t *testing.T) {
				html := render(t, Options{}, "| a | b |\n|---|---|\n| 1 | 2 |\n")
				assert.Contains(t, html, "<table>")
			})

			t.Run("plain code", func(t *testing.T) {
				html := render(t, Options{}, "```go\nfunc main() {}\n```\n")
				assert.Contains(t, html, `<code class="language-go">func main() {}`)
			})

			t.Run("highlighted code", func(t *testing.T) {
				html := render(t, Options{Style: "monokai", Highlight: true}, "```go\nfunc main() {}\n```\n")
				assert.Contains(t, html, "<pre")
				assert.Contains(t, html, `style="`)
				assert.NotContains(t, html, "language-go")
				assert.Contains(t, html, "main")
			})

			t.Run("unknown language", func(t *testing.T) {
				html := render(t, Options{Style: "no-such-style", Highlight: true}, "```nosuchlang\na < b\n```\n")
				assert.Contains(t, html, `<code class="language-nosuchlang">a &lt; b`)
			})

			t.Run("doc", func(t *testing.T) {
				rend, err := New(engine, Options{})
				require.NoError(t, err)
				var out bytes.Buffer
				require.NoError(t, Doc(&out,
					strings.NewReader(">>> print(x) #:lang python\n[1, 2]\n"),
					rend, 4))
				assert.Contains(t, out.String(), `class="language-pycon">&gt;&gt;&gt; print(x)`)
				assert.Contains(t, out.String(), `class="language-python">[1, 2]`)
			})
		})
	}
}

func TestDoc_readError(t *testing.T) {
	var out bytes.Buffer
	err := Doc(&out, iotest.ErrReader(errors.New("boom")), Blackfriday{}, 4)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, "", out.String())
}

func TestDoc_longLine(t *testing.T) {
	long := strings.Repeat("word ", 300_000)
	var out bytes.Buffer
	require.NoError(t, Doc(&out, strings.NewReader("# Notes\n\n"+long+"\n"), Blackfriday{}, 4))
	assert.Contains(t, out.String(), "Notes</h1>")
	assert.Contains(t, out.String(), "word word word")
}
