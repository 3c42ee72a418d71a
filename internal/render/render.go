// Package render turns reformatted docstrings into HTML, through either of
// two markdown engines, with chroma highlighting of fenced code.
package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/jcorbin/docfence/doctest"
)

// ErrUnknownEngine is returned by New for an engine name it does not know.
var ErrUnknownEngine = errors.New("unknown markdown engine")

// Engine names accepted by New.
const (
	EngineBlackfriday = "blackfriday"
	EngineGoldmark    = "goldmark"
)

// Renderer renders markdown source as an HTML fragment.
type Renderer interface {
	Render(w io.Writer, src []byte) error
}

// Options configure code block highlighting.
type Options struct {
	// Style names a chroma style; unknown names fall back to chroma's default.
	Style string

	// Highlight enables syntax highlighting of code blocks that carry a
	// language.
	Highlight bool
}

// New returns a Renderer for the named engine; the empty name selects
// blackfriday.
func New(engine string, opts Options) (Renderer, error) {
	var hl *highlighter
	if opts.Highlight {
		hl = newHighlighter(opts.Style)
	}
	switch engine {
	case "", EngineBlackfriday:
		return Blackfriday{hl: hl}, nil
	case EngineGoldmark:
		return newGoldmark(hl), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownEngine, engine)
	}
}

// Doc reads a docstring document from r, fences its doctest examples with the
// given margin, and renders the result into w.
func Doc(w io.Writer, r io.Reader, rend Renderer, margin int) error {
	src, err := io.ReadAll(doctest.NewReader(r, margin))
	if err != nil {
		return err
	}
	return rend.Render(w, Directives(src))
}
