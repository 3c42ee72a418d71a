package render

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Goldmark renders GitHub flavored markdown with goldmark.
type Goldmark struct {
	md goldmark.Markdown
}

func newGoldmark(hl *highlighter) Goldmark {
	opts := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if hl != nil {
		opts = append(opts, goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(fencedCodeRenderer{hl}, 100)),
		))
	}
	return Goldmark{md: goldmark.New(opts...)}
}

// Render renders src as an HTML fragment into w.
func (gm Goldmark) Render(w io.Writer, src []byte) error {
	md := gm.md
	if md == nil {
		md = goldmark.New(goldmark.WithExtensions(extension.GFM))
	}
	return md.Convert(src, w)
}

type fencedCodeRenderer struct {
	hl *highlighter
}

func (fr fencedCodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, fr.renderFencedCode)
}

func (fr fencedCodeRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	var code strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}
	if err := fr.hl.block(w, string(n.Language(source)), code.String()); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}
