package render

import (
	"bytes"
	"io"

	"github.com/russross/blackfriday"
)

const blackfridayExtensions = 0 |
	blackfriday.NoIntraEmphasis |
	blackfriday.Tables |
	blackfriday.FencedCode |
	blackfriday.Autolink |
	blackfriday.Strikethrough |
	blackfriday.SpaceHeadings |
	blackfriday.HeadingIDs |
	blackfriday.BackslashLineBreak

// Blackfriday renders markdown with blackfriday. Its zero value renders code
// blocks without highlighting; use New to get a highlighting one.
type Blackfriday struct {
	hl *highlighter
}

// Render renders src as an HTML fragment into w.
func (bf Blackfriday) Render(w io.Writer, src []byte) error {
	cr := &codeRenderer{
		Renderer: blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
			Flags: blackfriday.CommonHTMLFlags,
		}),
		hl: bf.hl,
	}
	out := blackfriday.Run(src,
		blackfriday.WithExtensions(blackfridayExtensions),
		blackfriday.WithRenderer(cr))
	if cr.err != nil {
		return cr.err
	}
	_, err := w.Write(out)
	return err
}

// codeRenderer hands code blocks to a highlighter, and everything else to
// the wrapped renderer.
type codeRenderer struct {
	blackfriday.Renderer
	hl  *highlighter
	err error
}

func (cr *codeRenderer) RenderNode(w io.Writer, node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
	if node.Type != blackfriday.CodeBlock || cr.hl == nil {
		return cr.Renderer.RenderNode(w, node, entering)
	}
	var lang string
	if fields := bytes.Fields(node.Info); len(fields) > 0 {
		lang = string(fields[0])
	}
	if err := cr.hl.block(w, lang, string(node.Literal)); err != nil {
		cr.err = err
		return blackfriday.Terminate
	}
	return blackfriday.GoToNext
}
