package render

import (
	"html"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

type highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

func newHighlighter(name string) *highlighter {
	style := styles.Get(name)
	if style == nil {
		style = styles.Fallback
	}
	return &highlighter{
		style:     style,
		formatter: chromahtml.New(chromahtml.TabWidth(4)),
	}
}

// block writes code in the given language as an HTML <pre> element.
// Code is highlighted only when hl is non-nil and chroma knows the language.
func (hl *highlighter) block(w io.Writer, lang string, code string) error {
	if lang = strings.TrimSpace(lang); hl != nil && lang != "" {
		if lexer := lexers.Get(lang); lexer != nil {
			it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
			if err == nil {
				return hl.formatter.Format(w, hl.style, it)
			}
		}
	}
	return plainBlock(w, lang, code)
}

func plainBlock(w io.Writer, lang string, code string) error {
	var sb strings.Builder
	sb.WriteString("<pre><code")
	if lang != "" {
		sb.WriteString(` class="language-`)
		sb.WriteString(html.EscapeString(lang))
		sb.WriteString(`"`)
	}
	sb.WriteString(">")
	sb.WriteString(html.EscapeString(code))
	sb.WriteString("</code></pre>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
