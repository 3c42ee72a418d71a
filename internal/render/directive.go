package render

import (
	"bytes"

	"github.com/jcorbin/docfence/doctest"
)

var (
	codeBlockMark = []byte(".. code-block::")
	fenceMark     = []byte("```")
)

// promptLang labels the fences around runs of prompt lines.
const promptLang = "pycon"

// Directives rewrites ".. code-block:: L" directive blocks into fenced
// markdown code blocks, so that a markdown renderer shows them as code in
// language L.
//
// A directive's content is every following line indented deeper than the
// directive itself, along with any blank lines between them; it is dedented
// by the indentation of its first line. Blank lines trailing the content stay
// after the closing fence.
//
// Runs of doctest prompt lines are fenced too, as promptLang code, so that
// markdown does not read ">>>" as a block quote. All other lines pass through
// unchanged.
func Directives(src []byte) []byte {
	var dw directiveWriter
	dw.out = make([]byte, 0, len(src)+len(src)/8)
	for len(src) > 0 {
		line := src
		if i := bytes.IndexByte(src, '\n'); i >= 0 {
			line = src[:i+1]
		}
		src = src[len(line):]
		dw.line(line)
	}
	if dw.open {
		dw.close()
	}
	if dw.prompt {
		dw.closePrompt()
	}
	return dw.out
}

type directiveWriter struct {
	out    []byte
	open   bool
	indent int    // of the open directive
	dedent int    // of its first content line, -1 until seen
	blanks []byte // held until the block either continues or ends

	prompt       bool
	promptIndent int
}

func (dw *directiveWriter) line(line []byte) {
	trimmed := bytes.TrimSpace(line)

	if dw.open {
		if len(trimmed) == 0 {
			dw.blanks = append(dw.blanks, line...)
			return
		}
		if in := doctest.Indent(line); in > dw.indent {
			dw.content(line, in)
			return
		}
		dw.close()
	}

	isPrompt := doctest.Classify(doctest.Plain, trimmed) == doctest.Input
	if dw.prompt {
		if isPrompt {
			dw.promptLine(line)
			return
		}
		dw.closePrompt()
	}

	if lang, ok := bytes.CutPrefix(trimmed, codeBlockMark); ok {
		dw.out = append(dw.out, fenceMark...)
		if fields := bytes.Fields(lang); len(fields) > 0 {
			dw.out = append(dw.out, fields[0]...)
		}
		dw.out = append(dw.out, '\n')
		dw.open = true
		dw.indent = doctest.Indent(line)
		dw.dedent = -1
		return
	}

	if isPrompt {
		dw.out = append(dw.out, fenceMark...)
		dw.out = append(dw.out, promptLang...)
		dw.out = append(dw.out, '\n')
		dw.prompt = true
		dw.promptIndent = doctest.Indent(line)
		dw.promptLine(line)
		return
	}

	dw.out = append(dw.out, line...)
}

func (dw *directiveWriter) promptLine(line []byte) {
	dw.out = append(dw.out, line[min(doctest.Indent(line), dw.promptIndent):]...)
	if line[len(line)-1] != '\n' {
		dw.out = append(dw.out, '\n')
	}
}

func (dw *directiveWriter) closePrompt() {
	dw.out = append(dw.out, fenceMark...)
	dw.out = append(dw.out, '\n')
	dw.prompt = false
}

func (dw *directiveWriter) content(line []byte, in int) {
	if dw.dedent < 0 {
		dw.dedent = in
	}
	for range bytes.Count(dw.blanks, []byte{'\n'}) {
		dw.out = append(dw.out, '\n')
	}
	dw.blanks = dw.blanks[:0]
	dw.out = append(dw.out, line[min(in, dw.dedent):]...)
	if line[len(line)-1] != '\n' {
		dw.out = append(dw.out, '\n')
	}
}

func (dw *directiveWriter) close() {
	dw.out = append(dw.out, fenceMark...)
	dw.out = append(dw.out, '\n')
	dw.out = append(dw.out, dw.blanks...)
	dw.blanks = dw.blanks[:0]
	dw.open = false
}
