// Package doctest reformats interactive session examples ("doctests")
// embedded in documentation comment text, so that a markup renderer can show
// them as code.
//
// Narrative lines pass through unchanged. Prompt lines (">>>" or "...") pass
// through unchanged too, while the captured output lines that follow them are
// re-indented to a fixed width. An input line ending in a "#:lang L" tag also
// gets a ".. code-block:: L" directive inserted after it, which is closed by a
// whitespace-only line once the following output block ends.
//
// Example:
//
//	>>> print(cfg.dump()) #:lang toml
//	[server]
//	<BLANKLINE>
//	port = 8080
//
// becomes:
//
//	>>> print(cfg.dump()) #:lang toml
//	.. code-block:: toml
//	    [server]
//
//	    port = 8080
//
// The transform is total: malformed doctests are classified line by line and
// never rejected. It is also meant for a single pass over original text;
// reformatting its own output changes it again.
package doctest

import (
	"bytes"
	"errors"
)

// TODO expand tabs to tab stops if docstrings with tab indentation turn up

// DefaultMargin is the conventional output re-indentation margin.
const DefaultMargin = 4

// ErrNestedFence is returned by a Strict Reformatter when a language tag
// appears on an input line while a previous tag's block is still open.
var ErrNestedFence = errors.New("doctest: language tag inside an open code block")

// State classifies a line of docstring text, relative to the line before it.
type State int

// State constants; the zero value is Plain.
const (
	Plain  State = iota // narrative text
	Input               // interactive prompt or continuation line
	Output              // captured output following input
)

var (
	promptMark   = []byte(">>>")
	continueMark = []byte("...")
	langMark     = []byte("#:lang ")
	blankMark    = []byte("<BLANKLINE>")
	newline      = []byte("\n")
)

const directive = ".. code-block:: "

// Classify returns the state of a line, given its whitespace-trimmed content
// and the state of the previous line.
//
// Prompt lines are Input, blank lines are Plain, the first other line after
// Input starts Output, and any other line continues the prior state.
func Classify(prior State, trimmed []byte) State {
	switch {
	case bytes.HasPrefix(trimmed, promptMark), bytes.HasPrefix(trimmed, continueMark):
		return Input
	case len(trimmed) == 0:
		return Plain
	case prior == Input:
		return Output
	default:
		return prior
	}
}

// Indent returns the width of the line's leading whitespace. Spaces and tabs
// each count as one column; other whitespace ends the indentation, though
// re-indented output lines are stripped of all leading whitespace.
func Indent(line []byte) (n int) {
	for n < len(line) && isIndent(line[n]) {
		n++
	}
	return n
}

// IndentString is Indent for a string.
func IndentString(line string) (n int) {
	for n < len(line) && isIndent(line[n]) {
		n++
	}
	return n
}

// LangTag extracts the language named by the rightmost "#:lang " tag in line.
// It returns false if the line has no tag, or if the tag names nothing.
func LangTag(line []byte) (lang []byte, ok bool) {
	i := bytes.LastIndex(line, langMark)
	if i < 0 {
		return nil, false
	}
	lang = bytes.TrimSpace(line[i+len(langMark):])
	return lang, len(lang) > 0
}

func isIndent(c byte) bool { return c == ' ' || c == '\t' }

// trimNewline strips a trailing "\n" or "\r\n"; a lone "\r" is content.
func trimNewline(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
	}
	return line
}

func appendSpaces(buf []byte, n int) []byte {
	for ; n > 0; n-- {
		buf = append(buf, ' ')
	}
	return buf
}
