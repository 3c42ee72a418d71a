package doctest

import (
	"bufio"
	"bytes"
	"io"
	"iter"
	"math"
	"strings"
	"unicode"
)

// Reformatter tracks state for reformatting one document, line by line.
//
// Scan() implements a bufio.SplitFunc whose tokens are the reformatted text
// for each consumed source line, while Append() reformats a whole document at
// once.
//
// The zero value is ready to use with a zero margin; set Margin to
// DefaultMargin for conventional output. It is not safe to use a Reformatter
// from parallel goroutines, but separate Reformatters share nothing.
type Reformatter struct {
	// Margin is added to the indentation of the line that opens an output
	// block to get the width every line in that block is re-indented to.
	// Negative values count as 0.
	Margin int

	// Strict causes Scan to fail with ErrNestedFence rather than closing an
	// open code block when another language tag shows up.
	Strict bool

	state   State  // of the last consumed line
	width   int    // re-indentation width of the current output block
	pending bool   // whether closing holds an unemitted close marker
	closing []byte // close marker for the open code block
	noEOL   bool   // last consumed line had no terminator
	opened  int    // directives emitted
	closed  int    // close markers emitted

	buf []byte // token returned by Scan
}

// Scan implements a bufio.SplitFunc that reformats doctest structure.
//
// Every explicitly terminated line in data is consumed on its own, returning
// a token holding everything emitted for it: the line itself (re-indented
// when it is output), any close marker that precedes it, and any directive
// that follows it. If atEOF is true, a final unterminated line is consumed as
// well, after which one last token carries any close marker still pending.
//
// The returned token is only valid until the next call to Scan.
//
// Example usage:
//
//	rf := doctest.Reformatter{Margin: doctest.DefaultMargin}
//	sc := bufio.NewScanner(os.Stdin)
//	sc.Split(rf.Scan)
//	for sc.Scan() {
//		os.Stdout.Write(sc.Bytes())
//	}
func (rf *Reformatter) Scan(data []byte, atEOF bool) (advance int, token []byte, err error) {
	line := data
	if eol := bytes.IndexByte(data, '\n'); eol >= 0 {
		line = data[:eol+1]
	} else if !atEOF {
		return 0, nil, nil
	} else if len(data) == 0 {
		if !rf.pending {
			return 0, nil, nil
		}
		rf.buf = rf.buf[:0]
		if rf.noEOL {
			rf.buf = append(rf.buf, newline...)
			rf.noEOL = false
		}
		rf.buf = rf.appendClose(rf.buf)
		return 0, rf.buf, nil
	}

	rf.buf, err = rf.appendLine(rf.buf[:0], line)
	if err != nil {
		return 0, nil, err
	}
	return len(line), rf.buf, nil
}

// Append reformats src as a complete document, appending the result to dst.
// The receiver is reset first. Only a Strict receiver can return an error.
func (rf *Reformatter) Append(dst, src []byte) ([]byte, error) {
	rf.Reset()
	err := rf.each(src, func(token []byte) bool {
		dst = append(dst, token...)
		return true
	})
	return dst, err
}

// State returns the classification of the last consumed line.
func (rf *Reformatter) State() State { return rf.state }

// Reset clears all receiver state, preparing it to reformat a new document.
func (rf *Reformatter) Reset() {
	rf.state = Plain
	rf.width = 0
	rf.pending = false
	rf.closing = rf.closing[:0]
	rf.noEOL = false
	rf.opened = 0
	rf.closed = 0
	rf.buf = rf.buf[:0]
}

func (rf *Reformatter) each(data []byte, yield func(token []byte) bool) error {
	for {
		advance, token, err := rf.Scan(data, true)
		if err != nil {
			return err
		}
		if token == nil {
			return nil
		}
		data = data[advance:]
		if !yield(token) {
			return nil
		}
	}
}

func (rf *Reformatter) margin() int {
	if rf.Margin < 0 {
		return 0
	}
	return rf.Margin
}

func (rf *Reformatter) appendLine(buf, line []byte) ([]byte, error) {
	var (
		trimmed = bytes.TrimSpace(line)
		prior   = rf.state
		eol     = line[len(trimNewline(line)):]
	)
	rf.state = Classify(prior, trimmed)
	rf.noEOL = len(eol) == 0

	// leaving an output block, or an input run that never produced output
	if rf.pending {
		if (prior == Output && rf.state != Output) || (prior == Input && rf.state == Plain) {
			buf = rf.appendClose(buf)
		}
	}

	if prior != Output && rf.state == Output {
		rf.width = Indent(line) + rf.margin()
	}

	switch rf.state {
	case Plain:
		buf = append(buf, line...)

	case Input:
		lang, tagged := LangTag(trimmed)
		if tagged && rf.pending {
			if rf.Strict {
				return buf, ErrNestedFence
			}
			buf = rf.appendClose(buf)
		}
		buf = append(buf, line...)
		if tagged {
			if rf.noEOL {
				eol = newline
				buf = append(buf, eol...)
				rf.noEOL = false
			}
			indent := Indent(line)
			buf = appendSpaces(buf, indent)
			buf = append(buf, directive...)
			buf = append(buf, lang...)
			buf = append(buf, eol...)
			rf.closing = appendSpaces(rf.closing[:0], indent)
			rf.closing = append(rf.closing, eol...)
			rf.pending = true
			rf.opened++
		}

	case Output:
		if bytes.Equal(trimmed, blankMark) {
			if rf.noEOL {
				eol = newline
				rf.noEOL = false
			}
			buf = append(buf, eol...)
		} else {
			buf = appendSpaces(buf, rf.width)
			buf = append(buf, bytes.TrimLeftFunc(line, unicode.IsSpace)...)
		}
	}

	return buf, nil
}

func (rf *Reformatter) appendClose(buf []byte) []byte {
	buf = append(buf, rf.closing...)
	rf.pending = false
	rf.closed++
	return buf
}

// Reformat returns text with its doctests reformatted, re-indenting output by
// margin columns.
func Reformat(text string, margin int) string {
	rf := Reformatter{Margin: margin}
	var sb strings.Builder
	sb.Grow(len(text) + len(text)/4)
	rf.each([]byte(text), func(token []byte) bool {
		sb.Write(token)
		return true
	})
	return sb.String()
}

// Fragments returns a lazy sequence of the reformatted text of each line, as
// Reformat would produce it. Consumers may stop early.
func Fragments(text string, margin int) iter.Seq[string] {
	return func(yield func(string) bool) {
		rf := Reformatter{Margin: margin}
		rf.each([]byte(text), func(token []byte) bool {
			return yield(string(token))
		})
	}
}

// NewReader returns a reader of the reformatted content of r.
func NewReader(r io.Reader, margin int) io.Reader {
	rd := &reader{rf: Reformatter{Margin: margin}}
	rd.sc = bufio.NewScanner(r)
	rd.sc.Buffer(nil, math.MaxInt)
	rd.sc.Split(rd.rf.Scan)
	return rd
}

// Copy streams the reformatted content of src into dst, returning the number
// of bytes written and any read or write error.
func Copy(dst io.Writer, src io.Reader, margin int) (int64, error) {
	return io.Copy(dst, NewReader(src, margin))
}

type reader struct {
	rf  Reformatter
	sc  *bufio.Scanner
	rem []byte
}

func (rd *reader) Read(p []byte) (n int, err error) {
	for len(rd.rem) == 0 {
		if !rd.sc.Scan() {
			if err := rd.sc.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		rd.rem = rd.sc.Bytes()
	}
	n = copy(p, rd.rem)
	rd.rem = rd.rem[n:]
	return n, nil
}
