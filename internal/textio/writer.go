package textio

import (
	"bytes"
	"io"
)

// LineBuffer accumulates written bytes, passing complete lines on to To.
//
//	var buf LineBuffer
//	buf.To = os.Stdout
//	for _, frag := range frags {
//		buf.WriteString(frag)
//		buf.FlushLines()
//	}
//	buf.Flush()
type LineBuffer struct {
	To io.Writer
	bytes.Buffer
}

// Flush writes all buffered bytes into To, complete line or not.
func (buf *LineBuffer) Flush() error {
	_, err := buf.WriteTo(buf.To)
	return err
}

// FlushLines writes buffered bytes into To, through the last newline.
func (buf *LineBuffer) FlushLines() error {
	b := buf.Bytes()
	if n := lastLineEnd(b); n > 0 {
		m, err := buf.To.Write(b[:n])
		buf.Next(m)
		return err
	}
	return nil
}

func lastLineEnd(b []byte) int {
	if i := bytes.LastIndexByte(b, '\n'); i >= 0 {
		return i + 1
	}
	return 0
}

// ErrWriter wraps a writer, retaining its first error and refusing all
// writes after it.
type ErrWriter struct {
	io.Writer
	Err error
}

// Write passes through to Writer if Err is nil, retaining any returned error.
func (ew *ErrWriter) Write(p []byte) (n int, err error) {
	if ew.Err == nil {
		n, ew.Err = ew.Writer.Write(p)
	}
	return n, ew.Err
}

// PrefixWriter returns a writer that writes prefix before every line written
// through it. Skip suppresses the prefix on the very first line, for callers
// that already wrote something in its place.
// The caller SHOULD close it to flush any partial final line.
func PrefixWriter(prefix string, w io.Writer) *Prefixer {
	p := &Prefixer{Prefix: prefix}
	p.buf.To = w
	return p
}

// Prefixer is the writer returned by PrefixWriter.
type Prefixer struct {
	Prefix string
	Skip   bool

	buf     LineBuffer
	started bool
}

// Close flushes any partial final line.
func (p *Prefixer) Close() error { return p.buf.Flush() }

func (p *Prefixer) Write(b []byte) (n int, err error) {
	for len(b) > 0 {
		if bol := p.buf.Len() == 0 || p.buf.Bytes()[p.buf.Len()-1] == '\n'; bol {
			if p.started || !p.Skip {
				p.buf.WriteString(p.Prefix)
			}
			p.started = true
		}
		line := b
		if i := bytes.IndexByte(b, '\n'); i >= 0 {
			line = b[:i+1]
		}
		b = b[len(line):]
		m, _ := p.buf.Write(line)
		n += m
	}
	return n, p.buf.FlushLines()
}

// WriteLines calls next with a line buffered writer until it returns false,
// flushing complete lines after every call. Iteration stops early on the
// first write error, which is returned.
func WriteLines(to io.Writer, next func(w io.Writer) bool) error {
	ew, _ := to.(*ErrWriter)
	if ew == nil {
		ew = &ErrWriter{Writer: to}
	}
	var buf LineBuffer
	buf.To = ew
	for ew.Err == nil && next(&buf) {
		buf.FlushLines()
	}
	buf.Flush()
	return ew.Err
}
