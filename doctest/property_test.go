package doctest

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lineParts = []string{
	"",
	"narrative text",
	">>> call()",
	">>> call() #:lang python",
	">>> dump() #:lang toml",
	"... continued",
	"... more #:lang json",
	"output",
	"<BLANKLINE>",
	"key = value #:lang nope",
}

func randomDoc(rng *rand.Rand, plainOnly bool) string {
	var sb strings.Builder
	for n := rng.Intn(24); n > 0; n-- {
		sb.WriteString(strings.Repeat(" ", rng.Intn(6)))
		part := lineParts[rng.Intn(len(lineParts))]
		if plainOnly {
			part = strings.TrimLeft(part, ">.")
		}
		sb.WriteString(part)
		switch rng.Intn(8) {
		case 0:
			sb.WriteString("\r\n")
		case 1:
			if n > 1 {
				sb.WriteString("\n")
			}
		default:
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func TestReformat_properties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		doc := randomDoc(rng, false)

		var rf Reformatter
		rf.Margin = DefaultMargin
		out, err := rf.Append(nil, []byte(doc))
		require.NoError(t, err)

		assert.Equal(t, rf.opened, rf.closed, "directives and close markers must balance for %q", doc)
		assert.Equal(t, rf.opened, bytes.Count(out, []byte(directive)), "every directive is emitted once for %q", doc)
		assert.False(t, rf.pending, "nothing may stay pending after end of text for %q", doc)
	}
}

func TestReformat_plainIsUnchanged(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		doc := randomDoc(rng, true)
		assert.Equal(t, doc, Reformat(doc, DefaultMargin))
	}
}

func TestReformat_fixedWidth(t *testing.T) {
	out := Reformat("  >>> f()\n  a\n b\n\t\tc\n<BLANKLINE>\n        d\n\nafter\n", DefaultMargin)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 9)
	for _, line := range lines[1:6] {
		if line == "" {
			continue
		}
		assert.Equal(t, 6, Indent([]byte(line)), "output line %q", line)
	}
	assert.Equal(t, "", lines[4], "sentinel becomes an empty line")
	assert.Equal(t, "after", lines[7], "blank line ends the output block")
}

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		prior   State
		trimmed string
		want    State
	}{
		{Plain, ">>> x", Input},
		{Output, ">>> x", Input},
		{Input, "... y", Input},
		{Plain, "...", Input},
		{Input, "", Plain},
		{Output, "", Plain},
		{Input, "1", Output},
		{Output, "2", Output},
		{Plain, "text", Plain},
		{Plain, "<BLANKLINE>", Plain},
		{Input, "<BLANKLINE>", Output},
		{Plain, ">> nope", Plain},
		{Plain, ".. code-block:: py", Plain},
	} {
		assert.Equal(t, tc.want, Classify(tc.prior, []byte(tc.trimmed)), "Classify(%v, %q)", tc.prior, tc.trimmed)
	}
}

func TestIndent(t *testing.T) {
	for _, tc := range []struct {
		line string
		want int
	}{
		{"", 0},
		{"x", 0},
		{"  x", 2},
		{"\tx", 1},
		{" \t x", 3},
		{"    \n", 4},
		{"\n", 0},
	} {
		assert.Equal(t, tc.want, Indent([]byte(tc.line)), "Indent(%q)", tc.line)
		assert.Equal(t, tc.want, IndentString(tc.line), "IndentString(%q)", tc.line)
	}
}

func TestLangTag(t *testing.T) {
	for _, tc := range []struct {
		line string
		lang string
		ok   bool
	}{
		{">>> f()", "", false},
		{">>> f() #:lang python", "python", true},
		{">>> f() #:lang  toml  ", "toml", true},
		{">>> f() #:lang a #:lang b", "b", true},
		{">>> f() #:lang ", "", false},
		{">>> f() #:lang", "", false},
		{">>> f() #:langpython", "", false},
	} {
		lang, ok := LangTag([]byte(tc.line))
		assert.Equal(t, tc.ok, ok, "LangTag(%q) ok", tc.line)
		assert.Equal(t, tc.lang, string(lang), "LangTag(%q) lang", tc.line)
	}
}
