package doctest

import (
	"fmt"
	"io"
	"strconv"
)

// Format writes a textual representation of the receiver, providing improved
// fmt.Printf display. Produces a verbose form, including the output block
// width and fence counts, when formatted with `%+v`.
func (rf *Reformatter) Format(f fmt.State, _ rune) {
	fmt.Fprint(f, rf.state)
	if rf.state == Output {
		fmt.Fprintf(f, " width=%v", rf.width)
	}
	if rf.pending {
		fmt.Fprintf(f, " close=%q", rf.closing)
	}
	if f.Flag('+') {
		fmt.Fprintf(f, " margin=%v opened=%v closed=%v", rf.margin(), rf.opened, rf.closed)
	}
}

// Format writes a name string representing the receiver state.
func (st State) Format(f fmt.State, _ rune) { io.WriteString(f, st.String()) }

func (st State) String() string {
	switch st {
	case Plain:
		return "plain"
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return "InvalidState" + strconv.Itoa(int(st))
	}
}
