package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jcorbin/docfence/doctest"
	"github.com/jcorbin/docfence/internal/textio"
)

func newScanCmd(a *app) *cobra.Command {
	var verbose, hexdump bool
	cmd := &cobra.Command{
		Use:   "scan [file]",
		Short: "Dump how each line of docstring text is classified and reformatted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "-"
			if len(args) > 0 {
				name = args[0]
			}
			src, err := readInput(cmd, name)
			if err != nil {
				return err
			}

			rf := doctest.Reformatter{
				Margin: a.cfg.Margin,
				Strict: a.cfg.Strict,
			}
			sc := bufio.NewScanner(bytes.NewReader(src))
			sc.Buffer(nil, math.MaxInt)
			sc.Split(rf.Scan)

			out := &textio.ErrWriter{Writer: cmd.OutOrStdout()}
			n := 0
			if err := textio.WriteLines(out, func(w io.Writer) bool {
				if !sc.Scan() {
					return false
				}
				n++

				width, _ := fmt.Fprintf(w, "%v. ", n)
				itemOut := textio.PrefixWriter(strings.Repeat(" ", width), w)
				itemOut.Skip = true
				defer itemOut.Close()

				if verbose {
					fmt.Fprintf(itemOut, "%+v\n", &rf)
				} else {
					fmt.Fprintf(itemOut, "%v\n", &rf)
				}

				token := sc.Bytes()
				if hexdump && len(token) > 0 {
					io.WriteString(itemOut, "```hexdump\n")
					dumper := hex.Dumper(itemOut)
					dumper.Write(token)
					dumper.Close()
					io.WriteString(itemOut, "```\n")
				} else {
					fmt.Fprintf(itemOut, "%q\n", token)
				}
				return true
			}); err != nil {
				return err
			}
			return sc.Err()
		},
	}
	addMarginFlags(cmd.Flags())
	cmd.Flags().Bool("strict", false, "fail on a language tag while a code block is still open")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include margin and code block counts")
	cmd.Flags().BoolVar(&hexdump, "hex", false, "hex dump each token")
	return cmd
}
