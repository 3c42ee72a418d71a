package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	diff "github.com/shogoki/gotextdiff"
	"github.com/spf13/cobra"

	"github.com/jcorbin/docfence/doctest"
	"github.com/jcorbin/docfence/internal/textio"
)

var errWouldChange = errors.New("some input would be reformatted")

func newReformatCmd(a *app) *cobra.Command {
	var showDiff, check bool
	cmd := &cobra.Command{
		Use:   "reformat [files...]",
		Short: "Reformat doctests in docstring text, from files or stdin",
		Long: `Reformat writes the reformatted text of each named file, or of stdin when
none are named, to stdout. With --diff it writes a unified diff of the changes
instead, and with --check it fails if anything would change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rf := doctest.Reformatter{
				Margin: a.cfg.Margin,
				Strict: a.cfg.Strict,
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 && !showDiff && !check {
				sc := bufio.NewScanner(cmd.InOrStdin())
				sc.Buffer(nil, math.MaxInt)
				sc.Split(rf.Scan)
				_, err := textio.CopyScanner(out, sc)
				return err
			}

			inputs := args
			if len(inputs) == 0 {
				inputs = []string{"-"}
			}
			changed := 0
			for _, name := range inputs {
				src, err := readInput(cmd, name)
				if err != nil {
					return err
				}
				dst, err := rf.Append(nil, src)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				same := string(src) == string(dst)
				if !same {
					changed++
				}
				a.log.WithField("file", name).WithField("changed", !same).Debug("reformatted")

				switch {
				case showDiff:
					_, err = out.Write(diff.Diff(name, src, name, dst))
				case check:
					if !same {
						_, err = fmt.Fprintf(cmd.ErrOrStderr(), "would reformat %s\n", name)
					}
				default:
					_, err = out.Write(dst)
				}
				if err != nil {
					return err
				}
			}
			if check && changed > 0 {
				return fmt.Errorf("%w: %d of %d", errWouldChange, changed, len(inputs))
			}
			return nil
		},
	}
	addMarginFlags(cmd.Flags())
	cmd.Flags().Bool("strict", false, "fail on a language tag while a code block is still open")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "write a unified diff instead of the reformatted text")
	cmd.Flags().BoolVar(&check, "check", false, "exit non-zero if any input would be reformatted")
	return cmd
}

// readInput reads a named file, or stdin for "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}
