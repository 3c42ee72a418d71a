// Command docfence fences the doctest examples in docstring text, and renders
// docstring documents to HTML.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jcorbin/docfence/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "docfence: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand shares, once PersistentPreRunE has run.
type app struct {
	v   *viper.Viper
	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{
		v:   config.New(),
		log: logrus.New(),
	}
	a.log.Out = errOut
	a.log.Formatter = &logrus.TextFormatter{FullTimestamp: true}

	rootCmd := &cobra.Command{
		Use:   "docfence",
		Short: "Fence doctest examples in docstrings, and render them to HTML",
		Long: `docfence reformats interactive ">>>" examples embedded in docstring text
so that markup renderers show them as code: captured output is re-indented,
and an input line tagged "#:lang L" gets a ".. code-block:: L" directive.

Settings come from flags, DOCFENCE_* environment variables, and a
` + config.FileName + ` file found in the working directory or above it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file (default: search up from the working directory)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newReformatCmd(a),
		newScanCmd(a),
		newRenderCmd(a),
		newBuildCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(a.v, file, ".")
	if err != nil {
		return err
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log.SetLevel(level)
	a.cfg = cfg
	a.log.WithField("config", a.v.ConfigFileUsed()).Debug("loaded config")
	return nil
}
