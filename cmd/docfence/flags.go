package main

import (
	"github.com/spf13/pflag"

	"github.com/jcorbin/docfence/doctest"
	"github.com/jcorbin/docfence/internal/render"
)

// Flags named after config keys are bound by config.BindFlags; their defaults
// here only serve the help text.

func addMarginFlags(fs *pflag.FlagSet) {
	fs.Int("margin", doctest.DefaultMargin, "output re-indentation margin")
}

func addRenderFlags(fs *pflag.FlagSet) {
	addMarginFlags(fs)
	fs.String("engine", render.EngineBlackfriday, "markdown engine: blackfriday or goldmark")
	fs.String("style", "monokai", "chroma highlighting style")
	fs.Bool("highlight", true, "syntax highlight code blocks")
}

func addSourceFlags(fs *pflag.FlagSet) {
	fs.String("source", ".", "root directory of the source documents")
	fs.StringSlice("include", []string{"**/*.txt", "**/*.rst", "**/*.md"}, "source document patterns")
	fs.String("version", "0.0.0", "documentation version")
}
