// Package config loads docfence settings from defaults, an optional YAML
// file, DOCFENCE_ environment variables, and command line flags, in order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jcorbin/docfence/doctest"
	"github.com/jcorbin/docfence/internal/render"
	"github.com/jcorbin/docfence/internal/textio"
)

// FileName is the config file searched for from the working directory up.
const FileName = ".docfence.yaml"

// EnvPrefix prefixes environment variable overrides, e.g. DOCFENCE_MARGIN.
const EnvPrefix = "DOCFENCE"

// Config holds every setting, as merged from defaults, the config file,
// DOCFENCE_* environment variables and command line flags.
type Config struct {
	Margin    int      `mapstructure:"margin" yaml:"margin"`       // output re-indentation margin
	Strict    bool     `mapstructure:"strict" yaml:"strict"`       // fail on nested language tags
	Engine    string   `mapstructure:"engine" yaml:"engine"`       // blackfriday or goldmark
	Style     string   `mapstructure:"style" yaml:"style"`         // chroma style name
	Highlight bool     `mapstructure:"highlight" yaml:"highlight"` // highlight code blocks
	Source    string   `mapstructure:"source" yaml:"source"`       // root of the documents to build
	Include   []string `mapstructure:"include" yaml:"include"`     // doublestar patterns under Source
	Out       string   `mapstructure:"out" yaml:"out"`             // build output directory
	Version   string   `mapstructure:"version" yaml:"version"`     // names the output subdirectory
	Jobs      int      `mapstructure:"jobs" yaml:"jobs"`           // concurrent page renders
	Listen    string   `mapstructure:"listen" yaml:"listen"`       // serve address
	LogLevel  string   `mapstructure:"log_level" yaml:"log_level"` // logrus level name
}

var defaults = map[string]any{
	"margin":    doctest.DefaultMargin,
	"strict":    false,
	"engine":    render.EngineBlackfriday,
	"style":     "monokai",
	"highlight": true,
	"source":    ".",
	"include":   []string{"**/*.txt", "**/*.rst", "**/*.md"},
	"out":       "docs/api",
	"version":   "0.0.0",
	"jobs":      4,
	"listen":    "localhost:8080",
	"log_level": "info",
}

// New returns a viper instance carrying every default, and reading
// environment overrides.
func New() *viper.Viper {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds every flag in fs named after a config key, with dashes
// standing for underscores, so that flags set on the command line win.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) (err error) {
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if _, ok := defaults[key]; !ok {
			return
		}
		if berr := v.BindPFlag(key, f); err == nil {
			err = berr
		}
	})
	return err
}

// Load reads file into v, or the nearest FileName found upward from dir when
// file is empty, and returns the validated result. Having no config file is
// fine; having an unreadable one is not.
func Load(v *viper.Viper, file, dir string) (*Config, error) {
	if file == "" {
		found, err := textio.FindUp(dir, FileName)
		if err != nil {
			return nil, fmt.Errorf("failed to find config: %w", err)
		}
		file = found
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Margin < 0:
		return fmt.Errorf("invalid margin %d: must not be negative", c.Margin)
	case c.Jobs < 1:
		return fmt.Errorf("invalid jobs %d: must be positive", c.Jobs)
	case c.Version == "":
		return errors.New("invalid version: must not be empty")
	case strings.ContainsAny(c.Version, `/\`) || c.Version == "." || c.Version == "..":
		return fmt.Errorf("invalid version %q: must name a single directory", c.Version)
	}
	if _, err := render.New(c.Engine, c.RenderOptions()); err != nil {
		return fmt.Errorf("invalid engine: %w", err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

// RenderOptions returns the renderer options c configures.
func (c *Config) RenderOptions() render.Options {
	return render.Options{Style: c.Style, Highlight: c.Highlight}
}

// Dump writes c to w as YAML, in the format Load reads.
func (c *Config) Dump(w io.Writer) (rerr error) {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() {
		if cerr := enc.Close(); rerr == nil {
			rerr = cerr
		}
	}()
	return enc.Encode(c)
}
