// SPDX-License-Identifier: Apache-2.0

// Package config loads the optional YAML configuration file.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"github.com/goccy/go-yaml"

	"github.com/dmarctools/dmarc-parser/internal/report"
)

//go:embed config.cue
var configSchema string

// Config holds every setting a run can take from a file.
type Config struct {
	Verbosity int `yaml:"verbosity"`
	// Placeholder is printed for null values; nil keeps the default.
	Placeholder  *string       `yaml:"placeholder"`
	Strict       bool          `yaml:"strict"`
	LenientDates bool          `yaml:"lenient_dates"`
	Timezone     string        `yaml:"timezone"`
	LogLevel     string        `yaml:"log_level"`
	Schema       report.Schema `yaml:"schema"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{}
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates data against the embedded CUE definition and decodes it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := validate(data); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	return cfg, nil
}

func validate(data []byte) error {
	def := cuecontext.New().CompileString(configSchema).LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}
	if err := cueyaml.Validate(data, def); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location resolves the configured timezone; empty means local time.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Options converts the configuration into converter options.
func (c *Config) Options(log *slog.Logger) (report.Options, error) {
	opts := report.DefaultOptions()
	loc, err := c.Location()
	if err != nil {
		return report.Options{}, err
	}
	opts.Location = loc
	opts.Schema = opts.Schema.Merge(c.Schema)
	opts.Verbosity = c.Verbosity
	if c.Placeholder != nil {
		opts.Placeholder = *c.Placeholder
	}
	opts.Strict = c.Strict
	opts.LenientDates = c.LenientDates
	opts.Logger = log
	return opts, nil
}
