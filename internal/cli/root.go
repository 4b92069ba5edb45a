// SPDX-License-Identifier: Apache-2.0

// Package cli implements the dmarc-parser commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dmarctools/dmarc-parser/internal/config"
	"github.com/dmarctools/dmarc-parser/internal/logger"
	"github.com/dmarctools/dmarc-parser/internal/report"
	"github.com/dmarctools/dmarc-parser/internal/source"
)

type rootOptions struct {
	configPath   string
	logLevel     string
	verbose      int
	placeholder  string
	strict       bool
	lenientDates bool
	timezone     string
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string) *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "dmarc-parser [flags] FILE",
		Short: "Convert a DMARC aggregate report into line-oriented records.",
		Long: `dmarc-parser reads a DMARC aggregate report (XML, optionally gzip or zip
compressed) and prints one comma separated line per source IP record, preceded
by a header line. Report metadata and the published policy are repeated on
every line so each line can be indexed on its own. Use - to read stdin.

Each -v adds more columns; -vvv also logs the schema and every record.`,
		Example:       "  dmarc-parser report.xml 1> outfile.log\n  dmarc-parser -vv google.com!example.com!1410480000!1410566399.zip",
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.convert(cmd, args[0])
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&o.logLevel, "log-level", "", "diagnostic log level (debug, info, warn, error)")

	f := cmd.Flags()
	f.CountVarP(&o.verbose, "verbose", "v", "increase column detail; repeatable")
	f.StringVar(&o.placeholder, "placeholder", report.DefaultPlaceholder, "text printed for absent values")
	f.BoolVar(&o.strict, "strict", false, "fail when a record appears before the report metadata and policy")
	f.BoolVar(&o.lenientDates, "lenient-dates", false, "print an empty column instead of failing on an unreadable date_range")
	f.StringVar(&o.timezone, "timezone", "", "IANA timezone for converted dates (default local time)")

	cmd.AddCommand(newServeCommand(version, o), newSchemaCommand(o))
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute(version string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := NewRootCommand(version)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", cmd.Name(), err)
		return 1
	}
	return 0
}

// loadConfig reads the config file, if any, and applies explicitly set flags on top.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbosity = o.verbose
	}
	if flags.Changed("placeholder") {
		cfg.Placeholder = &o.placeholder
	}
	if flags.Changed("strict") {
		cfg.Strict = o.strict
	}
	if flags.Changed("lenient-dates") {
		cfg.LenientDates = o.lenientDates
	}
	if flags.Changed("timezone") {
		cfg.Timezone = o.timezone
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	return cfg, nil
}

func (o *rootOptions) newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level := logger.LevelForVerbosity(cfg.Verbosity)
	if cfg.LogLevel != "" {
		level = logger.ParseLevel(cfg.LogLevel)
	}
	return logger.New(logger.Options{Writer: cmd.ErrOrStderr(), Level: level})
}

func (o *rootOptions) convert(cmd *cobra.Command, name string) error {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}
	log := o.newLogger(cmd, cfg).With("file", name)

	opts, err := cfg.Options(log)
	if err != nil {
		return err
	}

	in, err := openInput(cmd, name)
	if err != nil {
		return err
	}
	defer func() {
		if err := in.Close(); err != nil {
			log.Warn("closing input", "err", err)
		}
	}()

	if _, err := report.NewConverter(opts).Run(cmd.Context(), in, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func openInput(cmd *cobra.Command, name string) (io.ReadCloser, error) {
	if name == source.Stdin {
		return source.Wrap(io.NopCloser(cmd.InOrStdin()))
	}
	return source.Open(name)
}
