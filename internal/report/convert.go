// SPDX-License-Identifier: Apache-2.0

package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/goccy/go-yaml"
)

// Options configures a Converter.
type Options struct {
	Schema       Schema
	Verbosity    int
	Placeholder  string
	Location     *time.Location
	Strict       bool
	LenientDates bool
	Logger       *slog.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Schema:      DefaultSchema(),
		Placeholder: DefaultPlaceholder,
		Location:    time.Local,
	}
}

// RunResult is the output of a successful conversion.
type RunResult struct {
	Rows    int
	Columns []string
}

// Converter turns an aggregate report into header and data lines.
type Converter struct {
	opts Options
}

// NewConverter creates a Converter. An empty schema falls back to DefaultSchema.
func NewConverter(opts Options) *Converter {
	if len(opts.Schema.Fields()) == 0 {
		opts.Schema = DefaultSchema()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Converter{opts: opts}
}

// Run reads the document from src and writes one line per record to dst.
// Lines written before an error are flushed.
func (c *Converter) Run(ctx context.Context, src io.Reader, dst io.Writer) (RunResult, error) {
	builder := NewBuilder(src, BuilderOptions{
		Schema:       c.opts.Schema,
		Location:     c.opts.Location,
		Strict:       c.opts.Strict,
		LenientDates: c.opts.LenientDates,
		Logger:       c.opts.Logger,
	})
	w := NewRowWriter(dst, c.opts.Schema, c.opts.Verbosity, c.opts.Placeholder)

	result := RunResult{Columns: make([]string, 0, len(w.Columns()))}
	for _, f := range w.Columns() {
		result.Columns = append(result.Columns, f.Name)
	}
	c.dump(ctx, "schema", c.opts.Schema)

	for row, err := range builder.All() {
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			if ferr := w.Flush(); ferr != nil {
				c.opts.Logger.Error("flush after failure", "err", ferr)
			}
			return result, err
		}
		c.dump(ctx, "record", rowDump(row))
		if err := w.WriteRow(row); err != nil {
			return result, fmt.Errorf("write record %d: %w", result.Rows+1, err)
		}
		result.Rows++
	}

	if err := w.Flush(); err != nil {
		return result, fmt.Errorf("flush output: %w", err)
	}
	c.opts.Logger.Info("report converted", "records", builder.Records(), "columns", len(result.Columns))
	return result, nil
}

func (c *Converter) dump(ctx context.Context, msg string, v any) {
	if !c.opts.Logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		c.opts.Logger.Debug(msg, "err", err)
		return
	}
	c.opts.Logger.Debug(msg, "yaml", string(out))
}

func rowDump(row Row) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if v.Valid {
			out[k] = v.Text
		} else {
			out[k] = nil
		}
	}
	return out
}
