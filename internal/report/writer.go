// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bufio"
	"io"
)

// Separator follows every printed field, including the last one on a line.
const Separator = ", "

// DefaultPlaceholder is printed for null values.
const DefaultPlaceholder = "None"

// RowWriter prints rows as separator-delimited lines. The header is written
// once, before the first row.
type RowWriter struct {
	w           *bufio.Writer
	columns     []Field
	placeholder string

	headerWritten bool
}

// NewRowWriter creates a RowWriter printing the columns of schema visible at verbosity.
func NewRowWriter(w io.Writer, schema Schema, verbosity int, placeholder string) *RowWriter {
	return &RowWriter{
		w:           bufio.NewWriter(w),
		columns:     schema.Visible(verbosity),
		placeholder: placeholder,
	}
}

// Columns returns the printed columns in order.
func (rw *RowWriter) Columns() []Field {
	return rw.columns
}

// WriteRow prints row, preceded by the header line on the first call.
func (rw *RowWriter) WriteRow(row Row) error {
	if !rw.headerWritten {
		rw.headerWritten = true
		if err := rw.writeHeader(); err != nil {
			return err
		}
	}
	for _, f := range rw.columns {
		v := row.Get(f.Path)
		text := v.Text
		if !v.Valid {
			text = rw.placeholder
		}
		rw.field(text)
	}
	return rw.endLine()
}

func (rw *RowWriter) writeHeader() error {
	for _, f := range rw.columns {
		rw.field(f.Name)
	}
	return rw.endLine()
}

// HeaderWritten reports whether the header has been printed.
func (rw *RowWriter) HeaderWritten() bool {
	return rw.headerWritten
}

// Flush writes any buffered output.
func (rw *RowWriter) Flush() error {
	return rw.w.Flush()
}

func (rw *RowWriter) field(s string) {
	// bufio.Writer errors are sticky and surface from endLine.
	_, _ = rw.w.WriteString(s)
	_, _ = rw.w.WriteString(Separator)
}

func (rw *RowWriter) endLine() error {
	return rw.w.WriteByte('\n')
}
