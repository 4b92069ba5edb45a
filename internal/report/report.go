// SPDX-License-Identifier: Apache-2.0

package report

import "maps"

// Field describes one output column.
type Field struct {
	// Path locates the value relative to the section element, e.g. "row/source_ip".
	Path string `yaml:"path"`
	// Name is the header text printed for the column.
	Name string `yaml:"name"`
	// Width is carried for compatibility with existing column tables; it does not affect output.
	Width int `yaml:"width"`
	// Verbosity is the lowest verbosity at which the column is printed.
	Verbosity int `yaml:"verbosity"`
	// EpochOf, when set, names the element holding epoch seconds that the
	// column is converted from.
	EpochOf string `yaml:"epoch_of,omitempty"`
}

// Visible reports whether the field is printed at the given verbosity.
func (f Field) Visible(verbosity int) bool {
	return f.Verbosity <= verbosity
}

// Schema groups the column families of an aggregate report.
type Schema struct {
	Metadata []Field `yaml:"metadata"`
	Dates    []Field `yaml:"dates"`
	Policy   []Field `yaml:"policy"`
	Record   []Field `yaml:"record"`
}

// Fields returns the columns in output order: metadata, dates, policy, record.
func (s Schema) Fields() []Field {
	out := make([]Field, 0, len(s.Metadata)+len(s.Dates)+len(s.Policy)+len(s.Record))
	out = append(out, s.Metadata...)
	out = append(out, s.Dates...)
	out = append(out, s.Policy...)
	return append(out, s.Record...)
}

// Visible returns the columns printed at the given verbosity, in output order.
func (s Schema) Visible(verbosity int) []Field {
	var out []Field
	for _, f := range s.Fields() {
		if f.Visible(verbosity) {
			out = append(out, f)
		}
	}
	return out
}

// Value is the text extracted for one field. The zero Value is null.
type Value struct {
	Text  string
	Valid bool
}

// Text returns a valid Value holding s.
func Text(s string) Value {
	return Value{Text: s, Valid: true}
}

// Null is the value of a field whose path is absent.
var Null = Value{}

// Row is one flattened record keyed by field path.
type Row map[string]Value

// Get returns the value stored for path, or Null.
func (r Row) Get(path string) Value {
	return r[path]
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return Row{}
	}
	return maps.Clone(r)
}
