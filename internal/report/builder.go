// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// isoLayout matches the local-time ISO-8601 form used for converted dates.
const isoLayout = "2006-01-02T15:04:05"

// Epochs outside this range do not format as a four-digit year.
var (
	minEpoch = time.Date(1, time.January, 2, 0, 0, 0, 0, time.UTC).Unix()
	maxEpoch = time.Date(9999, time.December, 30, 23, 59, 59, 0, time.UTC).Unix()
)

var errEpochRange = errors.New("epoch seconds out of range")

type state int

const (
	stateIdle state = iota
	stateMetadata
	statePolicy
	stateRecord
)

func (s state) String() string {
	switch s {
	case stateMetadata:
		return "report_metadata"
	case statePolicy:
		return "policy_published"
	case stateRecord:
		return "record"
	default:
		return "idle"
	}
}

var sectionStates = map[string]state{
	"report_metadata":  stateMetadata,
	"policy_published": statePolicy,
	"record":           stateRecord,
}

// BuilderOptions controls how sections are turned into rows.
type BuilderOptions struct {
	Schema Schema
	// Location is used for converted dates. Nil means time.Local.
	Location *time.Location
	// Strict rejects records that appear before metadata and policy.
	Strict bool
	// LenientDates turns an unreadable date into a null column instead of an error.
	LenientDates bool
	Logger       *slog.Logger
}

// Builder walks an aggregate report and yields one Row per record section.
// Only the section being read is kept in memory.
type Builder struct {
	dec  *xml.Decoder
	opts BuilderOptions

	state   state
	tree    *treeBuilder
	context Row

	seenMetadata bool
	seenPolicy   bool
	warnedOrder  bool
	records      int
	err          error

	// depth counts open elements; sawRoot is set by the document element.
	depth   int
	sawRoot bool
}

// NewBuilder creates a Builder reading the document from r.
func NewBuilder(r io.Reader, opts BuilderOptions) *Builder {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	return &Builder{
		dec:     dec,
		opts:    opts,
		context: Row{},
	}
}

// Next returns the next row. It returns io.EOF once the document is exhausted.
// Any other error is sticky.
func (b *Builder) Next() (Row, error) {
	if b.err != nil {
		return nil, b.err
	}
	for {
		tok, err := b.dec.Token()
		if errors.Is(err, io.EOF) {
			if !b.sawRoot {
				b.err = fmt.Errorf("%w: no root element", ErrParse)
				return nil, b.err
			}
			b.err = io.EOF
			return nil, io.EOF
		}
		if err != nil {
			b.err = fmt.Errorf("%w: %w", ErrParse, err)
			return nil, b.err
		}
		if err := b.track(tok); err != nil {
			b.err = err
			return nil, err
		}

		if b.state == stateIdle {
			start, ok := tok.(xml.StartElement)
			if !ok {
				continue
			}
			if st, ok := sectionStates[start.Name.Local]; ok {
				b.state = st
				b.tree = newTreeBuilder(start)
			}
			continue
		}

		if !b.tree.push(tok) {
			continue
		}
		section, st := b.tree.root, b.state
		b.state, b.tree = stateIdle, nil

		row, err := b.sectionEnd(st, section)
		if err != nil {
			b.err = err
			return nil, err
		}
		if row != nil {
			return row, nil
		}
	}
}

// track keeps the element depth and rejects content outside the document element.
func (b *Builder) track(tok xml.Token) error {
	switch t := tok.(type) {
	case xml.StartElement:
		if b.depth == 0 && b.sawRoot {
			return fmt.Errorf("%w: junk after document element: <%s>", ErrParse, t.Name.Local)
		}
		b.sawRoot = true
		b.depth++
	case xml.EndElement:
		b.depth--
	case xml.CharData:
		if b.depth == 0 && len(bytes.TrimSpace(t)) > 0 {
			return fmt.Errorf("%w: text outside the document element", ErrParse)
		}
	}
	return nil
}

// All returns the remaining rows as a sequence. Iteration stops after the
// first error.
func (b *Builder) All() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		for {
			row, err := b.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}

// Records returns the number of record sections emitted so far.
func (b *Builder) Records() int {
	return b.records
}

func (b *Builder) sectionEnd(st state, section *element) (Row, error) {
	b.opts.Logger.Debug("section end", "section", st.String(), "children", len(section.children))
	switch st {
	case stateMetadata:
		return nil, b.onMetadataEnd(section)
	case statePolicy:
		b.onPolicyEnd(section)
		return nil, nil
	case stateRecord:
		return b.onRecordEnd(section)
	}
	return nil, nil
}

func (b *Builder) onMetadataEnd(section *element) error {
	for _, f := range b.opts.Schema.Metadata {
		b.context[f.Path] = section.findText(f.Path)
	}
	for _, f := range b.opts.Schema.Dates {
		if f.EpochOf == "" {
			b.context[f.Path] = section.findText(f.Path)
			continue
		}
		v, err := b.convertDate(section, f.EpochOf)
		if err != nil {
			return err
		}
		b.context[f.Path] = v
	}
	b.seenMetadata = true
	return nil
}

func (b *Builder) onPolicyEnd(section *element) {
	for _, f := range b.opts.Schema.Policy {
		b.context[f.Path] = section.findText(f.Path)
	}
	b.seenPolicy = true
}

func (b *Builder) onRecordEnd(section *element) (Row, error) {
	if !b.seenMetadata || !b.seenPolicy {
		if b.opts.Strict {
			return nil, fmt.Errorf("record %d: %w", b.records+1, ErrOutOfOrder)
		}
		if !b.warnedOrder {
			b.warnedOrder = true
			b.opts.Logger.Warn("record seen before report metadata or policy; context columns will be empty",
				"record", b.records+1,
				"metadata", b.seenMetadata,
				"policy", b.seenPolicy)
		}
	}

	row := b.context.Clone()
	for _, f := range b.opts.Schema.Record {
		row[f.Path] = section.findText(f.Path)
	}
	b.records++
	return row, nil
}

func (b *Builder) convertDate(section *element, path string) (Value, error) {
	raw := section.findText(path)
	if !raw.Valid {
		if b.opts.LenientDates {
			b.opts.Logger.Warn("report date missing", "path", path)
			return Null, nil
		}
		return Null, &FormatError{Path: path, Missing: true}
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(raw.Text), 10, 64)
	if err != nil {
		if b.opts.LenientDates {
			b.opts.Logger.Warn("report date is not epoch seconds", "path", path, "value", raw.Text)
			return Null, nil
		}
		return Null, &FormatError{Path: path, Text: raw.Text, Err: err}
	}
	if secs < minEpoch || secs > maxEpoch {
		if b.opts.LenientDates {
			b.opts.Logger.Warn("report date out of range", "path", path, "value", raw.Text)
			return Null, nil
		}
		return Null, &FormatError{Path: path, Text: raw.Text, Err: errEpochRange}
	}
	return Text(ConvertEpoch(secs, b.opts.Location)), nil
}

// ConvertEpoch formats epoch seconds as an ISO-8601 timestamp in loc.
func ConvertEpoch(secs int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(secs, 0).In(loc).Format(isoLayout)
}
