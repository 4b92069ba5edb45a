// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dmarctools/dmarc-parser/internal/config"
	"github.com/dmarctools/dmarc-parser/internal/report"
)

// MetadataConvertAggregateReport describes the convert_aggregate_report tool.
var MetadataConvertAggregateReport = &mcp.Tool{
	Name: "convert_aggregate_report",
	Description: "Convert a DMARC aggregate report (XML) into line-oriented, comma separated records. " +
		"The first line holds column names; every following line is one source IP record with the " +
		"report metadata and published policy repeated on it. " +
		"Raise verbosity (0-2) to include more columns.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content"},
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Raw XML of the aggregate report",
			},
			"verbosity": map[string]interface{}{
				"type":        "integer",
				"minimum":     0,
				"description": "Column detail level. 0 prints the core columns, 2 prints every column. Defaults to the server configuration.",
			},
			"placeholder": map[string]interface{}{
				"type":        "string",
				"description": "Text printed for absent values. Defaults to the server configuration, then None.",
			},
			"strict": map[string]interface{}{
				"type":        "boolean",
				"description": "Reject records that appear before the report metadata and policy.",
			},
			"lenient_dates": map[string]interface{}{
				"type":        "boolean",
				"description": "Print an empty date column instead of failing on an unreadable date_range.",
			},
			"timezone": map[string]interface{}{
				"type":        "string",
				"description": "IANA timezone used for the converted dates. Defaults to the server configuration, then local time.",
			},
		},
	},
}

// InputConvertAggregateReport is the input for the ConvertAggregateReport tool.
// Options left unset keep the value from the server configuration.
type InputConvertAggregateReport struct {
	Content      string  `json:"content"`
	Verbosity    *int    `json:"verbosity,omitempty"`
	Placeholder  *string `json:"placeholder,omitempty"`
	Strict       *bool   `json:"strict,omitempty"`
	LenientDates *bool   `json:"lenient_dates,omitempty"`
	Timezone     *string `json:"timezone,omitempty"`
}

// OutputConvertAggregateReport is the output for the ConvertAggregateReport tool.
type OutputConvertAggregateReport struct {
	// Lines is the header line followed by one line per record.
	Lines string `json:"lines"`
	// Columns lists the printed column names in order.
	Columns []string `json:"columns"`
	// Records is the number of record sections converted.
	Records int `json:"records"`
}

// Converter serves the conversion tools on top of a base configuration.
type Converter struct {
	base *config.Config
}

// NewConverter returns a Converter starting every call from base.
// A nil base means the defaults.
func NewConverter(base *config.Config) *Converter {
	if base == nil {
		base = config.Default()
	}
	return &Converter{base: base}
}

// resolve returns a copy of the base configuration with the caller's overrides applied.
func (c *Converter) resolve(input InputConvertAggregateReport) *config.Config {
	cfg := *c.base
	if input.Verbosity != nil {
		cfg.Verbosity = *input.Verbosity
	}
	if input.Placeholder != nil {
		cfg.Placeholder = input.Placeholder
	}
	if input.Strict != nil {
		cfg.Strict = *input.Strict
	}
	if input.LenientDates != nil {
		cfg.LenientDates = *input.LenientDates
	}
	if input.Timezone != nil {
		cfg.Timezone = *input.Timezone
	}
	return &cfg
}

// ConvertAggregateReport converts the report in the input and returns the
// printed lines.
func (c *Converter) ConvertAggregateReport(ctx context.Context, _ *mcp.CallToolRequest, input InputConvertAggregateReport) (*mcp.CallToolResult, OutputConvertAggregateReport, error) {
	if input.Content == "" {
		return nil, OutputConvertAggregateReport{}, fmt.Errorf("content is required")
	}
	if input.Verbosity != nil && *input.Verbosity < 0 {
		return nil, OutputConvertAggregateReport{}, fmt.Errorf("verbosity must not be negative")
	}

	opts, err := c.resolve(input).Options(nil)
	if err != nil {
		return nil, OutputConvertAggregateReport{}, err
	}

	var out strings.Builder
	result, err := report.NewConverter(opts).Run(ctx, strings.NewReader(input.Content), &out)
	if err != nil {
		return nil, OutputConvertAggregateReport{}, fmt.Errorf("conversion stopped after %d records: %w", result.Rows, err)
	}

	return nil, OutputConvertAggregateReport{
		Lines:   out.String(),
		Columns: result.Columns,
		Records: result.Rows,
	}, nil
}
