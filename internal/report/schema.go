// SPDX-License-Identifier: Apache-2.0

package report

// Display names keep the spacing and spelling of the historical column table so
// that existing saved searches over the output keep matching.

var metadataFields = []Field{
	{Path: "org_name", Name: "orgainzation", Width: 6, Verbosity: 0},
	{Path: "email", Name: "          email", Width: 6, Verbosity: 1},
	{Path: "extra_contact_info", Name: "extra", Width: 6, Verbosity: 2},
	{Path: "report_id", Name: "report_id", Width: 6, Verbosity: 2},
}

var metadataDates = []Field{
	{Path: "date_range/Begin", Name: "             Begin", Width: 6, Verbosity: 0, EpochOf: "date_range/begin"},
	{Path: "date_range/begin", Name: "Begin", Width: 6, Verbosity: 2},
	{Path: "date_range/End", Name: "               End", Width: 6, Verbosity: 0, EpochOf: "date_range/end"},
	{Path: "date_range/end", Name: "End", Width: 6, Verbosity: 2},
}

var policyFields = []Field{
	{Path: "domain", Name: "domain", Width: 6, Verbosity: 0},
	{Path: "adkim", Name: "adkim", Width: 6, Verbosity: 0},
	{Path: "aspf", Name: "aspf", Width: 6, Verbosity: 0},
	{Path: "p", Name: "p", Width: 6, Verbosity: 0},
	{Path: "pct", Name: "pct", Width: 6, Verbosity: 0},
}

var recordFields = []Field{
	{Path: "row/source_ip", Name: "source_ip", Width: 6, Verbosity: 0},
	{Path: "row/count", Name: "count", Width: 6, Verbosity: 0},
	{Path: "row/policy_evaluated/disposition", Name: "dispos", Width: 6, Verbosity: 1},
	{Path: "row/policy_evaluated/dkim", Name: "dkim PE", Width: 6, Verbosity: 1},
	{Path: "row/policy_evaluated/spf", Name: "spf PE", Width: 6, Verbosity: 1},
	{Path: "row/policy_evaluated/reason/type", Name: "reason", Width: 6, Verbosity: 1},
	{Path: "row/policy_evaluated/reason/comment", Name: "comment", Width: 6, Verbosity: 1},
	{Path: "identifiers/envelope_to", Name: "envelope_to", Width: 6, Verbosity: 0},
	{Path: "identifiers/header_from", Name: "header_from", Width: 6, Verbosity: 0},
	{Path: "auth_results/dkim/domain", Name: "AR dkim dom", Width: 6, Verbosity: 0},
	{Path: "auth_results/dkim/result", Name: "AR dkim res", Width: 6, Verbosity: 0},
	{Path: "auth_results/dkim/human_result", Name: "AR dkim hum", Width: 6, Verbosity: 1},
	{Path: "auth_results/spf/domain", Name: "AR spf domain", Width: 6, Verbosity: 0},
	{Path: "auth_results/spf/result", Name: "AR spf res", Width: 6, Verbosity: 0},
}

// DefaultSchema returns a fresh copy of the built-in column table.
func DefaultSchema() Schema {
	return Schema{
		Metadata: append([]Field(nil), metadataFields...),
		Dates:    append([]Field(nil), metadataDates...),
		Policy:   append([]Field(nil), policyFields...),
		Record:   append([]Field(nil), recordFields...),
	}
}

// Merge returns s with every non-empty family of override replacing the
// corresponding family.
func (s Schema) Merge(override Schema) Schema {
	if len(override.Metadata) > 0 {
		s.Metadata = override.Metadata
	}
	if len(override.Dates) > 0 {
		s.Dates = override.Dates
	}
	if len(override.Policy) > 0 {
		s.Policy = override.Policy
	}
	if len(override.Record) > 0 {
		s.Record = override.Record
	}
	return s
}
