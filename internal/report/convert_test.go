// SPDX-License-Identifier: Apache-2.0

package report_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarctools/dmarc-parser/internal/report"
)

func convert(t *testing.T, doc string, verbosity int) (string, report.RunResult, error) {
	t.Helper()
	opts := report.DefaultOptions()
	opts.Verbosity = verbosity
	opts.Location = time.UTC

	var out bytes.Buffer
	res, err := report.NewConverter(opts).Run(context.Background(), strings.NewReader(doc), &out)
	return out.String(), res, err
}

func lines(out string) []string {
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n")
}

func fields(line string) []string {
	return strings.Split(strings.TrimSuffix(line, report.Separator), report.Separator)
}

func TestConverter_Run(t *testing.T) {
	out, res, err := convert(t, loadFixture(t, "aggregate.xml"), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)

	want := "orgainzation, " + "             Begin, " + "               End, " +
		"domain, adkim, aspf, p, pct, source_ip, count, envelope_to, header_from, " +
		"AR dkim dom, AR dkim res, AR spf domain, AR spf res, \n" +
		"google.com, 1970-01-01T00:00:00, 1970-01-01T23:59:59, example.com, r, r, none, 100, " +
		"10.0.0.1, 3, None, example.com, example.com, pass, example.com, pass, \n" +
		"google.com, 1970-01-01T00:00:00, 1970-01-01T23:59:59, example.com, r, r, none, 100, " +
		"192.0.2.17, 1, example.org, example.com, None, None, bounce.example.org, softfail, \n"
	assert.Equal(t, want, out)
}

func TestConverter_LineShape(t *testing.T) {
	doc := loadFixture(t, "aggregate.xml")
	for verbosity := 0; verbosity <= 3; verbosity++ {
		out, res, err := convert(t, doc, verbosity)
		require.NoError(t, err)

		want := len(report.DefaultSchema().Visible(verbosity))
		assert.Len(t, res.Columns, want)

		got := lines(out)
		require.Len(t, got, 1+res.Rows, "one header plus one line per record")
		for _, line := range got {
			assert.True(t, strings.HasSuffix(line, report.Separator), "every field is followed by the separator")
			assert.Len(t, fields(line), want, "verbosity %d: %q", verbosity, line)
		}
	}
}

func TestConverter_Deterministic(t *testing.T) {
	doc := loadFixture(t, "aggregate.xml")
	first, _, err := convert(t, doc, 2)
	require.NoError(t, err)
	second, _, err := convert(t, doc, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestConverter_MinimalReport(t *testing.T) {
	doc := `<feedback>
  <report_metadata><report_id>RPT1</report_id><date_range><begin>0</begin><end>0</end></date_range></report_metadata>
  <policy_published><domain>example.com</domain></policy_published>
  <record><row><source_ip>10.0.0.1</source_ip><count>3</count></row></record>
</feedback>`
	out, res, err := convert(t, doc, 0)
	require.NoError(t, err)
	require.Equal(t, 1, res.Rows)

	got := lines(out)
	require.Len(t, got, 2)
	header, data := fields(got[0]), fields(got[1])
	assert.NotContains(t, header, "          email")
	assert.NotContains(t, header, "AR dkim hum")
	assert.Contains(t, data, "example.com")
	assert.Contains(t, data, "10.0.0.1")
	assert.Contains(t, data, "3")
	assert.NotContains(t, data, "RPT1", "report_id is a verbosity 2 column")
}

func TestConverter_MissingRecordFieldContinues(t *testing.T) {
	doc := `<feedback>
  <report_metadata><date_range><begin>0</begin><end>0</end></date_range></report_metadata>
  <policy_published><domain>example.com</domain></policy_published>
  <record><row><count>3</count></row></record>
  <record><row><source_ip>10.0.0.2</source_ip><count>4</count></row></record>
</feedback>`
	out, res, err := convert(t, doc, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)

	got := lines(out)
	require.Len(t, got, 3)
	sourceIP := 8
	assert.Equal(t, "source_ip", fields(got[0])[sourceIP])
	assert.Equal(t, report.DefaultPlaceholder, fields(got[1])[sourceIP])
	assert.Equal(t, "10.0.0.2", fields(got[2])[sourceIP])
}

func TestConverter_PartialOutputOnDateFailure(t *testing.T) {
	doc := `<feedback>
  <report_metadata><date_range><begin>0</begin><end>0</end></date_range></report_metadata>
  <policy_published><domain>example.com</domain></policy_published>
  <record><row><source_ip>10.0.0.1</source_ip></row></record>
  <report_metadata><date_range><begin>soon</begin><end>0</end></date_range></report_metadata>
  <record><row><source_ip>10.0.0.2</source_ip></row></record>
</feedback>`
	out, res, err := convert(t, doc, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, report.ErrInvalidDate)
	assert.Equal(t, 1, res.Rows)
	assert.Len(t, lines(out), 2, "lines before the failure are kept")
}

func TestConverter_EmptyReport(t *testing.T) {
	out, res, err := convert(t, `<feedback><report_metadata><date_range><begin>0</begin><end>0</end></date_range></report_metadata></feedback>`, 0)
	require.NoError(t, err)
	assert.Zero(t, res.Rows)
	assert.Empty(t, out)
}

func TestConverter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := report.NewConverter(report.DefaultOptions()).Run(ctx, strings.NewReader(loadFixture(t, "aggregate.xml")), &out)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewConverter_DefaultsSchema(t *testing.T) {
	var out bytes.Buffer
	res, err := report.NewConverter(report.Options{Location: time.UTC}).Run(context.Background(), strings.NewReader(loadFixture(t, "aggregate.xml")), &out)
	require.NoError(t, err)
	assert.Len(t, res.Columns, len(report.DefaultSchema().Visible(0)))
}

func TestConverter_LogsRecordCount(t *testing.T) {
	var logs bytes.Buffer
	opts := report.DefaultOptions()
	opts.Location = time.UTC
	opts.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	var out bytes.Buffer
	res, err := report.NewConverter(opts).Run(context.Background(), strings.NewReader(loadFixture(t, "aggregate.xml")), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.Contains(t, logs.String(), `msg="report converted" records=2`)
}
