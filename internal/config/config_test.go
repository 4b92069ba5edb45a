// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarctools/dmarc-parser/internal/config"
	"github.com/dmarctools/dmarc-parser/internal/report"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantErr     bool
		errContains string
		validate    func(t *testing.T, cfg *config.Config)
	}{
		{
			name:  "empty file keeps defaults",
			input: "\n",
			validate: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, config.Default(), cfg)
			},
		},
		{
			name:  "scalar settings",
			input: "verbosity: 1\nplaceholder: \"-\"\nstrict: true\nlenient_dates: true\ntimezone: UTC\nlog_level: debug\n",
			validate: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 1, cfg.Verbosity)
				require.NotNil(t, cfg.Placeholder)
				assert.Equal(t, "-", *cfg.Placeholder)
				assert.True(t, cfg.Strict)
				assert.True(t, cfg.LenientDates)
				assert.Equal(t, "UTC", cfg.Timezone)
				assert.Equal(t, "debug", cfg.LogLevel)
			},
		},
		{
			name: "schema family override",
			input: `schema:
  policy:
    - path: domain
      name: domain
    - path: sp
      name: sp
      verbosity: 1
`,
			validate: func(t *testing.T, cfg *config.Config) {
				require.Len(t, cfg.Schema.Policy, 2)
				assert.Equal(t, report.Field{Path: "sp", Name: "sp", Verbosity: 1}, cfg.Schema.Policy[1])
				assert.Empty(t, cfg.Schema.Record)
			},
		},
		{
			name:        "negative verbosity is rejected",
			input:       "verbosity: -1\n",
			wantErr:     true,
			errContains: "invalid config",
		},
		{
			name:        "unknown key is rejected",
			input:       "verbose: 2\n",
			wantErr:     true,
			errContains: "invalid config",
		},
		{
			name:        "field without path is rejected",
			input:       "schema:\n  record:\n    - name: source_ip\n",
			wantErr:     true,
			errContains: "invalid config",
		},
		{
			name:        "unknown log level is rejected",
			input:       "log_level: loud\n",
			wantErr:     true,
			errContains: "invalid config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Parse([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dmarc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("verbosity: 2\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Verbosity)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestConfig_Options(t *testing.T) {
	empty := ""
	cfg := &config.Config{
		Verbosity:   1,
		Placeholder: &empty,
		Timezone:    "UTC",
		Schema:      report.Schema{Record: []report.Field{{Path: "row/source_ip", Name: "ip"}}},
	}
	opts, err := cfg.Options(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, opts.Verbosity)
	assert.Equal(t, "", opts.Placeholder)
	assert.Equal(t, time.UTC, opts.Location)
	assert.Equal(t, cfg.Schema.Record, opts.Schema.Record)
	assert.Equal(t, report.DefaultSchema().Metadata, opts.Schema.Metadata)

	opts, err = config.Default().Options(nil)
	require.NoError(t, err)
	assert.Equal(t, report.DefaultPlaceholder, opts.Placeholder)
	assert.Equal(t, time.Local, opts.Location)
}

func TestConfig_BadTimezone(t *testing.T) {
	_, err := (&config.Config{Timezone: "Mars/Olympus"}).Options(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timezone")
}
