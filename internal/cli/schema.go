// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/dmarctools/dmarc-parser/internal/report"
)

func newSchemaCommand(o *rootOptions) *cobra.Command {
	var visible int
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the active column table as YAML.",
		Long: `schema prints the column table after applying the configuration file.
With --visible N only the columns printed at verbosity N are listed, in output order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.loadConfig(cmd)
			if err != nil {
				return err
			}
			schema := report.DefaultSchema().Merge(cfg.Schema)

			var v any = schema
			if cmd.Flags().Changed("visible") {
				v = schema.Visible(visible)
			}
			out, err := yaml.Marshal(v)
			if err != nil {
				return fmt.Errorf("failed to marshal schema: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().IntVar(&visible, "visible", 0, "list only the columns shown at this verbosity")
	return cmd
}
