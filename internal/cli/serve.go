// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/dmarctools/dmarc-parser/internal/tool"
)

func newServeCommand(version string, o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion as an MCP tool over stdio.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.loadConfig(cmd)
			if err != nil {
				return err
			}
			log := o.newLogger(cmd, cfg)
			log.Info("serving MCP over stdio", "version", version, "tool", tool.MetadataConvertAggregateReport.Name)

			err = tool.NewServer(version, cfg).Run(cmd.Context(), &mcp.StdioTransport{})
			if err != nil && cmd.Context().Err() == nil {
				return err
			}
			return nil
		},
	}
}
