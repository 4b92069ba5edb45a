// SPDX-License-Identifier: Apache-2.0

// Package tool exposes report conversion as MCP tools.
package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dmarctools/dmarc-parser/internal/config"
)

// NewServer returns an MCP server with every tool registered. Tool calls start
// from cfg; a nil cfg means the defaults.
func NewServer(version string, cfg *config.Config) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "dmarc-parser", Version: version}, nil)
	c := NewConverter(cfg)
	mcp.AddTool(server, MetadataConvertAggregateReport, c.ConvertAggregateReport)
	return server
}
