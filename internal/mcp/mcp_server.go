// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/solaredge/internal/api"
	"github.com/huangsam/solaredge/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the SolarEdge MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client *api.Client, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"SolarEdge Monitoring Server",
		version,
		server.WithLogging(),
	)

	h := newToolHandler(baseCfg, client)
	for _, tool := range h.tools() {
		s.AddTool(tool.definition, tool.handler)
	}
	return s
}

// StartMCPServer starts the SolarEdge MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, client *api.Client, version string) error {
	s := NewMCPServer(baseCfg, client, version)
	return server.ServeStdio(s)
}

// siteOption is shared by every site-scoped tool.
func siteOption() mcp.ToolOption {
	return mcp.WithString("site_id", mcp.Description("Site identifier. Falls back to the configured site. Several IDs may be comma separated where the endpoint supports bulk mode."))
}

func dateOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("start_date", mcp.Description("Start date (YYYY-MM-DD). Defaults to 7 days before end_date.")),
		mcp.WithString("end_date", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
	}
}

func timeOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("start_time", mcp.Description("Start time (YYYY-MM-DD hh:mm:ss). Defaults to 7 days before end_time.")),
		mcp.WithString("end_time", mcp.Description("End time (YYYY-MM-DD hh:mm:ss). Defaults to now.")),
	}
}

func timeUnitOption() mcp.ToolOption {
	return mcp.WithString("time_unit", mcp.Description("Aggregation granularity. Defaults to DAY."),
		mcp.Enum("QUARTER_OF_AN_HOUR", "HOUR", "DAY", "WEEK", "MONTH", "YEAR"))
}

func metersOption() mcp.ToolOption {
	return mcp.WithString("meters", mcp.Description("Comma separated meters: Production, Consumption, SelfConsumption, FeedIn, Purchased."))
}

func listOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("size", mcp.Description("Maximum number of results (up to 100).")),
		mcp.WithNumber("start_index", mcp.Description("Index of the first result.")),
		mcp.WithString("search_text", mcp.Description("Free text filter.")),
		mcp.WithString("sort_property", mcp.Description("Property to sort by.")),
		mcp.WithString("sort_order", mcp.Description("Sort order."), mcp.Enum("ASC", "DESC")),
	}
}

func newTool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	return mcp.NewTool(name, append([]mcp.ToolOption{mcp.WithDescription(description)}, opts...)...)
}

func with(base []mcp.ToolOption, extra ...mcp.ToolOption) []mcp.ToolOption {
	out := make([]mcp.ToolOption, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}
