// Package mcpserver exposes the agent tools to MCP clients over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/ryanreadbooks/zaikit/agent/tools"
	"github.com/ryanreadbooks/zaikit/cmd/app"
	"github.com/ryanreadbooks/zaikit/component/tool"
	"github.com/ryanreadbooks/zaikit/search"
	"github.com/ryanreadbooks/zaikit/zai"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

const (
	serverName    = "zaikit"
	serverVersion = "0.1.0"
)

var MCPCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the agent tools over MCP stdio.",
	Long: "Serve the agent tools (calculate, get_current_datetime, get_weather, search_web, convert_units) " +
		"over MCP stdio. search_web needs an api key; the other tools work without one.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := NewServer(tools.Agent(newSearcher()))
		slog.Info("[mcp] serving on stdio")
		return server.NewStdioServer(s).Listen(cmd.Context(), os.Stdin, os.Stdout)
	},
}

func newSearcher() search.Searcher {
	cfg := app.Config()
	platform, err := zai.New(zai.Config{
		ApiKey:        cfg.API.ApiKey,
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.API.Timeout,
		WebSearchPath: cfg.Endpoints.WebSearch,
	})
	if err != nil {
		slog.Warn("[mcp] search_web disabled", "error", err)
		return nil
	}

	s, err := search.New(search.Backend(cfg.Search.Backend), platform, cfg.Search.Engine, cfg.Search.BraveApiKey)
	if err != nil {
		slog.Warn("[mcp] search_web disabled", "error", err)
		return nil
	}
	return s
}

// NewServer registers every tool of reg on a new MCP server.
func NewServer(reg *tool.Registry) *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false))
	for _, info := range reg.Infos() {
		s.AddTool(mcpTool(info), handler(reg, info.Name))
	}
	return s
}

func mcpTool(info tool.Info) mcp.Tool {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	if info.Schema != nil {
		params = info.Schema.Map()
	}
	raw, err := json.Marshal(params)
	if err != nil {
		raw = []byte(`{"type":"object"}`)
	}
	return mcp.NewToolWithRawSchema(info.Name, info.Description, raw)
}

// handler runs the named tool. Tool failures become error results the
// client can show; only cancellation is returned as an error.
func handler(reg *tool.Registry, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		arguments := req.GetArguments()
		if arguments == nil {
			arguments = map[string]any{}
		}
		args, err := json.Marshal(arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("bad arguments: %v", err)), nil
		}

		out, err := reg.Invoke(ctx, name, string(args))
		if err != nil {
			return nil, err
		}

		res, err := tool.ParseResult(out)
		if err != nil {
			return mcp.NewToolResultText(out), nil
		}
		if res.Err != "" {
			return mcp.NewToolResultError(res.Err), nil
		}
		return mcp.NewToolResultText(res.Data), nil
	}
}
