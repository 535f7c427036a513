package mcpserver

import (
	"strings"
	"testing"

	"github.com/ryanreadbooks/zaikit/agent/tools"

	"github.com/mark3labs/mcp-go/mcp"
)

func callTool(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := handler(tools.Agent(nil), name)(t.Context(), req)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("content = %d items", len(res.Content))
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T", res.Content[0])
	}
	return tc.Text
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		args    map[string]any
		isError bool
		want    string
	}{
		{name: "calculate", tool: "calculate", args: map[string]any{"expression": "(2 + 3) * 4"}, want: "20"},
		{name: "bad expression", tool: "calculate", args: map[string]any{"expression": "import os"}, isError: true, want: "invalid syntax"},
		{name: "convert", tool: "convert_units", args: map[string]any{"value": 10, "from_unit": "km", "to_unit": "miles"}, want: "6.21"},
		{name: "no arguments", tool: "get_current_datetime", want: "day_of_week"},
		{name: "unknown tool", tool: "launch_rocket", isError: true, want: "unknown function"},
		{name: "search without searcher", tool: "search_web", args: map[string]any{"query": "go"}, isError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, tt.tool, tt.args)
			if res.IsError != tt.isError {
				t.Fatalf("IsError = %v: %s", res.IsError, text(t, res))
			}
			if got := text(t, res); !strings.Contains(got, tt.want) {
				t.Errorf("text = %q, want %q inside", got, tt.want)
			}
		})
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	reg := tools.Agent(nil)
	s := NewServer(reg)
	if s == nil {
		t.Fatal("nil server")
	}

	for _, info := range reg.Infos() {
		tl := mcpTool(info)
		if tl.Name != info.Name || len(tl.RawInputSchema) == 0 {
			t.Errorf("tool %s = %+v", info.Name, tl)
		}
	}
}
