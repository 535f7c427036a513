package tool

import (
	"context"
	"encoding/json"

	llmschema "github.com/ryanreadbooks/zaikit/llm/schema"
	"github.com/ryanreadbooks/zaikit/pkg/schema"
)

type Info struct {
	Name        string
	Description string
	Schema      *schema.Schema
}

// Param renders the tool as a function tool for chat requests.
func (i Info) Param() llmschema.ToolParam {
	var sch schema.Schema
	if i.Schema != nil {
		sch = *i.Schema
	}
	return llmschema.NewToolParamWithSchema(i.Name, i.Description, sch)
}

// Invoker is the interface for all tools.
type Invoker interface {
	// Info returns the information about the tool.
	Info() Info

	// Invoke executes the tool with the given arguments and returns the
	// result as an InvokeResult json string.
	//
	// The arguments is the JSON-encoded string of the arguments. Bad
	// arguments and tool failures are reported inside the result; the
	// returned error is reserved for cancellation.
	Invoke(ctx context.Context, arguments string) (string, error)
}

type InvokeResult struct {
	Success bool   `json:"success"`
	Data    string `json:"data,omitempty"`
	Err     string `json:"err,omitempty"`
}

func (r *InvokeResult) Json() string {
	o, _ := json.Marshal(r)
	return string(o)
}

// ParseResult decodes the output of Invoke.
func ParseResult(s string) (InvokeResult, error) {
	var r InvokeResult
	err := json.Unmarshal([]byte(s), &r)
	return r, err
}

func errorResult(msg string) string {
	return (&InvokeResult{Err: msg}).Json()
}
