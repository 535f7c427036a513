package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	llmschema "github.com/ryanreadbooks/zaikit/llm/schema"
	"github.com/ryanreadbooks/zaikit/pkg/schema"
)

// InvokerFunc is a tool body over typed arguments.
type InvokerFunc[T, O any] func(ctx context.Context, input T) (O, error)

type funcInvoker[T, O any] struct {
	info Info
	fn   InvokerFunc[T, O]
}

// NewInvoker wraps fn as a tool. When info carries no schema it is
// reflected from T.
func NewInvoker[T, O any](info Info, fn InvokerFunc[T, O]) Invoker {
	if info.Schema == nil {
		sch := schema.Get[T]()
		info.Schema = &sch
	}
	return &funcInvoker[T, O]{info: info, fn: fn}
}

func (f *funcInvoker[T, O]) Info() Info { return f.info }

func (f *funcInvoker[T, O]) Invoke(ctx context.Context, arguments string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var input T
	call := llmschema.AssembledToolCall{Name: f.info.Name, Arguments: arguments}
	if err := call.ParseArguments(&input); err != nil {
		slog.Debug("[tool] bad arguments", "tool", f.info.Name, "error", err)
		return errorResult(fmt.Sprintf("tool %s: %v", f.info.Name, err)), nil
	}

	output, err := f.fn(ctx, input)
	if err != nil {
		return errorResult(fmt.Sprintf("tool %s failed: %v", f.info.Name, err)), nil
	}

	data, err := encodeOutput(output)
	if err != nil {
		return errorResult(fmt.Sprintf("tool %s: encode output: %v", f.info.Name, err)), nil
	}
	return (&InvokeResult{Success: true, Data: data}).Json(), nil
}

// strings pass through, anything else is sent to the model as json
func encodeOutput(output any) (string, error) {
	if s, ok := output.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(output)
	return string(b), err
}
