package tool

import (
	"context"
	"fmt"

	llmschema "github.com/ryanreadbooks/zaikit/llm/schema"
)

// Registry holds tools in registration order.
type Registry struct {
	order    []string
	invokers map[string]Invoker
}

func NewRegistry(invokers ...Invoker) *Registry {
	r := &Registry{invokers: make(map[string]Invoker, len(invokers))}
	for _, inv := range invokers {
		r.Register(inv)
	}
	return r
}

// Register adds inv, replacing a tool with the same name.
func (r *Registry) Register(inv Invoker) {
	name := inv.Info().Name
	if _, ok := r.invokers[name]; !ok {
		r.order = append(r.order, name)
	}
	r.invokers[name] = inv
}

func (r *Registry) Get(name string) (Invoker, bool) {
	inv, ok := r.invokers[name]
	return inv, ok
}

func (r *Registry) Infos() []Info {
	infos := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, r.invokers[name].Info())
	}
	return infos
}

func (r *Registry) Params() []llmschema.ToolParam {
	params := make([]llmschema.ToolParam, 0, len(r.order))
	for _, info := range r.Infos() {
		params = append(params, info.Param())
	}
	return params
}

// Invoke runs the named tool. Unknown tools produce an error result the
// model can read.
func (r *Registry) Invoke(ctx context.Context, name, arguments string) (string, error) {
	inv, ok := r.invokers[name]
	if !ok {
		return errorResult(fmt.Sprintf("unknown function: %s", name)), nil
	}
	return inv.Invoke(ctx, arguments)
}
