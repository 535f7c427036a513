package explorer

import (
	"cmp"
	"context"
	"fmt"
	"strconv"

	"github.com/ryanreadbooks/zaikit/agent"
	"github.com/ryanreadbooks/zaikit/agent/tools"
)

const defaultAgentQuery = "What's the weather in Tokyo, and if it's above 20 celsius, convert that to fahrenheit. Also, what day of the week is it?"

var complexAgentQueries = []string{
	"Calculate the area of a circle with radius 5, and tell me what time it is",
	"I'm planning a trip to Paris. What's the weather there? And how far is it from London in miles if it's 450km?",
	"What's 25% of 840, and is today a weekday or weekend?",
}

type AgentOptions struct {
	Query         string
	MaxIterations int

	// Complex runs a set of multi tool queries and summarises them.
	Complex bool
}

// AgentDemo runs the multi-function agent until it answers or runs out of
// iterations.
func AgentDemo(ctx context.Context, env *Env, opts AgentOptions) error {
	if env.LLM == nil {
		return ErrNoLLM
	}

	reg := tools.Agent(env.Searcher)
	a := agent.NewAgent(env.LLM, reg, agent.AgentConfig{
		Model:         env.Config.Models.LLM,
		MaxIterations: cmp.Or(opts.MaxIterations, agent.DefaultMaxIterations),
		MaxTokens:     env.Config.Defaults.MaxTokens,
	})
	watchAgent(env, a)

	env.Out.Section("Multi-Function Agent")
	env.Out.KV("Model", env.Config.Models.LLM)
	printTools(env, reg)

	queries := []string{cmp.Or(opts.Query, defaultAgentQuery)}
	if opts.Complex {
		queries = complexAgentQueries
	}

	rows := make([][]string, 0, len(queries))
	for _, q := range queries {
		env.Out.Text("")
		env.Out.KV("Query", q)

		conv := agent.NewConversation("")
		conv.AppendUserMessage(q)
		res, err := a.Run(ctx, conv)
		if err != nil {
			return fmt.Errorf("agent: %w", err)
		}
		if res.MaxIterationsReached {
			env.Out.Warn("Max iterations reached")
		} else {
			env.Out.Answer("Agent Response", res.Content)
		}
		env.Out.Muted(fmt.Sprintf("%d iterations, %d tool calls, ~%d context tokens",
			res.Iterations, res.ToolCalls, a.ContextTokens(conv)))
		env.usage(res.Usage)
		rows = append(rows, []string{truncate(q, 50), strconv.Itoa(res.Iterations), strconv.Itoa(res.ToolCalls)})
	}

	if len(queries) > 1 {
		env.Out.Text("")
		env.Out.Table([]string{"Query", "Iterations", "Tool Calls"}, rows)
	}
	return nil
}
