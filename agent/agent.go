// Package agent runs a tool calling loop against a chat model.
package agent

import (
	"context"

	"github.com/ryanreadbooks/zaikit/component/tool"
	"github.com/ryanreadbooks/zaikit/llm"
	"github.com/ryanreadbooks/zaikit/llm/schema"
)

const (
	DefaultMaxIterations = 5
)

type AgentConfig struct {
	// The model to use.
	Model string

	// Rounds of model calls allowed per run, DefaultMaxIterations when zero.
	MaxIterations int

	MaxTokens int64
	Thinking  *schema.Thinking

	// Stream model output; content and reasoning reach subscribers as it
	// arrives.
	Stream     bool
	ToolStream bool
}

type ToolEvent struct {
	Iteration int
	Id        string
	Name      string
	Arguments string
	// empty before the tool has run
	Result string
}

type Agent struct {
	c AgentConfig
	// The LLM service to use.
	llm   llm.LLM
	tools *tool.Registry

	toolCallingSubscribers []func(ToolEvent)
	reasoningSubscribers   []func(string)
	contentSubscribers     []func(string)
	iterationSubscribers   []func(int)
}

func NewAgent(llm llm.LLM, tools *tool.Registry, c AgentConfig) *Agent {
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if tools == nil {
		tools = tool.NewRegistry()
	}

	return &Agent{
		c:     c,
		llm:   llm,
		tools: tools,
	}
}

func (a *Agent) Tools() *tool.Registry { return a.tools }

// SubscribeToolCalling is notified before and after each tool call.
func (a *Agent) SubscribeToolCalling(fn func(ToolEvent)) {
	a.toolCallingSubscribers = append(a.toolCallingSubscribers, fn)
}

func (a *Agent) SubscribeReasoning(fn func(string)) {
	a.reasoningSubscribers = append(a.reasoningSubscribers, fn)
}

func (a *Agent) SubscribeContent(fn func(string)) {
	a.contentSubscribers = append(a.contentSubscribers, fn)
}

func (a *Agent) SubscribeIteration(fn func(int)) {
	a.iterationSubscribers = append(a.iterationSubscribers, fn)
}

type RunResult struct {
	Content          string
	ReasoningContent string
	Iterations       int
	ToolCalls        int
	Usage            schema.CompletionUsage

	// the loop ended without a final answer
	MaxIterationsReached bool
}

// Ask runs a fresh conversation holding a single user query.
func (a *Agent) Ask(ctx context.Context, query string) (*RunResult, error) {
	conv := NewConversation("")
	conv.AppendUserMessage(query)
	return a.Run(ctx, conv)
}
