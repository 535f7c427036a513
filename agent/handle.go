package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ryanreadbooks/zaikit/llm/schema"
	"github.com/ryanreadbooks/zaikit/trace"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func (a *Agent) buildLLMMessageRequest(conv *Conversation) *schema.Request {
	req := schema.NewRequest(a.c.Model, conv.Messages())
	if a.c.MaxTokens > 0 {
		req.MaxTokens = a.c.MaxTokens
	}
	req.Thinking = a.c.Thinking
	req.Tools = a.tools.Params()
	if len(req.Tools) > 0 {
		req.ToolChoice = schema.AutoToolChoice()
		req.ToolStream = a.c.Stream && a.c.ToolStream
	}
	return req
}

// Run loops model call then tool calls until the model answers without
// tool calls or the iteration limit is hit. Every message is appended to
// conv, so a caller can keep the conversation going.
func (a *Agent) Run(ctx context.Context, conv *Conversation) (*RunResult, error) {
	ctx, span := trace.Tracer().Start(ctx, "agent.run",
		oteltrace.WithAttributes(
			attribute.String("gen_ai.request.model", a.c.Model),
			attribute.Int("agent.max_iterations", a.c.MaxIterations),
		),
	)
	defer span.End()

	res, err := a.loop(ctx, conv)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}

	span.SetAttributes(
		attribute.Int("agent.iterations", res.Iterations),
		attribute.Int("agent.tool_calls", res.ToolCalls),
	)
	return res, nil
}

func (a *Agent) loop(ctx context.Context, conv *Conversation) (*RunResult, error) {
	res := &RunResult{}
	for curIter := 1; curIter <= a.c.MaxIterations; curIter++ {
		res.Iterations = curIter
		for _, fn := range a.iterationSubscribers {
			fn(curIter)
		}

		msg, usage, err := a.callModel(ctx, conv, curIter)
		if err != nil {
			return res, fmt.Errorf("iteration %d: %w", curIter, err)
		}
		res.Usage.PromptTokens += usage.PromptTokens
		res.Usage.CompletionTokens += usage.CompletionTokens
		res.Usage.TotalTokens += usage.TotalTokens

		conv.AppendAssistantMessage(msg)
		res.Content = msg.Content
		res.ReasoningContent = msg.ReasoningContent

		if !msg.HasToolCalls() {
			return res, nil
		}

		slog.Debug("[agent] tool calls", "iteration", curIter, "count", len(msg.ToolCalls))
		for i := range msg.ToolCalls {
			tc := &msg.ToolCalls[i]
			result, err := a.handleToolCall(ctx, curIter, tc)
			if err != nil {
				return res, err
			}
			conv.AppendToolResult(tc, result)
			res.ToolCalls++
		}
	}

	res.MaxIterationsReached = true
	return res, nil
}

func (a *Agent) callModel(ctx context.Context, conv *Conversation, iteration int) (*schema.CompletionMessage, schema.CompletionUsage, error) {
	ctx, span := trace.Tracer().Start(ctx, "agent.llm",
		oteltrace.WithAttributes(attribute.Int("llm.iteration", iteration)),
	)
	defer span.End()

	req := a.buildLLMMessageRequest(conv)

	if !a.c.Stream {
		resp, err := a.llm.ChatCompletion(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, schema.CompletionUsage{}, err
		}
		choice := resp.FirstChoice()
		a.publish(choice.Message.ReasoningContent, choice.Message.Content)
		return &choice.Message, resp.Usage, nil
	}

	assembled, err := schema.ReadStream(a.llm.ChatCompletionStream(ctx, req), func(f schema.Fragment) {
		a.publish(f.ReasoningText(), f.ContentText())
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, schema.CompletionUsage{}, err
	}
	msg := assembled.Message()
	return &msg, assembled.Usage, nil
}

func (a *Agent) publish(reasoning, content string) {
	if reasoning != "" {
		for _, fn := range a.reasoningSubscribers {
			fn(reasoning)
		}
	}
	if content != "" {
		for _, fn := range a.contentSubscribers {
			fn(content)
		}
	}
}

func (a *Agent) handleToolCall(ctx context.Context, iteration int, tc *schema.CompletionToolCall) (string, error) {
	ctx, span := trace.Tracer().Start(ctx, tc.Function.Name,
		oteltrace.WithAttributes(
			attribute.String("gen_ai.tool.name", tc.Function.Name),
			attribute.String("gen_ai.tool.call.id", tc.Id),
			attribute.String("gen_ai.tool.input", tc.Function.Arguments),
		),
	)
	defer span.End()

	ev := ToolEvent{
		Iteration: iteration,
		Id:        tc.Id,
		Name:      tc.Function.Name,
		Arguments: tc.Function.Arguments,
	}
	for _, fn := range a.toolCallingSubscribers {
		fn(ev)
	}

	result, err := a.tools.Invoke(ctx, tc.Function.Name, tc.Function.Arguments)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("gen_ai.tool.output_length", len(result)))

	ev.Result = result
	for _, fn := range a.toolCallingSubscribers {
		fn(ev)
	}

	return result, nil
}
