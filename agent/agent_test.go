package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ryanreadbooks/zaikit/agent/tools"
	"github.com/ryanreadbooks/zaikit/component/tool"
	"github.com/ryanreadbooks/zaikit/llm/schema"
)

// scriptedLLM replays one response per call and records requests.
type scriptedLLM struct {
	responses []*schema.Response
	chunks    [][]*schema.StreamResponseChunk
	requests  []*schema.Request
	err       error
}

func (s *scriptedLLM) ChatCompletion(_ context.Context, req *schema.Request) (*schema.Response, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	i := len(s.requests) - 1
	return s.responses[min(i, len(s.responses)-1)], nil
}

func (s *scriptedLLM) ChatCompletionStream(_ context.Context, req *schema.Request) <-chan *schema.StreamResponseChunk {
	s.requests = append(s.requests, req)
	i := len(s.requests) - 1
	ch := make(chan *schema.StreamResponseChunk, len(s.chunks[i]))
	for _, c := range s.chunks[i] {
		ch <- c
	}
	close(ch)
	return ch
}

func toolCallResponse(calls ...schema.CompletionToolCall) *schema.Response {
	return &schema.Response{
		Choices: []schema.Choice{{
			FinishReason: schema.FinishReasonToolCalls,
			Message:      schema.CompletionMessage{Role: schema.RoleAssistant, ToolCalls: calls},
		}},
		Usage: schema.CompletionUsage{TotalTokens: 10},
	}
}

func answer(content string) *schema.Response {
	return &schema.Response{
		Choices: []schema.Choice{{
			FinishReason: schema.FinishReasonStop,
			Message:      schema.CompletionMessage{Role: schema.RoleAssistant, Content: content},
		}},
		Usage: schema.CompletionUsage{TotalTokens: 5},
	}
}

func call(id, name, args string) schema.CompletionToolCall {
	return schema.CompletionToolCall{
		Id:       id,
		Type:     schema.ToolCallTypeFunction,
		Function: schema.CompletionToolCallFunction{Name: name, Arguments: args},
	}
}

func TestRunWithToolCalls(t *testing.T) {
	llm := &scriptedLLM{responses: []*schema.Response{
		toolCallResponse(
			call("c1", "get_weather", `{"location":"Tokyo"}`),
			call("c2", "convert_units", `{"value":25,"from_unit":"celsius","to_unit":"fahrenheit"}`),
		),
		answer("It is 77F in Tokyo."),
	}}

	a := NewAgent(llm, tools.Agent(nil), AgentConfig{Model: "glm-4.7"})
	var events []ToolEvent
	a.SubscribeToolCalling(func(ev ToolEvent) { events = append(events, ev) })

	conv := NewConversation("")
	conv.AppendUserMessage("weather in tokyo in fahrenheit?")
	res, err := a.Run(t.Context(), conv)
	if err != nil {
		t.Fatal(err)
	}

	if res.Content != "It is 77F in Tokyo." || res.Iterations != 2 || res.ToolCalls != 2 || res.MaxIterationsReached {
		t.Fatalf("res = %+v", res)
	}
	if res.Usage.TotalTokens != 15 {
		t.Errorf("usage = %+v", res.Usage)
	}
	// before and after each call
	if len(events) != 4 || events[1].Result == "" || events[0].Result != "" {
		t.Errorf("events = %+v", events)
	}

	// user, assistant(tool calls), tool, tool, assistant
	msgs := conv.Messages()
	if len(msgs) != 5 || msgs[2].Role() != schema.RoleTool || msgs[2].Tool.ToolCallId != "c1" {
		t.Fatalf("messages = %+v", msgs)
	}

	second := llm.requests[1]
	if len(second.Tools) != 5 || second.ToolChoice == nil || second.ToolChoice.Mode != schema.ToolChoiceAuto {
		t.Errorf("second request tools = %d choice = %+v", len(second.Tools), second.ToolChoice)
	}
}

func TestRunMalformedArgumentsReported(t *testing.T) {
	llm := &scriptedLLM{responses: []*schema.Response{
		toolCallResponse(call("c1", "calculate", `{"expression":`)),
		answer("sorry"),
	}}

	conv := NewConversation("")
	conv.AppendUserMessage("calc")
	if _, err := NewAgent(llm, tools.Agent(nil), AgentConfig{}).Run(t.Context(), conv); err != nil {
		t.Fatal(err)
	}

	toolMsg := conv.Messages()[2].Tool
	res, err := tool.ParseResult(toolMsg.Content)
	if err != nil {
		t.Fatal(err)
	}
	if res.Success || !strings.Contains(res.Err, "malformed") {
		t.Errorf("tool result = %+v", res)
	}
}

func TestRunMaxIterations(t *testing.T) {
	llm := &scriptedLLM{responses: []*schema.Response{
		toolCallResponse(call("c", "get_current_datetime", `{}`)),
	}}

	res, err := NewAgent(llm, tools.Agent(nil), AgentConfig{}).Ask(t.Context(), "loop forever")
	if err != nil {
		t.Fatal(err)
	}
	if !res.MaxIterationsReached || res.Iterations != DefaultMaxIterations || len(llm.requests) != DefaultMaxIterations {
		t.Fatalf("res = %+v, requests = %d", res, len(llm.requests))
	}
}

func TestRunModelError(t *testing.T) {
	errDown := errors.New("down")
	_, err := NewAgent(&scriptedLLM{err: errDown}, nil, AgentConfig{}).Ask(t.Context(), "hi")
	if !errors.Is(err, errDown) {
		t.Fatalf("got %v", err)
	}
}

func TestRunStream(t *testing.T) {
	idx := func(i int64) *schema.StreamResponseChunk {
		return &schema.StreamResponseChunk{Choices: []schema.StreamChoice{{Delta: schema.Fragment{
			ToolCalls: []schema.ToolCallDelta{{Index: i, Id: "c1", Name: "calculate", Arguments: `{"expression":"6*7"}`}},
		}}}}
	}
	text := func(s string, finish schema.FinishReason) *schema.StreamResponseChunk {
		return &schema.StreamResponseChunk{Choices: []schema.StreamChoice{{FinishReason: finish, Delta: schema.Fragment{Content: schema.String(s)}}}}
	}

	llm := &scriptedLLM{chunks: [][]*schema.StreamResponseChunk{
		{idx(0), {Choices: []schema.StreamChoice{{FinishReason: schema.FinishReasonToolCalls}}}},
		{text("4", ""), text("2", schema.FinishReasonStop)},
	}}

	a := NewAgent(llm, tools.Agent(nil), AgentConfig{Stream: true, ToolStream: true})
	var streamed strings.Builder
	a.SubscribeContent(func(s string) { streamed.WriteString(s) })

	res, err := a.Ask(t.Context(), "6*7?")
	if err != nil {
		t.Fatal(err)
	}
	if res.Content != "42" || streamed.String() != "42" || res.ToolCalls != 1 {
		t.Fatalf("res = %+v streamed = %q", res, streamed.String())
	}
	if !llm.requests[0].ToolStream {
		t.Error("want tool_stream on streaming requests with tools")
	}
}

func TestConversationClear(t *testing.T) {
	conv := NewConversation("be brief")
	conv.AppendUserMessage("a")
	conv.AppendAssistantMessage(&schema.CompletionMessage{Content: "b"})
	if conv.Turns() != 1 || conv.Len() != 3 {
		t.Fatalf("turns=%d len=%d", conv.Turns(), conv.Len())
	}
	conv.Clear()
	if conv.Len() != 1 || conv.Messages()[0].Role() != schema.RoleSystem {
		t.Fatalf("after clear = %+v", conv.Messages())
	}
}

func TestContextTokens(t *testing.T) {
	a := NewAgent(&scriptedLLM{}, tools.Agent(nil), AgentConfig{})
	conv := NewConversation("system")
	before := a.ContextTokens(conv)
	conv.AppendUserMessage(strings.Repeat("word ", 100))
	if after := a.ContextTokens(conv); after <= before || before == 0 {
		t.Errorf("before=%d after=%d", before, after)
	}
}
