package anthropic

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ryanreadbooks/zaikit/llm/schema"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) *Anthropic {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		handler(w, body)
	}))
	t.Cleanup(srv.Close)

	a, err := New(Config{ApiKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestChatCompletion(t *testing.T) {
	a := newTestServer(t, func(w http.ResponseWriter, body map[string]any) {
		system, _ := body["system"].([]any)
		if len(system) != 1 {
			t.Errorf("system = %v", body["system"])
		}
		msgs, _ := body["messages"].([]any)
		if len(msgs) != 3 {
			t.Errorf("want user, assistant, merged tool results; got %d messages", len(msgs))
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "glm-4.7",
			"stop_reason": "tool_use",
			"content": [
				{"type": "thinking", "thinking": "need weather", "signature": ""},
				{"type": "text", "text": "checking"},
				{"type": "tool_use", "id": "toolu_1", "name": "get_weather", "input": {"location": "Paris"}}
			],
			"usage": {"input_tokens": 12, "output_tokens": 8}
		}`)
	})

	req := schema.NewRequest("glm-4.7", []schema.MessageParam{
		schema.NewSystemMessageParam("be brief"),
		schema.NewUserMessageParam("weather in paris and london"),
		schema.NewAssistantMessageParam("", []schema.CompletionToolCall{
			{Id: "a", Type: schema.ToolCallTypeFunction, Function: schema.CompletionToolCallFunction{Name: "get_weather", Arguments: `{"location":"Paris"}`}},
			{Id: "b", Type: schema.ToolCallTypeFunction, Function: schema.CompletionToolCallFunction{Name: "get_weather", Arguments: `{"location":"London"}`}},
		}, ""),
		schema.NewToolMessageParam("a", "sunny"),
		schema.NewToolMessageParam("b", "rainy"),
	})

	resp, err := a.ChatCompletion(t.Context(), req)
	if err != nil {
		t.Fatal(err)
	}

	choice := resp.FirstChoice()
	if !choice.FinishReason.IsToolCalls() {
		t.Errorf("finish reason = %s", choice.FinishReason)
	}
	if choice.Message.Content != "checking" || choice.Message.ReasoningContent != "need weather" {
		t.Errorf("message = %+v", choice.Message)
	}
	if len(choice.Message.ToolCalls) != 1 || choice.Message.ToolCalls[0].Function.Name != "get_weather" {
		t.Fatalf("tool calls = %+v", choice.Message.ToolCalls)
	}
	if resp.Usage.TotalTokens != 20 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func sse(event, data string) string {
	return "event: " + event + "\ndata: " + data + "\n\n"
}

func TestChatCompletionStream(t *testing.T) {
	a := newTestServer(t, func(w http.ResponseWriter, body map[string]any) {
		if body["stream"] != true {
			t.Errorf("stream = %v", body["stream"])
		}

		w.Header().Set("Content-Type", "text/event-stream")
		var sb strings.Builder
		sb.WriteString(sse("message_start", `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","model":"glm-4.7","content":[],"usage":{"input_tokens":5,"output_tokens":0}}}`))
		sb.WriteString(sse("content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`))
		sb.WriteString(sse("content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Let me "}}`))
		sb.WriteString(sse("content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"check."}}`))
		sb.WriteString(sse("content_block_stop", `{"type":"content_block_stop","index":0}`))
		sb.WriteString(sse("content_block_start", `{"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"toolu_1","name":"calculate","input":{}}}`))
		sb.WriteString(sse("content_block_delta", `{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"expression\":"}}`))
		sb.WriteString(sse("content_block_delta", `{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"\"6*7\"}"}}`))
		sb.WriteString(sse("content_block_stop", `{"type":"content_block_stop","index":1}`))
		sb.WriteString(sse("message_delta", `{"type":"message_delta","delta":{"stop_reason":"tool_use"},"usage":{"output_tokens":9}}`))
		sb.WriteString(sse("message_stop", `{"type":"message_stop"}`))
		fmt.Fprint(w, sb.String())
	})

	req := schema.NewRequest("glm-4.7", []schema.MessageParam{schema.NewUserMessageParam("6*7?")})
	got, err := schema.ReadStream(a.ChatCompletionStream(t.Context(), req), nil)
	if err != nil {
		t.Fatal(err)
	}

	if got.Content != "Let me check." {
		t.Errorf("content = %q", got.Content)
	}
	call, ok := got.ToolCalls.Get(0)
	if !ok || call.Id != "toolu_1" || call.Arguments != `{"expression":"6*7"}` {
		t.Fatalf("tool call = %+v", call)
	}
	if !got.FinishReason.IsToolCalls() {
		t.Errorf("finish reason = %s", got.FinishReason)
	}
	if got.Usage.TotalTokens != 14 {
		t.Errorf("usage = %+v", got.Usage)
	}
}

func TestRequiredOf(t *testing.T) {
	if got := requiredOf(map[string]any{"required": []any{"a", 1, "b"}}); len(got) != 2 {
		t.Errorf("got %v", got)
	}
	if got := requiredOf(map[string]any{"required": []string{"x"}}); len(got) != 1 {
		t.Errorf("got %v", got)
	}
	if got := requiredOf(nil); got != nil {
		t.Errorf("got %v", got)
	}
}
