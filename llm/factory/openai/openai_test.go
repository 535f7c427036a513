package openai

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

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) *OpenAI {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
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

	o, err := New(Config{ApiKey: "test-key", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(Config{BaseURL: "http://x"}); err == nil {
		t.Error("want error without api key")
	}
	if _, err := New(Config{ApiKey: "k"}); err == nil {
		t.Error("want error without base url")
	}
}

func TestChatCompletion(t *testing.T) {
	o := newTestServer(t, func(w http.ResponseWriter, body map[string]any) {
		thinking, _ := body["thinking"].(map[string]any)
		if thinking["type"] != "enabled" {
			t.Errorf("thinking = %v", body["thinking"])
		}
		if body["response_format"] == nil {
			t.Error("response_format missing")
		}
		msgs, _ := body["messages"].([]any)
		if len(msgs) != 3 {
			t.Errorf("messages = %v", msgs)
		} else if assistant, _ := msgs[1].(map[string]any); assistant["reasoning_content"] != "earlier thought" {
			t.Errorf("reasoning_content not attached: %v", assistant)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "chat-1",
			"created": 1700000000,
			"model": "glm-4.7",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "{\"ok\":true}", "reasoning_content": "thinking..."}
			}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
			"web_search": [{"title": "Go", "link": "https://go.dev"}]
		}`)
	})

	req := schema.NewRequest("glm-4.7", []schema.MessageParam{
		schema.NewUserMessageParam("hi"),
		schema.NewAssistantMessageParam("hello", nil, "earlier thought"),
		schema.NewUserMessageParam("answer in json"),
	})
	req.Thinking = schema.EnableThinking()
	req.ResponseFormat = schema.ResponseFormatJSONObject

	resp, err := o.ChatCompletion(t.Context(), req)
	if err != nil {
		t.Fatal(err)
	}

	choice := resp.FirstChoice()
	if choice.Message.Content != `{"ok":true}` || choice.Message.ReasoningContent != "thinking..." {
		t.Fatalf("message = %+v", choice.Message)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if len(resp.WebSearch) != 1 || resp.WebSearch[0].Link != "https://go.dev" {
		t.Errorf("web search = %+v", resp.WebSearch)
	}
}

func TestChatCompletionWebSearchTool(t *testing.T) {
	o := newTestServer(t, func(w http.ResponseWriter, body map[string]any) {
		tools, _ := body["tools"].([]any)
		if len(tools) != 2 {
			t.Errorf("tools = %v", tools)
		} else if ws, _ := tools[1].(map[string]any); ws["type"] != "web_search" {
			t.Errorf("tool type = %v", ws["type"])
		}
		if body["tool_choice"] != "auto" {
			t.Errorf("tool_choice = %v", body["tool_choice"])
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"ok"}}]}`)
	})

	type args struct {
		Expression string `json:"expression"`
	}
	req := schema.NewRequest("glm-4.7", []schema.MessageParam{schema.NewUserMessageParam("news?")})
	req.Tools = []schema.ToolParam{
		schema.NewToolParam[args]("calculate", "evaluate"),
		schema.NewWebSearchToolParam("search-prime", 5),
	}
	req.ToolChoice = schema.AutoToolChoice()

	if _, err := o.ChatCompletion(t.Context(), req); err != nil {
		t.Fatal(err)
	}
}

func TestChatCompletionStream(t *testing.T) {
	events := []string{
		`{"id":"s","choices":[{"index":0,"delta":{"role":"assistant","reasoning_content":"hmm"}}]}`,
		`{"id":"s","choices":[{"index":0,"delta":{"content":"Hel"}}]}`,
		`{"id":"s","choices":[{"index":0,"delta":{"content":"lo"}}]}`,
		`{"id":"s","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"calculate","arguments":"{\"expression\":"}}]}}]}`,
		`{"id":"s","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"2+2\"}"}}]}}]}`,
		`{"id":"s","choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}],"usage":{"prompt_tokens":3,"completion_tokens":4,"total_tokens":7}}`,
	}

	o := newTestServer(t, func(w http.ResponseWriter, body map[string]any) {
		if body["stream"] != true {
			t.Errorf("stream = %v", body["stream"])
		}
		if body["tool_stream"] != true {
			t.Errorf("tool_stream = %v", body["tool_stream"])
		}

		w.Header().Set("Content-Type", "text/event-stream")
		var sb strings.Builder
		for _, e := range events {
			sb.WriteString("data: " + e + "\n\n")
		}
		sb.WriteString("data: [DONE]\n\n")
		fmt.Fprint(w, sb.String())
	})

	type args struct {
		Expression string `json:"expression"`
	}
	req := schema.NewRequest("glm-4.7", []schema.MessageParam{schema.NewUserMessageParam("2+2?")})
	req.Tools = []schema.ToolParam{schema.NewToolParam[args]("calculate", "evaluate")}
	req.ToolStream = true

	got, err := schema.ReadStream(o.ChatCompletionStream(t.Context(), req), nil)
	if err != nil {
		t.Fatal(err)
	}

	if got.Content != "Hello" || got.ReasoningContent != "hmm" {
		t.Errorf("content=%q reasoning=%q", got.Content, got.ReasoningContent)
	}
	if !got.FinishReason.IsToolCalls() {
		t.Errorf("finish reason = %s", got.FinishReason)
	}
	if got.Usage.TotalTokens != 7 {
		t.Errorf("usage = %+v", got.Usage)
	}

	call, ok := got.ToolCalls.Get(0)
	if !ok || call.Id != "call_1" || call.Name != "calculate" || call.Arguments != `{"expression":"2+2"}` {
		t.Fatalf("tool call = %+v", call)
	}
}

func TestChatCompletionStreamHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key"}}`)
	}))
	defer srv.Close()

	o, err := New(Config{ApiKey: "k", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatal(err)
	}

	req := schema.NewRequest("glm-4.7", []schema.MessageParam{schema.NewUserMessageParam("hi")})
	if _, err := schema.ReadStream(o.ChatCompletionStream(t.Context(), req), nil); err == nil {
		t.Fatal("want transport error")
	}
}
