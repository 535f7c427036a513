package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ryanreadbooks/zaikit/job"
	"github.com/ryanreadbooks/zaikit/llm/schema"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(Config{ApiKey: "test-key", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func checkAuth(t *testing.T, r *http.Request) {
	if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
		t.Errorf("authorization = %q", got)
	}
	if r.Header.Get("X-Request-Id") == "" {
		t.Error("missing request id")
	}
}

func TestChat(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat/completions", func(w http.ResponseWriter, r *http.Request) {
		checkAuth(t, r)
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Stream || req.Model != "glm-4.7" || len(req.Messages) != 2 {
			t.Errorf("request = %+v", req)
		}
		fmt.Fprint(w, `{"id":"c1","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Paris"}}],"usage":{"prompt_tokens":8,"completion_tokens":1,"total_tokens":9}}`)
	})

	resp, err := newTestClient(t, mux).Chat(t.Context(), ChatRequest{
		Model: "glm-4.7",
		Messages: []ChatMessage{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "capital of france"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content() != "Paris" || resp.Usage.TotalTokens != 9 || len(resp.Raw) == 0 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestChatAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat/completions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
	})

	_, err := newTestClient(t, mux).Chat(t.Context(), ChatRequest{Model: "glm-4.7"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || !strings.Contains(apiErr.Body, "rate limited") {
		t.Errorf("api error = %+v", apiErr)
	}
}

func TestChatStream(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !req.Stream {
			t.Error("want stream=true")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"reasoning_content\":\"thinking\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"Bon\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"jour\"},\"finish_reason\":\"stop\"}],\"usage\":{\"total_tokens\":4}}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	var fragments int
	got, err := newTestClient(t, mux).ChatStream(t.Context(), ChatRequest{Model: "glm-4.7"}, func(schema.Fragment) {
		fragments++
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "Bonjour" || got.ReasoningContent != "thinking" || !got.FinishReason.IsStopped() {
		t.Fatalf("got %+v", got)
	}
	if got.Usage.TotalTokens != 4 || fragments != 3 {
		t.Errorf("usage=%+v fragments=%d", got.Usage, fragments)
	}
}

func TestVideoFlow(t *testing.T) {
	polls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("POST /videos/generations", func(w http.ResponseWriter, r *http.Request) {
		checkAuth(t, r)
		var req VideoRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !req.WithAudio || req.FPS != 30 {
			t.Errorf("request = %+v", req)
		}
		fmt.Fprint(w, `{"id":"v-1","task_status":"PROCESSING"}`)
	})
	mux.HandleFunc("GET /async-result/v-1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls == 1 {
			fmt.Fprint(w, `{"task_status":"PROCESSING"}`)
			return
		}
		fmt.Fprint(w, `{"task_status":"FAIL"}`)
	})

	c := newTestClient(t, mux)
	sub, err := c.SubmitVideo(t.Context(), VideoRequest{Model: "cogvideox-3", Prompt: "p", FPS: 30, WithAudio: true})
	if err != nil {
		t.Fatal(err)
	}

	p := job.NewPoller(c, job.WithSleep(func(context.Context, time.Duration) error { return nil }))
	out, err := p.AwaitCompletion(t.Context(), sub.ID, 10*time.Second, 300*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != job.OutcomeFailed || out.Polls != 2 {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestGenerateImage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /images/generations", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"created":1,"data":[{"url":"https://img/1.png"}]}`)
	})

	resp, err := newTestClient(t, mux).GenerateImage(t.Context(), ImageRequest{Model: "cogView-4-250304", Prompt: "garden"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 1 || resp.Data[0].URL != "https://img/1.png" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestVideoCurlExamples(t *testing.T) {
	c, err := New(Config{ApiKey: "k", BaseURL: "https://api.z.ai/api/paas/v4/"})
	if err != nil {
		t.Fatal(err)
	}

	examples := c.VideoCurlExamples("cogvideox-3")
	if len(examples) != 3 {
		t.Fatalf("got %d examples", len(examples))
	}
	if !strings.Contains(examples[0].Command, "https://api.z.ai/api/paas/v4/videos/generations") {
		t.Errorf("submit curl = %s", examples[0].Command)
	}
	if !strings.Contains(examples[1].Command, "https://api.z.ai/api/paas/v4/async-result/VIDEO_ID") {
		t.Errorf("status curl = %s", examples[1].Command)
	}
}
