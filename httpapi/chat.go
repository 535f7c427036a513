package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ryanreadbooks/zaikit/llm/schema"

	"github.com/openai/openai-go/v3/packages/ssestream"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string           `json:"model"`
	Messages    []ChatMessage    `json:"messages"`
	Temperature *float64         `json:"temperature,omitempty"`
	MaxTokens   int64            `json:"max_tokens,omitempty"`
	Thinking    *schema.Thinking `json:"thinking,omitempty"`
	Stream      bool             `json:"stream,omitempty"`
}

type ChatResponse struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int64  `json:"index"`
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Role             string `json:"role"`
			Content          string `json:"content"`
			ReasoningContent string `json:"reasoning_content"`
		} `json:"message"`
	} `json:"choices"`
	Usage schema.CompletionUsage `json:"usage"`

	Raw json.RawMessage `json:"-"`
}

func (r *ChatResponse) Content() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// Chat posts a non streaming chat completion.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	req.Stream = false

	var out ChatResponse
	raw, err := c.postJSON(ctx, c.endpoints.Chat, req, &out)
	if err != nil {
		return nil, fmt.Errorf("http chat: %w", err)
	}
	out.Raw = raw
	return &out, nil
}

type wireToolCall struct {
	Index    int64  `json:"index"`
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type wireChunk struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int64  `json:"index"`
		FinishReason string `json:"finish_reason"`
		Delta        struct {
			Role             string         `json:"role"`
			Content          *string        `json:"content"`
			ReasoningContent *string        `json:"reasoning_content"`
			ToolCalls        []wireToolCall `json:"tool_calls"`
		} `json:"delta"`
	} `json:"choices"`
	Usage *schema.CompletionUsage `json:"usage"`
}

func (w *wireChunk) toChunk() *schema.StreamResponseChunk {
	chunk := &schema.StreamResponseChunk{
		Id:      w.ID,
		Created: w.Created,
		Model:   w.Model,
		Usage:   w.Usage,
	}
	for _, ch := range w.Choices {
		frag := schema.Fragment{
			Role:             schema.Role(ch.Delta.Role),
			Content:          ch.Delta.Content,
			ReasoningContent: ch.Delta.ReasoningContent,
		}
		for _, tc := range ch.Delta.ToolCalls {
			frag.ToolCalls = append(frag.ToolCalls, schema.ToolCallDelta{
				Index:     tc.Index,
				Id:        tc.ID,
				Type:      schema.ToolCallType(tc.Type),
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		chunk.Choices = append(chunk.Choices, schema.StreamChoice{
			FinishReason: schema.FinishReason(ch.FinishReason),
			Index:        ch.Index,
			Delta:        frag,
		})
	}
	return chunk
}

// ChatStream posts a streaming chat completion and folds the server sent
// events into one response. onFragment sees every fragment as it arrives.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest, onFragment func(schema.Fragment)) (schema.AssembledResponse, error) {
	req.Stream = true

	httpReq, err := c.newRequest(ctx, http.MethodPost, c.endpoints.Chat, req)
	if err != nil {
		return schema.AssembledResponse{}, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return schema.AssembledResponse{}, fmt.Errorf("http chat stream: %w", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return schema.AssembledResponse{}, fmt.Errorf("http chat stream: %w", statusError(resp))
	}

	stream := ssestream.NewStream[wireChunk](ssestream.NewDecoder(resp), nil)
	defer stream.Close()

	ch := make(chan *schema.StreamResponseChunk)
	go func() {
		defer close(ch)
		for stream.Next() {
			cur := stream.Current()
			select {
			case ch <- cur.toChunk():
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil {
			select {
			case ch <- &schema.StreamResponseChunk{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	out, err := schema.ReadStream(ch, onFragment)
	if err != nil {
		// unblock the reader goroutine
		for range ch {
		}
		return out, fmt.Errorf("http chat stream: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}
