package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ryanreadbooks/zaikit/llm"
	"github.com/ryanreadbooks/zaikit/llm/schema"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultMaxTokens      = 4096
	defaultThinkingBudget = 2048
)

var _ llm.LLM = (*Anthropic)(nil)

// Anthropic talks to an Anthropic compatible messages endpoint.
type Anthropic struct {
	client *anthropic.Client
}

type Config struct {
	ApiKey  string
	BaseURL string
	Timeout time.Duration
}

func New(config Config) (*Anthropic, error) {
	if config.ApiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	if config.BaseURL == "" {
		return nil, fmt.Errorf("api base is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.ApiKey),
		option.WithBaseURL(config.BaseURL),
		option.WithHTTPClient(&http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}),
		option.WithMaxRetries(0),
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}

	cli := anthropic.NewClient(opts...)
	return &Anthropic{client: &cli}, nil
}

func toUserBlocks(param *schema.UserMessageParam) []anthropic.ContentBlockParamUnion {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(param.Parts)+1)
	if param.Content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(param.Content))
	}
	for _, part := range param.Parts {
		switch part.Type {
		case schema.ContentPartText:
			blocks = append(blocks, anthropic.NewTextBlock(part.Text))
		case schema.ContentPartImageURL:
			blocks = append(blocks, anthropic.NewImageBlock(anthropic.URLImageSourceParam{URL: part.URL}))
		}
	}
	return blocks
}

func toAssistantBlocks(param *schema.AssistantMessageParam) []anthropic.ContentBlockParamUnion {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(param.ToolCalls)+1)
	if param.Content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(param.Content))
	}
	for _, tc := range param.ToolCalls {
		var input any = map[string]any{}
		if tc.Function.Arguments != "" {
			input = json.RawMessage(tc.Function.Arguments)
		}
		blocks = append(blocks, anthropic.NewToolUseBlock(tc.Id, input, tc.Function.Name))
	}
	return blocks
}

// toMessageNewParams folds system messages into the system prompt and
// merges consecutive tool results into one user turn.
func toMessageNewParams(req *schema.Request) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: defaultMaxTokens,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = req.MaxTokens
	}
	if req.Temperature != -1 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.TopP != -1 {
		params.TopP = anthropic.Float(req.TopP)
	}

	var pendingResults []anthropic.ContentBlockParamUnion
	flushResults := func() {
		if len(pendingResults) > 0 {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(pendingResults...))
			pendingResults = nil
		}
	}

	for _, msg := range req.Messages {
		switch {
		case msg.System != nil:
			params.System = append(params.System, anthropic.TextBlockParam{Text: msg.System.Content})
		case msg.Tool != nil:
			pendingResults = append(pendingResults,
				anthropic.NewToolResultBlock(msg.Tool.ToolCallId, msg.Tool.Content, false))
		case msg.User != nil:
			flushResults()
			params.Messages = append(params.Messages, anthropic.NewUserMessage(toUserBlocks(msg.User)...))
		case msg.Assistant != nil:
			flushResults()
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(toAssistantBlocks(msg.Assistant)...))
		}
	}
	flushResults()

	for _, tool := range req.Tools {
		if tool.Function == nil {
			continue
		}
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Function.Name,
				Description: anthropic.String(tool.Function.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: tool.Function.Parameters["properties"],
					Required:   requiredOf(tool.Function.Parameters),
				},
			},
		})
	}

	if req.ToolChoice != nil {
		switch {
		case req.ToolChoice.Function != "":
			params.ToolChoice = anthropic.ToolChoiceUnionParam{
				OfTool: &anthropic.ToolChoiceToolParam{Name: req.ToolChoice.Function},
			}
		case req.ToolChoice.Mode == schema.ToolChoiceRequired:
			params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}
		case req.ToolChoice.Mode == schema.ToolChoiceNone:
			params.ToolChoice = anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
		default:
			params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
		}
	}

	if req.Thinking.Enabled() {
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(defaultThinkingBudget)
	}

	return params
}

func requiredOf(parameters map[string]any) []string {
	switch v := parameters["required"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, r := range v {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func toFinishReason(reason anthropic.StopReason) schema.FinishReason {
	switch reason {
	case anthropic.StopReasonToolUse:
		return schema.FinishReasonToolCalls
	case anthropic.StopReasonMaxTokens:
		return schema.FinishReasonLength
	case "":
		return ""
	}
	return schema.FinishReasonStop
}

func (a *Anthropic) ChatCompletion(ctx context.Context, req *schema.Request) (*schema.Response, error) {
	resp, err := a.client.Messages.New(ctx, toMessageNewParams(req))
	if err != nil {
		return nil, fmt.Errorf("anthropic messages new: %w", err)
	}

	var (
		content   strings.Builder
		reasoning strings.Builder
		toolCalls []schema.CompletionToolCall
	)
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			content.WriteString(block.Text)
		case "thinking":
			reasoning.WriteString(block.Thinking)
		case "tool_use":
			toolCalls = append(toolCalls, schema.CompletionToolCall{
				Id:   block.ID,
				Type: schema.ToolCallTypeFunction,
				Function: schema.CompletionToolCallFunction{
					Name:      block.Name,
					Arguments: string(block.Input),
				},
			})
		}
	}

	return &schema.Response{
		Id:    resp.ID,
		Model: string(resp.Model),
		Choices: []schema.Choice{{
			FinishReason: toFinishReason(resp.StopReason),
			Message: schema.CompletionMessage{
				Role:             schema.RoleAssistant,
				Content:          content.String(),
				ReasoningContent: reasoning.String(),
				ToolCalls:        toolCalls,
			},
		}},
		Usage: schema.CompletionUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}, nil
}

// streamState maps content block indices onto tool call indices; text and
// thinking blocks do not consume a tool call slot.
type streamState struct {
	toolIndex   map[int64]int64
	nextTool    int64
	inputTokens int64
}

func (s *streamState) chunk(event anthropic.MessageStreamEventUnion) *schema.StreamResponseChunk {
	switch ev := event.AsAny().(type) {
	case anthropic.MessageStartEvent:
		s.inputTokens = ev.Message.Usage.InputTokens
		return &schema.StreamResponseChunk{
			Id:      ev.Message.ID,
			Model:   string(ev.Message.Model),
			Choices: []schema.StreamChoice{{Delta: schema.Fragment{Role: schema.RoleAssistant}}},
		}

	case anthropic.ContentBlockStartEvent:
		if ev.ContentBlock.Type != "tool_use" {
			return nil
		}
		idx := s.nextTool
		s.nextTool++
		s.toolIndex[ev.Index] = idx
		return &schema.StreamResponseChunk{Choices: []schema.StreamChoice{{
			Delta: schema.Fragment{ToolCalls: []schema.ToolCallDelta{{
				Index: idx,
				Id:    ev.ContentBlock.ID,
				Type:  schema.ToolCallTypeFunction,
				Name:  ev.ContentBlock.Name,
			}}},
		}}}

	case anthropic.ContentBlockDeltaEvent:
		var frag schema.Fragment
		switch d := ev.Delta.AsAny().(type) {
		case anthropic.TextDelta:
			frag.Content = schema.String(d.Text)
		case anthropic.ThinkingDelta:
			frag.ReasoningContent = schema.String(d.Thinking)
		case anthropic.InputJSONDelta:
			idx, ok := s.toolIndex[ev.Index]
			if !ok {
				return nil
			}
			frag.ToolCalls = []schema.ToolCallDelta{{Index: idx, Arguments: d.PartialJSON}}
		default:
			return nil
		}
		return &schema.StreamResponseChunk{Choices: []schema.StreamChoice{{Delta: frag}}}

	case anthropic.MessageDeltaEvent:
		out := ev.Usage.OutputTokens
		return &schema.StreamResponseChunk{
			Choices: []schema.StreamChoice{{FinishReason: toFinishReason(ev.Delta.StopReason)}},
			Usage: &schema.CompletionUsage{
				PromptTokens:     s.inputTokens,
				CompletionTokens: out,
				TotalTokens:      s.inputTokens + out,
			},
		}
	}

	return nil
}

func (a *Anthropic) ChatCompletionStream(ctx context.Context, req *schema.Request) <-chan *schema.StreamResponseChunk {
	stream := a.client.Messages.NewStreaming(ctx, toMessageNewParams(req))
	ch := make(chan *schema.StreamResponseChunk, 16)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				ch <- &schema.StreamResponseChunk{Err: fmt.Errorf("panic: %v", p)}
			}

			stream.Close()
			close(ch)
		}()

		state := &streamState{toolIndex: make(map[int64]int64)}
		for stream.Next() {
			chunk := state.chunk(stream.Current())
			if chunk == nil {
				continue
			}
			select {
			case ch <- chunk:
			case <-ctx.Done():
				return
			}
		}

		if stream.Err() != nil {
			ch <- &schema.StreamResponseChunk{Err: stream.Err()}
		}
	}()

	return ch
}
