package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ryanreadbooks/zaikit/llm"
	"github.com/ryanreadbooks/zaikit/llm/schema"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	openaiparam "github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	reasoningContentKey = "reasoning_content"
	webSearchKey        = "web_search"
)

var (
	_ llm.LLM            = (*OpenAI)(nil)
	_ llm.ImageGenerator = (*OpenAI)(nil)
	_ llm.Transcriber    = (*OpenAI)(nil)
)

type OpenAI struct {
	client *openai.Client
}

type Config struct {
	ApiKey  string
	BaseURL string
	Timeout time.Duration
}

func New(config Config) (*OpenAI, error) {
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
		// failures are surfaced to the caller as is
		option.WithMaxRetries(0),
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}

	cli := openai.NewClient(opts...)

	return &OpenAI{
		client: &cli,
	}, nil
}

// Client exposes the underlying sdk client for endpoints outside chat
// completion.
func (o *OpenAI) Client() *openai.Client {
	return o.client
}

func toUserMessageParamUnion(param *schema.UserMessageParam) *openai.ChatCompletionUserMessageParam {
	if param == nil {
		return nil
	}

	union := &openai.ChatCompletionUserMessageParam{}
	if len(param.Parts) == 0 {
		union.Content.OfString = openaiparam.NewOpt(param.Content)
		return union
	}

	if param.Content != "" {
		union.Content.OfArrayOfContentParts = append(union.Content.OfArrayOfContentParts,
			openai.ChatCompletionContentPartUnionParam{
				OfText: &openai.ChatCompletionContentPartTextParam{Text: param.Content},
			})
	}
	for _, part := range param.Parts {
		switch part.Type {
		case schema.ContentPartText:
			union.Content.OfArrayOfContentParts = append(union.Content.OfArrayOfContentParts,
				openai.ChatCompletionContentPartUnionParam{
					OfText: &openai.ChatCompletionContentPartTextParam{Text: part.Text},
				})
		case schema.ContentPartImageURL:
			union.Content.OfArrayOfContentParts = append(union.Content.OfArrayOfContentParts,
				openai.ChatCompletionContentPartUnionParam{
					OfImageURL: &openai.ChatCompletionContentPartImageParam{
						ImageURL: openai.ChatCompletionContentPartImageImageURLParam{URL: part.URL},
					},
				})
		}
		// video parts are not modeled by the sdk, see videoContentOverride
	}

	return union
}

func hasVideoPart(param *schema.UserMessageParam) bool {
	if param == nil {
		return false
	}
	for _, part := range param.Parts {
		if part.Type == schema.ContentPartVideoURL {
			return true
		}
	}
	return false
}

// videoContentOverride renders user content parts in wire shape so that
// video_url parts can be sent.
func videoContentOverride(param *schema.UserMessageParam) []map[string]any {
	parts := make([]map[string]any, 0, len(param.Parts)+1)
	if param.Content != "" {
		parts = append(parts, map[string]any{"type": "text", "text": param.Content})
	}
	for _, part := range param.Parts {
		switch part.Type {
		case schema.ContentPartText:
			parts = append(parts, map[string]any{"type": "text", "text": part.Text})
		case schema.ContentPartImageURL:
			parts = append(parts, map[string]any{"type": "image_url", "image_url": map[string]any{"url": part.URL}})
		case schema.ContentPartVideoURL:
			parts = append(parts, map[string]any{"type": "video_url", "video_url": map[string]any{"url": part.URL}})
		}
	}
	return parts
}

func toAssistantMessageParamUnion(param *schema.AssistantMessageParam) *openai.ChatCompletionAssistantMessageParam {
	if param == nil {
		return nil
	}

	union := &openai.ChatCompletionAssistantMessageParam{}
	if param.Content != "" || len(param.ToolCalls) == 0 {
		union.Content.OfString = openaiparam.NewOpt(param.Content)
	}
	for _, tc := range param.ToolCalls {
		union.ToolCalls = append(union.ToolCalls,
			openai.ChatCompletionMessageToolCallUnionParam{
				OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
					ID: tc.Id,
					Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				},
			})
	}

	return union
}

func toChatCompletionMessageParamUnion(param *schema.MessageParam) openai.ChatCompletionMessageParamUnion {
	union := openai.ChatCompletionMessageParamUnion{
		OfUser:      toUserMessageParamUnion(param.User),
		OfAssistant: toAssistantMessageParamUnion(param.Assistant),
	}
	if param.System != nil {
		union.OfSystem = &openai.ChatCompletionSystemMessageParam{}
		union.OfSystem.Content.OfString = openaiparam.NewOpt(param.System.Content)
	}
	if param.Tool != nil {
		union.OfTool = &openai.ChatCompletionToolMessageParam{ToolCallID: param.Tool.ToolCallId}
		union.OfTool.Content.OfString = openaiparam.NewOpt(param.Tool.Content)
	}

	return union
}

func toToolParamUnion(param *schema.ToolParam) openai.ChatCompletionToolUnionParam {
	tool := openai.ChatCompletionToolUnionParam{}
	if param.Function != nil {
		tool.OfFunction = &openai.ChatCompletionFunctionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        param.Function.Name,
				Description: openaiparam.NewOpt(param.Function.Description),
				Parameters:  param.Function.Parameters,
			},
		}
	}

	return tool
}

// toolsPayload renders every tool in wire shape. Used when the request
// mixes in tools the sdk has no type for, such as web_search.
func toolsPayload(tools []schema.ToolParam) []any {
	out := make([]any, 0, len(tools))
	for _, t := range tools {
		switch {
		case t.Function != nil:
			out = append(out, map[string]any{
				"type": "function",
				"function": map[string]any{
					"name":        t.Function.Name,
					"description": t.Function.Description,
					"parameters":  t.Function.Parameters,
				},
			})
		case t.WebSearch != nil:
			out = append(out, t.WebSearch.Payload())
		}
	}
	return out
}

func toolChoicePayload(choice *schema.ToolChoice) any {
	if choice.Function != "" {
		return map[string]any{
			"type":     "function",
			"function": map[string]any{"name": choice.Function},
		}
	}
	return string(choice.Mode)
}

func toChatCompletionNewParams(req *schema.Request) (openai.ChatCompletionNewParams, []option.RequestOption) {
	params := openai.ChatCompletionNewParams{
		Model: req.Model,
		N:     openaiparam.NewOpt(max(1, req.N)),
	}

	if req.Temperature != -1 {
		params.Temperature = openaiparam.NewOpt(req.Temperature)
	}
	if req.TopP != -1 {
		params.TopP = openaiparam.NewOpt(req.TopP)
	}
	if req.MaxTokens != -1 {
		params.MaxTokens = openaiparam.NewOpt(req.MaxTokens)
	}

	opts := []option.RequestOption{}

	// attach reasoning content if necessary in request body in json format
	// cuz this openai-sdk does not support setting reasoning_content in assistant message param
	for idx, message := range req.Messages {
		params.Messages = append(params.Messages, toChatCompletionMessageParamUnion(&message))
		if message.Assistant != nil && message.Assistant.ReasoningContent != "" {
			jsonKey := fmt.Sprintf("messages.%d.reasoning_content", idx)
			opts = append(opts, option.WithJSONSet(jsonKey, message.Assistant.ReasoningContent))
		}
		if hasVideoPart(message.User) {
			jsonKey := fmt.Sprintf("messages.%d.content", idx)
			opts = append(opts, option.WithJSONSet(jsonKey, videoContentOverride(message.User)))
		}
	}

	hasWebSearch := false
	for _, tool := range req.Tools {
		if tool.WebSearch != nil {
			hasWebSearch = true
		}
	}
	if hasWebSearch {
		opts = append(opts, option.WithJSONSet("tools", toolsPayload(req.Tools)))
	} else {
		for _, tool := range req.Tools {
			params.Tools = append(params.Tools, toToolParamUnion(&tool))
		}
	}

	if req.ToolChoice != nil {
		opts = append(opts, option.WithJSONSet("tool_choice", toolChoicePayload(req.ToolChoice)))
	}

	if req.ResponseFormat != "" {
		opts = append(opts, option.WithJSONSet("response_format", map[string]any{"type": string(req.ResponseFormat)}))
	}

	if req.Thinking != nil {
		opts = append(opts, option.WithJSONSet("thinking", req.Thinking))
	}

	return params, opts
}

func rawString(raw string) string {
	var s string
	_ = json.Unmarshal([]byte(raw), &s)
	return s
}

func toChoice(choice openai.ChatCompletionChoice) schema.Choice {
	toolCalls := make([]schema.CompletionToolCall, 0, len(choice.Message.ToolCalls))
	for _, toolCall := range choice.Message.ToolCalls {
		toolCalls = append(toolCalls, schema.CompletionToolCall{
			Id:   toolCall.ID,
			Type: schema.ToolCallTypeFunction,
			Function: schema.CompletionToolCallFunction{
				Name:      toolCall.Function.Name,
				Arguments: toolCall.Function.Arguments,
			},
		})
	}

	// for custom field not supported by official openai sdk. The decoder
	// marks unknown fields invalid, so presence is judged by the raw json.
	var rs string
	if field, ok := choice.Message.JSON.ExtraFields[reasoningContentKey]; ok && field.Raw() != "" {
		rs = rawString(field.Raw())
	}

	return schema.Choice{
		FinishReason: schema.FinishReason(choice.FinishReason),
		Index:        choice.Index,
		Message: schema.CompletionMessage{
			Role:             schema.Role(choice.Message.Role),
			Content:          choice.Message.Content,
			ReasoningContent: rs,
			ToolCalls:        toolCalls,
		},
	}
}

func toChoices(choices []openai.ChatCompletionChoice) []schema.Choice {
	chs := make([]schema.Choice, 0, len(choices))

	for _, choice := range choices {
		chs = append(chs, toChoice(choice))
	}

	return chs
}

func (o *OpenAI) ChatCompletion(ctx context.Context, req *schema.Request) (*schema.Response, error) {
	params, opts := toChatCompletionNewParams(req)
	resp, err := o.client.Chat.Completions.New(ctx, params, opts...)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion new: %w", err)
	}

	out := &schema.Response{
		Id:      resp.ID,
		Created: resp.Created,
		Model:   resp.Model,
		Choices: toChoices(resp.Choices),
		Usage: schema.CompletionUsage{
			CompletionTokens: resp.Usage.CompletionTokens,
			PromptTokens:     resp.Usage.PromptTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	if field, ok := resp.JSON.ExtraFields[webSearchKey]; ok && field.Raw() != "" {
		_ = json.Unmarshal([]byte(field.Raw()), &out.WebSearch)
	}

	return out, nil
}

func toFragment(delta openai.ChatCompletionChunkChoiceDelta) schema.Fragment {
	frag := schema.Fragment{
		Role: schema.Role(delta.Role),
	}

	if delta.JSON.Content.Valid() {
		frag.Content = schema.String(delta.Content)
	}
	if field, ok := delta.JSON.ExtraFields[reasoningContentKey]; ok && field.Raw() != "" {
		frag.ReasoningContent = schema.String(rawString(field.Raw()))
	}

	for _, tc := range delta.ToolCalls {
		frag.ToolCalls = append(frag.ToolCalls, schema.ToolCallDelta{
			Index:     tc.Index,
			Id:        tc.ID,
			Type:      schema.ToolCallType(tc.Type),
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return frag
}

func toStreamChoices(choices []openai.ChatCompletionChunkChoice) []schema.StreamChoice {
	chs := make([]schema.StreamChoice, 0, len(choices))
	for _, choice := range choices {
		chs = append(chs, schema.StreamChoice{
			FinishReason: schema.FinishReason(choice.FinishReason),
			Index:        choice.Index,
			Delta:        toFragment(choice.Delta),
		})
	}
	return chs
}

func toStreamResponseChunk(cur openai.ChatCompletionChunk) *schema.StreamResponseChunk {
	chunk := schema.StreamResponseChunk{
		Id:      cur.ID,
		Created: cur.Created,
		Model:   cur.Model,
		Choices: toStreamChoices(cur.Choices),
	}
	if cur.JSON.Usage.Valid() {
		chunk.Usage = &schema.CompletionUsage{
			CompletionTokens: cur.Usage.CompletionTokens,
			PromptTokens:     cur.Usage.PromptTokens,
			TotalTokens:      cur.Usage.TotalTokens,
		}
	}
	return &chunk
}

func (o *OpenAI) ChatCompletionStream(ctx context.Context, req *schema.Request) <-chan *schema.StreamResponseChunk {
	params, opts := toChatCompletionNewParams(req)
	params.StreamOptions = openai.ChatCompletionStreamOptionsParam{
		IncludeUsage: openaiparam.NewOpt(true),
	}
	if req.ToolStream && req.HasFunctionTools() {
		opts = append(opts, option.WithJSONSet("tool_stream", true))
	}

	stream := o.client.Chat.Completions.NewStreaming(ctx, params, opts...)
	ch := make(chan *schema.StreamResponseChunk, 16) // this should be buffered

	go func() {
		defer func() {
			if p := recover(); p != nil {
				ch <- &schema.StreamResponseChunk{Err: fmt.Errorf("panic: %v", p)}
			}

			stream.Close()
			close(ch)
		}()

		// read in the background
		for stream.Next() {
			select {
			case ch <- toStreamResponseChunk(stream.Current()):
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

func (o *OpenAI) GenerateImage(ctx context.Context, req *llm.ImageRequest) (*llm.ImageResponse, error) {
	params := openai.ImageGenerateParams{
		Prompt: req.Prompt,
		Model:  openai.ImageModel(req.Model),
	}
	if req.Size != "" {
		params.Size = openai.ImageGenerateParamsSize(req.Size)
	}
	if req.Quality != "" {
		params.Quality = openai.ImageGenerateParamsQuality(req.Quality)
	}

	resp, err := o.client.Images.Generate(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai images generate: %w", err)
	}

	out := &llm.ImageResponse{Created: resp.Created}
	for _, img := range resp.Data {
		out.URLs = append(out.URLs, img.URL)
	}

	return out, nil
}

func (o *OpenAI) Transcribe(ctx context.Context, req *llm.TranscriptionRequest) (*llm.TranscriptionResponse, error) {
	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(req.File, req.Filename, req.ContentType),
		Model: openai.AudioModel(req.Model),
	}
	if req.Language != "" {
		params.Language = openai.String(req.Language)
	}

	resp, err := o.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai audio transcriptions new: %w", err)
	}

	return &llm.TranscriptionResponse{Text: resp.Text}, nil
}
