package schema

import (
	"encoding/json"
	"strings"

	"github.com/ryanreadbooks/zaikit/pkg/schema"
)

type ContentPartType string

const (
	ContentPartText     ContentPartType = "text"
	ContentPartImageURL ContentPartType = "image_url"
	ContentPartVideoURL ContentPartType = "video_url"
)

// ContentPart is one element of a multimodal user message.
type ContentPart struct {
	Type ContentPartType `json:"type"`
	Text string          `json:"text,omitempty"`
	URL  string          `json:"url,omitempty"`
}

func TextPart(text string) ContentPart {
	return ContentPart{Type: ContentPartText, Text: text}
}

func ImagePart(url string) ContentPart {
	return ContentPart{Type: ContentPartImageURL, URL: url}
}

func VideoPart(url string) ContentPart {
	return ContentPart{Type: ContentPartVideoURL, URL: url}
}

type SystemMessageParam struct {
	Content string `json:"content"`
}

type UserMessageParam struct {
	Content string        `json:"content,omitempty"`
	Parts   []ContentPart `json:"parts,omitempty"`
}

type AssistantMessageParam struct {
	Content          string               `json:"content,omitempty"`
	ReasoningContent string               `json:"reasoning_content,omitempty"`
	ToolCalls        []CompletionToolCall `json:"tool_calls,omitempty"`
}

// Tool call result message
type ToolMessageParam struct {
	ToolCallId string `json:"tool_call_id"`
	Content    string `json:"content"`
}

// MessageParam holds exactly one of the role specific params.
type MessageParam struct {
	System    *SystemMessageParam    `json:"system,omitzero"`
	User      *UserMessageParam      `json:"user,omitzero"`
	Assistant *AssistantMessageParam `json:"assistant,omitzero"`
	Tool      *ToolMessageParam      `json:"tool,omitzero"`
}

func NewSystemMessageParam(text string) MessageParam {
	return MessageParam{System: &SystemMessageParam{Content: text}}
}

func NewUserMessageParam[T string | []ContentPart](msg T) MessageParam {
	user := UserMessageParam{}
	switch v := any(msg).(type) {
	case string:
		user.Content = v
	case []ContentPart:
		user.Parts = v
	}

	return MessageParam{User: &user}
}

func NewAssistantMessageParam(content string, toolCalls []CompletionToolCall, reasoningContent string) MessageParam {
	return MessageParam{
		Assistant: &AssistantMessageParam{
			Content:          content,
			ReasoningContent: reasoningContent,
			ToolCalls:        toolCalls,
		},
	}
}

func NewToolMessageParam(toolCallId, content string) MessageParam {
	return MessageParam{
		Tool: &ToolMessageParam{
			ToolCallId: toolCallId,
			Content:    content,
		},
	}
}

func (p *MessageParam) Role() Role {
	switch {
	case p.System != nil:
		return RoleSystem
	case p.User != nil:
		return RoleUser
	case p.Assistant != nil:
		return RoleAssistant
	case p.Tool != nil:
		return RoleTool
	}

	return ""
}

// Text flattens the message into plain text. Media parts contribute their URL.
func (p *MessageParam) Text() string {
	switch {
	case p.System != nil:
		return p.System.Content

	case p.User != nil:
		if len(p.User.Parts) == 0 {
			return p.User.Content
		}
		var sb strings.Builder
		sb.WriteString(p.User.Content)
		for _, part := range p.User.Parts {
			sb.WriteString(part.Text)
			sb.WriteString(part.URL)
		}
		return sb.String()

	case p.Assistant != nil:
		var sb strings.Builder
		sb.WriteString(p.Assistant.ReasoningContent)
		sb.WriteString(p.Assistant.Content)
		for _, tc := range p.Assistant.ToolCalls {
			sb.WriteString(tc.Id)
			sb.WriteString(tc.Function.Name)
			sb.WriteString(tc.Function.Arguments)
		}
		return sb.String()

	case p.Tool != nil:
		return p.Tool.ToolCallId + p.Tool.Content
	}

	return ""
}

type FunctionDefinitionParam struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// WebSearchToolParam enables the provider side web search tool. The
// provider performs the search itself, no tool call reaches the client.
type WebSearchToolParam struct {
	Enable        bool   `json:"enable"`
	SearchEngine  string `json:"search_engine"`
	SearchResult  bool   `json:"search_result"`
	Count         int    `json:"count,omitempty"`
	RecencyFilter string `json:"search_recency_filter,omitempty"`
	SearchPrompt  string `json:"search_prompt,omitempty"`
}

// Payload renders the tool in the provider's wire shape.
func (w *WebSearchToolParam) Payload() map[string]any {
	ws := map[string]any{
		"enable":        boolString(w.Enable),
		"search_engine": w.SearchEngine,
		"search_result": boolString(w.SearchResult),
	}
	if w.Count > 0 {
		ws["count"] = w.Count
	}
	if w.RecencyFilter != "" {
		ws["search_recency_filter"] = w.RecencyFilter
	}
	if w.SearchPrompt != "" {
		ws["search_prompt"] = w.SearchPrompt
	}

	return map[string]any{
		"type":       "web_search",
		"web_search": ws,
	}
}

func boolString(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

type ToolParam struct {
	Function  *FunctionDefinitionParam `json:"function,omitzero"`
	WebSearch *WebSearchToolParam      `json:"web_search,omitzero"`
}

func (t *ToolParam) Name() string {
	if t.Function != nil {
		return t.Function.Name
	}
	if t.WebSearch != nil {
		return "web_search"
	}
	return ""
}

func (t *ToolParam) Text() string {
	if t == nil {
		return ""
	}
	if t.Function != nil {
		tp, _ := json.Marshal(t.Function.Parameters)
		return t.Function.Name + t.Function.Description + string(tp)
	}
	if t.WebSearch != nil {
		tp, _ := json.Marshal(t.WebSearch.Payload())
		return string(tp)
	}
	return ""
}

func NewToolParam[InputT any](name, description string) ToolParam {
	return NewToolParamWithSchema(name, description, schema.Get[InputT]())
}

func NewToolParamWithSchema(name, description string, sch schema.Schema) ToolParam {
	return ToolParam{
		Function: &FunctionDefinitionParam{
			Name:        name,
			Description: description,
			Parameters:  sch.Map(),
		},
	}
}

func NewWebSearchToolParam(engine string, count int) ToolParam {
	return ToolParam{
		WebSearch: &WebSearchToolParam{
			Enable:       true,
			SearchEngine: engine,
			SearchResult: true,
			Count:        count,
		},
	}
}

type ToolChoiceMode string

const (
	ToolChoiceAuto     ToolChoiceMode = "auto"
	ToolChoiceNone     ToolChoiceMode = "none"
	ToolChoiceRequired ToolChoiceMode = "required"
)

// ToolChoice is either a mode or a forced function name.
type ToolChoice struct {
	Mode     ToolChoiceMode
	Function string
}

func AutoToolChoice() *ToolChoice {
	return &ToolChoice{Mode: ToolChoiceAuto}
}

func ForceToolChoice(function string) *ToolChoice {
	return &ToolChoice{Function: function}
}

type ResponseFormat string

const (
	ResponseFormatText       ResponseFormat = "text"
	ResponseFormatJSONObject ResponseFormat = "json_object"
)
