package schema

type ToolCallType string

const (
	ToolCallTypeFunction ToolCallType = "function"
)

type CompletionToolCall struct {
	Id       string                     `json:"id"`
	Type     ToolCallType               `json:"type"`
	Function CompletionToolCallFunction `json:"function"`
}

type CompletionToolCallFunction struct {
	// the arguments to call the function with, JSON encoded
	Arguments string `json:"arguments"`

	// the name of the function to call
	Name string `json:"name"`
}

type CompletionUsage struct {
	CompletionTokens int64 `json:"completion_tokens"`
	// Number of tokens in the prompt.
	PromptTokens int64 `json:"prompt_tokens"`
	// Total number of tokens used in the request (prompt + completion).
	TotalTokens int64 `json:"total_tokens"`
}

func (u CompletionUsage) IsZero() bool {
	return u.TotalTokens == 0 && u.PromptTokens == 0 && u.CompletionTokens == 0
}

// completion message responsed from LLM service
type CompletionMessage struct {
	Role             Role
	Content          string
	ReasoningContent string
	ToolCalls        []CompletionToolCall
}

func (m *CompletionMessage) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// Param turns the message into an assistant history entry.
func (m *CompletionMessage) Param() MessageParam {
	return NewAssistantMessageParam(m.Content, m.ToolCalls, m.ReasoningContent)
}
