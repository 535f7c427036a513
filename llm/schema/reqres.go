package schema

// The request sent to the LLM service.
type Request struct {
	Model    string
	Messages []MessageParam

	// -1 means using model defaults. Set either Temperature or TopP, not both.
	Temperature float64
	TopP        float64

	// -1 means using model defaults
	MaxTokens int64

	Tools      []ToolParam
	ToolChoice *ToolChoice

	// stream tool call arguments fragment by fragment, streaming requests only
	ToolStream bool

	ResponseFormat ResponseFormat

	// number of responses to generate, default to 1
	N int64

	Thinking *Thinking
}

func NewRequest(model string, messages []MessageParam) *Request {
	return &Request{
		Model:       model,
		Messages:    messages,
		N:           1,
		Temperature: -1,
		TopP:        -1,
		MaxTokens:   -1,
	}
}

func (r *Request) HasFunctionTools() bool {
	for _, t := range r.Tools {
		if t.Function != nil {
			return true
		}
	}
	return false
}

// The response from the LLM service.
type Response struct {
	Id string
	// unix timestamp in seconds
	Created int64
	Model   string
	Choices []Choice
	Usage   CompletionUsage

	// search results when the web_search tool was enabled
	WebSearch []WebReference
}

func (r *Response) FirstChoice() Choice {
	if len(r.Choices) == 0 {
		return Choice{
			FinishReason: FinishReasonStop,
			Message: CompletionMessage{
				Role: RoleAssistant,
			},
		}
	}

	return r.Choices[0]
}

type Choice struct {
	FinishReason FinishReason
	Index        int64
	Message      CompletionMessage
}

func (c *Choice) IsStopped() bool {
	return c.FinishReason == FinishReasonStop
}

func (c *Choice) HasToolCalls() bool {
	return c.FinishReason == FinishReasonToolCalls || c.Message.HasToolCalls()
}

// StreamResponseChunk is what a streaming transport yields per server event.
type StreamResponseChunk struct {
	Id      string
	Created int64
	Model   string
	Choices []StreamChoice

	// only set on the chunk that carries usage, usually the last one
	Usage *CompletionUsage

	Err error // read err should be placed here
}

type StreamChoice struct {
	FinishReason FinishReason
	Index        int64
	Delta        Fragment
}
