package schema

// FinishReason is why the model stopped. GLM models add "sensitive" and
// "network_error" to the OpenAI set.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonToolCalls     FinishReason = "tool_calls"
	FinishReasonSensitive     FinishReason = "sensitive"
	FinishReasonNetworkError  FinishReason = "network_error"
	FinishReasonContentFilter FinishReason = "content_filter"
)

func (f FinishReason) IsToolCalls() bool { return f == FinishReasonToolCalls }

func (f FinishReason) IsStopped() bool { return f == FinishReasonStop }
