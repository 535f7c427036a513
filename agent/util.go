package agent

import (
	"github.com/ryanreadbooks/zaikit/llm/estimator"
)

// ContextTokens roughly estimates the prompt size of the next request for
// conv, tool definitions included.
func (a *Agent) ContextTokens(conv *Conversation) int {
	n, _ := estimator.Fits(a.buildLLMMessageRequest(conv), 0)
	return n
}
