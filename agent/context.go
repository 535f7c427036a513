package agent

import (
	"github.com/ryanreadbooks/zaikit/llm/schema"
)

// Conversation is the message history sent to the model on every turn.
// The system prompt, when set, always stays first.
type Conversation struct {
	systemPrompt string
	messageList  []schema.MessageParam
}

func NewConversation(systemPrompt string) *Conversation {
	c := &Conversation{systemPrompt: systemPrompt}
	c.Clear()
	return c
}

// Clear drops everything but the system prompt.
func (c *Conversation) Clear() {
	c.messageList = c.messageList[:0]
	if c.systemPrompt != "" {
		c.messageList = append(c.messageList, schema.NewSystemMessageParam(c.systemPrompt))
	}
}

func (c *Conversation) AppendUserMessage(content string) {
	c.messageList = append(c.messageList, schema.NewUserMessageParam(content))
}

func (c *Conversation) AppendUserParts(parts []schema.ContentPart) {
	c.messageList = append(c.messageList, schema.NewUserMessageParam(parts))
}

// Add an assistant message (responded from the LLM) to the message list.
func (c *Conversation) AppendAssistantMessage(msg *schema.CompletionMessage) {
	c.messageList = append(c.messageList, msg.Param())
}

// Add a tool call result (generated locally) to the message list.
func (c *Conversation) AppendToolResult(toolCall *schema.CompletionToolCall, result string) {
	c.messageList = append(c.messageList, schema.NewToolMessageParam(toolCall.Id, result))
}

func (c *Conversation) Messages() []schema.MessageParam {
	return c.messageList
}

// Turns counts user messages.
func (c *Conversation) Turns() int {
	n := 0
	for i := range c.messageList {
		if c.messageList[i].Role() == schema.RoleUser {
			n++
		}
	}
	return n
}

func (c *Conversation) Len() int {
	return len(c.messageList)
}
