package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var ErrMalformedArguments = errors.New("malformed tool call arguments")

// Fragment is one incremental piece of a streamed response. Every field is
// optional; a nil pointer or an empty slice means the server did not send it.
type Fragment struct {
	Role             Role
	Content          *string
	ReasoningContent *string
	ToolCalls        []ToolCallDelta
}

// IsEmpty reports whether the fragment carries nothing to accumulate.
func (f *Fragment) IsEmpty() bool {
	return f.Content == nil && f.ReasoningContent == nil && len(f.ToolCalls) == 0
}

func (f *Fragment) ContentText() string {
	if f.Content == nil {
		return ""
	}
	return *f.Content
}

func (f *Fragment) ReasoningText() string {
	if f.ReasoningContent == nil {
		return ""
	}
	return *f.ReasoningContent
}

// ToolCallDelta is a partial update of the tool call at position Index.
type ToolCallDelta struct {
	Index     int64
	Id        string
	Type      ToolCallType
	Name      string
	Arguments string
}

// String returns a pointer to s, for building fragments.
func String(s string) *string {
	return &s
}

type AssembledToolCall struct {
	Index     int64
	Id        string
	Type      ToolCallType
	Name      string
	Arguments string
}

// ParseArguments decodes the assembled arguments into dst. Empty arguments
// are treated as an empty object.
func (c AssembledToolCall) ParseArguments(dst any) error {
	args := c.Arguments
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}

	if err := json.Unmarshal([]byte(args), dst); err != nil {
		return fmt.Errorf("%w: tool=%s index=%d: %v", ErrMalformedArguments, c.Name, c.Index, err)
	}

	return nil
}

func (c AssembledToolCall) CompletionToolCall() CompletionToolCall {
	typ := c.Type
	if typ == "" {
		typ = ToolCallTypeFunction
	}

	return CompletionToolCall{
		Id:   c.Id,
		Type: typ,
		Function: CompletionToolCallFunction{
			Name:      c.Name,
			Arguments: c.Arguments,
		},
	}
}

// ToolCallMap holds assembled tool calls keyed by their stream index.
// Indices may be sparse; All and Indices always iterate in ascending index
// order, FirstSeen keeps the order in which indices first arrived.
type ToolCallMap struct {
	byIndex   map[int64]AssembledToolCall
	firstSeen []int64
}

func (m ToolCallMap) Len() int {
	return len(m.byIndex)
}

func (m ToolCallMap) Get(index int64) (AssembledToolCall, bool) {
	tc, ok := m.byIndex[index]
	return tc, ok
}

func (m ToolCallMap) Indices() []int64 {
	return slices.Sorted(maps.Keys(m.byIndex))
}

func (m ToolCallMap) FirstSeen() []int64 {
	return slices.Clone(m.firstSeen)
}

func (m ToolCallMap) All() []AssembledToolCall {
	indices := m.Indices()
	calls := make([]AssembledToolCall, 0, len(indices))
	for _, idx := range indices {
		calls = append(calls, m.byIndex[idx])
	}
	return calls
}

// AssembledResponse is the result of folding a fragment stream.
type AssembledResponse struct {
	Content          string
	ReasoningContent string
	ToolCalls        ToolCallMap

	FinishReason FinishReason
	Usage        CompletionUsage
}

func (r *AssembledResponse) HasToolCalls() bool {
	return r.ToolCalls.Len() > 0
}

// Message converts the response into an assistant message, tool calls in
// ascending index order.
func (r *AssembledResponse) Message() CompletionMessage {
	msg := CompletionMessage{
		Role:             RoleAssistant,
		Content:          r.Content,
		ReasoningContent: r.ReasoningContent,
	}
	for _, tc := range r.ToolCalls.All() {
		msg.ToolCalls = append(msg.ToolCalls, tc.CompletionToolCall())
	}

	return msg
}

type toolCallBuffer struct {
	index int64
	id    string
	typ   ToolCallType
	name  string
	args  strings.Builder
}

// Accumulator folds fragments, in arrival order, into one AssembledResponse.
// It is not safe for concurrent use; one stream owns one accumulator.
type Accumulator struct {
	content   strings.Builder
	reasoning strings.Builder

	calls     map[int64]*toolCallBuffer
	firstSeen []int64

	finishReason FinishReason
	usage        CompletionUsage
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Consume applies one fragment. It never fails: absent fields are no-ops.
func (a *Accumulator) Consume(f Fragment) {
	if f.Content != nil {
		a.content.WriteString(*f.Content)
	}
	if f.ReasoningContent != nil {
		a.reasoning.WriteString(*f.ReasoningContent)
	}

	for _, d := range f.ToolCalls {
		a.consumeToolCall(d)
	}
}

func (a *Accumulator) consumeToolCall(d ToolCallDelta) {
	if a.calls == nil {
		a.calls = make(map[int64]*toolCallBuffer)
	}

	buf, ok := a.calls[d.Index]
	if !ok {
		// first sighting reserves the slot even if everything else is empty
		buf = &toolCallBuffer{index: d.Index}
		a.calls[d.Index] = buf
		a.firstSeen = append(a.firstSeen, d.Index)
	}

	// identity fields: first non-empty writer wins
	if buf.id == "" {
		buf.id = d.Id
	}
	if buf.name == "" {
		buf.name = d.Name
	}
	if buf.typ == "" {
		buf.typ = d.Type
	}

	buf.args.WriteString(d.Arguments)
}

// ConsumeChunk applies the first choice of a transport chunk and records
// its finish reason and usage when present.
func (a *Accumulator) ConsumeChunk(chunk *StreamResponseChunk) {
	if chunk == nil {
		return
	}

	for _, choice := range chunk.Choices {
		if choice.Index != 0 {
			continue
		}
		a.Consume(choice.Delta)
		if choice.FinishReason != "" {
			a.finishReason = choice.FinishReason
		}
	}

	if chunk.Usage != nil {
		a.usage = *chunk.Usage
	}
}

// Finalize returns the response assembled so far. It does not reset the
// accumulator and may be called any number of times.
func (a *Accumulator) Finalize() AssembledResponse {
	calls := make(map[int64]AssembledToolCall, len(a.calls))
	for idx, buf := range a.calls {
		calls[idx] = AssembledToolCall{
			Index:     buf.index,
			Id:        buf.id,
			Type:      buf.typ,
			Name:      buf.name,
			Arguments: buf.args.String(),
		}
	}

	return AssembledResponse{
		Content:          a.content.String(),
		ReasoningContent: a.reasoning.String(),
		ToolCalls: ToolCallMap{
			byIndex:   calls,
			firstSeen: slices.Clone(a.firstSeen),
		},
		FinishReason: a.finishReason,
		Usage:        a.usage,
	}
}

// ReadStream drains ch into an accumulator. onFragment, if not nil, sees
// every non-empty fragment as it arrives (for live display). The first
// chunk carrying an error stops the read; the partial response is returned
// alongside the error.
func ReadStream(ch <-chan *StreamResponseChunk, onFragment func(Fragment)) (AssembledResponse, error) {
	acc := NewAccumulator()
	for chunk := range ch {
		if chunk.Err != nil {
			return acc.Finalize(), chunk.Err
		}

		acc.ConsumeChunk(chunk)
		if onFragment != nil {
			for _, choice := range chunk.Choices {
				if choice.Index == 0 && !choice.Delta.IsEmpty() {
					onFragment(choice.Delta)
				}
			}
		}
	}

	return acc.Finalize(), nil
}
