package schema

import (
	"errors"
	"reflect"
	"slices"
	"testing"
)

func feed(fragments ...Fragment) AssembledResponse {
	acc := NewAccumulator()
	for _, f := range fragments {
		acc.Consume(f)
	}
	return acc.Finalize()
}

func TestAccumulatorEmpty(t *testing.T) {
	got := NewAccumulator().Finalize()
	if got.Content != "" || got.ReasoningContent != "" {
		t.Fatalf("want empty text, got %q %q", got.Content, got.ReasoningContent)
	}
	if got.ToolCalls.Len() != 0 || got.HasToolCalls() {
		t.Fatalf("want no tool calls, got %d", got.ToolCalls.Len())
	}
	if len(got.ToolCalls.All()) != 0 || len(got.ToolCalls.Indices()) != 0 {
		t.Fatal("want empty iteration")
	}
}

func TestAccumulatorEmptyFragment(t *testing.T) {
	got := feed(Fragment{}, Fragment{Content: String("hi")}, Fragment{})
	if got.Content != "hi" {
		t.Fatalf("got %q, want %q", got.Content, "hi")
	}
}

func TestAccumulatorSplitInvariance(t *testing.T) {
	whole := feed(
		Fragment{ReasoningContent: String("let me think")},
		Fragment{Content: String("Hello, world")},
	)
	split := feed(
		Fragment{ReasoningContent: String("let ")},
		Fragment{ReasoningContent: String("me think")},
		Fragment{Content: String("Hello")},
		Fragment{Content: String("")},
		Fragment{Content: String(", world")},
	)

	if !reflect.DeepEqual(whole, split) {
		t.Fatalf("split stream differs:\nwhole=%+v\nsplit=%+v", whole, split)
	}
}

func TestAccumulatorToolCallInterleaving(t *testing.T) {
	a := []Fragment{
		{ToolCalls: []ToolCallDelta{{Index: 0, Id: "call_a", Name: "calculate"}}},
		{ToolCalls: []ToolCallDelta{{Index: 0, Arguments: `{"expression":`}}},
		{ToolCalls: []ToolCallDelta{{Index: 0, Arguments: `"2+3"}`}}},
	}
	b := []Fragment{
		{ToolCalls: []ToolCallDelta{{Index: 1, Id: "call_b", Name: "get_weather"}}},
		{ToolCalls: []ToolCallDelta{{Index: 1, Arguments: `{"location":"Paris"}`}}},
	}

	sequential := feed(append(slices.Clone(a), b...)...)
	interleaved := feed(b[0], a[0], a[1], b[1], a[2])

	for _, idx := range []int64{0, 1} {
		want, _ := sequential.ToolCalls.Get(idx)
		got, ok := interleaved.ToolCalls.Get(idx)
		if !ok {
			t.Fatalf("index %d missing", idx)
		}
		if got != want {
			t.Errorf("index %d: got %+v, want %+v", idx, got, want)
		}
	}

	call, _ := interleaved.ToolCalls.Get(0)
	if call.Arguments != `{"expression":"2+3"}` {
		t.Errorf("got args %q", call.Arguments)
	}

	// iteration is by index, not by arrival
	if got := interleaved.ToolCalls.Indices(); !slices.Equal(got, []int64{0, 1}) {
		t.Errorf("indices = %v", got)
	}
	if got := interleaved.ToolCalls.FirstSeen(); !slices.Equal(got, []int64{1, 0}) {
		t.Errorf("first seen = %v", got)
	}
}

func TestAccumulatorSparseIndices(t *testing.T) {
	got := feed(
		Fragment{ToolCalls: []ToolCallDelta{{Index: 7, Name: "b"}}},
		Fragment{ToolCalls: []ToolCallDelta{{Index: 2, Name: "a"}}},
	)

	all := got.ToolCalls.All()
	if len(all) != 2 || all[0].Index != 2 || all[1].Index != 7 {
		t.Fatalf("got %+v", all)
	}
	if _, ok := got.ToolCalls.Get(0); ok {
		t.Fatal("index 0 should not exist")
	}
}

func TestAccumulatorReservesSlot(t *testing.T) {
	acc := NewAccumulator()
	acc.Consume(Fragment{ToolCalls: []ToolCallDelta{{Index: 0}}})

	got := acc.Finalize()
	if got.ToolCalls.Len() != 1 {
		t.Fatalf("want reserved slot, got %d", got.ToolCalls.Len())
	}

	acc.Consume(Fragment{ToolCalls: []ToolCallDelta{{Index: 0, Id: "call_1", Name: "calculate", Arguments: "{}"}}})
	call, _ := acc.Finalize().ToolCalls.Get(0)
	if call.Id != "call_1" || call.Name != "calculate" || call.Arguments != "{}" {
		t.Fatalf("late identity not applied: %+v", call)
	}
}

func TestAccumulatorFirstWriterWins(t *testing.T) {
	got := feed(
		Fragment{ToolCalls: []ToolCallDelta{{Index: 0, Id: "first", Name: "calculate", Arguments: "{"}}},
		Fragment{ToolCalls: []ToolCallDelta{{Index: 0, Id: "second", Name: "other", Arguments: "}"}}},
	)

	call, _ := got.ToolCalls.Get(0)
	if call.Id != "first" || call.Name != "calculate" {
		t.Fatalf("identity overwritten: %+v", call)
	}
	if call.Arguments != "{}" {
		t.Fatalf("args = %q, want {}", call.Arguments)
	}
}

func TestAccumulatorFinalizeIdempotent(t *testing.T) {
	acc := NewAccumulator()
	acc.Consume(Fragment{
		Content:   String("ok"),
		ToolCalls: []ToolCallDelta{{Index: 0, Name: "x", Arguments: `{"a":1}`}},
	})

	first := acc.Finalize()
	second := acc.Finalize()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("finalize not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestParseArguments(t *testing.T) {
	var args struct {
		Expression string `json:"expression"`
	}

	ok := AssembledToolCall{Name: "calculate", Arguments: `{"expression":"1+1"}`}
	if err := ok.ParseArguments(&args); err != nil {
		t.Fatal(err)
	}
	if args.Expression != "1+1" {
		t.Fatalf("got %q", args.Expression)
	}

	empty := AssembledToolCall{Name: "get_current_datetime"}
	if err := empty.ParseArguments(&args); err != nil {
		t.Fatalf("empty args should parse, got %v", err)
	}

	bad := AssembledToolCall{Name: "calculate", Arguments: `{"expression":`}
	if err := bad.ParseArguments(&args); !errors.Is(err, ErrMalformedArguments) {
		t.Fatalf("want ErrMalformedArguments, got %v", err)
	}
}

func TestAssembledResponseMessage(t *testing.T) {
	got := feed(
		Fragment{Content: String("done")},
		Fragment{ToolCalls: []ToolCallDelta{{Index: 1, Id: "b", Name: "nb"}}},
		Fragment{ToolCalls: []ToolCallDelta{{Index: 0, Id: "a", Name: "na"}}},
	)

	msg := got.Message()
	if msg.Role != RoleAssistant || msg.Content != "done" {
		t.Fatalf("got %+v", msg)
	}
	if len(msg.ToolCalls) != 2 || msg.ToolCalls[0].Id != "a" || msg.ToolCalls[1].Id != "b" {
		t.Fatalf("tool calls out of order: %+v", msg.ToolCalls)
	}
	if msg.ToolCalls[0].Type != ToolCallTypeFunction {
		t.Fatalf("type = %q", msg.ToolCalls[0].Type)
	}
}

func TestReadStream(t *testing.T) {
	usage := &CompletionUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5}

	ch := make(chan *StreamResponseChunk, 4)
	ch <- &StreamResponseChunk{Choices: []StreamChoice{{Delta: Fragment{Content: String("Hel")}}}}
	ch <- &StreamResponseChunk{Choices: []StreamChoice{{Delta: Fragment{Content: String("lo")}}}}
	ch <- &StreamResponseChunk{Choices: []StreamChoice{{FinishReason: FinishReasonStop}}}
	ch <- &StreamResponseChunk{Usage: usage}
	close(ch)

	var seen int
	got, err := ReadStream(ch, func(Fragment) { seen++ })
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "Hello" || !got.FinishReason.IsStopped() || got.Usage != *usage {
		t.Fatalf("got %+v", got)
	}
	if seen != 2 {
		t.Fatalf("callback saw %d fragments, want 2", seen)
	}
}

func TestReadStreamError(t *testing.T) {
	errBroken := errors.New("connection reset")

	ch := make(chan *StreamResponseChunk, 3)
	ch <- &StreamResponseChunk{Choices: []StreamChoice{{Delta: Fragment{Content: String("par")}}}}
	ch <- &StreamResponseChunk{Err: errBroken}
	ch <- &StreamResponseChunk{Choices: []StreamChoice{{Delta: Fragment{Content: String("tial")}}}}
	close(ch)

	got, err := ReadStream(ch, nil)
	if !errors.Is(err, errBroken) {
		t.Fatalf("want %v, got %v", errBroken, err)
	}
	if got.Content != "par" {
		t.Fatalf("partial content = %q", got.Content)
	}
}
