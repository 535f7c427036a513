package estimator

import (
	"testing"

	"github.com/ryanreadbooks/zaikit/llm/schema"
)

func TestEstimateToken(t *testing.T) {
	if got := EstimateToken(""); got != 0 {
		t.Errorf("empty = %d", got)
	}

	short := EstimateToken("Hello world, are you ok?")
	long := EstimateToken("Hello world, are you ok? Hello world, are you ok? Hello world, are you ok?")
	if short <= 0 || long <= short {
		t.Errorf("short=%d long=%d", short, long)
	}
}

func TestEstimateRequestToken(t *testing.T) {
	type weatherArgs struct {
		Location string `json:"location"`
	}

	req := &schema.Request{
		Messages: []schema.MessageParam{
			schema.NewSystemMessageParam("Hello, you are a smart agent"),
			schema.NewUserMessageParam("What are your skills"),
			schema.NewAssistantMessageParam("Wonderful",
				[]schema.CompletionToolCall{
					{
						Id:   "qwoi",
						Type: schema.ToolCallTypeFunction,
						Function: schema.CompletionToolCallFunction{
							Name:      "abc",
							Arguments: "{\"name\": \"ryan\", \"age\": 19}",
						},
					},
				},
				"Let me think"),
			schema.NewToolMessageParam("qwoi", "done"),
		},
		Tools: []schema.ToolParam{
			schema.NewToolParam[weatherArgs]("get_weather", "weather of a location"),
		},
	}

	est, err := RoughEstimator{}.Estimate(t.Context(), req)
	if err != nil {
		t.Fatal(err)
	}
	if est <= 0 {
		t.Fatalf("estimate = %d", est)
	}

	if n, ok := Fits(req, 200000); !ok || n != est {
		t.Errorf("Fits = %d %v", n, ok)
	}
	if _, ok := Fits(req, 1); ok {
		t.Error("want overflow for a one token window")
	}
}
