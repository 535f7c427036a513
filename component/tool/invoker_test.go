package tool

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type addInput struct {
	A int `json:"a" jsonschema:"description=first operand"`
	B int `json:"b"`
}

func newAdd() Invoker {
	return NewInvoker(Info{Name: "add", Description: "add two ints"}, func(_ context.Context, in addInput) (int, error) {
		if in.A < 0 {
			return 0, errors.New("negative")
		}
		return in.A + in.B, nil
	})
}

func TestInvoke(t *testing.T) {
	tests := []struct {
		name        string
		args        string
		wantSuccess bool
		wantData    string
		wantErr     string
	}{
		{"ok", `{"a":1,"b":2}`, true, "3", ""},
		{"empty args", "", true, "0", ""},
		{"malformed", `{"a":`, false, "", "malformed"},
		{"tool failure", `{"a":-1}`, false, "", "negative"},
	}

	inv := newAdd()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := inv.Invoke(t.Context(), tt.args)
			if err != nil {
				t.Fatal(err)
			}
			res, err := ParseResult(out)
			if err != nil {
				t.Fatal(err)
			}
			if res.Success != tt.wantSuccess || res.Data != tt.wantData {
				t.Errorf("got %+v", res)
			}
			if !strings.Contains(res.Err, tt.wantErr) {
				t.Errorf("err = %q, want %q", res.Err, tt.wantErr)
			}
		})
	}
}

func TestInvokeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := newAdd().Invoke(ctx, `{}`); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(newAdd())

	params := r.Params()
	if len(params) != 1 || params[0].Name() != "add" {
		t.Fatalf("params = %+v", params)
	}
	if params[0].Function.Parameters["type"] != "object" || params[0].Function.Parameters["properties"] == nil {
		t.Errorf("parameters = %+v", params[0].Function.Parameters)
	}

	out, err := r.Invoke(t.Context(), "nope", "{}")
	if err != nil {
		t.Fatal(err)
	}
	if res, _ := ParseResult(out); res.Success || !strings.Contains(res.Err, "unknown function") {
		t.Errorf("got %s", out)
	}
}
