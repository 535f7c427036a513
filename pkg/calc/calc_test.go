package calc

import (
	"errors"
	"math"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"2 + 3 * 4", 14},
		{"(2+3)*4", 20},
		{"10 / 4", 2.5},
		{"2 ** 10", 1024},
		{"2** 3", 8},
		{"2 ** 1023 / 2 ** 1023", 1},
		{"2 ** 3 ** 2", 512},
		{"2 * 3 ** 2", 18},
		{"-2 ** 2", -4},
		{"(-2) ** 2", 4},
		{"2 ** -1", 0.5},
		{"7 % 3", 1},
		{"-7 % 3", 2},
		{"7 % -3", -2},
		{"+3", 3},
		{"-(-3)", 3},
		{"1e3 + 0.5", 1000.5},
		{"0x10", 16},
		{"100 / 5 / 2", 10},
		{"(1 + 2) * (3 + 4) - 5", 16},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateFloat(t *testing.T) {
	got, err := Evaluate("5 * 12.99 * 1.08")
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if math.Abs(got-70.146) > 1e-9 {
		t.Errorf("Evaluate = %v, want 70.146", got)
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		expr string
		want []error
	}{
		{"10 / 0", []error{ErrDivisionByZero}},
		{"10 % 0", []error{ErrDivisionByZero}},
		{"0 ** -1", []error{ErrDivisionByZero}},
		{"import os", []error{ErrInvalidSyntax, ErrUnsupportedOperation}},
		{"", []error{ErrInvalidSyntax}},
		{"2 +", []error{ErrInvalidSyntax}},
		{"(1 + 2", []error{ErrInvalidSyntax}},
		{"x + 1", []error{ErrUnsupportedOperation}},
		{"abs(-1)", []error{ErrUnsupportedOperation}},
		{"os.Exit(1)", []error{ErrUnsupportedOperation}},
		{"1 < 2", []error{ErrUnsupportedOperation}},
		{"1 << 2", []error{ErrUnsupportedOperation}},
		{"3 & 1", []error{ErrUnsupportedOperation}},
		{"!1", []error{ErrUnsupportedOperation}},
		{"7 // 2", []error{ErrUnsupportedOperation}},
		{"1 /* x */", []error{ErrUnsupportedOperation}},
		{"'a'", []error{ErrUnsupportedOperation}},
		{`"1" + "2"`, []error{ErrUnsupportedOperation}},
		{"*2", []error{ErrUnsupportedOperation}},
		{"(-8) ** 0.5", []error{ErrUnsupportedOperation}},
		{"2 * * 3", []error{ErrInvalidSyntax}},
		{"2 *\t*3", []error{ErrInvalidSyntax}},
		{"2 ** 1024", []error{ErrOverflow}},
		{"-(10 ** 400)", []error{ErrOverflow}},
		{"1e308 * 10", []error{ErrOverflow}},
		{"1e308 + 1e308", []error{ErrOverflow}},
		{"1e308 / 0.1", []error{ErrOverflow}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Evaluate(tt.expr)
			if err == nil {
				t.Fatalf("Evaluate(%q) expected error", tt.expr)
			}

			for _, want := range tt.want {
				if errors.Is(err, want) {
					return
				}
			}
			t.Errorf("Evaluate(%q) error = %v, want one of %v", tt.expr, err, tt.want)
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{14, "14"},
		{-4, "-4"},
		{2.5, "2.5"},
		{70.146, "70.146"},
		{1e20, "1e+20"},
	}

	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
