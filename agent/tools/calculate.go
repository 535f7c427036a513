package tools

import (
	"context"

	"github.com/ryanreadbooks/zaikit/component/tool"
	"github.com/ryanreadbooks/zaikit/pkg/calc"
)

type CalculateInput struct {
	Expression string `json:"expression" jsonschema:"description=Arithmetic expression to evaluate such as (2 + 3) * 4 ** 2"`
}

type CalculateOutput struct {
	Expression string  `json:"expression"`
	Result     float64 `json:"result"`
	Formatted  string  `json:"formatted"`
}

func Calculate() tool.Invoker {
	return tool.NewInvoker(tool.Info{
		Name:        "calculate",
		Description: "Evaluate arithmetic expressions. Supports numbers, parentheses, unary +/-, +, -, *, /, % and ** (power).",
	}, func(ctx context.Context, input CalculateInput) (*CalculateOutput, error) {
		v, err := calc.Evaluate(input.Expression)
		if err != nil {
			return nil, err
		}

		return &CalculateOutput{
			Expression: input.Expression,
			Result:     v,
			Formatted:  calc.Format(v),
		}, nil
	})
}
