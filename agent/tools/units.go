package tools

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ryanreadbooks/zaikit/component/tool"
)

type ConvertUnitsInput struct {
	Value    float64 `json:"value" jsonschema:"description=Value to convert"`
	FromUnit string  `json:"from_unit" jsonschema:"description=Original unit"`
	ToUnit   string  `json:"to_unit" jsonschema:"description=Target unit"`
}

type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type ConvertUnitsOutput struct {
	Original  Quantity `json:"original"`
	Converted Quantity `json:"converted"`
}

type unitPair struct{ from, to string }

var conversions = map[unitPair]func(float64) float64{
	{"km", "miles"}:           func(x float64) float64 { return x * 0.621371 },
	{"miles", "km"}:           func(x float64) float64 { return x * 1.60934 },
	{"m", "ft"}:               func(x float64) float64 { return x * 3.28084 },
	{"ft", "m"}:               func(x float64) float64 { return x / 3.28084 },
	{"celsius", "fahrenheit"}: func(x float64) float64 { return x*9/5 + 32 },
	{"fahrenheit", "celsius"}: func(x float64) float64 { return (x - 32) * 5 / 9 },
	{"kg", "lbs"}:             func(x float64) float64 { return x * 2.20462 },
	{"lbs", "kg"}:             func(x float64) float64 { return x / 2.20462 },
}

func ConvertUnit(value float64, from, to string) (float64, error) {
	fn, ok := conversions[unitPair{strings.ToLower(from), strings.ToLower(to)}]
	if !ok {
		return 0, fmt.Errorf("cannot convert from %s to %s", from, to)
	}
	return math.Round(fn(value)*100) / 100, nil
}

func ConvertUnits() tool.Invoker {
	return tool.NewInvoker(tool.Info{
		Name:        "convert_units",
		Description: "Convert between units (length: km/miles, m/ft; temperature: celsius/fahrenheit; weight: kg/lbs)",
	}, func(ctx context.Context, input ConvertUnitsInput) (*ConvertUnitsOutput, error) {
		v, err := ConvertUnit(input.Value, input.FromUnit, input.ToUnit)
		if err != nil {
			return nil, err
		}

		return &ConvertUnitsOutput{
			Original:  Quantity{Value: input.Value, Unit: input.FromUnit},
			Converted: Quantity{Value: v, Unit: input.ToUnit},
		}, nil
	})
}
