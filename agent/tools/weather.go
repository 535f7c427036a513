package tools

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/ryanreadbooks/zaikit/component/tool"
)

type WeatherInput struct {
	Location string `json:"location" jsonschema:"description=City name"`
	Unit     string `json:"unit,omitempty" jsonschema:"description=Temperature unit,enum=celsius,enum=fahrenheit"`
}

type WeatherOutput struct {
	Location    string `json:"location"`
	Temperature int    `json:"temperature"`
	Unit        string `json:"unit"`
	Condition   string `json:"condition"`
	Humidity    int    `json:"humidity"`
	WindSpeed   int    `json:"wind_speed"`
	WindUnit    string `json:"wind_unit"`
	Simulated   bool   `json:"simulated"`
}

var weatherConditions = []string{"Sunny", "Cloudy", "Partly Cloudy", "Rainy", "Overcast"}

// SimulateWeather returns made up weather that is stable per location.
func SimulateWeather(location, unit string) *WeatherOutput {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(location))))
	seed := h.Sum64()
	r := rand.New(rand.NewPCG(seed, seed>>1))

	if unit == "" {
		unit = "celsius"
	}
	temp := 10 + r.IntN(21)
	if unit == "fahrenheit" {
		temp = int(math.Round(float64(temp)*9/5 + 32))
	}

	return &WeatherOutput{
		Location:    location,
		Temperature: temp,
		Unit:        unit,
		Condition:   weatherConditions[r.IntN(len(weatherConditions))],
		Humidity:    30 + r.IntN(51),
		WindSpeed:   5 + r.IntN(21),
		WindUnit:    "km/h",
		Simulated:   true,
	}
}

func Weather() tool.Invoker {
	return tool.NewInvoker(tool.Info{
		Name:        "get_weather",
		Description: "Get current weather conditions for a location",
	}, func(ctx context.Context, input WeatherInput) (*WeatherOutput, error) {
		return SimulateWeather(input.Location, input.Unit), nil
	})
}
