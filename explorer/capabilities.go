package explorer

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ryanreadbooks/zaikit/agent/tools"
	"github.com/ryanreadbooks/zaikit/component/tool"
	"github.com/ryanreadbooks/zaikit/llm/schema"
	"github.com/ryanreadbooks/zaikit/search"
)

type WeatherLookupInput struct {
	Location string `json:"location" jsonschema:"description=The city name such as Beijing or New York"`
	Unit     string `json:"unit,omitempty" jsonschema:"enum=celsius,enum=fahrenheit,description=Temperature unit preference"`
}

type WeatherLookupOutput struct {
	Location      string `json:"location"`
	Unit          string `json:"unit"`
	Source        string `json:"source"`
	SearchResults string `json:"search_results"`
}

// weatherLookup answers weather questions from a recent web search rather
// than a simulation.
func weatherLookup(searcher search.Searcher) tool.Invoker {
	return tool.NewInvoker(tool.Info{
		Name:        "get_current_weather",
		Description: "Get real-time weather for a location using web search",
	}, func(ctx context.Context, input WeatherLookupInput) (*WeatherLookupOutput, error) {
		if searcher == nil {
			return nil, errors.New("web search is not configured")
		}

		results, err := searcher.Search(ctx, search.Query{
			Text:    fmt.Sprintf("current weather in %s temperature", input.Location),
			Count:   3,
			Recency: "oneDay",
		})
		if err != nil {
			return nil, fmt.Errorf("weather search failed: %w", err)
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("no search results found for %s", input.Location)
		}

		var b strings.Builder
		for _, r := range results {
			if r.Snippet != "" {
				b.WriteString(r.Snippet)
				b.WriteByte(' ')
			}
		}
		return &WeatherLookupOutput{
			Location:      input.Location,
			Unit:          cmp.Or(input.Unit, "celsius"),
			Source:        "web_search (real-time)",
			SearchResults: truncate(strings.TrimSpace(b.String()), 500),
		}, nil
	})
}

// FunctionTools is the registry used by the function calling example.
func FunctionTools(env *Env) *tool.Registry {
	return tool.NewRegistry(
		weatherLookup(env.Searcher),
		tools.CurrentDatetime(env.Now),
		tools.Calculate(),
	)
}

type FunctionCallingOptions struct {
	Query string
	// Force makes the model call this function first.
	Force  string
	Stream bool
}

// FunctionCalling lets the model pick tools, runs them locally and asks
// for a final answer over the results.
func FunctionCalling(ctx context.Context, env *Env, opts FunctionCallingOptions) error {
	query := cmp.Or(opts.Query, "What's the weather in Beijing and what time is it?")
	reg := FunctionTools(env)

	env.Out.Section("Function Calling")
	env.Out.KV("Model", env.Config.Models.LLM)
	env.Out.KV("Query", query)
	printTools(env, reg)

	choice := schema.AutoToolChoice()
	if opts.Force != "" {
		if _, ok := reg.Get(opts.Force); !ok {
			return fmt.Errorf("unknown function %q", opts.Force)
		}
		choice = schema.ForceToolChoice(opts.Force)
		env.Out.Muted("Forcing use of " + opts.Force)
	}

	messages := []schema.MessageParam{schema.NewUserMessageParam(query)}
	req := env.chatRequest(env.Config.Models.LLM, messages...)
	req.Tools = reg.Params()
	req.ToolChoice = choice
	req.Temperature = env.Config.Defaults.Temperature

	msg, err := env.turn(ctx, "Sending request with tools", req, opts.Stream)
	if err != nil {
		return fmt.Errorf("function calling: %w", err)
	}
	if !msg.HasToolCalls() {
		env.Out.Answer("Response (no tools used)", msg.Content)
		return nil
	}

	env.Out.Textf("Model requested %d function call(s):", len(msg.ToolCalls))
	messages = append(messages, msg.Param())
	for i := range msg.ToolCalls {
		tc := &msg.ToolCalls[i]
		env.Out.ToolCall(tc.Function.Name, tc.Function.Arguments)

		result, err := reg.Invoke(ctx, tc.Function.Name, tc.Function.Arguments)
		if err != nil {
			return err
		}
		env.Out.ToolResult(tc.Function.Name, result)
		messages = append(messages, schema.NewToolMessageParam(tc.Id, result))
	}

	final := env.chatRequest(env.Config.Models.LLM, messages...)
	final.Tools = reg.Params()
	final.ToolChoice = schema.AutoToolChoice()
	final.Temperature = env.Config.Defaults.Temperature

	answer, err := env.turn(ctx, "Generating final response", final, opts.Stream)
	if err != nil {
		return fmt.Errorf("function calling final answer: %w", err)
	}
	if opts.Stream {
		env.Out.Remember(answer.Content)
		return nil
	}
	env.Out.Answer("Final Response", answer.Content)
	return nil
}

func printTools(env *Env, reg *tool.Registry) {
	infos := reg.Infos()
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{info.Name, truncate(info.Description, 60)})
	}
	env.Out.Text("")
	env.Out.Table([]string{"Tool", "Description"}, rows)
	env.Out.Text("")
}

type StructuredKind string

const (
	StructuredProduct    StructuredKind = "product"
	StructuredPerson     StructuredKind = "person"
	StructuredEvent      StructuredKind = "event"
	StructuredExtraction StructuredKind = "extraction"
	// StructuredValidation decodes a product into a typed value and
	// checks it.
	StructuredValidation StructuredKind = "validation"
)

var StructuredKinds = []StructuredKind{
	StructuredProduct, StructuredPerson, StructuredEvent, StructuredExtraction, StructuredValidation,
}

type structuredExample struct {
	prompt string
	hint   string
}

const supportMessage = `Hi, my name is Sarah Chen and I ordered a blue ceramic vase (order #A-88213) on March 3rd.
It arrived yesterday with a crack along the base. I paid $64.50 with my Visa card.
Please send a replacement to 42 Harbor Lane, Apt 5B, Portland, OR 97205.
You can reach me at sarah.chen@example.com or (503) 555-0142.`

var structuredExamples = map[StructuredKind]structuredExample{
	StructuredProduct: {
		prompt: "Generate a product listing for a high-end wireless headphone.",
		hint: `Return a JSON object with:
- name: product name
- price: price in USD (number)
- category: product category
- features: array of feature strings
- specifications: object with tech specs
- rating: number from 1-5`,
	},
	StructuredPerson: {
		prompt: "Create a fictional character profile for a detective in a mystery novel.",
		hint: `Return a JSON object with:
- name: full name
- age: number
- occupation: job title
- background: brief history
- skills: array of abilities
- personality_traits: array of traits`,
	},
	StructuredEvent: {
		prompt: "Generate details for a tech conference event.",
		hint: `Return a JSON object with:
- name: event name
- date: ISO date
- location: city and venue
- speakers: array of objects with name and topic
- topics: array of strings
- ticket_price: number`,
	},
	StructuredExtraction: {
		prompt: "Extract all relevant information from this customer support message:\n\n" + supportMessage,
		hint: `Return a JSON object with:
- customer_name
- order_number
- product
- issue
- amount_paid: number
- payment_method
- email
- phone
- shipping_address: object with street, apartment, city, state, zip`,
	},
}

// StructuredOutput asks for a json_object response and pretty prints it.
func StructuredOutput(ctx context.Context, env *Env, kind StructuredKind, prompt string) error {
	kind = cmp.Or(kind, StructuredProduct)
	example, ok := structuredExamples[kind]
	if kind == StructuredValidation {
		example, ok = structuredExamples[StructuredProduct], true
	}
	if !ok {
		return fmt.Errorf("unknown structured output kind %q", kind)
	}
	prompt = cmp.Or(prompt, example.prompt)

	env.Out.Section("Structured Output")
	env.Out.KV("Model", env.Config.Models.LLM)
	env.Out.KV("Schema Type", kind)
	env.Out.KV("Prompt", truncate(oneLine(prompt), 100))

	req := env.chatRequest(env.Config.Models.LLM,
		schema.NewUserMessageParam(prompt+"\n\n"+example.hint+"\n\nReturn ONLY valid JSON, no other text."))
	req.ResponseFormat = schema.ResponseFormatJSONObject
	req.Thinking = schema.DisableThinking()

	msg, usage, err := env.complete(ctx, "Requesting structured output", req)
	if err != nil {
		return fmt.Errorf("structured output: %w", err)
	}
	env.usage(usage)

	raw := StripCodeFence(msg.Content)
	if kind == StructuredValidation {
		return validateProduct(env, raw)
	}

	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		env.Out.Warn(fmt.Sprintf("Could not parse as JSON: %v", err))
		env.Out.Text(msg.Content)
		return nil
	}
	env.Out.JSON(parsed)
	env.Out.Remember(raw)
	return nil
}

type Product struct {
	Name           string         `json:"name"`
	Price          float64        `json:"price"`
	Category       string         `json:"category"`
	Features       []string       `json:"features"`
	Specifications map[string]any `json:"specifications"`
	Rating         float64        `json:"rating"`
}

// Validate reports every field that breaks the listing rules.
func (p *Product) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, errors.New("name is empty"))
	}
	if p.Price <= 0 {
		errs = append(errs, fmt.Errorf("price %v is not positive", p.Price))
	}
	if p.Category == "" {
		errs = append(errs, errors.New("category is empty"))
	}
	if len(p.Features) == 0 {
		errs = append(errs, errors.New("features are missing"))
	}
	if p.Rating < 1 || p.Rating > 5 {
		errs = append(errs, fmt.Errorf("rating %v is outside 1-5", p.Rating))
	}
	return errors.Join(errs...)
}

func validateProduct(env *Env, raw string) error {
	var p Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return fmt.Errorf("response does not match the product shape: %w", err)
	}

	env.Out.Table([]string{"Field", "Value"}, [][]string{
		{"name", p.Name},
		{"price", fmt.Sprintf("%.2f", p.Price)},
		{"category", p.Category},
		{"features", fmt.Sprintf("%d items", len(p.Features))},
		{"specifications", fmt.Sprintf("%d entries", len(p.Specifications))},
		{"rating", fmt.Sprint(p.Rating)},
	})

	if err := p.Validate(); err != nil {
		env.Out.Warn("validation failed:\n" + err.Error())
		return nil
	}
	env.Out.Muted("product passed validation")
	env.Out.Remember(raw)
	return nil
}
