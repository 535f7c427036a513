// Package factory builds the chat provider matching the configured api
// compatibility of the Z.AI endpoint.
package factory

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/ryanreadbooks/zaikit/llm"
	"github.com/ryanreadbooks/zaikit/llm/factory/anthropic"
	"github.com/ryanreadbooks/zaikit/llm/factory/openai"
)

const (
	DefaultAPIKeyEnv  = "Z_AI_API_KEY"
	DefaultBaseURLEnv = "ZAIKIT_BASE_URL"
)

type Compatibility string

const (
	CompatibilityOpenAI    Compatibility = "openai"
	CompatibilityAnthropic Compatibility = "anthropic"
)

type settings struct {
	compatibility    Compatibility
	apiKey           string
	baseURL          string
	anthropicBaseURL string
	timeout          time.Duration
}

type Option func(*settings)

func WithCompatibility(compatibility Compatibility) Option {
	return func(s *settings) { s.compatibility = compatibility }
}

func WithAPIKey(apiKey string) Option {
	return func(s *settings) { s.apiKey = apiKey }
}

func WithBaseURL(baseURL string) Option {
	return func(s *settings) { s.baseURL = baseURL }
}

// WithAnthropicBaseURL sets the endpoint used under CompatibilityAnthropic.
// Unset, the anthropic provider talks to the base url.
func WithAnthropicBaseURL(baseURL string) Option {
	return func(s *settings) { s.anthropicBaseURL = baseURL }
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) { s.timeout = timeout }
}

// unset key and base url fall back to the environment
func resolve(opts []Option) settings {
	s := settings{compatibility: CompatibilityOpenAI}
	for _, opt := range opts {
		opt(&s)
	}
	s.apiKey = cmp.Or(s.apiKey, os.Getenv(DefaultAPIKeyEnv))
	s.baseURL = cmp.Or(s.baseURL, os.Getenv(DefaultBaseURLEnv))
	return s
}

func NewLLM(opts ...Option) (llm.LLM, error) {
	s := resolve(opts)

	switch s.compatibility {
	case "":
		return nil, fmt.Errorf("compatibility is required")
	case CompatibilityOpenAI:
		return newOpenAI(s)
	case CompatibilityAnthropic:
		return anthropic.New(anthropic.Config{
			ApiKey:  s.apiKey,
			BaseURL: cmp.Or(s.anthropicBaseURL, s.baseURL),
			Timeout: s.timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported compatibility: %s", s.compatibility)
	}
}

// NewOpenAI always builds the openai compatible provider, which also
// serves image generation and transcription.
func NewOpenAI(opts ...Option) (*openai.OpenAI, error) {
	return newOpenAI(resolve(opts))
}

func newOpenAI(s settings) (*openai.OpenAI, error) {
	return openai.New(openai.Config{
		ApiKey:  s.apiKey,
		BaseURL: s.baseURL,
		Timeout: s.timeout,
	})
}
