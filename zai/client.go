// Package zai calls the Z.AI platform endpoints that have no OpenAI
// equivalent: video generation, async results, the web search API and
// streaming transcription.
package zai

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL         = "https://api.z.ai/api/paas/v4/"
	DefaultVideoPath       = "videos/generations"
	DefaultAsyncResultPath = "async-result"
	DefaultWebSearchPath   = "web_search"
	DefaultAudioPath       = "audio/transcriptions"
)

type Config struct {
	ApiKey  string
	BaseURL string
	Timeout time.Duration

	// relative to BaseURL, defaults above apply when empty
	VideoPath       string
	AsyncResultPath string
	WebSearchPath   string
	AudioPath       string
}

// Client shares the openai-go transport (auth, base url, error decoding)
// and issues raw requests against Z.AI specific paths.
type Client struct {
	cli *openai.Client
	cfg Config
}

func New(cfg Config) (*Client, error) {
	if cfg.ApiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	cfg.VideoPath = orDefault(cfg.VideoPath, DefaultVideoPath)
	cfg.AsyncResultPath = orDefault(cfg.AsyncResultPath, DefaultAsyncResultPath)
	cfg.WebSearchPath = orDefault(cfg.WebSearchPath, DefaultWebSearchPath)
	cfg.AudioPath = orDefault(cfg.AudioPath, DefaultAudioPath)

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.ApiKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(&http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}),
		option.WithMaxRetries(0),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	cli := openai.NewClient(opts...)
	return &Client{cli: &cli, cfg: cfg}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return strings.Trim(v, "/")
}

func newRequestID() string {
	return uuid.NewString()
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	return c.cli.Post(ctx, path, body, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.cli.Get(ctx, path, nil, out)
}
