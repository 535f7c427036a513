// Package httpapi calls the Z.AI REST endpoints with hand built HTTP
// requests, without any SDK in between.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 60 * time.Second

type Endpoints struct {
	Chat        string
	Images      string
	Videos      string
	AsyncResult string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		Chat:        "chat/completions",
		Images:      "images/generations",
		Videos:      "videos/generations",
		AsyncResult: "async-result",
	}
}

type Config struct {
	ApiKey    string
	BaseURL   string
	Timeout   time.Duration
	Endpoints Endpoints
}

type Client struct {
	apiKey    string
	baseURL   string
	endpoints Endpoints
	http      *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.ApiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	def := DefaultEndpoints()
	eps := cfg.Endpoints
	if eps.Chat == "" {
		eps.Chat = def.Chat
	}
	if eps.Images == "" {
		eps.Images = def.Images
	}
	if eps.Videos == "" {
		eps.Videos = def.Videos
	}
	if eps.AsyncResult == "" {
		eps.AsyncResult = def.AsyncResult
	}

	return &Client{
		apiKey:    cfg.ApiKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		endpoints: eps,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// URL joins an endpoint path onto the base url.
func (c *Client) URL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// APIError is a non 2xx answer from the api.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.StatusCode)
	}
	return fmt.Sprintf("http status %d body=%s", e.StatusCode, e.Body)
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends the request and returns the raw response body of a 2xx answer.
func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return raw, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return raw, fmt.Errorf("decode response: %w", err)
		}
	}
	return raw, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return raw, fmt.Errorf("decode response: %w", err)
	}
	return raw, nil
}
