package llm

import (
	"context"
	"io"

	"github.com/ryanreadbooks/zaikit/llm/schema"
)

type LLM interface {
	ChatCompletion(ctx context.Context, req *schema.Request) (*schema.Response, error)

	// You should read from the returned channel until it is closed.
	ChatCompletionStream(ctx context.Context, req *schema.Request) <-chan *schema.StreamResponseChunk
}

type TokenEstimator interface {
	Estimate(ctx context.Context, req *schema.Request) (int, error)
}

type ImageRequest struct {
	Model  string
	Prompt string
	// e.g. 1024x1024
	Size    string
	Quality string
}

type ImageResponse struct {
	Created int64
	URLs    []string
}

type ImageGenerator interface {
	GenerateImage(ctx context.Context, req *ImageRequest) (*ImageResponse, error)
}

type TranscriptionRequest struct {
	Model       string
	File        io.Reader
	Filename    string
	ContentType string
	// optional hint such as zh or en
	Language string
}

type TranscriptionResponse struct {
	Text string
}

type Transcriber interface {
	Transcribe(ctx context.Context, req *TranscriptionRequest) (*TranscriptionResponse, error)
}
