// Package explorer holds the runnable capability examples. Every example is
// a function over an Env, so the cli, the interactive menu and tests with
// fakes all drive the same code.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ryanreadbooks/zaikit/config"
	"github.com/ryanreadbooks/zaikit/httpapi"
	"github.com/ryanreadbooks/zaikit/job"
	"github.com/ryanreadbooks/zaikit/llm"
	"github.com/ryanreadbooks/zaikit/llm/schema"
	"github.com/ryanreadbooks/zaikit/render"
	"github.com/ryanreadbooks/zaikit/search"
	"github.com/ryanreadbooks/zaikit/zai"

	"github.com/mattn/go-runewidth"
)

var (
	ErrNoLLM      = errors.New("no chat model configured")
	ErrNoMedia    = errors.New("no image or audio client configured")
	ErrNoPlatform = errors.New("no platform client configured")
	ErrNoHTTP     = errors.New("no raw http client configured")
	ErrNoInput    = errors.New("no interactive input available")
)

// ZAI is the platform surface the examples use.
type ZAI interface {
	job.StatusFetcher
	SubmitVideo(ctx context.Context, req *zai.VideoRequest) (*zai.VideoSubmission, error)
	WebSearch(ctx context.Context, req *zai.WebSearchRequest) (*zai.WebSearchResponse, error)
	TranscribeStream(ctx context.Context, req *zai.TranscriptionRequest) (*zai.TranscriptStream, error)
}

type Media interface {
	llm.ImageGenerator
	llm.Transcriber
}

type Env struct {
	Config   *config.Config
	LLM      llm.LLM
	Media    Media
	ZAI      ZAI
	HTTP     *httpapi.Client
	Searcher search.Searcher
	Out      *render.Printer

	// ReadLine reads one line of user input. io.EOF ends interactive loops.
	ReadLine func(prompt string) (string, error)

	// Sleep between status polls, job.Sleep when nil.
	Sleep job.SleepFunc

	// RecordJob is told the id of every submitted video job.
	RecordJob func(id string)

	Now func() time.Time
}

func (e *Env) sleep() job.SleepFunc {
	if e.Sleep != nil {
		return e.Sleep
	}
	return job.Sleep
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) recordJob(id string) {
	if e.RecordJob != nil {
		e.RecordJob(id)
	}
}

func (e *Env) readLine(prompt string) (string, error) {
	if e.ReadLine == nil {
		return "", ErrNoInput
	}
	line, err := e.ReadLine(prompt)
	return strings.TrimSpace(line), err
}

// chatRequest builds a request with the configured token default.
func (e *Env) chatRequest(model string, messages ...schema.MessageParam) *schema.Request {
	req := schema.NewRequest(model, messages)
	if e.Config.Defaults.MaxTokens > 0 {
		req.MaxTokens = e.Config.Defaults.MaxTokens
	}
	return req
}

// complete runs a non streaming request behind a spinner and returns the
// first choice.
func (e *Env) complete(ctx context.Context, label string, req *schema.Request) (*schema.CompletionMessage, schema.CompletionUsage, error) {
	if e.LLM == nil {
		return nil, schema.CompletionUsage{}, ErrNoLLM
	}

	resp, err := render.Spin(ctx, e.Out, label, func(ctx context.Context) (*schema.Response, error) {
		return e.LLM.ChatCompletion(ctx, req)
	})
	if err != nil {
		return nil, schema.CompletionUsage{}, err
	}

	choice := resp.FirstChoice()
	return &choice.Message, resp.Usage, nil
}

// stream prints content as it arrives. Reasoning is printed dimmed before
// the content when showReasoning is set, otherwise only collected.
func (e *Env) stream(ctx context.Context, req *schema.Request, showReasoning bool) (schema.AssembledResponse, error) {
	if e.LLM == nil {
		return schema.AssembledResponse{}, ErrNoLLM
	}

	var reasoning bool
	resp, err := schema.ReadStream(e.LLM.ChatCompletionStream(ctx, req), func(f schema.Fragment) {
		if r := f.ReasoningText(); r != "" && showReasoning {
			e.Out.StreamThinking(r)
			reasoning = true
		}
		if c := f.ContentText(); c != "" {
			if reasoning {
				e.Out.Stream("\n\n")
				reasoning = false
			}
			e.Out.Stream(c)
		}
	})
	e.Out.Text("")
	return resp, err
}

// turn runs req streamed or not and returns the assistant message.
func (e *Env) turn(ctx context.Context, label string, req *schema.Request, stream bool) (*schema.CompletionMessage, error) {
	if !stream {
		msg, _, err := e.complete(ctx, label, req)
		return msg, err
	}

	if req.HasFunctionTools() {
		req.ToolStream = e.Config.ToolStream()
	}
	resp, err := e.stream(ctx, req, false)
	if err != nil {
		return nil, err
	}
	msg := resp.Message()
	return &msg, nil
}

func (e *Env) usage(u schema.CompletionUsage) {
	if u.IsZero() {
		return
	}
	e.Out.Muted(fmtUsage(u))
}

func fmtUsage(u schema.CompletionUsage) string {
	return fmt.Sprintf("tokens: %d prompt, %d completion, %d total", u.PromptTokens, u.CompletionTokens, u.TotalTokens)
}

// truncate cuts s to n display columns, appending ... when cut.
func truncate(s string, n int) string {
	return runewidth.Truncate(s, n, "...")
}
