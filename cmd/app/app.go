// Package app resolves configuration once for the command tree and builds
// the clients every example shares.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ryanreadbooks/zaikit/config"
	"github.com/ryanreadbooks/zaikit/explorer"
	"github.com/ryanreadbooks/zaikit/httpapi"
	"github.com/ryanreadbooks/zaikit/llm"
	"github.com/ryanreadbooks/zaikit/llm/factory"
	"github.com/ryanreadbooks/zaikit/pkg/logger"
	"github.com/ryanreadbooks/zaikit/pkg/process"
	"github.com/ryanreadbooks/zaikit/render"
	"github.com/ryanreadbooks/zaikit/search"
	"github.com/ryanreadbooks/zaikit/trace"
	"github.com/ryanreadbooks/zaikit/zai"

	"github.com/spf13/cobra"
)

var (
	configPath string
	copyAnswer bool

	cfg      config.Config
	printer  *render.Printer
	editor   LineEditor
	shutdown = func(context.Context) error { return nil }
)

// Bind registers the global flags and the setup hook on root. Call Close
// once the command returns.
func Bind(root *cobra.Command) {
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file, ~/.zaikit/config.yaml by default.")
	root.PersistentFlags().BoolVar(&copyAnswer, "copy", false, "Copy the final answer to the clipboard.")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return setup(cmd.Context())
	}
}

func setup(ctx context.Context) error {
	logger.Init()

	c, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	cfg = c

	printer = render.New(os.Stdout, render.WithCopy(copyAnswer))

	shutdown, err = trace.Init(ctx, trace.Config{
		Endpoint: cfg.Trace.Endpoint,
		URLPath:  cfg.Trace.URLPath,
		APIKey:   cfg.Trace.ApiKey,
	})
	if err != nil {
		slog.Warn("[app] tracing disabled", "error", err)
		shutdown = func(context.Context) error { return nil }
	}
	return nil
}

// Close releases the terminal, flushes traces and copies the last answer
// when --copy is set.
func Close(ctx context.Context) error {
	if editor != nil {
		editor.Close()
		editor = nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		slog.Warn("[app] trace shutdown", "error", err)
	}

	if printer != nil {
		return printer.Flush()
	}
	return nil
}

// Config is the resolved configuration.
func Config() *config.Config {
	return &cfg
}

// Printer is the shared terminal printer. Before setup ran it writes to
// stderr.
func Printer() *render.Printer {
	if printer == nil {
		printer = render.New(os.Stderr)
	}
	return printer
}

// Env builds the example environment. It fails when no api key is set.
func Env(ctx context.Context) (*explorer.Env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	chat, err := newLLM(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	media, err := factory.NewOpenAI(
		factory.WithAPIKey(cfg.API.ApiKey),
		factory.WithBaseURL(cfg.API.BaseURL),
		factory.WithTimeout(cfg.API.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create media client: %w", err)
	}

	platform, err := zai.New(zai.Config{
		ApiKey:          cfg.API.ApiKey,
		BaseURL:         cfg.API.BaseURL,
		Timeout:         cfg.API.Timeout,
		VideoPath:       cfg.Endpoints.Videos,
		AsyncResultPath: cfg.Endpoints.AsyncResult,
		WebSearchPath:   cfg.Endpoints.WebSearch,
		AudioPath:       cfg.Endpoints.Audio,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create platform client: %w", err)
	}

	raw, err := httpapi.New(httpapi.Config{
		ApiKey:  cfg.API.ApiKey,
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Endpoints: httpapi.Endpoints{
			Chat:        cfg.Endpoints.Chat,
			Images:      cfg.Endpoints.Images,
			Videos:      cfg.Endpoints.Videos,
			AsyncResult: cfg.Endpoints.AsyncResult,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	searcher, err := search.New(search.Backend(cfg.Search.Backend), platform, cfg.Search.Engine, cfg.Search.BraveApiKey)
	if err != nil {
		// web search examples report the missing searcher themselves
		slog.Warn("[app] web search unavailable", "error", err)
	}

	jobsPath := config.GetJobsPath()
	return &explorer.Env{
		Config:   &cfg,
		LLM:      chat,
		Media:    media,
		ZAI:      platform,
		HTTP:     raw,
		Searcher: searcher,
		Out:      Printer(),
		ReadLine: ReadLine,
		RecordJob: func(id string) {
			process.Go(ctx, func() {
				if err := config.RecordJob(jobsPath, id); err != nil {
					slog.Warn("[app] job not recorded", "job_id", id, "error", err)
				}
			})
		},
	}, nil
}

func newLLM(c *config.Config) (llm.LLM, error) {
	return factory.NewLLM(
		factory.WithCompatibility(factory.Compatibility(c.API.Compatibility)),
		factory.WithAPIKey(c.API.ApiKey),
		factory.WithBaseURL(c.API.BaseURL),
		factory.WithAnthropicBaseURL(c.API.AnthropicBaseURL),
		factory.WithTimeout(c.API.Timeout),
	)
}

func lineEditor() (LineEditor, error) {
	if editor == nil {
		e, err := NewLineEditor(config.GetWorkspaceDir())
		if err != nil {
			return nil, err
		}
		editor = e
	}
	return editor, nil
}

// ReadLine reads one line from the terminal.
func ReadLine(prompt string) (string, error) {
	e, err := lineEditor()
	if err != nil {
		return "", err
	}
	return e.ReadLine(prompt)
}

// ReadSecret reads a line without echo.
func ReadSecret(prompt string) (string, error) {
	e, err := lineEditor()
	if err != nil {
		return "", err
	}
	return e.ReadSecret(prompt)
}

// Run is the RunE body shared by the example commands.
func Run(fn func(ctx context.Context, env *explorer.Env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		env, err := Env(cmd.Context())
		if err != nil {
			return err
		}
		return fn(cmd.Context(), env)
	}
}
