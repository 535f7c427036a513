package explorer

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ryanreadbooks/zaikit/httpapi"
	"github.com/ryanreadbooks/zaikit/llm/schema"
	"github.com/ryanreadbooks/zaikit/render"
)

type HTTPChatOptions struct {
	Prompt string
	Stream bool
	// Thinking turns reasoning on and prints it next to the answer.
	Thinking bool
	// ShowRaw prints the raw json body of a non streaming response.
	ShowRaw bool
}

// HTTPChat calls chat completions with a hand built request.
func HTTPChat(ctx context.Context, env *Env, opts HTTPChatOptions) error {
	if env.HTTP == nil {
		return ErrNoHTTP
	}

	prompt := cmp.Or(opts.Prompt, "Explain what an API is in simple terms.")
	temperature := env.Config.Defaults.Temperature
	req := httpapi.ChatRequest{
		Model:       env.Config.Models.LLM,
		Messages:    []httpapi.ChatMessage{{Role: "user", Content: prompt}},
		Temperature: &temperature,
		MaxTokens:   env.Config.Defaults.MaxTokens,
		Thinking:    schema.ThinkingFor(opts.Thinking),
	}

	env.Out.Section("HTTP Chat Completion")
	env.Out.KV("Endpoint", "POST "+env.HTTP.URL(env.HTTP.Endpoints().Chat))
	env.Out.KV("Model", req.Model)
	env.Out.KV("Prompt", prompt)
	env.Out.KV("Stream", opts.Stream)
	env.Out.Text("")

	if opts.Stream {
		var reasoning bool
		resp, err := env.HTTP.ChatStream(ctx, req, func(f schema.Fragment) {
			if r := f.ReasoningText(); r != "" {
				env.Out.StreamThinking(r)
				reasoning = true
			}
			if c := f.ContentText(); c != "" {
				if reasoning {
					env.Out.Stream("\n\n")
					reasoning = false
				}
				env.Out.Stream(c)
			}
		})
		env.Out.Text("")
		if err != nil {
			return err
		}
		env.Out.Remember(resp.Content)
		env.usage(resp.Usage)
		return nil
	}

	resp, err := render.Spin(ctx, env.Out, "Calling "+env.HTTP.Endpoints().Chat, func(ctx context.Context) (*httpapi.ChatResponse, error) {
		return env.HTTP.Chat(ctx, req)
	})
	if err != nil {
		return err
	}

	if len(resp.Choices) > 0 {
		env.Out.Thinking(truncate(resp.Choices[0].Message.ReasoningContent, 500))
	}
	env.Out.Answer("Response", resp.Content())
	env.usage(resp.Usage)
	if opts.ShowRaw {
		printRaw(env, resp.Raw)
	}
	return nil
}

type HTTPImageOptions struct {
	Prompt  string
	Size    string
	ShowRaw bool
}

// HTTPImage calls image generation with a hand built request.
func HTTPImage(ctx context.Context, env *Env, opts HTTPImageOptions) error {
	if env.HTTP == nil {
		return ErrNoHTTP
	}

	req := httpapi.ImageRequest{
		Model:  env.Config.Models.ImageGen,
		Prompt: cmp.Or(opts.Prompt, env.Config.Prompts.ImageGen),
		Size:   cmp.Or(opts.Size, defaultImageSize),
	}

	env.Out.Section("HTTP Image Generation")
	env.Out.KV("Endpoint", "POST "+env.HTTP.URL(env.HTTP.Endpoints().Images))
	env.Out.KV("Model", req.Model)
	env.Out.KV("Prompt", req.Prompt)
	env.Out.KV("Size", req.Size)

	resp, err := render.Spin(ctx, env.Out, "Generating image", func(ctx context.Context) (*httpapi.ImageResponse, error) {
		return env.HTTP.GenerateImage(ctx, req)
	})
	if err != nil {
		return err
	}
	if len(resp.Data) == 0 {
		env.Out.Warn("No image data returned")
		return nil
	}

	env.Out.Panel(render.KindSuccess, "Result", "Image generated successfully!")
	env.Out.KV("URL", resp.Data[0].URL)
	env.Out.Remember(resp.Data[0].URL)
	if opts.ShowRaw {
		printRaw(env, resp.Raw)
	}
	return nil
}

type HTTPVideoOptions struct {
	Prompt   string
	ImageURL string

	// Submit runs the flow for real; otherwise only the curl pattern is
	// printed.
	Submit bool
}

// HTTPVideo shows the async pattern: submit, then poll the result endpoint
// until the job finishes.
func HTTPVideo(ctx context.Context, env *Env, opts HTTPVideoOptions) error {
	if env.HTTP == nil {
		return ErrNoHTTP
	}

	env.Out.Section("HTTP Video Generation (async pattern)")
	for _, ex := range env.HTTP.VideoCurlExamples(env.Config.Models.VideoGen) {
		env.Out.Panel(render.KindInfo, ex.Name, ex.Command)
	}
	if !opts.Submit {
		return nil
	}

	req := httpapi.VideoRequest{
		Model:     env.Config.Models.VideoGen,
		Prompt:    cmp.Or(opts.Prompt, env.Config.Prompts.VideoGen),
		Quality:   env.Config.Video.Quality,
		Size:      env.Config.Video.Size,
		FPS:       env.Config.Video.FPS,
		WithAudio: env.Config.VideoWithAudio(),
		ImageURL:  opts.ImageURL,
	}

	st, err := render.Spin(ctx, env.Out, "Submitting video job", func(ctx context.Context) (*httpapi.VideoStatus, error) {
		return env.HTTP.SubmitVideo(ctx, req)
	})
	if err != nil {
		return err
	}
	env.recordJob(st.ID)
	env.Out.Textf("Job submitted! ID: %s (%s)", st.ID, st.TaskStatus)

	out, err := awaitVideo(ctx, env, env.HTTP, st.ID, 0, 0)
	if err != nil {
		return err
	}
	return reportVideo(env, out)
}

func printRaw(env *Env, raw json.RawMessage) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		env.Out.Text(string(raw))
		return
	}
	env.Out.Text("")
	env.Out.Muted(fmt.Sprintf("raw response (%d bytes)", len(raw)))
	env.Out.JSON(v)
}
