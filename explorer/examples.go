package explorer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ryanreadbooks/zaikit/render"
)

// Example is one entry of the interactive menu.
type Example struct {
	ID      int
	Group   string
	Name    string
	Command string

	// FileRequired examples need input the menu cannot ask for, so the
	// menu only prints how to run them.
	FileRequired bool

	Run func(ctx context.Context, env *Env) error
}

const (
	groupLanguage = "Language Models"
	groupVision   = "Vision Language Models"
	groupImage    = "Image Generation"
	groupVideo    = "Video Generation"
	groupAudio    = "Audio Models"
	groupAdvanced = "Advanced Capabilities"
	groupAgents   = "Agents"
	groupHTTP     = "HTTP API Examples"
)

// Examples returns every example in menu order.
func Examples() []Example {
	return []Example{
		{ID: 1, Group: groupLanguage, Name: "Basic Chat", Command: "zaikit chat basic",
			Run: func(ctx context.Context, env *Env) error { return BasicChat(ctx, env, BasicChatOptions{}) }},
		{ID: 2, Group: groupLanguage, Name: "Streaming Chat", Command: "zaikit chat stream",
			Run: func(ctx context.Context, env *Env) error { return StreamChat(ctx, env, StreamChatOptions{}) }},
		{ID: 3, Group: groupLanguage, Name: "Multi-turn Conversation", Command: "zaikit chat multi",
			Run: func(ctx context.Context, env *Env) error { return MultiTurnChat(ctx, env, MultiTurnOptions{}) }},
		{ID: 4, Group: groupLanguage, Name: "Thinking Mode (Deep Reasoning)", Command: "zaikit chat thinking",
			Run: func(ctx context.Context, env *Env) error { return Thinking(ctx, env, ThinkingAll) }},

		{ID: 5, Group: groupVision, Name: "Image Understanding", Command: "zaikit vision image",
			Run: func(ctx context.Context, env *Env) error {
				return ImageUnderstanding(ctx, env, ImageUnderstandingOptions{})
			}},
		{ID: 6, Group: groupVision, Name: "Multi-Image Analysis", Command: "zaikit vision compare",
			Run: func(ctx context.Context, env *Env) error { return MultiImageAnalysis(ctx, env, MultiImageOptions{}) }},
		{ID: 7, Group: groupVision, Name: "Video Understanding", Command: "zaikit vision video",
			Run: func(ctx context.Context, env *Env) error {
				return VideoUnderstanding(ctx, env, VideoUnderstandingOptions{})
			}},
		{ID: 8, Group: groupVision, Name: "Object Detection", Command: "zaikit vision detect",
			Run: func(ctx context.Context, env *Env) error { return ObjectDetection(ctx, env, ObjectDetectionOptions{}) }},

		{ID: 9, Group: groupImage, Name: "Text-to-Image Generation", Command: "zaikit image generate",
			Run: func(ctx context.Context, env *Env) error { return ImageGeneration(ctx, env, ImageGenerationOptions{}) }},

		{ID: 10, Group: groupVideo, Name: "Text-to-Video", Command: "zaikit video text",
			Run: func(ctx context.Context, env *Env) error { return TextToVideo(ctx, env, VideoOptions{}) }},
		{ID: 11, Group: groupVideo, Name: "Image-to-Video", Command: "zaikit video image",
			Run: func(ctx context.Context, env *Env) error { return ImageToVideo(ctx, env, VideoOptions{}) }},
		{ID: 12, Group: groupVideo, Name: "Start/End Frame Video", Command: "zaikit video frames",
			Run: func(ctx context.Context, env *Env) error { return FramesToVideo(ctx, env, VideoOptions{}) }},

		{ID: 13, Group: groupAudio, Name: "Audio Transcription", Command: "zaikit audio transcribe -f <file>", FileRequired: true},
		{ID: 14, Group: groupAudio, Name: "Streaming Transcription", Command: "zaikit audio stream -f <file>", FileRequired: true},

		{ID: 15, Group: groupAdvanced, Name: "Function Calling", Command: "zaikit capability functions",
			Run: func(ctx context.Context, env *Env) error { return FunctionCalling(ctx, env, FunctionCallingOptions{}) }},
		{ID: 16, Group: groupAdvanced, Name: "Structured Output (JSON)", Command: "zaikit capability structured",
			Run: func(ctx context.Context, env *Env) error { return StructuredOutput(ctx, env, StructuredProduct, "") }},
		{ID: 17, Group: groupAdvanced, Name: "Web Search API", Command: "zaikit search web",
			Run: func(ctx context.Context, env *Env) error { return WebSearchAPI(ctx, env, WebSearchOptions{}) }},
		{ID: 18, Group: groupAdvanced, Name: "Web Search in Chat", Command: "zaikit search chat",
			Run: func(ctx context.Context, env *Env) error { return WebSearchChat(ctx, env, WebSearchChatOptions{}) }},

		{ID: 19, Group: groupAgents, Name: "Multi-Function Agent", Command: "zaikit agent",
			Run: func(ctx context.Context, env *Env) error { return AgentDemo(ctx, env, AgentOptions{}) }},

		{ID: 20, Group: groupHTTP, Name: "HTTP Chat Completion", Command: "zaikit http chat",
			Run: func(ctx context.Context, env *Env) error { return HTTPChat(ctx, env, HTTPChatOptions{}) }},
		{ID: 21, Group: groupHTTP, Name: "HTTP Image Generation", Command: "zaikit http image",
			Run: func(ctx context.Context, env *Env) error { return HTTPImage(ctx, env, HTTPImageOptions{}) }},
		// only the curl pattern from the menu; submitting costs money
		{ID: 22, Group: groupHTTP, Name: "HTTP Video Generation", Command: "zaikit http video --submit",
			Run: func(ctx context.Context, env *Env) error { return HTTPVideo(ctx, env, HTTPVideoOptions{}) }},
	}
}

// Lookup finds an example by menu number.
func Lookup(id int) (Example, bool) {
	for _, ex := range Examples() {
		if ex.ID == id {
			return ex, true
		}
	}
	return Example{}, false
}

// PrintMenu renders the examples grouped as on the menu.
func PrintMenu(env *Env) {
	rows := make([][]string, 0, 32)
	var group string
	for _, ex := range Examples() {
		if ex.Group != group {
			group = ex.Group
			rows = append(rows, []string{"", strings.ToUpper(group), ""})
		}
		rows = append(rows, []string{strconv.Itoa(ex.ID), ex.Name, ex.Command})
	}
	rows = append(rows, []string{"0", "Exit", ""})
	env.Out.Table([]string{"#", "Example", "Command"}, rows)
}

// RunMenu loops over the menu until the user picks 0 or input ends. A
// failing example is reported and the menu goes on.
func RunMenu(ctx context.Context, env *Env) error {
	env.Out.Panel(render.KindInfo, "Z.AI API Explorer",
		"Welcome to the Z.AI API Explorer!\nExplore every capability of the Z.AI platform.")
	if env.Config.API.ApiKey == "" {
		env.Out.Warn("Z_AI_API_KEY is not set. Run zaikit onboard or export it.")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		env.Out.Text("")
		PrintMenu(env)
		env.Out.Text("")
		PrintModels(env)

		line, err := env.readLine("Select an option (0 to exit): ")
		if errors.Is(err, io.EOF) {
			env.Out.Text("Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" || line == "0" || line == "quit" || line == "exit" {
			env.Out.Text("Goodbye! Happy coding with Z.AI!")
			return nil
		}

		runChoice(ctx, env, line)

		if _, err := env.readLine("Press Enter to continue..."); errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func runChoice(ctx context.Context, env *Env, line string) {
	id, err := strconv.Atoi(line)
	if err != nil {
		env.Out.Error(fmt.Errorf("invalid choice %q", line))
		return
	}
	ex, ok := Lookup(id)
	if !ok {
		env.Out.Error(fmt.Errorf("invalid choice %d", id))
		return
	}

	env.Out.Text("")
	if ex.FileRequired {
		env.Out.Warn(ex.Name + " requires an audio file.")
		env.Out.Muted("Run: " + ex.Command)
		return
	}
	if err := ex.Run(ctx, env); err != nil {
		env.Out.Error(err)
	}
	if ex.ID == 22 {
		env.Out.Muted("For actual video generation, run: zaikit http video --submit -p 'your prompt'")
	}
}

// PrintModels shows the model family used for each capability.
func PrintModels(env *Env) {
	m := env.Config.Models
	env.Out.Table([]string{"Category", "Model", "Configured", "Use Case"}, [][]string{
		{"Language", "GLM-4.7", m.LLM, "Chat, reasoning, code generation"},
		{"Vision", "GLM-4.6V", m.VLM, "Image/video understanding"},
		{"Image Gen", "CogView-4", m.ImageGen, "Text-to-image ($0.01/image)"},
		{"Video Gen", "CogVideoX-3", m.VideoGen, "Text/image-to-video ($0.2/video)"},
		{"Audio", "GLM-ASR-2512", m.AudioASR, "Speech-to-text transcription"},
	})
}
