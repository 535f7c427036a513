package explorer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ryanreadbooks/zaikit/agent"
	"github.com/ryanreadbooks/zaikit/agent/tools"
	"github.com/ryanreadbooks/zaikit/component/tool"
	"github.com/ryanreadbooks/zaikit/llm/estimator"
	"github.com/ryanreadbooks/zaikit/llm/schema"
	"github.com/ryanreadbooks/zaikit/render"
)

const (
	assistantSystemPrompt = "You are a helpful AI assistant."
	codingSystemPrompt    = "You are an expert programmer."
	tutorSystemPrompt     = "You are a helpful AI tutor specializing in explaining complex topics in simple terms. Be concise but thorough."
)

type BasicChatOptions struct {
	Prompt string
	System string

	// Coding sends the configured coding prompt as an expert programmer.
	Coding bool

	// Compare runs the prompt on the main, flash and air models.
	Compare bool
}

// BasicChat sends one prompt and prints the answer with token usage.
func BasicChat(ctx context.Context, env *Env, opts BasicChatOptions) error {
	system, prompt := assistantSystemPrompt, env.Config.Prompts.Chat
	if opts.Coding {
		system, prompt = codingSystemPrompt, env.Config.Prompts.Coding
	}
	if opts.System != "" {
		system = opts.System
	}
	if opts.Prompt != "" {
		prompt = opts.Prompt
	}

	env.Out.Section("Basic Chat")
	env.Out.KV("Model", env.Config.Models.LLM)
	env.Out.KV("Prompt", prompt)

	if opts.Compare {
		return compareModels(ctx, env, system, prompt)
	}

	req := env.chatRequest(env.Config.Models.LLM,
		schema.NewSystemMessageParam(system),
		schema.NewUserMessageParam(prompt),
	)
	req.Temperature = env.Config.Defaults.Temperature
	req.Thinking = schema.DisableThinking()

	msg, usage, err := env.complete(ctx, "Generating response", req)
	if err != nil {
		return fmt.Errorf("basic chat: %w", err)
	}

	env.Out.Answer("Response", msg.Content)
	env.usage(usage)
	return nil
}

func compareModels(ctx context.Context, env *Env, system, prompt string) error {
	models := []string{env.Config.Models.LLM, env.Config.Models.LLMFlash, env.Config.Models.LLMAir}

	rows := make([][]string, 0, len(models))
	for _, model := range models {
		req := env.chatRequest(model,
			schema.NewSystemMessageParam(system),
			schema.NewUserMessageParam(prompt),
		)
		req.Thinking = schema.DisableThinking()

		msg, usage, err := env.complete(ctx, "Asking "+model, req)
		if err != nil {
			rows = append(rows, []string{model, "-", "error: " + truncate(err.Error(), 60)})
			continue
		}
		rows = append(rows, []string{model, strconv.FormatInt(usage.TotalTokens, 10), truncate(oneLine(msg.Content), 60)})
	}

	env.Out.Table([]string{"Model", "Tokens", "Preview"}, rows)
	return nil
}

type StreamChatOptions struct {
	Prompt string
	// HideReasoning collects reasoning without printing it live.
	HideReasoning bool
}

// StreamChat streams a coding answer with thinking enabled, reasoning shown
// apart from the answer.
func StreamChat(ctx context.Context, env *Env, opts StreamChatOptions) error {
	prompt := env.Config.Prompts.Coding
	if opts.Prompt != "" {
		prompt = opts.Prompt
	}

	env.Out.Section("Streaming Chat")
	env.Out.KV("Model", env.Config.Models.LLM)
	env.Out.KV("Prompt", prompt)
	env.Out.Text("")

	req := env.chatRequest(env.Config.Models.LLM,
		schema.NewSystemMessageParam(codingSystemPrompt),
		schema.NewUserMessageParam(prompt),
	)
	req.Thinking = schema.EnableThinking()

	resp, err := env.stream(ctx, req, !opts.HideReasoning)
	if err != nil {
		return fmt.Errorf("stream chat: %w", err)
	}

	env.Out.Remember(resp.Content)
	if opts.HideReasoning {
		env.Out.Thinking(truncate(resp.ReasoningContent, 500))
	}
	env.Out.KV("Reasoning length", fmt.Sprintf("%d chars", len([]rune(resp.ReasoningContent))))
	env.Out.KV("Response length", fmt.Sprintf("%d chars", len([]rune(resp.Content))))
	env.usage(resp.Usage)
	return nil
}

var tutorQuestions = []string{
	"What is machine learning?",
	"Can you give me a simple real-world example?",
	"How is deep learning different from regular machine learning?",
	"What would I need to learn to get started with ML?",
}

type MultiTurnOptions struct {
	// Interactive reads turns from the user instead of the scripted
	// questions. history, clear and quit are commands.
	Interactive bool
}

// MultiTurnChat keeps the whole history in every request.
func MultiTurnChat(ctx context.Context, env *Env, opts MultiTurnOptions) error {
	env.Out.Section("Multi-turn Conversation")
	env.Out.KV("Model", env.Config.Models.LLM)

	conv := agent.NewConversation(tutorSystemPrompt)
	if opts.Interactive {
		return interactiveChat(ctx, env, conv)
	}

	for i, q := range tutorQuestions {
		env.Out.Text("")
		env.Out.KV(fmt.Sprintf("Turn %d", i+1), q)
		if err := tutorTurn(ctx, env, conv, q); err != nil {
			return err
		}
	}

	printHistory(env, conv)
	return nil
}

func tutorTurn(ctx context.Context, env *Env, conv *agent.Conversation, query string) error {
	conv.AppendUserMessage(query)

	req := env.chatRequest(env.Config.Models.LLM, conv.Messages()...)
	req.Thinking = schema.DisableThinking()

	msg, usage, err := env.complete(ctx, "Thinking", req)
	if err != nil {
		return fmt.Errorf("turn %d: %w", conv.Turns(), err)
	}
	conv.AppendAssistantMessage(msg)

	env.Out.Answer("Tutor", msg.Content)
	env.usage(usage)
	return nil
}

func interactiveChat(ctx context.Context, env *Env, conv *agent.Conversation) error {
	env.Out.Muted("Commands: history, clear, quit")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := env.readLine("You: ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.ToLower(line) {
		case "":
		case "quit", "exit":
			return nil
		case "clear":
			conv.Clear()
			env.Out.Muted("Conversation cleared.")
		case "history":
			printHistory(env, conv)
		default:
			if err := tutorTurn(ctx, env, conv, line); err != nil {
				env.Out.Error(err)
			}
		}
	}
}

func printHistory(env *Env, conv *agent.Conversation) {
	messages := conv.Messages()
	rows := make([][]string, 0, len(messages))
	for i := range messages {
		m := &messages[i]
		if m.Role() == schema.RoleSystem {
			continue
		}
		rows = append(rows, []string{strconv.Itoa(len(rows) + 1), m.Role().String(), truncate(oneLine(m.Text()), 100)})
	}

	env.Out.Text("")
	env.Out.Table([]string{"#", "Role", "Content"}, rows)

	window := env.Config.Defaults.ContextWindow
	tokens, fits := estimator.Fits(schema.NewRequest(env.Config.Models.LLM, messages), window)
	env.Out.Muted(fmt.Sprintf("%d turns, about %d of %d context tokens", conv.Turns(), tokens, window))
	if !fits {
		env.Out.Warn("the conversation no longer fits the context window, clear it to continue")
	}
}

type ThinkingMode string

const (
	ThinkingAll         ThinkingMode = ""
	ThinkingBasic       ThinkingMode = "basic"
	ThinkingInterleaved ThinkingMode = "interleaved"
	ThinkingTurnLevel   ThinkingMode = "turn-level"
)

const trainProblem = `A train leaves Station A at 9:00 AM traveling at 60 mph toward Station B, which is 280 miles away. ` +
	`Another train leaves Station B at 10:00 AM traveling at 80 mph toward Station A. At what time will they meet, ` +
	`and how far from Station A?`

// Thinking runs the thinking mode demos, all of them for ThinkingAll.
func Thinking(ctx context.Context, env *Env, mode ThinkingMode) error {
	runs := []struct {
		mode ThinkingMode
		fn   func(context.Context, *Env) error
	}{
		{ThinkingBasic, basicThinking},
		{ThinkingInterleaved, interleavedThinking},
		{ThinkingTurnLevel, turnLevelThinking},
	}

	ran := false
	for _, r := range runs {
		if mode != ThinkingAll && mode != r.mode {
			continue
		}
		ran = true
		if err := r.fn(ctx, env); err != nil {
			return err
		}
	}
	if !ran {
		return fmt.Errorf("unknown thinking mode %q", mode)
	}
	return nil
}

func basicThinking(ctx context.Context, env *Env) error {
	env.Out.Section("Thinking Mode: Basic")
	env.Out.KV("Problem", trainProblem)
	env.Out.Text("")

	req := env.chatRequest(env.Config.Models.LLM, schema.NewUserMessageParam(trainProblem))
	req.Thinking = schema.EnableThinking()

	resp, err := env.stream(ctx, req, true)
	if err != nil {
		return fmt.Errorf("basic thinking: %w", err)
	}
	env.Out.Remember(resp.Content)
	env.usage(resp.Usage)
	return nil
}

const costQuery = "I need to calculate the total cost: 5 items at $12.99 each, with 8% tax."

// interleavedThinking keeps reasoning across tool calls so the model can
// think between them.
func interleavedThinking(ctx context.Context, env *Env) error {
	env.Out.Section("Thinking Mode: Interleaved")
	env.Out.KV("Query", costQuery)
	env.Out.Text("")

	if env.LLM == nil {
		return ErrNoLLM
	}
	a := agent.NewAgent(env.LLM, tool.NewRegistry(tools.Calculate()), agent.AgentConfig{
		Model:     env.Config.Models.LLM,
		MaxTokens: env.Config.Defaults.MaxTokens,
		Thinking:  schema.EnablePreservedThinking(),
	})
	watchAgent(env, a)

	res, err := a.Ask(ctx, costQuery)
	if err != nil {
		return fmt.Errorf("interleaved thinking: %w", err)
	}

	env.Out.Thinking(truncate(res.ReasoningContent, 500))
	env.Out.Answer("Answer", res.Content)
	env.Out.Muted(fmt.Sprintf("%d iterations, %d tool calls", res.Iterations, res.ToolCalls))
	env.usage(res.Usage)
	return nil
}

func turnLevelThinking(ctx context.Context, env *Env) error {
	env.Out.Section("Thinking Mode: Turn Level")

	turns := []struct {
		query    string
		thinking bool
	}{
		{"What is 2+2?", false},
		{"Explain why water is essential for life", true},
		{"What color is the sky?", false},
	}

	conv := agent.NewConversation("")
	for _, t := range turns {
		conv.AppendUserMessage(t.query)

		req := env.chatRequest(env.Config.Models.LLM, conv.Messages()...)
		req.Thinking = schema.ThinkingFor(t.thinking)

		msg, _, err := env.complete(ctx, "Answering", req)
		if err != nil {
			return fmt.Errorf("turn level thinking: %w", err)
		}
		conv.AppendAssistantMessage(msg)

		env.Out.Text("")
		env.Out.KV("Query", t.query)
		env.Out.KV("Thinking", onOff(t.thinking))
		if msg.ReasoningContent != "" {
			env.Out.Muted(fmt.Sprintf("reasoning: %d chars", len([]rune(msg.ReasoningContent))))
		}
		env.Out.Panel(render.KindAssistant, "Reply", truncate(msg.Content, 300))
	}
	return nil
}

// watchAgent prints iterations, tool calls and results as the agent
// makes them.
func watchAgent(env *Env, a *agent.Agent) {
	a.SubscribeIteration(func(i int) {
		env.Out.Muted(fmt.Sprintf("Iteration %d...", i))
	})
	a.SubscribeToolCalling(func(ev agent.ToolEvent) {
		if ev.Result == "" {
			env.Out.ToolCall(ev.Name, ev.Arguments)
			return
		}
		env.Out.ToolResult(ev.Name, ev.Result)
	})
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
