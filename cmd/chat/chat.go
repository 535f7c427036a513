package chat

import (
	"context"
	"errors"

	"github.com/ryanreadbooks/zaikit/cmd/app"
	"github.com/ryanreadbooks/zaikit/explorer"

	"github.com/spf13/cobra"
)

var (
	basicOpts     explorer.BasicChatOptions
	streamOpts    explorer.StreamChatOptions
	multiOpts     explorer.MultiTurnOptions
	thinkingBasic bool
	thinkingInter bool
	thinkingTurn  bool
)

var ChatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Language model examples.",
	Long:  "Language model examples: basic, streaming, multi-turn and thinking mode.",
}

var basicCmd = &cobra.Command{
	Use:   "basic",
	Short: "Send one prompt and print the answer.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		return explorer.BasicChat(ctx, env, basicOpts)
	}),
}

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Stream an answer token by token.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		return explorer.StreamChat(ctx, env, streamOpts)
	}),
}

var multiCmd = &cobra.Command{
	Use:   "multi",
	Short: "Multi-turn conversation keeping the whole history.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		return explorer.MultiTurnChat(ctx, env, multiOpts)
	}),
}

var thinkingCmd = &cobra.Command{
	Use:   "thinking",
	Short: "Deep reasoning: basic, interleaved with tools, turn level.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		mode, err := thinkingMode()
		if err != nil {
			return err
		}
		return explorer.Thinking(ctx, env, mode)
	}),
}

func thinkingMode() (explorer.ThinkingMode, error) {
	var modes []explorer.ThinkingMode
	if thinkingBasic {
		modes = append(modes, explorer.ThinkingBasic)
	}
	if thinkingInter {
		modes = append(modes, explorer.ThinkingInterleaved)
	}
	if thinkingTurn {
		modes = append(modes, explorer.ThinkingTurnLevel)
	}

	switch len(modes) {
	case 0:
		return explorer.ThinkingAll, nil
	case 1:
		return modes[0], nil
	}
	return "", errors.New("pick at most one of --basic, --interleaved and --turn-level")
}

func init() {
	basicCmd.Flags().StringVarP(&basicOpts.Prompt, "prompt", "p", "", "Prompt to send.")
	basicCmd.Flags().StringVarP(&basicOpts.System, "system", "s", "", "System prompt.")
	basicCmd.Flags().BoolVar(&basicOpts.Coding, "coding", false, "Use the coding assistant prompts.")
	basicCmd.Flags().BoolVar(&basicOpts.Compare, "compare", false, "Compare the main, flash and air models.")

	streamCmd.Flags().StringVarP(&streamOpts.Prompt, "prompt", "p", "", "Prompt to send.")
	streamCmd.Flags().BoolVar(&streamOpts.HideReasoning, "hide-reasoning", false, "Only print the answer live.")

	multiCmd.Flags().BoolVarP(&multiOpts.Interactive, "interactive", "i", false, "Chat interactively.")

	thinkingCmd.Flags().BoolVar(&thinkingBasic, "basic", false, "Only the basic reasoning example.")
	thinkingCmd.Flags().BoolVar(&thinkingInter, "interleaved", false, "Only interleaved thinking with a calculator.")
	thinkingCmd.Flags().BoolVar(&thinkingTurn, "turn-level", false, "Only per turn thinking control.")

	ChatCmd.AddCommand(basicCmd, streamCmd, multiCmd, thinkingCmd)
}
