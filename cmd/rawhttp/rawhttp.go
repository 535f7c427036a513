// Package rawhttp holds the commands that call the REST API with hand
// built requests.
package rawhttp

import (
	"context"

	"github.com/ryanreadbooks/zaikit/cmd/app"
	"github.com/ryanreadbooks/zaikit/explorer"

	"github.com/spf13/cobra"
)

var (
	chatOpts  explorer.HTTPChatOptions
	imageOpts explorer.HTTPImageOptions
	videoOpts explorer.HTTPVideoOptions
)

var HTTPCmd = &cobra.Command{
	Use:   "http",
	Short: "Raw HTTP API examples.",
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "POST chat/completions.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		return explorer.HTTPChat(ctx, env, chatOpts)
	}),
}

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "POST images/generations.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		return explorer.HTTPImage(ctx, env, imageOpts)
	}),
}

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Show the async video pattern, --submit runs it.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		return explorer.HTTPVideo(ctx, env, videoOpts)
	}),
}

func init() {
	chatCmd.Flags().StringVarP(&chatOpts.Prompt, "prompt", "p", "", "Prompt to send.")
	chatCmd.Flags().BoolVar(&chatOpts.Stream, "stream", false, "Read the server sent event stream.")
	chatCmd.Flags().BoolVar(&chatOpts.Thinking, "thinking", false, "Enable reasoning.")
	chatCmd.Flags().BoolVar(&chatOpts.ShowRaw, "raw", false, "Print the raw json response.")

	imageCmd.Flags().StringVarP(&imageOpts.Prompt, "prompt", "p", "", "Image description.")
	imageCmd.Flags().StringVarP(&imageOpts.Size, "size", "s", "", "Image size.")
	imageCmd.Flags().BoolVar(&imageOpts.ShowRaw, "raw", false, "Print the raw json response.")

	videoCmd.Flags().StringVarP(&videoOpts.Prompt, "prompt", "p", "", "Video description.")
	videoCmd.Flags().StringVarP(&videoOpts.ImageURL, "image", "i", "", "Image to animate.")
	videoCmd.Flags().BoolVar(&videoOpts.Submit, "submit", false, "Submit the job and poll it.")

	HTTPCmd.AddCommand(chatCmd, imageCmd, videoCmd)
}
