package main

import (
	"context"
	"os"

	"github.com/ryanreadbooks/zaikit/cmd/app"
	"github.com/ryanreadbooks/zaikit/cmd/calc"
	"github.com/ryanreadbooks/zaikit/cmd/capability"
	"github.com/ryanreadbooks/zaikit/cmd/chat"
	"github.com/ryanreadbooks/zaikit/cmd/mcpserver"
	"github.com/ryanreadbooks/zaikit/cmd/media"
	"github.com/ryanreadbooks/zaikit/cmd/menu"
	"github.com/ryanreadbooks/zaikit/cmd/onboard"
	"github.com/ryanreadbooks/zaikit/cmd/rawhttp"
	"github.com/ryanreadbooks/zaikit/cmd/vision"
	"github.com/ryanreadbooks/zaikit/pkg/process"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "zaikit",
	Short:         "Explore the Z.AI platform from the terminal.",
	Long:          "Runnable examples for every Z.AI capability: chat, vision, image, video, audio, tools, search and agents.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	app.Bind(rootCmd)

	rootCmd.AddCommand(chat.ChatCmd)
	rootCmd.AddCommand(vision.VisionCmd)
	rootCmd.AddCommand(media.ImageCmd)
	rootCmd.AddCommand(media.VideoCmd)
	rootCmd.AddCommand(media.AudioCmd)
	rootCmd.AddCommand(capability.CapabilityCmd)
	rootCmd.AddCommand(capability.SearchCmd)
	rootCmd.AddCommand(capability.AgentCmd)
	rootCmd.AddCommand(rawhttp.HTTPCmd)
	rootCmd.AddCommand(menu.MenuCmd)
	rootCmd.AddCommand(menu.ModelsCmd)
	rootCmd.AddCommand(calc.CalcCmd)
	rootCmd.AddCommand(mcpserver.MCPCmd)
	rootCmd.AddCommand(onboard.OnboardCmd)
}

func main() {
	ctx, cancel, wait := process.GetRootContext()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && ctx.Err() == nil {
		app.Printer().Error(err)
	}
	if cerr := app.Close(context.Background()); cerr != nil {
		app.Printer().Error(cerr)
	}
	cancel()

	wait()
	if err != nil {
		os.Exit(1)
	}
}
