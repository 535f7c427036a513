package vision

import (
	"context"

	"github.com/ryanreadbooks/zaikit/cmd/app"
	"github.com/ryanreadbooks/zaikit/explorer"

	"github.com/spf13/cobra"
)

var (
	imageOpts   explorer.ImageUnderstandingOptions
	compareOpts explorer.MultiImageOptions
	videoOpts   explorer.VideoUnderstandingOptions
	detectOpts  explorer.ObjectDetectionOptions
)

var VisionCmd = &cobra.Command{
	Use:   "vision",
	Short: "Vision language model examples.",
	Long:  "Vision language model examples: image and video understanding, comparison and object detection.",
}

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Describe an image.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		return explorer.ImageUnderstanding(ctx, env, imageOpts)
	}),
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare several images in one request.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		return explorer.MultiImageAnalysis(ctx, env, compareOpts)
	}),
}

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Describe a video.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		return explorer.VideoUnderstanding(ctx, env, videoOpts)
	}),
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect objects and print their bounding boxes.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		return explorer.ObjectDetection(ctx, env, detectOpts)
	}),
}

func init() {
	imageCmd.Flags().StringVarP(&imageOpts.ImageURL, "image", "i", "", "Image URL, a sample image by default.")
	imageCmd.Flags().StringVarP(&imageOpts.Prompt, "prompt", "p", "", "Question about the image.")
	imageCmd.Flags().BoolVar(&imageOpts.NoStream, "no-stream", false, "Wait for the whole answer.")
	imageCmd.Flags().BoolVar(&imageOpts.MultiAspect, "multi-aspect", false, "Ask several questions about the image.")

	compareCmd.Flags().StringSliceVarP(&compareOpts.ImageURLs, "image", "i", nil, "Image URLs, repeat or separate with commas.")
	compareCmd.Flags().StringVarP(&compareOpts.Prompt, "prompt", "p", "", "Comparison question.")
	compareCmd.Flags().BoolVar(&compareOpts.Sequential, "sequential", false, "Describe each image first, then compare.")

	videoCmd.Flags().StringVarP(&videoOpts.VideoURL, "video", "v", "", "Video URL, a sample video by default.")
	videoCmd.Flags().StringVarP(&videoOpts.Prompt, "prompt", "p", "", "Question about the video.")
	videoCmd.Flags().BoolVar(&videoOpts.Questions, "questions", false, "Ask several short questions.")

	detectCmd.Flags().StringVarP(&detectOpts.ImageURL, "image", "i", "", "Image URL, a sample image by default.")
	detectCmd.Flags().StringVarP(&detectOpts.Target, "target", "t", "", "What to detect, all visible objects by default.")

	VisionCmd.AddCommand(imageCmd, compareCmd, videoCmd, detectCmd)
}
