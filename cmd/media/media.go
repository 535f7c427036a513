// Package media holds the generation and transcription commands.
package media

import (
	"context"
	"fmt"

	"github.com/ryanreadbooks/zaikit/cmd/app"
	"github.com/ryanreadbooks/zaikit/config"
	"github.com/ryanreadbooks/zaikit/explorer"

	"github.com/spf13/cobra"
)

var (
	imageOpts      explorer.ImageGenerationOptions
	videoOpts      explorer.VideoOptions
	noAudio        bool
	statusWorkers  int
	transcribeOpts explorer.TranscribeOptions
	streamOpts     explorer.StreamTranscribeOptions
)

var ImageCmd = &cobra.Command{
	Use:   "image",
	Short: "Image generation examples.",
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate images from text.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		return explorer.ImageGeneration(ctx, env, imageOpts)
	}),
}

var VideoCmd = &cobra.Command{
	Use:   "video",
	Short: "Video generation examples.",
	Long:  "Video generation examples. Jobs run asynchronously and are polled until they finish.",
}

func videoRun(fn func(context.Context, *explorer.Env, explorer.VideoOptions) error) func(*cobra.Command, []string) error {
	return app.Run(func(ctx context.Context, env *explorer.Env) error {
		opts := videoOpts
		if noAudio {
			off := false
			opts.WithAudio = &off
		}
		return fn(ctx, env, opts)
	})
}

var textCmd = &cobra.Command{
	Use:   "text",
	Short: "Generate a video from a prompt.",
	RunE:  videoRun(explorer.TextToVideo),
}

var imageToVideoCmd = &cobra.Command{
	Use:   "image",
	Short: "Animate an image.",
	RunE:  videoRun(explorer.ImageToVideo),
}

var framesCmd = &cobra.Command{
	Use:   "frames",
	Short: "Generate a transition between a first and a last frame.",
	RunE:  videoRun(explorer.FramesToVideo),
}

var statusCmd = &cobra.Command{
	Use:   "status [job-id...]",
	Short: "Resume polling of submitted jobs, all recorded jobs by default.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := app.Env(cmd.Context())
		if err != nil {
			return err
		}

		ids := args
		if len(ids) == 0 {
			ids, err = config.RecordedJobs(config.GetJobsPath())
			if err != nil {
				return fmt.Errorf("failed to load recorded jobs: %w", err)
			}
		}
		return explorer.VideoStatus(cmd.Context(), env, ids, statusWorkers)
	},
}

var AudioCmd = &cobra.Command{
	Use:   "audio",
	Short: "Speech to text examples.",
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe audio files; globs such as '**/*.mp3' are expanded.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		return explorer.Transcribe(ctx, env, transcribeOpts)
	}),
}

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Transcribe an audio file, printing text as it arrives.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		return explorer.StreamTranscription(ctx, env, streamOpts)
	}),
}

func init() {
	generateCmd.Flags().StringVarP(&imageOpts.Prompt, "prompt", "p", "", "Image description.")
	generateCmd.Flags().StringVarP(&imageOpts.Size, "size", "s", "", "Image size such as 1024x1024.")
	generateCmd.Flags().StringSliceVar(&imageOpts.Sizes, "sizes", nil, "Render the prompt once per size.")
	generateCmd.Flags().BoolVar(&imageOpts.Styles, "styles", false, "Render one subject in several styles.")
	generateCmd.Flags().IntVarP(&imageOpts.Workers, "workers", "w", 4, "Concurrent generations.")
	ImageCmd.AddCommand(generateCmd)

	for _, c := range []*cobra.Command{textCmd, imageToVideoCmd, framesCmd} {
		c.Flags().StringVarP(&videoOpts.Prompt, "prompt", "p", "", "Video description.")
		c.Flags().StringVarP(&videoOpts.Quality, "quality", "q", "", "quality or speed.")
		c.Flags().StringVarP(&videoOpts.Size, "size", "s", "", "Resolution such as 1920x1080.")
		c.Flags().IntVar(&videoOpts.FPS, "fps", 0, "Frames per second, 30 or 60.")
		c.Flags().BoolVar(&noAudio, "no-audio", false, "Generate without sound.")
		c.Flags().DurationVar(&videoOpts.PollInterval, "poll-interval", 0, "Status poll interval.")
		c.Flags().DurationVar(&videoOpts.MaxWait, "max-wait", 0, "Give up polling after this long.")
	}
	imageToVideoCmd.Flags().StringSliceVarP(&videoOpts.ImageURLs, "image", "i", nil, "Image URL to animate.")
	framesCmd.Flags().StringSliceVarP(&videoOpts.ImageURLs, "image", "i", nil, "First and last frame URLs.")
	statusCmd.Flags().IntVarP(&statusWorkers, "workers", "w", 4, "Jobs polled at once.")
	VideoCmd.AddCommand(textCmd, imageToVideoCmd, framesCmd, statusCmd)

	transcribeCmd.Flags().StringSliceVarP(&transcribeOpts.Files, "file", "f", nil, "Audio files or glob patterns.")
	transcribeCmd.Flags().StringVarP(&transcribeOpts.Language, "language", "l", "", "Language hint such as zh or en.")
	_ = transcribeCmd.MarkFlagRequired("file")
	streamCmd.Flags().StringVarP(&streamOpts.File, "file", "f", "", "Audio file.")
	streamCmd.Flags().StringVarP(&streamOpts.Language, "language", "l", "", "Language hint such as zh or en.")
	_ = streamCmd.MarkFlagRequired("file")
	AudioCmd.AddCommand(transcribeCmd, streamCmd)
}
