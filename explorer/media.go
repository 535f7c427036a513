package explorer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ryanreadbooks/zaikit/job"
	"github.com/ryanreadbooks/zaikit/llm"
	"github.com/ryanreadbooks/zaikit/render"
	"github.com/ryanreadbooks/zaikit/zai"

	"github.com/panjf2000/ants/v2"
)

const defaultImageSize = "1024x1024"

type ImageGenerationOptions struct {
	Prompt string
	Size   string

	// Sizes renders the prompt once per size.
	Sizes []string
	// Styles renders one subject in several artistic styles.
	Styles bool

	// concurrent generations for batches
	Workers int
}

// ImageJob is one image to generate.
type ImageJob struct {
	Label  string
	Prompt string
	Size   string
}

type ImageResult struct {
	Job ImageJob
	URL string
	Err error
}

const styleSubject = "a majestic lion"

func styleJobs() []ImageJob {
	return []ImageJob{
		{Label: "Photorealistic", Prompt: "Photorealistic " + styleSubject + " in golden savanna light, wildlife photography, sharp focus, natural lighting"},
		{Label: "Oil Painting", Prompt: "Oil painting of " + styleSubject + ", impressionist style, bold brush strokes, rich colors, canvas texture"},
		{Label: "Anime Style", Prompt: "Anime illustration of " + styleSubject + ", Studio Ghibli style, vibrant colors, detailed fur, fantasy elements"},
		{Label: "Watercolor", Prompt: "Delicate watercolor painting of " + styleSubject + ", soft edges, flowing colors, artistic splashes"},
	}
}

// imageJobs expands the options into the batch to render.
func imageJobs(env *Env, opts ImageGenerationOptions) []ImageJob {
	prompt := cmp.Or(opts.Prompt, env.Config.Prompts.ImageGen)
	size := cmp.Or(opts.Size, defaultImageSize)

	switch {
	case opts.Styles:
		jobs := styleJobs()
		for i := range jobs {
			jobs[i].Size = size
		}
		return jobs
	case len(opts.Sizes) > 0:
		jobs := make([]ImageJob, 0, len(opts.Sizes))
		for _, s := range opts.Sizes {
			jobs = append(jobs, ImageJob{Label: s, Prompt: prompt, Size: s})
		}
		return jobs
	}
	return []ImageJob{{Label: "image", Prompt: prompt, Size: size}}
}

// ImageGeneration renders one image or a batch on a bounded worker pool.
func ImageGeneration(ctx context.Context, env *Env, opts ImageGenerationOptions) error {
	if env.Media == nil {
		return ErrNoMedia
	}

	jobs := imageJobs(env, opts)

	env.Out.Section("Image Generation")
	env.Out.KV("Model", env.Config.Models.ImageGen)
	if len(jobs) == 1 {
		env.Out.KV("Prompt", jobs[0].Prompt)
		env.Out.KV("Size", jobs[0].Size)
	} else {
		env.Out.KV("Images", len(jobs))
	}

	results, err := render.Spin(ctx, env.Out, "Generating", func(ctx context.Context) ([]ImageResult, error) {
		return GenerateImages(ctx, env.Media, env.Config.Models.ImageGen, jobs, opts.Workers)
	})
	if err != nil {
		return err
	}

	if len(results) == 1 {
		r := results[0]
		if r.Err != nil {
			return fmt.Errorf("image generation: %w", r.Err)
		}
		env.Out.Panel(render.KindSuccess, "Result", "Image generated successfully!")
		env.Out.KV("URL", r.URL)
		env.Out.Remember(r.URL)
		env.Out.Muted("The URL is temporary. Download the image to save it.")
		return nil
	}

	rows := make([][]string, 0, len(results))
	failed := 0
	for _, r := range results {
		status := truncate(r.URL, 60)
		if r.Err != nil {
			failed++
			status = "error: " + truncate(r.Err.Error(), 53)
		}
		rows = append(rows, []string{r.Job.Label, r.Job.Size, status})
	}
	env.Out.Table([]string{"Label", "Size", "URL"}, rows)
	if failed > 0 {
		env.Out.Warn(fmt.Sprintf("%d of %d images failed", failed, len(results)))
	}
	return nil
}

// GenerateImages runs jobs concurrently, at most workers at a time. Results
// keep the order of jobs; a failed job does not stop the others.
func GenerateImages(ctx context.Context, gen llm.ImageGenerator, model string, jobs []ImageJob, workers int) ([]ImageResult, error) {
	if workers <= 0 {
		workers = 4
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("new image pool: %w", err)
	}
	defer pool.Release()

	results := make([]ImageResult, len(jobs))
	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			results[i] = generateOne(ctx, gen, model, j)
		})
		if err != nil {
			wg.Done()
			results[i] = ImageResult{Job: j, Err: fmt.Errorf("submit image task: %w", err)}
		}
	}
	wg.Wait()

	return results, nil
}

func generateOne(ctx context.Context, gen llm.ImageGenerator, model string, j ImageJob) ImageResult {
	resp, err := gen.GenerateImage(ctx, &llm.ImageRequest{Model: model, Prompt: j.Prompt, Size: j.Size})
	if err != nil {
		return ImageResult{Job: j, Err: err}
	}
	if len(resp.URLs) == 0 {
		return ImageResult{Job: j, Err: errors.New("no image data returned")}
	}
	return ImageResult{Job: j, URL: resp.URLs[0]}
}

type VideoOptions struct {
	Prompt    string
	ImageURLs []string
	Quality   string
	Size      string
	FPS       int
	WithAudio *bool

	PollInterval time.Duration
	MaxWait      time.Duration
}

// TextToVideo generates a video from the prompt alone.
func TextToVideo(ctx context.Context, env *Env, opts VideoOptions) error {
	opts.Prompt = cmp.Or(opts.Prompt, env.Config.Prompts.VideoGen)
	opts.ImageURLs = nil
	return generateVideo(ctx, env, "Text-to-Video Generation", opts)
}

// ImageToVideo animates one image.
func ImageToVideo(ctx context.Context, env *Env, opts VideoOptions) error {
	opts.Prompt = cmp.Or(opts.Prompt, "Animate this image with natural, smooth motion")
	if len(opts.ImageURLs) == 0 {
		opts.ImageURLs = []string{env.sampleImage()}
	}
	opts.ImageURLs = opts.ImageURLs[:1]
	return generateVideo(ctx, env, "Image-to-Video Generation", opts)
}

// FramesToVideo creates a transition between a first and a last frame.
func FramesToVideo(ctx context.Context, env *Env, opts VideoOptions) error {
	opts.Prompt = cmp.Or(opts.Prompt, "Smooth transition between the two frames with natural motion")
	if len(opts.ImageURLs) != 2 {
		opts.ImageURLs = []string{env.Config.Samples.FirstFrame, env.Config.Samples.LastFrame}
	}
	return generateVideo(ctx, env, "Start/End Frame Video Generation", opts)
}

func (e *Env) videoRequest(opts VideoOptions) *zai.VideoRequest {
	c := e.Config.Video
	withAudio := opts.WithAudio
	if withAudio == nil {
		v := e.Config.VideoWithAudio()
		withAudio = &v
	}
	return &zai.VideoRequest{
		Model:     e.Config.Models.VideoGen,
		Prompt:    opts.Prompt,
		Quality:   cmp.Or(opts.Quality, c.Quality),
		Size:      cmp.Or(opts.Size, c.Size),
		FPS:       cmp.Or(opts.FPS, c.FPS),
		WithAudio: withAudio,
		ImageURLs: opts.ImageURLs,
	}
}

func generateVideo(ctx context.Context, env *Env, title string, opts VideoOptions) error {
	if env.ZAI == nil {
		return ErrNoPlatform
	}

	req := env.videoRequest(opts)
	env.Out.Section(title)
	env.Out.KV("Model", req.Model)
	env.Out.KV("Prompt", req.Prompt)
	for i, u := range req.ImageURLs {
		env.Out.KV(fmt.Sprintf("Image %d", i+1), truncate(u, 60))
	}
	env.Out.KV("Quality", req.Quality)
	env.Out.KV("Size", req.Size)
	env.Out.KV("FPS", req.FPS)
	env.Out.KV("Audio", *req.WithAudio)

	sub, err := render.Spin(ctx, env.Out, "Submitting video request", func(ctx context.Context) (*zai.VideoSubmission, error) {
		return env.ZAI.SubmitVideo(ctx, req)
	})
	if err != nil {
		return err
	}
	env.recordJob(sub.ID)
	env.Out.Textf("Job submitted! ID: %s", sub.ID)

	out, err := awaitVideo(ctx, env, env.ZAI, sub.ID, opts.PollInterval, opts.MaxWait)
	if err != nil {
		return err
	}
	return reportVideo(env, out)
}

// awaitVideo polls jobID, printing every status read.
func awaitVideo(ctx context.Context, env *Env, fetcher job.StatusFetcher, jobID string, interval, maxWait time.Duration) (job.Outcome, error) {
	poller := job.NewPoller(fetcher,
		job.WithSleep(env.sleep()),
		job.WithOnPoll(func(snap *job.Snapshot, elapsed time.Duration) {
			env.Out.Muted(fmt.Sprintf("%s (%s elapsed)", cmp.Or(snap.RawStatus, string(snap.Status)), elapsed))
		}),
	)
	return poller.AwaitCompletion(ctx, jobID,
		cmp.Or(interval, env.Config.Video.PollInterval),
		cmp.Or(maxWait, env.Config.Video.MaxWait),
	)
}

func reportVideo(env *Env, out job.Outcome) error {
	switch out.Kind {
	case job.OutcomeCompleted:
		env.Out.Panel(render.KindSuccess, "Result", "Video generated successfully!")
		if out.Payload != nil {
			env.Out.KV("Video URL", out.Payload.URL)
			env.Out.KV("Cover Image", out.Payload.CoverImageURL)
			env.Out.Remember(out.Payload.URL)
		}
		env.Out.Muted("URLs are temporary. Download the video to save it.")
		return nil
	case job.OutcomeFailed:
		return fmt.Errorf("video job %s failed", out.JobID)
	default:
		env.Out.Warn(fmt.Sprintf("Timeout waiting for video generation after %s.\nCheck status later with: zaikit video status %s", out.Elapsed, out.JobID))
		return nil
	}
}

// VideoStatus resumes polling of earlier jobs concurrently.
func VideoStatus(ctx context.Context, env *Env, jobIDs []string, workers int) error {
	if env.ZAI == nil {
		return ErrNoPlatform
	}
	if len(jobIDs) == 0 {
		return errors.New("no job ids given and none recorded")
	}

	env.Out.Section("Video Job Status")
	poller := job.NewPoller(env.ZAI, job.WithSleep(env.sleep()))
	results, err := render.Spin(ctx, env.Out, fmt.Sprintf("Polling %d jobs", len(jobIDs)), func(ctx context.Context) ([]job.BatchResult, error) {
		return poller.AwaitAll(ctx, jobIDs, env.Config.Video.PollInterval, env.Config.Video.MaxWait, workers)
	})
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status, url := r.Outcome.Kind.String(), ""
		if r.Err != nil {
			status = "error: " + truncate(r.Err.Error(), 50)
		} else if r.Outcome.Payload != nil {
			url = r.Outcome.Payload.URL
		}
		rows = append(rows, []string{r.JobID, status, url})
	}
	env.Out.Table([]string{"Job", "Status", "Video URL"}, rows)
	return nil
}
