package explorer

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ryanreadbooks/zaikit/llm/schema"
	"github.com/ryanreadbooks/zaikit/render"
)

type ImageUnderstandingOptions struct {
	ImageURL string
	Prompt   string
	NoStream bool

	// MultiAspect asks four fixed questions about the same image.
	MultiAspect bool
}

var imageAspects = [][2]string{
	{"Description", "Describe this image in detail."},
	{"Objects", "List all objects visible in this image."},
	{"Colors", "What are the dominant colors in this image?"},
	{"Mood", "What mood or atmosphere does this image convey?"},
}

func (e *Env) sampleImage() string {
	if len(e.Config.Samples.Images) == 0 {
		return ""
	}
	return e.Config.Samples.Images[0]
}

// ImageUnderstanding asks the vision model about one image.
func ImageUnderstanding(ctx context.Context, env *Env, opts ImageUnderstandingOptions) error {
	imageURL := cmp.Or(opts.ImageURL, env.sampleImage())
	prompt := cmp.Or(opts.Prompt, env.Config.Prompts.Vision)

	env.Out.Section("Image Understanding")
	env.Out.KV("Model", env.Config.Models.VLM)
	env.Out.KV("Image", truncate(imageURL, 80))

	if opts.MultiAspect {
		rows := make([][]string, 0, len(imageAspects))
		for _, aspect := range imageAspects {
			env.Out.Text("")
			env.Out.KV(aspect[0], aspect[1])
			msg, err := askVision(ctx, env, visionParts(imageURL, false, aspect[1]), false)
			if err != nil {
				return err
			}
			rows = append(rows, []string{aspect[0], truncate(oneLine(msg.Content), 80)})
		}
		env.Out.Text("")
		env.Out.Table([]string{"Aspect", "Summary"}, rows)
		return nil
	}

	env.Out.KV("Prompt", prompt)
	env.Out.Text("")
	_, err := askVision(ctx, env, visionParts(imageURL, false, prompt), !opts.NoStream)
	return err
}

func visionParts(url string, video bool, prompt string) []schema.ContentPart {
	media := schema.ImagePart(url)
	if video {
		media = schema.VideoPart(url)
	}
	return []schema.ContentPart{media, schema.TextPart(prompt)}
}

// askVision sends parts with thinking on. Streamed content is printed live
// and the reasoning summarised afterwards.
func askVision(ctx context.Context, env *Env, parts []schema.ContentPart, stream bool) (*schema.CompletionMessage, error) {
	req := env.chatRequest(env.Config.Models.VLM, schema.NewUserMessageParam(parts))
	req.Thinking = schema.EnableThinking()

	if stream {
		resp, err := env.stream(ctx, req, false)
		if err != nil {
			return nil, fmt.Errorf("vision: %w", err)
		}
		env.Out.Remember(resp.Content)
		env.Out.Thinking(truncate(resp.ReasoningContent, 500))
		msg := resp.Message()
		return &msg, nil
	}

	msg, usage, err := env.complete(ctx, "Analyzing", req)
	if err != nil {
		return nil, fmt.Errorf("vision: %w", err)
	}
	env.Out.Answer("Analysis", msg.Content)
	env.usage(usage)
	return msg, nil
}

type MultiImageOptions struct {
	ImageURLs []string
	Prompt    string

	// Sequential describes each image in its own turn, then compares them
	// from the accumulated context.
	Sequential bool
}

// MultiImageAnalysis reasons across several images in one request.
func MultiImageAnalysis(ctx context.Context, env *Env, opts MultiImageOptions) error {
	urls := opts.ImageURLs
	if len(urls) == 0 {
		urls = env.Config.Samples.Images
	}
	if len(urls) < 2 {
		return errors.New("multi image analysis needs at least two images")
	}
	prompt := cmp.Or(opts.Prompt, "Compare these images. What are the similarities and differences?")

	env.Out.Section("Multi-Image Analysis")
	env.Out.KV("Model", env.Config.Models.VLM)
	for i, u := range urls {
		env.Out.KV(fmt.Sprintf("Image %d", i+1), truncate(u, 60))
	}

	if opts.Sequential {
		return sequentialImages(ctx, env, urls)
	}

	env.Out.KV("Prompt", prompt)
	env.Out.Text("")

	parts := make([]schema.ContentPart, 0, len(urls)+1)
	for _, u := range urls {
		parts = append(parts, schema.ImagePart(u))
	}
	parts = append(parts, schema.TextPart(prompt))

	_, err := askVision(ctx, env, parts, true)
	return err
}

func sequentialImages(ctx context.Context, env *Env, urls []string) error {
	var history []schema.MessageParam
	for i, u := range urls {
		history = append(history, schema.NewUserMessageParam([]schema.ContentPart{
			schema.ImagePart(u),
			schema.TextPart(fmt.Sprintf("Describe image %d briefly.", i+1)),
		}))

		req := env.chatRequest(env.Config.Models.VLM, history...)
		req.Thinking = schema.DisableThinking()
		msg, _, err := env.complete(ctx, fmt.Sprintf("Describing image %d", i+1), req)
		if err != nil {
			return fmt.Errorf("describe image %d: %w", i+1, err)
		}
		history = append(history, msg.Param())
		env.Out.Panel(render.KindAssistant, fmt.Sprintf("Image %d", i+1), msg.Content)
	}

	history = append(history, schema.NewUserMessageParam("Now compare the images you just described."))
	req := env.chatRequest(env.Config.Models.VLM, history...)
	req.Thinking = schema.EnableThinking()
	msg, usage, err := env.complete(ctx, "Comparing", req)
	if err != nil {
		return fmt.Errorf("compare images: %w", err)
	}
	env.Out.Answer("Comparison (with context)", msg.Content)
	env.usage(usage)
	return nil
}

type VideoUnderstandingOptions struct {
	VideoURL string
	Prompt   string

	// Questions asks several short questions with thinking off.
	Questions bool
}

var videoQuestions = []string{
	"Summarize this video in one sentence.",
	"What actions are being performed in this video?",
	"Describe the visual style and mood of this video.",
	"If this video had a title, what would it be?",
}

// VideoUnderstanding asks the vision model about a video url.
func VideoUnderstanding(ctx context.Context, env *Env, opts VideoUnderstandingOptions) error {
	videoURL := cmp.Or(opts.VideoURL, env.Config.Samples.Video)
	prompt := cmp.Or(opts.Prompt, "Describe what is happening in this video. Include details about the scene, actions, and any notable elements.")

	env.Out.Section("Video Understanding")
	env.Out.KV("Model", env.Config.Models.VLM)
	env.Out.KV("Video", truncate(videoURL, 80))

	if !opts.Questions {
		env.Out.KV("Prompt", prompt)
		env.Out.Text("")
		if _, err := askVision(ctx, env, visionParts(videoURL, true, prompt), true); err != nil {
			env.Out.Muted("the video must be publicly accessible and in a supported format")
			return err
		}
		return nil
	}

	for i, q := range videoQuestions {
		req := env.chatRequest(env.Config.Models.VLM, schema.NewUserMessageParam(visionParts(videoURL, true, q)))
		req.Thinking = schema.DisableThinking()

		env.Out.Text("")
		env.Out.KV(fmt.Sprintf("Question %d", i+1), q)
		msg, _, err := env.complete(ctx, "Watching", req)
		if err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
		env.Out.Answer("Answer", msg.Content)
	}
	return nil
}

type ObjectDetectionOptions struct {
	ImageURL string
	// Target narrows detection, all visible objects when empty.
	Target string
}

// Detection is one object found by the vision model. BBox is
// [xmin, ymin, xmax, ymax].
type Detection struct {
	Label      string    `json:"label"`
	BBox       []float64 `json:"bbox_2d"`
	Confidence any       `json:"confidence"`
}

func (d Detection) confidence() string {
	if d.Confidence == nil {
		return "N/A"
	}
	return fmt.Sprint(d.Confidence)
}

func detectionPrompt(target string) string {
	return fmt.Sprintf(`Detect %s in this image.

Return a JSON array where each item has:
- "label": the object name/description
- "bbox_2d": bounding box coordinates as [xmin, ymin, xmax, ymax]
- "confidence": estimated confidence (high/medium/low)

Example format:
[
  {"label": "Person", "bbox_2d": [100, 150, 300, 500], "confidence": "high"},
  {"label": "Car", "bbox_2d": [400, 200, 600, 350], "confidence": "medium"}
]

Only return the JSON, no other text.`, target)
}

// ObjectDetection asks for bounding boxes in json and tabulates them.
func ObjectDetection(ctx context.Context, env *Env, opts ObjectDetectionOptions) error {
	imageURL := cmp.Or(opts.ImageURL, env.sampleImage())
	target := cmp.Or(opts.Target, "all visible objects")

	env.Out.Section("Object Detection")
	env.Out.KV("Model", env.Config.Models.VLM)
	env.Out.KV("Image", truncate(imageURL, 60))
	env.Out.KV("Target", target)

	req := env.chatRequest(env.Config.Models.VLM,
		schema.NewUserMessageParam(visionParts(imageURL, false, detectionPrompt(target))))
	req.Thinking = schema.EnableThinking()
	req.ResponseFormat = schema.ResponseFormatJSONObject

	msg, usage, err := env.complete(ctx, "Detecting objects", req)
	if err != nil {
		return fmt.Errorf("object detection: %w", err)
	}
	env.usage(usage)

	detections, err := ParseDetections(msg.Content)
	if err != nil {
		env.Out.Warn("Could not parse as JSON. Raw response:")
		env.Out.Text(msg.Content)
		return nil
	}

	rows := make([][]string, 0, len(detections))
	for _, d := range detections {
		rows = append(rows, []string{cmp.Or(d.Label, "Unknown"), fmt.Sprint(d.BBox), d.confidence()})
	}
	env.Out.Table([]string{"Label", "Bounding Box", "Confidence"}, rows)
	env.Out.Muted(fmt.Sprintf("Total objects detected: %d", len(detections)))
	env.Out.Remember(msg.Content)
	return nil
}

// ParseDetections reads the model's detection json. It accepts a bare
// array, an object wrapping the array under any key, or a single object,
// optionally inside a markdown code fence.
func ParseDetections(content string) ([]Detection, error) {
	raw := []byte(StripCodeFence(content))

	var list []Detection
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("parse detections: %w", err)
	}
	for _, v := range wrapped {
		if err := json.Unmarshal(v, &list); err == nil {
			return list, nil
		}
	}

	var single Detection
	if err := json.Unmarshal(raw, &single); err == nil && single.Label != "" {
		return []Detection{single}, nil
	}
	return nil, errors.New("parse detections: no detection list in response")
}

// StripCodeFence returns the body of the first ``` fenced block, or s
// trimmed when there is none.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}

	body := s[start+3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{[") {
		// language tag such as json
		body = body[nl+1:]
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}
