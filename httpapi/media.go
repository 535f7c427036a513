package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/ryanreadbooks/zaikit/job"
)

type ImageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size,omitempty"`
}

type ImageResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL string `json:"url"`
	} `json:"data"`

	Raw json.RawMessage `json:"-"`
}

func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	var out ImageResponse
	raw, err := c.postJSON(ctx, c.endpoints.Images, req, &out)
	if err != nil {
		return nil, fmt.Errorf("http image generation: %w", err)
	}
	out.Raw = raw
	return &out, nil
}

type VideoRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	Quality   string `json:"quality,omitempty"`
	Size      string `json:"size,omitempty"`
	FPS       int    `json:"fps,omitempty"`
	WithAudio bool   `json:"with_audio"`
	ImageURL  string `json:"image_url,omitempty"`
}

type VideoStatus struct {
	ID          string       `json:"id"`
	Model       string       `json:"model"`
	TaskStatus  string       `json:"task_status"`
	VideoResult []job.Result `json:"video_result"`

	Raw json.RawMessage `json:"-"`
}

// SubmitVideo posts a video generation job and returns its id.
func (c *Client) SubmitVideo(ctx context.Context, req VideoRequest) (*VideoStatus, error) {
	var out VideoStatus
	raw, err := c.postJSON(ctx, c.endpoints.Videos, req, &out)
	if err != nil {
		return nil, fmt.Errorf("http video submit: %w", err)
	}
	out.Raw = raw
	if out.ID == "" {
		return &out, job.ErrEmptyJobID
	}
	return &out, nil
}

func (c *Client) VideoStatus(ctx context.Context, jobID string) (*VideoStatus, error) {
	var out VideoStatus
	raw, err := c.getJSON(ctx, c.endpoints.AsyncResult+"/"+url.PathEscape(jobID), &out)
	if err != nil {
		return nil, fmt.Errorf("http video status: %w", err)
	}
	out.Raw = raw
	return &out, nil
}

var _ job.StatusFetcher = (*Client)(nil)

func (c *Client) FetchStatus(ctx context.Context, jobID string) (*job.Snapshot, error) {
	st, err := c.VideoStatus(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &job.Snapshot{
		JobID:     jobID,
		Status:    job.ParseStatus(st.TaskStatus),
		RawStatus: st.TaskStatus,
		Results:   st.VideoResult,
	}, nil
}

type CurlExample struct {
	Name    string
	Command string
}

// VideoCurlExamples renders the curl equivalents of the async video flow.
func (c *Client) VideoCurlExamples(model string) []CurlExample {
	submit := c.URL(c.endpoints.Videos)
	status := c.URL(c.endpoints.AsyncResult)

	var b strings.Builder
	fmt.Fprintf(&b, "curl -X POST %q \\\n", submit)
	b.WriteString("  -H \"Authorization: Bearer $Z_AI_API_KEY\" \\\n")
	b.WriteString("  -H \"Content-Type: application/json\" \\\n")
	fmt.Fprintf(&b, "  -d '{\"model\": %q, \"prompt\": \"A butterfly landing on a flower\", \"quality\": \"quality\", \"size\": \"1920x1080\", \"fps\": 30, \"with_audio\": true}'\n\n", model)
	b.WriteString("# Response will contain an \"id\" field")

	var i2v strings.Builder
	fmt.Fprintf(&i2v, "curl -X POST %q \\\n", submit)
	i2v.WriteString("  -H \"Authorization: Bearer $Z_AI_API_KEY\" \\\n")
	i2v.WriteString("  -H \"Content-Type: application/json\" \\\n")
	fmt.Fprintf(&i2v, "  -d '{\"model\": %q, \"prompt\": \"Animate with gentle motion\", \"image_url\": \"https://example.com/image.png\", \"quality\": \"quality\"}'", model)

	return []CurlExample{
		{Name: "Step 1: Submit Video Job", Command: b.String()},
		{
			Name: "Step 2: Poll for Result",
			Command: fmt.Sprintf("# Replace VIDEO_ID with the id from step 1\ncurl -X GET \"%s/VIDEO_ID\" \\\n"+
				"  -H \"Authorization: Bearer $Z_AI_API_KEY\"\n\n# Repeat until task_status is \"SUCCESS\" or \"FAIL\"", status),
		},
		{Name: "Image-to-Video", Command: i2v.String()},
	}
}
