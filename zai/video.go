package zai

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/ryanreadbooks/zaikit/job"
)

type VideoRequest struct {
	Model   string
	Prompt  string
	Quality string // quality or speed
	Size    string
	FPS     int
	// nil keeps the server default
	WithAudio *bool

	// one url animates an image, two urls are the first and last frame
	ImageURLs []string
}

func (r *VideoRequest) payload(requestID string) map[string]any {
	body := map[string]any{
		"model":      r.Model,
		"request_id": requestID,
	}
	if r.Prompt != "" {
		body["prompt"] = r.Prompt
	}
	if r.Quality != "" {
		body["quality"] = r.Quality
	}
	if r.Size != "" {
		body["size"] = r.Size
	}
	if r.FPS > 0 {
		body["fps"] = r.FPS
	}
	if r.WithAudio != nil {
		body["with_audio"] = *r.WithAudio
	}
	switch len(r.ImageURLs) {
	case 0:
	case 1:
		body["image_url"] = r.ImageURLs[0]
	default:
		body["image_url"] = r.ImageURLs
	}
	return body
}

type VideoSubmission struct {
	ID         string `json:"id"`
	Model      string `json:"model"`
	RequestID  string `json:"request_id"`
	TaskStatus string `json:"task_status"`
}

// SubmitVideo starts an asynchronous video generation job.
func (c *Client) SubmitVideo(ctx context.Context, req *VideoRequest) (*VideoSubmission, error) {
	requestID := newRequestID()

	var out VideoSubmission
	if err := c.postJSON(ctx, c.cfg.VideoPath, req.payload(requestID), &out); err != nil {
		return nil, wrap("submit video", err)
	}
	if out.ID == "" {
		return nil, ErrEmptyJobID
	}

	slog.Debug("[zai] video submitted", "job_id", out.ID, "request_id", requestID)
	return &out, nil
}

type asyncResult struct {
	Model       string       `json:"model"`
	RequestID   string       `json:"request_id"`
	TaskStatus  string       `json:"task_status"`
	VideoResult []job.Result `json:"video_result"`
}

var _ job.StatusFetcher = (*Client)(nil)

// FetchStatus reads the async result of a job.
func (c *Client) FetchStatus(ctx context.Context, jobID string) (*job.Snapshot, error) {
	var out asyncResult
	if err := c.get(ctx, c.cfg.AsyncResultPath+"/"+url.PathEscape(jobID), &out); err != nil {
		return nil, wrap("fetch async result", err)
	}

	return &job.Snapshot{
		JobID:     jobID,
		Status:    job.ParseStatus(out.TaskStatus),
		RawStatus: out.TaskStatus,
		Results:   out.VideoResult,
	}, nil
}
