package job

import (
	"context"
	"errors"
)

var (
	ErrEmptyJobID = errors.New("empty job id")
	ErrNoSnapshot = errors.New("status fetcher returned no snapshot")
)

// Status is the client side projection of a remote job status. Any status
// that is neither SUCCESS nor FAIL is pending.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFail    Status = "FAIL"
)

func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFail
}

// ParseStatus maps a remote status word onto Status.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusSuccess:
		return StatusSuccess
	case StatusFail:
		return StatusFail
	}
	return StatusPending
}

// Result is one generated artifact of a finished job.
type Result struct {
	URL           string `json:"url"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
}

type Snapshot struct {
	JobID   string
	Status  Status
	Results []Result

	// remote status word before mapping, e.g. PROCESSING
	RawStatus string
}

type StatusFetcher interface {
	FetchStatus(ctx context.Context, jobID string) (*Snapshot, error)
}
