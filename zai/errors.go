package zai

import (
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
)

var (
	ErrMissingAPIKey = errors.New("api key is required")
	ErrEmptyJobID    = errors.New("server returned an empty job id")
	ErrEmptyQuery    = errors.New("search query is empty")
	ErrFileTooLarge  = errors.New("audio file too large")
)

// StatusCode extracts the HTTP status from an api error, 0 otherwise.
func StatusCode(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func wrap(op string, err error) error {
	if code := StatusCode(err); code != 0 {
		return fmt.Errorf("zai %s: status %d: %w", op, code, err)
	}
	return fmt.Errorf("zai %s: %w", op, err)
}
