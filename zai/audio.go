package zai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"
)

const MaxAudioBytes = 25 << 20

// AudioFile is a local audio file checked against the upload limit.
type AudioFile struct {
	Path        string
	Name        string
	Size        int64
	ContentType string
}

func (f *AudioFile) SizeMB() float64 {
	return float64(f.Size) / (1 << 20)
}

// OpenAudio stats path, rejects files over the upload limit and sniffs the
// content type.
func OpenAudio(path string) (*AudioFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat audio file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxAudioBytes {
		return nil, fmt.Errorf("%w: %.1fMB, maximum is 25MB", ErrFileTooLarge, float64(info.Size())/(1<<20))
	}

	contentType := "audio/mpeg"
	if mt, err := mimetype.DetectFile(path); err == nil && mt.String() != "application/octet-stream" {
		contentType = mt.String()
	}

	return &AudioFile{
		Path:        path,
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ContentType: contentType,
	}, nil
}

type TranscriptionRequest struct {
	Model    string
	File     *AudioFile
	Language string
}

// TranscriptEvent is one server sent event of a streaming transcription.
type TranscriptEvent struct {
	Type string `json:"type"`
	// text carries the full transcript so far, delta only the new part
	Text    string          `json:"text"`
	Delta   string          `json:"delta"`
	Segment json.RawMessage `json:"segment"`
}

// TranscriptStream yields transcription events until the server sends
// [DONE]. Text returns the transcript assembled so far.
type TranscriptStream struct {
	stream   *ssestream.Stream[TranscriptEvent]
	text     strings.Builder
	segments []json.RawMessage
}

func (s *TranscriptStream) Next() bool {
	if !s.stream.Next() {
		return false
	}

	ev := s.stream.Current()
	switch {
	case ev.Text != "":
		s.text.Reset()
		s.text.WriteString(ev.Text)
	case ev.Delta != "":
		s.text.WriteString(ev.Delta)
	}
	if len(ev.Segment) > 0 && string(ev.Segment) != "null" {
		s.segments = append(s.segments, ev.Segment)
	}
	return true
}

func (s *TranscriptStream) Current() TranscriptEvent {
	return s.stream.Current()
}

func (s *TranscriptStream) Text() string {
	return s.text.String()
}

func (s *TranscriptStream) Segments() []json.RawMessage {
	return s.segments
}

func (s *TranscriptStream) Err() error {
	return s.stream.Err()
}

func (s *TranscriptStream) Close() error {
	return s.stream.Close()
}

func buildAudioForm(req *TranscriptionRequest, stream bool) (string, *bytes.Buffer, error) {
	f, err := os.Open(req.File.Path)
	if err != nil {
		return "", nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fields := map[string]string{
		"model":      req.Model,
		"stream":     fmt.Sprint(stream),
		"request_id": newRequestID(),
	}
	if req.Language != "" {
		fields["language"] = req.Language
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return "", nil, err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, req.File.Name))
	h.Set("Content-Type", req.File.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return "", nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", nil, fmt.Errorf("copy audio file: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", nil, err
	}

	return w.FormDataContentType(), body, nil
}

// TranscribeStream uploads the audio file and streams transcription
// events back.
func (c *Client) TranscribeStream(ctx context.Context, req *TranscriptionRequest) (*TranscriptStream, error) {
	contentType, body, err := buildAudioForm(req, true)
	if err != nil {
		return nil, err
	}

	var raw *http.Response
	err = c.cli.Post(ctx, c.cfg.AudioPath, nil, &raw,
		option.WithRequestBody(contentType, body),
		option.WithHeader("Accept", "text/event-stream"),
	)
	if err != nil {
		return nil, wrap("transcribe stream", err)
	}

	return &TranscriptStream{
		stream: ssestream.NewStream[TranscriptEvent](ssestream.NewDecoder(raw), nil),
	}, nil
}
