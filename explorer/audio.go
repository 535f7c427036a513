package explorer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/ryanreadbooks/zaikit/llm"
	"github.com/ryanreadbooks/zaikit/render"
	"github.com/ryanreadbooks/zaikit/zai"

	"github.com/bmatcuk/doublestar/v4"
)

var ErrNoAudioFiles = errors.New("no audio files match")

type TranscribeOptions struct {
	// Files are paths or glob patterns such as recordings/**/*.mp3.
	Files    []string
	Language string
}

// ExpandAudioPaths resolves every pattern, keeping plain paths as they are
// so a missing file is reported by name. Duplicates are dropped.
func ExpandAudioPaths(patterns []string) ([]string, error) {
	var paths []string
	for _, p := range patterns {
		if !strings.ContainsAny(p, "*?[{") {
			paths = append(paths, p)
			continue
		}

		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		paths = append(paths, matches...)
	}

	slices.Sort(paths)
	paths = slices.Compact(paths)
	if len(paths) == 0 {
		return nil, ErrNoAudioFiles
	}
	return paths, nil
}

// Transcribe converts each audio file to text in one request per file.
func Transcribe(ctx context.Context, env *Env, opts TranscribeOptions) error {
	if env.Media == nil {
		return ErrNoMedia
	}

	paths, err := ExpandAudioPaths(opts.Files)
	if err != nil {
		return err
	}

	env.Out.Section("Audio Transcription")
	env.Out.KV("Model", env.Config.Models.AudioASR)
	if opts.Language != "" {
		env.Out.KV("Language", opts.Language)
	}

	rows := make([][]string, 0, len(paths))
	var errs []error
	for _, path := range paths {
		text, size, err := transcribeFile(ctx, env, path, opts.Language)
		if err != nil {
			env.Out.Error(err)
			errs = append(errs, err)
			rows = append(rows, []string{path, size, "failed"})
			continue
		}
		rows = append(rows, []string{path, size, fmt.Sprintf("%d chars", len([]rune(text)))})
	}

	if len(paths) > 1 {
		env.Out.Text("")
		env.Out.Table([]string{"File", "Size", "Result"}, rows)
	}
	return errors.Join(errs...)
}

func transcribeFile(ctx context.Context, env *Env, path, language string) (string, string, error) {
	audio, err := zai.OpenAudio(path)
	if err != nil {
		return "", "-", err
	}
	size := fmt.Sprintf("%.2f MB", audio.SizeMB())

	env.Out.Text("")
	env.Out.KV("Audio File", audio.Path)
	env.Out.KV("File Size", size)

	f, err := os.Open(audio.Path)
	if err != nil {
		return "", size, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	resp, err := render.Spin(ctx, env.Out, "Transcribing audio", func(ctx context.Context) (*llm.TranscriptionResponse, error) {
		return env.Media.Transcribe(ctx, &llm.TranscriptionRequest{
			Model:       env.Config.Models.AudioASR,
			File:        f,
			Filename:    audio.Name,
			ContentType: audio.ContentType,
			Language:    language,
		})
	})
	if err != nil {
		return "", size, fmt.Errorf("transcribe %s: %w", audio.Name, err)
	}

	env.Out.Answer("Transcription", resp.Text)
	return resp.Text, size, nil
}

type StreamTranscribeOptions struct {
	File     string
	Language string
}

// StreamTranscription prints the transcript as the server produces it.
func StreamTranscription(ctx context.Context, env *Env, opts StreamTranscribeOptions) error {
	if env.ZAI == nil {
		return ErrNoPlatform
	}

	audio, err := zai.OpenAudio(opts.File)
	if err != nil {
		return err
	}

	env.Out.Section("Streaming Audio Transcription")
	env.Out.KV("Model", env.Config.Models.AudioASR)
	env.Out.KV("Audio File", audio.Path)
	env.Out.KV("File Size", fmt.Sprintf("%.2f MB", audio.SizeMB()))
	env.Out.KV("Mode", "Streaming")
	env.Out.Text("")

	stream, err := env.ZAI.TranscribeStream(ctx, &zai.TranscriptionRequest{
		Model:    env.Config.Models.AudioASR,
		File:     audio,
		Language: opts.Language,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	var printed string
	for stream.Next() {
		printed = printProgress(env, printed, stream.Text())
	}
	env.Out.Text("")
	if err := stream.Err(); err != nil {
		return fmt.Errorf("streaming transcription: %w", err)
	}

	text := stream.Text()
	if text == "" {
		text = "No transcription received"
	}
	env.Out.Answer("Complete Transcription", text)
	if n := len(stream.Segments()); n > 0 {
		env.Out.Muted(fmt.Sprintf("Received %d segments", n))
	}
	return nil
}

// printProgress writes what current adds to printed. A server that
// rewrites earlier text gets the whole transcript on a fresh line.
func printProgress(env *Env, printed, current string) string {
	switch {
	case current == printed:
	case strings.HasPrefix(current, printed):
		env.Out.Stream(current[len(printed):])
	default:
		env.Out.Stream("\n" + current)
	}
	return current
}
