package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
)

// LineEditor reads user input. Ctrl-C and Ctrl-D both surface as io.EOF so
// every interactive loop ends the same way.
type LineEditor interface {
	ReadLine(prompt string) (string, error)
	ReadSecret(prompt string) (string, error)
	Close() error
}

// NewLineEditor returns a readline editor with history in workspaceDir
// when stdin is a terminal, and a plain line reader otherwise.
func NewLineEditor(workspaceDir string) (LineEditor, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return &stdioEditor{reader: bufio.NewReader(os.Stdin)}, nil
	}

	if err := os.MkdirAll(workspaceDir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &readlineEditor{historyFile: filepath.Join(workspaceDir, "history")}, nil
}

// readlineEditor opens a fresh instance per prompt, so the spinner owns
// stdin while a request runs.
type readlineEditor struct {
	historyFile string
}

func (r *readlineEditor) open(prompt string) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       r.historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
}

func (r *readlineEditor) ReadLine(prompt string) (string, error) {
	rl, err := r.open(prompt)
	if err != nil {
		return "", err
	}
	defer rl.Close()

	line, err := rl.Readline()
	return strings.TrimSpace(line), inputErr(err)
}

func (r *readlineEditor) ReadSecret(prompt string) (string, error) {
	rl, err := r.open("")
	if err != nil {
		return "", err
	}
	defer rl.Close()

	b, err := rl.ReadPassword(prompt)
	return strings.TrimSpace(string(b)), inputErr(err)
}

func (r *readlineEditor) Close() error { return nil }

func inputErr(err error) error {
	if errors.Is(err, readline.ErrInterrupt) {
		return io.EOF
	}
	return err
}

type stdioEditor struct {
	reader *bufio.Reader
}

func (s *stdioEditor) ReadLine(prompt string) (string, error) {
	fmt.Fprint(os.Stdout, prompt)
	line, err := s.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *stdioEditor) ReadSecret(prompt string) (string, error) {
	return s.ReadLine(prompt)
}

func (s *stdioEditor) Close() error { return nil }
