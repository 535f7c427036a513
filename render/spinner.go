package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type spinnerModel struct {
	spinner spinner.Model
	label   string
	done    bool
}

type doneMsg struct{}

func newSpinnerModel(label string, theme *Theme) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.Spinner

	return spinnerModel{spinner: s, label: label}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil

	case doneMsg:
		m.done = true
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s...", m.spinner.View(), m.label)
}

type spinResult[T any] struct {
	val T
	err error
}

// Spin runs fn while a spinner is shown. Without a terminal it prints the
// label once and runs fn directly.
func Spin[T any](ctx context.Context, p *Printer, label string, fn func(context.Context) (T, error)) (T, error) {
	if !p.tty {
		p.Muted(label + "...")
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(newSpinnerModel(label, p.theme),
		tea.WithOutput(p.out),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)

	done := make(chan spinResult[T], 1)
	go func() {
		val, err := fn(ctx)
		done <- spinResult[T]{val: val, err: err}
		program.Send(doneMsg{})
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		slog.Debug("[render] spinner stopped", "error", err)
	}
	// ctrl-c in the spinner aborts the work as well
	cancel()

	r := <-done
	return r.val, r.err
}
