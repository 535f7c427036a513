package render

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(&buf, WithWidth(60)), &buf
}

func TestPanelAndError(t *testing.T) {
	p, buf := newTestPrinter()
	p.Panel(KindInfo, "Model", "glm-4.7")
	p.Error(errors.New("boom"))
	p.Error(nil)

	out := buf.String()
	for _, want := range []string{"Model", "glm-4.7", "error", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestTableAlignsWideRunes(t *testing.T) {
	p, buf := newTestPrinter()
	p.Table([]string{"name", "value"}, [][]string{
		{"东京", "1"},
		{"paris", "22"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	// "东京" is four cells wide, padded to "paris"
	if !strings.HasPrefix(lines[2], "东京   1") {
		t.Errorf("row = %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "paris  22") {
		t.Errorf("row = %q", lines[3])
	}
}

func TestFormatArgs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "(no arguments)"},
		{"empty object", "{}", "(no arguments)"},
		{"sorted", `{"unit":"celsius","location":"Tokyo"}`, "location=Tokyo, unit=celsius"},
		{"malformed", `{"location":`, `{"location":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatArgs(tt.in, 80); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAnswerRemembered(t *testing.T) {
	p, buf := newTestPrinter()
	p.Answer("Assistant", "The answer is **42**.")
	if p.LastAnswer() != "The answer is **42**." {
		t.Errorf("last = %q", p.LastAnswer())
	}
	if !strings.Contains(buf.String(), "42") {
		t.Errorf("out = %q", buf.String())
	}
	// copy disabled
	if err := p.Flush(); err != nil {
		t.Error(err)
	}
}

func TestSpinWithoutTTY(t *testing.T) {
	p, buf := newTestPrinter()
	got, err := Spin(t.Context(), p, "Generating", func(context.Context) (int, error) {
		return 7, nil
	})
	if err != nil || got != 7 {
		t.Fatalf("got %d, %v", got, err)
	}
	if !strings.Contains(buf.String(), "Generating...") {
		t.Errorf("out = %q", buf.String())
	}
}

func TestSpinnerModel(t *testing.T) {
	m := newSpinnerModel("Waiting", DefaultTheme())
	if !strings.Contains(m.View(), "Waiting...") {
		t.Errorf("view = %q", m.View())
	}

	next, cmd := m.Update(doneMsg{})
	if cmd == nil {
		t.Error("want quit command")
	}
	if v := next.(spinnerModel).View(); v != "" {
		t.Errorf("view after done = %q", v)
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Error("want quit on ctrl-c")
	}
}
