// Package render prints example output to the terminal: panels, markdown
// answers, tables and streamed text.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
)

const defaultWidth = 100

type Printer struct {
	out   io.Writer
	theme *Theme
	md    *glamour.TermRenderer
	width int
	tty   bool

	copyAnswer bool
	lastAnswer string
}

type Option func(*Printer)

func WithWidth(w int) Option {
	return func(p *Printer) { p.width = w }
}

// WithCopy copies the last answer to the clipboard on Flush.
func WithCopy(enabled bool) Option {
	return func(p *Printer) { p.copyAnswer = enabled }
}

func WithTTY(tty bool) Option {
	return func(p *Printer) { p.tty = tty }
}

func New(out io.Writer, opts ...Option) *Printer {
	p := &Printer{
		out:   out,
		theme: DefaultTheme(),
		width: defaultWidth,
	}
	if f, ok := out.(*os.File); ok {
		p.tty = isatty.IsTerminal(f.Fd())
	}
	for _, opt := range opts {
		opt(p)
	}

	style := "notty"
	if p.tty {
		style = "dark"
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(p.width),
	)
	if err != nil {
		slog.Debug("[render] markdown renderer unavailable", "error", err)
	} else {
		p.md = md
	}
	return p
}

func (p *Printer) Writer() io.Writer { return p.out }

func (p *Printer) IsTTY() bool { return p.tty }

func (p *Printer) Text(s string) {
	fmt.Fprintln(p.out, s)
}

func (p *Printer) Textf(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Stream writes s without a trailing newline, for token by token output.
func (p *Printer) Stream(s string) {
	fmt.Fprint(p.out, s)
}

func (p *Printer) StreamThinking(s string) {
	fmt.Fprint(p.out, p.theme.Thinking.Render(s))
}

func (p *Printer) Section(title string) {
	rule := strings.Repeat("=", min(p.width, runewidth.StringWidth(title)+8))
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.theme.Section.Render(rule))
	fmt.Fprintln(p.out, p.theme.Section.Render("    "+title))
	fmt.Fprintln(p.out, p.theme.Section.Render(rule))
}

func (p *Printer) Muted(s string) {
	fmt.Fprintln(p.out, p.theme.Muted.Render(s))
}

func (p *Printer) KV(key string, value any) {
	fmt.Fprintf(p.out, "%s %v\n", p.theme.Key.Render(key+":"), value)
}

func (p *Printer) Panel(kind Kind, title, body string) {
	pt, ok := p.theme.Panels[kind]
	if !ok {
		pt = p.theme.Panels[KindInfo]
	}
	content := strings.TrimRight(body, "\n")
	if title != "" {
		content = pt.TitleStyle.Render(title) + "\n" + content
	}
	fmt.Fprintln(p.out, pt.BoxStyle.Width(p.width-2).Render(content))
}

func (p *Printer) Markdown(s string) {
	fmt.Fprintln(p.out, p.renderMarkdown(s))
}

func (p *Printer) renderMarkdown(s string) string {
	if p.md == nil {
		return s
	}
	out, err := p.md.Render(s)
	if err != nil {
		return s
	}
	return strings.Trim(out, "\n")
}

// Answer prints a final model answer and remembers it for the clipboard.
func (p *Printer) Answer(title, s string) {
	p.lastAnswer = s
	p.Panel(KindAssistant, title, p.renderMarkdown(s))
}

// Remember records an answer that was already streamed to the terminal.
func (p *Printer) Remember(s string) {
	p.lastAnswer = s
}

func (p *Printer) Thinking(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	p.Panel(KindThinking, "thinking", s)
}

func (p *Printer) ToolCall(name, args string) {
	fmt.Fprintf(p.out, "%s %s\n", p.theme.ToolName.Render("-> "+name), p.theme.ToolArgs.Render(FormatArgs(args, p.width)))
}

func (p *Printer) ToolResult(name, result string) {
	fmt.Fprintf(p.out, "%s %s\n", p.theme.ToolName.Render("<- "+name), p.theme.ToolArgs.Render(runewidth.Truncate(oneLine(result), p.width, "...")))
}

func (p *Printer) Warn(s string) {
	p.Panel(KindWarn, "warning", s)
}

func (p *Printer) Error(err error) {
	if err == nil {
		return
	}
	p.Panel(KindError, "error", err.Error())
}

// Table renders rows aligned by display width, so CJK text lines up.
func (p *Printer) Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := range min(len(row), len(widths)) {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(widths))
		for i, w := range widths {
			var c string
			if i < len(cells) {
				c = cells[i]
			}
			parts[i] = runewidth.FillRight(c, w)
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	fmt.Fprintln(p.out, p.theme.Key.Render(line(headers)))
	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	fmt.Fprintln(p.out, p.theme.Muted.Render(strings.Join(seps, "  ")))
	for _, row := range rows {
		fmt.Fprintln(p.out, line(row))
	}
}

// JSON pretty prints v.
func (p *Printer) JSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		p.Text(fmt.Sprint(v))
		return
	}
	p.Text(string(b))
}

// Flush copies the last answer to the clipboard when enabled.
func (p *Printer) Flush() error {
	if !p.copyAnswer || p.lastAnswer == "" {
		return nil
	}
	if err := clipboard.WriteAll(p.lastAnswer); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	p.Muted("(answer copied to clipboard)")
	return nil
}

func (p *Printer) LastAnswer() string { return p.lastAnswer }

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FormatArgs renders json tool arguments as sorted key=value pairs,
// falling back to the raw text when they do not parse.
func FormatArgs(argsJSON string, maxLen int) string {
	if strings.TrimSpace(argsJSON) == "" {
		return "(no arguments)"
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return runewidth.Truncate(oneLine(argsJSON), maxLen, "...")
	}
	if len(args) == 0 {
		return "(no arguments)"
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return runewidth.Truncate(strings.Join(parts, ", "), maxLen, "...")
}
