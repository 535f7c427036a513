package render

import "github.com/charmbracelet/lipgloss"

var (
	ColorUserPrimary       = lipgloss.Color("#937dd8")
	ColorAssistantPrimary  = lipgloss.Color("#0f8b56")
	ColorAssistantThinking = lipgloss.Color("#5e5e5e")
	ColorToolCall          = lipgloss.Color("#6b7b8c")
	ColorToolCallArgs      = lipgloss.Color("#5e6e7e")
	ColorMuted             = lipgloss.Color("#808080")
	ColorDanger            = lipgloss.Color("#ff6b6b")
	ColorWarn              = lipgloss.Color("#f1c40f")
	ColorSpinner           = lipgloss.Color("#2ECC71")
	ColorHeader            = lipgloss.Color("#3498db")
)

type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindWarn
	KindError
	KindUser
	KindAssistant
	KindThinking
	KindTool
)

type PanelTheme struct {
	TitleStyle lipgloss.Style
	BoxStyle   lipgloss.Style
}

type Theme struct {
	Section lipgloss.Style
	Key     lipgloss.Style
	Muted   lipgloss.Style
	Panels  map[Kind]PanelTheme

	ToolName lipgloss.Style
	ToolArgs lipgloss.Style
	Thinking lipgloss.Style
	Spinner  lipgloss.Style
}

func boxed(c lipgloss.Color) PanelTheme {
	return PanelTheme{
		TitleStyle: lipgloss.NewStyle().Foreground(c).Bold(true),
		BoxStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true, true, true, true).
			BorderForeground(c).
			Padding(0, 1),
	}
}

func DefaultTheme() *Theme {
	return &Theme{
		Section: lipgloss.NewStyle().
			Foreground(ColorHeader).
			Bold(true),
		Key:   lipgloss.NewStyle().Bold(true),
		Muted: lipgloss.NewStyle().Foreground(ColorMuted),
		Panels: map[Kind]PanelTheme{
			KindInfo:      boxed(ColorHeader),
			KindSuccess:   boxed(ColorSpinner),
			KindWarn:      boxed(ColorWarn),
			KindError:     boxed(ColorDanger),
			KindUser:      boxed(ColorUserPrimary),
			KindAssistant: boxed(ColorAssistantPrimary),
			KindThinking: {
				TitleStyle: lipgloss.NewStyle().Foreground(ColorAssistantThinking).Italic(true),
				BoxStyle:   lipgloss.NewStyle().Foreground(ColorAssistantThinking),
			},
			KindTool: {
				TitleStyle: lipgloss.NewStyle().Foreground(ColorToolCall).Italic(true).Bold(true),
				BoxStyle:   lipgloss.NewStyle().Foreground(ColorToolCallArgs),
			},
		},
		ToolName: lipgloss.NewStyle().
			Foreground(ColorToolCall).
			Italic(true).
			Bold(true),
		ToolArgs: lipgloss.NewStyle().Foreground(ColorToolCallArgs),
		Thinking: lipgloss.NewStyle().Foreground(ColorAssistantThinking),
		Spinner:  lipgloss.NewStyle().Foreground(ColorSpinner),
	}
}
