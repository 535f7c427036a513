package schema

type ThinkingType string

const (
	ThinkingTypeEnabled  ThinkingType = "enabled"
	ThinkingTypeDisabled ThinkingType = "disabled"
)

// Thinking is sent verbatim as the "thinking" request field of GLM models.
type Thinking struct {
	Type ThinkingType `json:"type"`

	// false keeps reasoning from earlier turns in the context (preserved thinking)
	ClearThinking *bool `json:"clear_thinking,omitempty"`
}

func (t *Thinking) Enabled() bool {
	return t != nil && t.Type == ThinkingTypeEnabled
}

// ThinkingFor is a turn level switch.
func ThinkingFor(enabled bool) *Thinking {
	if enabled {
		return &Thinking{Type: ThinkingTypeEnabled}
	}
	return &Thinking{Type: ThinkingTypeDisabled}
}

func EnableThinking() *Thinking  { return ThinkingFor(true) }
func DisableThinking() *Thinking { return ThinkingFor(false) }

// EnablePreservedThinking also asks the server to keep reasoning across
// turns, which interleaved tool use depends on.
func EnablePreservedThinking() *Thinking {
	t := EnableThinking()
	t.ClearThinking = new(bool)
	return t
}
